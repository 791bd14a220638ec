// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Studyhelper Contributors

package errors

import (
	stderrors "errors"
	"fmt"
	"slices"
	"strings"

	"github.com/samber/oops"
)

// Code is the machine-readable identifier for an error.
type Code string

const (
	CodeKnowledgeLoadFailure        Code = "knowledge.load.failure"
	CodeKnowledgeLoadInvalidFormat  Code = "knowledge.load.invalid_format"
	CodeKnowledgeSaveFailure        Code = "knowledge.save.failure"
	CodeKnowledgeBackendUnsupported Code = "knowledge.backend.unsupported"
	CodeKnowledgeInvalidInput       Code = "knowledge.invalid_input"

	CodeConfigLoadReadFailure      Code = "config.load.read.failure"
	CodeConfigParseInvalidFormat   Code = "config.parse.invalid_format"
	CodeConfigValidateInvalidValue Code = "config.validate.invalid_value"
	CodeConfigWriteFailure         Code = "config.write.failure"
	CodeConfigWriteAlreadyExists   Code = "config.write.already_exists"

	CodeProviderRequestInvalid  Code = "provider.request.invalid"
	CodeProviderResponseInvalid Code = "provider.response.invalid"
	CodeProviderUpstreamFailure Code = "provider.upstream.failure"
	CodeProviderCallTimeout     Code = "provider.call.timeout"
	CodeProviderNotFound        Code = "provider.registry.not_found"
	CodeProviderNoDefault       Code = "provider.routing.no_default"
	CodeProviderInvalidModelRef Code = "provider.routing.invalid_model_ref"
	CodeProviderKeyInvalid      Code = "provider.key.unauthorized"
	CodeProviderKeyCheckFailed  Code = "provider.key.check_failure"

	CodeAssistantInputInvalid  Code = "assistant.input.invalid"
	CodeAssistantSessionClosed Code = "assistant.session.closed"

	CodeSecretInvalidInput   Code = "secret.input.invalid"
	CodeSecretNotFound       Code = "secret.entry.not_found"
	CodeSecretStoreFailure   Code = "secret.store.failure"
	CodeSecretDeleteFailure  Code = "secret.delete.failure"
	CodeSecretListFailure    Code = "secret.list.failure"
	CodeSecretResolveFailure Code = "secret.resolve.failure"

	CodeCLISetupFailure  Code = "cli.setup.failure"
	CodeCLIInputInvalid  Code = "cli.input.invalid"
	CodeCLIOutputFailure Code = "cli.output.failure"

	CodeInternalFailure Code = "internal.failure"
)

// Attr is a structured key/value context attached to an error.
type Attr struct {
	Key   string
	Value any
}

// Field creates a structured error field.
func Field(key string, value any) Attr {
	return Attr{Key: key, Value: value}
}

func FieldSessionID(value string) Attr {
	return Field("session_id", value)
}

func FieldProvider(value string) Attr {
	return Field("provider", value)
}

func FieldPath(value string) Attr {
	return Field("path", value)
}

func New(code Code, msg string, fields ...Attr) error {
	return oops.Code(code).With(flatten(fields)...).New(msg)
}

func Errorf(code Code, format string, args ...any) error {
	return oops.Code(code).Errorf(format, args...)
}

func Wrap(err error, code Code, msg string, fields ...Attr) error {
	if err == nil {
		return nil
	}

	return oops.Code(code).With(flatten(fields)...).Wrapf(err, "%s", msg)
}

func Wrapf(err error, code Code, format string, args ...any) error {
	if err == nil {
		return nil
	}

	return oops.Code(code).Wrapf(err, format, args...)
}

// With adds structured fields to an existing error chain, keeping its code.
func With(err error, fields ...Attr) error {
	if err == nil {
		return nil
	}

	code := CodeOf(err)
	if code == "" {
		code = CodeInternalFailure
	}

	return oops.Code(code).With(flatten(fields)...).Wrap(err)
}

// CodeOf returns the innermost code in err's chain, or "" when err carries
// none.
func CodeOf(err error) Code {
	oe, ok := oops.AsOops(err)
	if !ok {
		return ""
	}
	switch c := oe.Code().(type) {
	case Code:
		return c
	case string:
		return Code(c)
	case nil:
		return ""
	default:
		return Code(fmt.Sprint(c))
	}
}

// FieldsOf returns the structured fields attached anywhere in err's chain.
func FieldsOf(err error) map[string]any {
	oe, ok := oops.AsOops(err)
	if !ok {
		return nil
	}
	return oe.Context()
}

func HasCode(err error, code Code) bool {
	return err != nil && CodeOf(err) == code
}

// HasArea reports whether err's code sits under the dotted area, as in
// HasArea(err, "knowledge") for any storage failure.
func HasArea(err error, area string) bool {
	return strings.HasPrefix(string(CodeOf(err)), area+".")
}

func IsNotFound(err error) bool { return reasonIn(err, "not_found") }

func IsInvalidInput(err error) bool {
	return reasonIn(err, "invalid", "invalid_input", "invalid_value", "invalid_format", "invalid_model_ref")
}

func IsUnauthorized(err error) bool { return reasonIn(err, "unauthorized", "forbidden", "denied") }

func IsTimeout(err error) bool { return reasonIn(err, "timeout") }

func IsUpstreamFailure(err error) bool {
	return strings.Contains(string(CodeOf(err)), ".upstream.") && reasonIn(err, "failure")
}

// Join combines errs like errors.Join, tagged as an internal failure. It
// returns nil when every err is nil.
func Join(errs ...error) error {
	joined := stderrors.Join(errs...)
	if joined == nil {
		return nil
	}
	return oops.Code(CodeInternalFailure).Wrap(joined)
}

func flatten(fields []Attr) []any {
	pairs := make([]any, 0, 2*len(fields))
	for _, f := range fields {
		if f.Key != "" {
			pairs = append(pairs, f.Key, f.Value)
		}
	}
	return pairs
}

// reasonIn reports whether the last segment of err's code is one of
// reasons.
func reasonIn(err error, reasons ...string) bool {
	code := string(CodeOf(err))
	if code == "" {
		return false
	}
	return slices.Contains(reasons, code[strings.LastIndex(code, ".")+1:])
}
