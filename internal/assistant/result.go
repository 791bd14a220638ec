// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Studyhelper Contributors

package assistant

import (
	sherr "github.com/studyhelper/studyhelper/pkg/errors"
)

// Source tells where an answer came from.
type Source string

const (
	SourceLocal  Source = "local"
	SourceRemote Source = "remote"
)

// Kind distinguishes a real answer from a failed remote call.
type Kind string

const (
	KindOK    Kind = "ok"
	KindError Kind = "error"
)

// LocalProvenance is the tag shown under answers served from the knowledge base.
const LocalProvenance = "(Local KB)"

// Result is the outcome of answering one query. A failed remote call is a
// Result with Kind KindError, not a Go error, so the caller always has
// something to show.
type Result struct {
	Kind   Kind
	Text   string
	Source Source
	Err    error
}

func okResult(text string, src Source) Result {
	return Result{Kind: KindOK, Text: text, Source: src}
}

func errorResult(err error) Result {
	return Result{Kind: KindError, Source: SourceRemote, Err: err}
}

// Failed reports whether the remote call behind r failed.
func (r Result) Failed() bool { return r.Kind == KindError }

// Code returns the error code of a failed Result, or "" for a successful one.
func (r Result) Code() sherr.Code {
	if !r.Failed() {
		return ""
	}
	return sherr.CodeOf(r.Err)
}

// Message renders r for display. Failures read "<name> Error: <err>", where
// name is the provider's display name such as "Gemini".
func (r Result) Message(name string) string {
	if r.Failed() {
		msg := "unknown error"
		if r.Err != nil {
			msg = r.Err.Error()
		}
		return name + " Error: " + msg
	}
	return r.Text
}

// Provenance renders the source tag, "(Local KB)" or "(<source>)" such as
// "(Gemini AI)".
func (r Result) Provenance(source string) string {
	if r.Source == SourceLocal {
		return LocalProvenance
	}
	return "(" + source + ")"
}
