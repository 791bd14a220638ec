// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Studyhelper Contributors

package knowledge

import (
	"io"

	sherr "github.com/studyhelper/studyhelper/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Export formats accepted by Export.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Export writes base to w in the given format.
func Export(w io.Writer, base *Base, format string) error {
	if base == nil {
		base = NewBase()
	}

	switch format {
	case FormatJSON, "":
		data, err := EncodeJSON(base)
		if err != nil {
			return sherr.Wrap(err, sherr.CodeCLIOutputFailure, "encoding knowledge base as json")
		}
		if _, err := w.Write(data); err != nil {
			return sherr.Wrap(err, sherr.CodeCLIOutputFailure, "writing export")
		}
		return nil
	case FormatYAML:
		normalized := Base{Records: base.Records}
		normalized.normalize()
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(&normalized); err != nil {
			return sherr.Wrap(err, sherr.CodeCLIOutputFailure, "encoding knowledge base as yaml")
		}
		return enc.Close()
	default:
		return sherr.New(sherr.CodeCLIInputInvalid, "unsupported export format",
			sherr.Field("format", format),
			sherr.Field("supported", []string{FormatJSON, FormatYAML}),
		)
	}
}
