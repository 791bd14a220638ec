// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Studyhelper Contributors

// Package knowledge holds the learned question/answer pairs and the
// backends that persist them. Every Save rewrites the whole collection.
package knowledge

import "strings"

// Record is one learned question/answer pair. Duplicate questions are allowed.
type Record struct {
	Question string `json:"question" yaml:"question"`
	Answer   string `json:"answer" yaml:"answer"`
}

// Base is the ordered knowledge base. It serializes as
// {"questions": [{"question": ..., "answer": ...}]}.
type Base struct {
	Records []Record `json:"questions" yaml:"questions"`
}

// NewBase returns a Base holding a copy of records.
func NewBase(records ...Record) *Base {
	return &Base{Records: append([]Record{}, records...)}
}

// Len returns the number of records.
func (b *Base) Len() int {
	if b == nil {
		return 0
	}
	return len(b.Records)
}

// Questions returns the question texts in stored order.
func (b *Base) Questions() []string {
	if b == nil {
		return nil
	}
	out := make([]string, len(b.Records))
	for i, r := range b.Records {
		out[i] = r.Question
	}
	return out
}

// Append adds r at the end. The caller persists the Base afterwards.
func (b *Base) Append(r Record) {
	b.Records = append(b.Records, r)
}

// Lookup returns the first record whose lower-cased question equals
// matchText exactly. matchText is expected to already be lower-cased, as
// returned by the matcher.
func (b *Base) Lookup(matchText string) (Record, bool) {
	if b == nil {
		return Record{}, false
	}
	for _, r := range b.Records {
		if strings.ToLower(r.Question) == matchText {
			return r, true
		}
	}
	return Record{}, false
}

// normalize guarantees a non-nil slice so an empty base encodes as [].
func (b *Base) normalize() *Base {
	if b.Records == nil {
		b.Records = []Record{}
	}
	return b
}
