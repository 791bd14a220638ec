// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Studyhelper Contributors

// Package matcher finds the stored question closest to a query using the
// difflib sequence-matcher ratio on lower-cased text.
package matcher

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// DefaultCutoff is the minimum ratio for a question to count as a match.
const DefaultCutoff = 0.6

// candidate is the winning question of best.
type candidate struct {
	// Text is the lower-cased question text.
	Text  string
	Index int
	Score float64
}

// FindBestMatch returns the lower-cased text of the question most similar to
// query, provided it scores at least DefaultCutoff.
func FindBestMatch(query string, questions []string) (string, bool) {
	m, ok := best(query, questions, DefaultCutoff)
	return m.Text, ok
}

// best scores every question against query and returns the highest-scoring
// one at or above cutoff. Equal scores keep the earliest question.
func best(query string, questions []string, cutoff float64) (candidate, bool) {
	sm := difflib.NewMatcher(nil, split(strings.ToLower(query)))

	top := candidate{Index: -1}
	for i, q := range questions {
		folded := strings.ToLower(q)
		sm.SetSeq1(split(folded))

		// The cheap upper bounds rule out most candidates before the
		// quadratic ratio runs.
		if sm.RealQuickRatio() < cutoff || sm.QuickRatio() < cutoff {
			continue
		}
		score := sm.Ratio()
		if score < cutoff || (top.Index >= 0 && score <= top.Score) {
			continue
		}
		top = candidate{Text: folded, Index: i, Score: score}
	}

	if top.Index < 0 {
		return candidate{}, false
	}
	return top, true
}

// Similarity returns the ratio between the lower-cased forms of a and b,
// in [0, 1].
func Similarity(a, b string) float64 {
	return difflib.NewMatcher(split(strings.ToLower(a)), split(strings.ToLower(b))).Ratio()
}

// split breaks s into single-character elements.
func split(s string) []string {
	if s == "" {
		return []string{}
	}
	return strings.Split(s, "")
}
