// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Studyhelper Contributors

package matcher

// Best exposes the scoring loop with an explicit cutoff.
var Best = best
