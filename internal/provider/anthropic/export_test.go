// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Studyhelper Contributors

package anthropic

var NewParams = newParams
