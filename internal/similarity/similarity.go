// Copyright (c) 2026 John Earle
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package similarity computes a normalized string similarity in [0,100]
// from Levenshtein edit distance. It is the shared leaf dependency of
// the contact matcher and the organization resolver; callers are
// responsible for their own case folding and trimming before scoring.
package similarity

import "github.com/agnivade/levenshtein"

// Score returns a similarity between a and b in [0,100]. It is
// symmetric and returns 100 iff the strings are character-identical.
// Two empty strings are identical; one empty string scores 0 against
// anything non-empty.
func Score(a, b string) int {
	if a == b {
		return 100
	}

	ra := []rune(a)
	rb := []rune(b)
	maxLen := len(ra)
	if len(rb) > maxLen {
		maxLen = len(rb)
	}
	if maxLen == 0 {
		return 100
	}

	dist := levenshtein.ComputeDistance(a, b)
	if dist >= maxLen {
		return 0
	}

	// Round to nearest integer rather than truncating, so a single
	// edit in a 10-rune name scores 90, not 89. Rounding must never
	// reach 100: that value is reserved for identical strings, and a
	// single edit in a 200+ rune string would otherwise round up to it.
	score := int(float64(maxLen-dist)/float64(maxLen)*100 + 0.5)
	if score > 99 {
		score = 99
	}
	return score
}
