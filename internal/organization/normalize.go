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

// Package organization resolves free-text organization names against
// the store: canonicalise for comparison, match an existing record when
// one is close enough, create a new one otherwise.
package organization

import (
	"regexp"
	"strings"
)

var (
	// Longest alternatives first so "corporation" is not eaten by "corp".
	legalSuffixRe = regexp.MustCompile(`\b(corporation|incorporated|limited|company|corp|inc|ltd|llc|co)\b`)
	punctRe       = regexp.MustCompile(`[,.\-()&]`)
	spaceRe       = regexp.MustCompile(`\s+`)
)

// Normalize canonicalises an organization name for comparison:
// lowercase and trim, strip legal-entity suffixes as whole words,
// replace punctuation with spaces, collapse whitespace, strip leading
// "the " articles. Deterministic and idempotent; the stored name is
// never normalized, only the comparison key.
func Normalize(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = legalSuffixRe.ReplaceAllString(s, " ")
	s = punctRe.ReplaceAllString(s, " ")
	s = spaceRe.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)
	// Suffix stripping can expose a new leading article, and articles
	// can stack in the raw input, so strip until none remain.
	for strings.HasPrefix(s, "the ") {
		s = strings.TrimPrefix(s, "the ")
	}
	return s
}
