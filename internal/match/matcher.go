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

// Package match finds the existing contact a mention refers to, or
// reports that there is none. Matching is two-phase: an exact
// case-insensitive email lookup, then a fuzzy name comparison over a
// bounded candidate pool. It never mutates the store.
package match

import (
	"context"
	"fmt"
	"strings"

	"github.com/bcem/enrichment/internal/models"
	"github.com/bcem/enrichment/internal/nameparse"
	"github.com/bcem/enrichment/internal/similarity"
	"github.com/bcem/enrichment/internal/store"
)

// Matcher locates existing contacts by email or name.
type Matcher struct {
	contacts     store.ContactStore
	threshold    int
	candidateCap int
}

// NewMatcher creates a matcher. threshold is the minimum fuzzy name
// score (0-100) to accept; candidateCap bounds the fuzzy pool so
// per-mention cost stays predictable as the store grows.
func NewMatcher(contacts store.ContactStore, threshold, candidateCap int) *Matcher {
	return &Matcher{
		contacts:     contacts,
		threshold:    threshold,
		candidateCap: candidateCap,
	}
}

// FindMatch returns the existing contact for the given email and/or
// name, or nil if neither phase produces an accepted match.
//
// The exact email phase is authoritative: once it hits, the fuzzy
// phase is never consulted and its result is never second-guessed by a
// name mismatch.
func (m *Matcher) FindMatch(ctx context.Context, email, name string) (*models.Contact, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email != "" {
		c, err := m.contacts.GetContactByEmail(ctx, email)
		if err != nil {
			return nil, fmt.Errorf("contact lookup by email: %w", err)
		}
		if c != nil {
			return c, nil
		}
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}

	parsed := nameparse.Parse(name)
	terms := searchTerms(parsed, name)

	candidates, err := m.contacts.SearchContactsByName(ctx, terms, m.candidateCap)
	if err != nil {
		return nil, fmt.Errorf("contact candidates: %w", err)
	}

	lowered := strings.ToLower(name)
	var best *models.Contact
	bestScore := 0
	for i := range candidates {
		candName := candidates[i].FullName
		if candName == "" {
			candName = strings.TrimSpace(candidates[i].FirstName + " " + candidates[i].LastName)
		}
		score := similarity.Score(lowered, strings.ToLower(candName))
		// Strict > keeps the first-seen candidate on ties.
		if score > bestScore {
			bestScore = score
			best = &candidates[i]
		}
	}

	if best != nil && bestScore >= m.threshold {
		return best, nil
	}
	return nil, nil
}

// searchTerms builds the substring pre-filter terms: first name, last
// name, and the full input.
func searchTerms(parsed nameparse.Name, full string) []string {
	var terms []string
	if parsed.First != "" {
		terms = append(terms, parsed.First)
	}
	if parsed.Last != "" {
		terms = append(terms, parsed.Last)
	}
	terms = append(terms, full)
	return terms
}
