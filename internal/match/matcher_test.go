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

package match

import (
	"context"
	"testing"

	"github.com/bcem/enrichment/internal/models"
	"github.com/bcem/enrichment/internal/store"
)

func seedStore(t *testing.T, contacts ...*models.Contact) *store.Memory {
	t.Helper()
	mem := store.NewMemory()
	for _, c := range contacts {
		if err := mem.CreateContact(context.Background(), c); err != nil {
			t.Fatalf("seed contact %s: %v", c.Email, err)
		}
	}
	return mem
}

// TestFindMatch_ExactBeatsFuzzy verifies the exact email phase is
// authoritative even when the mention's name differs from the stored one.
func TestFindMatch_ExactBeatsFuzzy(t *testing.T) {
	mem := seedStore(t,
		&models.Contact{ID: "c1", Email: "a@x.com", FullName: "Jon Smith"},
		&models.Contact{ID: "c2", Email: "other@x.com", FullName: "John Smith"},
	)
	m := NewMatcher(mem, 85, 50)

	got, err := m.FindMatch(context.Background(), "a@x.com", "John Smith")
	if err != nil {
		t.Fatalf("FindMatch: %v", err)
	}
	if got == nil || got.ID != "c1" {
		t.Fatalf("got %+v, want contact c1 via exact email", got)
	}
}

func TestFindMatch_EmailCaseInsensitive(t *testing.T) {
	mem := seedStore(t, &models.Contact{ID: "c1", Email: "Ada@Example.COM"})
	m := NewMatcher(mem, 85, 50)

	got, err := m.FindMatch(context.Background(), "ada@example.com", "")
	if err != nil {
		t.Fatalf("FindMatch: %v", err)
	}
	if got == nil || got.ID != "c1" {
		t.Fatalf("got %+v, want contact c1", got)
	}
}

func TestFindMatch_FuzzyAboveThreshold(t *testing.T) {
	mem := seedStore(t, &models.Contact{ID: "c1", Email: "jon@x.com", FullName: "Jon Smith", FirstName: "Jon", LastName: "Smith"})
	m := NewMatcher(mem, 85, 50)

	// "John Smith" vs "Jon Smith" scores 90.
	got, err := m.FindMatch(context.Background(), "new@y.com", "John Smith")
	if err != nil {
		t.Fatalf("FindMatch: %v", err)
	}
	if got == nil || got.ID != "c1" {
		t.Fatalf("got %+v, want fuzzy match c1", got)
	}
}

func TestFindMatch_FuzzyBelowThreshold(t *testing.T) {
	mem := seedStore(t, &models.Contact{ID: "c1", Email: "jon@x.com", FullName: "Jon Smith", FirstName: "Jon", LastName: "Smith"})
	m := NewMatcher(mem, 85, 50)

	got, err := m.FindMatch(context.Background(), "new@y.com", "Jonathan Smithers")
	if err != nil {
		t.Fatalf("FindMatch: %v", err)
	}
	if got != nil {
		t.Fatalf("got %+v, want no match below threshold", got)
	}
}

func TestFindMatch_NoEmailNoName(t *testing.T) {
	mem := seedStore(t, &models.Contact{ID: "c1", Email: "jon@x.com", FullName: "Jon Smith"})
	m := NewMatcher(mem, 85, 50)

	got, err := m.FindMatch(context.Background(), "", "")
	if err != nil {
		t.Fatalf("FindMatch: %v", err)
	}
	if got != nil {
		t.Fatalf("got %+v, want nil", got)
	}
}

// TestFindMatch_NoSideEffects verifies matching never creates records.
func TestFindMatch_NoSideEffects(t *testing.T) {
	mem := seedStore(t, &models.Contact{ID: "c1", Email: "jon@x.com", FullName: "Jon Smith"})
	m := NewMatcher(mem, 85, 50)

	if _, err := m.FindMatch(context.Background(), "missing@y.com", "Nobody Here"); err != nil {
		t.Fatalf("FindMatch: %v", err)
	}
	if n := mem.ContactCount(); n != 1 {
		t.Fatalf("store has %d contacts after match, want 1", n)
	}
}

// TestFindMatch_TieKeepsFirstSeen verifies a score tie resolves to the
// earlier record.
func TestFindMatch_TieKeepsFirstSeen(t *testing.T) {
	mem := seedStore(t,
		&models.Contact{ID: "first", Email: "a@x.com", FullName: "Jane Doe", FirstName: "Jane", LastName: "Doe"},
		&models.Contact{ID: "second", Email: "b@x.com", FullName: "Jane Doe", FirstName: "Jane", LastName: "Doe"},
	)
	m := NewMatcher(mem, 85, 50)

	got, err := m.FindMatch(context.Background(), "new@y.com", "Jane Doe")
	if err != nil {
		t.Fatalf("FindMatch: %v", err)
	}
	if got == nil || got.ID != "first" {
		t.Fatalf("got %+v, want first-seen contact", got)
	}
}
