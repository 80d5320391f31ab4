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

package worker

import (
	"context"
	"sync"
	"testing"

	"github.com/bcem/enrichment/internal/bounce"
	"github.com/bcem/enrichment/internal/enrich"
	"github.com/bcem/enrichment/internal/match"
	"github.com/bcem/enrichment/internal/models"
	"github.com/bcem/enrichment/internal/organization"
	"github.com/bcem/enrichment/internal/store"
)

// --- Mock dedup filter ---

type mockDedup struct {
	mu   sync.Mutex
	seen map[string]bool
}

func newMockDedup() *mockDedup {
	return &mockDedup{seen: make(map[string]bool)}
}

func (m *mockDedup) IsNew(_ context.Context, messageID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.seen[messageID] {
		return false, nil
	}
	m.seen[messageID] = true
	return true, nil
}

// --- Mock publisher ---

type mockPublisher struct {
	mu      sync.Mutex
	reports []string // collected message IDs
}

func (m *mockPublisher) PublishResult(_ context.Context, messageID string, _ *models.EnrichmentResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reports = append(m.reports, messageID)
	return nil
}

func newTestWorker(t *testing.T) (*Worker, *store.Memory, *mockPublisher) {
	t.Helper()
	mem := store.NewMemory()
	matcher := match.NewMatcher(mem, 85, 50)
	resolver := organization.NewResolver(mem, 90, 200)
	engine := enrich.NewEngine(mem, matcher, resolver, enrich.DefaultConfig())
	pub := &mockPublisher{}
	w := New(Config{
		Source:    nil, // ProcessResult is driven directly in tests
		Dedup:     newMockDedup(),
		Engine:    engine,
		Bounces:   bounce.NewHandler(mem, nil),
		Publisher: pub,
	})
	return w, mem, pub
}

func TestProcessResult_EnrichesAndPublishes(t *testing.T) {
	w, mem, pub := newTestWorker(t)

	res := &models.AnalysisResult{
		MessageID: "msg-1",
		Email:     models.EmailContext{MessageID: "msg-1", Subject: "Intro", From: "a@x.com"},
		Body:      "Meet Al, our director.",
		Mentions: []models.ContactMention{
			{Name: "Al Sender", Email: "a@x.com", Role: "Director", Confidence: 95},
		},
	}

	out, err := w.ProcessResult(context.Background(), res)
	if err != nil {
		t.Fatalf("ProcessResult: %v", err)
	}
	if out.Enrichment == nil || out.Enrichment.ContactsCreated != 1 {
		t.Fatalf("outcome = %+v, want one contact created", out)
	}
	if mem.ContactCount() != 1 {
		t.Errorf("store has %d contacts, want 1", mem.ContactCount())
	}
	if len(pub.reports) != 1 || pub.reports[0] != "msg-1" {
		t.Errorf("published reports = %v, want [msg-1]", pub.reports)
	}
}

// TestProcessResult_DuplicateSkipped verifies a redelivered message is
// dropped before touching the store.
func TestProcessResult_DuplicateSkipped(t *testing.T) {
	w, mem, _ := newTestWorker(t)

	res := &models.AnalysisResult{
		MessageID: "msg-1",
		Email:     models.EmailContext{MessageID: "msg-1"},
		Mentions: []models.ContactMention{
			{Name: "Al Sender", Email: "a@x.com", Confidence: 95},
		},
	}

	if _, err := w.ProcessResult(context.Background(), res); err != nil {
		t.Fatalf("first ProcessResult: %v", err)
	}
	out, err := w.ProcessResult(context.Background(), res)
	if err != nil {
		t.Fatalf("second ProcessResult: %v", err)
	}
	if !out.Duplicate {
		t.Error("second delivery not flagged as duplicate")
	}
	if mem.ContactCount() != 1 {
		t.Errorf("store has %d contacts, want 1", mem.ContactCount())
	}
}

// TestProcessResult_RoutesBounces verifies bounce notifications go to
// the bounce handler, not the enrichment engine.
func TestProcessResult_RoutesBounces(t *testing.T) {
	w, mem, _ := newTestWorker(t)
	seed := &models.Contact{ID: "c1", Email: "dead@z.com"}
	if err := mem.CreateContact(context.Background(), seed); err != nil {
		t.Fatal(err)
	}

	res := &models.AnalysisResult{
		MessageID: "msg-2",
		Email: models.EmailContext{
			MessageID: "msg-2",
			Subject:   "Mail delivery failed",
		},
		Body: "<dead@z.com> ... 550 5.1.1 User unknown",
		// The analysis worker may still extract mentions from a
		// bounce body; they must be ignored.
		Mentions: []models.ContactMention{
			{Name: "Postmaster", Email: "postmaster@z.com", Confidence: 90},
		},
	}

	out, err := w.ProcessResult(context.Background(), res)
	if err != nil {
		t.Fatalf("ProcessResult: %v", err)
	}
	if out.Bounce == nil || !out.Bounce.IsBounceback {
		t.Fatalf("outcome = %+v, want bounce handling", out)
	}
	if out.Enrichment != nil {
		t.Error("bounce was also enriched")
	}
	if mem.ContactCount() != 0 {
		t.Errorf("store has %d contacts, want 0 (dead contact deleted, no new ones)", mem.ContactCount())
	}
}
