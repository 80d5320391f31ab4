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

package bounce

import (
	"context"
	"testing"

	"github.com/bcem/enrichment/internal/models"
	"github.com/bcem/enrichment/internal/store"
)

func TestIsBounce(t *testing.T) {
	tests := []struct {
		name    string
		subject string
		body    string
		want    bool
	}{
		{
			name:    "delivery failed subject",
			subject: "Mail delivery failed: returning message to sender",
			want:    true,
		},
		{
			name: "smtp code in body",
			body: "the response was: 550 5.1.1 User unknown",
			want: true,
		},
		{
			name:    "mailbox not found",
			subject: "Undeliverable: target mailbox not found",
			want:    true,
		},
		{
			name:    "ordinary email",
			subject: "Quarterly planning",
			body:    "Hi, can we meet Thursday?",
			want:    false,
		},
		{
			name: "empty",
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsBounce(tt.subject, tt.body); got != tt.want {
				t.Errorf("IsBounce = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExtractFailedAddress(t *testing.T) {
	h := NewHandler(store.NewMemory(), []string{"noreply@ours.com"})

	tests := []struct {
		name    string
		subject string
		body    string
		want    string
	}{
		{
			name: "angle brackets win",
			body: "Delivery to <dead@z.com> failed. Recipient: other@z.com",
			want: "dead@z.com",
		},
		{
			name: "labeled address",
			body: "Message rejected. Recipient: gone@z.com",
			want: "gone@z.com",
		},
		{
			name: "address followed by failure word",
			body: "delivery to lost@z.com failed permanently",
			want: "lost@z.com",
		},
		{
			name:    "subject searched before body",
			subject: "Undeliverable <insubject@z.com>",
			body:    "also mentions <inbody@z.com>",
			want:    "insubject@z.com",
		},
		{
			name: "own identity excluded",
			body: "From <noreply@ours.com> to <dead@z.com>: user unknown",
			want: "dead@z.com",
		},
		{
			name: "nothing extractable",
			body: "delivery failed for an unspecified recipient",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := h.extractFailedAddress(tt.subject, tt.body); got != tt.want {
				t.Errorf("extractFailedAddress = %q, want %q", got, tt.want)
			}
		})
	}
}

// TestHandle_PromotesAlternate verifies a bounced primary with an
// alternate keeps the contact reachable at the promoted address.
func TestHandle_PromotesAlternate(t *testing.T) {
	mem := store.NewMemory()
	seed := &models.Contact{
		ID:              "c1",
		Email:           "dead@z.com",
		AlternateEmails: []string{"alive@z.com"},
		FullName:        "Dee Ceased",
	}
	if err := mem.CreateContact(context.Background(), seed); err != nil {
		t.Fatal(err)
	}
	h := NewHandler(mem, nil)

	result := h.Handle(context.Background(), "Mail delivery failed",
		"<dead@z.com> ... 550 5.1.1 User unknown")

	if !result.Success || !result.IsBounceback {
		t.Fatalf("result = %+v, want successful bounce handling", result)
	}
	if result.FailedEmail != "dead@z.com" {
		t.Errorf("failed email = %q, want dead@z.com", result.FailedEmail)
	}
	if result.Removal.Action != models.RemovalPromotedAlternate {
		t.Errorf("action = %q, want %q", result.Removal.Action, models.RemovalPromotedAlternate)
	}
	if result.Removal.NewPrimary != "alive@z.com" {
		t.Errorf("new primary = %q, want alive@z.com", result.Removal.NewPrimary)
	}

	got, _ := mem.GetContactByEmail(context.Background(), "alive@z.com")
	if got == nil {
		t.Fatal("contact not reachable at promoted address")
	}
	if len(got.AlternateEmails) != 0 {
		t.Errorf("alternates = %v, want empty", got.AlternateEmails)
	}
	if mem.ContactCount() != 1 {
		t.Errorf("store has %d contacts, want 1 (contact kept)", mem.ContactCount())
	}
}

// TestHandle_DeletesContactWithoutAlternates verifies an unreachable
// contact is removed entirely.
func TestHandle_DeletesContactWithoutAlternates(t *testing.T) {
	mem := store.NewMemory()
	seed := &models.Contact{ID: "c1", Email: "dead@z.com", FullName: "Dee Ceased"}
	if err := mem.CreateContact(context.Background(), seed); err != nil {
		t.Fatal(err)
	}
	h := NewHandler(mem, nil)

	result := h.Handle(context.Background(), "Mail delivery failed",
		"<dead@z.com> ... 550 5.1.1 User unknown")

	if result.Removal.Action != models.RemovalDeletedContact {
		t.Errorf("action = %q, want %q", result.Removal.Action, models.RemovalDeletedContact)
	}
	if mem.ContactCount() != 0 {
		t.Errorf("store has %d contacts, want 0", mem.ContactCount())
	}
}

// TestHandle_RemovesAlternateOnly verifies a bounce on an alternate
// address leaves the contact and its primary untouched.
func TestHandle_RemovesAlternateOnly(t *testing.T) {
	mem := store.NewMemory()
	seed := &models.Contact{
		ID:              "c1",
		Email:           "main@z.com",
		AlternateEmails: []string{"old@z.com", "spare@z.com"},
	}
	if err := mem.CreateContact(context.Background(), seed); err != nil {
		t.Fatal(err)
	}
	h := NewHandler(mem, nil)

	result := h.Handle(context.Background(), "Undeliverable",
		"delivery to <old@z.com> failed: user unknown")

	if result.Removal.Action != models.RemovalRemovedAlternate {
		t.Errorf("action = %q, want %q", result.Removal.Action, models.RemovalRemovedAlternate)
	}

	got, _ := mem.GetContactByEmail(context.Background(), "main@z.com")
	if got == nil {
		t.Fatal("primary contact gone")
	}
	if len(got.AlternateEmails) != 1 || got.AlternateEmails[0] != "spare@z.com" {
		t.Errorf("alternates = %v, want [spare@z.com]", got.AlternateEmails)
	}
}

func TestHandle_NotFound(t *testing.T) {
	h := NewHandler(store.NewMemory(), nil)

	result := h.Handle(context.Background(), "Mail delivery failed",
		"<stranger@z.com> ... 550 user unknown")

	if result.Success {
		t.Error("success = true, want false for unknown address")
	}
	if !result.IsBounceback {
		t.Error("is_bounceback = false, want true")
	}
	if result.Removal.Action != models.RemovalNotFound {
		t.Errorf("action = %q, want %q", result.Removal.Action, models.RemovalNotFound)
	}
}

func TestHandle_NotABounce(t *testing.T) {
	h := NewHandler(store.NewMemory(), nil)

	result := h.Handle(context.Background(), "Lunch?", "Are you free at noon?")

	if result.IsBounceback || result.Success {
		t.Errorf("result = %+v, want not-a-bounce", result)
	}
	if result.Removal != nil {
		t.Errorf("removal = %+v, want nil", result.Removal)
	}
}

func TestHandle_ExtractionFailure(t *testing.T) {
	h := NewHandler(store.NewMemory(), nil)

	result := h.Handle(context.Background(), "Mail delivery failed", "no address anywhere")

	if !result.IsBounceback {
		t.Error("is_bounceback = false, want true")
	}
	if result.Success || result.FailedEmail != "" {
		t.Errorf("result = %+v, want extraction failure outcome", result)
	}
}
