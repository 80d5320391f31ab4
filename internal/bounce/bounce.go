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

// Package bounce detects mail-system bounce notifications and repairs
// the contact store: a permanently undeliverable address is replaced by
// the contact's first alternate, or the contact is deleted when no
// alternate exists. Every outcome is reported as a structured result;
// nothing here surfaces as an error to the caller.
package bounce

import (
	"context"
	"log/slog"
	"regexp"
	"strings"

	"github.com/bcem/enrichment/internal/models"
	"github.com/bcem/enrichment/internal/store"
)

// bounceIndicators classify an email as a bounce notification when any
// one of them appears in the subject or body (case-insensitive).
var bounceIndicators = []string{
	"delivery failed",
	"delivery has failed",
	"delivery status notification (failure)",
	"undeliverable",
	"undelivered mail returned to sender",
	"returned to sender",
	"user unknown",
	"unknown user",
	"mailbox not found",
	"mailbox unavailable",
	"recipient address rejected",
	"address not found",
	"does not exist",
	"550 ",
	"554 ",
	"5.1.1",
	"permanent error",
	"could not be delivered",
}

const emailPattern = `[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`

// Extraction patterns in precedence order: an address in angle
// brackets, an address after a "to/for/address/recipient" label, then
// an address immediately followed by a failure word.
var extractPatterns = []*regexp.Regexp{
	regexp.MustCompile(`<(` + emailPattern + `)>`),
	regexp.MustCompile(`(?i)\b(?:to|for|address|recipient)\s*:?\s+(` + emailPattern + `)`),
	regexp.MustCompile(`(?i)(` + emailPattern + `)\s*(?:failed|bounced|rejected)`),
}

// Handler repairs the contact store when delivery to an address
// permanently fails.
type Handler struct {
	contacts      store.ContactStore
	ownIdentities map[string]bool
}

// NewHandler creates a bounce handler. ownIdentities lists the system's
// own sending addresses; they are never treated as failed recipients
// even when a bounce body quotes them.
func NewHandler(contacts store.ContactStore, ownIdentities []string) *Handler {
	own := make(map[string]bool, len(ownIdentities))
	for _, id := range ownIdentities {
		if id = strings.ToLower(strings.TrimSpace(id)); id != "" {
			own[id] = true
		}
	}
	return &Handler{contacts: contacts, ownIdentities: own}
}

// IsBounce classifies an email as a bounce notification. A single
// indicator match in subject or body is sufficient.
func IsBounce(subject, body string) bool {
	haystack := strings.ToLower(subject + "\n" + body)
	for _, indicator := range bounceIndicators {
		if strings.Contains(haystack, indicator) {
			return true
		}
	}
	return false
}

// Handle processes one inbound email as a potential bounce: detect,
// extract the failed address, repair the store. All outcomes —
// not-a-bounce, extraction failure, each repair action — come back as a
// BounceResult; store errors are folded into an "error" removal result.
func (h *Handler) Handle(ctx context.Context, subject, body string) *models.BounceResult {
	if !IsBounce(subject, body) {
		return &models.BounceResult{Success: false, IsBounceback: false}
	}

	failed := h.extractFailedAddress(subject, body)
	if failed == "" {
		slog.Warn("bounce detected but no failed address extracted", "subject", subject)
		return &models.BounceResult{Success: false, IsBounceback: true}
	}

	removal := h.repair(ctx, failed)
	slog.Info("bounce handled",
		"failed_email", failed,
		"action", removal.Action,
		"success", removal.Success,
	)
	return &models.BounceResult{
		Success:      removal.Success,
		IsBounceback: true,
		FailedEmail:  failed,
		Removal:      removal,
	}
}

// extractFailedAddress searches subject then body with each pattern in
// precedence order, returning the first non-own address found by the
// highest-precedence pattern that fires.
func (h *Handler) extractFailedAddress(subject, body string) string {
	for _, re := range extractPatterns {
		for _, text := range []string{subject, body} {
			for _, m := range re.FindAllStringSubmatch(text, -1) {
				addr := strings.ToLower(m[1])
				if h.ownIdentities[addr] {
					continue
				}
				return addr
			}
		}
	}
	return ""
}

// repair applies the removal policy for a failed address:
//
//  1. failed address is a contact's primary email — promote the first
//     alternate, or delete the contact when there is none;
//  2. failed address is only an alternate — drop it from the list;
//  3. no contact holds the address — report not-found, no mutation.
func (h *Handler) repair(ctx context.Context, failed string) *models.RemovalResult {
	c, err := h.contacts.GetContactByEmail(ctx, failed)
	if err != nil {
		return removalError(failed, err)
	}
	if c != nil {
		if len(c.AlternateEmails) > 0 {
			newPrimary := c.AlternateEmails[0]
			c.Email = newPrimary
			c.AlternateEmails = c.AlternateEmails[1:]
			if err := h.contacts.UpdateContact(ctx, c); err != nil {
				return removalError(failed, err)
			}
			return &models.RemovalResult{
				Success:      true,
				Action:       models.RemovalPromotedAlternate,
				ContactID:    c.ID,
				RemovedEmail: failed,
				NewPrimary:   newPrimary,
				Name:         c.FullName,
			}
		}

		if err := h.contacts.DeleteContact(ctx, c.ID); err != nil {
			return removalError(failed, err)
		}
		return &models.RemovalResult{
			Success:      true,
			Action:       models.RemovalDeletedContact,
			ContactID:    c.ID,
			RemovedEmail: failed,
			Name:         c.FullName,
		}
	}

	c, err = h.contacts.GetContactByAlternateEmail(ctx, failed)
	if err != nil {
		return removalError(failed, err)
	}
	if c != nil {
		kept := c.AlternateEmails[:0]
		for _, alt := range c.AlternateEmails {
			if !strings.EqualFold(alt, failed) {
				kept = append(kept, alt)
			}
		}
		c.AlternateEmails = kept
		if err := h.contacts.UpdateContact(ctx, c); err != nil {
			return removalError(failed, err)
		}
		return &models.RemovalResult{
			Success:      true,
			Action:       models.RemovalRemovedAlternate,
			ContactID:    c.ID,
			RemovedEmail: failed,
			Name:         c.FullName,
		}
	}

	return &models.RemovalResult{
		Success:      false,
		Action:       models.RemovalNotFound,
		RemovedEmail: failed,
	}
}

func removalError(failed string, err error) *models.RemovalResult {
	slog.Error("bounce repair failed", "failed_email", failed, "error", err)
	return &models.RemovalResult{
		Success:      false,
		Action:       models.RemovalError,
		RemovedEmail: failed,
	}
}
