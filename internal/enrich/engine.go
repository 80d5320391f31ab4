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

// Package enrich folds AI-extracted contact mentions into the contact
// and organization store. For each inbound email it deduplicates the
// mentions, gates them on extraction confidence, drives the matcher and
// organization resolver to create or update records, and infers which
// mentioned person is the email's primary contact.
//
// One bad mention never aborts the batch: per-mention failures are
// collected in the result's error list and processing continues, the
// same way the ingestion backfill runner treats per-user failures.
package enrich

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bcem/enrichment/internal/match"
	"github.com/bcem/enrichment/internal/models"
	"github.com/bcem/enrichment/internal/nameparse"
	"github.com/bcem/enrichment/internal/organization"
	"github.com/bcem/enrichment/internal/store"
)

// Weights holds the primary-contact scoring point values. The defaults
// are product-tuned; keep them in configuration, not code.
type Weights struct {
	ToRecipient         int
	FromSender          int
	CCRecipient         int
	HasRole             int
	HasOrganization     int
	HighConfidence      int
	HighConfidenceFloor int // mention confidence at or above this earns HighConfidence
}

// DefaultWeights returns the tuned scoring table.
func DefaultWeights() Weights {
	return Weights{
		ToRecipient:         40,
		FromSender:          30,
		CCRecipient:         20,
		HasRole:             15,
		HasOrganization:     10,
		HighConfidence:      5,
		HighConfidenceFloor: 80,
	}
}

// Config holds the engine's tunable parameters.
type Config struct {
	// ConfidenceThreshold gates mention processing; mentions below it
	// are counted as skipped. This is the single biggest control over
	// false-positive contact creation.
	ConfidenceThreshold int
	// PrimaryThreshold is the minimum score for a primary-contact
	// inference to be reported at all.
	PrimaryThreshold int
	// Source labels provenance notes, e.g. "ai-extraction".
	Source  string
	Weights Weights
}

// DefaultConfig returns the tuned engine parameters.
func DefaultConfig() Config {
	return Config{
		ConfidenceThreshold: 60,
		PrimaryThreshold:    50,
		Source:              "ai-extraction",
		Weights:             DefaultWeights(),
	}
}

// Engine orchestrates per-email enrichment.
type Engine struct {
	contacts store.ContactStore
	matcher  *match.Matcher
	orgs     *organization.Resolver
	cfg      Config
}

// NewEngine creates an enrichment engine.
func NewEngine(contacts store.ContactStore, matcher *match.Matcher, orgs *organization.Resolver, cfg Config) *Engine {
	if cfg.Source == "" {
		cfg.Source = "ai-extraction"
	}
	return &Engine{
		contacts: contacts,
		matcher:  matcher,
		orgs:     orgs,
		cfg:      cfg,
	}
}

// processedMention pairs a created-or-updated contact with the mention
// that produced it, for primary-contact inference.
type processedMention struct {
	contact *models.Contact
	mention models.ContactMention
	hasOrg  bool
}

// Process runs enrichment for one email's mentions. It never fails for
// an individual mention; per-mention errors land in the result's
// Errors list and the mention is counted as skipped.
func (e *Engine) Process(ctx context.Context, mentions []models.ContactMention, ectx models.EmailContext) *models.EnrichmentResult {
	result := &models.EnrichmentResult{Errors: []string{}}

	deduped := dedupeMentions(mentions)

	var processed []processedMention
	for _, mention := range deduped {
		if mention.Confidence < e.cfg.ConfidenceThreshold {
			result.ContactsSkipped++
			slog.Debug("mention below confidence threshold",
				"email", mention.Email,
				"confidence", mention.Confidence,
			)
			continue
		}

		p, err := e.processMention(ctx, mention, ectx, result)
		if err != nil {
			result.ContactsSkipped++
			result.Errors = append(result.Errors, fmt.Sprintf("mention %s: %v", mention.Email, err))
			slog.Warn("mention processing failed",
				"email", mention.Email,
				"message_id", ectx.MessageID,
				"error", err,
			)
			continue
		}
		processed = append(processed, *p)
	}

	result.PrimaryContact = e.inferPrimary(processed, ectx)

	slog.Info("enrichment complete",
		"message_id", ectx.MessageID,
		"created", result.ContactsCreated,
		"updated", result.ContactsUpdated,
		"skipped", result.ContactsSkipped,
		"orgs_created", result.OrganizationsCreated,
		"orgs_matched", result.OrganizationsMatched,
		"errors", len(result.Errors),
	)
	return result
}

// dedupeMentions drops mentions without a plausible address and keeps,
// per lowercased email, only the highest-confidence mention. Order of
// first appearance is preserved so downstream tie-breaking is stable.
func dedupeMentions(mentions []models.ContactMention) []models.ContactMention {
	index := make(map[string]int, len(mentions))
	out := make([]models.ContactMention, 0, len(mentions))
	for _, m := range mentions {
		email := strings.ToLower(strings.TrimSpace(m.Email))
		if !strings.Contains(email, "@") {
			continue
		}
		m.Email = email
		if i, ok := index[email]; ok {
			if m.Confidence > out[i].Confidence {
				out[i] = m
			}
			continue
		}
		index[email] = len(out)
		out = append(out, m)
	}
	return out
}

func (e *Engine) processMention(ctx context.Context, mention models.ContactMention, ectx models.EmailContext, result *models.EnrichmentResult) (*processedMention, error) {
	var orgID string
	hasOrg := false
	if strings.TrimSpace(mention.Organization) != "" {
		org, created, err := e.orgs.Resolve(ctx, mention.Organization)
		if err != nil {
			return nil, fmt.Errorf("resolve organization: %w", err)
		}
		orgID = org.ID
		hasOrg = true
		if created {
			result.OrganizationsCreated++
		} else {
			result.OrganizationsMatched++
		}
	}

	existing, err := e.matcher.FindMatch(ctx, mention.Email, mention.Name)
	if err != nil {
		return nil, err
	}

	if existing != nil {
		if err := e.enrichExisting(ctx, existing, mention, orgID, ectx); err != nil {
			return nil, err
		}
		result.ContactsUpdated++
		return &processedMention{contact: existing, mention: mention, hasOrg: hasOrg}, nil
	}

	created, err := e.createContact(ctx, mention, orgID, ectx)
	if err != nil {
		return nil, err
	}
	result.ContactsCreated++
	return &processedMention{contact: created, mention: mention, hasOrg: hasOrg}, nil
}

// enrichExisting applies the merge policy: each enrichable field is set
// from the mention only if currently empty. Non-empty values are never
// overwritten, so hand-curated data survives lower-quality automated
// extraction. A single audit note is appended only when something
// actually changed.
func (e *Engine) enrichExisting(ctx context.Context, c *models.Contact, mention models.ContactMention, orgID string, ectx models.EmailContext) error {
	var enriched []string

	if name := strings.TrimSpace(mention.Name); c.FullName == "" && name != "" {
		c.FullName = name
		parsed := nameparse.Parse(name)
		if c.FirstName == "" {
			c.FirstName = parsed.First
		}
		if c.LastName == "" {
			c.LastName = parsed.Last
		}
		enriched = append(enriched, "full_name")
	}
	if c.OrganizationID == "" && orgID != "" {
		c.OrganizationID = orgID
		enriched = append(enriched, "organization_id")
	}
	if role := strings.TrimSpace(mention.Role); role != "" {
		if c.Role == "" {
			c.Role = role
			enriched = append(enriched, "role")
		}
		if c.Title == "" {
			c.Title = role
			enriched = append(enriched, "title")
		}
	}

	if len(enriched) == 0 {
		return nil
	}

	appendNote(c, e.provenanceNote(mention.Confidence, ectx, enriched))
	if err := e.contacts.UpdateContact(ctx, c); err != nil {
		return fmt.Errorf("update contact: %w", err)
	}
	return nil
}

func (e *Engine) createContact(ctx context.Context, mention models.ContactMention, orgID string, ectx models.EmailContext) (*models.Contact, error) {
	name := strings.TrimSpace(mention.Name)
	parsed := nameparse.Parse(name)

	c := &models.Contact{
		ID:              uuid.New().String(),
		Email:           mention.Email,
		AlternateEmails: []string{},
		FullName:        name,
		FirstName:       parsed.First,
		LastName:        parsed.Last,
		Role:            strings.TrimSpace(mention.Role),
		Title:           strings.TrimSpace(mention.Role),
		OrganizationID:  orgID,
	}
	appendNote(c, e.provenanceNote(mention.Confidence, ectx, []string{"created"}))

	if err := e.contacts.CreateContact(ctx, c); err != nil {
		return nil, fmt.Errorf("create contact: %w", err)
	}

	slog.Info("contact created",
		"email", c.Email,
		"name", c.FullName,
		"confidence", mention.Confidence,
	)
	return c, nil
}

// inferPrimary scores each processed contact against the email's
// address lists and returns the highest scorer, or nil when no contact
// reaches the acceptance threshold. The TO/FROM/CC bonuses are mutually
// exclusive, evaluated in that priority order. Ties keep the
// first-processed contact. The result is advisory and never persisted
// by the engine.
func (e *Engine) inferPrimary(processed []processedMention, ectx models.EmailContext) *models.PrimaryContact {
	if len(processed) == 0 {
		return nil
	}

	w := e.cfg.Weights
	to := addressSet(ectx.To)
	cc := addressSet(ectx.CC)
	from := strings.ToLower(strings.TrimSpace(ectx.From))

	var best *models.PrimaryContact
	for _, p := range processed {
		email := strings.ToLower(strings.TrimSpace(p.contact.Email))
		score := 0
		var reasons []string

		switch {
		case to[email]:
			score += w.ToRecipient
			reasons = append(reasons, "to_recipient")
		case from != "" && email == from:
			score += w.FromSender
			reasons = append(reasons, "from_sender")
		case cc[email]:
			score += w.CCRecipient
			reasons = append(reasons, "cc_recipient")
		}
		if strings.TrimSpace(p.mention.Role) != "" {
			score += w.HasRole
			reasons = append(reasons, "has_role")
		}
		if p.hasOrg {
			score += w.HasOrganization
			reasons = append(reasons, "has_organization")
		}
		if p.mention.Confidence >= w.HighConfidenceFloor {
			score += w.HighConfidence
			reasons = append(reasons, "high_confidence")
		}

		if best == nil || score > best.Score {
			best = &models.PrimaryContact{
				Email:           p.contact.Email,
				ContactID:       p.contact.ID,
				Score:           score,
				Confidence:      p.mention.Confidence,
				DetectionReason: strings.Join(reasons, ", "),
			}
		}
	}

	if best.Score < e.cfg.PrimaryThreshold {
		return nil
	}
	return best
}

func addressSet(addrs []string) map[string]bool {
	set := make(map[string]bool, len(addrs))
	for _, a := range addrs {
		if a = strings.ToLower(strings.TrimSpace(a)); a != "" {
			set[a] = true
		}
	}
	return set
}

// provenanceNote formats one audit-trail line for a contact's notes.
func (e *Engine) provenanceNote(confidence int, ectx models.EmailContext, fields []string) string {
	ts := time.Now().UTC().Format(time.RFC3339)
	return fmt.Sprintf("[enrichment %s] source=%s confidence=%d message_id=%s subject=%q fields=%s",
		ts, e.cfg.Source, confidence, ectx.MessageID, ectx.Subject, strings.Join(fields, ","))
}

// appendNote adds an audit line to a contact's notes without ever
// truncating what is already there.
func appendNote(c *models.Contact, note string) {
	if c.Notes == "" {
		c.Notes = note
		return
	}
	c.Notes += "\n" + note
}
