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

package organization

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/bcem/enrichment/internal/models"
	"github.com/bcem/enrichment/internal/similarity"
)

// maxNameLen is the longest organization name the store accepts; longer
// names are truncated with an ellipsis before any matching.
const maxNameLen = 252

// Store is the slice of the organization store the resolver needs.
// Implemented by store.Postgres and store.Memory.
type Store interface {
	// GetOrganizationByName returns the organization whose name matches
	// case-insensitively, or nil if none exists.
	GetOrganizationByName(ctx context.Context, name string) (*models.Organization, error)
	// ListOrganizations returns up to limit organizations in first-seen order.
	ListOrganizations(ctx context.Context, limit int) ([]models.Organization, error)
	CreateOrganization(ctx context.Context, org *models.Organization) error
}

// Resolver finds or creates organization records. The fuzzy threshold
// is stricter than the contact matcher's because a false organization
// merge is harder to undo and more visible.
type Resolver struct {
	store        Store
	threshold    int
	candidateCap int
}

// NewResolver creates a resolver. threshold is the minimum similarity
// score (0-100) to reuse an existing record; candidateCap bounds the
// fuzzy comparison pool.
func NewResolver(store Store, threshold, candidateCap int) *Resolver {
	return &Resolver{
		store:        store,
		threshold:    threshold,
		candidateCap: candidateCap,
	}
}

// Resolve finds the organization record for name, creating one if no
// existing record matches. Returns the record and whether it was
// created by this call. Only the create path mutates the store.
func (r *Resolver) Resolve(ctx context.Context, name string) (*models.Organization, bool, error) {
	name = truncateName(strings.TrimSpace(name))
	if name == "" {
		return nil, false, fmt.Errorf("empty organization name")
	}

	// Exact case-insensitive match first.
	existing, err := r.store.GetOrganizationByName(ctx, name)
	if err != nil {
		return nil, false, fmt.Errorf("organization lookup: %w", err)
	}
	if existing != nil {
		return existing, false, nil
	}

	// Fuzzy match over a bounded pool of normalized names.
	candidates, err := r.store.ListOrganizations(ctx, r.candidateCap)
	if err != nil {
		return nil, false, fmt.Errorf("organization candidates: %w", err)
	}

	norm := Normalize(name)
	var best *models.Organization
	bestScore := 0
	for i := range candidates {
		score := similarity.Score(norm, Normalize(candidates[i].Name))
		// Strict > keeps the first-seen record on ties.
		if score > bestScore {
			bestScore = score
			best = &candidates[i]
		}
	}

	if best != nil && bestScore >= r.threshold {
		slog.Debug("organization fuzzy match",
			"input", name,
			"matched", best.Name,
			"score", bestScore,
		)
		return best, false, nil
	}

	// No match — create with the verbatim (truncated) name.
	org := &models.Organization{
		ID:   uuid.New().String(),
		Name: name,
	}
	if err := r.store.CreateOrganization(ctx, org); err != nil {
		return nil, false, fmt.Errorf("create organization %q: %w", name, err)
	}

	slog.Info("organization created", "name", name, "id", org.ID)
	return org, true, nil
}

// truncateName caps name at maxNameLen runes, appending an ellipsis
// when it was cut.
func truncateName(name string) string {
	runes := []rune(name)
	if len(runes) <= maxNameLen {
		return name
	}
	return string(runes[:maxNameLen]) + "..."
}
