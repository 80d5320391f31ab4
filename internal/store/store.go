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

// Package store persists contact and organization records. The
// Postgres implementation backs the service; the in-memory
// implementation backs tests. Lookups return (nil, nil) when no record
// exists — absence is not an error.
package store

import (
	"context"

	"github.com/bcem/enrichment/internal/models"
)

// ContactStore is the contact persistence surface the matcher,
// enrichment engine, and bounceback handler depend on. Email lookups
// are case-insensitive; the store maintains a unique index on the
// primary email.
type ContactStore interface {
	GetContactByEmail(ctx context.Context, email string) (*models.Contact, error)
	GetContactByAlternateEmail(ctx context.Context, email string) (*models.Contact, error)
	// SearchContactsByName returns up to limit contacts whose full,
	// first, or last name contains any of the terms
	// (case-insensitive), in first-seen order. It is the cheap
	// pre-filter feeding fuzzy matching, not a ranker.
	SearchContactsByName(ctx context.Context, terms []string, limit int) ([]models.Contact, error)
	CreateContact(ctx context.Context, c *models.Contact) error
	UpdateContact(ctx context.Context, c *models.Contact) error
	DeleteContact(ctx context.Context, id string) error
}

// OrganizationStore is the organization persistence surface the
// resolver depends on.
type OrganizationStore interface {
	GetOrganizationByName(ctx context.Context, name string) (*models.Organization, error)
	ListOrganizations(ctx context.Context, limit int) ([]models.Organization, error)
	CreateOrganization(ctx context.Context, org *models.Organization) error
}

// Store combines both persistence surfaces.
type Store interface {
	ContactStore
	OrganizationStore
}
