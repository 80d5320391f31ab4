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

package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bcem/enrichment/internal/models"
)

// Postgres is the production Store backed by a pgx pool.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres creates a Postgres store backed by the given pool. It
// ensures the contacts and organizations tables exist on creation.
func NewPostgres(ctx context.Context, pool *pgxpool.Pool) (*Postgres, error) {
	s := &Postgres{pool: pool}
	if err := s.ensureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure contact schema: %w", err)
	}
	slog.Info("contact store initialised")
	return s, nil
}

func (s *Postgres) ensureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS contacts (
			id                 TEXT PRIMARY KEY,
			email              TEXT NOT NULL,
			alternate_emails   TEXT[] NOT NULL DEFAULT '{}',
			full_name          TEXT NOT NULL DEFAULT '',
			first_name         TEXT NOT NULL DEFAULT '',
			last_name          TEXT NOT NULL DEFAULT '',
			role               TEXT NOT NULL DEFAULT '',
			title              TEXT NOT NULL DEFAULT '',
			notes              TEXT NOT NULL DEFAULT '',
			organization_id    TEXT,
			primary_contact_id TEXT,
			created_at         TIMESTAMPTZ DEFAULT NOW(),
			updated_at         TIMESTAMPTZ DEFAULT NOW()
		);
		CREATE UNIQUE INDEX IF NOT EXISTS idx_contacts_email ON contacts(LOWER(email));
		CREATE INDEX IF NOT EXISTS idx_contacts_full_name ON contacts(LOWER(full_name));
		CREATE INDEX IF NOT EXISTS idx_contacts_last_name ON contacts(LOWER(last_name));

		CREATE TABLE IF NOT EXISTS organizations (
			id         TEXT PRIMARY KEY,
			name       VARCHAR(255) NOT NULL,
			type       TEXT NOT NULL DEFAULT '',
			notes      TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ DEFAULT NOW(),
			updated_at TIMESTAMPTZ DEFAULT NOW()
		);
		CREATE UNIQUE INDEX IF NOT EXISTS idx_orgs_name ON organizations(LOWER(name));
	`)
	return err
}

const contactColumns = `
	id, email, alternate_emails, full_name, first_name, last_name,
	role, title, notes, COALESCE(organization_id, ''),
	COALESCE(primary_contact_id, ''), created_at, updated_at`

// GetContactByEmail returns the contact whose primary email matches
// case-insensitively, or nil if none exists.
func (s *Postgres) GetContactByEmail(ctx context.Context, email string) (*models.Contact, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+contactColumns+`
		FROM contacts
		WHERE LOWER(email) = LOWER($1)
	`, email)
	return scanContact(row)
}

// GetContactByAlternateEmail returns the contact holding email in its
// alternate list, or nil if none does.
func (s *Postgres) GetContactByAlternateEmail(ctx context.Context, email string) (*models.Contact, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+contactColumns+`
		FROM contacts
		WHERE EXISTS (
			SELECT 1 FROM unnest(alternate_emails) AS ae
			WHERE LOWER(ae) = LOWER($1)
		)
		ORDER BY created_at
		LIMIT 1
	`, email)
	return scanContact(row)
}

// SearchContactsByName returns up to limit contacts whose names contain
// any of the terms, in first-seen order.
func (s *Postgres) SearchContactsByName(ctx context.Context, terms []string, limit int) ([]models.Contact, error) {
	if len(terms) == 0 {
		return nil, nil
	}

	patterns := make([]string, 0, len(terms))
	for _, t := range terms {
		if t != "" {
			patterns = append(patterns, "%"+t+"%")
		}
	}
	if len(patterns) == 0 {
		return nil, nil
	}

	rows, err := s.pool.Query(ctx, `
		SELECT `+contactColumns+`
		FROM contacts
		WHERE full_name ILIKE ANY($1)
		   OR first_name ILIKE ANY($1)
		   OR last_name ILIKE ANY($1)
		ORDER BY created_at
		LIMIT $2
	`, patterns, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectContacts(rows)
}

// CreateContact inserts a new contact record.
func (s *Postgres) CreateContact(ctx context.Context, c *models.Contact) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO contacts
			(id, email, alternate_emails, full_name, first_name, last_name,
			 role, title, notes, organization_id, primary_contact_id)
		VALUES ($1, $2, COALESCE($3::text[], '{}'), $4, $5, $6, $7, $8, $9, NULLIF($10, ''), NULLIF($11, ''))
	`, c.ID, c.Email, c.AlternateEmails, c.FullName, c.FirstName, c.LastName,
		c.Role, c.Title, c.Notes, c.OrganizationID, c.PrimaryContactID)
	return err
}

// UpdateContact writes all mutable fields of an existing contact.
func (s *Postgres) UpdateContact(ctx context.Context, c *models.Contact) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE contacts SET
			email              = $2,
			alternate_emails   = COALESCE($3::text[], '{}'),
			full_name          = $4,
			first_name         = $5,
			last_name          = $6,
			role               = $7,
			title              = $8,
			notes              = $9,
			organization_id    = NULLIF($10, ''),
			primary_contact_id = NULLIF($11, ''),
			updated_at         = NOW()
		WHERE id = $1
	`, c.ID, c.Email, c.AlternateEmails, c.FullName, c.FirstName, c.LastName,
		c.Role, c.Title, c.Notes, c.OrganizationID, c.PrimaryContactID)
	return err
}

// DeleteContact removes a contact record.
func (s *Postgres) DeleteContact(ctx context.Context, id string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM contacts WHERE id = $1`, id)
	return err
}

// GetOrganizationByName returns the organization whose name matches
// case-insensitively, or nil if none exists.
func (s *Postgres) GetOrganizationByName(ctx context.Context, name string) (*models.Organization, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, name, type, notes, created_at, updated_at
		FROM organizations
		WHERE LOWER(name) = LOWER($1)
	`, name)
	return scanOrganization(row)
}

// ListOrganizations returns up to limit organizations in first-seen order.
func (s *Postgres) ListOrganizations(ctx context.Context, limit int) ([]models.Organization, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, type, notes, created_at, updated_at
		FROM organizations
		ORDER BY created_at
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orgs []models.Organization
	for rows.Next() {
		var o models.Organization
		if err := rows.Scan(&o.ID, &o.Name, &o.Type, &o.Notes, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, err
		}
		orgs = append(orgs, o)
	}
	return orgs, rows.Err()
}

// CreateOrganization inserts a new organization record.
func (s *Postgres) CreateOrganization(ctx context.Context, org *models.Organization) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO organizations (id, name, type, notes)
		VALUES ($1, $2, $3, $4)
	`, org.ID, org.Name, org.Type, org.Notes)
	return err
}

// scanContact scans a single row into a Contact.
func scanContact(row pgx.Row) (*models.Contact, error) {
	var c models.Contact
	err := row.Scan(
		&c.ID, &c.Email, &c.AlternateEmails, &c.FullName, &c.FirstName,
		&c.LastName, &c.Role, &c.Title, &c.Notes, &c.OrganizationID,
		&c.PrimaryContactID, &c.CreatedAt, &c.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// collectContacts scans multiple rows into a slice of Contacts.
func collectContacts(rows pgx.Rows) ([]models.Contact, error) {
	var contacts []models.Contact
	for rows.Next() {
		var c models.Contact
		if err := rows.Scan(
			&c.ID, &c.Email, &c.AlternateEmails, &c.FullName, &c.FirstName,
			&c.LastName, &c.Role, &c.Title, &c.Notes, &c.OrganizationID,
			&c.PrimaryContactID, &c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, err
		}
		contacts = append(contacts, c)
	}
	return contacts, rows.Err()
}

func scanOrganization(row pgx.Row) (*models.Organization, error) {
	var o models.Organization
	err := row.Scan(&o.ID, &o.Name, &o.Type, &o.Notes, &o.CreatedAt, &o.UpdatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}
