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
	"strings"
	"sync"
	"time"

	"github.com/bcem/enrichment/internal/models"
)

// Memory is an in-memory Store used by tests and local development.
// Records are held in insertion order so tie-breaking matches the
// Postgres store's ORDER BY created_at.
type Memory struct {
	mu       sync.Mutex
	contacts []*models.Contact
	orgs     []*models.Organization
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) GetContactByEmail(_ context.Context, email string) (*models.Contact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	want := strings.ToLower(strings.TrimSpace(email))
	for _, c := range m.contacts {
		if strings.ToLower(c.Email) == want {
			return cloneContact(c), nil
		}
	}
	return nil, nil
}

func (m *Memory) GetContactByAlternateEmail(_ context.Context, email string) (*models.Contact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	want := strings.ToLower(strings.TrimSpace(email))
	for _, c := range m.contacts {
		for _, alt := range c.AlternateEmails {
			if strings.ToLower(alt) == want {
				return cloneContact(c), nil
			}
		}
	}
	return nil, nil
}

func (m *Memory) SearchContactsByName(_ context.Context, terms []string, limit int) ([]models.Contact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	lowered := make([]string, 0, len(terms))
	for _, t := range terms {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
			lowered = append(lowered, t)
		}
	}
	if len(lowered) == 0 {
		return nil, nil
	}

	var out []models.Contact
	for _, c := range m.contacts {
		if len(out) >= limit {
			break
		}
		haystack := strings.ToLower(c.FullName + " " + c.FirstName + " " + c.LastName)
		for _, term := range lowered {
			if strings.Contains(haystack, term) {
				out = append(out, *cloneContact(c))
				break
			}
		}
	}
	return out, nil
}

func (m *Memory) CreateContact(_ context.Context, c *models.Contact) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	want := strings.ToLower(c.Email)
	for _, existing := range m.contacts {
		if strings.ToLower(existing.Email) == want {
			return fmt.Errorf("contact email %q already exists", c.Email)
		}
	}
	now := time.Now()
	c.CreatedAt = now
	c.UpdatedAt = now
	m.contacts = append(m.contacts, cloneContact(c))
	return nil
}

func (m *Memory) UpdateContact(_ context.Context, c *models.Contact) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, existing := range m.contacts {
		if existing.ID == c.ID {
			clone := cloneContact(c)
			clone.CreatedAt = existing.CreatedAt
			clone.UpdatedAt = time.Now()
			m.contacts[i] = clone
			return nil
		}
	}
	return fmt.Errorf("contact %s not found", c.ID)
}

func (m *Memory) DeleteContact(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, existing := range m.contacts {
		if existing.ID == id {
			m.contacts = append(m.contacts[:i], m.contacts[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("contact %s not found", id)
}

func (m *Memory) GetOrganizationByName(_ context.Context, name string) (*models.Organization, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	want := strings.ToLower(strings.TrimSpace(name))
	for _, o := range m.orgs {
		if strings.ToLower(o.Name) == want {
			clone := *o
			return &clone, nil
		}
	}
	return nil, nil
}

func (m *Memory) ListOrganizations(_ context.Context, limit int) ([]models.Organization, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Organization
	for _, o := range m.orgs {
		if len(out) >= limit {
			break
		}
		out = append(out, *o)
	}
	return out, nil
}

func (m *Memory) CreateOrganization(_ context.Context, org *models.Organization) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	want := strings.ToLower(org.Name)
	for _, existing := range m.orgs {
		if strings.ToLower(existing.Name) == want {
			return fmt.Errorf("organization %q already exists", org.Name)
		}
	}
	now := time.Now()
	org.CreatedAt = now
	org.UpdatedAt = now
	clone := *org
	m.orgs = append(m.orgs, &clone)
	return nil
}

// ContactCount reports how many contacts the store holds. Test helper.
func (m *Memory) ContactCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.contacts)
}

// OrganizationCount reports how many organizations the store holds.
// Test helper.
func (m *Memory) OrganizationCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.orgs)
}

func cloneContact(c *models.Contact) *models.Contact {
	clone := *c
	clone.AlternateEmails = append([]string(nil), c.AlternateEmails...)
	return &clone
}
