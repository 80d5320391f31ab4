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

// Package models defines the data structures shared across the enrichment service.
package models

import "time"

// Contact is a natural person known to the organization.
//
// Email is the primary address, unique across the store (case-insensitive).
// AlternateEmails never contains the current Email value. Notes is an
// append-only audit trail of enrichment events — automated processes
// append to it, never truncate it.
type Contact struct {
	ID              string
	Email           string
	AlternateEmails []string
	FullName        string
	FirstName       string
	LastName        string
	Role            string
	Title           string
	Notes           string

	// OrganizationID and PrimaryContactID are weak references; empty
	// means unset. PrimaryContactID points at another Contact and
	// implies no ownership.
	OrganizationID   string
	PrimaryContactID string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Organization is an institution, company, or group. Name is stored
// verbatim as first seen; uniqueness is enforced under normalization by
// the resolver, not by the store.
type Organization struct {
	ID        string
	Name      string
	Type      string
	Notes     string
	CreatedAt time.Time
	UpdatedAt time.Time
}
