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

package models

// PrimaryContact is the advisory result of primary-contact inference:
// the heuristically most significant person among those mentioned in one
// email. It is reported, never written back to the contact row.
type PrimaryContact struct {
	Email           string `json:"email"`
	ContactID       string `json:"contact_id"`
	Score           int    `json:"score"`
	Confidence      int    `json:"confidence"`
	DetectionReason string `json:"detection_reason"`
}

// EnrichmentResult is the per-email report of what the engine did.
type EnrichmentResult struct {
	ContactsCreated      int             `json:"contacts_created"`
	ContactsUpdated      int             `json:"contacts_updated"`
	ContactsSkipped      int             `json:"contacts_skipped"`
	OrganizationsCreated int             `json:"organizations_created"`
	OrganizationsMatched int             `json:"organizations_matched"`
	PrimaryContact       *PrimaryContact `json:"primary_contact"`
	Errors               []string        `json:"errors"`
}

// Removal actions reported by the bounceback handler.
const (
	RemovalPromotedAlternate = "promoted_alternate"
	RemovalDeletedContact    = "deleted_contact"
	RemovalRemovedAlternate  = "removed_alternate"
	RemovalNotFound          = "not_found"
	RemovalError             = "error"
)

// RemovalResult describes what the bounceback handler did to the
// contact store for one failed address.
type RemovalResult struct {
	Success      bool   `json:"success"`
	Action       string `json:"action"`
	ContactID    string `json:"contact_id,omitempty"`
	RemovedEmail string `json:"removed_email"`
	NewPrimary   string `json:"new_primary,omitempty"`
	Name         string `json:"name,omitempty"`
}

// BounceResult is the structured outcome of bounceback handling. Every
// outcome — promoted, deleted, removed-alternate, not-found,
// detection-failed, extraction-failed — is distinguishable here; none
// of them surfaces as an error to the caller.
type BounceResult struct {
	Success      bool           `json:"success"`
	IsBounceback bool           `json:"is_bounceback"`
	FailedEmail  string         `json:"failed_email,omitempty"`
	Removal      *RemovalResult `json:"removal_result,omitempty"`
}
