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

// ContactMention is one AI-extracted reference to a person found in an
// email. Mentions are ephemeral: they are consumed by the enrichment
// engine and discarded, only their effects on Contact/Organization
// records persist.
//
// This struct's JSON serialisation MUST match the mention objects the
// Python analysis worker emits in its result payload.
type ContactMention struct {
	Name         string `json:"name,omitempty"`
	Email        string `json:"email"`
	Organization string `json:"organization,omitempty"`
	Role         string `json:"role,omitempty"`
	Confidence   int    `json:"confidence"` // 0-100
}

// EmailContext carries the address lists and subject of the source email,
// used for provenance notes and primary-contact inference.
type EmailContext struct {
	MessageID string   `json:"message_id,omitempty"`
	To        []string `json:"to"`
	From      string   `json:"from"`
	CC        []string `json:"cc"`
	Subject   string   `json:"subject"`
}

// AnalysisResult is the payload the analysis worker publishes per email:
// the email context, the plain-text body, and the extracted mentions.
// Mentions may be empty when the worker deferred extraction; the server
// then calls the extraction API directly.
type AnalysisResult struct {
	MessageID   string           `json:"message_id"`
	TenantAlias string           `json:"tenant_alias,omitempty"`
	Email       EmailContext     `json:"email"`
	Body        string           `json:"body,omitempty"`
	Mentions    []ContactMention `json:"mentions"`
}
