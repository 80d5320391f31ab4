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

// Package config loads configuration from config.yaml and environment variables.
//
// Every tuned constant of the enrichment engine — the confidence gate,
// both similarity thresholds, the primary-contact scoring table and its
// acceptance cutoff, the candidate-pool caps — lives here. The defaults
// are product-tuned, not derived; treat them as starting points.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Scoring holds the primary-contact point values.
type Scoring struct {
	ToRecipient         int `yaml:"to_recipient"`
	FromSender          int `yaml:"from_sender"`
	CCRecipient         int `yaml:"cc_recipient"`
	HasRole             int `yaml:"has_role"`
	HasOrganization     int `yaml:"has_organization"`
	HighConfidence      int `yaml:"high_confidence"`
	HighConfidenceFloor int `yaml:"high_confidence_floor"`
}

// Extraction holds the AI extraction API credentials. Empty BaseURL
// disables the direct-extraction fallback.
type Extraction struct {
	BaseURL      string `yaml:"url"`
	TokenURL     string `yaml:"token_url"`
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
}

// Config holds all configuration for the enrichment service.
type Config struct {
	// Postgres / Redis
	DatabaseURL string
	RedisURL    string

	// Queues
	ResultsQueue  string // analysis results in
	NotifyQueue   string // enrichment reports out
	BackfillQueue string // historical results for cmd/backfill

	// Enrichment tuning
	ConfidenceThreshold   int
	ContactMatchThreshold int
	OrgMatchThreshold     int
	PrimaryThreshold      int
	ContactCandidateCap   int
	OrgCandidateCap       int
	Scoring               Scoring

	// Bounce handling
	OwnIdentities []string

	// Extraction API (optional)
	Extraction Extraction

	// Dedup
	DedupTTL time.Duration

	// Server (health check only)
	Port int
}

// rawConfig mirrors the YAML structure for unmarshalling.
type rawConfig struct {
	Database struct {
		URL string `yaml:"url"`
	} `yaml:"database"`
	Redis struct {
		URL    string `yaml:"url"`
		Queues struct {
			Results  string `yaml:"results"`
			Notify   string `yaml:"notify"`
			Backfill string `yaml:"backfill"`
		} `yaml:"queues"`
	} `yaml:"redis"`
	Enrichment struct {
		ConfidenceThreshold   *int    `yaml:"confidence_threshold"`
		ContactMatchThreshold *int    `yaml:"contact_match_threshold"`
		OrgMatchThreshold     *int    `yaml:"org_match_threshold"`
		PrimaryThreshold      *int    `yaml:"primary_contact_threshold"`
		ContactCandidateCap   *int    `yaml:"contact_candidate_cap"`
		OrgCandidateCap       *int    `yaml:"org_candidate_cap"`
		Scoring               Scoring `yaml:"scoring"`
	} `yaml:"enrichment"`
	Bounce struct {
		OwnIdentities []string `yaml:"own_identities"`
	} `yaml:"bounce"`
	Extraction Extraction `yaml:"extraction"`
}

// Load reads configuration from config.yaml (with env var expansion)
// and environment variables for non-YAML settings.
func Load() (*Config, error) {
	configPath := envOrDefault("CONFIG_PATH", "/app/config/config.yaml")

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("read config file %s: %w", configPath, err)
	}

	// Expand ${VAR} references in the YAML
	expanded := os.ExpandEnv(string(data))

	var raw rawConfig
	if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
		return nil, fmt.Errorf("parse config YAML: %w", err)
	}

	cfg := &Config{
		DatabaseURL:           firstNonEmpty(raw.Database.URL, os.Getenv("DATABASE_URL")),
		RedisURL:              firstNonEmpty(raw.Redis.URL, envOrDefault("REDIS_URL", "redis://localhost:6379/0")),
		ResultsQueue:          firstNonEmpty(raw.Redis.Queues.Results, envOrDefault("RESULTS_QUEUE", "analysis_results")),
		NotifyQueue:           firstNonEmpty(raw.Redis.Queues.Notify, envOrDefault("NOTIFY_QUEUE", "notifications")),
		BackfillQueue:         firstNonEmpty(raw.Redis.Queues.Backfill, envOrDefault("BACKFILL_QUEUE", "analysis_results_backfill")),
		ConfidenceThreshold:   intOrDefault(raw.Enrichment.ConfidenceThreshold, 60),
		ContactMatchThreshold: intOrDefault(raw.Enrichment.ContactMatchThreshold, 85),
		OrgMatchThreshold:     intOrDefault(raw.Enrichment.OrgMatchThreshold, 90),
		PrimaryThreshold:      intOrDefault(raw.Enrichment.PrimaryThreshold, 50),
		ContactCandidateCap:   intOrDefault(raw.Enrichment.ContactCandidateCap, 50),
		OrgCandidateCap:       intOrDefault(raw.Enrichment.OrgCandidateCap, 200),
		Scoring:               raw.Enrichment.Scoring,
		OwnIdentities:         raw.Bounce.OwnIdentities,
		Extraction:            raw.Extraction,
		DedupTTL:              envOrDefaultDuration("DEDUP_TTL", 24*time.Hour),
		Port:                  envOrDefaultInt("PORT", 8080),
	}

	applyScoringDefaults(&cfg.Scoring)

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required — set it in config.yaml or the environment")
	}

	return cfg, nil
}

// applyScoringDefaults fills zero-valued scoring weights with the tuned
// defaults. A weight cannot be configured to exactly zero; omit the
// bonus condition upstream instead.
func applyScoringDefaults(s *Scoring) {
	if s.ToRecipient == 0 {
		s.ToRecipient = 40
	}
	if s.FromSender == 0 {
		s.FromSender = 30
	}
	if s.CCRecipient == 0 {
		s.CCRecipient = 20
	}
	if s.HasRole == 0 {
		s.HasRole = 15
	}
	if s.HasOrganization == 0 {
		s.HasOrganization = 10
	}
	if s.HighConfidence == 0 {
		s.HighConfidence = 5
	}
	if s.HighConfidenceFloor == 0 {
		s.HighConfidenceFloor = 80
	}
}

func intOrDefault(v *int, fallback int) int {
	if v != nil {
		return *v
	}
	return fallback
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envOrDefaultInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envOrDefaultDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
