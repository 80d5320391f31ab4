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

// BlackChamber CEE — Historical Enrichment Backfill
//
// Standalone CLI tool that drains a backlog queue of analysis results
// through the same enrichment pipeline the server runs. Intended for
// re-enriching historical email after threshold tuning or on new
// deployments.
//
// Usage:
//
//	go run ./cmd/backfill/ [--queue analysis_results_backfill] [--max 0]
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/bcem/enrichment/internal/bounce"
	"github.com/bcem/enrichment/internal/config"
	"github.com/bcem/enrichment/internal/dedup"
	"github.com/bcem/enrichment/internal/enrich"
	"github.com/bcem/enrichment/internal/match"
	"github.com/bcem/enrichment/internal/organization"
	"github.com/bcem/enrichment/internal/queue"
	"github.com/bcem/enrichment/internal/store"
	"github.com/bcem/enrichment/internal/worker"
)

func main() {
	// Structured JSON logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// --- CLI Flags ---
	queueFlag := flag.String("queue", "", "Backlog queue to drain (default: config backfill queue)")
	maxFlag := flag.Int("max", 0, "Maximum messages to process (0 = until empty)")
	flag.Parse()

	// --- Load Configuration ---
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	queueName := *queueFlag
	if queueName == "" {
		queueName = cfg.BackfillQueue
	}

	slog.Info("starting enrichment backfill", "queue", queueName, "max", *maxFlag)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// --- Connect to PostgreSQL ---
	pgPool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to create Postgres pool", "error", err)
		os.Exit(1)
	}
	defer pgPool.Close()

	contactStore, err := store.NewPostgres(ctx, pgPool)
	if err != nil {
		slog.Error("failed to initialise contact store", "error", err)
		os.Exit(1)
	}

	// --- Connect to Redis ---
	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		slog.Error("invalid REDIS_URL", "error", err)
		os.Exit(1)
	}
	rdb := redis.NewClient(opt)
	defer rdb.Close()

	consumer := queue.NewConsumer(rdb, queueName, 2*time.Second)
	if err := consumer.Ping(ctx); err != nil {
		slog.Error("failed to connect to Redis", "error", err)
		os.Exit(1)
	}

	// --- Pipeline (no report publishing during backfill) ---
	matcher := match.NewMatcher(contactStore, cfg.ContactMatchThreshold, cfg.ContactCandidateCap)
	resolver := organization.NewResolver(contactStore, cfg.OrgMatchThreshold, cfg.OrgCandidateCap)
	engine := enrich.NewEngine(contactStore, matcher, resolver, enrich.Config{
		ConfidenceThreshold: cfg.ConfidenceThreshold,
		PrimaryThreshold:    cfg.PrimaryThreshold,
		Source:              "ai-extraction-backfill",
		Weights: enrich.Weights{
			ToRecipient:         cfg.Scoring.ToRecipient,
			FromSender:          cfg.Scoring.FromSender,
			CCRecipient:         cfg.Scoring.CCRecipient,
			HasRole:             cfg.Scoring.HasRole,
			HasOrganization:     cfg.Scoring.HasOrganization,
			HighConfidence:      cfg.Scoring.HighConfidence,
			HighConfidenceFloor: cfg.Scoring.HighConfidenceFloor,
		},
	})

	w := worker.New(worker.Config{
		Engine:  engine,
		Dedup:   dedup.NewFilter(rdb, cfg.DedupTTL),
		Bounces: bounce.NewHandler(contactStore, cfg.OwnIdentities),
	})

	// --- Drain the queue ---
	start := time.Now()
	var processed, duplicates, bounces, enriched, failed int
	for *maxFlag == 0 || processed < *maxFlag {
		depth, err := consumer.Len(ctx)
		if err != nil {
			slog.Error("queue depth check failed", "error", err)
			os.Exit(1)
		}
		if depth == 0 {
			break
		}

		res, err := consumer.Next(ctx)
		if err != nil {
			slog.Error("queue read failed", "error", err)
			os.Exit(1)
		}
		if res == nil {
			continue // malformed message dropped
		}

		processed++
		out, err := w.ProcessResult(ctx, res)
		if err != nil {
			failed++
			slog.Error("backfill processing failed",
				"message_id", res.MessageID,
				"error", err,
			)
			// Continue with other messages
			continue
		}
		switch {
		case out.Duplicate:
			duplicates++
		case out.Bounce != nil:
			bounces++
		default:
			enriched++
		}
	}

	elapsed := time.Since(start)
	slog.Info("backfill complete",
		"processed", processed,
		"enriched", enriched,
		"bounces", bounces,
		"duplicates", duplicates,
		"failed", failed,
		"elapsed", elapsed,
	)

	fmt.Printf("Backfill complete: %d processed (%d enriched, %d bounces, %d duplicates, %d failed) in %s\n",
		processed, enriched, bounces, duplicates, failed, elapsed.Round(time.Millisecond))
}
