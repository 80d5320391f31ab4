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

// BlackChamber CEE — Contact Enrichment Service
//
// Entry point for the Go enrichment service. It:
//  1. Loads configuration from config.yaml
//  2. Connects to PostgreSQL and Redis
//  3. Consumes per-email analysis results from the results queue
//  4. Routes bounce notifications to the contact-repair handler
//  5. Folds extracted contact mentions into the contact/organization store
//  6. Publishes per-email enrichment reports for notification routing
//  7. Handles graceful shutdown on SIGTERM/SIGINT
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/bcem/enrichment/internal/bounce"
	"github.com/bcem/enrichment/internal/config"
	"github.com/bcem/enrichment/internal/dedup"
	"github.com/bcem/enrichment/internal/enrich"
	"github.com/bcem/enrichment/internal/extract"
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

	slog.Info("starting BlackChamber CEE enrichment service")

	// --- Load Configuration ---
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("configuration loaded",
		"confidence_threshold", cfg.ConfidenceThreshold,
		"contact_match_threshold", cfg.ContactMatchThreshold,
		"org_match_threshold", cfg.OrgMatchThreshold,
		"results_queue", cfg.ResultsQueue,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// --- Connect to PostgreSQL ---
	pgPool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to create Postgres pool", "error", err)
		os.Exit(1)
	}
	defer pgPool.Close()

	if err := pgPool.Ping(ctx); err != nil {
		slog.Error("failed to connect to PostgreSQL", "error", err)
		os.Exit(1)
	}
	slog.Info("connected to PostgreSQL")

	// --- Contact/Organization Store (Postgres) ---
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

	consumer := queue.NewConsumer(rdb, cfg.ResultsQueue, 5*time.Second)
	if err := consumer.Ping(ctx); err != nil {
		slog.Error("failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	slog.Info("connected to Redis")

	publisher := queue.NewPublisher(rdb, cfg.NotifyQueue)

	// --- Dedup Filter ---
	filter := dedup.NewFilter(rdb, cfg.DedupTTL)

	// --- Enrichment Engine ---
	matcher := match.NewMatcher(contactStore, cfg.ContactMatchThreshold, cfg.ContactCandidateCap)
	resolver := organization.NewResolver(contactStore, cfg.OrgMatchThreshold, cfg.OrgCandidateCap)
	engine := enrich.NewEngine(contactStore, matcher, resolver, enrich.Config{
		ConfidenceThreshold: cfg.ConfidenceThreshold,
		PrimaryThreshold:    cfg.PrimaryThreshold,
		Source:              "ai-extraction",
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

	// --- Bounce Handler ---
	bounces := bounce.NewHandler(contactStore, cfg.OwnIdentities)

	// --- Extraction Client (optional fallback) ---
	var extractor worker.Extractor
	if cfg.Extraction.BaseURL != "" {
		extractor = extract.NewClient(ctx, extract.Config{
			BaseURL:      cfg.Extraction.BaseURL,
			TokenURL:     cfg.Extraction.TokenURL,
			ClientID:     cfg.Extraction.ClientID,
			ClientSecret: cfg.Extraction.ClientSecret,
		})
		slog.Info("extraction fallback enabled", "url", cfg.Extraction.BaseURL)
	}

	// --- Worker ---
	w := worker.New(worker.Config{
		Source:    consumer,
		Dedup:     filter,
		Engine:    engine,
		Bounces:   bounces,
		Publisher: publisher,
		Extractor: extractor,
	})
	w.Start(ctx)

	// --- Health Check Server ---
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		// Check Redis
		if err := consumer.Ping(r.Context()); err != nil {
			http.Error(w, "redis unhealthy", http.StatusServiceUnavailable)
			return
		}
		// Check Postgres
		if err := pgPool.Ping(r.Context()); err != nil {
			http.Error(w, "postgres unhealthy", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	// --- Graceful Shutdown ---
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
		sig := <-sigCh

		slog.Info("received shutdown signal", "signal", sig)
		cancel() // Stop the worker loop

		w.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}

		rdb.Close()
		pgPool.Close()
	}()

	slog.Info("enrichment service listening", "addr", addr)
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	slog.Info("enrichment service stopped")
}
