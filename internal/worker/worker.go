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

// Package worker runs the per-email processing pipeline: pull an
// analysis result off the queue, drop repeats, route bounces to the
// bounce handler, run everything else through the enrichment engine,
// and publish the report. One email is processed start-to-finish per
// iteration; enrichment failures never block the consume loop.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/bcem/enrichment/internal/bounce"
	"github.com/bcem/enrichment/internal/enrich"
	"github.com/bcem/enrichment/internal/models"
)

// ResultSource yields analysis results. Implemented by queue.Consumer.
type ResultSource interface {
	Next(ctx context.Context) (*models.AnalysisResult, error)
}

// Dedup filters already-processed message IDs. Implemented by
// dedup.Filter.
type Dedup interface {
	IsNew(ctx context.Context, messageID string) (bool, error)
}

// ReportPublisher emits enrichment reports. Implemented by
// queue.Publisher.
type ReportPublisher interface {
	PublishResult(ctx context.Context, messageID string, result *models.EnrichmentResult) error
}

// Extractor fetches mentions for emails whose analysis deferred
// extraction. Implemented by extract.Client.
type Extractor interface {
	Extract(ctx context.Context, email models.EmailContext, body string) ([]models.ContactMention, error)
}

// Outcome reports what the pipeline did with one analysis result.
// Exactly one of the fields is meaningful.
type Outcome struct {
	Duplicate  bool
	Bounce     *models.BounceResult
	Enrichment *models.EnrichmentResult
}

// Config holds the worker's dependencies. Publisher and Extractor are
// optional.
type Config struct {
	Source    ResultSource
	Dedup     Dedup
	Engine    *enrich.Engine
	Bounces   *bounce.Handler
	Publisher ReportPublisher
	Extractor Extractor
}

// Worker consumes and processes analysis results.
type Worker struct {
	source    ResultSource
	dedup     Dedup
	engine    *enrich.Engine
	bounces   *bounce.Handler
	publisher ReportPublisher
	extractor Extractor

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a worker.
func New(cfg Config) *Worker {
	return &Worker{
		source:    cfg.Source,
		dedup:     cfg.Dedup,
		engine:    cfg.Engine,
		bounces:   cfg.Bounces,
		publisher: cfg.Publisher,
		extractor: cfg.Extractor,
	}
}

// Start launches the consume loop in a background goroutine.
func (w *Worker) Start(ctx context.Context) {
	ctx, w.cancel = context.WithCancel(ctx)
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		slog.Info("enrichment worker started")
		for {
			select {
			case <-ctx.Done():
				slog.Info("enrichment worker stopped")
				return
			default:
			}

			res, err := w.source.Next(ctx)
			if err != nil {
				if ctx.Err() != nil {
					continue
				}
				slog.Error("queue read failed", "error", err)
				time.Sleep(2 * time.Second)
				continue
			}
			if res == nil {
				continue
			}

			if _, err := w.ProcessResult(ctx, res); err != nil {
				slog.Error("processing failed",
					"message_id", res.MessageID,
					"error", err,
				)
			}
		}
	}()
}

// Stop signals the consume loop to exit and waits for the in-flight
// message to finish. Partial results are not rolled back.
func (w *Worker) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}

// ProcessResult runs the pipeline for a single analysis result.
func (w *Worker) ProcessResult(ctx context.Context, res *models.AnalysisResult) (*Outcome, error) {
	if w.dedup != nil {
		fresh, err := w.dedup.IsNew(ctx, res.MessageID)
		if err != nil {
			return nil, fmt.Errorf("dedup check: %w", err)
		}
		if !fresh {
			slog.Debug("skipping already-processed message", "message_id", res.MessageID)
			return &Outcome{Duplicate: true}, nil
		}
	}

	// Bounce notifications repair the store directly; they never feed
	// the enrichment engine.
	if bounce.IsBounce(res.Email.Subject, res.Body) {
		br := w.bounces.Handle(ctx, res.Email.Subject, res.Body)
		return &Outcome{Bounce: br}, nil
	}

	mentions := res.Mentions
	if len(mentions) == 0 && w.extractor != nil {
		var err error
		mentions, err = w.extractor.Extract(ctx, res.Email, res.Body)
		if err != nil {
			return nil, fmt.Errorf("extract mentions: %w", err)
		}
	}

	result := w.engine.Process(ctx, mentions, res.Email)

	if w.publisher != nil {
		// Store mutations are already committed; a report publish
		// failure is logged, not propagated.
		if err := w.publisher.PublishResult(ctx, res.MessageID, result); err != nil {
			slog.Error("publish enrichment report failed",
				"message_id", res.MessageID,
				"error", err,
			)
		}
	}

	return &Outcome{Enrichment: result}, nil
}
