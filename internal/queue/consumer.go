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

package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/bcem/enrichment/internal/models"
)

// Consumer reads analysis results from a Redis list.
type Consumer struct {
	rdb       *redis.Client
	queueName string
	timeout   time.Duration
}

// NewConsumer creates a consumer for the given queue. timeout bounds
// each blocking pop; zero means a 5 second poll.
func NewConsumer(rdb *redis.Client, queueName string, timeout time.Duration) *Consumer {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Consumer{
		rdb:       rdb,
		queueName: queueName,
		timeout:   timeout,
	}
}

// Next blocks for up to the configured timeout and returns the next
// analysis result, or (nil, nil) when the queue stayed empty. Malformed
// messages are logged and dropped — a bad payload must not wedge the
// queue.
func (c *Consumer) Next(ctx context.Context) (*models.AnalysisResult, error) {
	// Celery pushes with LPUSH, so the oldest message is at the tail.
	vals, err := c.rdb.BRPop(ctx, c.timeout, c.queueName).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis BRPOP %s: %w", c.queueName, err)
	}

	// BRPOP returns [key, value].
	result, err := parseAnalysisResult([]byte(vals[1]))
	if err != nil {
		slog.Warn("dropping malformed queue message",
			"queue", c.queueName,
			"error", err,
		)
		return nil, nil
	}
	return result, nil
}

// Len reports the queue's current depth.
func (c *Consumer) Len(ctx context.Context) (int64, error) {
	return c.rdb.LLen(ctx, c.queueName).Result()
}

// Ping checks the Redis connection.
func (c *Consumer) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return c.rdb.Ping(ctx).Err()
}
