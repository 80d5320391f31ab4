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

// Package queue moves work between this service and the Python
// analysis workers over Redis lists, in Celery-compatible task format.
// The consumer reads per-email analysis results; the publisher emits
// enrichment reports for downstream notification routing.
package queue

import (
	"encoding/json"
	"fmt"

	"github.com/bcem/enrichment/internal/models"
)

// celeryTask represents a Celery-compatible task message.
// Celery reads and writes tasks using this exact JSON structure.
type celeryTask struct {
	ID      string        `json:"id"`
	Task    string        `json:"task"`
	Args    []interface{} `json:"args"`
	Kwargs  interface{}   `json:"kwargs"`
	Retries int           `json:"retries"`
	ETA     *string       `json:"eta"`
}

// celeryMessage wraps a task for Redis transport.
type celeryMessage struct {
	Body            string                 `json:"body"`
	ContentEncoding string                 `json:"content-encoding"`
	ContentType     string                 `json:"content-type"`
	Headers         map[string]interface{} `json:"headers"`
	Properties      map[string]interface{} `json:"properties"`
}

// parseAnalysisResult unwraps a raw queue message down to the
// AnalysisResult payload: Redis message → Celery envelope → task →
// first positional arg (a JSON string).
func parseAnalysisResult(raw []byte) (*models.AnalysisResult, error) {
	var msg celeryMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return nil, fmt.Errorf("decode celery message: %w", err)
	}

	var task celeryTask
	if err := json.Unmarshal([]byte(msg.Body), &task); err != nil {
		return nil, fmt.Errorf("decode celery task body: %w", err)
	}

	if len(task.Args) == 0 {
		return nil, fmt.Errorf("celery task %s has no args", task.ID)
	}
	payload, ok := task.Args[0].(string)
	if !ok {
		return nil, fmt.Errorf("celery task %s arg is not a string", task.ID)
	}

	var result models.AnalysisResult
	if err := json.Unmarshal([]byte(payload), &result); err != nil {
		return nil, fmt.Errorf("decode analysis result: %w", err)
	}
	if result.MessageID == "" {
		return nil, fmt.Errorf("analysis result missing message_id")
	}
	return &result, nil
}
