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

// Package extract is the boundary client for the AI extraction API.
// The model call itself is a black box: the client posts an email's
// text and gets back contact mentions with confidence scores. Used
// only when an analysis result arrives without mentions.
package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2/clientcredentials"

	"github.com/bcem/enrichment/internal/models"
)

// Config holds the extraction API endpoint and OAuth2 client
// credentials.
type Config struct {
	BaseURL      string
	TokenURL     string
	ClientID     string
	ClientSecret string
}

// Client calls the extraction API.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient creates an extraction client whose transport refreshes
// OAuth2 client-credentials tokens automatically.
func NewClient(ctx context.Context, cfg Config) *Client {
	creds := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     cfg.TokenURL,
	}
	httpClient := creds.Client(ctx)
	httpClient.Timeout = 60 * time.Second

	return &Client{
		httpClient: httpClient,
		baseURL:    cfg.BaseURL,
	}
}

// extractRequest is the API's input contract.
type extractRequest struct {
	Subject string   `json:"subject"`
	From    string   `json:"from"`
	To      []string `json:"to"`
	CC      []string `json:"cc"`
	Body    string   `json:"body"`
}

// extractResponse is the API's output contract.
type extractResponse struct {
	Mentions []models.ContactMention `json:"mentions"`
	Model    string                  `json:"model,omitempty"`
}

// Extract posts an email's content and returns the extracted mentions.
func (c *Client) Extract(ctx context.Context, email models.EmailContext, body string) ([]models.ContactMention, error) {
	payload, err := json.Marshal(extractRequest{
		Subject: email.Subject,
		From:    email.From,
		To:      email.To,
		CC:      email.CC,
		Body:    body,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal extraction request: %w", err)
	}

	url := c.baseURL + "/v1/extract"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call extraction API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("extraction API returned HTTP %d", resp.StatusCode)
	}

	var decoded extractResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode extraction response: %w", err)
	}
	return decoded.Mentions, nil
}
