// Copyright 2025 ClipFarm, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// This file wraps the genai client with client-side quota handling so
// pipeline commands never have to reason about rate limits themselves.
package cloud

import (
	"context"
	"errors"
	"time"

	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

// ErrRateLimitExhausted is returned when a call cannot be admitted after the
// maximum number of rate-limit waits.
var ErrRateLimitExhausted = errors.New("rate limit exceeded after retries")

// ContentGenerator is the narrow model surface pipeline commands depend on.
// *QuotaAwareGenerativeAIModel is the production implementation; tests
// substitute canned responders.
type ContentGenerator interface {
	GenerateContent(ctx context.Context, content []*genai.Content) (*genai.GenerateContentResponse, error)
}

// QuotaAwareGenerativeAIModel binds a model name, its generation config, and
// a token-bucket rate limiter. Calls that exceed the limiter back off and
// retry a bounded number of times before failing.
type QuotaAwareGenerativeAIModel struct {
	GenerativeContentConfig *genai.GenerateContentConfig
	ModelName               string
	ModelHandle             *genai.Models
	RateLimit               rate.Limiter
}

// NewQuotaAwareModel wraps a genai model handle with a requests-per-second
// rate limit.
//
// Inputs:
//   - config: The generation config applied to every call.
//   - name: The model resource name, e.g. "gemini-2.0-flash".
//   - handle: The Models accessor from the shared genai client.
//   - requestsPerSecond: The sustained client-side request rate.
//
// Outputs:
//   - *QuotaAwareGenerativeAIModel: The wrapped model.
func NewQuotaAwareModel(
	config *genai.GenerateContentConfig,
	name string,
	handle *genai.Models,
	requestsPerSecond float64,
) *QuotaAwareGenerativeAIModel {
	return &QuotaAwareGenerativeAIModel{
		GenerativeContentConfig: config,
		ModelName:               name,
		ModelHandle:             handle,
		RateLimit:               *rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
	}
}

// GenerateContent admits the call through the rate limiter, sleeping and
// re-trying up to MaxRetries times when the bucket is empty, then delegates
// to the underlying model.
func (q *QuotaAwareGenerativeAIModel) GenerateContent(ctx context.Context, content []*genai.Content) (*genai.GenerateContentResponse, error) {
	for attempt := 0; attempt <= MaxRetries; attempt++ {
		if q.RateLimit.Allow() {
			return q.ModelHandle.GenerateContent(ctx, q.ModelName, content, q.GenerativeContentConfig)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Duration(attempt+1) * time.Second):
		}
	}
	return nil, ErrRateLimitExhausted
}
