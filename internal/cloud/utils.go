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

// This file provides the hierarchical configuration loader and the shared
// helper for calling a generative model with retries and token accounting.
package cloud

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"go.opentelemetry.io/otel/metric"
	"google.golang.org/genai"
)

const (
	// ConfigFileBaseName is the base configuration file name. The runtime
	// overlay is resolved as ".env.<runtime>.toml" in the same directory.
	ConfigFileBaseName  = ".env"
	ConfigFileExtension = ".toml"
	ConfigFileSeparator = "."
	// EnvConfigFilePrefix names the environment variable holding the
	// directory the configuration files live in.
	EnvConfigFilePrefix = "GCP_CONFIG_PREFIX"
	// EnvConfigRuntime names the environment variable selecting the runtime
	// overlay. Defaults to "test" when unset.
	EnvConfigRuntime = "GCP_RUNTIME"
	// MaxRetries bounds model-call retry attempts.
	MaxRetries = 3
)

// SetEnvIfEmpty sets an environment variable only when it is not already
// set, so deployment environments can override the defaults.
func SetEnvIfEmpty(key string, value string) error {
	if len(os.Getenv(key)) > 0 {
		return nil
	}
	return os.Setenv(key, value)
}

// LoadConfig decodes the base TOML file and then the runtime-specific overlay
// on top of it, so environment files only need to list the values they change.
//
// Inputs:
//   - baseConfig: A pointer to the Config struct to populate.
func LoadConfig(baseConfig interface{}) {
	prefix := os.Getenv(EnvConfigFilePrefix)
	runtime := os.Getenv(EnvConfigRuntime)
	if len(runtime) == 0 {
		runtime = "test"
	}

	baseFile := strings.Join([]string{prefix, string(os.PathSeparator), ConfigFileBaseName, ConfigFileExtension}, "")
	if _, err := toml.DecodeFile(baseFile, baseConfig); err != nil {
		slog.Warn("failed to decode base config file", "file", baseFile, "error", err)
	}

	runtimeFile := strings.Join([]string{prefix, string(os.PathSeparator), ConfigFileBaseName, ConfigFileSeparator, runtime, ConfigFileExtension}, "")
	if _, err := toml.DecodeFile(runtimeFile, baseConfig); err != nil {
		slog.Warn("failed to decode runtime config file", "file", runtimeFile, "error", err)
	}
}

// GenerateTextResponse executes a model call and concatenates the text parts
// of the first candidate. Failed calls retry up to MaxRetries times, with the
// retry counter recording each attempt. Token usage from the response
// metadata is recorded on the input and output counters. Markdown code fences
// around a JSON payload are stripped before returning.
//
// Inputs:
//   - ctx: The Go context for the model call.
//   - inputTokenCounter: Counter for prompt tokens consumed.
//   - outputTokenCounter: Counter for candidate tokens produced.
//   - retryCounter: Counter for retry attempts.
//   - tryCount: The current attempt number, starting at 0.
//   - model: The generative model to invoke.
//   - prompt: The prompt content to send.
//
// Outputs:
//   - string: The model's text response with any JSON fences removed.
//   - error: The terminal error after retries are exhausted.
func GenerateTextResponse(
	ctx context.Context,
	inputTokenCounter metric.Int64Counter,
	outputTokenCounter metric.Int64Counter,
	retryCounter metric.Int64Counter,
	tryCount int,
	model ContentGenerator,
	prompt []*genai.Content,
) (string, error) {
	resp, err := model.GenerateContent(ctx, prompt)
	if err != nil {
		if tryCount < MaxRetries {
			retryCounter.Add(ctx, 1)
			return GenerateTextResponse(ctx, inputTokenCounter, outputTokenCounter, retryCounter, tryCount+1, model, prompt)
		}
		return "", fmt.Errorf("model call failed after %d attempts: %w", tryCount, err)
	}

	if resp.UsageMetadata != nil {
		inputTokenCounter.Add(ctx, int64(resp.UsageMetadata.PromptTokenCount))
		outputTokenCounter.Add(ctx, int64(resp.UsageMetadata.CandidatesTokenCount))
	}

	out := strings.Builder{}
	for _, candidate := range resp.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			out.WriteString(part.Text)
		}
	}

	text := strings.TrimSpace(out.String())
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text), nil
}
