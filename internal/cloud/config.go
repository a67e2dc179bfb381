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

// Package cloud groups the Google Cloud integrations: hierarchical TOML
// configuration, the service-client container, the rate-limited Gemini
// wrapper, the media object store, Pub/Sub listeners, and the status event
// publisher. This file defines the configuration structs that the TOML files
// under configs/ decode into.
package cloud

import "google.golang.org/genai"

// ApplicationConfig holds the service identity and project-level settings.
type ApplicationConfig struct {
	Name                      string `toml:"name"`
	GoogleProjectId           string `toml:"google_project_id"`
	GoogleLocation            string `toml:"location"`
	ThreadPoolSize            int    `toml:"thread_pool_size"`
	SignerServiceAccountEmail string `toml:"signer_service_account_email"`
}

// StorageConfig names the media buckets and their per-object size caps.
// Buckets are created public so stored objects serve directly from their
// public URLs.
type StorageConfig struct {
	VideoBucket       string `toml:"video_bucket"`
	ShortsBucket      string `toml:"shorts_bucket"`
	VideoSizeLimit    int64  `toml:"video_size_limit"`
	ShortsSizeLimit   int64  `toml:"shorts_size_limit"`
	FallbackSampleURL string `toml:"fallback_sample_url"`
}

// BigQueryDataSourceConfig locates the metadata dataset and its tables.
type BigQueryDataSourceConfig struct {
	DatasetName string `toml:"dataset_name"`
	VideoTable  string `toml:"video_table"`
	ShortTable  string `toml:"short_table"`
}

// FFmpegConfig locates the transcoder binary. When the binary is absent the
// materializer falls back to the placeholder tier.
type FFmpegConfig struct {
	CommandPath string `toml:"command_path"`
}

// PromptTemplateConfig holds the text/template sources for model prompts.
type PromptTemplateConfig struct {
	SegmentPrompt string `toml:"segment_prompt"`
}

// TopicSubscriptionConfig pairs a Pub/Sub topic with the subscription this
// service consumes it through.
type TopicSubscriptionConfig struct {
	TopicName        string `toml:"topic_name"`
	SubscriptionName string `toml:"subscription_name"`
	DeadLetterTopic  string `toml:"dead_letter_topic"`
}

// TopicConfig names a Pub/Sub topic this service publishes to.
type TopicConfig struct {
	TopicName string `toml:"topic_name"`
}

// VertexAiLLMModel describes a generative model endpoint along with its
// generation parameters and a client-side rate limit in requests per second.
type VertexAiLLMModel struct {
	Model              string  `toml:"model"`
	SystemInstructions string  `toml:"system_instructions"`
	Temperature        float32 `toml:"temperature"`
	TopP               float32 `toml:"top_p"`
	TopK               float32 `toml:"top_k"`
	MaxTokens          int32   `toml:"max_tokens"`
	OutputFormat       string  `toml:"output_format"`
	EnableGoogle       bool    `toml:"enable_google"`
	RateLimit          float64 `toml:"rate_limit"`
}

// DefaultSafetySettings disables server-side blocking for generated content.
// Segment suggestions run over the operator's own uploaded material, so
// filtering happens upstream of this service.
var DefaultSafetySettings = []*genai.SafetySetting{
	{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockThresholdBlockNone},
	{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockThresholdBlockNone},
	{Category: genai.HarmCategorySexuallyExplicit, Threshold: genai.HarmBlockThresholdBlockNone},
	{Category: genai.HarmCategoryDangerousContent, Threshold: genai.HarmBlockThresholdBlockNone},
}

// Config is the root configuration object decoded from the TOML hierarchy.
type Config struct {
	Application        ApplicationConfig                  `toml:"application"`
	Storage            StorageConfig                      `toml:"storage"`
	BigQueryDataSource BigQueryDataSourceConfig           `toml:"big_query_data_source"`
	FFmpeg             FFmpegConfig                       `toml:"ffmpeg"`
	PromptTemplates    PromptTemplateConfig               `toml:"prompt_templates"`
	TopicSubscriptions map[string]TopicSubscriptionConfig `toml:"topic_subscriptions"`
	Topics             map[string]TopicConfig             `toml:"topics"`
	AgentModels        map[string]VertexAiLLMModel        `toml:"agent_models"`
}

// NewConfig returns a Config with all maps initialized so the TOML decoder
// can populate them in place.
func NewConfig() *Config {
	return &Config{
		TopicSubscriptions: make(map[string]TopicSubscriptionConfig),
		Topics:             make(map[string]TopicConfig),
		AgentModels:        make(map[string]VertexAiLLMModel),
	}
}
