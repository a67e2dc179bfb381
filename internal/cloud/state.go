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

// This file defines the service-client container: one struct holding every
// Google Cloud client the application uses, built once at startup and handed
// to the services and workflows that need them.
package cloud

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
	credentials "cloud.google.com/go/iam/credentials/apiv1"
	"cloud.google.com/go/pubsub"
	"cloud.google.com/go/storage"
	"google.golang.org/genai"
)

// ServiceClients aggregates the shared Google Cloud clients plus the derived
// helpers built from them: per-subscription listeners, quota-aware agent
// models, the media store, and the status publisher.
type ServiceClients struct {
	StorageClient   *storage.Client
	PubsubClient    *pubsub.Client
	GenAIClient     *genai.Client
	BigQueryClient  *bigquery.Client
	IAMClient       *credentials.IamCredentialsClient
	MediaStore      *MediaStore
	StatusPublisher *StatusPublisher
	PubSubListeners map[string]*PubSubListener
	AgentModels     map[string]*QuotaAwareGenerativeAIModel
}

// NewCloudServiceClients builds every client from the configuration.
// Listeners are created without commands; workflow wiring attaches them
// later via SetCommand.
//
// Inputs:
//   - ctx: The context used to initialize the clients.
//   - config: The loaded application configuration.
//
// Outputs:
//   - *ServiceClients: The populated container.
//   - error: The first client construction error.
func NewCloudServiceClients(ctx context.Context, config *Config) (*ServiceClients, error) {
	storageClient, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	pubsubClient, err := pubsub.NewClient(ctx, config.Application.GoogleProjectId)
	if err != nil {
		return nil, fmt.Errorf("failed to create pubsub client: %w", err)
	}

	bigQueryClient, err := bigquery.NewClient(ctx, config.Application.GoogleProjectId)
	if err != nil {
		return nil, fmt.Errorf("failed to create bigquery client: %w", err)
	}

	genAIClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		Project:  config.Application.GoogleProjectId,
		Location: config.Application.GoogleLocation,
		Backend:  genai.BackendVertexAI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	listeners := make(map[string]*PubSubListener)
	for name, sub := range config.TopicSubscriptions {
		listeners[name] = NewPubSubListener(pubsubClient, sub.SubscriptionName, nil)
	}

	agents := make(map[string]*QuotaAwareGenerativeAIModel)
	for name, modelConfig := range config.AgentModels {
		generateConfig := &genai.GenerateContentConfig{
			Temperature:      genai.Ptr[float32](modelConfig.Temperature),
			TopP:             genai.Ptr[float32](modelConfig.TopP),
			TopK:             genai.Ptr[float32](modelConfig.TopK),
			MaxOutputTokens:  modelConfig.MaxTokens,
			SafetySettings:   DefaultSafetySettings,
			ResponseMIMEType: modelConfig.OutputFormat,
			Tools:            []*genai.Tool{},
		}
		if len(modelConfig.SystemInstructions) > 0 {
			generateConfig.SystemInstruction = &genai.Content{
				Parts: []*genai.Part{{Text: modelConfig.SystemInstructions}},
			}
		}
		agents[name] = NewQuotaAwareModel(generateConfig, modelConfig.Model, genAIClient.Models, modelConfig.RateLimit)
	}

	out := &ServiceClients{
		StorageClient:   storageClient,
		PubsubClient:    pubsubClient,
		GenAIClient:     genAIClient,
		BigQueryClient:  bigQueryClient,
		MediaStore:      NewMediaStore(storageClient, config.Application.GoogleProjectId, config.Storage),
		PubSubListeners: listeners,
		AgentModels:     agents,
	}

	if status, ok := config.Topics["VideoStatus"]; ok {
		out.StatusPublisher = NewStatusPublisher(pubsubClient, status.TopicName)
	}

	return out, nil
}

// Close releases every client. Safe to defer immediately after construction.
func (s *ServiceClients) Close() {
	if s.StatusPublisher != nil {
		s.StatusPublisher.Stop()
	}
	if s.StorageClient != nil {
		_ = s.StorageClient.Close()
	}
	if s.PubsubClient != nil {
		_ = s.PubsubClient.Close()
	}
	if s.BigQueryClient != nil {
		_ = s.BigQueryClient.Close()
	}
	if s.IAMClient != nil {
		_ = s.IAMClient.Close()
	}
}
