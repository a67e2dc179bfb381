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

package main

import (
	"context"
	"fmt"
	"log"

	credentials "cloud.google.com/go/iam/credentials/apiv1"
	"github.com/clipfarm/clipfarm-backend/internal/cloud"
	"github.com/clipfarm/clipfarm-backend/internal/core/services"
	"github.com/clipfarm/clipfarm-backend/internal/core/workflow"
)

// AgentModelCreative names the configured model used for segment analysis.
const AgentModelCreative = "creative-flash"

// StateManager holds the singleton application state built once at startup.
type StateManager struct {
	config         *cloud.Config
	cloudClients   *cloud.ServiceClients
	videoService   *services.VideoService
	shortService   *services.ShortService
	shortsWorkflow *workflow.ShortsGenerationWorkflow
	importWorkflow *workflow.VideoImportWorkflow
}

var state = &StateManager{}

// SetupOS points the configuration loader at the local runtime files.
func SetupOS() {
	err := cloud.SetEnvIfEmpty(cloud.EnvConfigFilePrefix, "configs")
	if err != nil {
		log.Fatalf("failed to set config prefix: %v\n", err)
	}
	err = cloud.SetEnvIfEmpty(cloud.EnvConfigRuntime, "local")
	if err != nil {
		log.Fatalf("failed to set config runtime: %v\n", err)
	}
}

// GetConfig loads the configuration once and caches it on the state manager.
func GetConfig() *cloud.Config {
	if state.config == nil {
		config := cloud.NewConfig()
		cloud.LoadConfig(&config)
		state.config = config
	}
	return state.config
}

// InitState builds the cloud clients, services, and workflows, and starts
// the Pub/Sub listeners.
func InitState(ctx context.Context) error {
	config := GetConfig()

	cloudClients, err := cloud.NewCloudServiceClients(ctx, config)
	if err != nil {
		return fmt.Errorf("failed to create cloud clients: %w", err)
	}
	state.cloudClients = cloudClients

	iamClient, err := credentials.NewIamCredentialsClient(ctx)
	if err != nil {
		return fmt.Errorf("failed to create iam credentials client: %w", err)
	}
	cloudClients.IAMClient = iamClient

	state.videoService = services.NewVideoService(
		cloudClients.BigQueryClient,
		cloudClients.StorageClient,
		iamClient,
		cloudClients.StatusPublisher,
		config.Application.SignerServiceAccountEmail,
		config.BigQueryDataSource.DatasetName,
		config.BigQueryDataSource.VideoTable,
		config.Storage.VideoBucket,
	)
	state.shortService = services.NewShortService(
		cloudClients.BigQueryClient,
		cloudClients.MediaStore,
		config.BigQueryDataSource.DatasetName,
		config.BigQueryDataSource.ShortTable,
		config.Storage.ShortsBucket,
	)

	state.shortsWorkflow = workflow.NewShortsGenerationPipeline(
		config, cloudClients, AgentModelCreative, state.videoService, state.shortService)

	state.importWorkflow = workflow.NewVideoImportWorkflow(
		"video-import",
		state.videoService,
		cloudClients.MediaStore,
		workflow.NewYouTubeResolver(config.Storage.VideoSizeLimit),
		config.Storage.VideoBucket,
	)

	SetupListeners(ctx, cloudClients, state.videoService)
	return nil
}
