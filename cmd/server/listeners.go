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
	"log/slog"

	"github.com/clipfarm/clipfarm-backend/internal/cloud"
	"github.com/clipfarm/clipfarm-backend/internal/core/commands"
	"github.com/clipfarm/clipfarm-backend/internal/core/cor"
	"github.com/clipfarm/clipfarm-backend/internal/core/services"
)

// VideoUploadsListener is the configuration key of the subscription carrying
// GCS object-finalize notifications for the videos bucket.
const VideoUploadsListener = "VideoUploads"

// SetupListeners attaches the upload-finalize chain to its subscription and
// starts the receive loops. Direct-to-bucket uploads are marked complete on
// their video rows when the finalize notification arrives.
func SetupListeners(ctx context.Context, cloudClients *cloud.ServiceClients, videoService *services.VideoService) {
	listener, ok := cloudClients.PubSubListeners[VideoUploadsListener]
	if !ok {
		slog.Warn("no video uploads subscription configured; direct uploads will not finalize")
		return
	}

	chain := cor.NewBaseChain("video-upload-finalizer")
	chain.AddCommand(commands.NewUploadTriggerToGCSObject("upload-trigger-reader"))
	chain.AddCommand(commands.NewUploadFinalizer("upload-finalizer", videoService, cloudClients.MediaStore))

	listener.SetCommand(chain)
	listener.Listen(ctx)
}
