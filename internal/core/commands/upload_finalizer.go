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

package commands

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/clipfarm/clipfarm-backend/internal/cloud"
	"github.com/clipfarm/clipfarm-backend/internal/core/cor"
)

// VideoFinalizer is the slice of the video store the finalize command needs.
type VideoFinalizer interface {
	FinalizeUpload(ctx context.Context, id string, filePath string, url string) error
}

// UploadFinalizer marks a video row complete once its object lands in the
// videos bucket. Objects are stored as {videoID}.mp4, so the row id is
// recovered from the object name.
type UploadFinalizer struct {
	cor.BaseCommand
	videos VideoFinalizer
	store  ObjectUploader
}

// NewUploadFinalizer creates the finalize command.
func NewUploadFinalizer(name string, videos VideoFinalizer, store ObjectUploader) *UploadFinalizer {
	return &UploadFinalizer{
		BaseCommand: *cor.NewBaseCommand(name),
		videos:      videos,
		store:       store,
	}
}

func (c *UploadFinalizer) Execute(context cor.Context) {
	object := context.Get(c.GetInputParam()).(*cloud.GCSObject)

	videoId := strings.TrimSuffix(object.Name, filepath.Ext(object.Name))
	url := c.store.PublicURL(object.Bucket, object.Name)

	if err := c.videos.FinalizeUpload(context.GetContext(), videoId, object.Name, url); err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), fmt.Errorf("failed to finalize upload for video %s: %w", videoId, err))
		return
	}

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(cor.CtxOut, videoId)
}
