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
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/clipfarm/clipfarm-backend/internal/core/cor"
	"github.com/clipfarm/clipfarm-backend/internal/core/model"
)

// ObjectUploader is the slice of the media store the upload command needs.
type ObjectUploader interface {
	Upload(ctx context.Context, bucket string, object string, data []byte, contentType string) error
	PublicURL(bucket string, object string) string
}

// ShortsUpload stores materialized artifacts in the shorts bucket and builds
// the rows to persist. Objects are laid out as {videoID}/short_{n}.mp4 with
// a sibling .jpg thumbnail. A clip upload failure drops that segment only; a
// thumbnail failure falls back to the parent video's thumbnail.
type ShortsUpload struct {
	cor.BaseCommand
	store  ObjectUploader
	bucket string
}

// NewShortsUpload creates the upload command targeting the given bucket.
func NewShortsUpload(name string, store ObjectUploader, bucket string) *ShortsUpload {
	return &ShortsUpload{
		BaseCommand: *cor.NewBaseCommand(name),
		store:       store,
		bucket:      bucket,
	}
}

func (c *ShortsUpload) Execute(context cor.Context) {
	artifacts := context.Get(c.GetInputParam()).([]*model.SegmentArtifact)
	video := context.Get(GetVideoParameterName()).(*model.Video)
	ctx := context.GetContext()

	shorts := make([]*model.Short, 0, len(artifacts))
	for i, artifact := range artifacts {
		filePath := fmt.Sprintf("%s/short_%d.mp4", video.Id, i+1)
		if err := c.store.Upload(ctx, c.bucket, filePath, artifact.Video, "video/mp4"); err != nil {
			c.GetErrorCounter().Add(ctx, 1)
			slog.WarnContext(ctx, "short upload failed; skipping segment",
				"video_id", video.Id, "object", filePath, "error", err)
			continue
		}

		short := model.NewShort(video.Id)
		short.Title = artifact.Descriptor.Title
		short.Description = artifact.Descriptor.Description
		short.Duration = artifact.Duration
		short.Timestamp = artifact.Descriptor.Timestamp
		short.FilePath = filePath
		short.Url = c.store.PublicURL(c.bucket, filePath)
		short.ThumbnailUrl = c.uploadThumbnail(ctx, video, artifact, i)
		short.Metadata = encodeMetadata(artifact)

		shorts = append(shorts, short)
	}

	c.GetSuccessCounter().Add(ctx, 1)
	context.Add(cor.CtxOut, shorts)
}

// uploadThumbnail stores the artifact's thumbnail when one exists and
// returns the URL to reference, falling back to the parent video's
// thumbnail. Thumbnails never fail a segment.
func (c *ShortsUpload) uploadThumbnail(ctx context.Context, video *model.Video, artifact *model.SegmentArtifact, index int) string {
	thumbnail := artifact.Thumbnail
	if len(thumbnail) == 0 && len(video.ThumbnailUrl) > 0 {
		return video.ThumbnailUrl
	}
	if len(thumbnail) == 0 {
		rendered, err := RenderTitleCard(artifact.Descriptor.Title)
		if err != nil {
			slog.WarnContext(ctx, "title card render failed", "video_id", video.Id, "error", err)
			return ""
		}
		thumbnail = rendered
	}

	thumbPath := fmt.Sprintf("%s/short_%d.jpg", video.Id, index+1)
	if err := c.store.Upload(ctx, c.bucket, thumbPath, thumbnail, "image/jpeg"); err != nil {
		slog.WarnContext(ctx, "thumbnail upload failed; using video thumbnail",
			"video_id", video.Id, "object", thumbPath, "error", err)
		return video.ThumbnailUrl
	}
	return c.store.PublicURL(c.bucket, thumbPath)
}

func encodeMetadata(artifact *model.SegmentArtifact) string {
	payload, err := json.Marshal(map[string]interface{}{
		"placeholder":     artifact.Placeholder,
		"timestamp_range": artifact.Descriptor.Timestamp,
	})
	if err != nil {
		return ""
	}
	return string(payload)
}
