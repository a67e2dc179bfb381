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

package model_test

import (
	"testing"
	"time"

	"github.com/clipfarm/clipfarm-backend/internal/core/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestNewVideo(t *testing.T) {
	video := model.NewVideo("Conference Keynote", model.SourceUploadedFile, "")

	_, err := uuid.Parse(video.Id)
	assert.NoError(t, err)
	assert.Equal(t, "Conference Keynote", video.Title)
	assert.Equal(t, model.SourceUploadedFile, video.Source)
	assert.Equal(t, model.StatusPending, video.Status)
	assert.Empty(t, video.ErrorMessage)
	assert.WithinDuration(t, time.Now(), video.CreateDate, time.Second)
}

func TestNewVideoIdsAreUnique(t *testing.T) {
	first := model.NewVideo("Same Title", model.SourceExternalLink, "https://youtu.be/dQw4w9WgXcQ")
	second := model.NewVideo("Same Title", model.SourceExternalLink, "https://youtu.be/dQw4w9WgXcQ")
	assert.NotEqual(t, first.Id, second.Id)
}

func TestNewShort(t *testing.T) {
	short := model.NewShort("video-123")

	_, err := uuid.Parse(short.Id)
	assert.NoError(t, err)
	assert.Equal(t, "video-123", short.VideoId)
	assert.Equal(t, int64(0), short.Views)
	assert.WithinDuration(t, time.Now(), short.CreateDate, time.Second)
}
