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

package workflow_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/clipfarm/clipfarm-backend/internal/core/model"
	"github.com/clipfarm/clipfarm-backend/internal/core/workflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeImportStore extends the video store with the import finalization write.
type fakeImportStore struct {
	fakeVideoStore
	mu        sync.Mutex
	finalized map[string][3]string
}

func newFakeImportStore(videos ...*model.Video) *fakeImportStore {
	out := &fakeImportStore{finalized: make(map[string][3]string)}
	out.videos = make(map[string]*model.Video)
	for _, video := range videos {
		out.videos[video.Id] = video
	}
	return out
}

func (f *fakeImportStore) FinalizeImport(_ context.Context, id string, thumbnailUrl string, filePath string, duration string) error {
	f.mu.Lock()
	f.finalized[id] = [3]string{thumbnailUrl, filePath, duration}
	f.mu.Unlock()
	return f.UpdateStatus(context.Background(), id, model.StatusComplete)
}

func (f *fakeImportStore) finalizedFields(id string) ([3]string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fields, ok := f.finalized[id]
	return fields, ok
}

// fakeResolver returns a fixed ImportResult or error.
type fakeResolver struct {
	result *workflow.ImportResult
	err    error
}

func (f *fakeResolver) Resolve(_ context.Context, _ string) (*workflow.ImportResult, error) {
	return f.result, f.err
}

const validWatchURL = "https://www.youtube.com/watch?v=dQw4w9WgXcQ"

func TestExtractYouTubeID(t *testing.T) {
	tests := []struct {
		name   string
		rawURL string
		want   string
		ok     bool
	}{
		{name: "watch url", rawURL: validWatchURL, want: "dQw4w9WgXcQ", ok: true},
		{name: "short link", rawURL: "https://youtu.be/dQw4w9WgXcQ", want: "dQw4w9WgXcQ", ok: true},
		{name: "embed url", rawURL: "https://www.youtube.com/embed/dQw4w9WgXcQ", want: "dQw4w9WgXcQ", ok: true},
		{name: "shorts url", rawURL: "https://www.youtube.com/shorts/dQw4w9WgXcQ", want: "dQw4w9WgXcQ", ok: true},
		{name: "extra query params", rawURL: validWatchURL + "&t=42s", want: "dQw4w9WgXcQ", ok: true},
		{name: "not youtube", rawURL: "https://vimeo.com/123456", ok: false},
		{name: "id too short", rawURL: "https://youtu.be/short", ok: false},
		{name: "empty", rawURL: "", ok: false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			id, err := workflow.ExtractYouTubeID(tc.rawURL)
			if !tc.ok {
				assert.ErrorIs(t, err, workflow.ErrInvalidSourceURL)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, id)
		})
	}
}

func TestImportTriggerRejectsInvalidURL(t *testing.T) {
	video := model.NewVideo("External", model.SourceExternalLink, "https://vimeo.com/123456")
	videos := newFakeImportStore(video)
	wf := workflow.NewVideoImportWorkflow("video-import", videos, newFakeObjectStore(), &fakeResolver{}, "clipfarm-videos-test")

	err := wf.Trigger(context.Background(), video.Id, "https://vimeo.com/123456")
	assert.ErrorIs(t, err, workflow.ErrInvalidSourceURL)
	assert.Empty(t, videos.statuses)
}

func TestImportTriggerUnknownVideo(t *testing.T) {
	videos := newFakeImportStore()
	wf := workflow.NewVideoImportWorkflow("video-import", videos, newFakeObjectStore(), &fakeResolver{}, "clipfarm-videos-test")

	err := wf.Trigger(context.Background(), "missing-id", validWatchURL)
	assert.ErrorIs(t, err, workflow.ErrVideoNotFound)
}

func TestImportHappyPath(t *testing.T) {
	video := model.NewVideo("External", model.SourceExternalLink, validWatchURL)
	videos := newFakeImportStore(video)
	store := newFakeObjectStore()
	resolver := &fakeResolver{result: &workflow.ImportResult{
		ThumbnailURL: "https://img.youtube.com/vi/dQw4w9WgXcQ/maxresdefault.jpg",
		Duration:     "3:45",
		Data:         []byte("media"),
		MIMEType:     "video/mp4",
	}}
	wf := workflow.NewVideoImportWorkflow("video-import", videos, store, resolver, "clipfarm-videos-test")

	require.NoError(t, wf.Trigger(context.Background(), video.Id, validWatchURL))
	assert.Equal(t, model.StatusDownloading, videos.statusLog()[0])

	assert.Eventually(t, func() bool {
		return videos.lastStatus() == model.StatusComplete
	}, waitFor, tick)

	fields, ok := videos.finalizedFields(video.Id)
	require.True(t, ok)
	assert.Equal(t, "https://img.youtube.com/vi/dQw4w9WgXcQ/maxresdefault.jpg", fields[0])
	assert.Equal(t, fmt.Sprintf("%s.mp4", video.Id), fields[1])
	assert.Equal(t, "3:45", fields[2])
	assert.Equal(t, 1, store.count())
}

func TestImportDegradesToMetadataOnly(t *testing.T) {
	video := model.NewVideo("External", model.SourceExternalLink, validWatchURL)
	videos := newFakeImportStore(video)
	store := newFakeObjectStore()
	resolver := &fakeResolver{result: &workflow.ImportResult{
		ThumbnailURL: "https://img.youtube.com/vi/dQw4w9WgXcQ/mqdefault.jpg",
		Duration:     "3:45",
	}}
	wf := workflow.NewVideoImportWorkflow("video-import", videos, store, resolver, "clipfarm-videos-test")

	require.NoError(t, wf.Trigger(context.Background(), video.Id, validWatchURL))

	assert.Eventually(t, func() bool {
		return videos.lastStatus() == model.StatusComplete
	}, waitFor, tick)

	// No media downloaded: the row still finalizes, with an empty file path
	// and nothing stored.
	fields, ok := videos.finalizedFields(video.Id)
	require.True(t, ok)
	assert.Empty(t, fields[1])
	assert.Equal(t, 0, store.count())
}

func TestImportResolverFailure(t *testing.T) {
	video := model.NewVideo("External", model.SourceExternalLink, validWatchURL)
	videos := newFakeImportStore(video)
	wf := workflow.NewVideoImportWorkflow("video-import", videos, newFakeObjectStore(),
		&fakeResolver{err: errors.New("metadata fetch failed")}, "clipfarm-videos-test")

	require.NoError(t, wf.Trigger(context.Background(), video.Id, validWatchURL))

	assert.Eventually(t, func() bool {
		return videos.lastStatus() == model.StatusError
	}, waitFor, tick)
	assert.Contains(t, videos.errorMessage(), "import failed")

	_, finalized := videos.finalizedFields(video.Id)
	assert.False(t, finalized)
}
