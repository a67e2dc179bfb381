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

package workflow

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"

	"github.com/clipfarm/clipfarm-backend/internal/core/cor"
	"github.com/clipfarm/clipfarm-backend/internal/core/model"
	"github.com/clipfarm/clipfarm-backend/internal/core/services"
	youtube "github.com/kkdai/youtube/v2"
)

// ErrInvalidSourceURL is returned when an import URL carries no recognizable
// video id.
var ErrInvalidSourceURL = errors.New("invalid source url")

var youtubeIdRegex = regexp.MustCompile(`(?:youtube\.com/watch\?v=|youtube\.com/embed/|youtube\.com/shorts/|youtu\.be/)([A-Za-z0-9_-]{11})`)

// ExtractYouTubeID pulls the 11-character video id out of the supported
// YouTube URL forms.
func ExtractYouTubeID(rawURL string) (string, error) {
	match := youtubeIdRegex.FindStringSubmatch(rawURL)
	if match == nil {
		return "", ErrInvalidSourceURL
	}
	return match[1], nil
}

// ImportResult is what a resolver learned about an external source: display
// metadata always, and the media bytes when a playable stream could be
// pulled within the size cap.
type ImportResult struct {
	ThumbnailURL string
	Duration     string
	Data         []byte
	MIMEType     string
}

// SourceResolver turns an external link into an ImportResult.
type SourceResolver interface {
	Resolve(ctx context.Context, rawURL string) (*ImportResult, error)
}

// VideoImportStore is the video-row surface the import workflow needs.
type VideoImportStore interface {
	VideoStore
	FinalizeImport(ctx context.Context, id string, thumbnailUrl string, filePath string, duration string) error
}

// YouTubeResolver resolves YouTube links: duration and stream via the
// youtube client, thumbnail by probing the maxres image with an mq fallback.
type YouTubeResolver struct {
	client     *youtube.Client
	httpClient *http.Client
	maxBytes   int64
}

// NewYouTubeResolver builds a resolver capping downloads at maxBytes.
func NewYouTubeResolver(maxBytes int64) *YouTubeResolver {
	return &YouTubeResolver{
		client:     &youtube.Client{},
		httpClient: http.DefaultClient,
		maxBytes:   maxBytes,
	}
}

// Resolve fetches video metadata and attempts the media download. A failed
// download degrades to metadata-only: the import still completes, pointing
// at the original link.
func (r *YouTubeResolver) Resolve(ctx context.Context, rawURL string) (*ImportResult, error) {
	id, err := ExtractYouTubeID(rawURL)
	if err != nil {
		return nil, err
	}

	video, err := r.client.GetVideoContext(ctx, rawURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch video metadata: %w", err)
	}

	out := &ImportResult{
		ThumbnailURL: r.resolveThumbnail(ctx, id),
		Duration:     model.FormatDuration(int(video.Duration.Seconds())),
	}

	data, mimeType, err := r.download(ctx, video)
	if err != nil {
		slog.WarnContext(ctx, "media download failed; importing metadata only", "video", id, "error", err)
		return out, nil
	}
	out.Data = data
	out.MIMEType = mimeType
	return out, nil
}

// resolveThumbnail probes the maxres thumbnail and falls back to the mq
// variant, which exists for every video.
func (r *YouTubeResolver) resolveThumbnail(ctx context.Context, id string) string {
	maxres := fmt.Sprintf("https://img.youtube.com/vi/%s/maxresdefault.jpg", id)
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, maxres, nil)
	if err == nil {
		if resp, err := r.httpClient.Do(req); err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return maxres
			}
		}
	}
	return fmt.Sprintf("https://img.youtube.com/vi/%s/mqdefault.jpg", id)
}

// download streams the best muxed format, capped at maxBytes.
func (r *YouTubeResolver) download(ctx context.Context, video *youtube.Video) ([]byte, string, error) {
	formats := video.Formats.WithAudioChannels()
	if len(formats) == 0 {
		return nil, "", errors.New("no playable formats")
	}
	best := formats[0]
	for _, format := range formats[1:] {
		if format.Bitrate > best.Bitrate {
			best = format
		}
	}

	stream, _, err := r.client.GetStreamContext(ctx, video, &best)
	if err != nil {
		return nil, "", err
	}
	defer func() { _ = stream.Close() }()

	data, err := io.ReadAll(io.LimitReader(stream, r.maxBytes))
	if err != nil {
		return nil, "", err
	}
	return data, best.MimeType, nil
}

// VideoImportWorkflow brings an external-link video into the library. The
// trigger flips the row to downloading and returns; the detached run
// resolves metadata, stores the media when available, and finalizes the row.
type VideoImportWorkflow struct {
	cor.BaseCommand
	videos      VideoImportStore
	store       ObjectStore
	resolver    SourceResolver
	videoBucket string
}

// NewVideoImportWorkflow wires the import workflow.
func NewVideoImportWorkflow(name string, videos VideoImportStore, store ObjectStore, resolver SourceResolver, videoBucket string) *VideoImportWorkflow {
	return &VideoImportWorkflow{
		BaseCommand: *cor.NewBaseCommand(name),
		videos:      videos,
		store:       store,
		resolver:    resolver,
		videoBucket: videoBucket,
	}
}

// Trigger validates the source URL and video row, flips the row to
// downloading, and starts the background import.
func (w *VideoImportWorkflow) Trigger(ctx context.Context, videoId string, rawURL string) error {
	if _, err := ExtractYouTubeID(rawURL); err != nil {
		return ErrInvalidSourceURL
	}
	video, err := w.videos.Get(ctx, videoId)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return ErrVideoNotFound
		}
		return err
	}
	if err := w.videos.UpdateStatus(ctx, video.Id, model.StatusDownloading); err != nil {
		return err
	}

	go w.run(video, rawURL)
	return nil
}

func (w *VideoImportWorkflow) run(video *model.Video, rawURL string) {
	ctx, span := w.GetTracer().Start(context.Background(), fmt.Sprintf("%s_run", w.GetName()))
	defer span.End()

	result, err := w.resolver.Resolve(ctx, rawURL)
	if err != nil {
		message := fmt.Sprintf("import failed: %v", err)
		slog.ErrorContext(ctx, "video import failed", "video_id", video.Id, "error", err)
		if err := w.videos.SetError(ctx, video.Id, message); err != nil {
			slog.ErrorContext(ctx, "failed to record error state", "video_id", video.Id, "error", err)
		}
		return
	}

	filePath := ""
	if len(result.Data) > 0 {
		if err := w.store.Ensure(ctx); err != nil {
			slog.WarnContext(ctx, "storage setup failed; importing metadata only", "video_id", video.Id, "error", err)
		} else {
			candidate := fmt.Sprintf("%s.mp4", video.Id)
			if err := w.store.Upload(ctx, w.videoBucket, candidate, result.Data, "video/mp4"); err != nil {
				slog.WarnContext(ctx, "media store failed; importing metadata only", "video_id", video.Id, "error", err)
			} else {
				filePath = candidate
			}
		}
	}

	if err := w.videos.FinalizeImport(ctx, video.Id, result.ThumbnailURL, filePath, result.Duration); err != nil {
		slog.ErrorContext(ctx, "failed to finalize import", "video_id", video.Id, "error", err)
		return
	}
	slog.InfoContext(ctx, "video import complete", "video_id", video.Id, "file_path", filePath)
}
