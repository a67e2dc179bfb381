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

// Package workflow assembles the pipeline commands into the product's two
// orchestrations: shorts generation and external-link import. Workflows
// depend on narrow store interfaces rather than the concrete services so the
// lifecycle logic is testable without cloud backends.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"text/template"

	"github.com/clipfarm/clipfarm-backend/internal/cloud"
	"github.com/clipfarm/clipfarm-backend/internal/core/commands"
	"github.com/clipfarm/clipfarm-backend/internal/core/cor"
	"github.com/clipfarm/clipfarm-backend/internal/core/model"
	"github.com/clipfarm/clipfarm-backend/internal/core/services"
)

var (
	// ErrVideoNotFound is returned when a trigger references an unknown
	// video id.
	ErrVideoNotFound = errors.New("video not found")
	// ErrGenerationInProgress rejects a trigger for a video already in the
	// processing state. Concurrent runs would interleave writes to the same
	// object paths and rows, so re-triggering waits for the current run to
	// reach a terminal state.
	ErrGenerationInProgress = errors.New("shorts generation already in progress")
)

// VideoStore is the video-row surface the workflows need.
type VideoStore interface {
	Get(ctx context.Context, id string) (*model.Video, error)
	UpdateStatus(ctx context.Context, id string, status string) error
	SetError(ctx context.Context, id string, message string) error
}

// ShortStore is the short-row surface the generation workflow needs.
type ShortStore interface {
	Insert(ctx context.Context, short *model.Short) error
	DeleteByVideo(ctx context.Context, videoId string) error
}

// ObjectStore is the media-bucket surface the workflows need.
type ObjectStore interface {
	commands.ObjectUploader
	Ensure(ctx context.Context) error
}

// segmentOutputParam is the named context key the parsed descriptors are
// published under, alongside the CtxIn/CtxOut pipe.
const segmentOutputParam = "__segment_output__"

// ShortsGenerationWorkflow turns one video into up to three short vertical
// clips. Trigger validates synchronously and flips the video to processing;
// the chain (suggest, parse, materialize, upload, persist) runs on a
// detached goroutine and lands the video on complete or error.
type ShortsGenerationWorkflow struct {
	cor.BaseCommand
	config          *cloud.Config
	videos          VideoStore
	shorts          ShortStore
	store           ObjectStore
	generator       cloud.ContentGenerator
	cutter          commands.SegmentCutter
	segmentTemplate *template.Template
	chain           cor.Chain
}

// NewShortsGenerationWorkflow wires the workflow from its collaborators.
// Panics if the configured prompt template does not parse, since no run
// could ever succeed.
func NewShortsGenerationWorkflow(
	name string,
	config *cloud.Config,
	videos VideoStore,
	shorts ShortStore,
	store ObjectStore,
	generator cloud.ContentGenerator,
	cutter commands.SegmentCutter,
) *ShortsGenerationWorkflow {
	segmentTemplate, err := template.New("segment-prompt").Parse(config.PromptTemplates.SegmentPrompt)
	if err != nil {
		panic(fmt.Errorf("invalid segment prompt template: %w", err))
	}
	out := &ShortsGenerationWorkflow{
		BaseCommand:     *cor.NewBaseCommand(name),
		config:          config,
		videos:          videos,
		shorts:          shorts,
		store:           store,
		generator:       generator,
		cutter:          cutter,
		segmentTemplate: segmentTemplate,
	}
	out.initializeChain()
	return out
}

// NewShortsGenerationPipeline is the production constructor: it selects the
// agent model from the client container and picks the materializer tier by
// probing for the ffmpeg binary.
func NewShortsGenerationPipeline(
	config *cloud.Config,
	serviceClients *cloud.ServiceClients,
	agentModelName string,
	videos VideoStore,
	shorts ShortStore,
) *ShortsGenerationWorkflow {
	generator := serviceClients.AgentModels[agentModelName]

	var cutter commands.SegmentCutter
	ffmpeg := commands.NewFFmpegSegmentCutter(config.FFmpeg.CommandPath, config.Storage.FallbackSampleURL)
	if ffmpeg.Available() {
		cutter = ffmpeg
	} else {
		slog.Warn("ffmpeg binary not found; generating placeholder clips", "command_path", config.FFmpeg.CommandPath)
		cutter = commands.NewPlaceholderSegmentCutter()
	}

	return NewShortsGenerationWorkflow("shorts-generation", config, videos, shorts, serviceClients.MediaStore, generator, cutter)
}

func (w *ShortsGenerationWorkflow) initializeChain() {
	out := cor.NewBaseChain(w.GetName())
	out.AddCommand(commands.NewSegmentSuggester("segment-suggester", w.config, w.generator, w.segmentTemplate))
	out.AddCommand(commands.NewSegmentsJsonToStruct("segments-json-to-struct", segmentOutputParam))
	out.AddCommand(commands.NewSegmentMaterializer("segment-materializer", w.cutter, w.config.Application.ThreadPoolSize))
	out.AddCommand(commands.NewShortsUpload("shorts-upload", w.store, w.config.Storage.ShortsBucket))
	out.AddCommand(commands.NewShortsPersist("shorts-persist", w.shorts))
	w.chain = out
}

// Execute runs the generation chain against a context already carrying the
// video under CtxIn. Exposed so the workflow composes like any other
// command.
func (w *ShortsGenerationWorkflow) Execute(context cor.Context) {
	w.chain.Execute(context)
}

// Trigger validates the request and starts a background run.
//
// Inputs:
//   - ctx: The request context; only used for the synchronous validation.
//   - videoId: The id of the video to generate shorts for.
//
// Outputs:
//   - *model.Video: The video with its status already flipped to processing.
//   - error: ErrVideoNotFound, ErrGenerationInProgress, or a store error.
func (w *ShortsGenerationWorkflow) Trigger(ctx context.Context, videoId string) (*model.Video, error) {
	video, err := w.videos.Get(ctx, videoId)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return nil, ErrVideoNotFound
		}
		return nil, err
	}
	if video.Status == model.StatusProcessing {
		return nil, ErrGenerationInProgress
	}
	if err := w.videos.UpdateStatus(ctx, video.Id, model.StatusProcessing); err != nil {
		return nil, err
	}
	video.Status = model.StatusProcessing

	go w.run(video)
	return video, nil
}

// run is the detached generation pass. It owns its lifetime: a fresh root
// span rather than the request context, and a terminal status write no
// matter how the chain ends.
func (w *ShortsGenerationWorkflow) run(video *model.Video) {
	ctx, span := w.GetTracer().Start(context.Background(), fmt.Sprintf("%s_run", w.GetName()))
	defer span.End()

	// Re-runs replace the previous generation instead of appending to it.
	if err := w.shorts.DeleteByVideo(ctx, video.Id); err != nil {
		slog.WarnContext(ctx, "failed to clear previous shorts; continuing", "video_id", video.Id, "error", err)
	}

	if err := w.store.Ensure(ctx); err != nil {
		w.fail(ctx, video.Id, fmt.Sprintf("storage setup failed: %v", err))
		return
	}

	chainCtx := cor.NewBaseContext()
	defer chainCtx.Close()
	chainCtx.SetContext(ctx)
	chainCtx.Add(cor.CtxIn, video)
	chainCtx.Add(commands.GetVideoParameterName(), video)

	w.chain.Execute(chainCtx)

	if chainCtx.HasErrors() {
		w.fail(ctx, video.Id, flattenErrors(chainCtx.GetErrors()))
		return
	}
	if err := w.videos.UpdateStatus(ctx, video.Id, model.StatusComplete); err != nil {
		slog.ErrorContext(ctx, "failed to mark video complete", "video_id", video.Id, "error", err)
		return
	}
	slog.InfoContext(ctx, "shorts generation complete", "video_id", video.Id)
}

func (w *ShortsGenerationWorkflow) fail(ctx context.Context, videoId string, message string) {
	slog.ErrorContext(ctx, "shorts generation failed", "video_id", videoId, "message", message)
	if err := w.videos.SetError(ctx, videoId, message); err != nil {
		slog.ErrorContext(ctx, "failed to record error state", "video_id", videoId, "error", err)
	}
}

// flattenErrors renders the chain's error map as a single stable message for
// the error_message column.
func flattenErrors(errs map[string]error) string {
	keys := make([]string, 0, len(errs))
	for key := range errs {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, fmt.Sprintf("%s: %v", key, errs[key]))
	}
	return strings.Join(parts, "; ")
}
