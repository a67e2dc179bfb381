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

// Package commands_test exercises the pipeline commands in isolation, driving
// each one through a hand-built chain context the way the workflows do.
package commands_test

import (
	"context"
	"testing"

	"github.com/clipfarm/clipfarm-backend/internal/core/commands"
	"github.com/clipfarm/clipfarm-backend/internal/core/cor"
	"github.com/clipfarm/clipfarm-backend/internal/core/model"
	test "github.com/clipfarm/clipfarm-backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const segmentOutputParam = "__segment_output__"

// newParserContext builds the chain state the parser command sees at runtime:
// the raw model response under CtxIn and the video row under its named key.
func newParserContext(response string, video *model.Video) cor.Context {
	chainCtx := cor.NewBaseContext()
	chainCtx.SetContext(context.Background())
	chainCtx.Add(cor.CtxIn, response)
	chainCtx.Add(commands.GetVideoParameterName(), video)
	return chainCtx
}

func runParser(t *testing.T, response string, video *model.Video) []*model.SegmentDescriptor {
	chainCtx := newParserContext(response, video)
	cmd := commands.NewSegmentsJsonToStruct("segments-json-to-struct", segmentOutputParam)
	cmd.Execute(chainCtx)

	require.False(t, chainCtx.HasErrors())
	segments, ok := chainCtx.Get(segmentOutputParam).([]*model.SegmentDescriptor)
	require.True(t, ok, "expected descriptors under the named output param")
	assert.Equal(t, segments, chainCtx.Get(cor.CtxOut), "CtxOut should mirror the named output")
	return segments
}

func TestParseStrictJsonResponse(t *testing.T) {
	video := model.NewVideo("Launch Keynote", model.SourceUploadedFile, "")
	segments := runParser(t, test.GetTestSegmentResponseJson(), video)

	require.Len(t, segments, 3)
	assert.Equal(t, "The Hook That Changes Everything", segments[0].Title)
	assert.Equal(t, "00:15-00:55", segments[0].Timestamp)
	assert.Equal(t, 40, segments[0].DurationSeconds)
	assert.Equal(t, "Live Demo Meltdown", segments[1].Title)
	assert.Equal(t, "01:10-01:40", segments[1].Timestamp)
	assert.Equal(t, "The Rule of Three", segments[2].Title)
	assert.Equal(t, 45, segments[2].DurationSeconds)
}

func TestParseUnstructuredResponse(t *testing.T) {
	video := model.NewVideo("Launch Keynote", model.SourceUploadedFile, "")
	segments := runParser(t, test.GetTestSegmentResponseText(), video)

	require.Len(t, segments, 3)
	assert.Equal(t, "The Cold Open", segments[0].Title)
	assert.Equal(t, "00:20-00:50", segments[0].Timestamp)
	assert.Equal(t, 30, segments[0].DurationSeconds)
	assert.Equal(t, "The Big Reveal", segments[1].Title)
	assert.Equal(t, "02:05-02:50", segments[1].Timestamp)
	assert.Equal(t, 45, segments[1].DurationSeconds)
	assert.Equal(t, "Closing Advice", segments[2].Title)
}

func TestParseProseYieldsHeuristicSegment(t *testing.T) {
	video := model.NewVideo("Launch Keynote", model.SourceUploadedFile, "")
	segments := runParser(t, "I could not find anything interesting.", video)

	// Free text with no recognizable fields still yields one segment with
	// every field defaulted.
	require.Len(t, segments, 1)
	assert.Equal(t, "Highlight 1: Launch Keynote", segments[0].Title)
	assert.Equal(t, "00:00-00:30", segments[0].Timestamp)
	assert.Equal(t, 30, segments[0].DurationSeconds)
}

func TestParseEmptyResponseFallsBackToDefaults(t *testing.T) {
	video := model.NewVideo("Launch Keynote", model.SourceUploadedFile, "")
	segments := runParser(t, "   \n", video)

	require.Len(t, segments, 3)
	assert.Equal(t, "Top Highlight: Launch Keynote", segments[0].Title)
	assert.Equal(t, "00:10-00:45", segments[0].Timestamp)
	assert.Equal(t, "Key Insight: Launch Keynote", segments[1].Title)
	assert.Equal(t, "Best Conclusion: Launch Keynote", segments[2].Title)
	for _, segment := range segments {
		assert.GreaterOrEqual(t, segment.DurationSeconds, commands.MinSegmentSeconds)
		assert.LessOrEqual(t, segment.DurationSeconds, commands.MaxSegmentSeconds)
	}
}

func TestParseCapsSegmentCount(t *testing.T) {
	response := `{"segments": [
		{"title": "One", "timestamp": "00:00-00:30", "duration_seconds": 30},
		{"title": "Two", "timestamp": "00:30-01:00", "duration_seconds": 30},
		{"title": "Three", "timestamp": "01:00-01:30", "duration_seconds": 30},
		{"title": "Four", "timestamp": "01:30-02:00", "duration_seconds": 30},
		{"title": "Five", "timestamp": "02:00-02:30", "duration_seconds": 30}
	]}`
	video := model.NewVideo("Long Video", model.SourceUploadedFile, "")
	segments := runParser(t, response, video)

	require.Len(t, segments, commands.MaxSegmentsPerVideo)
	assert.Equal(t, "Three", segments[2].Title)
}

func TestParseFillsMissingFields(t *testing.T) {
	response := `{"segments": [
		{"description": "A segment missing its title, timestamp, and duration."}
	]}`
	video := model.NewVideo("Tutorial", model.SourceUploadedFile, "")
	segments := runParser(t, response, video)

	require.Len(t, segments, 1)
	assert.Equal(t, "Highlight 1: Tutorial", segments[0].Title)
	assert.Equal(t, "00:00-00:30", segments[0].Timestamp)
	assert.Equal(t, commands.MinSegmentSeconds, segments[0].DurationSeconds)
}

func TestParseClampsOutOfRangeDurations(t *testing.T) {
	response := `Segment 1:
Title: Way Too Long
Timestamp: 00:00-05:00
Duration: 300

Segment 2:
Title: Way Too Short
Timestamp: 05:00-05:05
Duration: 5
`
	video := model.NewVideo("Marathon Stream", model.SourceUploadedFile, "")
	segments := runParser(t, response, video)

	require.Len(t, segments, 2)
	assert.Equal(t, commands.MaxSegmentSeconds, segments[0].DurationSeconds)
	assert.Equal(t, commands.MinSegmentSeconds, segments[1].DurationSeconds)
}
