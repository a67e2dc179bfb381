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

package commands_test

import (
	"bytes"
	"context"
	"encoding/binary"
	"image/jpeg"
	"testing"

	"github.com/clipfarm/clipfarm-backend/internal/core/commands"
	"github.com/clipfarm/clipfarm-backend/internal/core/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildStubMP4Structure(t *testing.T) {
	const durationSeconds = 40
	data := commands.BuildStubMP4(durationSeconds)

	// ftyp box first, then the movie box.
	assert.Equal(t, "ftyp", string(data[4:8]))
	assert.Equal(t, "isom", string(data[8:12]))
	assert.Equal(t, "moov", string(data[36:40]))

	// The mvhd declares a 1000-unit timescale and the clip duration.
	assert.Equal(t, uint32(1000), binary.BigEndian.Uint32(data[60:64]))
	assert.Equal(t, uint32(durationSeconds*1000), binary.BigEndian.Uint32(data[64:68]))

	// The payload is sized proportionally to the duration.
	assert.True(t, bytes.Contains(data, []byte("mdat")))
	assert.GreaterOrEqual(t, len(data), durationSeconds*25*1024)
}

func TestBuildStubMP4MinimumPayload(t *testing.T) {
	data := commands.BuildStubMP4(0)
	// Even a zero-length clip carries the 4KB payload floor.
	assert.GreaterOrEqual(t, len(data), 4096)
	assert.Equal(t, uint32(0), binary.BigEndian.Uint32(data[64:68]))
}

func TestRenderTitleCard(t *testing.T) {
	card, err := commands.RenderTitleCard("A Very Long Segment Title That Needs To Wrap Onto Multiple Lines")
	require.NoError(t, err)

	img, err := jpeg.Decode(bytes.NewReader(card))
	require.NoError(t, err)
	bounds := img.Bounds()
	assert.Equal(t, 640, bounds.Dx())
	assert.Equal(t, 1136, bounds.Dy())
}

func TestPlaceholderCutterProducesFlaggedArtifact(t *testing.T) {
	cutter := commands.NewPlaceholderSegmentCutter()
	descriptor := &model.SegmentDescriptor{
		Title:           "Live Demo Meltdown",
		Timestamp:       "01:10-01:40",
		Description:     "The demo goes sideways.",
		DurationSeconds: 30,
	}

	artifact, err := cutter.Cut(context.Background(), "https://example.com/source.mp4", 0, descriptor)
	require.NoError(t, err)

	assert.True(t, artifact.Placeholder)
	assert.Equal(t, descriptor, artifact.Descriptor)
	assert.Equal(t, "0:30", artifact.Duration)
	assert.Equal(t, "ftyp", string(artifact.Video[4:8]))
	assert.NotEmpty(t, artifact.Thumbnail)
}

func TestPlaceholderCutterDefaultsMissingDuration(t *testing.T) {
	cutter := commands.NewPlaceholderSegmentCutter()
	descriptor := &model.SegmentDescriptor{
		Title:     "No Duration",
		Timestamp: "00:10-00:45",
	}

	artifact, err := cutter.Cut(context.Background(), "", 0, descriptor)
	require.NoError(t, err)
	assert.Equal(t, "0:30", artifact.Duration)
}

func TestPlaceholderCutterRejectsMalformedTimestamp(t *testing.T) {
	cutter := commands.NewPlaceholderSegmentCutter()
	descriptor := &model.SegmentDescriptor{
		Title:           "Broken",
		Timestamp:       "01:10",
		DurationSeconds: 30,
	}

	_, err := cutter.Cut(context.Background(), "", 0, descriptor)
	assert.Error(t, err)
}
