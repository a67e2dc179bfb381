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

// This file implements the degraded materializer tier used when no ffmpeg
// binary is present on the host: a structurally valid MP4 stub that players
// recognize, plus a flat-color title card in place of a real frame grab.
package commands

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"strings"

	"github.com/clipfarm/clipfarm-backend/internal/core/model"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Title card geometry and color, matching the dashboard's placeholder tiles.
const (
	titleCardWidth  = 640
	titleCardHeight = 1136
)

var titleCardBackground = color.RGBA{R: 0x36, G: 0x51, B: 0xC8, A: 0xFF}

// PlaceholderSegmentCutter satisfies SegmentCutter without a transcoder.
// Artifacts are flagged Placeholder so rows record how they were produced.
type PlaceholderSegmentCutter struct{}

// NewPlaceholderSegmentCutter returns the degraded-tier cutter.
func NewPlaceholderSegmentCutter() *PlaceholderSegmentCutter {
	return &PlaceholderSegmentCutter{}
}

// Cut builds a stub clip for the descriptor. The timestamp must still be a
// two-part range; a malformed one fails the segment the same way a real
// transcode would.
func (c *PlaceholderSegmentCutter) Cut(_ context.Context, _ string, _ int, descriptor *model.SegmentDescriptor) (*model.SegmentArtifact, error) {
	if parts := strings.Split(descriptor.Timestamp, "-"); len(parts) != 2 {
		return nil, fmt.Errorf("invalid timestamp range %q", descriptor.Timestamp)
	}
	duration := descriptor.DurationSeconds
	if duration <= 0 {
		duration = MinSegmentSeconds
	}

	thumbnail, err := RenderTitleCard(descriptor.Title)
	if err != nil {
		return nil, fmt.Errorf("failed to render title card: %w", err)
	}

	return &model.SegmentArtifact{
		Descriptor:  descriptor,
		Video:       BuildStubMP4(duration),
		Thumbnail:   thumbnail,
		Duration:    model.FormatDuration(duration),
		Placeholder: true,
	}, nil
}

// BuildStubMP4 assembles a minimal MP4: an isom ftyp box, a movie header
// declaring the clip duration at a 1000-unit timescale, and an mdat payload
// sized for roughly 25KB per second and filled with NAL-like patterns so the
// file survives naive validators.
func BuildStubMP4(durationSeconds int) []byte {
	buf := bytes.Buffer{}

	// ftyp box, 32 bytes: major brand isom, compatible isom/iso2/avc1/mp41.
	buf.Write([]byte{
		0x00, 0x00, 0x00, 0x20, 'f', 't', 'y', 'p',
		'i', 's', 'o', 'm', 0x00, 0x00, 0x02, 0x00,
		'i', 's', 'o', 'm', 'i', 's', 'o', '2',
		'a', 'v', 'c', '1', 'm', 'p', '4', '1',
	})

	// moov box header followed by the mvhd movie header.
	buf.Write([]byte{0x00, 0x00, 0x06, 0x75, 'm', 'o', 'o', 'v'})

	mvhd := make([]byte, 0, 108)
	mvhd = append(mvhd, 0x00, 0x00, 0x00, 0x6C, 'm', 'v', 'h', 'd')
	mvhd = append(mvhd, 0x00, 0x00, 0x00, 0x00) // version + flags
	mvhd = append(mvhd, 0x00, 0x00, 0x00, 0x00) // creation time
	mvhd = append(mvhd, 0x00, 0x00, 0x00, 0x00) // modification time
	mvhd = append(mvhd, 0x00, 0x00, 0x03, 0xE8) // timescale: 1000 units/sec
	mvhd = binary.BigEndian.AppendUint32(mvhd, uint32(durationSeconds*1000))
	mvhd = append(mvhd, 0x00, 0x01, 0x00, 0x00) // rate: 1.0
	mvhd = append(mvhd, 0x01, 0x00, 0x00, 0x00) // volume: 1.0
	mvhd = append(mvhd, make([]byte, 8)...)     // reserved
	// Identity transformation matrix.
	matrix := []uint32{0x00010000, 0, 0, 0, 0x00010000, 0, 0, 0, 0x40000000}
	for _, v := range matrix {
		mvhd = binary.BigEndian.AppendUint32(mvhd, v)
	}
	mvhd = append(mvhd, make([]byte, 24)...)    // pre-defined
	mvhd = append(mvhd, 0x00, 0x00, 0x00, 0x00) // next track id
	buf.Write(mvhd)

	// mdat payload.
	dataSize := durationSeconds * 25 * 1024
	if dataSize < 4096 {
		dataSize = 4096
	}
	header := make([]byte, 0, 8)
	header = binary.BigEndian.AppendUint32(header, uint32(dataSize+8))
	header = append(header, 'm', 'd', 'a', 't')
	buf.Write(header)

	data := make([]byte, dataSize)
	for i := 0; i < dataSize; {
		if i%4096 == 0 && i+16 <= dataSize {
			block := i / 4096
			// NAL start code plus an IDR marker on every 24th block.
			data[i], data[i+1], data[i+2], data[i+3] = 0x00, 0x00, 0x00, 0x01
			if block%24 == 0 {
				data[i+4] = 0x65
			} else {
				data[i+4] = 0x41
			}
			for j := 5; j < 16; j++ {
				data[i+j] = byte((block + j) % 256)
			}
			i += 16
			continue
		}
		if i%4096 < 2048 {
			data[i] = byte(i%256) ^ byte((i/256)%256)
		} else {
			data[i] = byte((i + durationSeconds*13) % 256)
		}
		i++
	}
	buf.Write(data)

	return buf.Bytes()
}

// RenderTitleCard draws the clip title centered on a flat brand-color canvas
// and returns it JPEG encoded.
func RenderTitleCard(title string) ([]byte, error) {
	canvas := image.NewRGBA(image.Rect(0, 0, titleCardWidth, titleCardHeight))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(titleCardBackground), image.Point{}, draw.Src)

	face := basicfont.Face7x13
	lines := wrapTitle(title, 40)
	lineHeight := face.Metrics().Height.Ceil() + 4
	startY := titleCardHeight/2 - (len(lines)-1)*lineHeight/2

	for i, line := range lines {
		drawer := &font.Drawer{
			Dst:  canvas,
			Src:  image.NewUniform(color.White),
			Face: face,
		}
		width := drawer.MeasureString(line).Ceil()
		drawer.Dot = fixed.P((titleCardWidth-width)/2, startY+i*lineHeight)
		drawer.DrawString(line)
	}

	out := bytes.Buffer{}
	if err := jpeg.Encode(&out, canvas, &jpeg.Options{Quality: 85}); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// wrapTitle breaks the title into lines no longer than maxChars, splitting on
// word boundaries.
func wrapTitle(title string, maxChars int) []string {
	words := strings.Fields(title)
	if len(words) == 0 {
		return []string{""}
	}
	lines := make([]string, 0, 2)
	current := words[0]
	for _, word := range words[1:] {
		if len(current)+1+len(word) > maxChars {
			lines = append(lines, current)
			current = word
			continue
		}
		current = current + " " + word
	}
	return append(lines, current)
}
