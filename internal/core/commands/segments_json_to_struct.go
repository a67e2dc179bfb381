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
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/clipfarm/clipfarm-backend/internal/core/cor"
	"github.com/clipfarm/clipfarm-backend/internal/core/model"
)

// MaxSegmentsPerVideo caps how many segment descriptors one analysis run can
// produce.
const MaxSegmentsPerVideo = 3

// Clip length bounds in seconds.
const (
	MinSegmentSeconds = 30
	MaxSegmentSeconds = 60
)

var (
	fencedJsonRegex   = regexp.MustCompile("(?s)```json\\s*(.*?)```")
	segmentSplitRegex = regexp.MustCompile(`(?i)Segment \d+:|Short \d+:|Content \d+:`)
	titleRegex        = regexp.MustCompile(`(?i)Title:?\s*["']?(.*?)["']?(?:\n|\.|,|$)`)
	timestampRegex    = regexp.MustCompile(`(?i)Time(?:stamp)?:?\s*(\d+:\d+(?:-\d+:\d+)?)`)
	timeRangeRegex    = regexp.MustCompile(`(\d+:\d+)\s*-\s*(\d+:\d+)`)
	descriptionRegex  = regexp.MustCompile(`(?is)Desc(?:ription)?:?\s*(.*?)(?:\n\n|\n[A-Z]|$)`)
	durationRegex     = regexp.MustCompile(`(?i)Duration:?\s*(\d+)`)
)

// SegmentsJsonToStruct converts the analyzer's text response into segment
// descriptors. It tries strict JSON first, then falls back to recovering
// fields from free text, and as a last resort emits the canned default
// descriptors, so a run that reached the model always produces segments.
type SegmentsJsonToStruct struct {
	cor.BaseCommand
}

// NewSegmentsJsonToStruct creates the parser command. The output is stored
// under the given parameter name as well as CtxOut.
func NewSegmentsJsonToStruct(name string, outputParamName string) *SegmentsJsonToStruct {
	out := &SegmentsJsonToStruct{BaseCommand: *cor.NewBaseCommand(name)}
	out.OutputParamName = outputParamName
	return out
}

func (c *SegmentsJsonToStruct) Execute(context cor.Context) {
	response := context.Get(c.GetInputParam()).(string)
	video := context.Get(GetVideoParameterName()).(*model.Video)

	segments := parseStrictJson(response)
	if len(segments) == 0 {
		segments = extractSegmentsFromText(response, video.Title)
	}
	if len(segments) == 0 {
		slog.WarnContext(context.GetContext(), "no segments recovered from model response; using defaults", "video_id", video.Id)
		segments = model.DefaultSegmentDescriptors(video.Title)
	}
	if len(segments) > MaxSegmentsPerVideo {
		segments = segments[:MaxSegmentsPerVideo]
	}
	normalizeSegments(segments, video.Title)

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(c.GetOutputParam(), segments)
	context.Add(cor.CtxOut, segments)
}

// parseStrictJson attempts to unmarshal the response as the prompted JSON
// document, looking inside a fenced code block first and then at the widest
// brace-delimited substring.
func parseStrictJson(response string) []*model.SegmentDescriptor {
	candidates := make([]string, 0, 3)
	if match := fencedJsonRegex.FindStringSubmatch(response); match != nil {
		candidates = append(candidates, match[1])
	}
	if open, end := strings.Index(response, "{"), strings.LastIndex(response, "}"); open >= 0 && end > open {
		candidates = append(candidates, response[open:end+1])
	}
	candidates = append(candidates, response)

	for _, candidate := range candidates {
		var list model.SegmentList
		if err := json.Unmarshal([]byte(candidate), &list); err == nil && len(list.Segments) > 0 {
			return list.Segments
		}
	}
	return nil
}

// extractSegmentsFromText recovers descriptors from an unstructured response
// by splitting on segment markers and pulling fields out with regular
// expressions. Missing fields get positional defaults.
func extractSegmentsFromText(response string, videoTitle string) []*model.SegmentDescriptor {
	blocks := segmentSplitRegex.Split(response, -1)
	if len(blocks) > 1 {
		// Drop any preamble before the first segment marker.
		blocks = blocks[1:]
	}
	segments := make([]*model.SegmentDescriptor, 0, MaxSegmentsPerVideo)

	for _, block := range blocks {
		if len(strings.TrimSpace(block)) == 0 {
			continue
		}
		if len(segments) >= MaxSegmentsPerVideo {
			break
		}
		i := len(segments)
		segment := &model.SegmentDescriptor{}

		if match := titleRegex.FindStringSubmatch(block); match != nil && len(strings.TrimSpace(match[1])) > 0 {
			segment.Title = strings.TrimSpace(match[1])
		} else {
			segment.Title = fmt.Sprintf("Highlight %d: %s", i+1, videoTitle)
		}

		if match := timestampRegex.FindStringSubmatch(block); match != nil {
			segment.Timestamp = match[1]
		} else if match := timeRangeRegex.FindStringSubmatch(block); match != nil {
			segment.Timestamp = fmt.Sprintf("%s-%s", match[1], match[2])
		} else {
			segment.Timestamp = fmt.Sprintf("00:%02d-00:%02d", i*30, (i+1)*30)
		}

		if match := descriptionRegex.FindStringSubmatch(block); match != nil && len(strings.TrimSpace(match[1])) > 0 {
			segment.Description = strings.TrimSpace(match[1])
		} else {
			segment.Description = fmt.Sprintf("Key highlight from %s", videoTitle)
		}

		if match := durationRegex.FindStringSubmatch(block); match != nil {
			duration, _ := strconv.Atoi(match[1])
			segment.DurationSeconds = duration
		} else {
			segment.DurationSeconds = 30 + i*10
		}
		segment.DurationSeconds = model.ClampDuration(segment.DurationSeconds, MinSegmentSeconds, MaxSegmentSeconds)

		segments = append(segments, segment)
	}
	return segments
}

// normalizeSegments fills gaps strict-JSON descriptors may carry: a missing
// timestamp gets the positional default and a missing duration gets the
// minimum clip length.
func normalizeSegments(segments []*model.SegmentDescriptor, videoTitle string) {
	for i, segment := range segments {
		if len(strings.TrimSpace(segment.Title)) == 0 {
			segment.Title = fmt.Sprintf("Highlight %d: %s", i+1, videoTitle)
		}
		if len(strings.TrimSpace(segment.Timestamp)) == 0 {
			segment.Timestamp = fmt.Sprintf("00:%02d-00:%02d", i*30, (i+1)*30)
		}
		if segment.DurationSeconds <= 0 {
			segment.DurationSeconds = MinSegmentSeconds
		}
	}
}
