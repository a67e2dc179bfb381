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

// This file contains the transient models: in-flight values passed between
// pipeline commands that are never persisted as-is. The json tags on
// SegmentDescriptor mirror the exact shape the content analyzer is prompted
// to return, so the model output unmarshals directly.
package model

// SegmentDescriptor is one engaging segment the content analyzer identified
// in a source video.
type SegmentDescriptor struct {
	// Title is a catchy clip title, at most 60 characters.
	Title string `json:"title"`
	// Timestamp is the segment range in "MM:SS-MM:SS" form.
	Timestamp string `json:"timestamp"`
	// Description is a short synopsis of the segment, roughly 100-150 characters.
	Description string `json:"description"`
	// DurationSeconds is the target clip length, clamped to [30, 60].
	DurationSeconds int `json:"duration_seconds"`
}

// SegmentList is the top-level JSON document the analyzer returns.
type SegmentList struct {
	Segments []*SegmentDescriptor `json:"segments"`
}

// SegmentArtifact is the materialized output for one segment descriptor: the
// clip bytes, an optional thumbnail, and how they were produced.
type SegmentArtifact struct {
	// Descriptor is the analyzer output this artifact was cut from.
	Descriptor *SegmentDescriptor
	// Video holds the finished MP4 bytes.
	Video []byte
	// Thumbnail holds JPEG bytes, or is empty when no frame could be grabbed.
	Thumbnail []byte
	// Duration is the actual clip length formatted "M:SS".
	Duration string
	// Placeholder marks artifacts produced by the degraded tier rather than a
	// real transcoder.
	Placeholder bool
}
