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

// Package model defines the data structures for the application. This file
// contains the persistent models: the rows written to the videos and shorts
// tables in BigQuery. Structs carry both json tags for the API surface and
// bigquery tags for the metadata store.
package model

import (
	"time"

	"github.com/google/uuid"
)

// Video lifecycle states. A video starts pending, moves through downloading
// (external-link imports only) or processing (shorts generation), and lands on
// complete or error.
const (
	StatusPending     = "pending"
	StatusDownloading = "downloading"
	StatusProcessing  = "processing"
	StatusComplete    = "complete"
	StatusError       = "error"
)

// Video source types.
const (
	SourceUploadedFile = "uploaded-file"
	SourceExternalLink = "external-link"
)

// Video is a source video registered with the service, either uploaded
// directly or imported from an external link.
type Video struct {
	Id           string    `json:"id" bigquery:"id"`
	Title        string    `json:"title" bigquery:"title"`
	Source       string    `json:"source" bigquery:"source"`
	Url          string    `json:"url" bigquery:"url"`
	Status       string    `json:"status" bigquery:"status"`
	ThumbnailUrl string    `json:"thumbnail_url" bigquery:"thumbnail_url"`
	FilePath     string    `json:"file_path" bigquery:"file_path"`
	Duration     string    `json:"duration" bigquery:"duration"`
	ErrorMessage string    `json:"error_message" bigquery:"error_message"`
	CreateDate   time.Time `json:"created_at" bigquery:"created_at"`
}

// NewVideo creates a pending video row with a fresh random id.
//
// Inputs:
//   - title: The display title of the video.
//   - source: One of the Source* constants.
//   - url: The source URL (empty for direct uploads until finalized).
//
// Outputs:
//   - *Video: A pointer to the newly instantiated video.
func NewVideo(title string, source string, url string) *Video {
	return &Video{
		Id:         uuid.NewString(),
		Title:      title,
		Source:     source,
		Url:        url,
		Status:     StatusPending,
		CreateDate: time.Now(),
	}
}

// Short is a generated short-form clip cut from a parent video.
type Short struct {
	Id           string    `json:"id" bigquery:"id"`
	VideoId      string    `json:"video_id" bigquery:"video_id"`
	Title        string    `json:"title" bigquery:"title"`
	Description  string    `json:"description" bigquery:"description"`
	Duration     string    `json:"duration" bigquery:"duration"`
	Timestamp    string    `json:"timestamp" bigquery:"timestamp"`
	ThumbnailUrl string    `json:"thumbnail_url" bigquery:"thumbnail_url"`
	FilePath     string    `json:"file_path" bigquery:"file_path"`
	Url          string    `json:"url" bigquery:"url"`
	Views        int64     `json:"views" bigquery:"views"`
	Metadata     string    `json:"metadata" bigquery:"metadata"`
	CreateDate   time.Time `json:"created_at" bigquery:"created_at"`
}

// NewShort creates a short row for the given parent video with a fresh id and
// a zero view count.
func NewShort(videoId string) *Short {
	return &Short{
		Id:         uuid.NewString(),
		VideoId:    videoId,
		Views:      0,
		CreateDate: time.Now(),
	}
}
