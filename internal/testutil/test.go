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

// Package test provides helpers and canned data for the test suite: a cached
// test configuration, environment setup, and sample analyzer responses and
// storage notifications.
package test

import (
	"log"
	"os"
	"testing"

	"github.com/clipfarm/clipfarm-backend/internal/cloud"
)

// StateManager caches the loaded test configuration so it is read from disk
// only once per test run.
type StateManager struct {
	config *cloud.Config
}

var state = &StateManager{}

// HandleErr fails the test when err is non-nil. Convenience to keep setup
// code flat.
func HandleErr(err error, t *testing.T) {
	if err != nil {
		t.Errorf("Error reading config file: %v", err)
	}
}

// GetTestSegmentResponseJson returns a well-formed analyzer response: the
// prompted JSON document inside a markdown fence, with three segments.
func GetTestSegmentResponseJson() string {
	return "```json\n" + `{
  "segments": [
    {
      "title": "The Hook That Changes Everything",
      "timestamp": "00:15-00:55",
      "description": "An opening claim that flips the premise of the video and sets up the payoff.",
      "duration_seconds": 40
    },
    {
      "title": "Live Demo Meltdown",
      "timestamp": "01:10-01:40",
      "description": "The demo goes sideways and gets rescued in real time, the most replayed moment.",
      "duration_seconds": 30
    },
    {
      "title": "The Rule of Three",
      "timestamp": "03:20-04:05",
      "description": "A memorable three-part summary viewers quote back in the comments.",
      "duration_seconds": 45
    }
  ]
}` + "\n```"
}

// GetTestSegmentResponseText returns an unstructured analyzer response that
// exercises the heuristic extraction path.
func GetTestSegmentResponseText() string {
	return `Here are the most engaging segments I found:

Segment 1:
Title: "The Cold Open"
Timestamp: 00:20-00:50
Description: A fast-paced introduction that lands the core idea in thirty seconds.
Duration: 30

Segment 2:
Title: The Big Reveal
Time: 02:05-02:50
Description: The moment the result is shown for the first time.
Duration: 45

Segment 3:
Title: Closing Advice
Timestamp: 05:10-05:55
Description: Practical takeaways delivered straight to camera.
Duration: 45
`
}

// GetTestUploadNotificationText returns a GCS object-finalize notification
// for a direct upload landing in the videos bucket, as delivered over
// Pub/Sub.
func GetTestUploadNotificationText() string {
	return `{
  "kind": "storage#object",
  "id": "clipfarm-videos/5f4e7a40-9f62-4e2c-9c5e-2f3a1b6d8e01.mp4/1728615848664286",
  "selfLink": "https://www.googleapis.com/storage/v1/b/clipfarm-videos/o/5f4e7a40-9f62-4e2c-9c5e-2f3a1b6d8e01.mp4",
  "name": "5f4e7a40-9f62-4e2c-9c5e-2f3a1b6d8e01.mp4",
  "bucket": "clipfarm-videos",
  "generation": "1728615848664286",
  "metageneration": "1",
  "contentType": "video/mp4",
  "timeCreated": "2025-06-02T03:04:08.672Z",
  "updated": "2025-06-02T03:04:08.672Z",
  "storageClass": "STANDARD",
  "timeStorageClassUpdated": "2025-06-02T03:04:08.672Z",
  "size": "52348037",
  "md5Hash": "67c1rAU+1RYZzK5zp8iBkA==",
  "mediaLink": "https://storage.googleapis.com/download/storage/v1/b/clipfarm-videos/o/5f4e7a40-9f62-4e2c-9c5e-2f3a1b6d8e01.mp4?generation=1728615848664286&alt=media",
  "metadata": { "touch": "1" },
  "crc32c": "IYeSTw==",
  "etag": "CN658+yrhYkDEAE="
}`
}

// SetupOS points the configuration loader at the test configuration files.
func SetupOS() (err error) {
	err = os.Setenv(cloud.EnvConfigFilePrefix, "configs")
	if err != nil {
		return err
	}
	err = os.Setenv(cloud.EnvConfigRuntime, "test")
	return err
}

// GetConfig is the singleton accessor for the test configuration.
func GetConfig() *cloud.Config {
	if state.config == nil {
		err := SetupOS()
		if err != nil {
			log.Fatalf("failed to setup environment for test: %v\n", err)
		}
		config := cloud.NewConfig()
		cloud.LoadConfig(&config)
		state.config = config
	}
	return state.config
}
