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

package model

import (
	"fmt"
	"strconv"
	"strings"
)

// TimestampToSeconds converts a "MM:SS" or "HH:MM:SS" timecode to seconds.
// Anything else parses to 0.
func TimestampToSeconds(timestamp string) int {
	parts := strings.Split(strings.TrimSpace(timestamp), ":")
	switch len(parts) {
	case 2:
		minutes := atoi(parts[0])
		seconds := atoi(parts[1])
		return minutes*60 + seconds
	case 3:
		hours := atoi(parts[0])
		minutes := atoi(parts[1])
		seconds := atoi(parts[2])
		return hours*3600 + minutes*60 + seconds
	default:
		return 0
	}
}

// ParseTimeRange converts a "MM:SS-MM:SS" range to start and end seconds.
// A range that does not split into exactly two parts yields {0, 30}.
func ParseTimeRange(timestamp string) (start int, end int) {
	parts := strings.Split(timestamp, "-")
	if len(parts) != 2 {
		return 0, 30
	}
	return TimestampToSeconds(parts[0]), TimestampToSeconds(parts[1])
}

// FormatDuration renders a second count as "M:SS", the display form stored on
// video and short rows.
func FormatDuration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

// ClampDuration bounds a clip length to the [lo, hi] window.
func ClampDuration(seconds int, lo int, hi int) int {
	if seconds < lo {
		return lo
	}
	if seconds > hi {
		return hi
	}
	return seconds
}

func atoi(s string) int {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return v
}
