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

package model_test

import (
	"testing"

	"github.com/clipfarm/clipfarm-backend/internal/core/model"
	"github.com/stretchr/testify/assert"
)

func TestTimestampToSeconds(t *testing.T) {
	tests := []struct {
		name      string
		timestamp string
		want      int
	}{
		{name: "minutes and seconds", timestamp: "01:10", want: 70},
		{name: "zero", timestamp: "00:00", want: 0},
		{name: "hours", timestamp: "01:02:03", want: 3723},
		{name: "leading whitespace", timestamp: " 00:45", want: 45},
		{name: "bare seconds", timestamp: "42", want: 0},
		{name: "garbage", timestamp: "soon", want: 0},
		{name: "empty", timestamp: "", want: 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, model.TimestampToSeconds(tc.timestamp))
		})
	}
}

func TestParseTimeRange(t *testing.T) {
	start, end := model.ParseTimeRange("01:10-01:40")
	assert.Equal(t, 70, start)
	assert.Equal(t, 100, end)
}

func TestParseTimeRangeMalformed(t *testing.T) {
	for _, timestamp := range []string{"", "01:10", "01:10-01:40-02:00"} {
		start, end := model.ParseTimeRange(timestamp)
		assert.Equal(t, 0, start, "input %q", timestamp)
		assert.Equal(t, 30, end, "input %q", timestamp)
	}
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "0:30", model.FormatDuration(30))
	assert.Equal(t, "1:05", model.FormatDuration(65))
	assert.Equal(t, "10:00", model.FormatDuration(600))
	assert.Equal(t, "0:00", model.FormatDuration(-5))
}

func TestClampDuration(t *testing.T) {
	assert.Equal(t, 30, model.ClampDuration(12, 30, 60))
	assert.Equal(t, 45, model.ClampDuration(45, 30, 60))
	assert.Equal(t, 60, model.ClampDuration(90, 30, 60))
}
