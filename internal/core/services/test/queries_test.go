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

// Package services_test verifies the SQL statement composition used by the
// metadata services.
package services_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/clipfarm/clipfarm-backend/internal/core/model"
	"github.com/clipfarm/clipfarm-backend/internal/core/services"
	"github.com/zeebo/assert"
)

const videoFQN = "clipfarm-test.clipfarm_test.videos"
const shortFQN = "clipfarm-test.clipfarm_test.shorts"

func TestFindVideoByIdQuery(t *testing.T) {
	stmt := fmt.Sprintf(services.QryFindVideoById, videoFQN, "abc-123")
	assert.Equal(t, "SELECT * FROM `clipfarm-test.clipfarm_test.videos` WHERE id = 'abc-123'", stmt)
}

func TestListVideosQueryOrdersNewestFirst(t *testing.T) {
	stmt := fmt.Sprintf(services.QryListVideos, videoFQN)
	assert.True(t, strings.HasSuffix(stmt, "ORDER BY created_at DESC"))
}

func TestUpdateVideoStatusQuery(t *testing.T) {
	stmt := fmt.Sprintf(services.QryUpdateVideoStatus, videoFQN, model.StatusProcessing, "abc-123")
	assert.True(t, strings.Contains(stmt, "SET status = 'processing'"))
	assert.True(t, strings.Contains(stmt, "WHERE id = 'abc-123'"))
}

func TestMarkVideoErrorQuery(t *testing.T) {
	stmt := fmt.Sprintf(services.QryMarkVideoError, videoFQN, model.StatusError, "boom", "abc-123")
	assert.True(t, strings.Contains(stmt, "status = 'error'"))
	assert.True(t, strings.Contains(stmt, "error_message = 'boom'"))
}

func TestFinalizeVideoImportQuery(t *testing.T) {
	stmt := fmt.Sprintf(services.QryFinalizeVideoImport, videoFQN,
		model.StatusComplete, "https://example.com/t.jpg", "abc-123.mp4", "3:45", "abc-123")
	assert.True(t, strings.Contains(stmt, "thumbnail_url = 'https://example.com/t.jpg'"))
	assert.True(t, strings.Contains(stmt, "duration = '3:45'"))
}

func TestListShortsByVideoQueryOrdersOldestFirst(t *testing.T) {
	stmt := fmt.Sprintf(services.QryListShortsByVideo, shortFQN, "abc-123")
	assert.True(t, strings.Contains(stmt, "WHERE video_id = 'abc-123'"))
	assert.True(t, strings.HasSuffix(stmt, "ORDER BY created_at ASC"))
}

func TestIncrementShortViewsQueryIsRelative(t *testing.T) {
	stmt := fmt.Sprintf(services.QryIncrementShortViews, shortFQN, "short-1")
	// The increment must read the current value; an absolute SET would race
	// with concurrent viewers.
	assert.True(t, strings.Contains(stmt, "views = views + 1"))
}

func TestShortStatsQueryAggregates(t *testing.T) {
	stmt := fmt.Sprintf(services.QryShortStats, shortFQN)
	assert.True(t, strings.Contains(stmt, "COUNT(*) AS total"))
	assert.True(t, strings.Contains(stmt, "IFNULL(SUM(views), 0) AS views"))
}
