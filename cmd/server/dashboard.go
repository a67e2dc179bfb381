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

package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Dashboard registers the /stats route group serving the dashboard's
// library-wide aggregates.
func Dashboard(r *gin.RouterGroup) {
	stats := r.Group("/stats")
	{
		stats.GET("", func(c *gin.Context) {
			ctx := c.Request.Context()

			totalVideos, err := state.videoService.Count(ctx)
			if err != nil {
				internalError(c, err)
				return
			}
			shortStats, err := state.shortService.Stats(ctx)
			if err != nil {
				internalError(c, err)
				return
			}

			c.JSON(http.StatusOK, gin.H{
				"videos": totalVideos,
				"shorts": shortStats.Total,
				"views":  shortStats.Views,
			})
		})
	}
}
