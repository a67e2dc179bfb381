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
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/clipfarm/clipfarm-backend/internal/core/services"
)

// ShortRoutes registers the /shorts route group.
func ShortRoutes(r *gin.RouterGroup) {
	shorts := r.Group("/shorts")
	{
		shorts.GET("/:id", getShort)
		shorts.DELETE("/:id", deleteShort)
		shorts.POST("/:id/views", incrementShortViews)
	}
}

func getShort(c *gin.Context) {
	short, err := state.shortService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Short not found in database"})
			return
		}
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, short)
}

func deleteShort(c *gin.Context) {
	err := state.shortService.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Short not found in database"})
			return
		}
		internalError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// incrementShortViews records one play of a short.
func incrementShortViews(c *gin.Context) {
	if err := state.shortService.IncrementViews(c.Request.Context(), c.Param("id")); err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
