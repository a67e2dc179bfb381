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

// This file defines the video API routes: upload, import, listing, shorts
// generation triggering, streaming, and deletion.
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/h2non/filetype"

	"github.com/clipfarm/clipfarm-backend/internal/core/model"
	"github.com/clipfarm/clipfarm-backend/internal/core/services"
	"github.com/clipfarm/clipfarm-backend/internal/core/workflow"
)

// streamURLLifetime bounds how long a signed streaming URL stays valid.
const streamURLLifetime = 15 * time.Minute

type importRequest struct {
	Title string `json:"title"`
	Url   string `json:"url" binding:"required"`
}

// VideoRoutes registers the /videos route group.
func VideoRoutes(r *gin.RouterGroup) {
	videos := r.Group("/videos")
	{
		videos.GET("", listVideos)
		videos.POST("", uploadVideo)
		videos.POST("/import", importVideo)
		videos.GET("/:id", getVideo)
		videos.DELETE("/:id", deleteVideo)
		videos.GET("/:id/stream", streamVideo)
		videos.GET("/:id/shorts", listVideoShorts)
		videos.POST("/:id/generate", generateShorts)
	}
}

func listVideos(c *gin.Context) {
	videos, err := state.videoService.List(c.Request.Context())
	if err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, videos)
}

// uploadVideo accepts a multipart video file, stores it in the videos
// bucket, and registers the completed row.
func uploadVideo(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	if limit := state.config.Storage.VideoSizeLimit; limit > 0 && fileHeader.Size > limit {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": fmt.Sprintf("file exceeds the %d byte limit", limit)})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		internalError(c, err)
		return
	}
	defer func() { _ = file.Close() }()

	content, err := io.ReadAll(file)
	if err != nil {
		internalError(c, err)
		return
	}
	if !filetype.IsVideo(content) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is not a recognized video format"})
		return
	}

	title := c.PostForm("title")
	if len(title) == 0 {
		title = fileHeader.Filename
	}

	ctx := c.Request.Context()
	if err := state.cloudClients.MediaStore.Ensure(ctx); err != nil {
		internalError(c, err)
		return
	}

	video := model.NewVideo(title, model.SourceUploadedFile, "")
	objectName := video.Id + ".mp4"
	bucket := state.config.Storage.VideoBucket
	if err := state.cloudClients.MediaStore.Upload(ctx, bucket, objectName, content, "video/mp4"); err != nil {
		internalError(c, err)
		return
	}

	video.FilePath = objectName
	video.Url = state.cloudClients.MediaStore.PublicURL(bucket, objectName)
	video.Status = model.StatusComplete
	if err := state.videoService.Insert(ctx, video); err != nil {
		internalError(c, err)
		return
	}

	c.JSON(http.StatusCreated, video)
}

// importVideo registers an external-link video and starts the background
// import.
func importVideo(c *gin.Context) {
	request := importRequest{}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "url is required"})
		return
	}
	if _, err := workflow.ExtractYouTubeID(request.Url); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported video url"})
		return
	}

	title := request.Title
	if len(title) == 0 {
		title = request.Url
	}

	ctx := c.Request.Context()
	video := model.NewVideo(title, model.SourceExternalLink, request.Url)
	if err := state.videoService.Insert(ctx, video); err != nil {
		internalError(c, err)
		return
	}
	if err := state.importWorkflow.Trigger(ctx, video.Id, request.Url); err != nil {
		internalError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"success": true,
		"message": "Video import started",
		"videoId": video.Id,
	})
}

func getVideo(c *gin.Context) {
	video, err := state.videoService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Video not found in database"})
			return
		}
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, video)
}

// deleteVideo removes the video row, its source object, and every short
// generated from it.
func deleteVideo(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	video, err := state.videoService.Get(ctx, id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Video not found in database"})
			return
		}
		internalError(c, err)
		return
	}

	if err := state.shortService.DeleteByVideo(ctx, id); err != nil {
		internalError(c, err)
		return
	}
	if len(video.FilePath) > 0 {
		if err := state.cloudClients.MediaStore.Delete(ctx, state.config.Storage.VideoBucket, video.FilePath); err != nil {
			internalError(c, err)
			return
		}
	}
	if err := state.videoService.Delete(ctx, id); err != nil {
		internalError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// streamVideo returns a short-lived signed URL for the stored source object.
func streamVideo(c *gin.Context) {
	ctx := c.Request.Context()
	video, err := state.videoService.Get(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Video not found in database"})
			return
		}
		internalError(c, err)
		return
	}
	if len(video.FilePath) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Video has no stored media"})
		return
	}

	url, err := state.videoService.SignedURL(ctx, video.FilePath, streamURLLifetime)
	if err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url, "expires_in": int(streamURLLifetime.Seconds())})
}

func listVideoShorts(c *gin.Context) {
	shorts, err := state.shortService.ListByVideo(c.Request.Context(), c.Param("id"))
	if err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, shorts)
}

// generateShorts triggers the shorts generation workflow. The heavy work
// runs detached; the response acknowledges the start.
func generateShorts(c *gin.Context) {
	video, err := state.shortsWorkflow.Trigger(c.Request.Context(), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, workflow.ErrVideoNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Video not found in database"})
		case errors.Is(err, workflow.ErrGenerationInProgress):
			c.JSON(http.StatusConflict, gin.H{"error": "Shorts generation is already in progress for this video"})
		default:
			internalError(c, err)
		}
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"success": true,
		"message": "Video processing started",
		"videoId": video.Id,
	})
}

func internalError(c *gin.Context, err error) {
	slog.ErrorContext(c.Request.Context(), "request failed", "path", c.FullPath(), "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{
		"error":   err.Error(),
		"details": "An error occurred while processing your request",
	})
}
