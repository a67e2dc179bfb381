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

// Package main is the ClipFarm API server. It wires configuration,
// telemetry, the Google Cloud clients, the generation and import workflows,
// and the gin router, then serves until interrupted.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/clipfarm/clipfarm-backend/internal/telemetry"
)

func main() {
	telemetry.SetupLogging()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	SetupOS()
	config := GetConfig()

	shutdownTelemetry, err := telemetry.SetupOpenTelemetry(ctx, config)
	if err != nil {
		slog.Error("failed to set up telemetry", "error", err)
		os.Exit(1)
	}

	if err := InitState(ctx); err != nil {
		slog.Error("failed to initialize application state", "error", err)
		os.Exit(1)
	}
	defer state.cloudClients.Close()

	router := gin.Default()
	router.Use(otelgin.Middleware("clipfarm-server"))
	router.Use(cors.Default())

	apiV1 := router.Group("/api/v1")
	VideoRoutes(apiV1)
	ShortRoutes(apiV1)
	Dashboard(apiV1)

	server := &http.Server{
		Addr:         ":8080",
		Handler:      router,
		ReadTimeout:  20 * time.Second,
		WriteTimeout: 20 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server terminated", "error", err)
			os.Exit(1)
		}
	}()
	slog.Info("clipfarm server listening", "addr", server.Addr)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("forced server shutdown", "error", err)
	}
	if err := shutdownTelemetry(shutdownCtx); err != nil {
		slog.Error("telemetry shutdown failed", "error", err)
	}
}
