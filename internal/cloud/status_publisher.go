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

package cloud

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"cloud.google.com/go/pubsub"
)

// VideoStatusEvent is the payload published on every video status transition.
// The dashboard subscribes to these instead of polling the metadata store.
type VideoStatusEvent struct {
	VideoId      string    `json:"video_id"`
	Status       string    `json:"status"`
	ErrorMessage string    `json:"error_message,omitempty"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// StatusPublisher emits VideoStatusEvents to a Pub/Sub topic. Publishing is
// fire-and-forget: a failed publish is logged, never surfaced to the status
// write that triggered it.
type StatusPublisher struct {
	topic *pubsub.Topic
}

// NewStatusPublisher binds a publisher to the named topic.
func NewStatusPublisher(client *pubsub.Client, topicName string) *StatusPublisher {
	return &StatusPublisher{topic: client.Topic(topicName)}
}

// Publish sends one status event. The publish result is checked on a
// background goroutine.
func (p *StatusPublisher) Publish(ctx context.Context, event *VideoStatusEvent) {
	if p == nil || p.topic == nil {
		return
	}
	payload, err := json.Marshal(event)
	if err != nil {
		slog.ErrorContext(ctx, "failed to marshal status event", "video_id", event.VideoId, "error", err)
		return
	}
	result := p.topic.Publish(ctx, &pubsub.Message{Data: payload})
	go func() {
		if _, err := result.Get(context.Background()); err != nil {
			slog.Error("status event publish failed", "video_id", event.VideoId, "status", event.Status, "error", err)
		}
	}()
}

// Stop flushes any queued messages. Call on shutdown.
func (p *StatusPublisher) Stop() {
	if p != nil && p.topic != nil {
		p.topic.Stop()
	}
}
