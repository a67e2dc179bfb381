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
	"log/slog"

	"cloud.google.com/go/pubsub"
	"github.com/clipfarm/clipfarm-backend/internal/core/cor"
	"go.opentelemetry.io/otel"
)

// PubSubListener binds a subscription to a pipeline command. Each received
// message is executed through the command on a fresh chain context, and the
// message is acked only when the run finishes without errors, so failed
// messages redeliver.
type PubSubListener struct {
	client       *pubsub.Client
	subscription *pubsub.Subscription
	command      cor.Command
}

// NewPubSubListener creates a listener for the given subscription. The
// command may be nil at construction and attached later with SetCommand once
// the workflows are built.
func NewPubSubListener(client *pubsub.Client, subscriptionName string, command cor.Command) *PubSubListener {
	return &PubSubListener{
		client:       client,
		subscription: client.Subscription(subscriptionName),
		command:      command,
	}
}

// SetCommand attaches the command to execute per message. Only takes effect
// while no command is attached yet.
func (l *PubSubListener) SetCommand(command cor.Command) {
	if l.command == nil {
		l.command = command
	}
}

// Listen starts the receive loop on a background goroutine. The raw message
// payload is placed on the chain context under cor.CtxIn.
func (l *PubSubListener) Listen(ctx context.Context) {
	tracer := otel.Tracer("message-listener")
	go func() {
		err := l.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
			spanCtx, span := tracer.Start(ctx, l.subscription.ID())
			defer span.End()

			chainCtx := cor.NewBaseContext()
			chainCtx.SetContext(spanCtx)
			chainCtx.Add(cor.CtxIn, string(msg.Data))
			defer chainCtx.Close()

			l.command.Execute(chainCtx)

			if chainCtx.HasErrors() {
				slog.ErrorContext(spanCtx, "message processing failed; leaving message unacked",
					"subscription", l.subscription.ID(), "errors", chainCtx.GetErrors())
				return
			}
			msg.Ack()
		})
		if err != nil {
			slog.Error("subscription receive terminated", "subscription", l.subscription.ID(), "error", err)
		}
	}()
}
