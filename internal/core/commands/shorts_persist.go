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

package commands

import (
	"context"
	"fmt"

	"github.com/clipfarm/clipfarm-backend/internal/core/cor"
	"github.com/clipfarm/clipfarm-backend/internal/core/model"
)

// ShortInserter is the slice of the metadata store the persist command
// needs.
type ShortInserter interface {
	Insert(ctx context.Context, short *model.Short) error
}

// ShortsPersist writes the built rows to the shorts table one at a time. The
// first insert failure is fatal to the chain; rows already inserted stay in
// place, matching the store's append-only streaming semantics.
type ShortsPersist struct {
	cor.BaseCommand
	writer ShortInserter
}

// NewShortsPersist creates the persist command.
func NewShortsPersist(name string, writer ShortInserter) *ShortsPersist {
	return &ShortsPersist{
		BaseCommand: *cor.NewBaseCommand(name),
		writer:      writer,
	}
}

func (c *ShortsPersist) Execute(context cor.Context) {
	shorts := context.Get(c.GetInputParam()).([]*model.Short)

	for i, short := range shorts {
		if err := c.writer.Insert(context.GetContext(), short); err != nil {
			c.GetErrorCounter().Add(context.GetContext(), 1)
			context.AddError(c.GetName(), fmt.Errorf("failed to persist short %d of %d: %w", i+1, len(shorts), err))
			return
		}
	}

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(cor.CtxOut, shorts)
}
