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
	"encoding/json"
	"fmt"

	"github.com/clipfarm/clipfarm-backend/internal/cloud"
	"github.com/clipfarm/clipfarm-backend/internal/core/cor"
)

// UploadTriggerToGCSObject parses the raw GCS object-finalize notification
// delivered over Pub/Sub into a GCSObject handle for the rest of the chain.
type UploadTriggerToGCSObject struct {
	cor.BaseCommand
}

// NewUploadTriggerToGCSObject creates the trigger reader.
func NewUploadTriggerToGCSObject(name string) *UploadTriggerToGCSObject {
	return &UploadTriggerToGCSObject{BaseCommand: *cor.NewBaseCommand(name)}
}

func (c *UploadTriggerToGCSObject) Execute(context cor.Context) {
	payload := context.Get(c.GetInputParam()).(string)

	notification := &cloud.GCSPubSubNotification{}
	if err := json.Unmarshal([]byte(payload), notification); err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), fmt.Errorf("failed to parse storage notification: %w", err))
		return
	}

	object := &cloud.GCSObject{
		Bucket:   notification.Bucket,
		Name:     notification.Name,
		MIMEType: notification.ContentType,
	}

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(cloud.GetGCSObjectName(), object)
	context.Add(cor.CtxOut, object)
}
