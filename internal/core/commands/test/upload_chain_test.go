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

package commands_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/clipfarm/clipfarm-backend/internal/cloud"
	"github.com/clipfarm/clipfarm-backend/internal/core/commands"
	"github.com/clipfarm/clipfarm-backend/internal/core/cor"
	test "github.com/clipfarm/clipfarm-backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeFinalizer records the finalize call.
type fakeFinalizer struct {
	id       string
	filePath string
	url      string
}

func (f *fakeFinalizer) FinalizeUpload(_ context.Context, id string, filePath string, url string) error {
	f.id, f.filePath, f.url = id, filePath, url
	return nil
}

// fakeUploader only answers PublicURL; the finalize chain never writes
// objects.
type fakeUploader struct{}

func (f *fakeUploader) Upload(_ context.Context, _ string, _ string, _ []byte, _ string) error {
	return nil
}

func (f *fakeUploader) PublicURL(bucket string, object string) string {
	return fmt.Sprintf("%s/%s/%s", cloud.PublicURLPrefix, bucket, object)
}

func TestUploadFinalizeChain(t *testing.T) {
	finalizer := &fakeFinalizer{}
	chain := cor.NewBaseChain("video-upload-finalizer")
	chain.AddCommand(commands.NewUploadTriggerToGCSObject("upload-trigger-reader"))
	chain.AddCommand(commands.NewUploadFinalizer("upload-finalizer", finalizer, &fakeUploader{}))

	chainCtx := cor.NewBaseContext()
	chainCtx.SetContext(context.Background())
	chainCtx.Add(cor.CtxIn, test.GetTestUploadNotificationText())
	chain.Execute(chainCtx)

	require.False(t, chainCtx.HasErrors())
	assert.Equal(t, "5f4e7a40-9f62-4e2c-9c5e-2f3a1b6d8e01", finalizer.id)
	assert.Equal(t, "5f4e7a40-9f62-4e2c-9c5e-2f3a1b6d8e01.mp4", finalizer.filePath)
	assert.Equal(t,
		cloud.PublicURLPrefix+"/clipfarm-videos/5f4e7a40-9f62-4e2c-9c5e-2f3a1b6d8e01.mp4",
		finalizer.url)

	// The parsed object handle stays addressable for later commands.
	object, ok := chainCtx.Get(cloud.GetGCSObjectName()).(*cloud.GCSObject)
	require.True(t, ok)
	assert.Equal(t, "video/mp4", object.MIMEType)
}

func TestUploadTriggerRejectsMalformedPayload(t *testing.T) {
	chain := cor.NewBaseChain("video-upload-finalizer")
	chain.AddCommand(commands.NewUploadTriggerToGCSObject("upload-trigger-reader"))
	chain.AddCommand(commands.NewUploadFinalizer("upload-finalizer", &fakeFinalizer{}, &fakeUploader{}))

	chainCtx := cor.NewBaseContext()
	chainCtx.SetContext(context.Background())
	chainCtx.Add(cor.CtxIn, "not a notification")
	chain.Execute(chainCtx)

	assert.True(t, chainCtx.HasErrors())
}
