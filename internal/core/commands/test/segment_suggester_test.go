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
	"errors"
	"testing"
	"text/template"

	"github.com/clipfarm/clipfarm-backend/internal/cloud"
	"github.com/clipfarm/clipfarm-backend/internal/core/commands"
	"github.com/clipfarm/clipfarm-backend/internal/core/cor"
	"github.com/clipfarm/clipfarm-backend/internal/core/model"
	test "github.com/clipfarm/clipfarm-backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

// fakeGenerator satisfies cloud.ContentGenerator, failing the first
// `failures` calls and then returning the canned response.
type fakeGenerator struct {
	calls    int
	failures int
	response string
}

func (f *fakeGenerator) GenerateContent(_ context.Context, _ []*genai.Content) (*genai.GenerateContentResponse, error) {
	f.calls++
	if f.calls <= f.failures {
		return nil, errors.New("resource exhausted")
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{{Text: f.response}}},
		}},
		UsageMetadata: &genai.GenerateContentResponseUsageMetadata{
			PromptTokenCount:     120,
			CandidatesTokenCount: 240,
		},
	}, nil
}

var testPromptTemplate = template.Must(template.New("segment-prompt").Parse(
	"Title: {{.TITLE}} Source: {{.SOURCE}} URL: {{.URL}} Example: {{.EXAMPLE_JSON}}"))

func newSuggesterContext(video *model.Video) cor.Context {
	chainCtx := cor.NewBaseContext()
	chainCtx.SetContext(context.Background())
	chainCtx.Add(cor.CtxIn, video)
	chainCtx.Add(commands.GetVideoParameterName(), video)
	return chainCtx
}

func TestSegmentSuggesterSuccess(t *testing.T) {
	generator := &fakeGenerator{response: test.GetTestSegmentResponseJson()}
	cmd := commands.NewSegmentSuggester("segment-suggester", &cloud.Config{}, generator, testPromptTemplate)

	video := model.NewVideo("Launch Keynote", model.SourceUploadedFile, "")
	chainCtx := newSuggesterContext(video)
	cmd.Execute(chainCtx)

	require.False(t, chainCtx.HasErrors())
	assert.Equal(t, 1, generator.calls)

	// The shared response helper strips the markdown fence before the text
	// reaches the chain.
	response, ok := chainCtx.Get(cor.CtxOut).(string)
	require.True(t, ok)
	assert.NotContains(t, response, "```")
	assert.Contains(t, response, "Live Demo Meltdown")
}

func TestSegmentSuggesterRetriesTransientFailures(t *testing.T) {
	generator := &fakeGenerator{failures: 2, response: test.GetTestSegmentResponseJson()}
	cmd := commands.NewSegmentSuggester("segment-suggester", &cloud.Config{}, generator, testPromptTemplate)

	chainCtx := newSuggesterContext(model.NewVideo("Launch Keynote", model.SourceUploadedFile, ""))
	cmd.Execute(chainCtx)

	require.False(t, chainCtx.HasErrors())
	assert.Equal(t, 3, generator.calls)
}

func TestSegmentSuggesterFailsAfterRetriesExhausted(t *testing.T) {
	generator := &fakeGenerator{failures: 100}
	cmd := commands.NewSegmentSuggester("segment-suggester", &cloud.Config{}, generator, testPromptTemplate)

	chainCtx := newSuggesterContext(model.NewVideo("Launch Keynote", model.SourceUploadedFile, ""))
	cmd.Execute(chainCtx)

	assert.True(t, chainCtx.HasErrors())
	assert.Equal(t, 1+cloud.MaxRetries, generator.calls)
	assert.Nil(t, chainCtx.Get(cor.CtxOut))
}

func TestSegmentSuggesterGenerateParams(t *testing.T) {
	cmd := commands.NewSegmentSuggester("segment-suggester", &cloud.Config{}, &fakeGenerator{}, testPromptTemplate)

	video := model.NewVideo("Launch Keynote", model.SourceExternalLink, "https://youtu.be/dQw4w9WgXcQ")
	params, err := cmd.GenerateParams(video)
	require.NoError(t, err)

	assert.Equal(t, "Launch Keynote", params["TITLE"])
	assert.Equal(t, model.SourceExternalLink, params["SOURCE"])
	assert.Equal(t, "https://youtu.be/dQw4w9WgXcQ", params["URL"])
	assert.Contains(t, params["EXAMPLE_JSON"], "\"segments\"")
}
