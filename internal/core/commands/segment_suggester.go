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

// Package commands contains the atomic pipeline steps that the workflows
// assemble into chains: content analysis, response parsing, segment
// materialization, upload, persistence, and the Pub/Sub trigger handling.
package commands

import (
	"bytes"
	"encoding/json"
	"fmt"
	"text/template"

	"github.com/clipfarm/clipfarm-backend/internal/cloud"
	"github.com/clipfarm/clipfarm-backend/internal/core/cor"
	"github.com/clipfarm/clipfarm-backend/internal/core/model"
	"go.opentelemetry.io/otel/metric"
	"google.golang.org/genai"
)

// GetVideoParameterName returns the context key under which the workflow
// publishes the video being processed, so commands later in the chain can
// reach the parent row without it riding the CtxIn/CtxOut pipe.
func GetVideoParameterName() string {
	return "__VIDEO__"
}

// SegmentSuggester asks the content analyzer model for the most engaging
// segments of a video. Input is the *model.Video under CtxIn; output is the
// model's raw text response under CtxOut. A model failure is fatal to the
// chain: with no descriptors there is nothing downstream to do.
type SegmentSuggester struct {
	cor.BaseCommand
	config            *cloud.Config
	model             cloud.ContentGenerator
	template          *template.Template
	tokenInputCount   metric.Int64Counter
	tokenOutputCount  metric.Int64Counter
	tokenRetryCounter metric.Int64Counter
}

// NewSegmentSuggester wires the suggester with its model, prompt template,
// and token accounting counters.
func NewSegmentSuggester(name string, config *cloud.Config, generator cloud.ContentGenerator, promptTemplate *template.Template) *SegmentSuggester {
	base := cor.NewBaseCommand(name)
	tokenInputCount, _ := base.Meter.Int64Counter(fmt.Sprintf("%s.gemini.token.input", name))
	tokenOutputCount, _ := base.Meter.Int64Counter(fmt.Sprintf("%s.gemini.token.output", name))
	tokenRetryCounter, _ := base.Meter.Int64Counter(fmt.Sprintf("%s.gemini.token.retry", name))
	return &SegmentSuggester{
		BaseCommand:       *base,
		config:            config,
		model:             generator,
		template:          promptTemplate,
		tokenInputCount:   tokenInputCount,
		tokenOutputCount:  tokenOutputCount,
		tokenRetryCounter: tokenRetryCounter,
	}
}

// GenerateParams builds the substitution map for the prompt template from
// the video metadata and the example output document.
func (c *SegmentSuggester) GenerateParams(video *model.Video) (map[string]string, error) {
	exampleJson, err := json.MarshalIndent(model.GetExampleSegmentList(), "", "  ")
	if err != nil {
		return nil, err
	}
	return map[string]string{
		"TITLE":        video.Title,
		"SOURCE":       video.Source,
		"URL":          video.Url,
		"EXAMPLE_JSON": string(exampleJson),
	}, nil
}

func (c *SegmentSuggester) Execute(context cor.Context) {
	video := context.Get(c.GetInputParam()).(*model.Video)

	params, err := c.GenerateParams(video)
	if err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), fmt.Errorf("failed to build prompt params: %w", err))
		return
	}

	prompt := bytes.Buffer{}
	if err := c.template.Execute(&prompt, params); err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), fmt.Errorf("failed to render prompt template: %w", err))
		return
	}

	contents := []*genai.Content{{
		Parts: []*genai.Part{{Text: prompt.String()}},
		Role:  "user",
	}}

	response, err := cloud.GenerateTextResponse(
		context.GetContext(),
		c.tokenInputCount,
		c.tokenOutputCount,
		c.tokenRetryCounter,
		0,
		c.model,
		contents)
	if err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), fmt.Errorf("content analysis failed: %w", err))
		return
	}

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(cor.CtxOut, response)
}
