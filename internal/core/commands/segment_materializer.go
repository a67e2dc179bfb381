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
	"log/slog"
	"sort"
	"sync"

	"github.com/clipfarm/clipfarm-backend/internal/core/cor"
	"github.com/clipfarm/clipfarm-backend/internal/core/model"
)

// SegmentMaterializer turns segment descriptors into clip artifacts by
// fanning the cuts out over a fixed worker pool. One segment's failure only
// drops that segment: the command logs it, counts it, and carries on with
// the survivors, so a flaky cut never voids the whole run.
type SegmentMaterializer struct {
	cor.BaseCommand
	cutter      SegmentCutter
	workerCount int
}

type segmentJob struct {
	index      int
	descriptor *model.SegmentDescriptor
}

type segmentResult struct {
	index    int
	artifact *model.SegmentArtifact
	err      error
}

// NewSegmentMaterializer creates the materializer with the given cutter tier
// and worker pool size.
func NewSegmentMaterializer(name string, cutter SegmentCutter, workerCount int) *SegmentMaterializer {
	if workerCount <= 0 {
		workerCount = 1
	}
	return &SegmentMaterializer{
		BaseCommand: *cor.NewBaseCommand(name),
		cutter:      cutter,
		workerCount: workerCount,
	}
}

func (c *SegmentMaterializer) Execute(context cor.Context) {
	descriptors := context.Get(c.GetInputParam()).([]*model.SegmentDescriptor)
	video := context.Get(GetVideoParameterName()).(*model.Video)

	jobs := make(chan segmentJob, len(descriptors))
	results := make(chan segmentResult, len(descriptors))

	var waitGroup sync.WaitGroup
	for w := 0; w < c.workerCount; w++ {
		waitGroup.Add(1)
		go func() {
			defer waitGroup.Done()
			for job := range jobs {
				artifact, err := c.cutter.Cut(context.GetContext(), video.Url, job.index, job.descriptor)
				results <- segmentResult{index: job.index, artifact: artifact, err: err}
			}
		}()
	}

	for i, descriptor := range descriptors {
		jobs <- segmentJob{index: i, descriptor: descriptor}
	}
	close(jobs)
	waitGroup.Wait()
	close(results)

	collected := make([]segmentResult, 0, len(descriptors))
	for result := range results {
		if result.err != nil {
			c.GetErrorCounter().Add(context.GetContext(), 1)
			slog.WarnContext(context.GetContext(), "segment materialization failed; skipping segment",
				"video_id", video.Id, "segment", result.index+1, "error", result.err)
			continue
		}
		collected = append(collected, result)
	}
	sort.Slice(collected, func(i, j int) bool { return collected[i].index < collected[j].index })

	artifacts := make([]*model.SegmentArtifact, 0, len(collected))
	for _, result := range collected {
		artifacts = append(artifacts, result.artifact)
	}

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(cor.CtxOut, artifacts)
}
