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

// This file contains factory methods for example and fallback data. The
// example segment list is embedded in the analyzer prompt as a few-shot
// output sample; the default descriptors are the last-resort result when
// nothing usable can be recovered from a model response.
package model

// GetExampleSegmentList returns a sample analyzer output used to show the
// model the exact JSON shape expected back.
func GetExampleSegmentList() *SegmentList {
	return &SegmentList{
		Segments: []*SegmentDescriptor{
			{
				Title:           "The One Trick Nobody Talks About",
				Timestamp:       "02:15-03:00",
				Description:     "A surprising technique demonstrated step by step that most viewers will not have seen before.",
				DurationSeconds: 45,
			},
		},
	}
}

// DefaultSegmentDescriptors returns the three canned descriptors used when a
// model response yields no parseable segments at all. The ranges are safe
// guesses near the start, middle, and end of a typical video.
func DefaultSegmentDescriptors(videoTitle string) []*SegmentDescriptor {
	return []*SegmentDescriptor{
		{
			Title:           "Top Highlight: " + videoTitle,
			Timestamp:       "00:10-00:45",
			Description:     "The most engaging moment from the beginning of the video",
			DurationSeconds: 35,
		},
		{
			Title:           "Key Insight: " + videoTitle,
			Timestamp:       "01:30-02:15",
			Description:     "Core content that viewers will find most valuable",
			DurationSeconds: 45,
		},
		{
			Title:           "Best Conclusion: " + videoTitle,
			Timestamp:       "03:00-03:45",
			Description:     "The perfect closing segment that summarizes key points",
			DurationSeconds: 45,
		},
	}
}
