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

package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/bigquery"
	"github.com/clipfarm/clipfarm-backend/internal/cloud"
	"github.com/clipfarm/clipfarm-backend/internal/core/model"
	"google.golang.org/api/iterator"
)

// ShortStats aggregates the shorts table for the dashboard.
type ShortStats struct {
	Total int64 `bigquery:"total" json:"total"`
	Views int64 `bigquery:"views" json:"views"`
}

// ShortService owns the shorts table and the clip objects rows point at.
// Deletions remove both the row and its storage objects so the bucket never
// accumulates orphans.
type ShortService struct {
	BigqueryClient *bigquery.Client
	Store          *cloud.MediaStore
	DatasetName    string
	ShortTable     string
	ShortsBucket   string
}

// NewShortService constructs the service over the given clients and table
// coordinates.
func NewShortService(bigqueryClient *bigquery.Client, store *cloud.MediaStore, datasetName string, shortTable string, shortsBucket string) *ShortService {
	return &ShortService{
		BigqueryClient: bigqueryClient,
		Store:          store,
		DatasetName:    datasetName,
		ShortTable:     shortTable,
		ShortsBucket:   shortsBucket,
	}
}

// GetFQN returns the fully qualified table name in dotted form for use in
// query text.
func (s *ShortService) GetFQN() string {
	table := s.BigqueryClient.Dataset(s.DatasetName).Table(s.ShortTable)
	return strings.Replace(table.FullyQualifiedName(), ":", ".", -1)
}

// Insert streams a new short row into the table.
func (s *ShortService) Insert(ctx context.Context, short *model.Short) error {
	inserter := s.BigqueryClient.Dataset(s.DatasetName).Table(s.ShortTable).Inserter()
	return inserter.Put(ctx, short)
}

// Get returns the short with the given id, or ErrNotFound.
func (s *ShortService) Get(ctx context.Context, id string) (*model.Short, error) {
	query := s.BigqueryClient.Query(fmt.Sprintf(QryFindShortById, s.GetFQN(), escapeLiteral(id)))
	itr, err := query.Read(ctx)
	if err != nil {
		return nil, err
	}
	short := &model.Short{}
	if err := itr.Next(short); err != nil {
		if errors.Is(err, iterator.Done) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return short, nil
}

// ListByVideo returns all shorts generated for one video in generation
// order.
func (s *ShortService) ListByVideo(ctx context.Context, videoId string) ([]*model.Short, error) {
	query := s.BigqueryClient.Query(fmt.Sprintf(QryListShortsByVideo, s.GetFQN(), escapeLiteral(videoId)))
	itr, err := query.Read(ctx)
	if err != nil {
		return nil, err
	}
	shorts := make([]*model.Short, 0)
	for {
		short := &model.Short{}
		err := itr.Next(short)
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, err
		}
		shorts = append(shorts, short)
	}
	return shorts, nil
}

// Delete removes one short: its clip object, its thumbnail, then the row.
func (s *ShortService) Delete(ctx context.Context, id string) error {
	short, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if len(short.FilePath) > 0 {
		if err := s.Store.Delete(ctx, s.ShortsBucket, short.FilePath); err != nil {
			return err
		}
		thumbPath := strings.TrimSuffix(short.FilePath, ".mp4") + ".jpg"
		if err := s.Store.Delete(ctx, s.ShortsBucket, thumbPath); err != nil {
			return err
		}
	}
	return s.run(ctx, fmt.Sprintf(QryDeleteShort, s.GetFQN(), escapeLiteral(id)))
}

// DeleteByVideo removes every short belonging to a video, objects first.
// Used before a re-run so generation replaces instead of appending.
func (s *ShortService) DeleteByVideo(ctx context.Context, videoId string) error {
	if err := s.Store.DeletePrefix(ctx, s.ShortsBucket, videoId+"/"); err != nil {
		return err
	}
	return s.run(ctx, fmt.Sprintf(QryDeleteShortsByVideo, s.GetFQN(), escapeLiteral(videoId)))
}

// IncrementViews adds one play to the short's view counter.
func (s *ShortService) IncrementViews(ctx context.Context, id string) error {
	return s.run(ctx, fmt.Sprintf(QryIncrementShortViews, s.GetFQN(), escapeLiteral(id)))
}

// Stats returns the dashboard aggregates for the shorts table.
func (s *ShortService) Stats(ctx context.Context) (*ShortStats, error) {
	query := s.BigqueryClient.Query(fmt.Sprintf(QryShortStats, s.GetFQN()))
	itr, err := query.Read(ctx)
	if err != nil {
		return nil, err
	}
	stats := &ShortStats{}
	if err := itr.Next(stats); err != nil {
		return nil, err
	}
	return stats, nil
}

func (s *ShortService) run(ctx context.Context, statement string) error {
	query := s.BigqueryClient.Query(statement)
	_, err := query.Read(ctx)
	return err
}
