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
	"time"

	"cloud.google.com/go/bigquery"
	credentials "cloud.google.com/go/iam/credentials/apiv1"
	"cloud.google.com/go/iam/credentials/apiv1/credentialspb"
	"cloud.google.com/go/storage"
	"github.com/clipfarm/clipfarm-backend/internal/cloud"
	"github.com/clipfarm/clipfarm-backend/internal/core/model"
	"google.golang.org/api/iterator"
)

// ErrNotFound is returned when a row lookup matches nothing.
var ErrNotFound = errors.New("record not found")

// VideoService owns the videos table: lookups, listings, status transitions,
// and signed streaming URLs. Every status write also publishes a
// VideoStatusEvent so the dashboard sees transitions without polling.
type VideoService struct {
	BigqueryClient *bigquery.Client
	StorageClient  *storage.Client
	IAMClient      *credentials.IamCredentialsClient
	Publisher      *cloud.StatusPublisher
	SignerEmail    string
	DatasetName    string
	VideoTable     string
	VideoBucket    string
}

// NewVideoService constructs the service over the given clients and table
// coordinates.
func NewVideoService(
	bigqueryClient *bigquery.Client,
	storageClient *storage.Client,
	iamClient *credentials.IamCredentialsClient,
	publisher *cloud.StatusPublisher,
	signerEmail string,
	datasetName string,
	videoTable string,
	videoBucket string,
) *VideoService {
	return &VideoService{
		BigqueryClient: bigqueryClient,
		StorageClient:  storageClient,
		IAMClient:      iamClient,
		Publisher:      publisher,
		SignerEmail:    signerEmail,
		DatasetName:    datasetName,
		VideoTable:     videoTable,
		VideoBucket:    videoBucket,
	}
}

// GetFQN returns the fully qualified table name in dotted form for use in
// query text.
func (s *VideoService) GetFQN() string {
	table := s.BigqueryClient.Dataset(s.DatasetName).Table(s.VideoTable)
	return strings.Replace(table.FullyQualifiedName(), ":", ".", -1)
}

// Insert streams a new video row into the table.
func (s *VideoService) Insert(ctx context.Context, video *model.Video) error {
	inserter := s.BigqueryClient.Dataset(s.DatasetName).Table(s.VideoTable).Inserter()
	return inserter.Put(ctx, video)
}

// Get returns the video with the given id, or ErrNotFound.
func (s *VideoService) Get(ctx context.Context, id string) (*model.Video, error) {
	query := s.BigqueryClient.Query(fmt.Sprintf(QryFindVideoById, s.GetFQN(), escapeLiteral(id)))
	itr, err := query.Read(ctx)
	if err != nil {
		return nil, err
	}
	video := &model.Video{}
	if err := itr.Next(video); err != nil {
		if errors.Is(err, iterator.Done) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return video, nil
}

// List returns all videos, newest first.
func (s *VideoService) List(ctx context.Context) ([]*model.Video, error) {
	query := s.BigqueryClient.Query(fmt.Sprintf(QryListVideos, s.GetFQN()))
	itr, err := query.Read(ctx)
	if err != nil {
		return nil, err
	}
	videos := make([]*model.Video, 0)
	for {
		video := &model.Video{}
		err := itr.Next(video)
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, err
		}
		videos = append(videos, video)
	}
	return videos, nil
}

// UpdateStatus moves a video to the given lifecycle state and publishes the
// transition.
func (s *VideoService) UpdateStatus(ctx context.Context, id string, status string) error {
	err := s.run(ctx, fmt.Sprintf(QryUpdateVideoStatus, s.GetFQN(), status, escapeLiteral(id)))
	if err != nil {
		return err
	}
	s.Publisher.Publish(ctx, &cloud.VideoStatusEvent{VideoId: id, Status: status, OccurredAt: time.Now()})
	return nil
}

// SetError moves a video to the error state with the failure message and
// publishes the transition.
func (s *VideoService) SetError(ctx context.Context, id string, message string) error {
	err := s.run(ctx, fmt.Sprintf(QryMarkVideoError, s.GetFQN(), model.StatusError, escapeLiteral(message), escapeLiteral(id)))
	if err != nil {
		return err
	}
	s.Publisher.Publish(ctx, &cloud.VideoStatusEvent{VideoId: id, Status: model.StatusError, ErrorMessage: message, OccurredAt: time.Now()})
	return nil
}

// FinalizeUpload marks a directly uploaded video complete with its object
// path and public URL.
func (s *VideoService) FinalizeUpload(ctx context.Context, id string, filePath string, url string) error {
	err := s.run(ctx, fmt.Sprintf(QryFinalizeVideoUpload, s.GetFQN(),
		model.StatusComplete, escapeLiteral(filePath), escapeLiteral(url), escapeLiteral(id)))
	if err != nil {
		return err
	}
	s.Publisher.Publish(ctx, &cloud.VideoStatusEvent{VideoId: id, Status: model.StatusComplete, OccurredAt: time.Now()})
	return nil
}

// FinalizeImport marks an imported video complete with the metadata the
// import workflow resolved.
func (s *VideoService) FinalizeImport(ctx context.Context, id string, thumbnailUrl string, filePath string, duration string) error {
	err := s.run(ctx, fmt.Sprintf(QryFinalizeVideoImport, s.GetFQN(),
		model.StatusComplete, escapeLiteral(thumbnailUrl), escapeLiteral(filePath), escapeLiteral(duration), escapeLiteral(id)))
	if err != nil {
		return err
	}
	s.Publisher.Publish(ctx, &cloud.VideoStatusEvent{VideoId: id, Status: model.StatusComplete, OccurredAt: time.Now()})
	return nil
}

// Delete removes the video row.
func (s *VideoService) Delete(ctx context.Context, id string) error {
	return s.run(ctx, fmt.Sprintf(QryDeleteVideo, s.GetFQN(), escapeLiteral(id)))
}

// Count returns the total number of video rows.
func (s *VideoService) Count(ctx context.Context) (int64, error) {
	query := s.BigqueryClient.Query(fmt.Sprintf(QryCountVideos, s.GetFQN()))
	itr, err := query.Read(ctx)
	if err != nil {
		return 0, err
	}
	row := &struct {
		Total int64 `bigquery:"total"`
	}{}
	if err := itr.Next(row); err != nil {
		return 0, err
	}
	return row.Total, nil
}

// SignedURL produces a V4 GET URL for streaming an object from the videos
// bucket, signed through the IAM credentials API so no private key is
// deployed with the service.
func (s *VideoService) SignedURL(ctx context.Context, object string, expires time.Duration) (string, error) {
	signerName := fmt.Sprintf("projects/-/serviceAccounts/%s", s.SignerEmail)
	opts := &storage.SignedURLOptions{
		Scheme:         storage.SigningSchemeV4,
		Method:         "GET",
		GoogleAccessID: s.SignerEmail,
		Expires:        time.Now().Add(expires),
		SignBytes: func(payload []byte) ([]byte, error) {
			resp, err := s.IAMClient.SignBlob(ctx, &credentialspb.SignBlobRequest{
				Name:    signerName,
				Payload: payload,
			})
			if err != nil {
				return nil, err
			}
			return resp.SignedBlob, nil
		},
	}
	return s.StorageClient.Bucket(s.VideoBucket).SignedURL(object, opts)
}

func (s *VideoService) run(ctx context.Context, statement string) error {
	query := s.BigqueryClient.Query(statement)
	_, err := query.Read(ctx)
	return err
}

// escapeLiteral escapes a value for inlining into single-quoted SQL text.
func escapeLiteral(value string) string {
	out := strings.ReplaceAll(value, `\`, `\\`)
	return strings.ReplaceAll(out, "'", `\'`)
}
