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
	"errors"
	"fmt"
	"log/slog"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
)

// PublicURLPrefix is the host objects in public buckets serve from.
const PublicURLPrefix = "https://storage.googleapis.com"

// BucketSpec describes one managed bucket: its name and the per-object size
// cap enforced at upload time.
type BucketSpec struct {
	Name      string
	SizeLimit int64
}

// MediaStore manages the service's two media buckets, videos and shorts. It
// creates them on demand, enforces per-object size caps, and produces the
// public URLs rows reference.
type MediaStore struct {
	client    *storage.Client
	projectID string
	buckets   []BucketSpec
}

// NewMediaStore builds a store over the configured video and shorts buckets.
func NewMediaStore(client *storage.Client, projectID string, cfg StorageConfig) *MediaStore {
	return &MediaStore{
		client:    client,
		projectID: projectID,
		buckets: []BucketSpec{
			{Name: cfg.VideoBucket, SizeLimit: cfg.VideoSizeLimit},
			{Name: cfg.ShortsBucket, SizeLimit: cfg.ShortsSizeLimit},
		},
	}
}

// Ensure creates any managed bucket that does not exist yet. Buckets are
// created with public read access so object URLs serve directly. The call is
// idempotent; a creation race with another instance is tolerated as long as
// the bucket ends up present.
func (s *MediaStore) Ensure(ctx context.Context) error {
	for _, spec := range s.buckets {
		bucket := s.client.Bucket(spec.Name)
		_, err := bucket.Attrs(ctx)
		if err == nil {
			continue
		}
		if !errors.Is(err, storage.ErrBucketNotExist) {
			return fmt.Errorf("bucket %s lookup failed: %w", spec.Name, err)
		}
		attrs := &storage.BucketAttrs{PredefinedACL: "publicRead", PredefinedDefaultObjectACL: "publicRead"}
		if err := bucket.Create(ctx, s.projectID, attrs); err != nil {
			if _, attrErr := bucket.Attrs(ctx); attrErr == nil {
				slog.Warn("bucket created concurrently", "bucket", spec.Name)
				continue
			}
			return fmt.Errorf("bucket %s create failed: %w", spec.Name, err)
		}
		slog.Info("created storage bucket", "bucket", spec.Name)
	}
	return nil
}

// Upload writes object bytes with the given content type and a one-hour
// cache policy. Rejects payloads over the bucket's size cap. Existing objects
// are overwritten.
func (s *MediaStore) Upload(ctx context.Context, bucket string, object string, data []byte, contentType string) error {
	if limit := s.sizeLimit(bucket); limit > 0 && int64(len(data)) > limit {
		return fmt.Errorf("object %s/%s exceeds bucket size limit of %d bytes", bucket, object, limit)
	}
	writer := s.client.Bucket(bucket).Object(object).NewWriter(ctx)
	writer.ContentType = contentType
	writer.CacheControl = "public, max-age=3600"
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("write to %s/%s failed: %w", bucket, object, err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("close of %s/%s failed: %w", bucket, object, err)
	}
	return nil
}

// PublicURL returns the public serving URL for an object.
func (s *MediaStore) PublicURL(bucket string, object string) string {
	return fmt.Sprintf("%s/%s/%s", PublicURLPrefix, bucket, object)
}

// Delete removes one object. A missing object is not an error.
func (s *MediaStore) Delete(ctx context.Context, bucket string, object string) error {
	err := s.client.Bucket(bucket).Object(object).Delete(ctx)
	if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("delete of %s/%s failed: %w", bucket, object, err)
	}
	return nil
}

// DeletePrefix removes every object under a prefix, e.g. all shorts for one
// video id.
func (s *MediaStore) DeletePrefix(ctx context.Context, bucket string, prefix string) error {
	itr := s.client.Bucket(bucket).Objects(ctx, &storage.Query{Prefix: prefix})
	for {
		attrs, err := itr.Next()
		if errors.Is(err, iterator.Done) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("listing %s/%s failed: %w", bucket, prefix, err)
		}
		if err := s.Delete(ctx, bucket, attrs.Name); err != nil {
			return err
		}
	}
}

func (s *MediaStore) sizeLimit(bucket string) int64 {
	for _, spec := range s.buckets {
		if spec.Name == bucket {
			return spec.SizeLimit
		}
	}
	return 0
}
