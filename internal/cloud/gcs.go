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

// This file defines the wire shapes for Google Cloud Storage Pub/Sub
// notifications. When an object is finalized in the videos bucket, GCS
// publishes one of these payloads and the upload-finalize listener turns it
// into a GCSObject for the pipeline.
package cloud

// GCSPubSubNotification mirrors the JSON document GCS publishes for object
// lifecycle events.
type GCSPubSubNotification struct {
	Kind                    string            `json:"kind"`
	Id                      string            `json:"id"`
	SelfLink                string            `json:"selfLink"`
	Name                    string            `json:"name"`
	Bucket                  string            `json:"bucket"`
	Generation              string            `json:"generation"`
	Metageneration          string            `json:"metageneration"`
	ContentType             string            `json:"contentType"`
	TimeCreated             string            `json:"timeCreated"`
	Updated                 string            `json:"updated"`
	StorageClass            string            `json:"storageClass"`
	TimeStorageClassUpdated string            `json:"timeStorageClassUpdated"`
	Size                    string            `json:"size"`
	MD5Hash                 string            `json:"md5Hash"`
	MediaLink               string            `json:"mediaLink"`
	Metadata                map[string]string `json:"metadata"`
	CRC32C                  string            `json:"crc32c"`
	ETag                    string            `json:"etag"`
}

// GCSObject is the minimal handle to a stored object that pipeline commands
// pass around.
type GCSObject struct {
	Bucket   string
	Name     string
	MIMEType string
}

// GetGCSObjectName returns the context parameter key under which commands
// publish the GCSObject extracted from a trigger message.
func GetGCSObjectName() string {
	return "__GCS__OBJ__"
}
