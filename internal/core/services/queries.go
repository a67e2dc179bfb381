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

// Package services implements the metadata store operations over BigQuery.
// This file holds the SQL text as Sprintf templates; the first verb is always
// the fully qualified table name.
package services

const (
	QryFindVideoById = "SELECT * FROM `%s` WHERE id = '%s'"

	QryListVideos = "SELECT * FROM `%s` ORDER BY created_at DESC"

	QryUpdateVideoStatus = "UPDATE `%s` SET status = '%s' WHERE id = '%s'"

	QryMarkVideoError = "UPDATE `%s` SET status = '%s', error_message = '%s' WHERE id = '%s'"

	QryFinalizeVideoUpload = "UPDATE `%s` SET status = '%s', file_path = '%s', url = '%s' WHERE id = '%s'"

	QryFinalizeVideoImport = "UPDATE `%s` SET status = '%s', thumbnail_url = '%s', file_path = '%s', duration = '%s' WHERE id = '%s'"

	QryDeleteVideo = "DELETE FROM `%s` WHERE id = '%s'"

	QryCountVideos = "SELECT COUNT(*) AS total FROM `%s`"

	QryFindShortById = "SELECT * FROM `%s` WHERE id = '%s'"

	QryListShortsByVideo = "SELECT * FROM `%s` WHERE video_id = '%s' ORDER BY created_at ASC"

	QryDeleteShort = "DELETE FROM `%s` WHERE id = '%s'"

	QryDeleteShortsByVideo = "DELETE FROM `%s` WHERE video_id = '%s'"

	QryIncrementShortViews = "UPDATE `%s` SET views = views + 1 WHERE id = '%s'"

	QryShortStats = "SELECT COUNT(*) AS total, IFNULL(SUM(views), 0) AS views FROM `%s`"
)
