// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package sqlite

import (
	"github.com/blinklabs-io/agora/database/models"
	"github.com/blinklabs-io/agora/database/types"
	"gorm.io/gorm/clause"
)

// The commit timestamp lives in a single row. The blob journal keeps its
// own copy, and the two are compared on open.
const commitTimestampRowID = 1

type commitTimestamp struct {
	ID        uint `gorm:"primarykey"`
	Timestamp int64
}

func (commitTimestamp) TableName() string {
	return "commit_timestamp"
}

// schemaModels lists every table the store migrates on open
func schemaModels() []any {
	return append([]any{&commitTimestamp{}}, models.MigrateModels...)
}

// GetCommitTimestamp returns the timestamp of the last coordinated commit,
// or 0 for a store that has never committed one
func (d *MetadataStoreSqlite) GetCommitTimestamp() (int64, error) {
	var timestamps []int64
	result := d.DB().
		Model(&commitTimestamp{}).
		Where("id = ?", commitTimestampRowID).
		Pluck("timestamp", &timestamps)
	if result.Error != nil {
		return 0, result.Error
	}
	if len(timestamps) == 0 {
		return 0, nil
	}
	return timestamps[0], nil
}

// SetCommitTimestamp records the timestamp of a coordinated commit as part
// of txn
func (d *MetadataStoreSqlite) SetCommitTimestamp(
	timestamp int64,
	txn types.Txn,
) error {
	db, err := d.resolveDB(txn)
	if err != nil {
		return err
	}
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"timestamp"}),
	}).Create(&commitTimestamp{
		ID:        commitTimestampRowID,
		Timestamp: timestamp,
	}).Error
}
