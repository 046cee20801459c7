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

package models

type VotingPower struct {
	ID              uint   `gorm:"primarykey"`
	Principal       string `gorm:"uniqueIndex;size:255;not null"`
	Power           uint64 `gorm:"not null"`
	UpdatedSequence uint64 `gorm:"index;not null"` // 0 for genesis allocations
}

func (VotingPower) TableName() string {
	return "voting_power"
}
