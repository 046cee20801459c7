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

// GovernanceStateID is the row key of the single governance state record
const GovernanceStateID = 1

// GovernanceState holds the parameters and counters of the governance
// state machine. There is exactly one row once the database is
// initialized.
type GovernanceState struct {
	ID                uint   `gorm:"primarykey"`
	Quorum            uint64 `gorm:"not null"`
	VotingPeriodNanos int64  `gorm:"not null"`
	NextProposalID    uint64 `gorm:"not null"`
	LastSequence      uint64 `gorm:"not null"` // last journal entry applied
}

func (GovernanceState) TableName() string {
	return "governance_state"
}
