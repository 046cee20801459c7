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

import "errors"

var ErrProposalNotFound = errors.New("proposal not found")

// Proposal is a governance proposal. ProposalID is the identity assigned by
// the state machine; ID is only the row key.
type Proposal struct {
	ID               uint   `gorm:"primarykey"`
	ProposalID       uint64 `gorm:"uniqueIndex;not null"`
	Description      string `gorm:"not null"`
	Proposer         string `gorm:"index;size:255;not null"`
	Target           string `gorm:"index;size:255;not null"`
	Amount           uint64 `gorm:"not null"`
	CreatedNanos     int64  `gorm:"not null"`
	DeadlineNanos    int64  `gorm:"index;not null"`
	VotesFor         uint64 `gorm:"not null"`
	VotesAgainst     uint64 `gorm:"not null"`
	Executed         bool   `gorm:"index;not null"`
	AddedSequence    uint64 `gorm:"index;not null"` // journal sequence of the creating request
	ExecutedSequence *uint64
}

func (Proposal) TableName() string {
	return "proposal"
}
