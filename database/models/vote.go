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

const (
	BallotFor     = 1
	BallotAgainst = 2
)

type Vote struct {
	ID            uint   `gorm:"primarykey"`
	ProposalID    uint64 `gorm:"uniqueIndex:idx_vote_unique,priority:1;not null"`
	Voter         string `gorm:"uniqueIndex:idx_vote_unique,priority:2;index:idx_vote_voter;size:255;not null"`
	Ballot        uint8  `gorm:"not null"` // 1=For, 2=Against
	Power         uint64 `gorm:"not null"` // voter power when the vote was cast
	CastNanos     int64  `gorm:"not null"`
	AddedSequence uint64 `gorm:"index;not null"`
}

func (Vote) TableName() string {
	return "vote"
}
