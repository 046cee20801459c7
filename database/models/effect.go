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

var ErrEffectNotFound = errors.New("effect not found")

// Effect is an outbox record for the value transfer authorized by an
// executed proposal. The host clears it by setting SettledNanos once the
// transfer has been performed.
type Effect struct {
	ID            uint   `gorm:"primarykey"`
	ProposalID    uint64 `gorm:"uniqueIndex;not null"`
	Target        string `gorm:"size:255;not null"`
	Amount        uint64 `gorm:"not null"`
	AddedSequence uint64 `gorm:"index;not null"`
	SettledNanos  *int64 `gorm:"index"`
}

func (Effect) TableName() string {
	return "effect"
}
