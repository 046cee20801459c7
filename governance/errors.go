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

package governance

import "errors"

// Rejections returned by Transition. A rejected request never changes the
// state.
var (
	ErrNoVotingPower           = errors.New("caller has no voting power")
	ErrAlreadyVoted            = errors.New("caller already voted on proposal")
	ErrProposalNotFound        = errors.New("proposal not found")
	ErrVotingEnded             = errors.New("voting period has ended")
	ErrAlreadyExecuted         = errors.New("proposal already executed")
	ErrVotingNotEnded          = errors.New("voting period has not ended")
	ErrProposalRejected        = errors.New("proposal rejected")
	ErrQuorumNotReached        = errors.New("quorum not reached")
	ErrInsufficientVotingPower = errors.New("insufficient voting power")
	ErrAmountOutOfRange        = errors.New("amount out of range")
	ErrDeadlineOutOfRange      = errors.New("proposal deadline out of range")
	ErrTallyOverflow           = errors.New("vote tally overflow")
	ErrInvalidBallot           = errors.New("invalid ballot")
	ErrUnknownRequest          = errors.New("unknown request type")
)

// ErrGenesisPowerOverflow is returned when the genesis allocation exceeds
// MaxAmount in total
var ErrGenesisPowerOverflow = errors.New("genesis voting power exceeds maximum")

// Rejections lists every error Transition can return, in no particular
// order. It is used to label metrics.
var Rejections = []error{
	ErrNoVotingPower,
	ErrAlreadyVoted,
	ErrProposalNotFound,
	ErrVotingEnded,
	ErrAlreadyExecuted,
	ErrVotingNotEnded,
	ErrProposalRejected,
	ErrQuorumNotReached,
	ErrInsufficientVotingPower,
	ErrAmountOutOfRange,
	ErrDeadlineOutOfRange,
	ErrTallyOverflow,
	ErrInvalidBallot,
	ErrUnknownRequest,
}

// IsRejection reports whether err is one of the state machine's own
// rejections, as opposed to an infrastructure failure
func IsRejection(err error) bool {
	for _, r := range Rejections {
		if errors.Is(err, r) {
			return true
		}
	}
	return false
}
