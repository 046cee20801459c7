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

// Package governance implements the proposal, voting, execution and
// delegation rules of the DAO as a pure state-transition function.
//
// Transition never mutates the State it is given. It validates a Request
// against the State and returns a Delta describing every write the request
// causes; State.Apply is the only mutator. This split lets a host persist
// the Delta before making it visible in memory.
package governance

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// MaxAmount is the largest amount, power or tally value the state machine
// accepts. Values are persisted as signed 64-bit integers.
const MaxAmount = uint64(math.MaxInt64)

// ProposalID identifies a proposal. IDs are allocated from a counter that
// starts at zero and never reuses a value.
type ProposalID uint64

// Principal is an opaque, already authenticated participant identifier
// supplied by the hosting environment.
type Principal string

// Ballot is the choice recorded by a vote
type Ballot uint8

const (
	BallotFor     Ballot = 1
	BallotAgainst Ballot = 2
)

func (b Ballot) Valid() bool {
	return b == BallotFor || b == BallotAgainst
}

func (b Ballot) String() string {
	switch b {
	case BallotFor:
		return "for"
	case BallotAgainst:
		return "against"
	default:
		return fmt.Sprintf("Ballot(%d)", uint8(b))
	}
}

// ParseBallot converts the textual form used on the command line and in
// configuration into a Ballot
func ParseBallot(s string) (Ballot, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "for", "yes", "y":
		return BallotFor, nil
	case "against", "no", "n":
		return BallotAgainst, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidBallot, s)
	}
}

// Params holds the governance configuration. It is fixed when the state is
// initialized.
type Params struct {
	// Quorum is the minimum votes_for a proposal needs to be executed
	Quorum uint64
	// VotingPeriod is added to the creation time to compute the deadline
	VotingPeriod time.Duration
}

// Proposal is a request to transfer Amount to Target, subject to a vote
type Proposal struct {
	ID           ProposalID
	Description  string
	Proposer     Principal
	Target       Principal
	Amount       uint64
	CreatedAt    time.Time
	Deadline     time.Time
	VotesFor     uint64
	VotesAgainst uint64
	Executed     bool
}

// VotingOpen reports whether votes are still accepted at now. The deadline
// itself is still inside the voting window.
func (p Proposal) VotingOpen(now time.Time) bool {
	return !now.After(p.Deadline)
}

// VoteKey is the identity of a vote record
type VoteKey struct {
	ProposalID ProposalID
	Voter      Principal
}

// VoteRecord is a cast vote. Power is the voter's power at the time of the
// vote, which is the amount added to the tally.
type VoteRecord struct {
	ProposalID ProposalID
	Voter      Principal
	Ballot     Ballot
	Power      uint64
	CastAt     time.Time
}

func (v VoteRecord) Key() VoteKey {
	return VoteKey{ProposalID: v.ProposalID, Voter: v.Voter}
}

// Effect describes a value transfer that the hosting environment must
// perform exactly once. The state machine only authorizes it.
type Effect struct {
	ProposalID ProposalID
	Target     Principal
	Amount     uint64
}

// ID returns a stable identifier for the effect. At most one effect is
// ever produced per proposal, so the proposal ID is enough to deduplicate.
func (e Effect) ID() string {
	return fmt.Sprintf("transfer-%d", e.ProposalID)
}

func (e Effect) String() string {
	return fmt.Sprintf(
		"transfer %d to %s (proposal %d)",
		e.Amount,
		e.Target,
		e.ProposalID,
	)
}
