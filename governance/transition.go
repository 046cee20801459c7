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

import (
	"math"
	"time"
)

// Deadlines must be representable as unix nanoseconds
var (
	minDeadline = time.Unix(0, math.MinInt64)
	maxDeadline = time.Unix(0, math.MaxInt64)
)

func (s *State) planCreateProposal(
	req CreateProposal,
	caller Principal,
	now time.Time,
) (*Result, error) {
	if s.VotingPower(caller) == 0 {
		return nil, ErrNoVotingPower
	}
	if req.Amount > MaxAmount {
		return nil, ErrAmountOutOfRange
	}
	deadline := now.Add(s.params.VotingPeriod)
	if s.params.VotingPeriod > maxDeadline.Sub(now) ||
		deadline.Before(minDeadline) {
		return nil, ErrDeadlineOutOfRange
	}
	id := s.nextProposalID
	proposal := &Proposal{
		ID:          id,
		Description: req.Description,
		Proposer:    caller,
		Target:      req.Target,
		Amount:      req.Amount,
		CreatedAt:   now,
		Deadline:    deadline,
	}
	return &Result{
		Type:       RequestTypeCreateProposal,
		ProposalID: id,
		Delta: &Delta{
			NextProposalID: id + 1,
			Proposal:       proposal,
		},
	}, nil
}

func (s *State) planCastVote(
	req CastVote,
	caller Principal,
	now time.Time,
) (*Result, error) {
	if !req.Ballot.Valid() {
		return nil, ErrInvalidBallot
	}
	power := s.VotingPower(caller)
	if power == 0 {
		return nil, ErrNoVotingPower
	}
	if s.HasVoted(req.ProposalID, caller) {
		return nil, ErrAlreadyVoted
	}
	existing, ok := s.proposals[req.ProposalID]
	if !ok {
		return nil, ErrProposalNotFound
	}
	if !existing.VotingOpen(now) {
		return nil, ErrVotingEnded
	}
	proposal := *existing
	tally := &proposal.VotesFor
	if req.Ballot == BallotAgainst {
		tally = &proposal.VotesAgainst
	}
	if power > MaxAmount-*tally {
		return nil, ErrTallyOverflow
	}
	*tally += power
	return &Result{
		Type:       RequestTypeCastVote,
		ProposalID: proposal.ID,
		Delta: &Delta{
			NextProposalID: s.nextProposalID,
			Proposal:       &proposal,
			Vote: &VoteRecord{
				ProposalID: proposal.ID,
				Voter:      caller,
				Ballot:     req.Ballot,
				Power:      power,
				CastAt:     now,
			},
		},
	}, nil
}

func (s *State) planExecute(
	req Execute,
	now time.Time,
) (*Result, error) {
	existing, ok := s.proposals[req.ProposalID]
	if !ok {
		return nil, ErrProposalNotFound
	}
	if existing.Executed {
		return nil, ErrAlreadyExecuted
	}
	// Strictly after the deadline
	if !now.After(existing.Deadline) {
		return nil, ErrVotingNotEnded
	}
	if existing.VotesFor <= existing.VotesAgainst {
		return nil, ErrProposalRejected
	}
	if existing.VotesFor < s.params.Quorum {
		return nil, ErrQuorumNotReached
	}
	proposal := *existing
	proposal.Executed = true
	effect := &Effect{
		ProposalID: proposal.ID,
		Target:     proposal.Target,
		Amount:     proposal.Amount,
	}
	return &Result{
		Type:       RequestTypeExecute,
		ProposalID: proposal.ID,
		Effect:     effect,
		Delta: &Delta{
			NextProposalID: s.nextProposalID,
			Proposal:       &proposal,
			Effect:         effect,
		},
	}, nil
}

func (s *State) planDelegate(
	req Delegate,
	caller Principal,
) (*Result, error) {
	available := s.VotingPower(caller)
	if req.Amount > available {
		return nil, ErrInsufficientVotingPower
	}
	delta := &Delta{NextProposalID: s.nextProposalID}
	// Self delegation and zero amounts leave the ledger unchanged
	if req.To != caller && req.Amount > 0 {
		delta.Powers = []PowerChange{
			{Principal: caller, Power: available - req.Amount},
			{Principal: req.To, Power: s.VotingPower(req.To) + req.Amount},
		}
	}
	return &Result{
		Type:  RequestTypeDelegate,
		Delta: delta,
	}, nil
}
