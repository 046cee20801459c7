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

package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/blinklabs-io/agora/governance"
)

// ErrStateMismatch is returned when the metadata store disagrees with the
// in-memory governance state
var ErrStateMismatch = errors.New("stored governance state does not match memory")

// Verify checks every proposal and vote held in memory against its record
// in the metadata store
func (ls *LedgerState) Verify(ctx context.Context) error {
	ls.RLock()
	defer ls.RUnlock()
	return ls.verify(ctx)
}

func (ls *LedgerState) verify(ctx context.Context) error {
	for _, p := range ls.state.Proposals() {
		if err := ctx.Err(); err != nil {
			return err
		}
		stored, err := ls.db.GetProposal(uint64(p.ID), nil)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrStateMismatch, err)
		}
		if !sameProposal(proposalFromModel(*stored), p) {
			return fmt.Errorf("%w: proposal %d differs", ErrStateMismatch, p.ID)
		}
		votes := ls.state.Votes(p.ID)
		storedVotes, err := ls.db.GetVotesByProposal(uint64(p.ID), nil)
		if err != nil {
			return err
		}
		if len(storedVotes) != len(votes) {
			return fmt.Errorf(
				"%w: proposal %d has %d stored votes, expected %d",
				ErrStateMismatch,
				p.ID,
				len(storedVotes),
				len(votes),
			)
		}
		for _, v := range votes {
			storedVote, err := ls.db.GetVote(uint64(p.ID), string(v.Voter), nil)
			if err != nil {
				return err
			}
			if storedVote == nil || !sameVote(voteFromModel(*storedVote), v) {
				return fmt.Errorf(
					"%w: vote of %s on proposal %d differs",
					ErrStateMismatch,
					v.Voter,
					p.ID,
				)
			}
		}
	}
	return nil
}

// Stored times come back in the local zone without a monotonic reading
func sameProposal(a, b governance.Proposal) bool {
	return a.ID == b.ID &&
		a.Description == b.Description &&
		a.Proposer == b.Proposer &&
		a.Target == b.Target &&
		a.Amount == b.Amount &&
		a.CreatedAt.Equal(b.CreatedAt) &&
		a.Deadline.Equal(b.Deadline) &&
		a.VotesFor == b.VotesFor &&
		a.VotesAgainst == b.VotesAgainst &&
		a.Executed == b.Executed
}

func sameVote(a, b governance.VoteRecord) bool {
	return a.ProposalID == b.ProposalID &&
		a.Voter == b.Voter &&
		a.Ballot == b.Ballot &&
		a.Power == b.Power &&
		a.CastAt.Equal(b.CastAt)
}
