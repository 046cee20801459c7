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
	"time"

	"github.com/blinklabs-io/agora/database/models"
	"github.com/blinklabs-io/agora/governance"
)

// ErrEffectNotFound is returned when settling a transfer that no executed
// proposal authorized
var ErrEffectNotFound = models.ErrEffectNotFound

// Effect is a transfer from the outbox. SettledAt is nil until the host
// reports the transfer done.
type Effect struct {
	governance.Effect
	Sequence  uint64
	SettledAt *time.Time
}

func (ls *LedgerState) Params() governance.Params {
	ls.RLock()
	defer ls.RUnlock()
	return ls.state.Params()
}

// LastSequence returns the journal sequence of the last accepted request
func (ls *LedgerState) LastSequence() uint64 {
	ls.RLock()
	defer ls.RUnlock()
	return ls.lastSequence
}

// Proposal returns a proposal by id, or governance.ErrProposalNotFound
func (ls *LedgerState) Proposal(
	id governance.ProposalID,
) (governance.Proposal, error) {
	ls.RLock()
	defer ls.RUnlock()
	p, ok := ls.state.Proposal(id)
	if !ok {
		return governance.Proposal{}, governance.ErrProposalNotFound
	}
	return p, nil
}

// Proposals returns all proposals ordered by id
func (ls *LedgerState) Proposals() []governance.Proposal {
	ls.RLock()
	defer ls.RUnlock()
	return ls.state.Proposals()
}

// GetVote returns the vote cast by voter on a proposal
func (ls *LedgerState) GetVote(
	id governance.ProposalID,
	voter governance.Principal,
) (governance.VoteRecord, bool) {
	ls.RLock()
	defer ls.RUnlock()
	return ls.state.Vote(id, voter)
}

// Votes returns the votes cast on a proposal ordered by voter
func (ls *LedgerState) Votes(id governance.ProposalID) []governance.VoteRecord {
	ls.RLock()
	defer ls.RUnlock()
	return ls.state.Votes(id)
}

func (ls *LedgerState) VotingPower(p governance.Principal) uint64 {
	ls.RLock()
	defer ls.RUnlock()
	return ls.state.VotingPower(p)
}

func (ls *LedgerState) VotingPowers() map[governance.Principal]uint64 {
	ls.RLock()
	defer ls.RUnlock()
	return ls.state.VotingPowers()
}

func (ls *LedgerState) TotalVotingPower() uint64 {
	ls.RLock()
	defer ls.RUnlock()
	return ls.state.TotalVotingPower()
}

// PendingEffects lists transfers of executed proposals that have not been
// settled, ordered by proposal id
func (ls *LedgerState) PendingEffects(ctx context.Context) ([]Effect, error) {
	return ls.effects(ctx, true)
}

// Effects lists all transfers of executed proposals, settled or not
func (ls *LedgerState) Effects(ctx context.Context) ([]Effect, error) {
	return ls.effects(ctx, false)
}

func (ls *LedgerState) effects(
	ctx context.Context,
	pendingOnly bool,
) ([]Effect, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ls.RLock()
	defer ls.RUnlock()
	tmpEffects, err := ls.db.GetEffects(pendingOnly, nil)
	if err != nil {
		return nil, err
	}
	ret := make([]Effect, 0, len(tmpEffects))
	for _, m := range tmpEffects {
		ret = append(ret, effectFromModel(m))
	}
	return ret, nil
}

// SettleEffect records that the host performed the transfer of an executed
// proposal. Settling twice keeps the first time and is not an error.
func (ls *LedgerState) SettleEffect(
	ctx context.Context,
	id governance.ProposalID,
	at time.Time,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	atNanos, err := timeToNanos(at)
	if err != nil {
		return err
	}
	ls.Lock()
	defer ls.Unlock()
	effect, err := ls.db.GetEffect(uint64(id), nil)
	if err != nil {
		if errors.Is(err, models.ErrEffectNotFound) {
			return fmt.Errorf("%w: proposal %d", ErrEffectNotFound, id)
		}
		return err
	}
	if effect.SettledNanos != nil {
		return nil
	}
	if err := ls.db.SettleEffect(uint64(id), atNanos, nil); err != nil {
		return err
	}
	ls.metrics.pendingEffects.Dec()
	ls.config.Logger.Info(
		"settled effect",
		"component", "ledger",
		"effect", effectFromModel(*effect).ID(),
		"target", effect.Target,
		"amount", effect.Amount,
	)
	return nil
}
