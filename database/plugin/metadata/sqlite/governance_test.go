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

package sqlite

import (
	"testing"

	"github.com/blinklabs-io/agora/database/models"
	"github.com/blinklabs-io/agora/database/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) *MetadataStoreSqlite {
	t.Helper()
	store, err := New("", nil, nil)
	require.NoError(t, err)
	require.NoError(t, store.Start())
	t.Cleanup(func() {
		store.Close() //nolint:errcheck
	})
	return store
}

func TestInMemoryStoresAreIsolated(t *testing.T) {
	store1 := setupTestStore(t)
	store2 := setupTestStore(t)

	require.NoError(t, store1.SetVotingPower(&models.VotingPower{
		Principal: "alice",
		Power:     10,
	}, nil))

	power, err := store2.GetVotingPower("alice", nil)
	require.NoError(t, err)
	assert.Nil(t, power)
}

func TestGovernanceState(t *testing.T) {
	store := setupTestStore(t)

	state, err := store.GetGovernanceState(nil)
	require.NoError(t, err)
	assert.Nil(t, state)

	require.NoError(t, store.SetGovernanceState(&models.GovernanceState{
		Quorum:            100,
		VotingPeriodNanos: 1000,
		NextProposalID:    0,
	}, nil))
	require.NoError(t, store.SetGovernanceState(&models.GovernanceState{
		Quorum:            100,
		VotingPeriodNanos: 1000,
		NextProposalID:    3,
		LastSequence:      7,
	}, nil))

	state, err = store.GetGovernanceState(nil)
	require.NoError(t, err)
	require.NotNil(t, state)
	assert.Equal(t, uint64(3), state.NextProposalID)
	assert.Equal(t, uint64(7), state.LastSequence)

	var count int64
	require.NoError(t, store.DB().Model(&models.GovernanceState{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestProposalUpsert(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.GetProposal(0, nil)
	require.ErrorIs(t, err, models.ErrProposalNotFound)

	require.NoError(t, store.SetProposal(&models.Proposal{
		ProposalID:    0,
		Description:   "fund the docs",
		Proposer:      "alice",
		Target:        "bob",
		Amount:        50,
		CreatedNanos:  1,
		DeadlineNanos: 1001,
		AddedSequence: 1,
	}, nil))
	seq := uint64(4)
	require.NoError(t, store.SetProposal(&models.Proposal{
		ProposalID:       0,
		Description:      "fund the docs",
		Proposer:         "alice",
		Target:           "bob",
		Amount:           50,
		CreatedNanos:     1,
		DeadlineNanos:    1001,
		VotesFor:         150,
		Executed:         true,
		AddedSequence:    4,
		ExecutedSequence: &seq,
	}, nil))

	proposal, err := store.GetProposal(0, nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(150), proposal.VotesFor)
	assert.True(t, proposal.Executed)
	require.NotNil(t, proposal.ExecutedSequence)
	assert.Equal(t, uint64(4), *proposal.ExecutedSequence)
	// The creating sequence is not overwritten
	assert.Equal(t, uint64(1), proposal.AddedSequence)

	// A later tally update without an executing sequence keeps it
	require.NoError(t, store.SetProposal(&models.Proposal{
		ProposalID:    0,
		Description:   "fund the docs",
		Proposer:      "alice",
		Target:        "bob",
		Amount:        50,
		VotesFor:      150,
		VotesAgainst:  20,
		Executed:      true,
		AddedSequence: 5,
	}, nil))
	proposal, err = store.GetProposal(0, nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(20), proposal.VotesAgainst)
	require.NotNil(t, proposal.ExecutedSequence)
	assert.Equal(t, uint64(4), *proposal.ExecutedSequence)

	proposals, err := store.GetProposals(nil)
	require.NoError(t, err)
	assert.Len(t, proposals, 1)
}

func TestVoteUniqueness(t *testing.T) {
	store := setupTestStore(t)

	vote := &models.Vote{
		ProposalID: 0,
		Voter:      "alice",
		Ballot:     models.BallotFor,
		Power:      150,
		CastNanos:  10,
	}
	require.NoError(t, store.AddVote(vote, nil))
	err := store.AddVote(&models.Vote{
		ProposalID: 0,
		Voter:      "alice",
		Ballot:     models.BallotAgainst,
		Power:      150,
	}, nil)
	require.Error(t, err)

	require.NoError(t, store.AddVote(&models.Vote{
		ProposalID: 1,
		Voter:      "alice",
		Ballot:     models.BallotAgainst,
		Power:      150,
	}, nil))

	got, err := store.GetVote(0, "alice", nil)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, uint8(models.BallotFor), got.Ballot)

	missing, err := store.GetVote(0, "bob", nil)
	require.NoError(t, err)
	assert.Nil(t, missing)

	byProposal, err := store.GetVotesByProposal(1, nil)
	require.NoError(t, err)
	assert.Len(t, byProposal, 1)

	all, err := store.GetVotes(nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestVotingPowerUpsert(t *testing.T) {
	store := setupTestStore(t)

	require.NoError(t, store.SetVotingPower(&models.VotingPower{
		Principal: "alice",
		Power:     100,
	}, nil))
	require.NoError(t, store.SetVotingPower(&models.VotingPower{
		Principal:       "alice",
		Power:           40,
		UpdatedSequence: 2,
	}, nil))
	require.NoError(t, store.SetVotingPower(&models.VotingPower{
		Principal:       "bob",
		Power:           60,
		UpdatedSequence: 2,
	}, nil))

	alice, err := store.GetVotingPower("alice", nil)
	require.NoError(t, err)
	require.NotNil(t, alice)
	assert.Equal(t, uint64(40), alice.Power)

	powers, err := store.GetVotingPowers(nil)
	require.NoError(t, err)
	require.Len(t, powers, 2)
	assert.Equal(t, "alice", powers[0].Principal)
	assert.Equal(t, "bob", powers[1].Principal)
}

func TestEffectOutbox(t *testing.T) {
	store := setupTestStore(t)

	require.NoError(t, store.AddEffect(&models.Effect{
		ProposalID: 0,
		Target:     "bob",
		Amount:     50,
	}, nil))
	require.NoError(t, store.AddEffect(&models.Effect{
		ProposalID: 2,
		Target:     "carol",
		Amount:     5,
	}, nil))

	pending, err := store.GetEffects(true, nil)
	require.NoError(t, err)
	assert.Len(t, pending, 2)

	require.NoError(t, store.SetEffectSettled(0, 100, nil))
	// Settling again keeps the first time
	require.NoError(t, store.SetEffectSettled(0, 200, nil))

	effect, err := store.GetEffect(0, nil)
	require.NoError(t, err)
	require.NotNil(t, effect.SettledNanos)
	assert.Equal(t, int64(100), *effect.SettledNanos)

	pending, err = store.GetEffects(true, nil)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, uint64(2), pending[0].ProposalID)

	all, err := store.GetEffects(false, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	require.ErrorIs(t, store.SetEffectSettled(9, 100, nil), models.ErrEffectNotFound)
	_, err = store.GetEffect(9, nil)
	require.ErrorIs(t, err, models.ErrEffectNotFound)
}

func TestTransactionRollback(t *testing.T) {
	store := setupTestStore(t)

	txn := store.Transaction()
	require.NoError(t, store.SetVotingPower(&models.VotingPower{
		Principal: "alice",
		Power:     100,
	}, txn))
	require.NoError(t, store.SetCommitTimestamp(42, txn))
	require.NoError(t, txn.Rollback())

	power, err := store.GetVotingPower("alice", nil)
	require.NoError(t, err)
	assert.Nil(t, power)
	ts, err := store.GetCommitTimestamp()
	require.NoError(t, err)
	assert.Equal(t, int64(0), ts)

	txn = store.Transaction()
	require.NoError(t, store.SetCommitTimestamp(42, txn))
	require.NoError(t, txn.Commit())
	ts, err = store.GetCommitTimestamp()
	require.NoError(t, err)
	assert.Equal(t, int64(42), ts)
}

type otherTxn struct{}

func (otherTxn) Commit() error   { return nil }
func (otherTxn) Rollback() error { return nil }

func TestResolveDBWrongTxnType(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.GetProposals(otherTxn{})
	require.ErrorIs(t, err, types.ErrTxnWrongType)
}
