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

package database

import (
	"fmt"

	"github.com/blinklabs-io/agora/database/models"
	"github.com/blinklabs-io/agora/database/types"
)

// metadataTxn returns the metadata handle of txn, or nil so that the store
// reads outside of any transaction
func metadataTxn(txn *Txn) types.Txn {
	if txn == nil {
		return nil
	}
	return txn.Metadata()
}

// updateMetadata runs fn within txn, or within its own metadata
// transaction when txn is nil
func (d *Database) updateMetadata(
	txn *Txn,
	fn func(types.Txn) error,
) error {
	owned := false
	if txn == nil {
		txn = d.MetadataTxn(true)
		owned = true
		defer func() {
			if owned {
				txn.Rollback() //nolint:errcheck
			}
		}()
	}
	if err := fn(txn.Metadata()); err != nil {
		return err
	}
	if owned {
		if err := txn.Commit(); err != nil {
			return fmt.Errorf("commit transaction: %w", err)
		}
		owned = false
	}
	return nil
}

// GetGovernanceState returns the governance state row, or nil if the
// database has not been initialized yet
func (d *Database) GetGovernanceState(
	txn *Txn,
) (*models.GovernanceState, error) {
	ret, err := d.metadata.GetGovernanceState(metadataTxn(txn))
	if err != nil {
		return nil, fmt.Errorf("failed to get governance state: %w", err)
	}
	return ret, nil
}

func (d *Database) SetGovernanceState(
	state *models.GovernanceState,
	txn *Txn,
) error {
	return d.updateMetadata(txn, func(mtxn types.Txn) error {
		return d.metadata.SetGovernanceState(state, mtxn)
	})
}

// GetProposal returns a proposal by id. A missing proposal yields
// models.ErrProposalNotFound.
func (d *Database) GetProposal(
	proposalID uint64,
	txn *Txn,
) (*models.Proposal, error) {
	ret, err := d.metadata.GetProposal(proposalID, metadataTxn(txn))
	if err != nil {
		return nil, fmt.Errorf("failed to get proposal %d: %w", proposalID, err)
	}
	return ret, nil
}

func (d *Database) GetProposals(txn *Txn) ([]models.Proposal, error) {
	ret, err := d.metadata.GetProposals(metadataTxn(txn))
	if err != nil {
		return nil, fmt.Errorf("failed to get proposals: %w", err)
	}
	return ret, nil
}

func (d *Database) SetProposal(proposal *models.Proposal, txn *Txn) error {
	return d.updateMetadata(txn, func(mtxn types.Txn) error {
		return d.metadata.SetProposal(proposal, mtxn)
	})
}

// GetVote returns the vote of voter on a proposal, or nil
func (d *Database) GetVote(
	proposalID uint64,
	voter string,
	txn *Txn,
) (*models.Vote, error) {
	ret, err := d.metadata.GetVote(proposalID, voter, metadataTxn(txn))
	if err != nil {
		return nil, fmt.Errorf(
			"failed to get vote of %s on proposal %d: %w",
			voter,
			proposalID,
			err,
		)
	}
	return ret, nil
}

func (d *Database) GetVotes(txn *Txn) ([]models.Vote, error) {
	ret, err := d.metadata.GetVotes(metadataTxn(txn))
	if err != nil {
		return nil, fmt.Errorf("failed to get votes: %w", err)
	}
	return ret, nil
}

func (d *Database) GetVotesByProposal(
	proposalID uint64,
	txn *Txn,
) ([]models.Vote, error) {
	ret, err := d.metadata.GetVotesByProposal(proposalID, metadataTxn(txn))
	if err != nil {
		return nil, fmt.Errorf(
			"failed to get votes for proposal %d: %w",
			proposalID,
			err,
		)
	}
	return ret, nil
}

func (d *Database) AddVote(vote *models.Vote, txn *Txn) error {
	return d.updateMetadata(txn, func(mtxn types.Txn) error {
		return d.metadata.AddVote(vote, mtxn)
	})
}

// GetVotingPower returns the power row of a principal, or nil
func (d *Database) GetVotingPower(
	principal string,
	txn *Txn,
) (*models.VotingPower, error) {
	ret, err := d.metadata.GetVotingPower(principal, metadataTxn(txn))
	if err != nil {
		return nil, fmt.Errorf(
			"failed to get voting power of %s: %w",
			principal,
			err,
		)
	}
	return ret, nil
}

func (d *Database) GetVotingPowers(txn *Txn) ([]models.VotingPower, error) {
	ret, err := d.metadata.GetVotingPowers(metadataTxn(txn))
	if err != nil {
		return nil, fmt.Errorf("failed to get voting powers: %w", err)
	}
	return ret, nil
}

func (d *Database) SetVotingPower(power *models.VotingPower, txn *Txn) error {
	return d.updateMetadata(txn, func(mtxn types.Txn) error {
		return d.metadata.SetVotingPower(power, mtxn)
	})
}

// GetEffect returns the outbox record of an executed proposal. A missing
// record yields models.ErrEffectNotFound.
func (d *Database) GetEffect(
	proposalID uint64,
	txn *Txn,
) (*models.Effect, error) {
	ret, err := d.metadata.GetEffect(proposalID, metadataTxn(txn))
	if err != nil {
		return nil, fmt.Errorf(
			"failed to get effect for proposal %d: %w",
			proposalID,
			err,
		)
	}
	return ret, nil
}

func (d *Database) GetEffects(
	pendingOnly bool,
	txn *Txn,
) ([]models.Effect, error) {
	ret, err := d.metadata.GetEffects(pendingOnly, metadataTxn(txn))
	if err != nil {
		return nil, fmt.Errorf("failed to get effects: %w", err)
	}
	return ret, nil
}

func (d *Database) AddEffect(effect *models.Effect, txn *Txn) error {
	return d.updateMetadata(txn, func(mtxn types.Txn) error {
		return d.metadata.AddEffect(effect, mtxn)
	})
}

// SettleEffect marks the outbox record of a proposal settled
func (d *Database) SettleEffect(
	proposalID uint64,
	settledNanos int64,
	txn *Txn,
) error {
	return d.updateMetadata(txn, func(mtxn types.Txn) error {
		return d.metadata.SetEffectSettled(proposalID, settledNanos, mtxn)
	})
}
