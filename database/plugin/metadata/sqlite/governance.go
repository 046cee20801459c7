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
	"errors"
	"fmt"

	"github.com/blinklabs-io/agora/database/models"
	"github.com/blinklabs-io/agora/database/types"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GetGovernanceState returns the governance state row, or nil if the
// database has not been initialized
func (d *MetadataStoreSqlite) GetGovernanceState(
	txn types.Txn,
) (*models.GovernanceState, error) {
	var ret models.GovernanceState
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	if result := db.First(&ret, models.GovernanceStateID); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return &ret, nil
}

// SetGovernanceState creates or updates the governance state row
func (d *MetadataStoreSqlite) SetGovernanceState(
	state *models.GovernanceState,
	txn types.Txn,
) error {
	db, err := d.resolveDB(txn)
	if err != nil {
		return err
	}
	state.ID = models.GovernanceStateID
	onConflict := clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"quorum",
			"voting_period_nanos",
			"next_proposal_id",
			"last_sequence",
		}),
	}
	if result := db.Clauses(onConflict).Create(state); result.Error != nil {
		return fmt.Errorf("set governance state: %w", result.Error)
	}
	return nil
}

// GetProposal returns a proposal by its governance id
func (d *MetadataStoreSqlite) GetProposal(
	proposalID uint64,
	txn types.Txn,
) (*models.Proposal, error) {
	var ret models.Proposal
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	if result := db.Where("proposal_id = ?", proposalID).First(&ret); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, models.ErrProposalNotFound
		}
		return nil, result.Error
	}
	return &ret, nil
}

// GetProposals returns all proposals ordered by id
func (d *MetadataStoreSqlite) GetProposals(
	txn types.Txn,
) ([]models.Proposal, error) {
	var ret []models.Proposal
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	if result := db.Order("proposal_id").Find(&ret); result.Error != nil {
		return nil, result.Error
	}
	return ret, nil
}

// SetProposal creates or updates a proposal. The creating sequence is kept
// on update.
func (d *MetadataStoreSqlite) SetProposal(
	proposal *models.Proposal,
	txn types.Txn,
) error {
	db, err := d.resolveDB(txn)
	if err != nil {
		return err
	}
	updates := clause.AssignmentColumns([]string{
		"votes_for",
		"votes_against",
		"executed",
	})
	// Keep the executing sequence once set
	updates = append(updates, clause.Assignment{
		Column: clause.Column{Name: "executed_sequence"},
		Value: gorm.Expr(
			"COALESCE(excluded.executed_sequence, proposal.executed_sequence)",
		),
	})
	onConflict := clause.OnConflict{
		Columns:   []clause.Column{{Name: "proposal_id"}},
		DoUpdates: updates,
	}
	if result := db.Clauses(onConflict).Create(proposal); result.Error != nil {
		return fmt.Errorf("set proposal: %w", result.Error)
	}
	return nil
}

// GetVote returns the vote cast by voter on a proposal, or nil if there is
// none
func (d *MetadataStoreSqlite) GetVote(
	proposalID uint64,
	voter string,
	txn types.Txn,
) (*models.Vote, error) {
	var ret models.Vote
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	if result := db.Where(
		"proposal_id = ? AND voter = ?",
		proposalID,
		voter,
	).First(&ret); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return &ret, nil
}

func (d *MetadataStoreSqlite) GetVotes(txn types.Txn) ([]models.Vote, error) {
	var ret []models.Vote
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	if result := db.Order("proposal_id, voter").Find(&ret); result.Error != nil {
		return nil, result.Error
	}
	return ret, nil
}

func (d *MetadataStoreSqlite) GetVotesByProposal(
	proposalID uint64,
	txn types.Txn,
) ([]models.Vote, error) {
	var ret []models.Vote
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	if result := db.Where("proposal_id = ?", proposalID).
		Order("voter").
		Find(&ret); result.Error != nil {
		return nil, result.Error
	}
	return ret, nil
}

// AddVote records a vote. Votes are never updated, so a second vote by the
// same voter on the same proposal fails on the unique index.
func (d *MetadataStoreSqlite) AddVote(
	vote *models.Vote,
	txn types.Txn,
) error {
	db, err := d.resolveDB(txn)
	if err != nil {
		return err
	}
	if result := db.Create(vote); result.Error != nil {
		return fmt.Errorf("add vote: %w", result.Error)
	}
	return nil
}

// GetVotingPower returns the power row for a principal, or nil if the
// principal has never held power
func (d *MetadataStoreSqlite) GetVotingPower(
	principal string,
	txn types.Txn,
) (*models.VotingPower, error) {
	var ret models.VotingPower
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	if result := db.Where("principal = ?", principal).First(&ret); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return &ret, nil
}

func (d *MetadataStoreSqlite) GetVotingPowers(
	txn types.Txn,
) ([]models.VotingPower, error) {
	var ret []models.VotingPower
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	if result := db.Order("principal").Find(&ret); result.Error != nil {
		return nil, result.Error
	}
	return ret, nil
}

// SetVotingPower creates or updates the power held by a principal
func (d *MetadataStoreSqlite) SetVotingPower(
	power *models.VotingPower,
	txn types.Txn,
) error {
	db, err := d.resolveDB(txn)
	if err != nil {
		return err
	}
	onConflict := clause.OnConflict{
		Columns: []clause.Column{{Name: "principal"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"power",
			"updated_sequence",
		}),
	}
	if result := db.Clauses(onConflict).Create(power); result.Error != nil {
		return fmt.Errorf("set voting power: %w", result.Error)
	}
	return nil
}

// GetEffect returns the outbox record for an executed proposal
func (d *MetadataStoreSqlite) GetEffect(
	proposalID uint64,
	txn types.Txn,
) (*models.Effect, error) {
	var ret models.Effect
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	if result := db.Where("proposal_id = ?", proposalID).First(&ret); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, models.ErrEffectNotFound
		}
		return nil, result.Error
	}
	return &ret, nil
}

// GetEffects returns outbox records ordered by proposal id, optionally only
// those not yet settled
func (d *MetadataStoreSqlite) GetEffects(
	pendingOnly bool,
	txn types.Txn,
) ([]models.Effect, error) {
	var ret []models.Effect
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	query := db.Order("proposal_id")
	if pendingOnly {
		query = query.Where("settled_nanos IS NULL")
	}
	if result := query.Find(&ret); result.Error != nil {
		return nil, result.Error
	}
	return ret, nil
}

func (d *MetadataStoreSqlite) AddEffect(
	effect *models.Effect,
	txn types.Txn,
) error {
	db, err := d.resolveDB(txn)
	if err != nil {
		return err
	}
	if result := db.Create(effect); result.Error != nil {
		return fmt.Errorf("add effect: %w", result.Error)
	}
	return nil
}

// SetEffectSettled marks an outbox record settled. Settling an already
// settled record keeps the first settlement time.
func (d *MetadataStoreSqlite) SetEffectSettled(
	proposalID uint64,
	settledNanos int64,
	txn types.Txn,
) error {
	db, err := d.resolveDB(txn)
	if err != nil {
		return err
	}
	result := db.Model(&models.Effect{}).
		Where("proposal_id = ? AND settled_nanos IS NULL", proposalID).
		Update("settled_nanos", settledNanos)
	if result.Error != nil {
		return fmt.Errorf("settle effect: %w", result.Error)
	}
	if result.RowsAffected > 0 {
		return nil
	}
	// Nothing updated: either already settled or unknown
	var count int64
	if result := db.Model(&models.Effect{}).
		Where("proposal_id = ?", proposalID).
		Count(&count); result.Error != nil {
		return result.Error
	}
	if count == 0 {
		return models.ErrEffectNotFound
	}
	return nil
}
