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

// Package ledger runs the governance state machine against persistent
// storage. Every accepted request is journaled and written to the metadata
// store in one transaction before it becomes visible in memory.
package ledger

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"

	"github.com/blinklabs-io/agora/database"
	"github.com/blinklabs-io/agora/database/models"
	"github.com/blinklabs-io/agora/event"
	"github.com/blinklabs-io/agora/governance"
	"github.com/prometheus/client_golang/prometheus"
)

// Genesis is the initial configuration used when the database is empty
type Genesis struct {
	Params      governance.Params
	VotingPower map[governance.Principal]uint64
}

type LedgerStateConfig struct {
	Logger       *slog.Logger
	Database     *database.Database
	EventBus     *event.EventBus
	PromRegistry prometheus.Registerer
	Genesis      Genesis
}

type LedgerState struct {
	sync.RWMutex
	config       LedgerStateConfig
	db           *database.Database
	state        *governance.State
	lastSequence uint64
	metrics      stateMetrics
	// set when a journaled request could not be applied to the metadata
	// store
	recoveryPending bool
}

func NewLedgerState(cfg LedgerStateConfig) (*LedgerState, error) {
	if cfg.Database == nil {
		return nil, errors.New("ledger: no database configured")
	}
	if cfg.Logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		cfg.Logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if cfg.PromRegistry == nil {
		cfg.PromRegistry = prometheus.NewRegistry()
	}
	ls := &LedgerState{
		config: cfg,
		db:     cfg.Database,
	}
	ls.metrics.init(cfg.PromRegistry)
	if err := ls.load(); err != nil {
		return nil, err
	}
	if err := ls.recover(); err != nil {
		return nil, fmt.Errorf("recover governance state: %w", err)
	}
	if err := ls.initGauges(); err != nil {
		return nil, err
	}
	return ls, nil
}

func (ls *LedgerState) load() error {
	gs, err := ls.db.GetGovernanceState(nil)
	if err != nil {
		return err
	}
	if gs == nil {
		return ls.initGenesis()
	}
	params := paramsFromModel(gs)
	if params != ls.config.Genesis.Params {
		ls.config.Logger.Warn(
			"stored governance parameters differ from configuration, using stored values",
			"component", "ledger",
			"quorum", params.Quorum,
			"voting_period", params.VotingPeriod.String(),
			"configured_quorum", ls.config.Genesis.Params.Quorum,
			"configured_voting_period", ls.config.Genesis.Params.VotingPeriod.String(),
		)
	}
	proposalModels, err := ls.db.GetProposals(nil)
	if err != nil {
		return err
	}
	proposals := make([]governance.Proposal, 0, len(proposalModels))
	for _, m := range proposalModels {
		proposals = append(proposals, proposalFromModel(m))
	}
	voteModels, err := ls.db.GetVotes(nil)
	if err != nil {
		return err
	}
	votes := make([]governance.VoteRecord, 0, len(voteModels))
	for _, m := range voteModels {
		votes = append(votes, voteFromModel(m))
	}
	powerModels, err := ls.db.GetVotingPowers(nil)
	if err != nil {
		return err
	}
	power := make(map[governance.Principal]uint64, len(powerModels))
	for _, m := range powerModels {
		power[governance.Principal(m.Principal)] = m.Power
	}
	state, err := governance.RestoreState(
		params,
		governance.ProposalID(gs.NextProposalID),
		proposals,
		votes,
		power,
	)
	if err != nil {
		return fmt.Errorf("restore governance state: %w", err)
	}
	ls.state = state
	ls.lastSequence = gs.LastSequence
	ls.config.Logger.Info(
		"loaded governance state",
		"component", "ledger",
		"proposals", len(proposals),
		"votes", len(votes),
		"principals", len(power),
		"sequence", ls.lastSequence,
	)
	return nil
}

func (ls *LedgerState) initGenesis() error {
	genesis := ls.config.Genesis
	if genesis.Params.VotingPeriod < 0 {
		return fmt.Errorf(
			"invalid genesis voting period %s",
			genesis.Params.VotingPeriod,
		)
	}
	if genesis.Params.Quorum > governance.MaxAmount {
		return fmt.Errorf(
			"invalid genesis quorum %d: exceeds %d",
			genesis.Params.Quorum,
			governance.MaxAmount,
		)
	}
	state, err := governance.NewGenesisState(genesis.Params, genesis.VotingPower)
	if err != nil {
		return err
	}
	powers := state.VotingPowers()
	principals := make([]governance.Principal, 0, len(powers))
	for p := range powers {
		principals = append(principals, p)
	}
	sort.Slice(principals, func(i, j int) bool {
		return principals[i] < principals[j]
	})
	txn := ls.db.Transaction(true)
	err = txn.Do(func(txn *database.Txn) error {
		for _, p := range principals {
			if err := ls.db.SetVotingPower(
				&models.VotingPower{
					Principal: string(p),
					Power:     powers[p],
				},
				txn,
			); err != nil {
				return err
			}
		}
		return ls.db.SetGovernanceState(
			&models.GovernanceState{
				Quorum:            genesis.Params.Quorum,
				VotingPeriodNanos: int64(genesis.Params.VotingPeriod),
			},
			txn,
		)
	})
	if err != nil {
		return fmt.Errorf("initialize governance state: %w", err)
	}
	ls.state = state
	ls.lastSequence = 0
	ls.config.Logger.Info(
		"initialized governance state from genesis",
		"component", "ledger",
		"quorum", genesis.Params.Quorum,
		"voting_period", genesis.Params.VotingPeriod.String(),
		"principals", len(principals),
		"total_voting_power", state.TotalVotingPower(),
	)
	return nil
}

func (ls *LedgerState) initGauges() error {
	pending, err := ls.db.GetEffects(true, nil)
	if err != nil {
		return err
	}
	ls.metrics.pendingEffects.Set(float64(len(pending)))
	ls.updateGauges()
	return nil
}

// updateGauges refreshes gauges derived from the in-memory state. The
// caller must hold the lock or be the only user of ls.
func (ls *LedgerState) updateGauges() {
	ls.metrics.proposals.Set(float64(ls.state.NextProposalID()))
	ls.metrics.totalVotingPower.Set(float64(ls.state.TotalVotingPower()))
	ls.metrics.journalSequence.Set(float64(ls.lastSequence))
}
