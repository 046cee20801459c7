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

package metadata

import (
	"fmt"

	"github.com/blinklabs-io/agora/database/models"
	"github.com/blinklabs-io/agora/database/plugin"
	"github.com/blinklabs-io/agora/database/types"
	"gorm.io/gorm"
)

type MetadataStore interface {
	plugin.Plugin

	// Database
	Close() error
	DB() *gorm.DB
	GetCommitTimestamp() (int64, error)
	SetCommitTimestamp(int64, types.Txn) error
	Transaction() types.Txn

	// Governance state
	GetGovernanceState(types.Txn) (*models.GovernanceState, error)
	SetGovernanceState(*models.GovernanceState, types.Txn) error

	GetProposal(
		uint64, // proposalID
		types.Txn,
	) (*models.Proposal, error)
	GetProposals(types.Txn) ([]models.Proposal, error)
	SetProposal(*models.Proposal, types.Txn) error

	GetVote(
		uint64, // proposalID
		string, // voter
		types.Txn,
	) (*models.Vote, error)
	GetVotes(types.Txn) ([]models.Vote, error)
	GetVotesByProposal(
		uint64, // proposalID
		types.Txn,
	) ([]models.Vote, error)
	AddVote(*models.Vote, types.Txn) error

	GetVotingPower(
		string, // principal
		types.Txn,
	) (*models.VotingPower, error)
	GetVotingPowers(types.Txn) ([]models.VotingPower, error)
	SetVotingPower(*models.VotingPower, types.Txn) error

	// Effect outbox
	GetEffect(
		uint64, // proposalID
		types.Txn,
	) (*models.Effect, error)
	GetEffects(
		bool, // pendingOnly
		types.Txn,
	) ([]models.Effect, error)
	AddEffect(*models.Effect, types.Txn) error
	SetEffectSettled(
		uint64, // proposalID
		int64, // settledNanos
		types.Txn,
	) error
}

// New returns the started metadata plugin selected by name
func New(
	pluginName string,
	opts plugin.RuntimeOptions,
) (MetadataStore, error) {
	p, err := plugin.StartPlugin(plugin.PluginTypeMetadata, pluginName, opts)
	if err != nil {
		return nil, err
	}
	metadataStore, ok := p.(MetadataStore)
	if !ok {
		_ = p.Stop()
		return nil, fmt.Errorf(
			"plugin '%s' does not implement MetadataStore interface",
			pluginName,
		)
	}
	return metadataStore, nil
}
