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

package integration_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/blinklabs-io/agora"
	"github.com/blinklabs-io/agora/database/plugin"
	"github.com/blinklabs-io/agora/governance"
	"github.com/blinklabs-io/agora/internal/test/testutil"
	"github.com/blinklabs-io/agora/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func at(seconds int64) time.Time {
	return epoch.Add(time.Duration(seconds) * time.Second)
}

func startNode(t *testing.T, dataDir string, genesis ledger.Genesis) *agora.Node {
	t.Helper()
	n, err := agora.New(agora.NewConfig(
		agora.WithDatabasePath(dataDir),
		agora.WithGenesis(genesis),
	))
	require.NoError(t, err)
	require.NoError(t, n.Start(context.Background()))
	return n
}

func scenarioGenesis() ledger.Genesis {
	return ledger.Genesis{
		Params: governance.Params{
			Quorum:       100,
			VotingPeriod: 1000 * time.Second,
		},
		VotingPower: map[governance.Principal]uint64{
			"alice": 150,
			"bob":   0,
		},
	}
}

func TestPluginSystemIntegration(t *testing.T) {
	blobPlugins := plugin.GetPlugins(plugin.PluginTypeBlob)
	require.NotEmpty(t, blobPlugins, "no blob plugins registered")
	metadataPlugins := plugin.GetPlugins(plugin.PluginTypeMetadata)
	require.NotEmpty(t, metadataPlugins, "no metadata plugins registered")
	for _, p := range append(blobPlugins, metadataPlugins...) {
		assert.NotEmpty(t, p.Description, "plugin %q has empty description", p.Name)
	}

	// Keep the lifecycle check in memory
	require.NoError(t, plugin.SetPluginOption(plugin.PluginTypeBlob, "badger", "data-dir", ""))
	require.NoError(t, plugin.SetPluginOption(plugin.PluginTypeMetadata, "sqlite", "data-dir", ""))

	badgerPlugin := plugin.GetPlugin(plugin.PluginTypeBlob, "badger", plugin.RuntimeOptions{})
	require.NotNil(t, badgerPlugin, "badger plugin not found")
	sqlitePlugin := plugin.GetPlugin(plugin.PluginTypeMetadata, "sqlite", plugin.RuntimeOptions{})
	require.NotNil(t, sqlitePlugin, "sqlite plugin not found")

	require.NoError(t, badgerPlugin.Start())
	require.NoError(t, sqlitePlugin.Start())
	require.NoError(t, badgerPlugin.Stop())
	require.NoError(t, sqlitePlugin.Stop())

	assert.Nil(t, plugin.GetPlugin(plugin.PluginTypeBlob, "missing", plugin.RuntimeOptions{}))
}

// TestGovernanceScenario runs the full proposal lifecycle against on-disk
// storage, restarting the node between voting and execution
func TestGovernanceScenario(t *testing.T) {
	ctx := context.Background()
	dataDir := t.TempDir()

	n := startNode(t, dataDir, scenarioGenesis())
	ls := n.Ledger()
	id, err := ls.CreateProposal(ctx, "pay bob", "bob", 50, "alice", at(0))
	require.NoError(t, err)
	assert.Equal(t, governance.ProposalID(0), id)

	// bob has no power yet
	require.ErrorIs(t, ls.Vote(ctx, id, governance.BallotAgainst, "bob", at(1)), governance.ErrNoVotingPower)
	require.NoError(t, ls.Vote(ctx, id, governance.BallotFor, "alice", at(2)))
	require.ErrorIs(t, ls.Vote(ctx, id, governance.BallotFor, "alice", at(3)), governance.ErrAlreadyVoted)
	// Delegation does not change tallies already cast
	require.NoError(t, ls.Delegate(ctx, "bob", 100, "alice", at(4)))
	require.NoError(t, ls.Vote(ctx, id, governance.BallotAgainst, "bob", at(1000)))
	require.ErrorIs(t, ls.Vote(ctx, 99, governance.BallotFor, "carol", at(5)), governance.ErrNoVotingPower)
	_, err = ls.Execute(ctx, id, "carol", at(1000))
	require.ErrorIs(t, err, governance.ErrVotingNotEnded)
	require.NoError(t, n.Stop(ctx))

	n = startNode(t, dataDir, scenarioGenesis())
	defer n.Stop(ctx) //nolint:errcheck
	ls = n.Ledger()
	_, executedCh := n.EventBus().Subscribe(ledger.ProposalExecutedEventType)

	p, err := ls.Proposal(id)
	require.NoError(t, err)
	assert.Equal(t, uint64(150), p.VotesFor)
	assert.Equal(t, uint64(100), p.VotesAgainst)
	assert.Equal(t, uint64(150), ls.TotalVotingPower())

	require.ErrorIs(t, ls.Vote(ctx, id, governance.BallotFor, "bob", at(1001)), governance.ErrAlreadyVoted)
	effect, err := ls.Execute(ctx, id, "carol", at(1001))
	require.NoError(t, err)
	assert.Equal(t, governance.Effect{ProposalID: id, Target: "bob", Amount: 50}, effect)
	_, err = ls.Execute(ctx, id, "carol", at(1002))
	require.ErrorIs(t, err, governance.ErrAlreadyExecuted)

	evt := testutil.RequireReceive(t, executedCh, 2*time.Second, "proposal executed event")
	executed, ok := evt.Data.(ledger.ProposalExecutedEvent)
	require.True(t, ok)
	assert.Equal(t, effect, executed.Effect)

	pending, err := ls.PendingEffects(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, effect.ID(), pending[0].ID())
	require.NoError(t, ls.SettleEffect(ctx, id, at(1100)))
	pending, err = ls.PendingEffects(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestRejectedAndQuorumScenarios(t *testing.T) {
	ctx := context.Background()
	genesis := scenarioGenesis()
	genesis.VotingPower["bob"] = 200
	genesis.VotingPower["carol"] = 50
	n := startNode(t, "", genesis)
	defer n.Stop(ctx) //nolint:errcheck
	ls := n.Ledger()

	rejected, err := ls.CreateProposal(ctx, "rejected", "dave", 1, "alice", at(0))
	require.NoError(t, err)
	require.NoError(t, ls.Vote(ctx, rejected, governance.BallotFor, "alice", at(1)))
	require.NoError(t, ls.Vote(ctx, rejected, governance.BallotAgainst, "bob", at(1)))

	noQuorum, err := ls.CreateProposal(ctx, "no quorum", "dave", 1, "carol", at(0))
	require.NoError(t, err)
	require.NoError(t, ls.Vote(ctx, noQuorum, governance.BallotFor, "carol", at(1)))

	_, err = ls.Execute(ctx, rejected, "dave", at(1001))
	require.ErrorIs(t, err, governance.ErrProposalRejected)
	_, err = ls.Execute(ctx, noQuorum, "dave", at(1001))
	require.ErrorIs(t, err, governance.ErrQuorumNotReached)

	// Failed executions leave nothing behind
	effects, err := ls.Effects(ctx)
	require.NoError(t, err)
	assert.Empty(t, effects)
	assert.Equal(t, uint64(5), ls.LastSequence())
}

func TestConcurrentVoters(t *testing.T) {
	ctx := context.Background()
	const voters = 32
	genesis := ledger.Genesis{
		Params:      governance.Params{Quorum: voters, VotingPeriod: time.Hour},
		VotingPower: make(map[governance.Principal]uint64, voters),
	}
	for i := range voters {
		genesis.VotingPower[governance.Principal(fmt.Sprintf("voter-%02d", i))] = 1
	}
	dataDir := t.TempDir()
	n := startNode(t, dataDir, genesis)
	ls := n.Ledger()
	id, err := ls.CreateProposal(ctx, "concurrent", "pool", 1, "voter-00", at(0))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := range voters {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			voter := governance.Principal(fmt.Sprintf("voter-%02d", i))
			assert.NoError(t, ls.Vote(ctx, id, governance.BallotFor, voter, at(1)))
		}(i)
	}
	wg.Wait()
	require.NoError(t, n.Stop(ctx))

	n = startNode(t, dataDir, genesis)
	defer n.Stop(ctx) //nolint:errcheck
	p, err := n.Ledger().Proposal(id)
	require.NoError(t, err)
	assert.Equal(t, uint64(voters), p.VotesFor)
	assert.Len(t, n.Ledger().Votes(id), voters)
	assert.Equal(t, uint64(voters+1), n.Ledger().LastSequence())
}
