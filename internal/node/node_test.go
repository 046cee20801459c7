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

package node

import (
	"context"
	"testing"
	"time"

	"github.com/blinklabs-io/agora/governance"
	"github.com/blinklabs-io/agora/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(dataDir string) *config.Config {
	return &config.Config{
		DatabasePath:   dataDir,
		BlobPlugin:     config.DefaultBlobPlugin,
		MetadataPlugin: config.DefaultMetadataPlugin,
		Genesis: config.GenesisConfig{
			Quorum:       100,
			VotingPeriod: "1000s",
			VotingPower:  map[string]uint64{"alice": 150},
		},
	}
}

func TestNewStartsLedger(t *testing.T) {
	ctx := context.Background()
	n, err := New(ctx, testConfig(""), nil)
	require.NoError(t, err)
	defer n.Stop(ctx) //nolint:errcheck

	ls := n.Ledger()
	require.NotNil(t, ls)
	assert.Equal(t, uint64(150), ls.VotingPower("alice"))
	assert.Equal(t, governance.Params{Quorum: 100, VotingPeriod: 1000 * time.Second}, ls.Params())
}

func TestNewStateSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t.TempDir())
	n, err := New(ctx, cfg, nil)
	require.NoError(t, err)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	_, err = n.Ledger().CreateProposal(ctx, "fund", "bob", 10, "alice", now)
	require.NoError(t, err)
	require.NoError(t, n.Stop(ctx))

	// Genesis changes are ignored once the database is initialized
	cfg.Genesis.Quorum = 1
	n, err = New(ctx, cfg, nil)
	require.NoError(t, err)
	defer n.Stop(ctx) //nolint:errcheck
	assert.Equal(t, uint64(100), n.Ledger().Params().Quorum)
	assert.Len(t, n.Ledger().Proposals(), 1)
	assert.Equal(t, uint64(1), n.Ledger().LastSequence())
}

func TestNewInvalidGenesis(t *testing.T) {
	cfg := testConfig("")
	cfg.Genesis.VotingPeriod = "never"
	_, err := New(context.Background(), cfg, nil)
	require.Error(t, err)

	_, err = New(context.Background(), nil, nil)
	require.Error(t, err)
}
