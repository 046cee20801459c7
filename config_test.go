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

package agora

import (
	"log/slog"
	"testing"
	"time"

	"github.com/blinklabs-io/agora/governance"
	"github.com/blinklabs-io/agora/ledger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigDefaults(t *testing.T) {
	cfg := NewConfig()
	require.NotNil(t, cfg.logger)
	assert.Empty(t, cfg.dataDir)
	assert.False(t, cfg.tracing)
	assert.Nil(t, cfg.promRegistry)
}

func TestConfigOptions(t *testing.T) {
	logger := slog.Default()
	reg := prometheus.NewRegistry()
	genesis := ledger.Genesis{
		Params: governance.Params{Quorum: 3, VotingPeriod: time.Hour},
	}
	cfg := NewConfig(
		WithDatabasePath("/tmp/agora"),
		WithBlobPlugin("badger"),
		WithMetadataPlugin("sqlite"),
		WithGenesis(genesis),
		WithLogger(logger),
		WithPrometheusRegistry(reg),
		WithTracing(true),
		WithTracingStdout(true),
	)
	assert.Equal(t, "/tmp/agora", cfg.dataDir)
	assert.Equal(t, "badger", cfg.blobPlugin)
	assert.Equal(t, "sqlite", cfg.metadataPlugin)
	assert.Equal(t, genesis, cfg.genesis)
	assert.Same(t, logger, cfg.logger)
	assert.Equal(t, reg, cfg.promRegistry)
	assert.True(t, cfg.tracing)
	assert.True(t, cfg.tracingStdout)
}

func TestConfigValidate(t *testing.T) {
	_, err := New(NewConfig(WithGenesis(ledger.Genesis{
		Params: governance.Params{VotingPeriod: -time.Second},
	})))
	require.Error(t, err)

	_, err = New(NewConfig(WithGenesis(ledger.Genesis{
		Params:      governance.Params{VotingPeriod: time.Second},
		VotingPower: map[governance.Principal]uint64{"": 1},
	})))
	require.Error(t, err)

	_, err = New(NewConfig(WithGenesis(ledger.Genesis{
		Params: governance.Params{
			Quorum:       governance.MaxAmount + 1,
			VotingPeriod: time.Second,
		},
	})))
	require.ErrorContains(t, err, "quorum")
}
