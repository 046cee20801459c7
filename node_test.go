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
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/blinklabs-io/agora/governance"
	"github.com/blinklabs-io/agora/internal/test/testutil"
	"github.com/blinklabs-io/agora/ledger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func testGenesis() ledger.Genesis {
	return ledger.Genesis{
		Params: governance.Params{
			Quorum:       100,
			VotingPeriod: 1000 * time.Second,
		},
		VotingPower: map[governance.Principal]uint64{"alice": 150},
	}
}

func TestNodeLifecycle(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()
	n, err := New(NewConfig(
		WithGenesis(testGenesis()),
		WithPrometheusRegistry(reg),
	))
	require.NoError(t, err)
	assert.Nil(t, n.Ledger())
	require.NoError(t, n.Start(ctx))

	_, created := n.EventBus().Subscribe(ledger.ProposalCreatedEventType)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	id, err := n.Ledger().CreateProposal(ctx, "fund", "bob", 10, "alice", now)
	require.NoError(t, err)

	evt := testutil.RequireReceive(t, created, time.Second, "proposal created event")
	payload, ok := evt.Data.(ledger.ProposalCreatedEvent)
	require.True(t, ok)
	assert.Equal(t, id, payload.ProposalID)

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, mf := range families {
		names = append(names, mf.GetName())
	}
	assert.Contains(t, names, "agora_event_published_total")

	require.NoError(t, n.Stop(ctx))
	// Second stop is a no-op
	require.NoError(t, n.Stop(ctx))
}

func TestNodeTracingStdout(t *testing.T) {
	origWriter := traceWriter
	origProvider := otel.GetTracerProvider()
	var buf bytes.Buffer
	traceWriter = &buf
	t.Cleanup(func() {
		traceWriter = origWriter
		otel.SetTracerProvider(origProvider)
	})

	ctx := context.Background()
	n, err := New(NewConfig(
		WithGenesis(testGenesis()),
		WithTracing(true),
		WithTracingStdout(true),
	))
	require.NoError(t, err)
	require.NoError(t, n.Start(ctx))
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	_, err = n.Ledger().CreateProposal(ctx, "fund", "bob", 10, "alice", now)
	require.NoError(t, err)
	// Shutting down the provider flushes the batcher
	require.NoError(t, n.Stop(ctx))
	assert.Contains(t, buf.String(), "ledger.Submit")
}

func TestNodeStartFailureStops(t *testing.T) {
	n, err := New(NewConfig(
		WithGenesis(testGenesis()),
		WithBlobPlugin("missing"),
	))
	require.NoError(t, err)
	require.Error(t, n.Start(context.Background()))
	assert.Nil(t, n.Ledger())
}
