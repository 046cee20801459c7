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

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/blinklabs-io/agora/governance"
	"github.com/blinklabs-io/agora/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	content := "databasePath: " + filepath.Join(dir, "db") + `
genesis:
  quorum: 100
  votingPeriod: "1000s"
  votingPower:
    alice: 150
    bob: 0
`
	path := filepath.Join(dir, "agora.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	rootCmd, err := newRootCommand()
	require.NoError(t, err)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(args)
	err = rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestParseNow(t *testing.T) {
	ts, err := parseNow("2026-01-01T00:00:10Z")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 10, 0, time.UTC), ts.UTC())

	ts, err = parseNow("1767225610")
	require.NoError(t, err)
	assert.Equal(t, int64(1767225610), ts.Unix())

	before := time.Now()
	ts, err = parseNow("")
	require.NoError(t, err)
	assert.False(t, ts.Before(before))

	_, err = parseNow("tomorrow")
	require.Error(t, err)
}

func TestProposalWorkflow(t *testing.T) {
	cfgFile := writeTestConfig(t)
	const start = "2026-01-01T00:00:00Z"

	out, err := runCommand(t, "propose",
		"--config", cfgFile,
		"--caller", "alice",
		"--now", start,
		"--description", "fund bob",
		"--target", "bob",
		"--amount", "10",
	)
	require.NoError(t, err)
	var created proposalView
	require.NoError(t, json.Unmarshal([]byte(out), &created))
	assert.Equal(t, governance.ProposalID(0), created.ID)
	assert.Equal(t, statusOpen, created.Status)
	assert.Equal(t, governance.Principal("alice"), created.Proposer)

	out, err = runCommand(t, "vote", "0", "for",
		"--config", cfgFile,
		"--caller", "alice",
		"--now", "2026-01-01T00:00:10Z",
	)
	require.NoError(t, err)
	var voted proposalView
	require.NoError(t, json.Unmarshal([]byte(out), &voted))
	assert.Equal(t, uint64(150), voted.VotesFor)

	_, err = runCommand(t, "vote", "0", "for",
		"--config", cfgFile,
		"--caller", "alice",
		"--now", "2026-01-01T00:00:20Z",
	)
	require.ErrorIs(t, err, governance.ErrAlreadyVoted)

	_, err = runCommand(t, "execute", "0",
		"--config", cfgFile,
		"--caller", "bob",
		"--now", "2026-01-01T00:00:30Z",
	)
	require.ErrorIs(t, err, governance.ErrVotingNotEnded)

	out, err = runCommand(t, "execute", "0",
		"--config", cfgFile,
		"--caller", "bob",
		"--now", "2026-01-01T00:20:00Z",
	)
	require.NoError(t, err)
	var effect effectView
	require.NoError(t, json.Unmarshal([]byte(out), &effect))
	assert.Equal(t, "transfer-0", effect.ID)
	assert.Equal(t, governance.Principal("bob"), effect.Target)
	assert.Equal(t, uint64(10), effect.Amount)

	out, err = runCommand(t, "effects", "--pending", "--config", cfgFile)
	require.NoError(t, err)
	var pending []effectView
	require.NoError(t, json.Unmarshal([]byte(out), &pending))
	require.Len(t, pending, 1)
	assert.Nil(t, pending[0].SettledAt)

	_, err = runCommand(t, "settle", "0",
		"--config", cfgFile,
		"--now", "2026-01-01T00:30:00Z",
	)
	require.NoError(t, err)

	out, err = runCommand(t, "effects", "--pending", "--config", cfgFile)
	require.NoError(t, err)
	pending = nil
	require.NoError(t, json.Unmarshal([]byte(out), &pending))
	assert.Empty(t, pending)

	out, err = runCommand(t, "votes", "0", "--config", cfgFile)
	require.NoError(t, err)
	var votes []voteView
	require.NoError(t, json.Unmarshal([]byte(out), &votes))
	require.Len(t, votes, 1)
	assert.Equal(t, "for", votes[0].Ballot)

	out, err = runCommand(t, "proposal", "0",
		"--config", cfgFile,
		"--now", "2026-01-01T00:30:00Z",
	)
	require.NoError(t, err)
	var shown proposalView
	require.NoError(t, json.Unmarshal([]byte(out), &shown))
	assert.Equal(t, statusExecuted, shown.Status)

	_, err = runCommand(t, "proposal", "7", "--config", cfgFile)
	require.ErrorIs(t, err, governance.ErrProposalNotFound)

	out, err = runCommand(t, "verify", "--config", cfgFile)
	require.NoError(t, err)
	var verified map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &verified))
	assert.Equal(t, true, verified["verified"])
	assert.InDelta(t, 1, verified["proposals"], 0)
}

func TestDelegateAndPower(t *testing.T) {
	cfgFile := writeTestConfig(t)

	_, err := runCommand(t, "delegate", "bob", "50",
		"--config", cfgFile,
		"--caller", "alice",
	)
	require.NoError(t, err)

	out, err := runCommand(t, "power", "--config", cfgFile)
	require.NoError(t, err)
	var powers map[string]uint64
	require.NoError(t, json.Unmarshal([]byte(out), &powers))
	assert.Equal(t, uint64(100), powers["alice"])
	assert.Equal(t, uint64(50), powers["bob"])

	_, err = runCommand(t, "delegate", "bob", "500",
		"--config", cfgFile,
		"--caller", "alice",
	)
	require.ErrorIs(t, err, governance.ErrInsufficientVotingPower)
}

func TestCallerRequired(t *testing.T) {
	cfgFile := writeTestConfig(t)
	_, err := runCommand(t, "vote", "0", "for", "--config", cfgFile)
	require.ErrorIs(t, err, errCallerRequired)
}

func TestPluginList(t *testing.T) {
	// Keep config lookup away from any real ~/.agora/agora.yaml
	t.Setenv("HOME", t.TempDir())
	out, err := runCommand(t, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "badger")
	assert.Contains(t, out, "sqlite")

	out, err = runCommand(t, "version", "--blob", "list")
	require.ErrorIs(t, err, config.ErrPluginListRequested)
	assert.Contains(t, out, "Available blob plugins:")
}
