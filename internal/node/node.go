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
	"errors"
	"fmt"
	"log/slog"

	"github.com/blinklabs-io/agora"
	"github.com/blinklabs-io/agora/internal/config"
)

// New builds a node from the loaded configuration and starts it. The
// caller owns the returned node and must Stop it.
func New(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
) (*agora.Node, error) {
	if cfg == nil {
		return nil, errors.New("no config provided")
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger.Debug(fmt.Sprintf("config: %+v", cfg), "component", "node")
	genesis, err := cfg.LedgerGenesis()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	n, err := agora.New(
		agora.NewConfig(
			agora.WithLogger(logger),
			agora.WithDatabasePath(cfg.DatabasePath),
			agora.WithBlobPlugin(cfg.BlobPlugin),
			agora.WithMetadataPlugin(cfg.MetadataPlugin),
			agora.WithGenesis(genesis),
			agora.WithTracing(cfg.Tracing),
			agora.WithTracingStdout(cfg.TracingStdout),
		),
	)
	if err != nil {
		return nil, err
	}
	if err := n.Start(ctx); err != nil {
		return nil, err
	}
	return n, nil
}
