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

// Package agora embeds the governance ledger together with its storage,
// event bus and tracing.
package agora

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/blinklabs-io/agora/database"
	"github.com/blinklabs-io/agora/event"
	"github.com/blinklabs-io/agora/ledger"
	"github.com/prometheus/client_golang/prometheus"
)

// traceWriter is where the stdout exporter writes. Command output goes to
// stdout, so spans are kept off it.
var traceWriter io.Writer = os.Stderr

type Node struct {
	eventBus      *event.EventBus
	db            *database.Database
	ledgerState   *ledger.LedgerState
	shutdownFuncs []func(context.Context) error
	config        Config
	shutdownOnce  sync.Once
	shutdownErr   error
}

func New(cfg Config) (*Node, error) {
	if cfg.logger == nil {
		cfg.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if cfg.promRegistry == nil {
		cfg.promRegistry = prometheus.NewRegistry()
	}
	n := &Node{
		config: cfg,
	}
	if err := n.configValidate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	n.eventBus = event.NewEventBus(cfg.promRegistry, cfg.logger)
	return n, nil
}

// Start opens the database, recovering from a partial commit if needed, and
// loads the ledger state on top of it. On error the node is shut down.
func (n *Node) Start(ctx context.Context) error {
	if err := n.start(ctx); err != nil {
		return errors.Join(err, n.Stop(ctx))
	}
	return nil
}

func (n *Node) start(ctx context.Context) error {
	// Configure tracing
	if n.config.tracing {
		if err := n.setupTracing(ctx); err != nil {
			return err
		}
	}
	// Load database
	db, err := database.New(&database.Config{
		DataDir:        n.config.dataDir,
		BlobPlugin:     n.config.blobPlugin,
		MetadataPlugin: n.config.metadataPlugin,
		Logger:         n.config.logger,
		PromRegistry:   n.config.promRegistry,
	})
	if db == nil {
		if err == nil {
			err = errors.New("empty database returned")
		}
		return fmt.Errorf("failed to open database: %w", err)
	}
	n.db = db
	if err != nil {
		var dbErr database.CommitTimestampError
		if !errors.As(err, &dbErr) {
			return fmt.Errorf("failed to open database: %w", err)
		}
		n.config.logger.Warn(
			"database initialization error, needs recovery",
			"error", err,
			"component", "node",
		)
	}
	// Load state
	state, err := ledger.NewLedgerState(
		ledger.LedgerStateConfig{
			Logger:       n.config.logger,
			Database:     n.db,
			EventBus:     n.eventBus,
			PromRegistry: n.config.promRegistry,
			Genesis:      n.config.genesis,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to load ledger state: %w", err)
	}
	n.ledgerState = state
	n.config.logger.Debug(
		"ledger state loaded",
		"sequence", state.LastSequence(),
		"data_dir", n.db.DataDir(),
		"component", "node",
	)
	return nil
}

// Ledger returns the governance ledger. It is nil until Start succeeds.
func (n *Node) Ledger() *ledger.LedgerState {
	return n.ledgerState
}

// EventBus returns the event bus the ledger publishes to
func (n *Node) EventBus() *event.EventBus {
	return n.eventBus
}

// Stop drains the event bus, closes the database and flushes traces. It is
// safe to call more than once.
func (n *Node) Stop(ctx context.Context) error {
	n.shutdownOnce.Do(func() {
		var err error
		n.config.logger.Debug("starting shutdown", "component", "node")
		if n.eventBus != nil {
			n.eventBus.Stop()
		}
		if n.db != nil {
			if closeErr := n.db.Close(); closeErr != nil {
				err = errors.Join(err, fmt.Errorf("database close: %w", closeErr))
			}
		}
		// Call registered shutdown functions
		for _, fn := range n.shutdownFuncs {
			if fnErr := fn(ctx); fnErr != nil {
				err = errors.Join(err, fmt.Errorf("shutdown function: %w", fnErr))
			}
		}
		n.shutdownFuncs = nil
		n.config.logger.Debug("shutdown complete", "component", "node")
		n.shutdownErr = err
	})
	return n.shutdownErr
}
