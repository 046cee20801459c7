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
	"sync"
	"time"

	"github.com/blinklabs-io/agora/database/plugin"
)

const (
	DefaultVacuumIntervalHours = 24
	DefaultBusyTimeoutMillis   = 5000
)

type storeOptions struct {
	dataDir             string
	vacuumIntervalHours uint64
	busyTimeoutMillis   uint64
}

var (
	cmdlineOptions      storeOptions
	cmdlineOptionsMutex sync.RWMutex
)

// initCmdlineOptions sets default values for cmdlineOptions
func initCmdlineOptions() {
	cmdlineOptionsMutex.Lock()
	defer cmdlineOptionsMutex.Unlock()
	cmdlineOptions = storeOptions{
		dataDir:             ".agora",
		vacuumIntervalHours: DefaultVacuumIntervalHours,
		busyTimeoutMillis:   DefaultBusyTimeoutMillis,
	}
}

// Register plugin
func init() {
	initCmdlineOptions()
	plugin.Register(
		plugin.PluginEntry{
			Type:               plugin.PluginTypeMetadata,
			Name:               "sqlite",
			Description:        "SQLite store for proposals, votes, voting power and the effect outbox",
			NewFromOptionsFunc: NewFromCmdlineOptions,
			Options: []plugin.PluginOption{
				{
					Name:         "data-dir",
					Type:         plugin.PluginOptionTypeString,
					Description:  "Data directory for the governance database",
					DefaultValue: ".agora",
					Dest:         &(cmdlineOptions.dataDir),
				},
				{
					Name:         "vacuum-interval",
					Type:         plugin.PluginOptionTypeUint,
					Description:  "Hours between VACUUM runs, 0 disables",
					DefaultValue: uint64(DefaultVacuumIntervalHours),
					Dest:         &(cmdlineOptions.vacuumIntervalHours),
				},
				{
					Name:         "busy-timeout",
					Type:         plugin.PluginOptionTypeUint,
					Description:  "Milliseconds a request waits on a locked database",
					DefaultValue: uint64(DefaultBusyTimeoutMillis),
					Dest:         &(cmdlineOptions.busyTimeoutMillis),
				},
			},
		},
	)
}

func (o storeOptions) optionFuncs(rtOpts plugin.RuntimeOptions) []SqliteOptionFunc {
	//nolint:gosec // configured durations stay far below MaxInt64
	return []SqliteOptionFunc{
		WithDataDir(o.dataDir),
		WithLogger(rtOpts.Logger),
		WithPromRegistry(rtOpts.PromRegistry),
		WithVacuumInterval(time.Duration(o.vacuumIntervalHours) * time.Hour),
		WithBusyTimeout(time.Duration(o.busyTimeoutMillis) * time.Millisecond),
	}
}

func NewFromCmdlineOptions(rtOpts plugin.RuntimeOptions) plugin.Plugin {
	cmdlineOptionsMutex.RLock()
	opts := cmdlineOptions
	cmdlineOptionsMutex.RUnlock()

	p, err := NewWithOptions(opts.optionFuncs(rtOpts)...)
	if err != nil {
		if p != nil {
			_ = p.Close()
		}
		// Return a plugin that defers the error to Start()
		return plugin.NewErrorPlugin(err)
	}
	return p
}
