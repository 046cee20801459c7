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

package badger

import (
	"sync"
	"time"

	"github.com/blinklabs-io/agora/database/plugin"
)

// Journal entries are small and only read back in bulk during recovery,
// so the caches stay well below badger's defaults
const (
	DefaultBlockCacheSize    = 16 << 20
	DefaultIndexCacheSize    = 8 << 20
	DefaultGcIntervalMinutes = 5
)

type journalOptions struct {
	dataDir           string
	blockCacheSize    uint64
	indexCacheSize    uint64
	gcIntervalMinutes uint64
	gcEnabled         bool
	syncWrites        bool
}

var (
	cmdlineOptions      journalOptions
	cmdlineOptionsMutex sync.RWMutex
)

func initCmdlineOptions() {
	cmdlineOptionsMutex.Lock()
	defer cmdlineOptionsMutex.Unlock()
	cmdlineOptions = journalOptions{
		dataDir:           ".agora",
		blockCacheSize:    DefaultBlockCacheSize,
		indexCacheSize:    DefaultIndexCacheSize,
		gcIntervalMinutes: DefaultGcIntervalMinutes,
		gcEnabled:         true,
		syncWrites:        true,
	}
}

func init() {
	initCmdlineOptions()
	plugin.Register(
		plugin.PluginEntry{
			Type:               plugin.PluginTypeBlob,
			Name:               "badger",
			Description:        "BadgerDB request journal",
			NewFromOptionsFunc: NewFromCmdlineOptions,
			Options: []plugin.PluginOption{
				{
					Name:         "data-dir",
					Type:         plugin.PluginOptionTypeString,
					Description:  "Data directory for the request journal",
					DefaultValue: ".agora",
					Dest:         &(cmdlineOptions.dataDir),
				},
				{
					Name:         "sync-writes",
					Type:         plugin.PluginOptionTypeBool,
					Description:  "Sync each journal commit to disk before the request is acknowledged",
					DefaultValue: true,
					Dest:         &(cmdlineOptions.syncWrites),
				},
				{
					Name:         "block-cache-size",
					Type:         plugin.PluginOptionTypeUint,
					Description:  "Journal block cache size in bytes",
					DefaultValue: uint64(DefaultBlockCacheSize),
					Dest:         &(cmdlineOptions.blockCacheSize),
				},
				{
					Name:         "index-cache-size",
					Type:         plugin.PluginOptionTypeUint,
					Description:  "Journal index cache size in bytes",
					DefaultValue: uint64(DefaultIndexCacheSize),
					Dest:         &(cmdlineOptions.indexCacheSize),
				},
				{
					Name:         "gc",
					Type:         plugin.PluginOptionTypeBool,
					Description:  "Reclaim value log space left by rewritten journal entries",
					DefaultValue: true,
					Dest:         &(cmdlineOptions.gcEnabled),
				},
				{
					Name:         "gc-interval",
					Type:         plugin.PluginOptionTypeUint,
					Description:  "Minutes between value log GC passes",
					DefaultValue: uint64(DefaultGcIntervalMinutes),
					Dest:         &(cmdlineOptions.gcIntervalMinutes),
				},
			},
		},
	)
}

// optionFuncs converts the journal settings into store options
func (o journalOptions) optionFuncs(
	rtOpts plugin.RuntimeOptions,
) []BlobStoreBadgerOptionFunc {
	return []BlobStoreBadgerOptionFunc{
		WithLogger(rtOpts.Logger),
		WithPromRegistry(rtOpts.PromRegistry),
		WithDataDir(o.dataDir),
		WithSyncWrites(o.syncWrites),
		WithBlockCacheSize(o.blockCacheSize),
		WithIndexCacheSize(o.indexCacheSize),
		WithGc(o.gcEnabled),
		WithGcInterval(
			time.Duration(o.gcIntervalMinutes) * time.Minute, //nolint:gosec // configured interval
		),
	}
}

func NewFromCmdlineOptions(rtOpts plugin.RuntimeOptions) plugin.Plugin {
	cmdlineOptionsMutex.RLock()
	opts := cmdlineOptions
	cmdlineOptionsMutex.RUnlock()
	p, err := New(opts.optionFuncs(rtOpts)...)
	if err != nil {
		// Return a plugin that defers the error to Start()
		return plugin.NewErrorPlugin(err)
	}
	return p
}
