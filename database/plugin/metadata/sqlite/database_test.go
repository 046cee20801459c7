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
	"testing"
	"time"

	"github.com/blinklabs-io/agora/database/plugin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreOptions(t *testing.T) {
	opts := storeOptions{
		dataDir:             t.TempDir(),
		vacuumIntervalHours: 0,
		busyTimeoutMillis:   1500,
	}
	store, err := NewWithOptions(opts.optionFuncs(plugin.RuntimeOptions{})...)
	require.NoError(t, err)
	t.Cleanup(func() {
		store.Close() //nolint:errcheck
	})

	assert.Equal(t, 1500*time.Millisecond, store.busyTimeout)
	var timeout int64
	require.NoError(t, store.DB().Raw("PRAGMA busy_timeout").Scan(&timeout).Error)
	assert.Equal(t, int64(1500), timeout)
	// A zero interval never schedules a vacuum
	assert.Nil(t, store.timerVacuum)
}

func TestDefaultStoreOptions(t *testing.T) {
	store, err := NewWithOptions(WithDataDir(t.TempDir()))
	require.NoError(t, err)
	t.Cleanup(func() {
		store.Close() //nolint:errcheck
	})
	assert.Equal(t, DefaultVacuumIntervalHours*time.Hour, store.vacuumInterval)
	assert.NotNil(t, store.timerVacuum)

	// In-memory stores have nothing to vacuum
	memStore := setupTestStore(t)
	assert.Nil(t, memStore.timerVacuum)
}

func TestSchemaModels(t *testing.T) {
	store := setupTestStore(t)
	for _, model := range schemaModels() {
		assert.True(t, store.DB().Migrator().HasTable(model), "%T", model)
	}
}
