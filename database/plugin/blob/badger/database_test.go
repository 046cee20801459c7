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
	"testing"
	"time"

	"github.com/blinklabs-io/agora/database/plugin"
	"github.com/blinklabs-io/agora/database/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) *BlobStoreBadger {
	t.Helper()
	store, err := New()
	require.NoError(t, err)
	require.NoError(t, store.Start())
	t.Cleanup(func() {
		store.Close() //nolint:errcheck
	})
	return store
}

func TestGetSetDelete(t *testing.T) {
	store := setupTestStore(t)

	txn := store.NewTransaction(true)
	require.NoError(t, store.Set(txn, []byte("k1"), []byte("v1")))
	require.NoError(t, txn.Commit())

	txn = store.NewTransaction(false)
	val, err := store.Get(txn, []byte("k1"))
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), val)
	_, err = store.Get(txn, []byte("missing"))
	require.ErrorIs(t, err, types.ErrBlobKeyNotFound)
	require.NoError(t, txn.Rollback())

	txn = store.NewTransaction(true)
	require.NoError(t, store.Delete(txn, []byte("k1")))
	require.NoError(t, txn.Commit())

	txn = store.NewTransaction(false)
	defer txn.Rollback() //nolint:errcheck
	_, err = store.Get(txn, []byte("k1"))
	require.ErrorIs(t, err, types.ErrBlobKeyNotFound)
}

func TestRollbackDiscardsWrites(t *testing.T) {
	store := setupTestStore(t)

	txn := store.NewTransaction(true)
	require.NoError(t, store.Set(txn, []byte("k1"), []byte("v1")))
	require.NoError(t, txn.Rollback())
	// Finished transactions are rejected
	require.Error(t, store.Set(txn, []byte("k2"), []byte("v2")))

	txn = store.NewTransaction(false)
	defer txn.Rollback() //nolint:errcheck
	_, err := store.Get(txn, []byte("k1"))
	require.ErrorIs(t, err, types.ErrBlobKeyNotFound)
}

func TestIteratorReverse(t *testing.T) {
	store := setupTestStore(t)

	txn := store.NewTransaction(true)
	for _, seq := range []uint64{1, 2, 3, 300} {
		require.NoError(t, store.Set(txn, types.JournalKey(seq), []byte{byte(seq)}))
	}
	require.NoError(t, store.Set(txn, []byte("other"), []byte("x")))
	require.NoError(t, txn.Commit())

	txn = store.NewTransaction(false)
	defer txn.Rollback() //nolint:errcheck
	it := store.NewIterator(txn, types.BlobIteratorOptions{
		Prefix:  []byte(types.JournalKeyPrefix),
		Reverse: true,
	})
	defer it.Close()
	var seqs []uint64
	for it.Seek(types.JournalKey(^uint64(0))); it.ValidForPrefix([]byte(types.JournalKeyPrefix)); it.Next() {
		seq, err := types.JournalKeySequence(it.Item().Key())
		require.NoError(t, err)
		seqs = append(seqs, seq)
	}
	require.NoError(t, it.Err())
	assert.Equal(t, []uint64{300, 3, 2, 1}, seqs)
}

func TestIteratorWrongTxn(t *testing.T) {
	store := setupTestStore(t)

	it := store.NewIterator(nil, types.BlobIteratorOptions{})
	defer it.Close()
	assert.False(t, it.Valid())
	require.ErrorIs(t, it.Err(), types.ErrNilTxn)
}

func TestCommitTimestamp(t *testing.T) {
	store := setupTestStore(t)

	ts, err := store.GetCommitTimestamp()
	require.NoError(t, err)
	assert.Equal(t, int64(0), ts)

	txn := store.NewTransaction(true)
	require.NoError(t, store.SetCommitTimestamp(1234567, txn))
	require.NoError(t, txn.Commit())

	ts, err = store.GetCommitTimestamp()
	require.NoError(t, err)
	assert.Equal(t, int64(1234567), ts)

	require.ErrorIs(t, store.SetCommitTimestamp(1, nil), types.ErrNilTxn)
}

func TestJournalOptions(t *testing.T) {
	opts := journalOptions{
		dataDir:           t.TempDir(),
		blockCacheSize:    DefaultBlockCacheSize,
		indexCacheSize:    DefaultIndexCacheSize,
		gcIntervalMinutes: 0,
		gcEnabled:         true,
		syncWrites:        false,
	}
	store, err := New(opts.optionFuncs(plugin.RuntimeOptions{})...)
	require.NoError(t, err)
	t.Cleanup(func() {
		store.Close() //nolint:errcheck
	})

	assert.False(t, store.DB().Opts().SyncWrites)
	assert.Equal(t, int64(DefaultBlockCacheSize), store.DB().Opts().BlockCacheSize)
	// A zero interval leaves GC off even when enabled
	assert.Nil(t, store.gcTicker)
}

func TestDefaultJournalOptions(t *testing.T) {
	store, err := New(WithDataDir(t.TempDir()))
	require.NoError(t, err)
	t.Cleanup(func() {
		store.Close() //nolint:errcheck
	})

	assert.True(t, store.DB().Opts().SyncWrites)
	assert.Equal(t, DefaultGcIntervalMinutes*time.Minute, store.gcInterval)
	assert.NotNil(t, store.gcTicker)
}
