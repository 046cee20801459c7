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

package database

import (
	"errors"
	"fmt"
	"math"

	"github.com/blinklabs-io/agora/database/types"
	"github.com/fxamacker/cbor/v2"
)

// JournalEntry is an accepted request as recorded in the blob store. The
// journal is the source used to rebuild the metadata store after a partial
// commit.
type JournalEntry struct {
	Sequence  uint64 `cbor:"1,keyasint"`
	RequestID string `cbor:"2,keyasint"`
	Type      uint8  `cbor:"3,keyasint"`
	Caller    string `cbor:"4,keyasint"`
	NowNanos  int64  `cbor:"5,keyasint"`
	// Operation parameters
	Description string `cbor:"6,keyasint,omitempty"`
	Target      string `cbor:"7,keyasint,omitempty"`
	Amount      uint64 `cbor:"8,keyasint,omitempty"`
	ProposalID  uint64 `cbor:"9,keyasint,omitempty"`
	Ballot      uint8  `cbor:"10,keyasint,omitempty"`
	To          string `cbor:"11,keyasint,omitempty"`
}

var journalEncMode = func() cbor.EncMode {
	em, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
	return em
}()

func encodeJournalEntry(entry *JournalEntry) ([]byte, error) {
	return journalEncMode.Marshal(entry)
}

func decodeJournalEntry(data []byte) (*JournalEntry, error) {
	var ret JournalEntry
	if err := cbor.Unmarshal(data, &ret); err != nil {
		return nil, err
	}
	return &ret, nil
}

// AppendJournalEntry writes a journal entry. Sequences must be written in
// increasing order; an existing entry is never overwritten.
func (d *Database) AppendJournalEntry(entry *JournalEntry, txn *Txn) error {
	if entry.Sequence == 0 {
		return errors.New("journal sequence must be positive")
	}
	owned := false
	if txn == nil {
		txn = d.BlobTxn(true)
		owned = true
		defer func() {
			if owned {
				txn.Rollback() //nolint:errcheck
			}
		}()
	}
	key := types.JournalKey(entry.Sequence)
	if _, err := d.blob.Get(txn.Blob(), key); err == nil {
		return fmt.Errorf("journal entry %d already exists", entry.Sequence)
	} else if !errors.Is(err, types.ErrBlobKeyNotFound) {
		return fmt.Errorf("failed to check journal entry %d: %w", entry.Sequence, err)
	}
	data, err := encodeJournalEntry(entry)
	if err != nil {
		return fmt.Errorf("failed to encode journal entry: %w", err)
	}
	if err := d.blob.Set(txn.Blob(), key, data); err != nil {
		return fmt.Errorf("failed to write journal entry %d: %w", entry.Sequence, err)
	}
	if owned {
		if err := txn.Commit(); err != nil {
			return fmt.Errorf("commit transaction: %w", err)
		}
		owned = false
	}
	return nil
}

// blobReadTxn returns txn, or a new read-only blob transaction and a
// function that releases it
func (d *Database) blobReadTxn(txn *Txn) (*Txn, func()) {
	if txn != nil {
		return txn, func() {}
	}
	txn = d.BlobTxn(false)
	return txn, txn.Release
}

// GetJournalEntry returns the journal entry with the given sequence
func (d *Database) GetJournalEntry(seq uint64, txn *Txn) (*JournalEntry, error) {
	txn, release := d.blobReadTxn(txn)
	defer release()
	data, err := d.blob.Get(txn.Blob(), types.JournalKey(seq))
	if err != nil {
		return nil, fmt.Errorf("failed to get journal entry %d: %w", seq, err)
	}
	entry, err := decodeJournalEntry(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode journal entry %d: %w", seq, err)
	}
	return entry, nil
}

// JournalEntriesAfter returns the journal entries with a sequence greater
// than seq, in order
func (d *Database) JournalEntriesAfter(
	seq uint64,
	txn *Txn,
) ([]*JournalEntry, error) {
	if seq == math.MaxUint64 {
		return nil, nil
	}
	txn, release := d.blobReadTxn(txn)
	defer release()
	prefix := []byte(types.JournalKeyPrefix)
	it := d.blob.NewIterator(
		txn.Blob(),
		types.BlobIteratorOptions{Prefix: prefix},
	)
	defer it.Close()
	var ret []*JournalEntry
	for it.Seek(types.JournalKey(seq + 1)); it.ValidForPrefix(prefix); it.Next() {
		item := it.Item()
		data, err := item.ValueCopy(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to read journal entry: %w", err)
		}
		entry, err := decodeJournalEntry(data)
		if err != nil {
			return nil, fmt.Errorf(
				"failed to decode journal entry at key %x: %w",
				item.Key(),
				err,
			)
		}
		ret = append(ret, entry)
	}
	if err := it.Err(); err != nil {
		return nil, err
	}
	return ret, nil
}

// LastJournalSequence returns the sequence of the newest journal entry,
// or 0 if the journal is empty
func (d *Database) LastJournalSequence(txn *Txn) (uint64, error) {
	txn, release := d.blobReadTxn(txn)
	defer release()
	prefix := []byte(types.JournalKeyPrefix)
	it := d.blob.NewIterator(
		txn.Blob(),
		types.BlobIteratorOptions{Prefix: prefix, Reverse: true},
	)
	defer it.Close()
	it.Seek(types.JournalKey(math.MaxUint64))
	if err := it.Err(); err != nil {
		return 0, err
	}
	if !it.ValidForPrefix(prefix) {
		return 0, nil
	}
	seq, err := types.JournalKeySequence(it.Item().Key())
	if err != nil {
		return 0, err
	}
	return seq, nil
}
