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

package types

import (
	"encoding/binary"
	"errors"
)

const (
	JournalKeyPrefix = "j"
)

// JournalKey returns the blob key of the journal entry with the given
// sequence. Big-endian encoding keeps keys ordered by sequence.
func JournalKey(seq uint64) []byte {
	key := make([]byte, len(JournalKeyPrefix)+8)
	copy(key, JournalKeyPrefix)
	binary.BigEndian.PutUint64(key[len(JournalKeyPrefix):], seq)
	return key
}

// JournalKeySequence extracts the sequence from a journal key
func JournalKeySequence(key []byte) (uint64, error) {
	if len(key) != len(JournalKeyPrefix)+8 ||
		string(key[:len(JournalKeyPrefix)]) != JournalKeyPrefix {
		return 0, errors.New("not a journal key")
	}
	return binary.BigEndian.Uint64(key[len(JournalKeyPrefix):]), nil
}
