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

package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/blinklabs-io/agora/database"
	"github.com/blinklabs-io/agora/database/models"
	"github.com/blinklabs-io/agora/governance"
)

// recover replays journal entries that reached the blob store but not the
// metadata store, then realigns the commit timestamps of both stores
func (ls *LedgerState) recover() error {
	lastJournal, err := ls.db.LastJournalSequence(nil)
	if err != nil {
		return err
	}
	if lastJournal < ls.lastSequence {
		ls.config.Logger.Warn(
			"journal is behind the metadata store",
			"component", "ledger",
			"journal_sequence", lastJournal,
			"metadata_sequence", ls.lastSequence,
		)
	}
	entries, err := ls.db.JournalEntriesAfter(ls.lastSequence, nil)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if entry.Sequence != ls.lastSequence+1 {
			return fmt.Errorf(
				"journal gap: expected entry %d, found %d",
				ls.lastSequence+1,
				entry.Sequence,
			)
		}
		req, err := requestFromJournalEntry(entry)
		if err != nil {
			return err
		}
		res, err := governance.Transition(
			ls.state,
			req,
			governance.Principal(entry.Caller),
			nanosToTime(entry.NowNanos),
		)
		if err != nil {
			return fmt.Errorf("replay journal entry %d: %w", entry.Sequence, err)
		}
		if err := ls.persist(entry, res, false); err != nil {
			return fmt.Errorf("replay journal entry %d: %w", entry.Sequence, err)
		}
		ls.state.Apply(res.Delta)
		ls.lastSequence = entry.Sequence
		ls.config.Logger.Warn(
			"replayed journal entry",
			"component", "ledger",
			"sequence", entry.Sequence,
			"request_id", entry.RequestID,
			"type", res.Type.String(),
		)
	}
	if len(entries) > 0 {
		if err := ls.verify(context.Background()); err != nil {
			return fmt.Errorf("verify replayed state: %w", err)
		}
	}
	err = ls.db.CheckCommitTimestamp()
	if err == nil {
		return nil
	}
	var tsErr database.CommitTimestampError
	if !errors.As(err, &tsErr) {
		return err
	}
	// A coordinated commit writes a fresh timestamp to both stores
	ls.config.Logger.Warn(
		"realigning commit timestamps",
		"component", "ledger",
		"metadata_timestamp", tsErr.MetadataTimestamp,
		"blob_timestamp", tsErr.BlobTimestamp,
	)
	txn := ls.db.Transaction(true)
	return txn.Do(func(txn *database.Txn) error {
		params := ls.state.Params()
		return ls.db.SetGovernanceState(
			&models.GovernanceState{
				Quorum:            params.Quorum,
				VotingPeriodNanos: int64(params.VotingPeriod),
				NextProposalID:    uint64(ls.state.NextProposalID()),
				LastSequence:      ls.lastSequence,
			},
			txn,
		)
	})
}
