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
	"fmt"
	"time"

	"github.com/blinklabs-io/agora/database"
	"github.com/blinklabs-io/agora/database/models"
	"github.com/blinklabs-io/agora/governance"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/blinklabs-io/agora/ledger"

// Submit runs a request through the state machine. A rejected request
// returns the state machine's error unchanged and modifies nothing. An
// accepted request is journaled and persisted before it is applied in
// memory; if persistence fails, nothing is applied and no effect is
// returned.
func (ls *LedgerState) Submit(
	ctx context.Context,
	req governance.Request,
	caller governance.Principal,
	now time.Time,
) (*governance.Result, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: nil request", governance.ErrUnknownRequest)
	}
	_, span := otel.Tracer(tracerName).Start(
		ctx,
		"ledger.Submit",
		trace.WithAttributes(
			attribute.String("governance.request.type", req.Type().String()),
			attribute.String("governance.caller", string(caller)),
		),
	)
	defer span.End()
	if err := ctx.Err(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	start := time.Now()
	requestID := uuid.NewString()
	span.SetAttributes(attribute.String("governance.request.id", requestID))

	ls.Lock()
	res, seq, err := ls.submit(requestID, req, caller, now)
	if err == nil {
		ls.lastSequence = seq
		ls.updateGauges()
		// Queued under the lock so events follow sequence order
		ls.publishEvents(requestID, seq, req, res, caller)
	}
	ls.Unlock()

	if err != nil {
		ls.metrics.rejected.WithLabelValues(
			req.Type().String(),
			rejectionReason(err),
		).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if governance.IsRejection(err) {
			ls.config.Logger.Debug(
				"rejected request",
				"component", "ledger",
				"type", req.Type().String(),
				"caller", caller,
				"error", err,
			)
		} else {
			ls.config.Logger.Error(
				"failed to process request",
				"component", "ledger",
				"type", req.Type().String(),
				"caller", caller,
				"error", err,
			)
		}
		return nil, err
	}
	span.SetAttributes(attribute.Int64("governance.sequence", int64(seq))) //nolint:gosec // sequences stay far below MaxInt64
	ls.metrics.submitLatency.Observe(time.Since(start).Seconds())
	ls.recordAccepted(res)
	ls.config.Logger.Debug(
		"accepted request",
		"component", "ledger",
		"type", res.Type.String(),
		"request_id", requestID,
		"sequence", seq,
		"caller", caller,
	)
	return res, nil
}

// submit validates, persists and applies a request and returns its journal
// sequence. The caller must hold the write lock.
func (ls *LedgerState) submit(
	requestID string,
	req governance.Request,
	caller governance.Principal,
	now time.Time,
) (*governance.Result, uint64, error) {
	if ls.recoveryPending {
		if err := ls.recover(); err != nil {
			return nil, 0, fmt.Errorf("recover governance state: %w", err)
		}
		ls.recoveryPending = false
	}
	seq := ls.lastSequence + 1
	if _, err := timeToNanos(now); err != nil {
		return nil, 0, err
	}
	res, err := governance.Transition(ls.state, req, caller, now)
	if err != nil {
		return nil, 0, err
	}
	entry, err := journalEntryFromRequest(seq, requestID, req, caller, now)
	if err != nil {
		return nil, 0, err
	}
	if err := ls.persist(entry, res, true); err != nil {
		if ls.recoverPartialCommit(seq) {
			return res, seq, nil
		}
		return nil, 0, fmt.Errorf("persist %s request: %w", res.Type, err)
	}
	ls.state.Apply(res.Delta)
	return res, seq, nil
}

// recoverPartialCommit handles a failed persist whose journal entry was
// committed anyway. It replays the journal and reports whether the entry
// with the given sequence has been applied. If the replay fails too, the
// next request retries it before doing anything else.
func (ls *LedgerState) recoverPartialCommit(seq uint64) bool {
	lastJournal, err := ls.db.LastJournalSequence(nil)
	if err != nil {
		ls.recoveryPending = true
		return false
	}
	if lastJournal < seq {
		return false
	}
	if err := ls.recover(); err != nil {
		ls.recoveryPending = true
		ls.config.Logger.Error(
			"failed to recover from partial commit",
			"component", "ledger",
			"sequence", seq,
			"error", err,
		)
		return false
	}
	return ls.lastSequence >= seq
}

// persist writes the delta of an accepted request together with its
// journal entry and the updated counters in one transaction
func (ls *LedgerState) persist(
	entry *database.JournalEntry,
	res *governance.Result,
	appendJournal bool,
) error {
	seq := entry.Sequence
	delta := res.Delta
	txn := ls.db.Transaction(true)
	return txn.Do(func(txn *database.Txn) error {
		if appendJournal {
			if err := ls.db.AppendJournalEntry(entry, txn); err != nil {
				return err
			}
		}
		if delta.Proposal != nil {
			proposal, err := proposalToModel(
				*delta.Proposal,
				seq,
				res.Type == governance.RequestTypeExecute,
			)
			if err != nil {
				return err
			}
			if err := ls.db.SetProposal(proposal, txn); err != nil {
				return err
			}
		}
		if delta.Vote != nil {
			vote, err := voteToModel(*delta.Vote, seq)
			if err != nil {
				return err
			}
			if err := ls.db.AddVote(vote, txn); err != nil {
				return err
			}
		}
		for _, pc := range delta.Powers {
			if err := ls.db.SetVotingPower(
				&models.VotingPower{
					Principal:       string(pc.Principal),
					Power:           pc.Power,
					UpdatedSequence: seq,
				},
				txn,
			); err != nil {
				return err
			}
		}
		if delta.Effect != nil {
			if err := ls.db.AddEffect(
				&models.Effect{
					ProposalID:    uint64(delta.Effect.ProposalID),
					Target:        string(delta.Effect.Target),
					Amount:        delta.Effect.Amount,
					AddedSequence: seq,
				},
				txn,
			); err != nil {
				return err
			}
		}
		params := ls.state.Params()
		return ls.db.SetGovernanceState(
			&models.GovernanceState{
				Quorum:            params.Quorum,
				VotingPeriodNanos: int64(params.VotingPeriod),
				NextProposalID:    uint64(delta.NextProposalID),
				LastSequence:      seq,
			},
			txn,
		)
	})
}

func (ls *LedgerState) recordAccepted(res *governance.Result) {
	switch res.Type {
	case governance.RequestTypeCreateProposal:
		ls.metrics.proposalsCreated.Inc()
	case governance.RequestTypeCastVote:
		ls.metrics.votesCast.WithLabelValues(res.Delta.Vote.Ballot.String()).Inc()
	case governance.RequestTypeExecute:
		ls.metrics.proposalsExecuted.Inc()
		ls.metrics.pendingEffects.Inc()
	case governance.RequestTypeDelegate:
		ls.metrics.delegations.Inc()
	}
}

// CreateProposal submits a new proposal and returns its id
func (ls *LedgerState) CreateProposal(
	ctx context.Context,
	description string,
	target governance.Principal,
	amount uint64,
	caller governance.Principal,
	now time.Time,
) (governance.ProposalID, error) {
	res, err := ls.Submit(
		ctx,
		governance.CreateProposal{
			Description: description,
			Target:      target,
			Amount:      amount,
		},
		caller,
		now,
	)
	if err != nil {
		return 0, err
	}
	return res.ProposalID, nil
}

func (ls *LedgerState) Vote(
	ctx context.Context,
	id governance.ProposalID,
	ballot governance.Ballot,
	caller governance.Principal,
	now time.Time,
) error {
	_, err := ls.Submit(
		ctx,
		governance.CastVote{ProposalID: id, Ballot: ballot},
		caller,
		now,
	)
	return err
}

// Execute finalizes a proposal and returns the transfer it authorizes.
// The transfer is also recorded in the effect outbox.
func (ls *LedgerState) Execute(
	ctx context.Context,
	id governance.ProposalID,
	caller governance.Principal,
	now time.Time,
) (governance.Effect, error) {
	res, err := ls.Submit(ctx, governance.Execute{ProposalID: id}, caller, now)
	if err != nil {
		return governance.Effect{}, err
	}
	return *res.Effect, nil
}

func (ls *LedgerState) Delegate(
	ctx context.Context,
	to governance.Principal,
	amount uint64,
	caller governance.Principal,
	now time.Time,
) error {
	_, err := ls.Submit(
		ctx,
		governance.Delegate{To: to, Amount: amount},
		caller,
		now,
	)
	return err
}
