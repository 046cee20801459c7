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
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/blinklabs-io/agora/database"
	"github.com/blinklabs-io/agora/database/models"
	"github.com/blinklabs-io/agora/governance"
)

// ErrTimeOutOfRange is returned for request times that cannot be stored
// as unix nanoseconds
var ErrTimeOutOfRange = errors.New("time out of range")

var (
	minTime = time.Unix(0, math.MinInt64)
	maxTime = time.Unix(0, math.MaxInt64)
)

func timeToNanos(t time.Time) (int64, error) {
	if t.Before(minTime) || t.After(maxTime) {
		return 0, fmt.Errorf("%w: %s", ErrTimeOutOfRange, t)
	}
	return t.UnixNano(), nil
}

func nanosToTime(nanos int64) time.Time {
	return time.Unix(0, nanos)
}

func proposalToModel(
	p governance.Proposal,
	seq uint64,
	executed bool,
) (*models.Proposal, error) {
	created, err := timeToNanos(p.CreatedAt)
	if err != nil {
		return nil, err
	}
	deadline, err := timeToNanos(p.Deadline)
	if err != nil {
		return nil, err
	}
	ret := &models.Proposal{
		ProposalID:    uint64(p.ID),
		Description:   p.Description,
		Proposer:      string(p.Proposer),
		Target:        string(p.Target),
		Amount:        p.Amount,
		CreatedNanos:  created,
		DeadlineNanos: deadline,
		VotesFor:      p.VotesFor,
		VotesAgainst:  p.VotesAgainst,
		Executed:      p.Executed,
		AddedSequence: seq,
	}
	if executed {
		ret.ExecutedSequence = &seq
	}
	return ret, nil
}

func proposalFromModel(m models.Proposal) governance.Proposal {
	return governance.Proposal{
		ID:           governance.ProposalID(m.ProposalID),
		Description:  m.Description,
		Proposer:     governance.Principal(m.Proposer),
		Target:       governance.Principal(m.Target),
		Amount:       m.Amount,
		CreatedAt:    nanosToTime(m.CreatedNanos),
		Deadline:     nanosToTime(m.DeadlineNanos),
		VotesFor:     m.VotesFor,
		VotesAgainst: m.VotesAgainst,
		Executed:     m.Executed,
	}
}

func voteToModel(v governance.VoteRecord, seq uint64) (*models.Vote, error) {
	cast, err := timeToNanos(v.CastAt)
	if err != nil {
		return nil, err
	}
	return &models.Vote{
		ProposalID:    uint64(v.ProposalID),
		Voter:         string(v.Voter),
		Ballot:        uint8(v.Ballot),
		Power:         v.Power,
		CastNanos:     cast,
		AddedSequence: seq,
	}, nil
}

func voteFromModel(m models.Vote) governance.VoteRecord {
	return governance.VoteRecord{
		ProposalID: governance.ProposalID(m.ProposalID),
		Voter:      governance.Principal(m.Voter),
		Ballot:     governance.Ballot(m.Ballot),
		Power:      m.Power,
		CastAt:     nanosToTime(m.CastNanos),
	}
}

func effectFromModel(m models.Effect) Effect {
	ret := Effect{
		Effect: governance.Effect{
			ProposalID: governance.ProposalID(m.ProposalID),
			Target:     governance.Principal(m.Target),
			Amount:     m.Amount,
		},
		Sequence: m.AddedSequence,
	}
	if m.SettledNanos != nil {
		tmp := nanosToTime(*m.SettledNanos)
		ret.SettledAt = &tmp
	}
	return ret
}

func paramsFromModel(m *models.GovernanceState) governance.Params {
	return governance.Params{
		Quorum:       m.Quorum,
		VotingPeriod: time.Duration(m.VotingPeriodNanos),
	}
}

// journalEntryFromRequest builds the journal record of an accepted request
func journalEntryFromRequest(
	seq uint64,
	requestID string,
	req governance.Request,
	caller governance.Principal,
	now time.Time,
) (*database.JournalEntry, error) {
	nowNanos, err := timeToNanos(now)
	if err != nil {
		return nil, err
	}
	entry := &database.JournalEntry{
		Sequence:  seq,
		RequestID: requestID,
		Type:      uint8(req.Type()),
		Caller:    string(caller),
		NowNanos:  nowNanos,
	}
	switch r := req.(type) {
	case governance.CreateProposal:
		entry.Description = r.Description
		entry.Target = string(r.Target)
		entry.Amount = r.Amount
	case *governance.CreateProposal:
		entry.Description = r.Description
		entry.Target = string(r.Target)
		entry.Amount = r.Amount
	case governance.CastVote:
		entry.ProposalID = uint64(r.ProposalID)
		entry.Ballot = uint8(r.Ballot)
	case *governance.CastVote:
		entry.ProposalID = uint64(r.ProposalID)
		entry.Ballot = uint8(r.Ballot)
	case governance.Execute:
		entry.ProposalID = uint64(r.ProposalID)
	case *governance.Execute:
		entry.ProposalID = uint64(r.ProposalID)
	case governance.Delegate:
		entry.To = string(r.To)
		entry.Amount = r.Amount
	case *governance.Delegate:
		entry.To = string(r.To)
		entry.Amount = r.Amount
	default:
		return nil, fmt.Errorf("%w: %T", governance.ErrUnknownRequest, req)
	}
	return entry, nil
}

func requestFromJournalEntry(
	entry *database.JournalEntry,
) (governance.Request, error) {
	switch governance.RequestType(entry.Type) {
	case governance.RequestTypeCreateProposal:
		return governance.CreateProposal{
			Description: entry.Description,
			Target:      governance.Principal(entry.Target),
			Amount:      entry.Amount,
		}, nil
	case governance.RequestTypeCastVote:
		return governance.CastVote{
			ProposalID: governance.ProposalID(entry.ProposalID),
			Ballot:     governance.Ballot(entry.Ballot),
		}, nil
	case governance.RequestTypeExecute:
		return governance.Execute{
			ProposalID: governance.ProposalID(entry.ProposalID),
		}, nil
	case governance.RequestTypeDelegate:
		return governance.Delegate{
			To:     governance.Principal(entry.To),
			Amount: entry.Amount,
		}, nil
	default:
		return nil, fmt.Errorf(
			"%w: journal entry %d has type %d",
			governance.ErrUnknownRequest,
			entry.Sequence,
			entry.Type,
		)
	}
}
