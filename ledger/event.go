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
	"time"

	"github.com/blinklabs-io/agora/event"
	"github.com/blinklabs-io/agora/governance"
)

const (
	ProposalCreatedEventType  event.EventType = "governance.proposal_created"
	VoteCastEventType         event.EventType = "governance.vote_cast"
	ProposalExecutedEventType event.EventType = "governance.proposal_executed"
	PowerDelegatedEventType   event.EventType = "governance.power_delegated"
)

type ProposalCreatedEvent struct {
	RequestID   string
	Sequence    uint64
	ProposalID  governance.ProposalID
	Proposer    governance.Principal
	Description string
	Target      governance.Principal
	Amount      uint64
	Deadline    time.Time
}

type VoteCastEvent struct {
	RequestID    string
	Sequence     uint64
	ProposalID   governance.ProposalID
	Voter        governance.Principal
	Ballot       governance.Ballot
	Power        uint64
	VotesFor     uint64
	VotesAgainst uint64
}

// ProposalExecutedEvent carries the transfer the host must perform
type ProposalExecutedEvent struct {
	RequestID string
	Sequence  uint64
	Executor  governance.Principal
	Effect    governance.Effect
}

// PowerDelegatedEvent is published for every accepted delegation,
// including self and zero delegations that change nothing
type PowerDelegatedEvent struct {
	RequestID string
	Sequence  uint64
	From      governance.Principal
	To        governance.Principal
	Amount    uint64
}

func (ls *LedgerState) publishEvents(
	requestID string,
	seq uint64,
	req governance.Request,
	res *governance.Result,
	caller governance.Principal,
) {
	if ls.config.EventBus == nil {
		return
	}
	var evt event.Event
	delta := res.Delta
	switch res.Type {
	case governance.RequestTypeCreateProposal:
		p := delta.Proposal
		evt = event.NewEvent(
			ProposalCreatedEventType,
			ProposalCreatedEvent{
				RequestID:   requestID,
				Sequence:    seq,
				ProposalID:  p.ID,
				Proposer:    p.Proposer,
				Description: p.Description,
				Target:      p.Target,
				Amount:      p.Amount,
				Deadline:    p.Deadline,
			},
		)
	case governance.RequestTypeCastVote:
		evt = event.NewEvent(
			VoteCastEventType,
			VoteCastEvent{
				RequestID:    requestID,
				Sequence:     seq,
				ProposalID:   delta.Vote.ProposalID,
				Voter:        delta.Vote.Voter,
				Ballot:       delta.Vote.Ballot,
				Power:        delta.Vote.Power,
				VotesFor:     delta.Proposal.VotesFor,
				VotesAgainst: delta.Proposal.VotesAgainst,
			},
		)
	case governance.RequestTypeExecute:
		evt = event.NewEvent(
			ProposalExecutedEventType,
			ProposalExecutedEvent{
				RequestID: requestID,
				Sequence:  seq,
				Executor:  caller,
				Effect:    *res.Effect,
			},
		)
	case governance.RequestTypeDelegate:
		tmpEvt := PowerDelegatedEvent{
			RequestID: requestID,
			Sequence:  seq,
			From:      caller,
		}
		switch r := req.(type) {
		case governance.Delegate:
			tmpEvt.To, tmpEvt.Amount = r.To, r.Amount
		case *governance.Delegate:
			tmpEvt.To, tmpEvt.Amount = r.To, r.Amount
		}
		evt = event.NewEvent(PowerDelegatedEventType, tmpEvt)
	default:
		return
	}
	ls.config.EventBus.PublishAsync(evt)
}
