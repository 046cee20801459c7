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

package governance

import (
	"fmt"
	"time"
)

type RequestType uint8

const (
	RequestTypeCreateProposal RequestType = 1
	RequestTypeCastVote       RequestType = 2
	RequestTypeExecute        RequestType = 3
	RequestTypeDelegate       RequestType = 4
)

func (t RequestType) String() string {
	switch t {
	case RequestTypeCreateProposal:
		return "create_proposal"
	case RequestTypeCastVote:
		return "vote"
	case RequestTypeExecute:
		return "execute"
	case RequestTypeDelegate:
		return "delegate"
	default:
		return fmt.Sprintf("RequestType(%d)", uint8(t))
	}
}

// Request is one of CreateProposal, CastVote, Execute or Delegate
type Request interface {
	Type() RequestType
	isRequest()
}

type CreateProposal struct {
	Description string
	Target      Principal
	Amount      uint64
}

type CastVote struct {
	ProposalID ProposalID
	Ballot     Ballot
}

type Execute struct {
	ProposalID ProposalID
}

type Delegate struct {
	To     Principal
	Amount uint64
}

func (CreateProposal) Type() RequestType { return RequestTypeCreateProposal }
func (CastVote) Type() RequestType       { return RequestTypeCastVote }
func (Execute) Type() RequestType        { return RequestTypeExecute }
func (Delegate) Type() RequestType       { return RequestTypeDelegate }

func (CreateProposal) isRequest() {}
func (CastVote) isRequest()       {}
func (Execute) isRequest()        {}
func (Delegate) isRequest()       {}

// Result is the outcome of an accepted request. ProposalID is set for
// requests that target or create a proposal, Effect only for Execute.
type Result struct {
	Type       RequestType
	ProposalID ProposalID
	Effect     *Effect
	Delta      *Delta
}

// Transition validates req against s on behalf of caller at time now and
// returns the resulting delta. It does not modify s. Preconditions are
// checked in a fixed order and the first failure is returned.
func Transition(
	s *State,
	req Request,
	caller Principal,
	now time.Time,
) (*Result, error) {
	switch r := req.(type) {
	case CreateProposal:
		return s.planCreateProposal(r, caller, now)
	case *CreateProposal:
		return s.planCreateProposal(*r, caller, now)
	case CastVote:
		return s.planCastVote(r, caller, now)
	case *CastVote:
		return s.planCastVote(*r, caller, now)
	case Execute:
		return s.planExecute(r, now)
	case *Execute:
		return s.planExecute(*r, now)
	case Delegate:
		return s.planDelegate(r, caller)
	case *Delegate:
		return s.planDelegate(*r, caller)
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownRequest, req)
	}
}
