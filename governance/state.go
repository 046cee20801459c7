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
	"maps"
	"slices"
)

// State is the complete governance state. It is not safe for concurrent
// use; hosts serialize access.
type State struct {
	params         Params
	nextProposalID ProposalID
	proposals      map[ProposalID]*Proposal
	votes          map[VoteKey]VoteRecord
	power          map[Principal]uint64
}

// NewState returns an empty state with the given parameters
func NewState(params Params) *State {
	return &State{
		params:    params,
		proposals: make(map[ProposalID]*Proposal),
		votes:     make(map[VoteKey]VoteRecord),
		power:     make(map[Principal]uint64),
	}
}

// NewGenesisState returns a state with the initial voting power allocation.
// Zero allocations are skipped.
func NewGenesisState(
	params Params,
	allocation map[Principal]uint64,
) (*State, error) {
	s := NewState(params)
	var total uint64
	for principal, power := range allocation {
		if power == 0 {
			continue
		}
		if power > MaxAmount-total {
			return nil, ErrGenesisPowerOverflow
		}
		total += power
		s.power[principal] = power
	}
	return s, nil
}

// RestoreState rebuilds a state from persisted records. It checks the
// structural invariants that storage alone does not guarantee.
func RestoreState(
	params Params,
	nextProposalID ProposalID,
	proposals []Proposal,
	votes []VoteRecord,
	power map[Principal]uint64,
) (*State, error) {
	s := NewState(params)
	s.nextProposalID = nextProposalID
	for _, p := range proposals {
		if p.ID >= nextProposalID {
			return nil, fmt.Errorf(
				"proposal %d is not below next proposal ID %d",
				p.ID,
				nextProposalID,
			)
		}
		if _, ok := s.proposals[p.ID]; ok {
			return nil, fmt.Errorf("duplicate proposal %d", p.ID)
		}
		tmp := p
		s.proposals[p.ID] = &tmp
	}
	for _, v := range votes {
		if _, ok := s.proposals[v.ProposalID]; !ok {
			return nil, fmt.Errorf(
				"vote by %s references unknown proposal %d",
				v.Voter,
				v.ProposalID,
			)
		}
		if _, ok := s.votes[v.Key()]; ok {
			return nil, fmt.Errorf(
				"duplicate vote by %s on proposal %d",
				v.Voter,
				v.ProposalID,
			)
		}
		s.votes[v.Key()] = v
	}
	var total uint64
	for principal, amount := range power {
		if amount > MaxAmount-total {
			return nil, ErrGenesisPowerOverflow
		}
		total += amount
		s.power[principal] = amount
	}
	return s, nil
}

func (s *State) Params() Params {
	return s.params
}

// NextProposalID returns the ID the next created proposal will receive
func (s *State) NextProposalID() ProposalID {
	return s.nextProposalID
}

// Proposal returns a copy of the proposal with the given ID
func (s *State) Proposal(id ProposalID) (Proposal, bool) {
	p, ok := s.proposals[id]
	if !ok {
		return Proposal{}, false
	}
	return *p, true
}

// Proposals returns copies of all proposals ordered by ID
func (s *State) Proposals() []Proposal {
	ret := make([]Proposal, 0, len(s.proposals))
	for _, id := range slices.Sorted(maps.Keys(s.proposals)) {
		ret = append(ret, *s.proposals[id])
	}
	return ret
}

// Vote returns the vote cast by voter on a proposal, if any
func (s *State) Vote(id ProposalID, voter Principal) (VoteRecord, bool) {
	v, ok := s.votes[VoteKey{ProposalID: id, Voter: voter}]
	return v, ok
}

// HasVoted reports whether voter has a vote record for the proposal
func (s *State) HasVoted(id ProposalID, voter Principal) bool {
	_, ok := s.Vote(id, voter)
	return ok
}

// Votes returns the votes cast on a proposal ordered by voter
func (s *State) Votes(id ProposalID) []VoteRecord {
	var ret []VoteRecord
	for key, v := range s.votes {
		if key.ProposalID == id {
			ret = append(ret, v)
		}
	}
	slices.SortFunc(ret, func(a, b VoteRecord) int {
		switch {
		case a.Voter < b.Voter:
			return -1
		case a.Voter > b.Voter:
			return 1
		}
		return 0
	})
	return ret
}

// VotingPower returns the current power of a principal. Unknown principals
// have zero power.
func (s *State) VotingPower(p Principal) uint64 {
	return s.power[p]
}

// VotingPowers returns a copy of the voting power ledger, including
// principals whose power has dropped to zero
func (s *State) VotingPowers() map[Principal]uint64 {
	return maps.Clone(s.power)
}

// TotalVotingPower returns the sum of all voting power. Delegation never
// changes it.
func (s *State) TotalVotingPower() uint64 {
	var total uint64
	for _, p := range s.power {
		total += p
	}
	return total
}

// Clone returns a deep copy of the state
func (s *State) Clone() *State {
	ret := &State{
		params:         s.params,
		nextProposalID: s.nextProposalID,
		proposals:      make(map[ProposalID]*Proposal, len(s.proposals)),
		votes:          maps.Clone(s.votes),
		power:          maps.Clone(s.power),
	}
	for id, p := range s.proposals {
		tmp := *p
		ret.proposals[id] = &tmp
	}
	return ret
}
