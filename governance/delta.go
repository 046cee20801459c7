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

// PowerChange sets the voting power of a principal to an absolute value
type PowerChange struct {
	Principal Principal
	Power     uint64
}

// Delta lists every write caused by one accepted request. Proposal holds
// the full new value of a created or updated proposal.
type Delta struct {
	NextProposalID ProposalID
	Proposal       *Proposal
	Vote           *VoteRecord
	Powers         []PowerChange
	Effect         *Effect
}

// Apply writes the delta into the state. The delta must have been produced
// by Transition against this same state.
func (s *State) Apply(d *Delta) {
	if d == nil {
		return
	}
	s.nextProposalID = d.NextProposalID
	if d.Proposal != nil {
		tmp := *d.Proposal
		s.proposals[tmp.ID] = &tmp
	}
	if d.Vote != nil {
		s.votes[d.Vote.Key()] = *d.Vote
	}
	for _, pc := range d.Powers {
		s.power[pc.Principal] = pc.Power
	}
}
