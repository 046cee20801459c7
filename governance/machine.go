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

import "time"

// Machine applies requests directly to an in-memory State. It is not safe
// for concurrent use.
type Machine struct {
	state *State
}

func NewMachine(state *State) *Machine {
	return &Machine{state: state}
}

func (m *Machine) State() *State {
	return m.state
}

// Apply runs Transition and, on success, applies the delta
func (m *Machine) Apply(
	req Request,
	caller Principal,
	now time.Time,
) (*Result, error) {
	res, err := Transition(m.state, req, caller, now)
	if err != nil {
		return nil, err
	}
	m.state.Apply(res.Delta)
	return res, nil
}

func (m *Machine) CreateProposal(
	description string,
	target Principal,
	amount uint64,
	caller Principal,
	now time.Time,
) (ProposalID, error) {
	res, err := m.Apply(
		CreateProposal{
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

func (m *Machine) Vote(
	id ProposalID,
	ballot Ballot,
	caller Principal,
	now time.Time,
) error {
	_, err := m.Apply(CastVote{ProposalID: id, Ballot: ballot}, caller, now)
	return err
}

func (m *Machine) Execute(
	id ProposalID,
	caller Principal,
	now time.Time,
) (Effect, error) {
	res, err := m.Apply(Execute{ProposalID: id}, caller, now)
	if err != nil {
		return Effect{}, err
	}
	return *res.Effect, nil
}

// Delegate moves amount of the caller's voting power to another principal.
// Delegation has no time dependency.
func (m *Machine) Delegate(
	to Principal,
	amount uint64,
	caller Principal,
) error {
	_, err := m.Apply(Delegate{To: to, Amount: amount}, caller, time.Time{})
	return err
}
