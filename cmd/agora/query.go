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

package main

import (
	"context"
	"encoding/json"
	"io"
	"time"

	"github.com/blinklabs-io/agora/governance"
	"github.com/blinklabs-io/agora/ledger"
	"github.com/spf13/cobra"
)

const (
	statusOpen     = "open"
	statusEnded    = "ended"
	statusExecuted = "executed"
)

type proposalView struct {
	ID           governance.ProposalID `json:"id"`
	Description  string                `json:"description"`
	Proposer     governance.Principal  `json:"proposer"`
	Target       governance.Principal  `json:"target"`
	Amount       uint64                `json:"amount"`
	CreatedAt    time.Time             `json:"createdAt"`
	Deadline     time.Time             `json:"deadline"`
	VotesFor     uint64                `json:"votesFor"`
	VotesAgainst uint64                `json:"votesAgainst"`
	Status       string                `json:"status"`
}

func newProposalView(p governance.Proposal, now time.Time) proposalView {
	status := statusEnded
	switch {
	case p.Executed:
		status = statusExecuted
	case p.VotingOpen(now):
		status = statusOpen
	}
	return proposalView{
		ID:           p.ID,
		Description:  p.Description,
		Proposer:     p.Proposer,
		Target:       p.Target,
		Amount:       p.Amount,
		CreatedAt:    p.CreatedAt,
		Deadline:     p.Deadline,
		VotesFor:     p.VotesFor,
		VotesAgainst: p.VotesAgainst,
		Status:       status,
	}
}

type voteView struct {
	ProposalID governance.ProposalID `json:"proposalId"`
	Voter      governance.Principal  `json:"voter"`
	Ballot     string                `json:"ballot"`
	Power      uint64                `json:"power"`
	CastAt     time.Time             `json:"castAt"`
}

type effectView struct {
	ID         string                `json:"id"`
	ProposalID governance.ProposalID `json:"proposalId"`
	Target     governance.Principal  `json:"target"`
	Amount     uint64                `json:"amount"`
	Sequence   uint64                `json:"sequence,omitempty"`
	SettledAt  *time.Time            `json:"settledAt,omitempty"`
}

func newEffectView(e ledger.Effect) effectView {
	return effectView{
		ID:         e.ID(),
		ProposalID: e.ProposalID,
		Target:     e.Target,
		Amount:     e.Amount,
		Sequence:   e.Sequence,
		SettledAt:  e.SettledAt,
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func proposalCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "proposal <proposal-id>",
		Short: "Show a proposal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseProposalID(args[0])
			if err != nil {
				return err
			}
			now, err := parseNow(flags.now)
			if err != nil {
				return err
			}
			return withLedger(cmd, func(_ context.Context, ls *ledger.LedgerState) error {
				p, err := ls.Proposal(id)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), newProposalView(p, now))
			})
		},
	}
}

func proposalsCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "proposals",
		Short: "List all proposals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			now, err := parseNow(flags.now)
			if err != nil {
				return err
			}
			return withLedger(cmd, func(_ context.Context, ls *ledger.LedgerState) error {
				proposals := ls.Proposals()
				ret := make([]proposalView, 0, len(proposals))
				for _, p := range proposals {
					ret = append(ret, newProposalView(p, now))
				}
				return printJSON(cmd.OutOrStdout(), ret)
			})
		},
	}
}

func votesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "votes <proposal-id>",
		Short: "List the votes cast on a proposal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseProposalID(args[0])
			if err != nil {
				return err
			}
			return withLedger(cmd, func(_ context.Context, ls *ledger.LedgerState) error {
				if _, err := ls.Proposal(id); err != nil {
					return err
				}
				votes := ls.Votes(id)
				ret := make([]voteView, 0, len(votes))
				for _, v := range votes {
					ret = append(ret, voteView{
						ProposalID: v.ProposalID,
						Voter:      v.Voter,
						Ballot:     v.Ballot.String(),
						Power:      v.Power,
						CastAt:     v.CastAt,
					})
				}
				return printJSON(cmd.OutOrStdout(), ret)
			})
		},
	}
}

func powerCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "power [principal]",
		Short: "Show voting power of one principal or all of them",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLedger(cmd, func(_ context.Context, ls *ledger.LedgerState) error {
				if len(args) == 1 {
					p := governance.Principal(args[0])
					return printJSON(cmd.OutOrStdout(), map[governance.Principal]uint64{
						p: ls.VotingPower(p),
					})
				}
				return printJSON(cmd.OutOrStdout(), ls.VotingPowers())
			})
		},
	}
}

func verifyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Check the stored proposals and votes against the replayed state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withLedger(cmd, func(ctx context.Context, ls *ledger.LedgerState) error {
				if err := ls.Verify(ctx); err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), map[string]any{
					"verified":  true,
					"proposals": len(ls.Proposals()),
					"sequence":  ls.LastSequence(),
				})
			})
		},
	}
}

func effectsCommand() *cobra.Command {
	var pending bool
	cmd := &cobra.Command{
		Use:   "effects",
		Short: "List transfers authorized by executed proposals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLedger(cmd, func(ctx context.Context, ls *ledger.LedgerState) error {
				var effects []ledger.Effect
				var err error
				if pending {
					effects, err = ls.PendingEffects(ctx)
				} else {
					effects, err = ls.Effects(ctx)
				}
				if err != nil {
					return err
				}
				ret := make([]effectView, 0, len(effects))
				for _, e := range effects {
					ret = append(ret, newEffectView(e))
				}
				return printJSON(cmd.OutOrStdout(), ret)
			})
		},
	}
	cmd.Flags().BoolVar(&pending, "pending", false, "only list unsettled transfers")
	return cmd
}
