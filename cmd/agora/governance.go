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
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/blinklabs-io/agora/governance"
	"github.com/blinklabs-io/agora/internal/config"
	"github.com/blinklabs-io/agora/internal/node"
	"github.com/blinklabs-io/agora/ledger"
	"github.com/spf13/cobra"
)

var errCallerRequired = errors.New("--caller is required")

// parseNow accepts RFC 3339 or integer unix seconds. An empty value means
// the current time.
func parseNow(s string) (time.Time, error) {
	if s == "" {
		return time.Now(), nil
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	secs, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --now value %q", s)
	}
	return time.Unix(secs, 0), nil
}

func parseProposalID(s string) (governance.ProposalID, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid proposal id %q", s)
	}
	return governance.ProposalID(id), nil
}

func parseAmount(s string) (uint64, error) {
	amount, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	return amount, nil
}

// request carries the per-call inputs shared by the mutating commands
type request struct {
	caller governance.Principal
	now    time.Time
}

func (f *globalFlags) request() (request, error) {
	if f.caller == "" {
		return request{}, errCallerRequired
	}
	now, err := parseNow(f.now)
	if err != nil {
		return request{}, err
	}
	return request{caller: governance.Principal(f.caller), now: now}, nil
}

// withLedger opens the node for the duration of fn
func withLedger(
	cmd *cobra.Command,
	fn func(ctx context.Context, ls *ledger.LedgerState) error,
) (err error) {
	cfg := config.FromContext(cmd.Context())
	if cfg == nil {
		return errors.New("no config found in context")
	}
	ctx := cmd.Context()
	n, err := node.New(ctx, cfg, slog.Default())
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, n.Stop(ctx))
	}()
	return fn(ctx, n.Ledger())
}

func proposeCommand(flags *globalFlags) *cobra.Command {
	var description, target, amount string
	cmd := &cobra.Command{
		Use:   "propose",
		Short: "Create a proposal to transfer an amount to a target",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := flags.request()
			if err != nil {
				return err
			}
			amt, err := parseAmount(amount)
			if err != nil {
				return err
			}
			return withLedger(cmd, func(ctx context.Context, ls *ledger.LedgerState) error {
				id, err := ls.CreateProposal(
					ctx,
					description,
					governance.Principal(target),
					amt,
					req.caller,
					req.now,
				)
				if err != nil {
					return err
				}
				p, err := ls.Proposal(id)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), newProposalView(p, req.now))
			})
		},
	}
	cmd.Flags().StringVar(&description, "description", "", "proposal description")
	cmd.Flags().StringVar(&target, "target", "", "principal receiving the transfer")
	cmd.Flags().StringVar(&amount, "amount", "0", "amount to transfer")
	_ = cmd.MarkFlagRequired("target")
	return cmd
}

func voteCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "vote <proposal-id> <for|against>",
		Short: "Vote on an open proposal",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseProposalID(args[0])
			if err != nil {
				return err
			}
			ballot, err := governance.ParseBallot(args[1])
			if err != nil {
				return err
			}
			req, err := flags.request()
			if err != nil {
				return err
			}
			return withLedger(cmd, func(ctx context.Context, ls *ledger.LedgerState) error {
				if err := ls.Vote(ctx, id, ballot, req.caller, req.now); err != nil {
					return err
				}
				p, err := ls.Proposal(id)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), newProposalView(p, req.now))
			})
		},
	}
}

func executeCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "execute <proposal-id>",
		Short: "Execute a proposal whose voting period has ended",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseProposalID(args[0])
			if err != nil {
				return err
			}
			req, err := flags.request()
			if err != nil {
				return err
			}
			return withLedger(cmd, func(ctx context.Context, ls *ledger.LedgerState) error {
				effect, err := ls.Execute(ctx, id, req.caller, req.now)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), newEffectView(ledger.Effect{Effect: effect}))
			})
		},
	}
}

func delegateCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "delegate <to> <amount>",
		Short: "Move voting power from the caller to another principal",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseAmount(args[1])
			if err != nil {
				return err
			}
			req, err := flags.request()
			if err != nil {
				return err
			}
			to := governance.Principal(args[0])
			return withLedger(cmd, func(ctx context.Context, ls *ledger.LedgerState) error {
				if err := ls.Delegate(ctx, to, amount, req.caller, req.now); err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), map[governance.Principal]uint64{
					req.caller: ls.VotingPower(req.caller),
					to:         ls.VotingPower(to),
				})
			})
		},
	}
}

func settleCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "settle <proposal-id>",
		Short: "Mark the transfer of an executed proposal as performed",
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
			return withLedger(cmd, func(ctx context.Context, ls *ledger.LedgerState) error {
				return ls.SettleEffect(ctx, id, now)
			})
		},
	}
}
