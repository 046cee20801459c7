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

	"github.com/blinklabs-io/agora/governance"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type stateMetrics struct {
	proposalsCreated  prometheus.Counter
	votesCast         *prometheus.CounterVec
	proposalsExecuted prometheus.Counter
	delegations       prometheus.Counter
	rejected          *prometheus.CounterVec
	submitLatency     prometheus.Histogram
	proposals         prometheus.Gauge
	totalVotingPower  prometheus.Gauge
	journalSequence   prometheus.Gauge
	pendingEffects    prometheus.Gauge
}

func (m *stateMetrics) init(promRegistry prometheus.Registerer) {
	promautoFactory := promauto.With(promRegistry)
	m.proposalsCreated = promautoFactory.NewCounter(prometheus.CounterOpts{
		Name: "agora_governance_proposals_created_total",
		Help: "total proposals created",
	})
	m.votesCast = promautoFactory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agora_governance_votes_cast_total",
			Help: "total votes cast by ballot",
		},
		[]string{"ballot"},
	)
	m.proposalsExecuted = promautoFactory.NewCounter(prometheus.CounterOpts{
		Name: "agora_governance_proposals_executed_total",
		Help: "total proposals executed",
	})
	m.delegations = promautoFactory.NewCounter(prometheus.CounterOpts{
		Name: "agora_governance_delegations_total",
		Help: "total accepted delegations",
	})
	m.rejected = promautoFactory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agora_governance_requests_rejected_total",
			Help: "total rejected requests by type and reason",
		},
		[]string{"type", "reason"},
	)
	m.submitLatency = promautoFactory.NewHistogram(prometheus.HistogramOpts{
		Name:    "agora_governance_submit_duration_seconds",
		Help:    "latency of accepted requests including persistence",
		Buckets: prometheus.ExponentialBuckets(0.0001, 2, 15), // 100us to ~1.6s
	})
	m.proposals = promautoFactory.NewGauge(prometheus.GaugeOpts{
		Name: "agora_governance_proposals",
		Help: "number of proposals",
	})
	m.totalVotingPower = promautoFactory.NewGauge(prometheus.GaugeOpts{
		Name: "agora_governance_voting_power_total",
		Help: "sum of voting power held by all principals",
	})
	m.journalSequence = promautoFactory.NewGauge(prometheus.GaugeOpts{
		Name: "agora_governance_journal_sequence",
		Help: "sequence of the last journaled request",
	})
	m.pendingEffects = promautoFactory.NewGauge(prometheus.GaugeOpts{
		Name: "agora_governance_effects_pending",
		Help: "executed transfers not yet settled",
	})
}

// rejectionReason returns a metric label for a failed request
func rejectionReason(err error) string {
	switch {
	case errors.Is(err, governance.ErrNoVotingPower):
		return "no_voting_power"
	case errors.Is(err, governance.ErrAlreadyVoted):
		return "already_voted"
	case errors.Is(err, governance.ErrProposalNotFound):
		return "proposal_not_found"
	case errors.Is(err, governance.ErrVotingEnded):
		return "voting_ended"
	case errors.Is(err, governance.ErrAlreadyExecuted):
		return "already_executed"
	case errors.Is(err, governance.ErrVotingNotEnded):
		return "voting_not_ended"
	case errors.Is(err, governance.ErrProposalRejected):
		return "proposal_rejected"
	case errors.Is(err, governance.ErrQuorumNotReached):
		return "quorum_not_reached"
	case errors.Is(err, governance.ErrInsufficientVotingPower):
		return "insufficient_voting_power"
	case errors.Is(err, governance.ErrAmountOutOfRange):
		return "amount_out_of_range"
	case errors.Is(err, governance.ErrDeadlineOutOfRange):
		return "deadline_out_of_range"
	case errors.Is(err, governance.ErrTallyOverflow):
		return "tally_overflow"
	case errors.Is(err, governance.ErrInvalidBallot):
		return "invalid_ballot"
	case errors.Is(err, governance.ErrUnknownRequest):
		return "unknown_request"
	case errors.Is(err, ErrTimeOutOfRange):
		return "time_out_of_range"
	default:
		return "internal"
	}
}
