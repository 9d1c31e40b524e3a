// Copyright 2026 gorse Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package metadata

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sony/gobreaker/v2"
)

const (
	resultHit     = "hit"
	resultSuccess = "success"
	resultFailure = "failure"
	resultReject  = "rejected"
)

var (
	FetchTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hybrid",
		Subsystem: "metadata",
		Name:      "fetch_total",
		Help:      "Number of metadata lookups by result.",
	}, []string{"result"})
	FetchSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "hybrid",
		Subsystem: "metadata",
		Name:      "fetch_seconds",
		Help:      "Latency of metadata requests to the upstream API.",
		Buckets:   prometheus.ExponentialBuckets(0.01, 2, 10),
	})
	BreakerState = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "hybrid",
		Subsystem: "metadata",
		Name:      "breaker_state",
		Help:      "State of the circuit breaker: 0 closed, 1 half-open, 2 open.",
	})
)

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
