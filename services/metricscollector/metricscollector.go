// Package metricscollector is a non-unique service that periodically
// snapshots router-wide service counts into the Prometheus registry
// attached to the running supervisor, re-affirming the per-worker
// ServiceCount gauge independent of the add/remove-triggered updates
// the worker itself already performs.
//
// Grounded on the teacher's Reactor.SetPeriodic pattern
// (pkg/reactor/reactor.go) generalized from a wall-clock timer to the
// runtime's own Repeat/OnTimer contract.
package metricscollector

import (
	"encoding/json"
	"strconv"

	"github.com/fluxorio/actorrt/pkg/actor"
)

// Config controls the snapshot cadence.
type Config struct {
	IntervalMS int64 `json:"interval_ms"`
}

// Service periodically re-publishes worker service counts to the
// Prometheus registry, if one is attached to the supervisor.
type Service struct {
	actor.BaseService
	intervalMS int64
}

// New is registered as the "metrics" service type's factory.
func New() actor.Service {
	return &Service{}
}

func (s *Service) Init(ctx actor.ServiceContext, config []byte) bool {
	s.Ctx = ctx
	s.intervalMS = 1000
	if len(config) > 0 {
		var cfg Config
		if err := json.Unmarshal(config, &cfg); err == nil && cfg.IntervalMS > 0 {
			s.intervalMS = cfg.IntervalMS
		}
	}
	return true
}

func (s *Service) Start() {
	_, _ = s.Ctx.Repeat(s.intervalMS, 0)
}

func (s *Service) OnTimer(_ uint64, _ bool) {
	m := s.Ctx.Metrics()
	if m == nil {
		return
	}
	counts := s.Ctx.ServiceCounts()
	for idx := 1; idx < len(counts); idx++ {
		m.ServiceCount.WithLabelValues(strconv.Itoa(idx)).Set(float64(counts[idx]))
	}
}
