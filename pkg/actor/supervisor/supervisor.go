// Package supervisor implements the top-level runtime described in spec
// §4.9: it boots a fixed set of workers, drives their timer wheels with
// a coherent wall clock on a fixed tick, and coordinates graceful
// shutdown.
//
// Grounded on the teacher's GoCMD.Run loop (pkg/core/gocmd.go), which
// already does boot-then-tick-then-drain; generalized here from a
// single global scheduler to the many-worker fan-out spec §4.9
// requires. The tick is a time.Ticker with a configurable period
// (DefaultTick, 10ms, when none is given) read in a select alongside
// the stop channel.
package supervisor

import (
	"sync/atomic"
	"time"

	"github.com/fluxorio/actorrt/pkg/actor"
	"github.com/fluxorio/actorrt/pkg/actor/router"
	"github.com/fluxorio/actorrt/pkg/actor/worker"
	"github.com/fluxorio/actorrt/pkg/metrics"
)

// DefaultTick is the spec §4.5 default tick period.
const DefaultTick = 10 * time.Millisecond

// Supervisor owns the worker pool and the router, and drives both with
// a single tick loop running on its own goroutine.
type Supervisor struct {
	router  *router.Router
	workers []*worker.Worker
	tick    time.Duration
	metrics *metrics.Metrics
	running atomic.Bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// New boots workerCount workers (1..workerCount) and their shared
// router, leaving every worker in the "ready" state but with boot not
// yet marked done — services added before Start() will not receive
// Start() until the supervisor's own Start runs (spec §4.9 step 1).
func New(workerCount int, tick time.Duration) *Supervisor {
	if tick <= 0 {
		tick = DefaultTick
	}
	r := router.New(workerCount)
	workers := make([]*worker.Worker, 0, workerCount)
	for i := 1; i <= workerCount; i++ {
		workers = append(workers, worker.New(uint8(i), r))
	}
	r.SetWorkers(workers)

	return &Supervisor{
		router:  r,
		workers: workers,
		tick:    tick,
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
	}
}

// AttachMetrics wires a Prometheus Metrics instance into every worker
// and enables tick-duration observation in the supervisor's own loop.
// Optional: a Supervisor with no attached Metrics behaves identically,
// just without instrumentation.
func (s *Supervisor) AttachMetrics(m *metrics.Metrics) {
	s.metrics = m
	s.router.AttachMetrics(m)
	for _, w := range s.workers {
		w.AttachMetrics(m)
	}
}

// Router exposes the supervisor's router, e.g. for service registration
// before Start or CLI admin commands.
func (s *Supervisor) Router() *router.Router { return s.router }

// RegisterFactory registers a service constructor on the supervisor's
// router.
func (s *Supervisor) RegisterFactory(typeName string, f actor.Factory) {
	s.router.RegisterFactory(typeName, f)
}

// Start transitions every worker's boot-done flag and begins the tick
// loop on a dedicated goroutine. Start does not block; call Wait or
// Stop to synchronize with shutdown.
func (s *Supervisor) Start() {
	if !s.running.CompareAndSwap(false, true) {
		return
	}
	now := nowMS()
	s.router.SetNow(now)
	for _, w := range s.workers {
		w.MarkBootDone()
	}
	go s.loop()
}

// loop is the supervisor's own goroutine: sample the wall clock, post a
// debounced update task to every worker, then sleep to the next tick
// boundary (spec §4.5/§4.9).
func (s *Supervisor) loop() {
	defer close(s.doneCh)
	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			start := time.Now()
			s.router.SetNow(nowMS())
			for _, w := range s.workers {
				w.RunUpdate()
			}
			if s.metrics != nil {
				s.metrics.TickDuration.Observe(time.Since(start).Seconds())
			}
			if s.allExited() {
				return
			}
		}
	}
}

func (s *Supervisor) allExited() bool {
	for _, w := range s.workers {
		if w.State() != worker.StateExited {
			return false
		}
	}
	return true
}

// Stop signals every worker to begin graceful shutdown (spec §4.9 step
// 2: Exit every hosted service, then exit once the last one is
// removed), waits for the tick loop to notice every worker has exited,
// and joins each worker thread in reverse creation order.
func (s *Supervisor) Stop() {
	for _, w := range s.workers {
		w.Stop()
	}
	select {
	case <-s.doneCh:
	case <-time.After(30 * time.Second):
	}
	for i := len(s.workers) - 1; i >= 0; i-- {
		s.workers[i].Join()
	}
}

// Wait blocks until the tick loop has stopped (either because every
// worker exited or Stop was called).
func (s *Supervisor) Wait() {
	<-s.doneCh
}

// WorkerCount returns the number of workers this supervisor owns.
func (s *Supervisor) WorkerCount() int { return len(s.workers) }

// nowMS returns milliseconds since the Unix epoch, the supervisor's
// single sample point for the coherent wall clock every worker and
// service reads through Router.Now() (spec §9).
func nowMS() int64 {
	return time.Now().UnixMilli()
}
