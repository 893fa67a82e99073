// Package router implements the process-wide routing surface described
// in spec §4.6: service placement, cross-worker send/broadcast/request-
// reply, the factory registry, the unique-name table, and the env KV
// store.
//
// Grounded on the teacher's EventBus (pkg/core/eventbus_impl.go), which
// already centralizes address resolution and fan-out delivery behind a
// single type; generalized here from string-topic pub/sub to the
// numeric-address unicast/broadcast model spec §3 and §4.6 require, and
// split from a single global instance into one Router per supervisor so
// tests can run multiple independent runtimes in-process.
package router

import (
	"sync"
	"sync/atomic"

	"github.com/fluxorio/actorrt/pkg/actor"
	"github.com/fluxorio/actorrt/pkg/actor/worker"
	"github.com/fluxorio/actorrt/pkg/metrics"
)

// Router implements actor.Router. It is constructed before any worker
// (workers need the interface at construction time) and populated with
// the worker slice once the supervisor has spun every worker's thread
// up, breaking the otherwise-cyclic router<->worker ownership (spec
// §9's ownership tiers, expressed as a two-phase init instead of a
// forward-declared pointer).
type Router struct {
	workerCount int

	mu      sync.RWMutex
	workers []*worker.Worker // index 0 unused; workers[1..workerCount]

	counts []atomic.Int32 // per-worker live service count, index-aligned with workers
	rrNext atomic.Uint32  // global round-robin cursor

	factoriesMu sync.RWMutex
	factories   map[string]actor.Factory

	uniqueMu sync.RWMutex
	unique   map[string]actor.Address

	envMu sync.RWMutex
	env   map[string]string

	nowMS atomic.Int64

	metricsMu sync.RWMutex
	metrics   *metrics.Metrics
}

// New returns a Router sized for workerCount workers (1-based indices
// 1..workerCount). Call SetWorkers once every worker has been
// constructed.
func New(workerCount int) *Router {
	return &Router{
		workerCount: workerCount,
		workers:     make([]*worker.Worker, workerCount+1),
		counts:      make([]atomic.Int32, workerCount+1),
		factories:   make(map[string]actor.Factory),
		unique:      make(map[string]actor.Address),
		env:         make(map[string]string),
	}
}

// SetWorkers completes the two-phase init: records the worker slice the
// supervisor built using this same Router as each worker's actor.Router.
func (r *Router) SetWorkers(workers []*worker.Worker) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, w := range workers {
		r.workers[w.Index()] = w
	}
}

// Worker returns the worker at a 1-based index, for supervisor use.
func (r *Router) Worker(idx uint8) *worker.Worker {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.workers[idx]
}

// WorkerCount returns the configured worker count.
func (r *Router) WorkerCount() int { return r.workerCount }

// SetNow stores the supervisor's latest sampled tick, the single
// coherent wall clock every worker and service reads through Now()
// (spec §4.5/§9).
func (r *Router) SetNow(ms int64) { r.nowMS.Store(ms) }

// Now implements actor.Router.
func (r *Router) Now() int64 { return r.nowMS.Load() }

// RegisterFactory registers a named service constructor, analogous to
// the teacher's verticle-factory map (pkg/core/gocmd.go) but keyed by
// the spec's plain type-name strings instead of Go type identity.
func (r *Router) RegisterFactory(typeName string, f actor.Factory) {
	r.factoriesMu.Lock()
	defer r.factoriesMu.Unlock()
	r.factories[typeName] = f
}

// MakeService implements actor.Router.
func (r *Router) MakeService(typeName string) (actor.Service, bool) {
	r.factoriesMu.RLock()
	f, ok := r.factories[typeName]
	r.factoriesMu.RUnlock()
	if !ok {
		return nil, false
	}
	return f(), true
}

// Send implements actor.Router: direct unicast to the envelope's
// receiver worker, after validating it against the current worker
// count (spec §3).
func (r *Router) Send(env *actor.Envelope) error {
	if err := env.Validate(r.workerCount); err != nil {
		return err
	}
	if env.IsBroadcast() {
		return r.Broadcast(env.Sender, env.Header, env.Type, env.Payload())
	}
	w := r.Worker(env.Receiver.WorkerIndex())
	if w == nil {
		return actor.ErrInvalidWorker
	}
	w.Deliver(env)
	return nil
}

// Broadcast implements actor.Router: every worker gets its own envelope
// instance (same payload bytes, distinct struct) so concurrent drains
// on different workers never share mutable envelope state, matching
// the "broadcast excludes sender" rule of spec §4.7.
func (r *Router) Broadcast(sender actor.Address, header string, typ actor.MessageType, payload []byte) error {
	r.mu.RLock()
	workers := make([]*worker.Worker, len(r.workers))
	copy(workers, r.workers)
	r.mu.RUnlock()

	for i := 1; i < len(workers); i++ {
		w := workers[i]
		if w == nil {
			continue
		}
		if sender.IsZero() {
			w.DeliverSystemBroadcast(header, typ, payload)
			continue
		}
		env := &actor.Envelope{Sender: sender, Header: header, Type: typ, Flags: actor.FlagBroadcast}
		env.SetPayload(payload)
		w.Deliver(env)
	}
	return nil
}

// NewService implements actor.Router's placement policy (spec §4.6):
// an explicit, valid worker_hint wins; otherwise prefer an idle
// (service-free) worker round-robin, falling back to a plain global
// round robin when every worker already hosts at least one service.
func (r *Router) NewService(typeName string, config []byte, unique bool, workerHint uint8, creator actor.Address, session int32) error {
	target := workerHint
	if !actor.ValidWorkerIndex(target, r.workerCount) {
		target = r.pickTarget()
	}
	w := r.Worker(target)
	if w == nil {
		return actor.ErrInvalidWorker
	}
	w.AddService(typeName, config, unique, creator, session)
	return nil
}

// pickTarget implements the idle-worker-preferred round robin using the
// lock-free counters NotifyServiceAdded/NotifyServiceRemoved maintain,
// never the blocking Worker.Shared() query (which would deadlock a
// worker that lands on itself).
func (r *Router) pickTarget() uint8 {
	n := uint32(r.workerCount)
	start := r.rrNext.Add(1)
	for i := uint32(0); i < n; i++ {
		idx := uint8((start+i-1)%n) + 1
		if r.counts[idx].Load() == 0 {
			return idx
		}
	}
	return uint8((start-1)%n) + 1
}

// AttachMetrics records the supervisor's Prometheus handle so services
// can reach it through ServiceContext.Metrics (e.g. the built-in
// metricscollector service).
func (r *Router) AttachMetrics(m *metrics.Metrics) {
	r.metricsMu.Lock()
	defer r.metricsMu.Unlock()
	r.metrics = m
}

// Metrics implements actor.Router.
func (r *Router) Metrics() *metrics.Metrics {
	r.metricsMu.RLock()
	defer r.metricsMu.RUnlock()
	return r.metrics
}

// ServiceCounts returns a snapshot of the per-worker live service counts
// maintained by NotifyServiceAdded/NotifyServiceRemoved, indexed 1..
// WorkerCount(). Unlike Worker.ServiceCount, this never blocks on a
// worker's task queue, so it is safe to call from inside any worker's
// own goroutine (e.g. the metricscollector service's own Dispatch or
// OnTimer) without risking the self-deadlock a blocking query would
// risk when it lands on the calling worker itself.
func (r *Router) ServiceCounts() []int32 {
	counts := make([]int32, len(r.counts))
	for i := range r.counts {
		counts[i] = r.counts[i].Load()
	}
	return counts
}

// NotifyServiceAdded implements actor.Router.
func (r *Router) NotifyServiceAdded(workerIdx uint8) {
	r.counts[workerIdx].Add(1)
}

// NotifyServiceRemoved implements actor.Router.
func (r *Router) NotifyServiceRemoved(workerIdx uint8) {
	if r.counts[workerIdx].Add(-1) < 0 {
		r.counts[workerIdx].Store(0)
	}
}

// RemoveService implements actor.Router.
func (r *Router) RemoveService(id actor.Address, sender actor.Address, session int32) error {
	w := r.Worker(id.WorkerIndex())
	if w == nil {
		return actor.ErrInvalidWorker
	}
	w.RemoveService(id, sender, session)
	return nil
}

// SetUniqueService implements actor.Router: first writer wins, matching
// the unique-name collision scenario of spec §8.
func (r *Router) SetUniqueService(name string, addr actor.Address) bool {
	r.uniqueMu.Lock()
	defer r.uniqueMu.Unlock()
	if _, taken := r.unique[name]; taken {
		return false
	}
	r.unique[name] = addr
	return true
}

// GetUniqueService implements actor.Router.
func (r *Router) GetUniqueService(name string) (actor.Address, bool) {
	r.uniqueMu.RLock()
	defer r.uniqueMu.RUnlock()
	addr, ok := r.unique[name]
	return addr, ok
}

// ReleaseUniqueService frees name if it currently points at addr; used
// when a unique service is removed so the name can be reclaimed.
func (r *Router) ReleaseUniqueService(name string, addr actor.Address) {
	r.uniqueMu.Lock()
	defer r.uniqueMu.Unlock()
	if r.unique[name] == addr {
		delete(r.unique, name)
	}
}

// Env implements actor.Router.
func (r *Router) Env(key string) (string, bool) {
	r.envMu.RLock()
	defer r.envMu.RUnlock()
	v, ok := r.env[key]
	return v, ok
}

// SetEnv implements actor.Router.
func (r *Router) SetEnv(key, value string) {
	r.envMu.Lock()
	defer r.envMu.Unlock()
	r.env[key] = value
}
