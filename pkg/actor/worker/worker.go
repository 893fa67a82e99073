// Package worker implements the per-worker thread described in spec
// §4.7: a dedicated goroutine that owns a mailbox, a task queue, and a
// timer wheel, and multiplexes many single-threaded services.
//
// Grounded on the teacher's BaseVerticle, which gives each verticle its
// own single-worker Executor (pkg/core/base_verticle.go) — generalized
// here so one worker's single goroutine is the shared thread for every
// service it hosts, and the task-queue pop loop (not a channel range) is
// the event loop, matching spec §4.4's "the worker thread pops one task
// per iteration".
package worker

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fluxorio/actorrt/pkg/actor"
	"github.com/fluxorio/actorrt/pkg/actor/queue"
	"github.com/fluxorio/actorrt/pkg/actor/timer"
	"github.com/fluxorio/actorrt/pkg/metrics"
)

// State is the worker's monotonic lifecycle state (spec §4.7).
type State int32

const (
	StateInit State = iota
	StateReady
	StateStopping
	StateExited
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateReady:
		return "ready"
	case StateStopping:
		return "stopping"
	case StateExited:
		return "exited"
	default:
		return "unknown"
	}
}

// prefabKey identifies a distinct broadcast buffer, not just a shape:
// the payload is part of the key so two system broadcasts sharing a
// header/type but carrying different bytes (e.g. two remove_service
// exit notices in the same tick) never collide on one cached envelope.
type prefabKey struct {
	header  string
	typ     actor.MessageType
	payload string
}

// Worker owns a dedicated goroutine, its mailbox, task queue, timer
// wheel, and service container.
type Worker struct {
	idx    uint8
	router actor.Router

	container *container
	mailbox   *queue.Queue[*actor.Envelope]
	tasks     *queue.Queue[func()]
	timers    *timer.Wheel

	state        atomic.Int32
	drainPending atomic.Bool
	updatePending atomic.Bool
	bootDone     atomic.Bool

	prefabMu    sync.Mutex
	prefabCache map[prefabKey]*actor.Envelope

	metrics *metrics.Metrics

	readyCh chan struct{}
	wg      sync.WaitGroup
}

// New creates a worker and spawns its dedicated thread, blocking until
// the thread reports ready (spec §4.7: "constructor waits until
// state=ready").
func New(idx uint8, router actor.Router) *Worker {
	w := &Worker{
		idx:         idx,
		router:      router,
		container:   newContainer(idx),
		mailbox:     queue.New[*actor.Envelope](),
		tasks:       queue.New[func()](),
		timers:      timer.New(),
		prefabCache: make(map[prefabKey]*actor.Envelope),
		readyCh:     make(chan struct{}),
	}
	w.wg.Add(1)
	go w.run()
	<-w.readyCh
	return w
}

// AttachMetrics wires a Prometheus collector set into the worker. Safe
// to call once, before the worker starts receiving traffic; nil-safe if
// never called (every instrumentation point below is a guarded no-op).
func (w *Worker) AttachMetrics(m *metrics.Metrics) {
	w.metrics = m
}

func (w *Worker) idxLabel() string {
	return strconv.Itoa(int(w.idx))
}

// Index returns this worker's 1-based index.
func (w *Worker) Index() uint8 { return w.idx }

// State returns the worker's current lifecycle state.
func (w *Worker) State() State { return State(w.state.Load()) }

// Shared reports whether the worker currently hosts zero services,
// making it a preferred placement target (spec §4.6/§4.8).
func (w *Worker) Shared() bool {
	done := make(chan bool, 1)
	w.PostTask(func() { done <- w.container.shared() })
	return <-done
}

// ServiceCount returns the number of live services, used by admin
// "stats" verbs and tests.
func (w *Worker) ServiceCount() int {
	done := make(chan int, 1)
	w.PostTask(func() { done <- w.container.count() })
	return <-done
}

// run is the worker's event loop: one task popped and executed per
// iteration, with no preemption inside a task (spec §4.4/§4.7).
func (w *Worker) run() {
	defer w.wg.Done()
	w.state.Store(int32(StateReady))
	close(w.readyCh)

	for {
		if State(w.state.Load()) == StateExited {
			return
		}
		task, ok := w.tasks.PopFront()
		if !ok {
			time.Sleep(time.Millisecond)
			continue
		}
		task()
	}
}

// PostTask enqueues a zero-argument closure onto the worker's task
// queue; it is the sole way anything outside the worker's own goroutine
// touches worker state.
func (w *Worker) PostTask(fn func()) {
	w.tasks.Push(fn)
}

// Join blocks until the worker's goroutine has returned, used by the
// supervisor's reverse-order shutdown join (spec §4.9).
func (w *Worker) Join() {
	w.wg.Wait()
}

// Stop enqueues the stop task described in spec §4.7: if the worker
// hosts no services it exits immediately, otherwise it transitions to
// stopping and calls Exit on every hosted service. Re-entrant: a second
// Stop (e.g. a "drain" runcmd followed by the supervisor's own Stop)
// is a no-op once the worker is already stopping or exited.
func (w *Worker) Stop() {
	w.PostTask(func() {
		if State(w.state.Load()) == StateStopping || State(w.state.Load()) == StateExited {
			return
		}
		if w.container.count() == 0 {
			w.state.Store(int32(StateExited))
			return
		}
		w.state.Store(int32(StateStopping))
		w.container.forEach(func(r *record) {
			if r.ok {
				r.svc.Exit()
			}
		})
	})
}

// MarkBootDone is posted once by the supervisor when it transitions to
// ready, and calls Start on every already-initialized service (spec
// §4.9 step 1).
func (w *Worker) MarkBootDone() {
	w.PostTask(func() {
		w.bootDone.Store(true)
		w.container.forEach(func(r *record) {
			if r.ok && !r.started {
				r.svc.Start()
				r.started = true
			}
		})
	})
}

// AddService implements spec §4.7's add_service: allocate a local id,
// construct via the router's factory, call Init, and reply the new
// address (or the relevant actor.Error's Code on failure) to
// creator/session.
func (w *Worker) AddService(typeName string, config []byte, unique bool, creator actor.Address, session int32) {
	w.PostTask(func() {
		fail := func(cause *actor.Error) {
			if w.metrics != nil {
				w.metrics.ServiceAddTotal.WithLabelValues("error").Inc()
			}
			w.replyAddResult(creator, session, 0, cause)
		}

		if State(w.state.Load()) != StateReady {
			fail(actor.ErrWorkerNotReady)
			return
		}

		localID, ok := w.container.allocate()
		if !ok {
			fail(actor.ErrLocalIDExhausted)
			return
		}

		svc, ok := w.router.MakeService(typeName)
		if !ok {
			fail(actor.ErrFactoryNotFound)
			return
		}

		addr := actor.NewAddress(w.idx, localID)
		ctx := newServiceContext(w, addr)

		if !svc.Init(ctx, config) {
			fail(actor.ErrInitFailed)
			return
		}

		rec := &record{id: addr, unique: unique, ok: true, svc: svc}
		w.container.put(rec)
		w.router.NotifyServiceAdded(w.idx)

		if w.bootDone.Load() {
			svc.Start()
			rec.started = true
		}

		if w.metrics != nil {
			w.metrics.ServiceAddTotal.WithLabelValues("ok").Inc()
			w.metrics.ServiceCount.WithLabelValues(w.idxLabel()).Set(float64(w.container.count()))
		}

		w.replyAddResult(creator, session, addr, nil)
	})
}

// replyAddResult replies the new address on success, or cause's Code on
// failure (nil cause falls back to "0" for callers that have no
// specific reason to report).
func (w *Worker) replyAddResult(creator actor.Address, session int32, addr actor.Address, cause *actor.Error) {
	if creator.IsZero() || session == 0 {
		return
	}
	payload := []byte("0")
	if cause != nil {
		payload = []byte(cause.Code)
	}
	if addr != 0 {
		payload = []byte(fmt.Sprintf("%d", uint32(addr)))
	}
	env := &actor.Envelope{
		Sender:   0,
		Receiver: creator,
		Session:  -session,
		Header:   "",
		Type:     actor.TypeText,
	}
	env.SetPayload(payload)
	_ = w.router.Send(env)
}

// RemoveService implements spec §4.7's remove_service: destroy the
// service, erase it from the container, broadcast a system "exit"
// envelope, and reply to sender/session.
func (w *Worker) RemoveService(id actor.Address, sender actor.Address, session int32) {
	w.PostTask(func() {
		localID := id.LocalID()
		rec, ok := w.container.get(localID)
		if !ok {
			if w.metrics != nil {
				w.metrics.ServiceRemoveTotal.WithLabelValues("error").Inc()
			}
			w.replyError(sender, session, "router::remove_service ", actor.ErrServiceNotFound.Code)
			return
		}

		rec.svc.Destroy()
		rec.ok = false
		w.container.remove(localID)
		w.router.NotifyServiceRemoved(w.idx)
		if rec.unique && rec.name != "" {
			w.router.ReleaseUniqueService(rec.name, rec.id)
		}
		if w.metrics != nil {
			w.metrics.ServiceRemoveTotal.WithLabelValues("ok").Inc()
			w.metrics.ServiceCount.WithLabelValues(w.idxLabel()).Set(float64(w.container.count()))
		}

		exitJSON := fmt.Sprintf(`{"name":%q,"serviceid":"%08x","errmsg":"service destroy"}`, rec.name, uint32(id))
		_ = w.router.Broadcast(0, "exit", actor.TypeSystem, []byte(exitJSON))

		if !sender.IsZero() && session != 0 {
			_ = w.router.Send(&actor.Envelope{
				Sender:   0,
				Receiver: sender,
				Session:  -session,
				Header:   "",
				Type:     actor.TypeText,
			})
		}

		if w.container.count() == 0 && State(w.state.Load()) == StateStopping {
			w.state.Store(int32(StateExited))
		}
	})
}

// Deliver pushes an envelope to the mailbox and, on the 0->1 transition,
// schedules a single coalesced drain task (spec §4.3/§4.7).
func (w *Worker) Deliver(env *actor.Envelope) {
	size := w.mailbox.Push(env)
	if w.metrics != nil {
		w.metrics.MailboxDepth.WithLabelValues(w.idxLabel()).Set(float64(size))
	}
	if size == 1 && w.drainPending.CompareAndSwap(false, true) {
		w.PostTask(w.drain)
	}
}

func (w *Worker) drain() {
	batch := w.mailbox.Drain()
	w.drainPending.Store(false)

	var lastLocalID uint32
	var lastRec *record
	haveLast := false

	for _, env := range batch {
		if env.IsBroadcast() {
			w.container.forEach(func(r *record) {
				if r.ok && r.id != env.Sender {
					r.svc.Dispatch(env)
					if w.metrics != nil {
						w.metrics.DispatchTotal.WithLabelValues(w.idxLabel()).Inc()
					}
				}
			})
			continue
		}

		localID := env.Receiver.LocalID()
		var rec *record
		var ok bool
		if haveLast && localID == lastLocalID {
			rec, ok = lastRec, lastRec != nil
		} else {
			rec, ok = w.container.get(localID)
			lastLocalID, lastRec, haveLast = localID, rec, true
		}

		if !ok || !rec.ok {
			w.deadLetter(env)
			continue
		}
		rec.svc.Dispatch(env)
		if w.metrics != nil {
			w.metrics.DispatchTotal.WithLabelValues(w.idxLabel()).Inc()
		}
	}
}

// deadLetter implements the dead-letter policy of spec §4.7: reply an
// error envelope to a non-zero sender, drop silently for sender==0.
func (w *Worker) deadLetter(env *actor.Envelope) {
	if w.metrics != nil {
		w.metrics.DeadLetterTotal.WithLabelValues(w.idxLabel()).Inc()
	}
	if env.Sender.IsZero() {
		return
	}
	dump := hex.EncodeToString(env.Payload())
	reply := &actor.Envelope{
		Sender:   0,
		Receiver: env.Sender,
		Session:  -env.Session,
		Header:   "worker::handle_one ",
		Type:     actor.TypeError,
	}
	reply.SetPayload([]byte(dump))
	_ = w.router.Send(reply)
}

func (w *Worker) replyError(sender actor.Address, session int32, header, msg string) {
	if sender.IsZero() {
		return
	}
	env := &actor.Envelope{
		Sender:   0,
		Receiver: sender,
		Session:  -session,
		Header:   header,
		Type:     actor.TypeError,
	}
	env.SetPayload([]byte(msg))
	_ = w.router.Send(env)
}

// RunUpdate is called once per tick by the supervisor's tick loop. An
// internal atomic flag ensures at most one update task is ever queued
// per worker even if the previous tick's task hasn't run yet (spec
// §4.5), clearing the per-tick prefab cache and advancing the worker's
// timer wheel.
func (w *Worker) RunUpdate() {
	if !w.updatePending.CompareAndSwap(false, true) {
		return
	}
	w.PostTask(func() {
		w.updatePending.Store(false)
		w.prefabMu.Lock()
		w.prefabCache = make(map[prefabKey]*actor.Envelope)
		w.prefabMu.Unlock()

		now := w.router.Now()
		w.timers.Advance(now, func(timerID uint64, owner uint32, isLast bool) {
			rec, ok := w.container.get(owner)
			if !ok {
				// Owning service destroyed since the timer was armed;
				// lazy removal on next fire keeps RemoveService O(services)
				// rather than O(timers), per spec §9.
				w.timers.Remove(timerID)
				return
			}
			rec.svc.OnTimer(timerID, isLast)
			if w.metrics != nil {
				w.metrics.TimerFiresTotal.WithLabelValues(w.idxLabel()).Inc()
			}
		})
	})
}

// RunCmd implements spec §4.7's dotted-path admin command dispatch:
// scope.id.verb, where scope "worker" is handled locally.
func (w *Worker) RunCmd(sender actor.Address, scope, verb string, session int32) {
	w.PostTask(func() {
		var result string
		switch scope {
		case "worker":
			switch verb {
			case "stats":
				result = fmt.Sprintf(`{"index":%d,"services":%d,"state":%q}`, w.idx, w.container.count(), State(w.state.Load()))
			case "drain":
				w.Stop()
				result = "ok"
			default:
				if w.metrics != nil {
					w.metrics.AdminCommandTotal.WithLabelValues(verb, "error").Inc()
				}
				w.replyError(sender, session, "worker::runcmd ", "unknown verb: "+verb)
				return
			}
		default:
			if w.metrics != nil {
				w.metrics.AdminCommandTotal.WithLabelValues(verb, "error").Inc()
			}
			w.replyError(sender, session, "worker::runcmd ", "unknown scope: "+scope)
			return
		}
		if w.metrics != nil {
			w.metrics.AdminCommandTotal.WithLabelValues(verb, "ok").Inc()
		}
		if sender.IsZero() || session == 0 {
			return
		}
		env := &actor.Envelope{
			Sender:   0,
			Receiver: sender,
			Session:  -session,
			Type:     actor.TypeText,
		}
		env.SetPayload([]byte(result))
		_ = w.router.Send(env)
	})
}

// DeliverSystemBroadcast delivers a sender=0 (system-originated)
// broadcast, reusing a cached envelope for the exact (header, type,
// payload) buffer across repeated calls within the same tick instead of
// re-encoding it each time (spec §9 "prefabs_" anomaly) — e.g.
// RemoveService's per-service "exit" notice, one call per removed
// service per tick. Caching is restricted to system broadcasts because
// their sender never varies, so a cached envelope's exclusion behavior
// in drain (§4.7's sender != receiver
// check, always true for sender 0) stays correct regardless of which
// call originally built it.
func (w *Worker) DeliverSystemBroadcast(header string, typ actor.MessageType, payload []byte) {
	w.Deliver(w.prefab(header, typ, payload))
}

func (w *Worker) prefab(header string, typ actor.MessageType, payload []byte) *actor.Envelope {
	key := prefabKey{header: header, typ: typ, payload: string(payload)}
	w.prefabMu.Lock()
	defer w.prefabMu.Unlock()
	if env, ok := w.prefabCache[key]; ok {
		return env
	}
	env := &actor.Envelope{Header: header, Type: typ, Flags: actor.FlagBroadcast}
	env.SetPayload(payload)
	w.prefabCache[key] = env
	return env
}
