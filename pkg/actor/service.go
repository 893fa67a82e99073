package actor

import "github.com/fluxorio/actorrt/pkg/metrics"

// Service is the capability set an embedded scripting engine (or any
// native Go package) implements to act as a runtime actor. The runtime
// never downcasts a Service; every capability is called through this
// interface, mirroring the teacher's Verticle/AsyncVerticle split
// (pkg/core/verticle.go) generalized to the six-method lifecycle of
// spec §6.
type Service interface {
	// Init is called once on the owning worker with the raw service
	// config. Returning false discards the service.
	Init(ctx ServiceContext, config []byte) bool

	// Start is called once, after the runtime reaches the ready state,
	// or immediately if the service was created after boot.
	Start()

	// Dispatch is called once per envelope addressed to this service.
	// Implementations must not block.
	Dispatch(env *Envelope)

	// OnTimer is called by the owning worker's timer callback.
	OnTimer(timerID uint64, isLast bool)

	// Exit is the graceful-shutdown hook; the default behavior for a
	// service that embeds BaseService is to call Quit, which issues
	// RemoveService(self).
	Exit()

	// Destroy is the final cleanup hook; ok is cleared immediately
	// after it runs.
	Destroy()
}

// ServiceContext is the narrow, non-owning handle a Service receives at
// construction time: enough to address itself, talk to the router, and
// arm timers, without exposing worker or supervisor internals the
// service must never reach through (ownership tiers, spec §9).
type ServiceContext interface {
	// Self returns this service's own address.
	Self() Address

	// Send routes an envelope through the router.
	Send(receiver Address, header string, typ MessageType, payload []byte, session int32) error

	// Response is a convenience wrapper building and sending a reply.
	Response(to Address, header string, payload []byte, session int32) error

	// Broadcast fans an envelope out to every live service on every
	// worker except the sender.
	Broadcast(header string, typ MessageType, payload []byte) error

	// NewService requests creation of another service via the router.
	// Creation always completes asynchronously: the owning worker replies
	// to this service's own address at the given session with the new
	// address in decimal, or on failure with the failing actor.Error's
	// Code (e.g. "INIT_FAILED"), not "0".
	NewService(typeName string, config []byte, unique bool, workerHint uint8, session int32) error

	// RemoveService requests this (or another) service's removal.
	RemoveService(id Address) error

	// Repeat arms a timer owned by this service.
	Repeat(durationMS int64, times int) (uint64, error)

	// RemoveTimer cancels a previously armed timer. Idempotent.
	RemoveTimer(timerID uint64)

	// SetUnique registers this service's name in the router's
	// unique-name table. Returns false on collision.
	SetUnique(name string) bool

	// Env reads the router's process-wide key/value store.
	Env(key string) (string, bool)

	// SetEnv writes the router's process-wide key/value store.
	SetEnv(key, value string)

	// Quit issues RemoveService(Self()); the default Exit() hook for
	// BaseService calls this.
	Quit()

	// WorkerCount returns the number of workers in the running
	// supervisor, for services that report per-worker gauges.
	WorkerCount() int

	// ServiceCounts returns a snapshot of live service counts per
	// worker, for the built-in metricscollector service. Never blocks.
	ServiceCounts() []int32

	// Metrics returns the Prometheus handle attached to the running
	// supervisor, or nil if none was attached.
	Metrics() *metrics.Metrics
}

// BaseService provides the template-method default for Exit, matching
// the teacher's BaseVerticle/BaseService split (pkg/core/base_service.go):
// embed it to get a no-op Destroy and an Exit that self-removes, and
// override only the methods a concrete service needs.
type BaseService struct {
	Ctx ServiceContext
}

func (b *BaseService) Init(ctx ServiceContext, _ []byte) bool {
	b.Ctx = ctx
	return true
}

func (b *BaseService) Start()                            {}
func (b *BaseService) Dispatch(_ *Envelope)               {}
func (b *BaseService) OnTimer(_ uint64, _ bool)           {}
func (b *BaseService) Exit() {
	if b.Ctx != nil {
		b.Ctx.Quit()
	}
}
func (b *BaseService) Destroy() {}

// Factory constructs a new, un-initialized Service instance of a
// registered type.
type Factory func() Service
