package actor

import "github.com/fluxorio/actorrt/pkg/metrics"

// Router is the narrow surface a Worker needs from the router to satisfy
// a ServiceContext: send/broadcast to other workers, create or remove
// services anywhere, and touch the process-wide env/unique tables.
//
// Defined here (not in package router) so package worker can depend on
// it without importing package router, which in turn depends on
// package worker to hold its worker slice — the ownership-tier
// back-reference pattern spec §9 calls for, expressed as an interface
// seam instead of a cyclic import.
type Router interface {
	Send(env *Envelope) error
	Broadcast(sender Address, header string, typ MessageType, payload []byte) error
	NewService(typeName string, config []byte, unique bool, workerHint uint8, creator Address, session int32) error
	RemoveService(id Address, sender Address, session int32) error
	SetUniqueService(name string, addr Address) bool
	GetUniqueService(name string) (Address, bool)
	ReleaseUniqueService(name string, addr Address)
	Env(key string) (string, bool)
	SetEnv(key, value string)
	MakeService(typeName string) (Service, bool)
	Now() int64
	WorkerCount() int

	// ServiceCounts returns a snapshot of live service counts per
	// worker (1-based, index 0 unused), for services that report
	// runtime gauges (e.g. the built-in metricscollector service).
	// Never blocks, unlike a per-worker Shared()/ServiceCount() query.
	ServiceCounts() []int32

	// Metrics returns the Prometheus handle attached to the running
	// supervisor, or nil if none was attached.
	Metrics() *metrics.Metrics

	// NotifyServiceAdded/NotifyServiceRemoved let a worker update the
	// router's placement counters without a blocking call back into the
	// worker that just finished mutating its own container — avoiding
	// the self-deadlock a synchronous "how many services do you host"
	// query would risk when placement lands on the calling worker
	// itself (spec §4.6).
	NotifyServiceAdded(workerIdx uint8)
	NotifyServiceRemoved(workerIdx uint8)
}
