package worker

import "github.com/fluxorio/actorrt/pkg/actor"

// record is a service record (spec §3). It is only ever touched from the
// owning worker's single goroutine, so it needs no lock of its own.
type record struct {
	id      actor.Address
	name    string
	unique  bool
	ok      bool
	started bool
	svc     actor.Service
}

// container is the per-worker local-id -> service map (spec §4.6),
// including the monotonic local-id allocator from spec §4.1.
type container struct {
	workerIdx uint8
	services  map[uint32]*record
	nextLocal uint32
}

func newContainer(workerIdx uint8) *container {
	return &container{workerIdx: workerIdx, services: make(map[uint32]*record)}
}

// allocate reserves a free local id, scanning at most actor.MaxLocalID
// attempts before reporting exhaustion (spec §4.1).
func (c *container) allocate() (uint32, bool) {
	for attempt := 0; attempt < actor.MaxLocalID; attempt++ {
		c.nextLocal++
		if c.nextLocal == 0 || c.nextLocal > actor.MaxLocalID {
			c.nextLocal = 1
		}
		if _, taken := c.services[c.nextLocal]; !taken {
			return c.nextLocal, true
		}
	}
	return 0, false
}

func (c *container) put(r *record) {
	c.services[r.id.LocalID()] = r
}

func (c *container) get(localID uint32) (*record, bool) {
	r, ok := c.services[localID]
	return r, ok
}

func (c *container) remove(localID uint32) {
	delete(c.services, localID)
}

// shared reports whether this worker currently hosts zero services,
// making it a preferred placement target for new services (spec §4.6).
func (c *container) shared() bool {
	return len(c.services) == 0
}

// forEach iterates a stable snapshot of the live records so the callback
// may safely mutate the container (e.g. remove a service) while
// iterating, matching the broadcast-excludes-sender delivery in §4.7.
func (c *container) forEach(fn func(*record)) {
	snapshot := make([]*record, 0, len(c.services))
	for _, r := range c.services {
		snapshot = append(snapshot, r)
	}
	for _, r := range snapshot {
		fn(r)
	}
}

func (c *container) count() int {
	return len(c.services)
}
