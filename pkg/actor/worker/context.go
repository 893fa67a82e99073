package worker

import (
	"github.com/fluxorio/actorrt/pkg/actor"
	"github.com/fluxorio/actorrt/pkg/metrics"
)

// serviceContext is the concrete actor.ServiceContext handed to a
// service at Init time. It closes over the owning worker and the
// process-wide router, giving the service exactly the non-owning
// back-references spec §9's ownership tiers allow: a service may reach
// up to the router, never down into worker or supervisor internals.
type serviceContext struct {
	w    *Worker
	self actor.Address
}

func newServiceContext(w *Worker, self actor.Address) *serviceContext {
	return &serviceContext{w: w, self: self}
}

func (c *serviceContext) Self() actor.Address { return c.self }

func (c *serviceContext) Send(receiver actor.Address, header string, typ actor.MessageType, payload []byte, session int32) error {
	env := &actor.Envelope{
		Sender:   c.self,
		Receiver: receiver,
		Session:  session,
		Header:   header,
		Type:     typ,
	}
	env.SetPayload(payload)
	return c.w.router.Send(env)
}

func (c *serviceContext) Response(to actor.Address, header string, payload []byte, session int32) error {
	return c.Send(to, header, actor.TypeText, payload, -session)
}

func (c *serviceContext) Broadcast(header string, typ actor.MessageType, payload []byte) error {
	return c.w.router.Broadcast(c.self, header, typ, payload)
}

func (c *serviceContext) NewService(typeName string, config []byte, unique bool, workerHint uint8, session int32) error {
	return c.w.router.NewService(typeName, config, unique, workerHint, c.self, session)
}

func (c *serviceContext) RemoveService(id actor.Address) error {
	return c.w.router.RemoveService(id, c.self, 0)
}

func (c *serviceContext) Repeat(durationMS int64, times int) (uint64, error) {
	now := c.w.router.Now()
	return c.w.timers.Repeat(now, durationMS, times, c.self.LocalID()), nil
}

func (c *serviceContext) RemoveTimer(timerID uint64) {
	c.w.timers.Remove(timerID)
}

func (c *serviceContext) SetUnique(name string) bool {
	ok := c.w.router.SetUniqueService(name, c.self)
	if ok {
		c.w.PostTask(func() {
			if rec, found := c.w.container.get(c.self.LocalID()); found {
				rec.name = name
				rec.unique = true
			}
		})
	}
	return ok
}

func (c *serviceContext) Env(key string) (string, bool) {
	return c.w.router.Env(key)
}

func (c *serviceContext) SetEnv(key, value string) {
	c.w.router.SetEnv(key, value)
}

func (c *serviceContext) Quit() {
	_ = c.w.router.RemoveService(c.self, c.self, 0)
}

func (c *serviceContext) WorkerCount() int {
	return c.w.router.WorkerCount()
}

func (c *serviceContext) ServiceCounts() []int32 {
	return c.w.router.ServiceCounts()
}

func (c *serviceContext) Metrics() *metrics.Metrics {
	return c.w.router.Metrics()
}
