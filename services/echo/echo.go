// Package echo is the runtime's scenario-1 reference service: it
// reverses whatever payload it receives and replies to the sender.
package echo

import "github.com/fluxorio/actorrt/pkg/actor"

// Service reverses its dispatched payload byte-for-byte and replies to
// the sender at the same session. Non-unique, stateless, and safe to
// boot any number of times across any number of workers.
type Service struct {
	actor.BaseService
}

// New is registered as the "echo" service type's factory.
func New() actor.Service {
	return &Service{}
}

func (s *Service) Dispatch(env *actor.Envelope) {
	payload := env.Payload()
	reversed := make([]byte, len(payload))
	for i, b := range payload {
		reversed[len(payload)-1-i] = b
	}
	_ = s.Ctx.Response(env.Sender, env.Header, reversed, env.Session)
}
