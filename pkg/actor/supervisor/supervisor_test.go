package supervisor

import (
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fluxorio/actorrt/pkg/actor"
	"github.com/fluxorio/actorrt/pkg/metrics"
)

func waitFor(t *testing.T, fn func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

type pingService struct {
	actor.BaseService
	started  atomic.Bool
	mu       sync.Mutex
	dispatch []*actor.Envelope
}

func (s *pingService) Start() { s.started.Store(true) }
func (s *pingService) Dispatch(env *actor.Envelope) {
	s.mu.Lock()
	s.dispatch = append(s.dispatch, env)
	s.mu.Unlock()
	// Only requests (positive session) are answered; replies arrive with
	// a negated session and are just recorded.
	if env.Session > 0 {
		_ = s.Ctx.Response(env.Sender, "pong", []byte("pong"), env.Session)
	}
}

func (s *pingService) dispatchCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.dispatch)
}

func (s *pingService) lastDispatch() *actor.Envelope {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.dispatch) == 0 {
		return nil
	}
	return s.dispatch[len(s.dispatch)-1]
}

func TestSupervisor_BootRegisterStartStop(t *testing.T) {
	sup := New(3, time.Millisecond)
	svc := &pingService{}
	sup.RegisterFactory("ping", func() actor.Service { return svc })

	if err := sup.Router().NewService("ping", nil, false, 1, 0, 0); err != nil {
		t.Fatalf("NewService() error = %v", err)
	}
	waitFor(t, func() bool { return sup.Router().Worker(1).ServiceCount() == 1 })

	sup.Start()
	waitFor(t, func() bool { return svc.started.Load() })

	sup.Stop()
	waitFor(t, func() bool { return sup.Router().Worker(1).State().String() == "exited" })
}

func TestSupervisor_ServiceAddedAfterBootStartsImmediately(t *testing.T) {
	sup := New(2, time.Millisecond)
	sup.Start()

	svc := &pingService{}
	sup.RegisterFactory("ping", func() actor.Service { return svc })
	if err := sup.Router().NewService("ping", nil, false, 1, 0, 0); err != nil {
		t.Fatalf("NewService() error = %v", err)
	}

	waitFor(t, func() bool { return svc.started.Load() })
	sup.Stop()
}

func TestSupervisor_AttachMetricsInstrumentsAddAndDispatch(t *testing.T) {
	sup := New(1, time.Millisecond)
	m := metrics.New()
	sup.AttachMetrics(m)

	svc := &pingService{}
	sup.RegisterFactory("ping", func() actor.Service { return svc })
	if err := sup.Router().NewService("ping", nil, false, 1, 0, 0); err != nil {
		t.Fatalf("NewService() error = %v", err)
	}
	waitFor(t, func() bool { return sup.Router().Worker(1).ServiceCount() == 1 })
	sup.Start()
	waitFor(t, func() bool { return svc.started.Load() })
	sup.Stop()

	req := httptest.NewRequest("GET", "/metrics", nil)
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, req)
	body := rec.Body.String()
	if !strings.Contains(body, "actorrt_service_add_total") {
		t.Fatalf("metrics output missing actorrt_service_add_total:\n%s", body)
	}
}

func TestSupervisor_RequestReplyRoundTrip(t *testing.T) {
	sup := New(2, time.Millisecond)
	svc := &pingService{}
	sup.RegisterFactory("ping", func() actor.Service { return svc })
	if err := sup.Router().NewService("ping", nil, false, 1, 0, 0); err != nil {
		t.Fatalf("NewService() error = %v", err)
	}
	waitFor(t, func() bool { return sup.Router().Worker(1).ServiceCount() == 1 })
	sup.Start()

	client := &pingService{}
	sup.RegisterFactory("client", func() actor.Service { return client })
	if err := sup.Router().NewService("client", nil, false, 2, 0, 0); err != nil {
		t.Fatalf("NewService() error = %v", err)
	}
	waitFor(t, func() bool { return sup.Router().Worker(2).ServiceCount() == 1 })

	target := actor.NewAddress(1, 1)
	clientAddr := actor.NewAddress(2, 1)
	env := &actor.Envelope{Sender: clientAddr, Receiver: target, Type: actor.TypeText, Session: 11}
	env.SetPayload([]byte("ping"))
	if err := sup.Router().Send(env); err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	waitFor(t, func() bool { return client.dispatchCount() == 1 })
	reply := client.lastDispatch()
	if got := string(reply.Payload()); got != "pong" {
		t.Fatalf("reply payload = %q, want \"pong\"", got)
	}
	if reply.Session != -11 {
		t.Fatalf("reply session = %d, want -11", reply.Session)
	}

	sup.Stop()
}
