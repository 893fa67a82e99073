package kvstore

import (
	"encoding/json"
	"testing"

	"github.com/fluxorio/actorrt/pkg/actor"
)

type fakeCtx struct {
	actor.ServiceContext
	uniqueClaims map[string]actor.Address
	lastResponse response
}

func newFakeCtx() *fakeCtx {
	return &fakeCtx{uniqueClaims: make(map[string]actor.Address)}
}

func (f *fakeCtx) SetUnique(name string) bool {
	if _, taken := f.uniqueClaims[name]; taken {
		return false
	}
	f.uniqueClaims[name] = actor.NewAddress(1, 1)
	return true
}

func (f *fakeCtx) Response(to actor.Address, header string, payload []byte, session int32) error {
	_ = json.Unmarshal(payload, &f.lastResponse)
	return nil
}

func freshDSN(t *testing.T) string {
	t.Helper()
	return "file:" + t.Name() + "?mode=memory&cache=shared"
}

func TestService_InitCreatesSchema(t *testing.T) {
	svc := New().(*Service)
	ctx := newFakeCtx()
	if ok := svc.Init(ctx, []byte(`{"dsn":"`+freshDSN(t)+`"}`)); !ok {
		t.Fatal("Init() = false, want true")
	}
	defer svc.Destroy()
}

func TestService_PutThenGetRoundTrip(t *testing.T) {
	svc := New().(*Service)
	ctx := newFakeCtx()
	svc.Init(ctx, []byte(`{"dsn":"`+freshDSN(t)+`"}`))
	defer svc.Destroy()

	put := &actor.Envelope{Sender: actor.NewAddress(2, 1), Session: 1}
	putReq, _ := json.Marshal(request{Op: "put", Key: "a", Value: "1"})
	put.SetPayload(putReq)
	svc.Dispatch(put)
	if !ctx.lastResponse.OK {
		t.Fatalf("put response = %+v, want OK", ctx.lastResponse)
	}

	get := &actor.Envelope{Sender: actor.NewAddress(2, 1), Session: 2}
	getReq, _ := json.Marshal(request{Op: "get", Key: "a"})
	get.SetPayload(getReq)
	svc.Dispatch(get)
	if !ctx.lastResponse.OK || ctx.lastResponse.Value != "1" {
		t.Fatalf("get response = %+v, want value \"1\"", ctx.lastResponse)
	}
}

func TestService_GetMissingKeyReturnsError(t *testing.T) {
	svc := New().(*Service)
	ctx := newFakeCtx()
	svc.Init(ctx, []byte(`{"dsn":"`+freshDSN(t)+`"}`))
	defer svc.Destroy()

	get := &actor.Envelope{Sender: actor.NewAddress(2, 1), Session: 1}
	getReq, _ := json.Marshal(request{Op: "get", Key: "missing"})
	get.SetPayload(getReq)
	svc.Dispatch(get)
	if ctx.lastResponse.OK {
		t.Fatalf("get response for missing key = %+v, want an error", ctx.lastResponse)
	}
}

func TestService_InitFailsOnUniqueNameCollision(t *testing.T) {
	ctx := newFakeCtx()

	first := New().(*Service)
	if ok := first.Init(ctx, []byte(`{"dsn":"`+freshDSN(t)+`","name":"db"}`)); !ok {
		t.Fatal("first Init() = false, want true")
	}
	defer first.Destroy()

	second := New().(*Service)
	if ok := second.Init(ctx, []byte(`{"dsn":"`+freshDSN(t)+`_2","name":"db"}`)); ok {
		t.Fatal("second Init() = true, want false (unique name collision)")
	}
}
