package worker

import (
	"testing"

	"github.com/fluxorio/actorrt/pkg/actor"
)

func TestServiceContext_SendAndBroadcast(t *testing.T) {
	fr := newFakeRouter()
	w := New(1, fr)
	ctx := newServiceContext(w, actor.NewAddress(1, 1))

	if err := ctx.Send(actor.NewAddress(1, 2), "hdr", actor.TypeText, []byte("hi"), 5); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	env := fr.lastSent()
	if env == nil || env.Header != "hdr" || string(env.Payload()) != "hi" {
		t.Fatalf("Send() did not forward the expected envelope, got %+v", env)
	}
	if env.Sender != ctx.Self() {
		t.Fatalf("Send() sender = %v, want %v", env.Sender, ctx.Self())
	}

	if err := ctx.Broadcast("exit", actor.TypeSystem, []byte("bye")); err != nil {
		t.Fatalf("Broadcast() error = %v", err)
	}
	env = fr.lastSent()
	if !env.IsBroadcast() {
		t.Fatal("Broadcast() envelope is not flagged broadcast")
	}
}

func TestServiceContext_Response(t *testing.T) {
	fr := newFakeRouter()
	w := New(1, fr)
	ctx := newServiceContext(w, actor.NewAddress(1, 1))

	if err := ctx.Response(actor.NewAddress(1, 9), "", []byte("ok"), 4); err != nil {
		t.Fatalf("Response() error = %v", err)
	}
	env := fr.lastSent()
	if env.Session != -4 {
		t.Fatalf("Response() session = %d, want -4", env.Session)
	}
}

func TestServiceContext_SetUniqueRecordsNameOnRecord(t *testing.T) {
	fr := newFakeRouter()
	svc := &recordingService{initOK: true}
	fr.factories["db"] = func() actor.Service { return svc }

	w := New(1, fr)
	w.AddService("db", nil, true, 0, 0)
	waitFor(t, func() bool { return w.ServiceCount() == 1 })

	addr := actor.NewAddress(1, 1)
	ctx := newServiceContext(w, addr)
	if ok := ctx.SetUnique("db"); !ok {
		t.Fatal("SetUnique() = false, want true on first registration")
	}
	if ok := ctx.SetUnique("db"); ok {
		t.Fatal("SetUnique() = true on a second registration of the same name, want false (name taken)")
	}

	done := make(chan struct{})
	w.PostTask(func() { close(done) })
	<-done

	rec, ok := w.container.get(addr.LocalID())
	if !ok || rec.name != "db" {
		t.Fatalf("record name = %+v, want name \"db\"", rec)
	}
}

func TestServiceContext_EnvRoundTrip(t *testing.T) {
	fr := newFakeRouter()
	w := New(1, fr)
	ctx := newServiceContext(w, actor.NewAddress(1, 1))

	ctx.SetEnv("k", "v")
	v, ok := ctx.Env("k")
	if !ok || v != "v" {
		t.Fatalf("Env(\"k\") = (%q, %v), want (\"v\", true)", v, ok)
	}
}

func TestServiceContext_RepeatArmsTimerOnWorkerWheel(t *testing.T) {
	fr := newFakeRouter()
	w := New(1, fr)
	ctx := newServiceContext(w, actor.NewAddress(1, 1))

	id, err := ctx.Repeat(10, 1)
	if err != nil {
		t.Fatalf("Repeat() error = %v", err)
	}
	if id == 0 {
		t.Fatal("Repeat() returned zero timer id")
	}
	ctx.RemoveTimer(id) // should not panic, and should make the timer a no-op
}
