package actor

import (
	"errors"
	"testing"
)

func TestEnvelope_WriteFront(t *testing.T) {
	env := NewEnvelope(4)
	env.WriteBack([]byte("body"))
	env.WriteFront([]byte("hdr2"))
	if got := string(env.Payload()); got != "hdr2body" {
		t.Fatalf("Payload() = %q, want %q", got, "hdr2body")
	}
}

func TestEnvelope_WriteFrontOverflowPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("WriteFront() with oversized prefix did not panic")
		}
	}()
	env := NewEnvelope(2)
	env.WriteFront([]byte("too big"))
}

func TestEnvelope_Reply(t *testing.T) {
	req := &Envelope{Sender: NewAddress(1, 1), Receiver: NewAddress(2, 2), Session: 7}
	resp := req.Reply(NewAddress(2, 2), "", TypeText, []byte("ok"))
	if resp.Receiver != req.Sender {
		t.Fatalf("Reply() receiver = %v, want %v", resp.Receiver, req.Sender)
	}
	if resp.Session != -7 {
		t.Fatalf("Reply() session = %d, want -7", resp.Session)
	}
}

func TestEnvelope_Validate(t *testing.T) {
	cases := []struct {
		name string
		env  *Envelope
		want error
	}{
		{"unknown type", &Envelope{Type: TypeUnknown}, ErrUnknownMessageType},
		{"broadcast ok", &Envelope{Type: TypeText, Flags: FlagBroadcast}, nil},
		{"zero receiver", &Envelope{Type: TypeText}, ErrInvalidReceiver},
		{"out of range worker", &Envelope{Type: TypeText, Receiver: NewAddress(9, 1)}, ErrInvalidWorker},
		{"valid", &Envelope{Type: TypeText, Receiver: NewAddress(2, 1)}, nil},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := c.env.Validate(4)
			if c.want == nil && err != nil {
				t.Fatalf("Validate() = %v, want nil", err)
			}
			if c.want != nil && !errors.Is(err, c.want) {
				t.Fatalf("Validate() = %v, want %v", err, c.want)
			}
		})
	}
}

func TestEnvelope_IsBroadcast(t *testing.T) {
	env := &Envelope{Flags: FlagBroadcast | FlagClose}
	if !env.IsBroadcast() {
		t.Fatal("IsBroadcast() = false, want true")
	}
	env2 := &Envelope{Flags: FlagClose}
	if env2.IsBroadcast() {
		t.Fatal("IsBroadcast() = true, want false")
	}
}
