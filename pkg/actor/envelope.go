package actor

// MessageType identifies the kind of payload an envelope carries.
type MessageType int

const (
	// TypeUnknown is never valid on a delivered envelope.
	TypeUnknown MessageType = iota
	TypeSystem
	TypeText
	TypeSocket
	TypeError
	TypeDebug
	// TypeUser is the first value available to user-defined message types.
	TypeUser
)

// Flag is a bit set of envelope delivery hints.
type Flag uint32

const (
	FlagBroadcast Flag = 1 << iota
	FlagClose
	FlagSlice
)

// Envelope is an owned, single-reader message. Once pushed to a mailbox,
// only the receiving worker may read or mutate it.
//
// Grounded on the teacher's message type (pkg/core/eventbus.go) but
// generalized from a string-addressed, reply-by-address design to the
// numeric-address, signed-session-correlation design spec §3 requires.
type Envelope struct {
	Sender   Address
	Receiver Address
	Session  int32
	Header   string
	Type     MessageType
	Flags    Flag
	payload  []byte
	front    int // reserved front space already consumed by WriteFront
}

// NewEnvelope allocates an envelope with a pre-sized payload buffer,
// reserving front space for downstream framing per spec §4.2.
func NewEnvelope(reserveFront int) *Envelope {
	if reserveFront < 0 {
		reserveFront = 0
	}
	return &Envelope{
		payload: make([]byte, reserveFront, reserveFront+64),
		front:   reserveFront,
	}
}

// NewEnvelopeWithPayload wraps a pre-built buffer, e.g. one shared by
// reference across every envelope of a broadcast fan-out.
func NewEnvelopeWithPayload(buf []byte) *Envelope {
	return &Envelope{payload: buf, front: 0}
}

// Payload returns the whole buffer, including any reserved front space
// that WriteFront has not filled (those bytes read as zero).
func (e *Envelope) Payload() []byte {
	return e.payload
}

// SetPayload replaces the envelope's payload buffer wholesale, used by
// callers outside package actor that build an envelope field-by-field
// (the payload slice itself stays unexported so Payload() remains the
// only read path).
func (e *Envelope) SetPayload(b []byte) {
	e.payload = b
	e.front = 0
}

// WriteBack appends bytes to the end of the payload.
func (e *Envelope) WriteBack(b []byte) {
	e.payload = append(e.payload, b...)
}

// WriteFront writes b into the reserved front space, right-aligned
// against the start of the existing payload. It panics if b is larger
// than the remaining reserved space, mirroring the teacher's fail-fast
// convention (pkg/core/failfast) for programmer errors rather than
// runtime conditions.
func (e *Envelope) WriteFront(b []byte) {
	if len(b) > e.front {
		panic("actor: WriteFront exceeds reserved front space")
	}
	copy(e.payload[e.front-len(b):e.front], b)
	e.front -= len(b)
}

// IsBroadcast reports whether the broadcast flag is set.
func (e *Envelope) IsBroadcast() bool {
	return e.Flags&FlagBroadcast != 0
}

// Reply builds the response envelope for a request, negating the
// session per spec §3 ("the callee flips sign to reply").
func (e *Envelope) Reply(from Address, header string, typ MessageType, payload []byte) *Envelope {
	return &Envelope{
		Sender:   from,
		Receiver: e.Sender,
		Session:  -e.Session,
		Header:   header,
		Type:     typ,
		payload:  payload,
	}
}

// Validate checks the invariant from spec §3: a delivered envelope must
// have a known type, and either be a broadcast or resolve to a worker in
// [1, workerCount].
func (e *Envelope) Validate(workerCount int) error {
	if e.Type == TypeUnknown {
		return ErrUnknownMessageType
	}
	if e.IsBroadcast() {
		return nil
	}
	if e.Receiver.IsZero() {
		return ErrInvalidReceiver
	}
	if !ValidWorkerIndex(e.Receiver.WorkerIndex(), workerCount) {
		return ErrInvalidWorker
	}
	return nil
}
