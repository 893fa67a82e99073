package actor

import "fmt"

// Error is the runtime's typed error, grounded on the teacher's
// &Error{Code, Message} / &EventBusError{...} convention so callers can
// branch on a stable Code instead of string-matching error text.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Sentinel errors. The three envelope-validation ones are tested with
// errors.Is (see envelope_test.go); the service-lifecycle ones are
// returned as the Code of worker.AddService/RemoveService's reply
// payload, since those replies cross a worker boundary and can't carry
// a Go error value.
var (
	ErrInvalidWorker      = &Error{Code: "INVALID_WORKER", Message: "worker index out of range"}
	ErrInvalidReceiver    = &Error{Code: "INVALID_RECEIVER", Message: "receiver address is zero"}
	ErrUnknownMessageType = &Error{Code: "UNKNOWN_MESSAGE_TYPE", Message: "message type is unknown"}
	ErrServiceNotFound    = &Error{Code: "SERVICE_NOT_FOUND", Message: "no live service for address"}
	ErrFactoryNotFound    = &Error{Code: "FACTORY_NOT_FOUND", Message: "service type not registered"}
	ErrLocalIDExhausted   = &Error{Code: "LOCAL_ID_EXHAUSTED", Message: "worker has no free local ids"}
	ErrInitFailed         = &Error{Code: "INIT_FAILED", Message: "service init returned false"}
	ErrWorkerNotReady     = &Error{Code: "WORKER_NOT_READY", Message: "worker is not accepting new services"}
)
