package syncer

import (
	"fmt"

	"github.com/mattdonders/njtstatus/internal/feed"
)

// RequestID tags a request so its callbacks can be matched. Cookie marks the
// request type; Seq changes on every refresh.
type RequestID struct {
	Cookie int32
	Seq    uint64
}

func (id RequestID) String() string {
	return fmt.Sprintf("%d#%d", id.Cookie, id.Seq)
}

// Request is handed to the Sender on every refresh.
type Request struct {
	ID  RequestID
	URL string
}

// Sender dispatches status requests. Send must not block on the network and
// must not deliver callbacks synchronously: results arrive later as events.
// A returned error means the request could not be dispatched at all.
type Sender interface {
	Send(req Request) error
}

// Event is an input to Machine.Handle.
type Event interface {
	event()
}

// Refresh asks for a new status request.
type Refresh struct{}

// Reconnect reports that the transport re-established its link.
type Reconnect struct{}

// SendFailed reports that a request never reached the server.
type SendFailed struct {
	ID  RequestID
	Err error
}

// Failure reports that the server answered a request with an error.
type Failure struct {
	ID         RequestID
	StatusCode int
	Err        error
}

// Success carries the payload for a request.
type Success struct {
	ID      RequestID
	Payload feed.Payload
}

func (Refresh) event()    {}
func (Reconnect) event()  {}
func (SendFailed) event() {}
func (Failure) event()    {}
func (Success) event()    {}
