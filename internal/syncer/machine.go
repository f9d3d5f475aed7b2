// Package syncer drives status synchronization: it issues requests, matches
// their callbacks against the outstanding request, and applies decoded
// results to the line registry.
package syncer

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/mattdonders/njtstatus/internal/feed"
	"github.com/mattdonders/njtstatus/internal/lines"
)

// DefaultCookie identifies status requests on a shared transport.
const DefaultCookie int32 = 1597854

// State is the synchronization state exposed to the presentation layer.
type State int

const (
	StateIdle State = iota
	StateUpdating
	StateUpdated
	StateFailedTransport
	StateFailedApplication
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateUpdating:
		return "updating"
	case StateUpdated:
		return "updated"
	case StateFailedTransport:
		return "failed-transport"
	case StateFailedApplication:
		return "failed-application"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Failed reports whether s is one of the failure states.
func (s State) Failed() bool {
	return s == StateFailedTransport || s == StateFailedApplication
}

// Snapshot is a read-only view of the machine.
type Snapshot struct {
	State     State
	Reason    string
	Lines     []lines.Record
	UpdatedAt time.Time
	Request   RequestID
}

// Options configure a Machine.
type Options struct {
	Registry *lines.Registry
	Sender   Sender
	Endpoint string
	Cookie   int32 // zero uses DefaultCookie
	Count    int   // entries per payload; zero uses the registry size
	Logger   *slog.Logger
	Now      func() time.Time
}

// Machine is the status state machine. It is not safe for concurrent use:
// one goroutine owns it and feeds it events.
type Machine struct {
	registry *lines.Registry
	sender   Sender
	endpoint string
	cookie   int32
	count    int
	logger   *slog.Logger
	now      func() time.Time

	state     State
	reason    string
	active    RequestID
	seq       uint64
	updatedAt time.Time
	listeners []func(Snapshot)
}

// New builds a machine in StateIdle.
func New(opts Options) (*Machine, error) {
	if opts.Registry == nil {
		return nil, errors.New("syncer: registry required")
	}
	if opts.Sender == nil {
		return nil, errors.New("syncer: sender required")
	}
	m := &Machine{
		registry: opts.Registry,
		sender:   opts.Sender,
		endpoint: opts.Endpoint,
		cookie:   opts.Cookie,
		count:    opts.Count,
		logger:   opts.Logger,
		now:      opts.Now,
	}
	if m.cookie == 0 {
		m.cookie = DefaultCookie
	}
	if m.count <= 0 {
		m.count = opts.Registry.Len()
	}
	if m.logger == nil {
		m.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if m.now == nil {
		m.now = time.Now
	}
	return m, nil
}

// Subscribe registers fn to be called after every state change.
func (m *Machine) Subscribe(fn func(Snapshot)) {
	if fn != nil {
		m.listeners = append(m.listeners, fn)
	}
}

// State returns the current state.
func (m *Machine) State() State { return m.state }

// Reason describes the last failure, if any.
func (m *Machine) Reason() string { return m.reason }

// Lines returns a copy of the line records in display order.
func (m *Machine) Lines() []lines.Record { return m.registry.Records() }

// Snapshot returns the current read-only view.
func (m *Machine) Snapshot() Snapshot {
	return Snapshot{
		State:     m.state,
		Reason:    m.reason,
		Lines:     m.registry.Records(),
		UpdatedAt: m.updatedAt,
		Request:   m.active,
	}
}

// Refresh issues a new status request. Any earlier request becomes stale.
func (m *Machine) Refresh() {
	m.Handle(Refresh{})
}

// Handle applies one event. It is the only place state changes.
func (m *Machine) Handle(ev Event) {
	switch ev := ev.(type) {
	case Refresh:
		m.refresh()
	case Reconnect:
		// the transport recovers on its own; nothing to re-issue
	case SendFailed:
		if !m.isActive(ev.ID) {
			m.ignore("send failure", ev.ID)
			return
		}
		m.transition(StateFailedTransport, describe("request not sent", ev.Err))
	case Failure:
		if m.state != StateUpdating {
			m.ignore("failure", ev.ID)
			return
		}
		switch {
		case ev.ID.Cookie != m.cookie:
			m.transition(StateFailedTransport, fmt.Sprintf("unexpected failure for request %s", ev.ID))
		case ev.ID != m.active:
			m.ignore("failure", ev.ID)
		default:
			m.transition(StateFailedApplication, describeStatus(ev.StatusCode, ev.Err))
		}
	case Success:
		if !m.isActive(ev.ID) {
			m.ignore("response", ev.ID)
			return
		}
		m.apply(ev.Payload)
	}
}

func (m *Machine) refresh() {
	m.seq++
	m.active = RequestID{Cookie: m.cookie, Seq: m.seq}
	m.transition(StateUpdating, "")

	req := Request{ID: m.active, URL: m.endpoint}
	if err := m.sender.Send(req); err != nil {
		m.transition(StateFailedTransport, describe("request not sent", err))
	}
}

func (m *Machine) apply(payload feed.Payload) {
	batch, err := feed.DecodePayload(payload, m.count)
	if err != nil {
		m.transition(StateFailedApplication, err.Error())
		return
	}
	for _, skipped := range batch.Skipped {
		m.logger.Warn("skipping status entry", "index", skipped.Index, "code", skipped.Code, "text", skipped.Text)
	}
	for _, entry := range batch.Entries {
		if !m.registry.Apply(entry.Code, entry.Status) {
			m.logger.Warn("skipping unknown line", "code", entry.Code, "status", entry.Status)
		}
	}
	m.updatedAt = m.now()
	m.transition(StateUpdated, "")
}

func (m *Machine) isActive(id RequestID) bool {
	return m.state == StateUpdating && id == m.active
}

func (m *Machine) ignore(what string, id RequestID) {
	m.logger.Debug("ignoring stale "+what, "request", id.String(), "active", m.active.String(), "state", m.state.String())
}

func (m *Machine) transition(to State, reason string) {
	from := m.state
	m.state = to
	m.reason = reason
	if to.Failed() {
		m.logger.Warn("status sync failed", "from", from.String(), "to", to.String(), "reason", reason)
	} else {
		m.logger.Debug("status sync transition", "from", from.String(), "to", to.String(), "request", m.active.String())
	}
	snap := m.Snapshot()
	for _, fn := range m.listeners {
		fn(snap)
	}
}

func describe(prefix string, err error) string {
	if err == nil {
		return prefix
	}
	return prefix + ": " + err.Error()
}

func describeStatus(code int, err error) string {
	switch {
	case err != nil:
		return err.Error()
	case code > 0:
		return fmt.Sprintf("server returned status %d", code)
	default:
		return "server reported failure"
	}
}
