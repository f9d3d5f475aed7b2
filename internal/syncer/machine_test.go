package syncer

import (
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/mattdonders/njtstatus/internal/feed"
	"github.com/mattdonders/njtstatus/internal/lines"
)

const (
	refOrder    = "NECNJCRARMNEMNBBNTPASATL"
	refStatuses = "0098009901500099"
)

type fakeSender struct {
	sent []Request
	err  error
}

func (f *fakeSender) Send(req Request) error {
	f.sent = append(f.sent, req)
	return f.err
}

func (f *fakeSender) last(t *testing.T) Request {
	t.Helper()
	if len(f.sent) == 0 {
		t.Fatalf("no request sent")
	}
	return f.sent[len(f.sent)-1]
}

func newMachine(t *testing.T, sender *fakeSender) *Machine {
	t.Helper()
	reg, err := lines.New(lines.DefaultCatalog)
	if err != nil {
		t.Fatalf("lines.New returned error: %v", err)
	}
	m, err := New(Options{
		Registry: reg,
		Sender:   sender,
		Endpoint: "http://example.test/status",
		Now:      func() time.Time { return time.Date(2026, 1, 2, 8, 30, 0, 0, time.UTC) },
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	return m
}

func statuses(m *Machine) map[string]int {
	out := make(map[string]int)
	for _, rec := range m.Lines() {
		out[rec.Code] = rec.Status
	}
	return out
}

func TestNew_RequiresRegistryAndSender(t *testing.T) {
	reg, _ := lines.New(lines.DefaultCatalog)
	if _, err := New(Options{Sender: &fakeSender{}}); err == nil {
		t.Fatalf("New without registry returned nil error")
	}
	if _, err := New(Options{Registry: reg}); err == nil {
		t.Fatalf("New without sender returned nil error")
	}
}

func TestMachine_StartsIdle(t *testing.T) {
	m := newMachine(t, &fakeSender{})
	if m.State() != StateIdle {
		t.Fatalf("State = %v, want idle", m.State())
	}
	for _, rec := range m.Lines() {
		if rec.Status != lines.StatusUnknown {
			t.Fatalf("%s status = %d, want unknown", rec.Code, rec.Status)
		}
	}
}

func TestMachine_EndToEnd(t *testing.T) {
	sender := &fakeSender{}
	m := newMachine(t, sender)

	m.Refresh()
	if m.State() != StateUpdating {
		t.Fatalf("State after Refresh = %v, want updating", m.State())
	}
	req := sender.last(t)
	if req.URL != "http://example.test/status" || req.ID.Cookie != DefaultCookie {
		t.Fatalf("request = %#v", req)
	}

	m.Handle(Success{ID: req.ID, Payload: feed.Payload{Order: refOrder, Statuses: refStatuses}})
	if m.State() != StateUpdated {
		t.Fatalf("State = %v, want updated", m.State())
	}
	want := map[string]int{
		"NEC": 0, "NJC": 98, "RAR": 0, "MNE": 99,
		"MNB": 1, "BNT": 50, "PAS": 0, "ATL": 99,
	}
	if got := statuses(m); !reflect.DeepEqual(got, want) {
		t.Fatalf("statuses = %v, want %v", got, want)
	}
	order := make([]string, 0, 8)
	for _, rec := range m.Lines() {
		order = append(order, rec.Code)
	}
	if strings.Join(order, "") != refOrder {
		t.Fatalf("registry order = %v", order)
	}
	if snap := m.Snapshot(); snap.UpdatedAt.IsZero() {
		t.Fatalf("UpdatedAt not recorded")
	}
}

func TestMachine_ApplyIsIdempotent(t *testing.T) {
	sender := &fakeSender{}
	m := newMachine(t, sender)
	payload := feed.Payload{Order: refOrder, Statuses: refStatuses}

	m.Refresh()
	m.Handle(Success{ID: sender.last(t).ID, Payload: payload})
	first := m.Lines()

	m.Refresh()
	m.Handle(Success{ID: sender.last(t).ID, Payload: payload})
	if !reflect.DeepEqual(first, m.Lines()) {
		t.Fatalf("second apply changed registry: %v vs %v", first, m.Lines())
	}
}

func TestMachine_SkipsBadEntriesAndUnknownCodes(t *testing.T) {
	sender := &fakeSender{}
	m := newMachine(t, sender)

	m.Refresh()
	m.Handle(Success{ID: sender.last(t).ID, Payload: feed.Payload{
		Order:    "NECZZZRARMNEMNBBNTPASATL",
		Statuses: "050307??00000000",
	}})
	if m.State() != StateUpdated {
		t.Fatalf("State = %v, want updated", m.State())
	}
	got := statuses(m)
	if got["NEC"] != 5 || got["RAR"] != 7 || got["ATL"] != 0 {
		t.Fatalf("statuses = %v, want NEC=5 RAR=7 ATL=0", got)
	}
	if got["NJC"] != lines.StatusUnknown {
		t.Fatalf("NJC = %d, want untouched %d", got["NJC"], lines.StatusUnknown)
	}
	if got["MNE"] != lines.StatusUnknown {
		t.Fatalf("MNE = %d, want untouched %d", got["MNE"], lines.StatusUnknown)
	}
	if len(m.Lines()) != 8 {
		t.Fatalf("registry size = %d, want 8", len(m.Lines()))
	}
	if _, ok := got["ZZZ"]; ok {
		t.Fatalf("unknown code created a record")
	}
}

func TestMachine_NonNumericStatusKeepsPriorValue(t *testing.T) {
	sender := &fakeSender{}
	m := newMachine(t, sender)

	m.Refresh()
	m.Handle(Success{ID: sender.last(t).ID, Payload: feed.Payload{Order: refOrder, Statuses: refStatuses}})

	m.Refresh()
	m.Handle(Success{ID: sender.last(t).ID, Payload: feed.Payload{Order: refOrder, Statuses: "??" + "12345678901234"}})
	got := statuses(m)
	if got["NEC"] != 0 {
		t.Fatalf("NEC = %d, want prior value 0", got["NEC"])
	}
	if got["NJC"] != 12 {
		t.Fatalf("NJC = %d, want 12", got["NJC"])
	}
}

func TestMachine_MalformedPayloadAppliesNothing(t *testing.T) {
	sender := &fakeSender{}
	m := newMachine(t, sender)

	m.Refresh()
	m.Handle(Success{ID: sender.last(t).ID, Payload: feed.Payload{Order: refOrder, Statuses: "0000"}})
	if m.State() != StateFailedApplication {
		t.Fatalf("State = %v, want failed-application", m.State())
	}
	if !strings.Contains(m.Reason(), "malformed payload") {
		t.Fatalf("Reason = %q, want malformed payload", m.Reason())
	}
	for code, status := range statuses(m) {
		if status != lines.StatusUnknown {
			t.Fatalf("%s = %d, want no partial application", code, status)
		}
	}
}

func TestMachine_StaleResponseIgnored(t *testing.T) {
	sender := &fakeSender{}
	m := newMachine(t, sender)

	m.Refresh()
	c1 := sender.last(t).ID
	m.Refresh()
	c2 := sender.last(t).ID
	if c1 == c2 {
		t.Fatalf("refresh reused request id %v", c1)
	}

	m.Handle(Success{ID: c1, Payload: feed.Payload{Order: refOrder, Statuses: "0101010101010101"}})
	if m.State() != StateUpdating {
		t.Fatalf("State after stale success = %v, want updating", m.State())
	}
	for code, status := range statuses(m) {
		if status != lines.StatusUnknown {
			t.Fatalf("stale response modified %s = %d", code, status)
		}
	}

	m.Handle(Failure{ID: c1, StatusCode: 500})
	if m.State() != StateUpdating {
		t.Fatalf("State after stale failure = %v, want updating", m.State())
	}

	m.Handle(Success{ID: c2, Payload: feed.Payload{Order: refOrder, Statuses: refStatuses}})
	if m.State() != StateUpdated {
		t.Fatalf("State = %v, want updated", m.State())
	}
	if got := statuses(m); got["BNT"] != 50 {
		t.Fatalf("BNT = %d, want 50 from C2 payload", got["BNT"])
	}
}

func TestMachine_CallbacksAfterCompletionIgnored(t *testing.T) {
	sender := &fakeSender{}
	m := newMachine(t, sender)

	m.Refresh()
	id := sender.last(t).ID
	m.Handle(Success{ID: id, Payload: feed.Payload{Order: refOrder, Statuses: refStatuses}})
	m.Handle(Failure{ID: id, StatusCode: 500})
	m.Handle(Failure{ID: RequestID{Cookie: 42, Seq: 1}})
	m.Handle(SendFailed{ID: id, Err: errors.New("late")})
	if m.State() != StateUpdated {
		t.Fatalf("State = %v, want updated", m.State())
	}
}

func TestMachine_FailureClassification(t *testing.T) {
	tests := []struct {
		name  string
		event func(active RequestID) Event
		want  State
	}{
		{
			name:  "send failed for active request",
			event: func(id RequestID) Event { return SendFailed{ID: id, Err: errors.New("connection refused")} },
			want:  StateFailedTransport,
		},
		{
			name:  "failure for unrelated cookie",
			event: func(id RequestID) Event { return Failure{ID: RequestID{Cookie: 7, Seq: id.Seq}, StatusCode: 500} },
			want:  StateFailedTransport,
		},
		{
			name:  "failure for active request",
			event: func(id RequestID) Event { return Failure{ID: id, StatusCode: 503} },
			want:  StateFailedApplication,
		},
		{
			name:  "success for unrelated cookie",
			event: func(id RequestID) Event { return Success{ID: RequestID{Cookie: 7, Seq: id.Seq}} },
			want:  StateUpdating,
		},
		{
			name:  "reconnect",
			event: func(RequestID) Event { return Reconnect{} },
			want:  StateUpdating,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sender := &fakeSender{}
			m := newMachine(t, sender)
			m.Refresh()
			m.Handle(tt.event(sender.last(t).ID))
			if m.State() != tt.want {
				t.Fatalf("State = %v, want %v", m.State(), tt.want)
			}
		})
	}
}

func TestMachine_RefreshRecoversFromFailure(t *testing.T) {
	sender := &fakeSender{}
	m := newMachine(t, sender)

	m.Refresh()
	m.Handle(SendFailed{ID: sender.last(t).ID, Err: errors.New("offline")})
	if m.State() != StateFailedTransport {
		t.Fatalf("State = %v, want failed-transport", m.State())
	}
	if !strings.Contains(m.Reason(), "offline") {
		t.Fatalf("Reason = %q, want it to mention offline", m.Reason())
	}

	m.Refresh()
	if m.State() != StateUpdating {
		t.Fatalf("State = %v, want updating", m.State())
	}
	if m.Reason() != "" {
		t.Fatalf("Reason = %q, want cleared", m.Reason())
	}
	if len(sender.sent) != 2 {
		t.Fatalf("sent %d requests, want 2", len(sender.sent))
	}
}

func TestMachine_SendErrorFailsImmediately(t *testing.T) {
	sender := &fakeSender{err: errors.New("no route")}
	m := newMachine(t, sender)

	var seen []State
	m.Subscribe(func(s Snapshot) { seen = append(seen, s.State) })

	m.Refresh()
	if m.State() != StateFailedTransport {
		t.Fatalf("State = %v, want failed-transport", m.State())
	}
	want := []State{StateUpdating, StateFailedTransport}
	if !reflect.DeepEqual(seen, want) {
		t.Fatalf("notifications = %v, want %v", seen, want)
	}
}

func TestMachine_NotifiesUpdatingBeforeSend(t *testing.T) {
	var m *Machine
	var stateAtSend State
	sender := senderFunc(func(Request) error {
		stateAtSend = m.State()
		return nil
	})
	reg, _ := lines.New(lines.DefaultCatalog)
	m, err := New(Options{Registry: reg, Sender: sender})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	var notified []State
	m.Subscribe(func(s Snapshot) { notified = append(notified, s.State) })

	m.Refresh()
	if stateAtSend != StateUpdating {
		t.Fatalf("state at send = %v, want updating", stateAtSend)
	}
	if len(notified) != 1 || notified[0] != StateUpdating {
		t.Fatalf("notifications = %v, want [updating]", notified)
	}
}

type senderFunc func(Request) error

func (f senderFunc) Send(req Request) error { return f(req) }

func TestState_String(t *testing.T) {
	if StateFailedApplication.String() != "failed-application" {
		t.Fatalf("String = %q", StateFailedApplication.String())
	}
	if !StateFailedTransport.Failed() || StateUpdated.Failed() {
		t.Fatalf("Failed classification wrong")
	}
}
