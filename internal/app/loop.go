package app

import (
	"context"

	"github.com/mattdonders/njtstatus/internal/syncer"
)

const eventQueueSize = 32

// Loop is the single event queue that owns the state machine. Transport
// callbacks, timer ticks and user refreshes are all posted here and handled
// one at a time on the goroutine running Run.
type Loop struct {
	machine *syncer.Machine
	events  chan syncer.Event
	done    chan struct{}
}

// NewLoop creates a loop. Bind attaches the machine before Run starts.
func NewLoop() *Loop {
	return &Loop{
		events: make(chan syncer.Event, eventQueueSize),
		done:   make(chan struct{}),
	}
}

// Bind sets the machine driven by the loop. The machine and its sender are
// usually built after the loop, because the sender delivers through Post.
func (l *Loop) Bind(machine *syncer.Machine) {
	l.machine = machine
}

// Post queues ev. It blocks while the queue is full and gives up once the
// loop has stopped.
func (l *Loop) Post(ev syncer.Event) {
	select {
	case l.events <- ev:
	case <-l.done:
	}
}

// Refresh queues a refresh request.
func (l *Loop) Refresh() {
	l.Post(syncer.Refresh{})
}

// Run handles events until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) {
	defer close(l.done)
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-l.events:
			l.machine.Handle(ev)
		}
	}
}
