package njt

import (
	"context"
	"errors"
	"log/slog"

	"github.com/mattdonders/njtstatus/internal/feed"
	"github.com/mattdonders/njtstatus/internal/syncer"
)

// Transport adapts a StatusFetcher to syncer.Sender. Each request runs on
// its own goroutine and its outcome is handed to Deliver as a syncer event.
type Transport struct {
	ctx     context.Context
	fetcher StatusFetcher
	deliver func(syncer.Event)
	logger  *slog.Logger
}

// NewTransport builds a Transport. ctx bounds every request it starts.
func NewTransport(ctx context.Context, fetcher StatusFetcher, deliver func(syncer.Event), logger *slog.Logger) *Transport {
	if logger == nil {
		logger = slog.Default()
	}
	return &Transport{ctx: ctx, fetcher: fetcher, deliver: deliver, logger: logger}
}

// Ensure Transport implements syncer.Sender at compile time.
var _ syncer.Sender = (*Transport)(nil)

// Send starts req in the background. It fails only when the request cannot
// be dispatched at all.
func (t *Transport) Send(req syncer.Request) error {
	if t.fetcher == nil || t.deliver == nil {
		return errors.New("transport not configured")
	}
	if err := t.ctx.Err(); err != nil {
		return err
	}
	if _, err := ParseEndpoint(req.URL); err != nil {
		return err
	}

	go func() {
		t.logger.Debug("status request", "request", req.ID.String(), "url", req.URL)
		payload, err := t.fetcher.FetchStatus(t.ctx, req.URL)
		t.deliver(classify(req.ID, payload, err))
	}()
	return nil
}

func classify(id syncer.RequestID, payload feed.Payload, err error) syncer.Event {
	if err == nil {
		return syncer.Success{ID: id, Payload: payload}
	}
	var appErr *ApplicationError
	if errors.As(err, &appErr) {
		return syncer.Failure{ID: id, StatusCode: appErr.StatusCode, Err: err}
	}
	return syncer.SendFailed{ID: id, Err: err}
}
