// Package njt provides the HTTP transport for the NJ Transit status endpoint.
//
// # Overview
//
// The status endpoint answers a plain GET with a small JSON object whose
// keys are the Pebble app-message keys used by the watch app:
//
//	{"1": "NECNJCRARMNEMNBBNTPASATL", "2": "0098009901500099"}
//
// Key "1" holds the line order and key "2" the statuses; other keys are
// ignored. Client.FetchStatus unpacks them into a feed.Payload.
//
// # Error Handling
//
// Failures are split in two so the state machine can tell them apart:
//
//   - TransportError: the request could not be built or never got an HTTP
//     response (DNS failure, connection refused, timeout, cancelled context)
//   - ApplicationError: the server answered, but with status >= 400 or with
//     a body that does not carry the two payload strings
//
// # Transport
//
// Transport implements syncer.Sender. Send validates the request and returns
// at once; the fetch runs on a goroutine and its result is delivered through
// the callback as syncer.Success, syncer.Failure (ApplicationError) or
// syncer.SendFailed (TransportError). The callback is expected to queue the
// event onto the goroutine that owns the state machine.
package njt
