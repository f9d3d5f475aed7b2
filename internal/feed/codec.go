// Package feed decodes the line status payload.
//
// The payload carries two undelimited strings: the line order, made of
// 3-character codes, and the statuses, made of 2-digit decimal values. Entry
// i is order[3i:3i+3] paired with statuses[2i:2i+2]. Positions are the only
// structure, so lengths are checked before anything is sliced.
package feed

import (
	"errors"
	"fmt"
)

const (
	// KeyOrder is the payload key holding concatenated line codes.
	KeyOrder = "1"
	// KeyStatuses is the payload key holding concatenated status values.
	KeyStatuses = "2"

	codeWidth   = 3
	statusWidth = 2
	maxStatus   = 99
)

var (
	// ErrMalformedPayload means the response cannot hold the expected entries.
	ErrMalformedPayload = errors.New("malformed payload")
	// ErrMalformedEntry means a single entry could not be parsed.
	ErrMalformedEntry = errors.New("malformed entry")
)

// Payload is the pair of strings carried by a status response.
type Payload struct {
	Order    string
	Statuses string
}

// Entry is one decoded (code, status) pair.
type Entry struct {
	Code   string
	Status int
}

// EntryError describes an entry skipped during decoding.
type EntryError struct {
	Index int
	Code  string
	Text  string
}

func (e *EntryError) Error() string {
	return fmt.Sprintf("entry %d (%s): status %q is not a valid value", e.Index, e.Code, e.Text)
}

func (e *EntryError) Unwrap() error { return ErrMalformedEntry }

// Batch is the outcome of decoding one payload.
type Batch struct {
	Entries []Entry
	Skipped []*EntryError
}

// Decode splits the payload into count entries. A payload too short for count
// entries fails as a whole; an entry whose status text does not parse is
// recorded in Skipped and decoding continues.
func Decode(order, statuses string, count int) (Batch, error) {
	if count < 0 {
		return Batch{}, fmt.Errorf("%w: negative entry count %d", ErrMalformedPayload, count)
	}
	if len(order) < codeWidth*count {
		return Batch{}, fmt.Errorf("%w: order has %d bytes, need %d", ErrMalformedPayload, len(order), codeWidth*count)
	}
	if len(statuses) < statusWidth*count {
		return Batch{}, fmt.Errorf("%w: statuses has %d bytes, need %d", ErrMalformedPayload, len(statuses), statusWidth*count)
	}

	batch := Batch{Entries: make([]Entry, 0, count)}
	for i := 0; i < count; i++ {
		code := order[codeWidth*i : codeWidth*i+codeWidth]
		text := statuses[statusWidth*i : statusWidth*i+statusWidth]
		value, ok := parseStatus(text)
		if !ok {
			batch.Skipped = append(batch.Skipped, &EntryError{Index: i, Code: code, Text: text})
			continue
		}
		batch.Entries = append(batch.Entries, Entry{Code: code, Status: value})
	}
	return batch, nil
}

// DecodePayload is Decode applied to a Payload.
func DecodePayload(p Payload, count int) (Batch, error) {
	return Decode(p.Order, p.Statuses, count)
}

// PayloadFromMap extracts the order and statuses entries from a decoded
// key-value response.
func PayloadFromMap(values map[string]any) (Payload, error) {
	order, err := stringValue(values, KeyOrder)
	if err != nil {
		return Payload{}, err
	}
	statuses, err := stringValue(values, KeyStatuses)
	if err != nil {
		return Payload{}, err
	}
	return Payload{Order: order, Statuses: statuses}, nil
}

func stringValue(values map[string]any, key string) (string, error) {
	raw, ok := values[key]
	if !ok {
		return "", fmt.Errorf("%w: key %s missing", ErrMalformedPayload, key)
	}
	s, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("%w: key %s is %T, want string", ErrMalformedPayload, key, raw)
	}
	return s, nil
}

// parseStatus reads a decimal status value. Leading spaces and one sign are
// accepted; anything else that is not a digit rejects the whole text.
func parseStatus(text string) (int, bool) {
	i := 0
	for i < len(text) && text[i] == ' ' {
		i++
	}
	negative := false
	if i < len(text) && (text[i] == '+' || text[i] == '-') {
		negative = text[i] == '-'
		i++
	}
	if i == len(text) {
		return 0, false
	}
	value := 0
	for ; i < len(text); i++ {
		c := text[i]
		if c < '0' || c > '9' {
			return 0, false
		}
		value = value*10 + int(c-'0')
	}
	if negative && value != 0 {
		return 0, false
	}
	if value > maxStatus {
		return 0, false
	}
	return value, true
}
