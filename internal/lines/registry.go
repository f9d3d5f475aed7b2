// Package lines holds the fixed catalog of tracked rail lines and their
// current delay status.
package lines

import (
	"errors"
	"fmt"
	"strconv"
)

// CodeLength is the width of a line code on the wire.
const CodeLength = 3

const (
	// StatusNoDelay means the line runs on time.
	StatusNoDelay = 0
	// StatusMaxDelay is the largest value interpreted as a delay in minutes.
	StatusMaxDelay = 97
	// StatusCanceled marks a canceled service.
	StatusCanceled = 98
	// StatusUnknown is the initial value and means no data has arrived yet.
	StatusUnknown = 99
)

// Definition describes one catalog entry.
type Definition struct {
	Code string
	Name string
}

// DefaultCatalog lists the NJ Transit rail lines in display order.
var DefaultCatalog = []Definition{
	{Code: "NEC", Name: "NE Corridor"},
	{Code: "NJC", Name: "NJ Coastline"},
	{Code: "RAR", Name: "Raritan Valley"},
	{Code: "MNE", Name: "Morris & Essex"},
	{Code: "MNB", Name: "Main/Bergen/Port Jervis"},
	{Code: "BNT", Name: "Montclair Boonton"},
	{Code: "PAS", Name: "Pascack Valley"},
	{Code: "ATL", Name: "Atlantic City"},
}

// Record is a single tracked line.
type Record struct {
	Code   string
	Name   string
	Status int
}

// Condition groups status values for display.
type Condition int

const (
	ConditionUnknown Condition = iota
	ConditionOK
	ConditionDelayed
	ConditionCanceled
)

// Condition classifies the record's status value.
func (r Record) Condition() Condition {
	switch {
	case r.Status == StatusNoDelay:
		return ConditionOK
	case r.Status == StatusCanceled:
		return ConditionCanceled
	case r.Status >= 1 && r.Status <= StatusMaxDelay:
		return ConditionDelayed
	default:
		return ConditionUnknown
	}
}

// Label returns the short human-readable status text.
func (r Record) Label() string {
	switch r.Condition() {
	case ConditionOK:
		return "No Delays!"
	case ConditionCanceled:
		return "Canceled!"
	case ConditionDelayed:
		if r.Status == 1 {
			return "1 Minute"
		}
		return strconv.Itoa(r.Status) + " Minutes"
	default:
		return "Getting Status"
	}
}

// ValidStatus reports whether v belongs to one of the status classes.
func ValidStatus(v int) bool {
	return v >= StatusNoDelay && v <= StatusUnknown
}

// Registry owns the line records. Its size and the identity of its records
// are fixed at construction; only statuses change afterwards.
type Registry struct {
	records []Record
	index   map[string]int
}

// New builds a registry from defs, in order, with every status unknown.
func New(defs []Definition) (*Registry, error) {
	if len(defs) == 0 {
		return nil, errors.New("lines: catalog is empty")
	}
	r := &Registry{
		records: make([]Record, 0, len(defs)),
		index:   make(map[string]int, len(defs)),
	}
	for _, s := range defs {
		if len(s.Code) != CodeLength {
			return nil, fmt.Errorf("lines: code %q must be %d characters", s.Code, CodeLength)
		}
		if _, dup := r.index[s.Code]; dup {
			return nil, fmt.Errorf("lines: duplicate code %q", s.Code)
		}
		r.index[s.Code] = len(r.records)
		r.records = append(r.records, Record{Code: s.Code, Name: s.Name, Status: StatusUnknown})
	}
	return r, nil
}

// Len returns the number of tracked lines.
func (r *Registry) Len() int {
	return len(r.records)
}

// Find looks up a record by exact code.
func (r *Registry) Find(code string) (Record, bool) {
	i, ok := r.index[code]
	if !ok {
		return Record{}, false
	}
	return r.records[i], true
}

// Apply sets the status of the record matching code. It returns false and
// leaves the registry untouched when no record matches or the value is out
// of range.
func (r *Registry) Apply(code string, value int) bool {
	i, ok := r.index[code]
	if !ok || !ValidStatus(value) {
		return false
	}
	r.records[i].Status = value
	return true
}

// Records returns a copy of all records in display order.
func (r *Registry) Records() []Record {
	out := make([]Record, len(r.records))
	copy(out, r.records)
	return out
}
