package domain

import (
	"strings"
	"time"
)

var timestampLayouts = []struct {
	layout string
	zoned  bool
}{
	{time.RFC3339Nano, true},
	{"2006-01-02T15:04:05.999999999", false},
	{"2006-01-02 15:04:05.999999999", false},
	{"2006-01-02 15:04:05", false},
}

// Timestamp is a snapshot creation time. Raw keeps the source text so that two
// fetches can be compared exactly even when the text is not a recognized layout.
type Timestamp struct {
	time.Time
	Raw string

	// naive marks text without a zone offset. Time then holds the wall clock in UTC.
	naive bool
}

// ParseTimestamp parses s against the known layouts. Unknown layouts yield a
// Timestamp with only Raw set.
func ParseTimestamp(s string) Timestamp {
	s = strings.TrimSpace(s)
	ts := Timestamp{Raw: s}
	if s == "" {
		return ts
	}
	for _, l := range timestampLayouts {
		if t, err := time.Parse(l.layout, s); err == nil {
			ts.Time = t
			ts.naive = !l.zoned
			break
		}
	}
	return ts
}

// UnmarshalJSON accepts a string timestamp or null
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "null" {
		s = ""
	}
	*t = ParseTimestamp(s)
	return nil
}

// IsZero reports whether no timestamp was received at all
func (t Timestamp) IsZero() bool {
	return t.Raw == "" && t.Time.IsZero()
}

// Parsed reports whether Raw matched one of the known layouts
func (t Timestamp) Parsed() bool {
	return !t.Time.IsZero()
}

// In returns the instant in loc. A timestamp without a zone offset is read as
// wall-clock time in loc, so it displays unchanged.
func (t Timestamp) In(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	if !t.naive {
		return t.Time.In(loc)
	}
	w := t.Time
	return time.Date(w.Year(), w.Month(), w.Day(), w.Hour(), w.Minute(), w.Second(), w.Nanosecond(), loc)
}

// Same reports whether both timestamps identify the same snapshot
func (t Timestamp) Same(other Timestamp) bool {
	if t.Raw == other.Raw {
		return true
	}
	if t.Parsed() && other.Parsed() {
		return t.Time.Equal(other.Time)
	}
	return false
}

// OlderThan reports whether t is strictly before other. Unparsed timestamps are never older.
func (t Timestamp) OlderThan(other Timestamp) bool {
	if !t.Parsed() || !other.Parsed() {
		return false
	}
	return t.Time.Before(other.Time)
}
