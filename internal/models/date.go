package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const (
	dateLayout     = "2006-01-02"
	wireDateLayout = "2006-01-02T15:04:05.000Z"
)

// Date is a calendar date carried on the wire as an ISO-8601 string.
type Date struct {
	time.Time
}

// NewDate truncates t to midnight UTC of its calendar day.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate accepts a bare date or an RFC 3339 timestamp.
func ParseDate(raw string) (Date, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(dateLayout, raw); err == nil {
		return Date{Time: t}, nil
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD or RFC 3339", raw)
	}
	return Date{Time: t.UTC()}, nil
}

// String renders the wire form.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.UTC().Format(wireDateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*d = Date{}
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	parsed, err := ParseDate(raw)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// AfterDay reports whether d falls on a later calendar day than now.
func (d Date) AfterDay(now time.Time) bool {
	y1, m1, d1 := d.UTC().Date()
	y2, m2, d2 := now.UTC().Date()
	return time.Date(y1, m1, d1, 0, 0, 0, 0, time.UTC).After(time.Date(y2, m2, d2, 0, 0, 0, 0, time.UTC))
}
