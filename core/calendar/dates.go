package calendar

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the canonical day representation. It sorts lexically in chronological order.
const DateLayout = "2006-01-02"

// accepted input layouts, tried in order
var dateLayouts = []string{
	DateLayout,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"Mon Jan 02 2006", // Date.prototype.toDateString()
	"Mon Jan 2 2006",
}

// Date is a calendar day with no time-of-day or timezone component.
type Date struct {
	t time.Time // midnight UTC
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf returns the calendar day of t in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, m, d)
}

// NormalizeDate parses a date representation and canonicalizes it to a Date.
// Timestamps keep the day of their own offset; the time of day is dropped.
func NormalizeDate(input string) (Date, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return Date{}, invalid(ErrInvalidDate)
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			if t.Year() < 1 || t.Year() > 9999 {
				break
			}
			return DateOf(t), nil
		}
	}
	return Date{}, invalid(ErrInvalidDate)
}

// MonthRange returns the first and last day of a month. month is zero-based [0,11].
func MonthRange(year, month int) (first, last Date, err error) {
	if year < 1 || year > 9999 || month < 0 || month > 11 {
		return Date{}, Date{}, invalid(ErrInvalidRange)
	}
	first = NewDate(year, time.Month(month+1), 1)
	last = Date{t: first.t.AddDate(0, 1, -1)}
	return first, last, nil
}

func (d Date) IsZero() bool { return d.t.IsZero() }
func (d Date) Time() time.Time { return d.t }
func (d Date) Before(o Date) bool { return d.t.Before(o.t) }
func (d Date) After(o Date) bool { return d.t.After(o.t) }
func (d Date) Equal(o Date) bool { return d.t.Equal(o.t) }
func (d Date) AddDays(n int) Date { return Date{t: d.t.AddDate(0, 0, n)} }
func (d Date) Within(from, to Date) bool {
	return !d.Before(from) && !d.After(to)
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.t.Format(DateLayout)
}

func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Date) UnmarshalText(data []byte) error {
	nd, err := NormalizeDate(string(data))
	if err != nil {
		return err
	}
	*d = nd
	return nil
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
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	return d.UnmarshalText([]byte(s))
}

// Value implements driver.Valuer; dates are sent to the database in canonical form.
func (d Date) Value() (driver.Value, error) {
	if d.IsZero() {
		return nil, nil
	}
	return d.String(), nil
}

// Scan implements sql.Scanner for DATE and TEXT columns.
func (d *Date) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*d = Date{}
	case time.Time:
		*d = DateOf(v)
	case string:
		return d.scanString(v)
	case []byte:
		return d.scanString(string(v))
	default:
		return fmt.Errorf("calendar.Date: cannot scan %T", src)
	}
	return nil
}

func (d *Date) scanString(s string) error {
	// pq may return DATE columns as "2006-01-02T00:00:00Z"
	if len(s) > len(DateLayout) {
		s = s[:len(DateLayout)]
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return fmt.Errorf("calendar.Date: %v", err)
	}
	*d = DateOf(t)
	return nil
}
