package model

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"
)

// Timestamps are persisted as ISO-8601 text in local wall-clock time.
const (
	isoLayout     = "2006-01-02T15:04:05"
	displayLayout = "2006-01-02 15:04"
)

var readLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
}

// Timestamp is a second-precision local time stored as ISO-8601 text.
type Timestamp struct {
	time.Time
}

func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t.Local().Truncate(time.Second)}
}

// ParseTimestamp accepts both "T" and space as the date/time separator,
// with or without seconds and fractional seconds.
func ParseTimestamp(s string) (Timestamp, error) {
	s = strings.Replace(strings.TrimSpace(s), " ", "T", 1)
	for _, layout := range readLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return Timestamp{Time: t}, nil
		}
	}
	return Timestamp{}, fmt.Errorf("invalid timestamp %q", s)
}

func (t Timestamp) ISO() string {
	return t.Format(isoLayout)
}

// Display is the format used by tables and exports.
func (t Timestamp) Display() string {
	if t.IsZero() {
		return ""
	}
	return t.Format(displayLayout)
}

func (t Timestamp) Value() (driver.Value, error) {
	return t.ISO(), nil
}

func (t *Timestamp) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*t = Timestamp{}
		return nil
	case time.Time:
		*t = NewTimestamp(v)
		return nil
	case []byte:
		return t.scanString(string(v))
	case string:
		return t.scanString(v)
	default:
		return fmt.Errorf("cannot scan %T into Timestamp", src)
	}
}

func (t *Timestamp) scanString(s string) error {
	if strings.TrimSpace(s) == "" {
		*t = Timestamp{}
		return nil
	}
	parsed, err := ParseTimestamp(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

func (Timestamp) GormDataType() string {
	return "text"
}
