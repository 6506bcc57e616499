package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Latency is a delay applied relative to a ping's scheduled instant, e.g.
// how long after dispatch a reminder fires or when the ping expires. It is
// parsed from "H:MM:SS" strings ("1:00:00", "24:00:00") or Go duration
// literals ("90m") and stored as whole seconds.
type Latency time.Duration

// ParseLatency parses "H:MM:SS" / "HH:MM:SS" or a Go duration literal.
func ParseLatency(s string) (Latency, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty latency")
	}
	if strings.Contains(s, ":") {
		parts := strings.Split(s, ":")
		if len(parts) != 3 {
			return 0, fmt.Errorf("malformed latency %q, want H:MM:SS", s)
		}
		hh, err := strconv.Atoi(parts[0])
		if err != nil || hh < 0 {
			return 0, fmt.Errorf("malformed latency %q, want H:MM:SS", s)
		}
		mm, err := strconv.Atoi(parts[1])
		if err != nil || mm < 0 || mm > 59 {
			return 0, fmt.Errorf("malformed latency %q, want H:MM:SS", s)
		}
		ss, err := strconv.Atoi(parts[2])
		if err != nil || ss < 0 || ss > 59 {
			return 0, fmt.Errorf("malformed latency %q, want H:MM:SS", s)
		}
		return Latency(time.Duration(hh)*time.Hour + time.Duration(mm)*time.Minute + time.Duration(ss)*time.Second), nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("malformed latency %q: %w", s, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("latency %q must not be negative", s)
	}
	return Latency(d), nil
}

// Duration returns the latency as a time.Duration
func (l Latency) Duration() time.Duration {
	return time.Duration(l)
}

// String renders the canonical H:MM:SS form.
func (l Latency) String() string {
	total := int64(time.Duration(l) / time.Second)
	hh := total / 3600
	mm := (total % 3600) / 60
	ss := total % 60
	return fmt.Sprintf("%d:%02d:%02d", hh, mm, ss)
}

// Value implements the driver.Valuer interface for Latency (whole seconds)
func (l Latency) Value() (driver.Value, error) {
	return int64(time.Duration(l) / time.Second), nil
}

// Scan implements the sql.Scanner interface for Latency
func (l *Latency) Scan(value any) error {
	if value == nil {
		*l = 0
		return nil
	}

	switch v := value.(type) {
	case int64:
		*l = Latency(time.Duration(v) * time.Second)
	case []byte:
		return l.scanString(string(v))
	case string:
		return l.scanString(v)
	default:
		return fmt.Errorf("cannot scan %T into Latency", value)
	}

	return nil
}

// scanString handles drivers that hand back numerics as text.
func (l *Latency) scanString(s string) error {
	if secs, err := strconv.ParseInt(s, 10, 64); err == nil {
		*l = Latency(time.Duration(secs) * time.Second)
		return nil
	}
	parsed, err := ParseLatency(s)
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// MarshalJSON renders the H:MM:SS string form.
func (l Latency) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.String())
}

// UnmarshalJSON accepts either the string form or raw seconds.
func (l *Latency) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		parsed, perr := ParseLatency(s)
		if perr != nil {
			return perr
		}
		*l = parsed
		return nil
	}
	var secs int64
	if err := json.Unmarshal(data, &secs); err != nil {
		return fmt.Errorf("latency must be a H:MM:SS string or seconds: %w", err)
	}
	if secs < 0 {
		return fmt.Errorf("latency seconds must not be negative")
	}
	*l = Latency(time.Duration(secs) * time.Second)
	return nil
}
