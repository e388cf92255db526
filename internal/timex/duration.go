// Package timex holds time helpers shared by the config layers.
package timex

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// Duration wraps time.Duration so it can be read from JSON either as a
// string ("90s", "12h", "7d") or as an integer number of nanoseconds.
type Duration struct {
	time.Duration
}

// ParseDuration extends time.ParseDuration with a whole-day unit, so
// "7d" and "1d12h" are accepted.
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.New("empty duration")
	}

	days, rest, found := strings.Cut(s, "d")
	if !found {
		return time.ParseDuration(s)
	}

	n, err := strconv.Atoi(days)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid day count in %q", s)
	}

	d := time.Duration(n) * 24 * time.Hour
	if rest == "" {
		return d, nil
	}

	r, err := time.ParseDuration(rest)
	if err != nil {
		return 0, err
	}
	return d + r, nil
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		d.Duration = time.Duration(value)
		return nil
	case string:
		parsed, err := ParseDuration(value)
		if err != nil {
			return err
		}
		d.Duration = parsed
		return nil
	default:
		return fmt.Errorf("invalid duration: %s", string(b))
	}
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}
