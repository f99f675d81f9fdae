package bill

import (
	"encoding/json"
	"fmt"
	"time"
)

// date accepts either a calendar date ("2025-03-05") or an RFC 3339 timestamp.
type date struct {
	time.Time
}

func (d *date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}

	t, err := parseDate(s)
	if err != nil {
		return err
	}

	d.Time = t

	return nil
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}

	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: use YYYY-MM-DD or RFC 3339", s)
	}

	return t, nil
}

func (d *date) ptr() *time.Time {
	if d == nil {
		return nil
	}

	return &d.Time
}
