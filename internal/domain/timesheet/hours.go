package timesheet

import (
	"encoding/json"
	"math"
	"strconv"
)

// Hours is a worked-hours figure that may be unavailable, e.g. when a
// timestamp is missing or check-out precedes check-in.
type Hours struct {
	value float64
	valid bool
}

// HoursOf wraps a known value.
func HoursOf(v float64) Hours {
	return Hours{value: v, valid: true}
}

// UnavailableHours is the sentinel for hours that cannot be computed.
func UnavailableHours() Hours {
	return Hours{}
}

func (h Hours) Available() bool {
	return h.valid
}

// Value returns the hours and whether they are available.
func (h Hours) Value() (float64, bool) {
	return h.value, h.valid
}

// Float returns the hours, or 0 when unavailable, so results can be summed directly.
func (h Hours) Float() float64 {
	if !h.valid {
		return 0
	}
	return h.value
}

// Rounded returns the hours rounded to two decimals for display.
func (h Hours) Rounded() float64 {
	return Round2(h.Float())
}

func (h Hours) String() string {
	if !h.valid {
		return "N/A"
	}
	return strconv.FormatFloat(Round2(h.value), 'f', 2, 64)
}

// MarshalJSON encodes unavailable hours as null.
func (h Hours) MarshalJSON() ([]byte, error) {
	if !h.valid {
		return []byte("null"), nil
	}
	return json.Marshal(Round2(h.value))
}

func (h *Hours) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*h = UnavailableHours()
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*h = HoursOf(v)
	return nil
}

// Round2 rounds half away from zero to two decimals.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
