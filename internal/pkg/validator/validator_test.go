package validator

import (
	"testing"
	"time"
)

func TestIsEmpty(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{"", true},
		{"   ", true},
		{"abc", false},
		{" abc ", false},
	}
	for _, c := range cases {
		got := IsEmpty(c.input)
		if got != c.want {
			t.Errorf("IsEmpty(%q) = %v, want %v", c.input, got, c.want)
		}
	}
}

func TestIsValidUUID(t *testing.T) {
	valid := []string{
		"0188d0f2-7b8c-7b4a-8a2b-6b8b8b8b8b8b", // valid UUIDv7
		"0188D0F2-7B8C-7B4A-8A2B-6B8B8B8B8B8B", // valid UUIDv7 (uppercase)
	}
	invalid := []string{
		"123e4567-e89b-12d3-a456-426614174000", // not v7
		"0188d0f27b8c7b4a8a2b6b8b8b8b8b8b",     // missing dashes
		"g188d0f2-7b8c-7b4a-8a2b-6b8b8b8b8b8b", // invalid hex
		"",                                     // empty
	}
	for _, uuid := range valid {
		if !IsValidUUID(uuid) {
			t.Errorf("IsValidUUID(%q) = false, want true", uuid)
		}
	}
	for _, uuid := range invalid {
		if IsValidUUID(uuid) {
			t.Errorf("IsValidUUID(%q) = true, want false", uuid)
		}
	}
}

func TestIsValidDate(t *testing.T) {
	valid := []string{"2023-01-01", "2000-12-31"}
	invalid := []string{"2023-13-01", "2023-01-32", "2023/01/01", "01-01-2023", ""}
	for _, s := range valid {
		if _, ok := IsValidDate(s); !ok {
			t.Errorf("IsValidDate(%q) = false, want true", s)
		}
	}
	for _, s := range invalid {
		if _, ok := IsValidDate(s); ok {
			t.Errorf("IsValidDate(%q) = true, want false", s)
		}
	}
}

func TestIsValidClockTime(t *testing.T) {
	valid := []string{"09:00", "23:59", "00:00", "17:30:15", " 08:15 "}
	invalid := []string{"24:00", "9am", "12:60", "", "12"}
	for _, s := range valid {
		if _, ok := IsValidClockTime(s); !ok {
			t.Errorf("IsValidClockTime(%q) = false, want true", s)
		}
	}
	for _, s := range invalid {
		if _, ok := IsValidClockTime(s); ok {
			t.Errorf("IsValidClockTime(%q) = true, want false", s)
		}
	}
}

func TestParseDateTimeIn(t *testing.T) {
	london, err := time.LoadLocation("Europe/London")
	if err != nil {
		t.Skip("tzdata not available")
	}

	got, ok := ParseDateTimeIn("2024-07-01T09:07:00Z", london)
	if !ok || !got.Equal(time.Date(2024, 7, 1, 9, 7, 0, 0, time.UTC)) {
		t.Errorf("ParseDateTimeIn(RFC3339) = %v, %v", got, ok)
	}

	// BST is UTC+1, so local 09:07 is 08:07 UTC
	got, ok = ParseDateTimeIn("2024-07-01 09:07", london)
	if !ok || !got.Equal(time.Date(2024, 7, 1, 8, 7, 0, 0, time.UTC)) {
		t.Errorf("ParseDateTimeIn(local) = %v, %v", got, ok)
	}

	got, ok = ParseDateTimeIn("2024-07-01T09:07:30", nil)
	if !ok || !got.Equal(time.Date(2024, 7, 1, 9, 7, 30, 0, time.UTC)) {
		t.Errorf("ParseDateTimeIn(nil loc) = %v, %v", got, ok)
	}

	for _, s := range []string{"", "yesterday", "2024-07-01", "09:07"} {
		if _, ok := ParseDateTimeIn(s, nil); ok {
			t.Errorf("ParseDateTimeIn(%q) = true, want false", s)
		}
	}
}

func TestIsValidTimezone(t *testing.T) {
	if _, ok := IsValidTimezone("UTC"); !ok {
		t.Errorf("IsValidTimezone(UTC) = false, want true")
	}
	for _, s := range []string{"", "Mars/Olympus", "   "} {
		if _, ok := IsValidTimezone(s); ok {
			t.Errorf("IsValidTimezone(%q) = true, want false", s)
		}
	}
}

func TestIsInSlice(t *testing.T) {
	slice := []string{"a", "b", "c"}
	if !IsInSlice("a", slice) {
		t.Errorf("IsInSlice('a') = false, want true")
	}
	if IsInSlice("d", slice) {
		t.Errorf("IsInSlice('d') = true, want false")
	}
}

func TestValidationErrors_Error(t *testing.T) {
	errs := ValidationErrors{
		{Field: "check_in_time", Message: "invalid"},
		{Field: "break_minutes", Message: "required"},
	}
	got := errs.Error()
	want := "check_in_time: invalid; break_minutes: required"
	if got != want {
		t.Errorf("ValidationErrors.Error() = %q, want %q", got, want)
	}
}

func TestValidationErrors_ToMap(t *testing.T) {
	errs := ValidationErrors{
		{Field: "check_in_time", Message: "invalid"},
		{Field: "break_minutes", Message: "required"},
	}
	got := errs.ToMap()
	want := map[string]string{"check_in_time": "invalid", "break_minutes": "required"}
	if len(got) != len(want) {
		t.Errorf("ValidationErrors.ToMap() length = %d, want %d", len(got), len(want))
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("ValidationErrors.ToMap()[%q] = %q, want %q", k, got[k], v)
		}
	}
}
