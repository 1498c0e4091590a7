// Package schedule models the weekly working-hours window that gates
// when chain steps may fire. Times are wall-clock HH:MM strings in the
// account's single implicit timezone; a window never spans midnight.
package schedule

import (
	"encoding/json"
	"fmt"
	"time"
)

// DayNames lists the seven calendar days in week order. A schedule
// carries exactly one entry per name.
var DayNames = []string{
	"monday",
	"tuesday",
	"wednesday",
	"thursday",
	"friday",
	"saturday",
	"sunday",
}

// WorkingDay is one day's availability. Start/End are kept even when the
// day is disabled so toggling a day back on restores its old window.
type WorkingDay struct {
	Day     string `json:"day"`
	Enabled bool   `json:"enabled"`
	Start   string `json:"start"` // HH:MM
	End     string `json:"end"`   // HH:MM
}

// Schedule is the full 7-day window.
type Schedule []WorkingDay

// Default returns the standard Monday-Friday 09:00-18:00 schedule new
// chains start with.
func Default() Schedule {
	s := make(Schedule, 0, len(DayNames))
	for _, day := range DayNames {
		enabled := day != "saturday" && day != "sunday"
		s = append(s, WorkingDay{Day: day, Enabled: enabled, Start: "09:00", End: "18:00"})
	}
	return s
}

func validTime(v string) bool {
	_, err := time.Parse("15:04", v)
	return err == nil
}

// Validate checks the structural invariants: exactly seven entries, one
// per calendar day, well-formed times, and on enabled days a window
// that does not end before it starts. Disabled days keep whatever times
// they carry; they only need to be parseable so they round-trip.
func (s Schedule) Validate() error {
	if len(s) != len(DayNames) {
		return fmt.Errorf("schedule must contain exactly %d days, got %d", len(DayNames), len(s))
	}

	known := make(map[string]bool, len(DayNames))
	for _, day := range DayNames {
		known[day] = true
	}

	seen := make(map[string]bool, len(s))
	for _, wd := range s {
		if !known[wd.Day] {
			return fmt.Errorf("unknown day %q", wd.Day)
		}
		if seen[wd.Day] {
			return fmt.Errorf("duplicate day %q", wd.Day)
		}
		seen[wd.Day] = true

		if !validTime(wd.Start) {
			return fmt.Errorf("day %q: invalid start time %q", wd.Day, wd.Start)
		}
		if !validTime(wd.End) {
			return fmt.Errorf("day %q: invalid end time %q", wd.Day, wd.End)
		}
		if wd.Enabled && wd.Start >= wd.End {
			return fmt.Errorf("day %q: start %q is not before end %q", wd.Day, wd.Start, wd.End)
		}
	}
	return nil
}

// Toggle flips one day's enabled flag in place. Unknown days are
// ignored.
func (s Schedule) Toggle(day string) {
	for i := range s {
		if s[i].Day == day {
			s[i].Enabled = !s[i].Enabled
			return
		}
	}
}

// Parse decodes a schedule from its stored JSON text. An empty value
// yields the default schedule so agents created before schedules
// existed keep working.
func Parse(raw string) (Schedule, error) {
	if raw == "" {
		return Default(), nil
	}
	var s Schedule
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return nil, err
	}
	return s, nil
}

// Encode serializes the schedule for the text column.
func (s Schedule) Encode() (string, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
