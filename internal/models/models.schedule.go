// FilePath: internal/models/models.schedule.go
package models

import (
	"fmt"
	"strconv"
	"time"
)

type ScheduleFrequency string

const (
	FrequencyWeekly  ScheduleFrequency = "weekly"
	FrequencyMonthly ScheduleFrequency = "monthly"
)

// Valid reports whether f is a known frequency tag.
func (f ScheduleFrequency) Valid() bool {
	return f == FrequencyWeekly || f == FrequencyMonthly
}

// weekdayNames is ordered to match the bitmask layout: bit 6 (the most
// significant of the 7 used bits) is Sunday, bit 0 is Saturday.
var weekdayNames = [7]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

// Schedule is an on-window for a single actuatable device. Starts and
// Ends are clock times in "HH:MM" form; the window is exclusive on both
// ends and never wraps past midnight.
type Schedule struct {
	ID        int64             `json:"id" db:"id"`
	DeviceID  int64             `json:"device_id" db:"device_id"`
	Starts    string            `json:"starts" db:"starts"`
	Ends      string            `json:"ends" db:"ends"`
	Frequency ScheduleFrequency `json:"frequency" db:"frequency"`
	Bitmask   int               `json:"bitmask" db:"bitmask"`
	CreatedAt time.Time         `json:"created_at" db:"created_at"`
}

// Weekdays decodes the schedule's bitmask into the names of its active
// days, Sunday first.
func (s *Schedule) Weekdays() []string {
	return BitmaskToWeekdays(s.Bitmask)
}

// ActiveOn reports whether the schedule's bitmask covers the given
// weekday.
func (s *Schedule) ActiveOn(day time.Weekday) bool {
	// time.Weekday counts Sunday as 0; bit 6 is Sunday.
	return s.Bitmask>>(6-int(day))&1 == 1
}

// BitmaskToWeekdays decodes a 7-bit weekday mask (bit 6 = Sunday … bit 0
// = Saturday) into day names.
func BitmaskToWeekdays(bitmask int) []string {
	days := []string{}
	for i, name := range weekdayNames {
		if bitmask>>(6-i)&1 == 1 {
			days = append(days, name)
		}
	}
	return days
}

// WeekdaysToBitmask is the inverse of BitmaskToWeekdays. Unknown day
// names are ignored.
func WeekdaysToBitmask(days []string) int {
	bitmask := 0
	for _, day := range days {
		for i, name := range weekdayNames {
			if day == name {
				bitmask |= 1 << (6 - i)
			}
		}
	}
	return bitmask
}

// ParseBitmask parses the API boundary encoding of a weekday mask: a
// string of exactly 7 binary digits, Sunday first.
func ParseBitmask(s string) (int, error) {
	if len(s) != 7 {
		return 0, fmt.Errorf("bitmask must be 7 binary digits, got %q", s)
	}
	bitmask, err := strconv.ParseInt(s, 2, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid bitmask %q: %w", s, err)
	}
	return int(bitmask), nil
}

// FormatBitmask renders a weekday mask in the boundary encoding.
func FormatBitmask(bitmask int) string {
	return fmt.Sprintf("%07b", bitmask&0x7f)
}

// ParseClock parses an "HH:MM" clock time into minutes since midnight.
func ParseClock(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("invalid clock time %q: %w", s, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}
