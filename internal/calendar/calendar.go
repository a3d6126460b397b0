// Package calendar generates and classifies the fixed daily slot grid.
// Everything here is pure: both the public availability endpoint and the
// doctor dashboard call the same Classify so the two can never disagree.
package calendar

import (
	"fmt"
	"strings"
	"time"
)

// SlotsPerDay is fixed: one hourly slot per hour of the day.
const SlotsPerDay = 24

const dateLayout = "2006-01-02"

type Status string

const (
	StatusAvailable   Status = "AVAILABLE"
	StatusBooked      Status = "BOOKED"
	StatusPast        Status = "PAST"
	StatusUnavailable Status = "UNAVAILABLE"
)

// SlotInfo is one classified slot of a day schedule.
type SlotInfo struct {
	Time   string `json:"time"`
	Status Status `json:"status"`
}

// SlotLabel formats an hour of day (0-23) as the canonical 12-hour label,
// e.g. 0 -> "12:00 AM", 13 -> "01:00 PM".
func SlotLabel(hour int) string {
	suffix := "AM"
	if hour >= 12 {
		suffix = "PM"
	}
	h12 := hour % 12
	if h12 == 0 {
		h12 = 12
	}
	return fmt.Sprintf("%02d:00 %s", h12, suffix)
}

// Slots returns the 24 canonical labels in chronological order.
func Slots() []string {
	labels := make([]string, 0, SlotsPerDay)
	for h := 0; h < SlotsPerDay; h++ {
		labels = append(labels, SlotLabel(h))
	}
	return labels
}

// ParseSlot converts a slot label to its hour of day. Matching is case-
// and whitespace-insensitive so legacy records like " 10:00 am" resolve.
func ParseSlot(label string) (int, error) {
	parts := strings.Fields(strings.ToUpper(strings.TrimSpace(label)))
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid slot label %q", label)
	}
	var h, m int
	if _, err := fmt.Sscanf(parts[0], "%d:%d", &h, &m); err != nil {
		return 0, fmt.Errorf("invalid slot time %q", label)
	}
	if h < 1 || h > 12 || m != 0 {
		return 0, fmt.Errorf("invalid slot time %q", label)
	}
	switch parts[1] {
	case "AM":
		if h == 12 {
			h = 0
		}
	case "PM":
		if h != 12 {
			h += 12
		}
	default:
		return 0, fmt.Errorf("invalid slot meridiem %q", label)
	}
	return h, nil
}

// NormalizeSlot maps any accepted spelling of a slot label onto the
// canonical form used as the storage key.
func NormalizeSlot(label string) (string, error) {
	hour, err := ParseSlot(label)
	if err != nil {
		return "", err
	}
	return SlotLabel(hour), nil
}

// ParseDate validates a YYYY-MM-DD date string in the given location.
func ParseDate(date string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(dateLayout, date, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", date)
	}
	return t, nil
}

// SlotStart is the wall-clock start of a slot on a date in loc.
func SlotStart(date string, hour int, loc *time.Location) (time.Time, error) {
	day, err := ParseDate(date, loc)
	if err != nil {
		return time.Time{}, err
	}
	return day.Add(time.Duration(hour) * time.Hour), nil
}

// Classify returns the ordered schedule for a date.
//
// Inputs are keyed by canonical slot label. Precedence: a booking or an
// active checkout lock wins over everything (a booked slot in the past
// still reads BOOKED), then doctor unavailability, then PAST. PAST only
// applies when date is today in loc; later dates are never PAST no matter
// the current time of day.
func Classify(date string, now time.Time, loc *time.Location, booked, locked, unavailable map[string]bool, wholeDayOff bool) ([]SlotInfo, error) {
	if _, err := ParseDate(date, loc); err != nil {
		return nil, err
	}

	localNow := now.In(loc)
	isToday := localNow.Format(dateLayout) == date

	schedule := make([]SlotInfo, 0, SlotsPerDay)
	for h := 0; h < SlotsPerDay; h++ {
		label := SlotLabel(h)
		status := StatusAvailable
		switch {
		case booked[label] || locked[label]:
			status = StatusBooked
		case wholeDayOff || unavailable[label]:
			status = StatusUnavailable
		case isToday:
			start, err := SlotStart(date, h, loc)
			if err != nil {
				return nil, err
			}
			if start.Before(localNow) {
				status = StatusPast
			}
		}
		schedule = append(schedule, SlotInfo{Time: label, Status: status})
	}
	return schedule, nil
}
