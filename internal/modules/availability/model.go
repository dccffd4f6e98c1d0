// README: Weekly availability blocks, dated absences, and evaluation results.
package availability

import (
	"fmt"
	"time"

	"medicar/internal/types"
)

// Weekday is a working day a block can be attached to. There is no
// representation for Saturday or Sunday, so a driver is never available
// on a weekend.
type Weekday string

const (
	Monday    Weekday = "monday"
	Tuesday   Weekday = "tuesday"
	Wednesday Weekday = "wednesday"
	Thursday  Weekday = "thursday"
	Friday    Weekday = "friday"
)

// WeekdayOf maps a calendar date onto a block weekday. ok is false on
// weekends.
func WeekdayOf(t time.Time) (Weekday, bool) {
	switch t.Weekday() {
	case time.Monday:
		return Monday, true
	case time.Tuesday:
		return Tuesday, true
	case time.Wednesday:
		return Wednesday, true
	case time.Thursday:
		return Thursday, true
	case time.Friday:
		return Friday, true
	}
	return "", false
}

func ValidWeekday(w Weekday) bool {
	switch w {
	case Monday, Tuesday, Wednesday, Thursday, Friday:
		return true
	}
	return false
}

// ClockTime is a local time of day in minutes since midnight.
type ClockTime int

// ParseClock parses "HH:MM".
func ParseClock(s string) (ClockTime, error) {
	var h, m int
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return 0, fmt.Errorf("invalid clock time %q", s)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid clock time %q", s)
	}
	return ClockTime(h*60 + m), nil
}

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

// ClockOf returns the time of day of an instant in its own location.
func ClockOf(t time.Time) ClockTime {
	return ClockTime(t.Hour()*60 + t.Minute())
}

// Block is a recurring weekly window in which a driver can take rides.
// At most one block exists per (driver, weekday, start).
type Block struct {
	ID       types.ID
	DriverID types.ID
	Weekday  Weekday
	Start    ClockTime
	End      ClockTime
}

// Absence marks a driver fully unavailable over a closed date interval,
// overriding any blocks.
type Absence struct {
	ID       types.ID
	DriverID types.ID
	From     time.Time
	To       time.Time
	Reason   string
}

// Schedule is everything needed to evaluate one driver.
type Schedule struct {
	Blocks   []Block
	Absences []Absence
}

type Reason string

const (
	ReasonAbsence             Reason = "absence"
	ReasonOutsideAvailability Reason = "outside availability"
	ReasonUnsupportedWindow   Reason = "unsupported window"
	ReasonRideConflict        Reason = "ride conflict"
)

// Result is the outcome of evaluating a driver against a time window.
type Result struct {
	Available bool
	Reason    Reason
}

var available = Result{Available: true}

func unavailable(r Reason) Result {
	return Result{Reason: r}
}
