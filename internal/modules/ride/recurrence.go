// README: Recurring-ride expansion: weekdays x week count from a template.
package ride

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"medicar/internal/types"
)

type CreateRecurringCommand struct {
	Template   CreateCommand
	DaysOfWeek []time.Weekday
	Weeks      int
}

// CreateRecurring generates one planned ride per (week, matching weekday)
// on or after the template's pickup date. All occurrences share a generated
// recurrence group. Creation is best effort: a failure on one occurrence
// does not roll back siblings already created.
func (s *Service) CreateRecurring(ctx context.Context, cmd CreateRecurringCommand) ([]types.ID, error) {
	if cmd.Weeks < 1 || len(cmd.DaysOfWeek) == 0 {
		return nil, fmt.Errorf("%w: weekday pattern and week count are required", ErrBadRequest)
	}
	// Validate the template once up front so a bad template fails whole.
	if _, err := s.buildRide(ctx, cmd.Template, nil); err != nil {
		return nil, err
	}

	group := types.ID(uuid.NewString())
	base := cmd.Template.PickupAt
	weekStart := startOfWeek(base)

	var created []types.ID
	var errs []error
	for week := 0; week < cmd.Weeks; week++ {
		for _, dow := range orderedWeekdays(cmd.DaysOfWeek) {
			date := weekStart.AddDate(0, 0, week*7+mondayOffset(dow))
			if date.Before(startOfDay(base)) {
				continue
			}
			occ := shiftTemplate(cmd.Template, date)
			r, err := s.buildRide(ctx, occ, &group)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			if err := s.store.Create(ctx, r); err != nil {
				errs = append(errs, fmt.Errorf("occurrence %s: %w", date.Format("2006-01-02"), err))
				continue
			}
			_ = s.store.AppendEvent(ctx, &Event{
				RideID:     r.ID,
				FromStatus: "",
				ToStatus:   StatusPlanned,
				Action:     "create",
				CreatedAt:  r.CreatedAt,
			})
			created = append(created, r.ID)
		}
	}
	return created, errors.Join(errs...)
}

// shiftTemplate moves the template's pickup/arrival/return onto date,
// keeping times of day and leg durations.
func shiftTemplate(tpl CreateCommand, date time.Time) CreateCommand {
	delta := date.Sub(startOfDay(tpl.PickupAt))
	occ := tpl
	occ.PickupAt = tpl.PickupAt.Add(delta)
	occ.ArrivalAt = tpl.ArrivalAt.Add(delta)
	if tpl.ReturnAt != nil {
		ret := tpl.ReturnAt.Add(delta)
		occ.ReturnAt = &ret
	}
	return occ
}

// startOfWeek returns midnight of the Monday of t's week.
func startOfWeek(t time.Time) time.Time {
	return startOfDay(t).AddDate(0, 0, -mondayOffset(t.Weekday()))
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// mondayOffset maps a weekday to its distance from Monday, with Sunday last.
func mondayOffset(d time.Weekday) int {
	if d == time.Sunday {
		return 6
	}
	return int(d) - 1
}

func orderedWeekdays(days []time.Weekday) []time.Weekday {
	out := make([]time.Weekday, 0, len(days))
	seen := map[time.Weekday]bool{}
	for _, d := range days {
		if !seen[d] {
			seen[d] = true
			out = append(out, d)
		}
	}
	// Sort by Monday-based offset so occurrences come out in date order.
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && mondayOffset(out[j]) < mondayOffset(out[j-1]); j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}
