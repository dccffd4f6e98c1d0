// README: Assignment suggestion combines availability, conflicts, and load.
package assignment

import (
	"context"
	"sort"
	"time"

	"medicar/internal/modules/availability"
	"medicar/internal/modules/driver"
	"medicar/internal/modules/ride"
	"medicar/internal/types"
)

type Roster interface {
	List(ctx context.Context) ([]*driver.Driver, error)
}

type Rides interface {
	ListForDriverOnDate(ctx context.Context, driverID types.ID, date time.Time) ([]*ride.Ride, error)
}

type Availability interface {
	Evaluate(ctx context.Context, driverID types.ID, start, end time.Time) (availability.Result, error)
}

type Service struct {
	roster Roster
	rides  Rides
	avail  Availability
}

func NewService(roster Roster, rides Rides, avail Availability) *Service {
	return &Service{roster: roster, rides: rides, avail: avail}
}

// Suggest evaluates the full roster against the ride's window. It is a
// read-only query; it never assigns anyone.
func (s *Service) Suggest(ctx context.Context, r *ride.Ride) ([]Suggestion, error) {
	drivers, err := s.roster.List(ctx)
	if err != nil {
		return nil, err
	}
	start, end := r.Window()

	out := make([]Suggestion, 0, len(drivers))
	for _, d := range drivers {
		sg := Suggestion{DriverID: d.ID, DriverName: d.Name}

		res, err := s.avail.Evaluate(ctx, d.ID, start, end)
		if err != nil {
			return nil, err
		}
		if !res.Available {
			sg.Reason = res.Reason
			out = append(out, sg)
			continue
		}

		existing, err := s.rides.ListForDriverOnDate(ctx, d.ID, start)
		if err != nil {
			return nil, err
		}
		conflict := false
		for _, other := range existing {
			if other.ID == r.ID {
				continue
			}
			os, oe := other.Window()
			if overlaps(start, end, os, oe) {
				conflict = true
				break
			}
		}
		if conflict {
			sg.Reason = availability.ReasonRideConflict
			out = append(out, sg)
			continue
		}

		sg.Available = true
		sg.RideCount = len(existing)
		out = append(out, sg)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Available != out[j].Available {
			return out[i].Available
		}
		if out[i].Available && out[i].RideCount != out[j].RideCount {
			return out[i].RideCount < out[j].RideCount
		}
		return out[i].DriverName < out[j].DriverName
	})
	return out, nil
}

// overlaps is the half-open interval test: two windows overlap iff
// startA < endB && startB < endA.
func overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}
