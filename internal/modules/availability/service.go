// README: Availability evaluator plus block/absence management.
package availability

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"medicar/internal/types"
)

var (
	ErrNotFound   = errors.New("availability entry not found")
	ErrBadRequest = errors.New("bad request")
)

type Store interface {
	Schedule(ctx context.Context, driverID types.ID) (Schedule, error)
	UpsertBlock(ctx context.Context, b *Block) error
	ListBlocks(ctx context.Context, driverID types.ID) ([]Block, error)
	DeleteBlock(ctx context.Context, id types.ID) error
	AddAbsence(ctx context.Context, a *Absence) error
	ListAbsences(ctx context.Context, driverID types.ID) ([]Absence, error)
	DeleteAbsence(ctx context.Context, id types.ID) error
}

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// Evaluate loads the driver's schedule and checks it against the window.
func (s *Service) Evaluate(ctx context.Context, driverID types.ID, start, end time.Time) (Result, error) {
	sched, err := s.store.Schedule(ctx, driverID)
	if err != nil {
		return Result{}, err
	}
	return EvaluateSchedule(sched, start, end), nil
}

// EvaluateSchedule decides whether a driver is free for the window [start, end).
//
// Absences win over blocks. A window is only supported when it starts and
// ends on the same calendar day; blocks cannot span midnight.
func EvaluateSchedule(sched Schedule, start, end time.Time) Result {
	if end.Before(start) || !sameDay(start, end) {
		return unavailable(ReasonUnsupportedWindow)
	}

	date := dateOf(start)
	for _, a := range sched.Absences {
		// fromDate <= date <= toDate, inclusive on both ends.
		if dateKey(a.From) <= dateKey(date) && dateKey(date) <= dateKey(a.To) {
			return unavailable(ReasonAbsence)
		}
	}

	wd, ok := WeekdayOf(date)
	if !ok {
		return unavailable(ReasonOutsideAvailability)
	}

	from, to := ClockOf(start), ClockOf(end)
	for _, b := range sched.Blocks {
		if b.Weekday == wd && b.Start <= from && to <= b.End {
			return available
		}
	}
	return unavailable(ReasonOutsideAvailability)
}

type BlockCommand struct {
	DriverID types.ID
	Weekday  Weekday
	Start    ClockTime
	End      ClockTime
}

// PutBlock creates or updates the block for (driver, weekday, start).
func (s *Service) PutBlock(ctx context.Context, cmd BlockCommand) (*Block, error) {
	if cmd.DriverID == "" || !ValidWeekday(cmd.Weekday) {
		return nil, ErrBadRequest
	}
	if cmd.End <= cmd.Start {
		return nil, ErrBadRequest
	}
	b := &Block{
		ID:       types.ID(uuid.NewString()),
		DriverID: cmd.DriverID,
		Weekday:  cmd.Weekday,
		Start:    cmd.Start,
		End:      cmd.End,
	}
	if err := s.store.UpsertBlock(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *Service) Blocks(ctx context.Context, driverID types.ID) ([]Block, error) {
	return s.store.ListBlocks(ctx, driverID)
}

func (s *Service) DeleteBlock(ctx context.Context, id types.ID) error {
	return s.store.DeleteBlock(ctx, id)
}

type AbsenceCommand struct {
	DriverID types.ID
	From     time.Time
	To       time.Time
	Reason   string
}

func (s *Service) AddAbsence(ctx context.Context, cmd AbsenceCommand) (*Absence, error) {
	if cmd.DriverID == "" || cmd.From.IsZero() || cmd.To.IsZero() {
		return nil, ErrBadRequest
	}
	if dateOf(cmd.To).Before(dateOf(cmd.From)) {
		return nil, ErrBadRequest
	}
	a := &Absence{
		ID:       types.ID(uuid.NewString()),
		DriverID: cmd.DriverID,
		From:     dateOf(cmd.From),
		To:       dateOf(cmd.To),
		Reason:   cmd.Reason,
	}
	if err := s.store.AddAbsence(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Service) Absences(ctx context.Context, driverID types.ID) ([]Absence, error) {
	return s.store.ListAbsences(ctx, driverID)
}

func (s *Service) DeleteAbsence(ctx context.Context, id types.ID) error {
	return s.store.DeleteAbsence(ctx, id)
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// dateKey collapses an instant to a comparable calendar day, ignoring the
// location so that stored dates and request windows compare by wall date.
func dateKey(t time.Time) int {
	y, m, d := t.Date()
	return y*10000 + int(m)*100 + d
}
