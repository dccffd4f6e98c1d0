// README: Ride service implements guarded state transitions and persistence.
package ride

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"medicar/internal/modules/availability"
	"medicar/internal/types"
)

var (
	ErrNotFound          = errors.New("ride not found")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrDriverUnavailable = errors.New("driver unavailable")
	ErrUnsupportedWindow = errors.New("unsupported time window")
	ErrConflict          = errors.New("ride was modified concurrently")
	ErrBadRequest        = errors.New("bad request")
)

// Change is the write half of one transition: target status plus the
// driver/reason columns the transition touches.
type Change struct {
	To           Status
	Driver       *types.ID
	ClearDriver  bool
	CancelReason *string
}

type Store interface {
	Create(ctx context.Context, r *Ride) error
	Get(ctx context.Context, id types.ID) (*Ride, error)
	// ApplyTransition updates the ride only when status and version still
	// match; false means a concurrent writer won.
	ApplyTransition(ctx context.Context, id types.ID, from Status, version int, ch Change) (bool, error)
	ListOnDate(ctx context.Context, date time.Time) ([]*Ride, error)
	ListForDriverOnDate(ctx context.Context, driverID types.ID, date time.Time) ([]*Ride, error)
	Delete(ctx context.Context, id types.ID) error
	AppendEvent(ctx context.Context, e *Event) error
}

// AvailabilityEvaluator decides whether a driver can take a window.
type AvailabilityEvaluator interface {
	Evaluate(ctx context.Context, driverID types.ID, start, end time.Time) (availability.Result, error)
}

// Notifier delivers status-change events to interested parties. Delivery is
// best effort; implementations log failures and never return them.
type Notifier interface {
	StatusChanged(ctx context.Context, r *Ride, from, to Status)
}

// RouteEstimator fills the optional distance/duration estimate on creation.
type RouteEstimator interface {
	Estimate(ctx context.Context, origin, dest types.Point) (time.Duration, float64, error)
}

type Service struct {
	store        Store
	availability AvailabilityEvaluator
	notifier     Notifier
	routes       RouteEstimator
}

func NewService(store Store, avail AvailabilityEvaluator, notifier Notifier, routes RouteEstimator) *Service {
	return &Service{store: store, availability: avail, notifier: notifier, routes: routes}
}

type CreateCommand struct {
	PatientID     types.ID
	DestinationID types.ID
	PickupAt      time.Time
	ArrivalAt     time.Time
	ReturnAt      *time.Time
	Notes         string
	// Origin and Destination coordinates, when known, feed the route estimate.
	Origin      *types.Point
	Destination *types.Point
}

func (s *Service) Create(ctx context.Context, cmd CreateCommand) (types.ID, error) {
	r, err := s.buildRide(ctx, cmd, nil)
	if err != nil {
		return "", err
	}
	if err := s.store.Create(ctx, r); err != nil {
		return "", err
	}
	_ = s.store.AppendEvent(ctx, &Event{
		RideID:     r.ID,
		FromStatus: "",
		ToStatus:   StatusPlanned,
		Action:     "create",
		CreatedAt:  r.CreatedAt,
	})
	return r.ID, nil
}

func (s *Service) buildRide(ctx context.Context, cmd CreateCommand, group *types.ID) (*Ride, error) {
	if cmd.PatientID == "" || cmd.DestinationID == "" {
		return nil, fmt.Errorf("%w: patient and destination are required", ErrBadRequest)
	}
	if cmd.ArrivalAt.Before(cmd.PickupAt) {
		return nil, fmt.Errorf("%w: arrival before pickup", ErrBadRequest)
	}
	r := &Ride{
		ID:              types.ID(uuid.NewString()),
		PatientID:       cmd.PatientID,
		DestinationID:   cmd.DestinationID,
		Status:          StatusPlanned,
		PickupAt:        cmd.PickupAt,
		ArrivalAt:       cmd.ArrivalAt,
		ReturnAt:        cmd.ReturnAt,
		RecurrenceGroup: group,
		Notes:           cmd.Notes,
		CreatedAt:       time.Now(),
	}
	if s.routes != nil && cmd.Origin != nil && cmd.Destination != nil {
		if dur, km, err := s.routes.Estimate(ctx, *cmd.Origin, *cmd.Destination); err == nil {
			r.EstimatedTime = &dur
			r.EstimatedKm = &km
		}
	}
	return r, nil
}

func (s *Service) Get(ctx context.Context, id types.ID) (*Ride, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) ListOnDate(ctx context.Context, date time.Time) ([]*Ride, error) {
	return s.store.ListOnDate(ctx, date)
}

// Delete removes a ride physically. Cancellation is a status change; this
// exists for administrative cleanup only.
func (s *Service) Delete(ctx context.Context, id types.ID) error {
	return s.store.Delete(ctx, id)
}

type AssignCommand struct {
	RideID   types.ID
	DriverID types.ID
}

// AssignDriver attaches a driver to a planned ride after checking the
// driver's schedule against the ride window. The status stays planned.
func (s *Service) AssignDriver(ctx context.Context, cmd AssignCommand) error {
	r, err := s.store.Get(ctx, cmd.RideID)
	if err != nil {
		return err
	}
	to, ok := NextStatus(ActionAssignDriver, r.Status)
	if !ok {
		return invalidTransition(ActionAssignDriver, r.Status)
	}
	start, end := r.Window()
	res, err := s.availability.Evaluate(ctx, cmd.DriverID, start, end)
	if err != nil {
		return err
	}
	if res.Reason == availability.ReasonUnsupportedWindow {
		return fmt.Errorf("%w: ride spans midnight", ErrUnsupportedWindow)
	}
	if !res.Available {
		return fmt.Errorf("%w: %s", ErrDriverUnavailable, res.Reason)
	}
	if err := s.apply(ctx, r, ActionAssignDriver, Change{To: to, Driver: &cmd.DriverID}); err != nil {
		return err
	}
	s.notify(ctx, r, r.Status, to)
	return nil
}

type ConfirmCommand struct {
	RideID types.ID
}

func (s *Service) Confirm(ctx context.Context, cmd ConfirmCommand) error {
	r, err := s.store.Get(ctx, cmd.RideID)
	if err != nil {
		return err
	}
	to, ok := NextStatus(ActionConfirm, r.Status)
	if !ok {
		return invalidTransition(ActionConfirm, r.Status)
	}
	if r.DriverID == nil {
		return fmt.Errorf("%w: no driver assigned", ErrDriverUnavailable)
	}
	if err := s.apply(ctx, r, ActionConfirm, Change{To: to}); err != nil {
		return err
	}
	s.notify(ctx, r, r.Status, to)
	return nil
}

type RejectCommand struct {
	RideID types.ID
}

// Reject is used when a driver declines: the assignment is cleared and the
// ride returns to planned.
func (s *Service) Reject(ctx context.Context, cmd RejectCommand) error {
	r, err := s.store.Get(ctx, cmd.RideID)
	if err != nil {
		return err
	}
	to, ok := NextStatus(ActionReject, r.Status)
	if !ok {
		return invalidTransition(ActionReject, r.Status)
	}
	return s.apply(ctx, r, ActionReject, Change{To: to, ClearDriver: true})
}

type StartCommand struct {
	RideID types.ID
}

func (s *Service) Start(ctx context.Context, cmd StartCommand) error {
	r, err := s.store.Get(ctx, cmd.RideID)
	if err != nil {
		return err
	}
	to, ok := NextStatus(ActionStart, r.Status)
	if !ok {
		return invalidTransition(ActionStart, r.Status)
	}
	if err := s.apply(ctx, r, ActionStart, Change{To: to}); err != nil {
		return err
	}
	s.notify(ctx, r, r.Status, to)
	return nil
}

type CompleteCommand struct {
	RideID types.ID
}

func (s *Service) Complete(ctx context.Context, cmd CompleteCommand) error {
	r, err := s.store.Get(ctx, cmd.RideID)
	if err != nil {
		return err
	}
	to, ok := NextStatus(ActionComplete, r.Status)
	if !ok {
		return invalidTransition(ActionComplete, r.Status)
	}
	if err := s.apply(ctx, r, ActionComplete, Change{To: to}); err != nil {
		return err
	}
	s.notify(ctx, r, r.Status, to)
	return nil
}

type CancelCommand struct {
	RideID types.ID
	Reason string
}

func (s *Service) Cancel(ctx context.Context, cmd CancelCommand) error {
	r, err := s.store.Get(ctx, cmd.RideID)
	if err != nil {
		return err
	}
	to, ok := NextStatus(ActionCancel, r.Status)
	if !ok {
		return invalidTransition(ActionCancel, r.Status)
	}
	ch := Change{To: to}
	if cmd.Reason != "" {
		ch.CancelReason = &cmd.Reason
	}
	return s.apply(ctx, r, ActionCancel, ch)
}

func (s *Service) apply(ctx context.Context, r *Ride, action Action, ch Change) error {
	ok, err := s.store.ApplyTransition(ctx, r.ID, r.Status, r.StatusVersion, ch)
	if err != nil {
		return err
	}
	if !ok {
		return ErrConflict
	}
	_ = s.store.AppendEvent(ctx, &Event{
		RideID:     r.ID,
		FromStatus: r.Status,
		ToStatus:   ch.To,
		Action:     action,
		CreatedAt:  time.Now(),
	})
	return nil
}

func (s *Service) notify(ctx context.Context, r *Ride, from, to Status) {
	if s.notifier == nil {
		return
	}
	s.notifier.StatusChanged(ctx, r, from, to)
}

func invalidTransition(a Action, from Status) error {
	return fmt.Errorf("%w: cannot %s a ride in status %s", ErrInvalidTransition, a, from)
}
