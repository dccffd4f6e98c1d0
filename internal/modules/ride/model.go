// README: Ride aggregate, status definitions, and the transition table.
package ride

import (
	"time"

	"medicar/internal/types"
)

type Status string

const (
	StatusPlanned    Status = "planned"
	StatusConfirmed  Status = "confirmed"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// Action is a dispatcher or driver operation on a ride.
type Action string

const (
	ActionAssignDriver Action = "assign_driver"
	ActionConfirm      Action = "confirm"
	ActionReject       Action = "reject"
	ActionStart        Action = "start"
	ActionComplete     Action = "complete"
	ActionCancel       Action = "cancel"
)

type Ride struct {
	ID            types.ID
	PatientID     types.ID
	DestinationID types.ID
	DriverID      *types.ID
	Status        Status
	StatusVersion int
	PickupAt      time.Time
	ArrivalAt     time.Time
	ReturnAt      *time.Time
	// RecurrenceGroup links sibling rides generated from one recurring pattern.
	RecurrenceGroup *types.ID
	EstimatedKm     *float64
	EstimatedTime   *time.Duration
	Notes           string
	CreatedAt       time.Time
	ConfirmedAt     *time.Time
	StartedAt       *time.Time
	CompletedAt     *time.Time
	CancelledAt     *time.Time
	CancelReason    *string
}

// Window is the occupied interval used for conflict checks: pickup until
// the return leg if present, otherwise until arrival.
func (r *Ride) Window() (time.Time, time.Time) {
	if r.ReturnAt != nil {
		return r.PickupAt, *r.ReturnAt
	}
	return r.PickupAt, r.ArrivalAt
}

// Event is one entry in the append-only transition log.
type Event struct {
	ID         int64
	RideID     types.ID
	FromStatus Status
	ToStatus   Status
	Action     Action
	CreatedAt  time.Time
}

// transitions represents the ride state flow (diagram) as code: for each
// action, the statuses it is legal from and the status it leads to.
// assign_driver and reject leave or return the ride to planned.
var transitions = map[Action]map[Status]Status{
	ActionAssignDriver: {
		StatusPlanned: StatusPlanned,
	},
	ActionConfirm: {
		StatusPlanned: StatusConfirmed,
	},
	ActionReject: {
		StatusPlanned:   StatusPlanned,
		StatusConfirmed: StatusPlanned,
	},
	ActionStart: {
		StatusConfirmed: StatusInProgress,
	},
	ActionComplete: {
		StatusInProgress: StatusCompleted,
	},
	ActionCancel: {
		StatusPlanned:    StatusCancelled,
		StatusConfirmed:  StatusCancelled,
		StatusInProgress: StatusCancelled,
	},
}

// NextStatus returns the status an action leads to from the given status,
// or false when the transition is not in the table.
func NextStatus(a Action, from Status) (Status, bool) {
	next, ok := transitions[a][from]
	return next, ok
}

// IsTerminal reports whether no further transition is permitted.
func IsTerminal(s Status) bool {
	return s == StatusCompleted || s == StatusCancelled
}
