// README: Driver suggestions for the dispatcher's driver picker.
package assignment

import (
	"medicar/internal/modules/availability"
	"medicar/internal/types"
)

// Suggestion is one roster entry evaluated against a ride window. Available
// drivers come first, ordered by how many rides they already have on the
// candidate date.
type Suggestion struct {
	DriverID   types.ID
	DriverName string
	Available  bool
	Reason     availability.Reason
	// RideCount is the driver's ride load on the candidate date.
	RideCount int
}
