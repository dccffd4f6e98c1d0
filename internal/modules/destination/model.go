// README: Destination registry entity.
package destination

import (
	"time"

	"medicar/internal/types"
)

type Type string

const (
	TypeHospital Type = "hospital"
	TypeDoctor   Type = "doctor"
	TypeTherapy  Type = "therapy"
	TypeOther    Type = "other"
)

func ValidType(t Type) bool {
	switch t {
	case TypeHospital, TypeDoctor, TypeTherapy, TypeOther:
		return true
	}
	return false
}

type Destination struct {
	ID           types.ID
	Name         string
	Address      string
	Location     *types.Point
	Type         Type
	OpeningHours string
	ArrivalNote  string
	// Destinations are deactivated rather than deleted so past rides keep
	// their reference.
	Active    bool
	CreatedAt time.Time
}
