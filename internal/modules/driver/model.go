// README: Driver registry entity.
package driver

import (
	"time"

	"medicar/internal/types"
)

type Driver struct {
	ID           types.ID
	Name         string
	Phone        string
	VehicleType  string
	VehiclePlate string
	// UserID links the driver to a login account, when one exists.
	UserID    *types.ID
	CreatedAt time.Time
}
