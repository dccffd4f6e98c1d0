// README: Patient registry entity.
package patient

import (
	"time"

	"medicar/internal/types"
)

type Patient struct {
	ID        types.ID
	FirstName string
	LastName  string
	Address   string
	Location  *types.Point
	Phone     string
	// Mobility flags drive vehicle selection and assistance planning.
	Wheelchair      bool
	Walker          bool
	NeedsAssistance bool
	Notes           string
	CreatedAt       time.Time
}
