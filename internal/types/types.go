// README: Common value types shared across modules.
package types

// ID identifies an entity. IDs are UUID strings.
type ID string

type Point struct {
	Lat float64
	Lng float64
}
