// README: Destination registry service with soft deactivation.
package destination

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"medicar/internal/types"
)

var (
	ErrNotFound   = errors.New("destination not found")
	ErrBadRequest = errors.New("bad request")
)

type Store interface {
	Create(ctx context.Context, d *Destination) error
	Get(ctx context.Context, id types.ID) (*Destination, error)
	Update(ctx context.Context, d *Destination) error
	List(ctx context.Context, includeInactive bool) ([]*Destination, error)
	SetActive(ctx context.Context, id types.ID, active bool) error
}

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

type UpsertCommand struct {
	Name         string
	Address      string
	Location     *types.Point
	Type         Type
	OpeningHours string
	ArrivalNote  string
}

func (s *Service) Create(ctx context.Context, cmd UpsertCommand) (*Destination, error) {
	if cmd.Name == "" || !ValidType(cmd.Type) {
		return nil, ErrBadRequest
	}
	d := &Destination{
		ID:           types.ID(uuid.NewString()),
		Name:         cmd.Name,
		Address:      cmd.Address,
		Location:     cmd.Location,
		Type:         cmd.Type,
		OpeningHours: cmd.OpeningHours,
		ArrivalNote:  cmd.ArrivalNote,
		Active:       true,
		CreatedAt:    time.Now(),
	}
	if err := s.store.Create(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *Service) Get(ctx context.Context, id types.ID) (*Destination, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) Update(ctx context.Context, id types.ID, cmd UpsertCommand) (*Destination, error) {
	d, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if cmd.Name == "" || !ValidType(cmd.Type) {
		return nil, ErrBadRequest
	}
	d.Name = cmd.Name
	d.Address = cmd.Address
	d.Location = cmd.Location
	d.Type = cmd.Type
	d.OpeningHours = cmd.OpeningHours
	d.ArrivalNote = cmd.ArrivalNote
	if err := s.store.Update(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *Service) List(ctx context.Context, includeInactive bool) ([]*Destination, error) {
	return s.store.List(ctx, includeInactive)
}

func (s *Service) Deactivate(ctx context.Context, id types.ID) error {
	return s.store.SetActive(ctx, id, false)
}

func (s *Service) Activate(ctx context.Context, id types.ID) error {
	return s.store.SetActive(ctx, id, true)
}
