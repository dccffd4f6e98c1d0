// README: Driver registry service.
package driver

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"medicar/internal/types"
)

var (
	ErrNotFound   = errors.New("driver not found")
	ErrBadRequest = errors.New("bad request")
)

type Store interface {
	Create(ctx context.Context, d *Driver) error
	Get(ctx context.Context, id types.ID) (*Driver, error)
	Update(ctx context.Context, d *Driver) error
	List(ctx context.Context) ([]*Driver, error)
	Delete(ctx context.Context, id types.ID) error
}

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

type UpsertCommand struct {
	Name         string
	Phone        string
	VehicleType  string
	VehiclePlate string
	UserID       *types.ID
}

func (s *Service) Create(ctx context.Context, cmd UpsertCommand) (*Driver, error) {
	if cmd.Name == "" {
		return nil, ErrBadRequest
	}
	d := &Driver{
		ID:           types.ID(uuid.NewString()),
		Name:         cmd.Name,
		Phone:        cmd.Phone,
		VehicleType:  cmd.VehicleType,
		VehiclePlate: cmd.VehiclePlate,
		UserID:       cmd.UserID,
		CreatedAt:    time.Now(),
	}
	if err := s.store.Create(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *Service) Get(ctx context.Context, id types.ID) (*Driver, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) Update(ctx context.Context, id types.ID, cmd UpsertCommand) (*Driver, error) {
	d, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if cmd.Name == "" {
		return nil, ErrBadRequest
	}
	d.Name = cmd.Name
	d.Phone = cmd.Phone
	d.VehicleType = cmd.VehicleType
	d.VehiclePlate = cmd.VehiclePlate
	d.UserID = cmd.UserID
	if err := s.store.Update(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *Service) List(ctx context.Context) ([]*Driver, error) {
	return s.store.List(ctx)
}

func (s *Service) Delete(ctx context.Context, id types.ID) error {
	return s.store.Delete(ctx, id)
}
