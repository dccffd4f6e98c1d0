// README: Patient registry service.
package patient

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"medicar/internal/types"
)

var (
	ErrNotFound   = errors.New("patient not found")
	ErrBadRequest = errors.New("bad request")
)

type Store interface {
	Create(ctx context.Context, p *Patient) error
	Get(ctx context.Context, id types.ID) (*Patient, error)
	Update(ctx context.Context, p *Patient) error
	List(ctx context.Context) ([]*Patient, error)
	Delete(ctx context.Context, id types.ID) error
}

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

type UpsertCommand struct {
	FirstName       string
	LastName        string
	Address         string
	Location        *types.Point
	Phone           string
	Wheelchair      bool
	Walker          bool
	NeedsAssistance bool
	Notes           string
}

func (s *Service) Create(ctx context.Context, cmd UpsertCommand) (*Patient, error) {
	if cmd.LastName == "" {
		return nil, ErrBadRequest
	}
	p := &Patient{
		ID:              types.ID(uuid.NewString()),
		FirstName:       cmd.FirstName,
		LastName:        cmd.LastName,
		Address:         cmd.Address,
		Location:        cmd.Location,
		Phone:           cmd.Phone,
		Wheelchair:      cmd.Wheelchair,
		Walker:          cmd.Walker,
		NeedsAssistance: cmd.NeedsAssistance,
		Notes:           cmd.Notes,
		CreatedAt:       time.Now(),
	}
	if err := s.store.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) Get(ctx context.Context, id types.ID) (*Patient, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) Update(ctx context.Context, id types.ID, cmd UpsertCommand) (*Patient, error) {
	p, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if cmd.LastName == "" {
		return nil, ErrBadRequest
	}
	p.FirstName = cmd.FirstName
	p.LastName = cmd.LastName
	p.Address = cmd.Address
	p.Location = cmd.Location
	p.Phone = cmd.Phone
	p.Wheelchair = cmd.Wheelchair
	p.Walker = cmd.Walker
	p.NeedsAssistance = cmd.NeedsAssistance
	p.Notes = cmd.Notes
	if err := s.store.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) List(ctx context.Context) ([]*Patient, error) {
	return s.store.List(ctx)
}

func (s *Service) Delete(ctx context.Context, id types.ID) error {
	return s.store.Delete(ctx, id)
}
