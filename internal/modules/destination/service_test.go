// README: Destination registry tests.
package destination

import (
	"context"
	"errors"
	"testing"

	"medicar/internal/types"
)

type memStore struct {
	destinations map[types.ID]*Destination
}

func newMemStore() *memStore {
	return &memStore{destinations: map[types.ID]*Destination{}}
}

func (m *memStore) Create(_ context.Context, d *Destination) error {
	cp := *d
	m.destinations[d.ID] = &cp
	return nil
}

func (m *memStore) Get(_ context.Context, id types.ID) (*Destination, error) {
	d, ok := m.destinations[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (m *memStore) Update(_ context.Context, d *Destination) error {
	if _, ok := m.destinations[d.ID]; !ok {
		return ErrNotFound
	}
	cp := *d
	m.destinations[d.ID] = &cp
	return nil
}

func (m *memStore) List(_ context.Context, includeInactive bool) ([]*Destination, error) {
	var out []*Destination
	for _, d := range m.destinations {
		if d.Active || includeInactive {
			cp := *d
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memStore) SetActive(_ context.Context, id types.ID, active bool) error {
	d, ok := m.destinations[id]
	if !ok {
		return ErrNotFound
	}
	d.Active = active
	return nil
}

func TestCreateValidation(t *testing.T) {
	svc := NewService(newMemStore())
	ctx := context.Background()

	if _, err := svc.Create(ctx, UpsertCommand{Type: TypeHospital}); !errors.Is(err, ErrBadRequest) {
		t.Errorf("missing name: expected ErrBadRequest, got %v", err)
	}
	if _, err := svc.Create(ctx, UpsertCommand{Name: "Clinic", Type: "spa"}); !errors.Is(err, ErrBadRequest) {
		t.Errorf("invalid type: expected ErrBadRequest, got %v", err)
	}

	d, err := svc.Create(ctx, UpsertCommand{Name: "Clinic", Type: TypeHospital})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !d.Active {
		t.Error("new destinations should start active")
	}
}

func TestDeactivateHidesFromDefaultList(t *testing.T) {
	svc := NewService(newMemStore())
	ctx := context.Background()

	d, err := svc.Create(ctx, UpsertCommand{Name: "Old practice", Type: TypeDoctor})
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.Deactivate(ctx, d.ID); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	active, err := svc.List(ctx, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(active) != 0 {
		t.Errorf("deactivated destination still listed: %d entries", len(active))
	}

	all, err := svc.List(ctx, true)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 1 {
		t.Errorf("includeInactive list has %d entries, want 1", len(all))
	}

	// The record itself survives for past rides.
	got, err := svc.Get(ctx, d.ID)
	if err != nil {
		t.Fatalf("get after deactivate: %v", err)
	}
	if got.Active {
		t.Error("destination should be inactive")
	}

	if err := svc.Activate(ctx, d.ID); err != nil {
		t.Fatalf("activate: %v", err)
	}
	active, _ = svc.List(ctx, false)
	if len(active) != 1 {
		t.Error("reactivated destination should be listed again")
	}
}

func TestValidType(t *testing.T) {
	for _, typ := range []Type{TypeHospital, TypeDoctor, TypeTherapy, TypeOther} {
		if !ValidType(typ) {
			t.Errorf("ValidType(%s) = false", typ)
		}
	}
	if ValidType("spa") {
		t.Error("ValidType(spa) = true")
	}
}
