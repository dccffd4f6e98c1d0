// README: Ride handler tests exercising the full HTTP path with fake stores.
package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"medicar/internal/modules/availability"
	"medicar/internal/modules/destination"
	"medicar/internal/modules/patient"
	"medicar/internal/modules/ride"
	"medicar/internal/types"
)

type fakeRideStore struct {
	rides  map[types.ID]*ride.Ride
	events []*ride.Event
}

func newFakeRideStore() *fakeRideStore {
	return &fakeRideStore{rides: map[types.ID]*ride.Ride{}}
}

func (f *fakeRideStore) Create(_ context.Context, r *ride.Ride) error {
	cp := *r
	f.rides[r.ID] = &cp
	return nil
}

func (f *fakeRideStore) Get(_ context.Context, id types.ID) (*ride.Ride, error) {
	r, ok := f.rides[id]
	if !ok {
		return nil, ride.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (f *fakeRideStore) ApplyTransition(_ context.Context, id types.ID, from ride.Status, version int, ch ride.Change) (bool, error) {
	r, ok := f.rides[id]
	if !ok || r.Status != from || r.StatusVersion != version {
		return false, nil
	}
	r.Status = ch.To
	r.StatusVersion++
	if ch.ClearDriver {
		r.DriverID = nil
	} else if ch.Driver != nil {
		d := *ch.Driver
		r.DriverID = &d
	}
	if ch.CancelReason != nil {
		reason := *ch.CancelReason
		r.CancelReason = &reason
	}
	return true, nil
}

func (f *fakeRideStore) ListOnDate(_ context.Context, date time.Time) ([]*ride.Ride, error) {
	var out []*ride.Ride
	for _, r := range f.rides {
		if r.PickupAt.Format("2006-01-02") == date.Format("2006-01-02") {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeRideStore) ListForDriverOnDate(_ context.Context, driverID types.ID, date time.Time) ([]*ride.Ride, error) {
	var out []*ride.Ride
	for _, r := range f.rides {
		if r.DriverID != nil && *r.DriverID == driverID &&
			r.PickupAt.Format("2006-01-02") == date.Format("2006-01-02") &&
			r.Status != ride.StatusCancelled {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeRideStore) Delete(_ context.Context, id types.ID) error {
	if _, ok := f.rides[id]; !ok {
		return ride.ErrNotFound
	}
	delete(f.rides, id)
	return nil
}

func (f *fakeRideStore) AppendEvent(_ context.Context, e *ride.Event) error {
	f.events = append(f.events, e)
	return nil
}

type fakePatientStore struct {
	patients map[types.ID]*patient.Patient
}

func (f *fakePatientStore) Create(_ context.Context, p *patient.Patient) error {
	f.patients[p.ID] = p
	return nil
}

func (f *fakePatientStore) Get(_ context.Context, id types.ID) (*patient.Patient, error) {
	p, ok := f.patients[id]
	if !ok {
		return nil, patient.ErrNotFound
	}
	return p, nil
}

func (f *fakePatientStore) Update(_ context.Context, p *patient.Patient) error {
	f.patients[p.ID] = p
	return nil
}

func (f *fakePatientStore) List(_ context.Context) ([]*patient.Patient, error) {
	var out []*patient.Patient
	for _, p := range f.patients {
		out = append(out, p)
	}
	return out, nil
}

func (f *fakePatientStore) Delete(_ context.Context, id types.ID) error {
	delete(f.patients, id)
	return nil
}

type fakeDestinationStore struct {
	destinations map[types.ID]*destination.Destination
}

func (f *fakeDestinationStore) Create(_ context.Context, d *destination.Destination) error {
	f.destinations[d.ID] = d
	return nil
}

func (f *fakeDestinationStore) Get(_ context.Context, id types.ID) (*destination.Destination, error) {
	d, ok := f.destinations[id]
	if !ok {
		return nil, destination.ErrNotFound
	}
	return d, nil
}

func (f *fakeDestinationStore) Update(_ context.Context, d *destination.Destination) error {
	f.destinations[d.ID] = d
	return nil
}

func (f *fakeDestinationStore) List(_ context.Context, includeInactive bool) ([]*destination.Destination, error) {
	var out []*destination.Destination
	for _, d := range f.destinations {
		if d.Active || includeInactive {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *fakeDestinationStore) SetActive(_ context.Context, id types.ID, active bool) error {
	d, ok := f.destinations[id]
	if !ok {
		return destination.ErrNotFound
	}
	d.Active = active
	return nil
}

type alwaysAvailable struct{}

func (alwaysAvailable) Evaluate(_ context.Context, _ types.ID, _, _ time.Time) (availability.Result, error) {
	return availability.Result{Available: true}, nil
}

type rideFixture struct {
	router        *gin.Engine
	store         *fakeRideStore
	patientID     types.ID
	destinationID types.ID
}

func newRideFixture(t *testing.T) *rideFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	rideStore := newFakeRideStore()
	rideSvc := ride.NewService(rideStore, alwaysAvailable{}, nil, nil)

	patientSvc := patient.NewService(&fakePatientStore{patients: map[types.ID]*patient.Patient{}})
	destinationSvc := destination.NewService(&fakeDestinationStore{destinations: map[types.ID]*destination.Destination{}})

	p, err := patientSvc.Create(context.Background(), patient.UpsertCommand{LastName: "Meier"})
	if err != nil {
		t.Fatalf("create patient: %v", err)
	}
	d, err := destinationSvc.Create(context.Background(), destination.UpsertCommand{Name: "Clinic", Type: destination.TypeHospital})
	if err != nil {
		t.Fatalf("create destination: %v", err)
	}

	h := NewRideHandler(rideSvc, patientSvc, destinationSvc)
	r := gin.New()
	r.POST("/rides", h.Create)
	r.POST("/rides/recurring", h.CreateRecurring)
	r.GET("/rides/:id", h.Get)
	r.POST("/rides/:id/assign", h.Assign)
	r.POST("/rides/:id/confirm", h.Confirm)
	r.POST("/rides/:id/start", h.Start)
	r.POST("/rides/:id/complete", h.Complete)
	r.POST("/rides/:id/cancel", h.Cancel)

	return &rideFixture{router: r, store: rideStore, patientID: p.ID, destinationID: d.ID}
}

func (f *rideFixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func (f *rideFixture) createRide(t *testing.T) types.ID {
	t.Helper()
	w := f.do(t, http.MethodPost, "/rides", gin.H{
		"patient_id":     f.patientID,
		"destination_id": f.destinationID,
		"pickup_at":      "2024-06-03T08:30:00Z",
		"arrival_at":     "2024-06-03T09:00:00Z",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create ride: status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp struct {
		RideID types.ID `json:"ride_id"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	return resp.RideID
}

func TestRideLifecycleOverHTTP(t *testing.T) {
	f := newRideFixture(t)
	id := f.createRide(t)

	if w := f.do(t, http.MethodPost, fmt.Sprintf("/rides/%s/assign", id), gin.H{"driver_id": "d1"}); w.Code != http.StatusOK {
		t.Fatalf("assign: status = %d, body = %s", w.Code, w.Body.String())
	}
	if w := f.do(t, http.MethodPost, fmt.Sprintf("/rides/%s/confirm", id), nil); w.Code != http.StatusOK {
		t.Fatalf("confirm: status = %d, body = %s", w.Code, w.Body.String())
	}
	if w := f.do(t, http.MethodPost, fmt.Sprintf("/rides/%s/start", id), nil); w.Code != http.StatusOK {
		t.Fatalf("start: status = %d, body = %s", w.Code, w.Body.String())
	}
	if w := f.do(t, http.MethodPost, fmt.Sprintf("/rides/%s/complete", id), nil); w.Code != http.StatusOK {
		t.Fatalf("complete: status = %d, body = %s", w.Code, w.Body.String())
	}

	w := f.do(t, http.MethodGet, fmt.Sprintf("/rides/%s", id), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get: status = %d", w.Code)
	}
	var resp struct {
		Status   string `json:"status"`
		DriverID string `json:"driver_id"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Status != "completed" || resp.DriverID != "d1" {
		t.Errorf("final ride = %+v, want completed with driver d1", resp)
	}
}

func TestRideErrorMapping(t *testing.T) {
	f := newRideFixture(t)
	id := f.createRide(t)

	// start before confirm is an invalid transition
	if w := f.do(t, http.MethodPost, fmt.Sprintf("/rides/%s/start", id), nil); w.Code != http.StatusConflict {
		t.Errorf("premature start: status = %d, want 409", w.Code)
	}
	// confirm without a driver is treated as driver unavailable
	if w := f.do(t, http.MethodPost, fmt.Sprintf("/rides/%s/confirm", id), nil); w.Code != http.StatusConflict {
		t.Errorf("confirm without driver: status = %d, want 409", w.Code)
	}
	if w := f.do(t, http.MethodGet, "/rides/unknown", nil); w.Code != http.StatusNotFound {
		t.Errorf("unknown ride: status = %d, want 404", w.Code)
	}

	// arrival before pickup
	w := f.do(t, http.MethodPost, "/rides", gin.H{
		"patient_id":     f.patientID,
		"destination_id": f.destinationID,
		"pickup_at":      "2024-06-03T09:00:00Z",
		"arrival_at":     "2024-06-03T08:00:00Z",
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("arrival before pickup: status = %d, want 400", w.Code)
	}

	// unknown patient
	w = f.do(t, http.MethodPost, "/rides", gin.H{
		"patient_id":     "ghost",
		"destination_id": f.destinationID,
		"pickup_at":      "2024-06-03T08:30:00Z",
		"arrival_at":     "2024-06-03T09:00:00Z",
	})
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown patient: status = %d, want 404", w.Code)
	}

	// malformed timestamp
	w = f.do(t, http.MethodPost, "/rides", gin.H{
		"patient_id":     f.patientID,
		"destination_id": f.destinationID,
		"pickup_at":      "tomorrow",
		"arrival_at":     "2024-06-03T09:00:00Z",
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad timestamp: status = %d, want 400", w.Code)
	}
}

func TestCancelledRideRejectsStartOverHTTP(t *testing.T) {
	f := newRideFixture(t)
	id := f.createRide(t)

	if w := f.do(t, http.MethodPost, fmt.Sprintf("/rides/%s/cancel", id), gin.H{"reason": "patient sick"}); w.Code != http.StatusOK {
		t.Fatalf("cancel: status = %d, body = %s", w.Code, w.Body.String())
	}
	if w := f.do(t, http.MethodPost, fmt.Sprintf("/rides/%s/start", id), nil); w.Code != http.StatusConflict {
		t.Errorf("start after cancel: status = %d, want 409", w.Code)
	}

	w := f.do(t, http.MethodGet, fmt.Sprintf("/rides/%s", id), nil)
	var resp struct {
		Status       string `json:"status"`
		CancelReason string `json:"cancel_reason"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Status != "cancelled" || resp.CancelReason != "patient sick" {
		t.Errorf("cancelled ride = %+v", resp)
	}
}

func TestCreateRecurringOverHTTP(t *testing.T) {
	f := newRideFixture(t)

	w := f.do(t, http.MethodPost, "/rides/recurring", gin.H{
		"patient_id":     f.patientID,
		"destination_id": f.destinationID,
		"pickup_at":      "2024-06-03T08:30:00Z",
		"arrival_at":     "2024-06-03T09:00:00Z",
		"days_of_week":   []int{1, 3},
		"weeks":          2,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create recurring: status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp struct {
		RideIDs []types.ID `json:"ride_ids"`
		Count   int        `json:"count"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Count != 4 || len(resp.RideIDs) != 4 {
		t.Fatalf("expected 4 occurrences, got count=%d ids=%d", resp.Count, len(resp.RideIDs))
	}

	w = f.do(t, http.MethodPost, "/rides/recurring", gin.H{
		"patient_id":     f.patientID,
		"destination_id": f.destinationID,
		"pickup_at":      "2024-06-03T08:30:00Z",
		"arrival_at":     "2024-06-03T09:00:00Z",
		"days_of_week":   []int{8},
		"weeks":          2,
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("out-of-range weekday: status = %d, want 400", w.Code)
	}
}
