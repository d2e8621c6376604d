package services

import (
	"errors"
	"testing"

	"near-expiry-api/models"
	"near-expiry-api/repository"

	"github.com/google/uuid"
)

func TestRestaurantProfile(t *testing.T) {
	db := newTestDB(t)
	svc := NewRestaurantService(db, repository.NewRestaurantRepository(db), zapNop())
	owner := createUser(t, db, models.RoleRestaurant)

	if _, err := svc.ForOwner(bg, owner.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("before create: err = %v, want not found", err)
	}

	lat, lng := 40.4168, -3.7038
	rest, created, err := svc.UpsertProfile(bg, owner.ID, RestaurantProfileInput{
		Name: "Panaderia", Address: "Gran Via 1", Phone: "+34 (91) 555-0100", Latitude: &lat, Longitude: &lng,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !created || !rest.IsOpen {
		t.Errorf("created = %v, open = %v", created, rest.IsOpen)
	}

	again, created, err := svc.UpsertProfile(bg, owner.ID, RestaurantProfileInput{
		Name: "Panaderia Sol", Address: "Gran Via 1", Phone: "915550100",
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if created || again.ID != rest.ID || again.Name != "Panaderia Sol" {
		t.Errorf("update created = %v, id %s, name %q", created, again.ID, again.Name)
	}

	closed, err := svc.ToggleOpen(bg, owner.ID)
	if err != nil || closed.IsOpen {
		t.Fatalf("toggle: open = %v, err %v", closed.IsOpen, err)
	}
	got, err := svc.Get(bg, rest.ID)
	if err != nil || got.IsOpen {
		t.Errorf("get after toggle: %+v, err %v", got, err)
	}
	if _, err := svc.Get(bg, uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown restaurant: err = %v", err)
	}
}

func TestRestaurantProfileValidation(t *testing.T) {
	db := newTestDB(t)
	svc := NewRestaurantService(db, repository.NewRestaurantRepository(db), zapNop())
	owner := createUser(t, db, models.RoleRestaurant)
	badLat := 91.0
	badLng := -181.0

	tests := []struct {
		name string
		in   RestaurantProfileInput
	}{
		{name: "missing name", in: RestaurantProfileInput{Address: "a", Phone: "1"}},
		{name: "bad phone", in: RestaurantProfileInput{Name: "n", Address: "a", Phone: "call me"}},
		{name: "latitude range", in: RestaurantProfileInput{Name: "n", Address: "a", Phone: "1", Latitude: &badLat}},
		{name: "longitude range", in: RestaurantProfileInput{Name: "n", Address: "a", Phone: "1", Longitude: &badLng}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := svc.UpsertProfile(bg, owner.ID, tt.in); !errors.Is(err, ErrValidation) {
				t.Fatalf("err = %v, want validation", err)
			}
		})
	}
}
