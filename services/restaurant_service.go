package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"near-expiry-api/models"
	"near-expiry-api/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var phonePattern = regexp.MustCompile(`^[0-9+\-\s()]+$`)

// RestaurantProfileInput is what a restaurant owner may set on their
// profile. Coordinates are supplied by the caller, not geocoded.
type RestaurantProfileInput struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Address     string   `json:"address"`
	Phone       string   `json:"phone"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
	LogoURL     string   `json:"logoUrl"`
}

type RestaurantService struct {
	db          *gorm.DB
	restaurants *repository.RestaurantRepository
	log         *zap.Logger
}

func NewRestaurantService(db *gorm.DB, restaurants *repository.RestaurantRepository, log *zap.Logger) *RestaurantService {
	return &RestaurantService{db: db, restaurants: restaurants, log: log.Named("restaurants")}
}

// UpsertProfile creates the caller's restaurant or updates it in place.
// created reports which one happened.
func (s *RestaurantService) UpsertProfile(ctx context.Context, userID uuid.UUID, in RestaurantProfileInput) (rest *models.Restaurant, created bool, err error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Address = strings.TrimSpace(in.Address)
	in.Phone = strings.TrimSpace(in.Phone)
	if in.Name == "" || in.Address == "" || in.Phone == "" {
		return nil, false, validationf("Name, address, and phone are required")
	}
	if !phonePattern.MatchString(in.Phone) {
		return nil, false, validationf("Invalid phone number format")
	}
	if in.Latitude != nil && (*in.Latitude < -90 || *in.Latitude > 90) {
		return nil, false, validationf("Latitude must be between -90 and 90")
	}
	if in.Longitude != nil && (*in.Longitude < -180 || *in.Longitude > 180) {
		return nil, false, validationf("Longitude must be between -180 and 180")
	}

	err = repository.Transaction(ctx, s.db, s.log, "upsert_restaurant", func(tx *gorm.DB) error {
		repo := s.restaurants.WithTx(tx)
		existing, err := repo.FindByUserID(ctx, userID)
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			created = true
			existing = &models.Restaurant{UserID: userID, IsOpen: true}
		case err != nil:
			return fmt.Errorf("load restaurant: %w", err)
		}

		existing.Name = in.Name
		existing.Description = strings.TrimSpace(in.Description)
		existing.Address = in.Address
		existing.Phone = in.Phone
		existing.Latitude = in.Latitude
		existing.Longitude = in.Longitude
		if in.LogoURL != "" {
			existing.LogoURL = in.LogoURL
		}

		if created {
			err = repo.Create(ctx, existing)
		} else {
			err = repo.Save(ctx, existing)
		}
		rest = existing
		return err
	})
	if err != nil {
		return nil, false, err
	}
	return rest, created, nil
}

// ForOwner returns the restaurant owned by userID
func (s *RestaurantService) ForOwner(ctx context.Context, userID uuid.UUID) (*models.Restaurant, error) {
	rest, err := s.restaurants.FindByUserID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFoundf("Restaurant profile not found. Please create your profile first.")
	}
	return rest, err
}

// ToggleOpen flips is_open on the caller's restaurant
func (s *RestaurantService) ToggleOpen(ctx context.Context, userID uuid.UUID) (*models.Restaurant, error) {
	rest, err := s.ForOwner(ctx, userID)
	if err != nil {
		return nil, err
	}
	rest.IsOpen = !rest.IsOpen
	if err := s.restaurants.Save(ctx, rest); err != nil {
		return nil, err
	}
	s.log.Info("restaurant open state changed", zap.String("restaurant_id", rest.ID.String()), zap.Bool("is_open", rest.IsOpen))
	return rest, nil
}

func (s *RestaurantService) Get(ctx context.Context, id uuid.UUID) (*models.Restaurant, error) {
	rest, err := s.restaurants.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFoundf("Restaurant not found")
	}
	return rest, err
}

func (s *RestaurantService) List(ctx context.Context) ([]models.Restaurant, error) {
	return s.restaurants.ListAll(ctx)
}
