package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"near-expiry-api/models"
	"near-expiry-api/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ProductInput is the body of product create and update. Every field but
// Description and ImageURL is required.
type ProductInput struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	CategoryID  uint             `json:"category_id"`
	Price       *decimal.Decimal `json:"price"`
	Quantity    *int             `json:"quantity"`
	ExpiryDate  string           `json:"expiry_date"`
	ImageURL    string           `json:"image_url"`
}

type ProductService struct {
	products    *repository.ProductRepository
	restaurants *repository.RestaurantRepository
	categories  *repository.CategoryRepository
	log         *zap.Logger
	now         func() time.Time
}

func NewProductService(
	products *repository.ProductRepository,
	restaurants *repository.RestaurantRepository,
	categories *repository.CategoryRepository,
	log *zap.Logger,
) *ProductService {
	return &ProductService{
		products:    products,
		restaurants: restaurants,
		categories:  categories,
		log:         log.Named("products"),
		now:         time.Now,
	}
}

func (s *ProductService) Create(ctx context.Context, userID uuid.UUID, in ProductInput) (*models.Product, error) {
	expiry, err := s.validate(ctx, in)
	if err != nil {
		return nil, err
	}
	rest, err := s.ownRestaurant(ctx, userID)
	if err != nil {
		return nil, err
	}

	p := &models.Product{
		RestaurantID: rest.ID,
		CategoryID:   in.CategoryID,
		Name:         strings.TrimSpace(in.Name),
		Description:  strings.TrimSpace(in.Description),
		ImageURL:     in.ImageURL,
		Price:        *in.Price,
		Quantity:     *in.Quantity,
		ExpiryDate:   expiry,
		IsActive:     true,
	}
	if err := s.products.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("insert product: %w", err)
	}
	s.log.Info("product created", zap.String("product_id", p.ID.String()), zap.String("restaurant_id", rest.ID.String()))
	return p, nil
}

func (s *ProductService) Update(ctx context.Context, userID, productID uuid.UUID, in ProductInput) (*models.Product, error) {
	expiry, err := s.validate(ctx, in)
	if err != nil {
		return nil, err
	}
	p, err := s.owned(ctx, userID, productID, "update")
	if err != nil {
		return nil, err
	}

	p.Name = strings.TrimSpace(in.Name)
	p.Description = strings.TrimSpace(in.Description)
	p.CategoryID = in.CategoryID
	p.Price = *in.Price
	p.Quantity = *in.Quantity
	p.ExpiryDate = expiry
	if in.ImageURL != "" {
		p.ImageURL = in.ImageURL
	}
	if err := s.products.Save(ctx, p); err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}
	return p, nil
}

// Delete hides the product from buyers; past order items keep pointing at it
func (s *ProductService) Delete(ctx context.Context, userID, productID uuid.UUID) error {
	p, err := s.owned(ctx, userID, productID, "delete")
	if err != nil {
		return err
	}
	return s.products.Deactivate(ctx, p.ID)
}

func (s *ProductService) ListMine(ctx context.Context, userID uuid.UUID) ([]models.Product, error) {
	rest, err := s.ownRestaurant(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.products.ListActiveByRestaurant(ctx, rest.ID)
}

// Get returns an active product for public display
func (s *ProductService) Get(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	p, err := s.products.FindActiveDetailed(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFoundf("Product not found")
	}
	return p, err
}

func (s *ProductService) validate(ctx context.Context, in ProductInput) (time.Time, error) {
	if strings.TrimSpace(in.Name) == "" || in.CategoryID == 0 || in.Price == nil || in.Quantity == nil || in.ExpiryDate == "" {
		return time.Time{}, validationf("Name, category_id, price, quantity, and expiry_date are required")
	}
	if in.Price.IsNegative() {
		return time.Time{}, validationf("Price must be a positive number")
	}
	if *in.Quantity < 0 {
		return time.Time{}, validationf("Quantity must be a non-negative integer")
	}

	expiry, _, err := parseDate(in.ExpiryDate)
	if err != nil {
		return time.Time{}, validationf("Invalid expiry_date")
	}
	expiry = truncateDay(expiry)
	if expiry.Before(truncateDay(s.now())) {
		return time.Time{}, validationf("Expiry date must be today or a future date")
	}

	ok, err := s.categories.Exists(ctx, in.CategoryID)
	if err != nil {
		return time.Time{}, err
	}
	if !ok {
		return time.Time{}, validationf("Invalid category_id. Category does not exist.")
	}
	return expiry, nil
}

func (s *ProductService) ownRestaurant(ctx context.Context, userID uuid.UUID) (*models.Restaurant, error) {
	rest, err := s.restaurants.FindByUserID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFoundf("Restaurant profile not found. Please create your profile first.")
	}
	return rest, err
}

// owned loads productID and checks it belongs to the caller's restaurant
func (s *ProductService) owned(ctx context.Context, userID, productID uuid.UUID, action string) (*models.Product, error) {
	rest, err := s.ownRestaurant(ctx, userID)
	if err != nil {
		return nil, err
	}
	p, err := s.products.FindByID(ctx, productID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFoundf("Product not found")
	}
	if err != nil {
		return nil, err
	}
	if p.RestaurantID != rest.ID {
		return nil, forbiddenf("You do not have permission to %s this product", action)
	}
	return p, nil
}

// truncateDay drops the clock part, in UTC
func truncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
