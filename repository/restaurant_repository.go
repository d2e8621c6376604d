package repository

import (
	"context"

	"near-expiry-api/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RestaurantRepository struct {
	DB *gorm.DB
}

func NewRestaurantRepository(db *gorm.DB) *RestaurantRepository {
	return &RestaurantRepository{DB: db}
}

func (r *RestaurantRepository) WithTx(tx *gorm.DB) *RestaurantRepository {
	return &RestaurantRepository{DB: tx}
}

func (r *RestaurantRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Restaurant, error) {
	var rest models.Restaurant
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&rest).Error; err != nil {
		return nil, err
	}
	return &rest, nil
}

func (r *RestaurantRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*models.Restaurant, error) {
	var rest models.Restaurant
	if err := r.DB.WithContext(ctx).Where("user_id = ?", userID).First(&rest).Error; err != nil {
		return nil, err
	}
	return &rest, nil
}

func (r *RestaurantRepository) Create(ctx context.Context, rest *models.Restaurant) error {
	return r.DB.WithContext(ctx).Omit("Owner").Create(rest).Error
}

func (r *RestaurantRepository) Save(ctx context.Context, rest *models.Restaurant) error {
	return r.DB.WithContext(ctx).Omit("Owner").Save(rest).Error
}

// ListAll returns every restaurant ordered by name
func (r *RestaurantRepository) ListAll(ctx context.Context) ([]models.Restaurant, error) {
	var out []models.Restaurant
	err := r.DB.WithContext(ctx).Order("name ASC").Find(&out).Error
	return out, err
}

// CountByOpen returns (open, closed) restaurant counts
func (r *RestaurantRepository) CountByOpen(ctx context.Context) (int64, int64, error) {
	var open, closed int64
	if err := r.DB.WithContext(ctx).Model(&models.Restaurant{}).Where("is_open = ?", true).Count(&open).Error; err != nil {
		return 0, 0, err
	}
	if err := r.DB.WithContext(ctx).Model(&models.Restaurant{}).Where("is_open = ?", false).Count(&closed).Error; err != nil {
		return 0, 0, err
	}
	return open, closed, nil
}
