package repository

import (
	"context"

	"near-expiry-api/models"

	"gorm.io/gorm"
)

type CategoryRepository struct {
	DB *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{DB: db}
}

func (r *CategoryRepository) List(ctx context.Context) ([]models.Category, error) {
	var out []models.Category
	err := r.DB.WithContext(ctx).Order("name ASC").Find(&out).Error
	return out, err
}

func (r *CategoryRepository) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&models.Category{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}
