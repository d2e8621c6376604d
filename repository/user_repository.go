package repository

import (
	"context"
	"strings"

	"near-expiry-api/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRepository struct {
	DB *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{DB: db}
}

func (r *UserRepository) WithTx(tx *gorm.DB) *UserRepository {
	return &UserRepository{DB: tx}
}

// UserFilter drives the admin user listing
type UserFilter struct {
	Role     models.UserRole
	IsActive *bool
	Search   string
	Page     int
	Limit    int
}

// RoleCount is one row of the users-by-role breakdown
type RoleCount struct {
	Role     models.UserRole `json:"role"`
	Total    int64           `json:"total"`
	Active   int64           `json:"active"`
	Inactive int64           `json:"inactive"`
}

func (r *UserRepository) Create(ctx context.Context, u *models.User) error {
	return r.DB.WithContext(ctx).Omit("Restaurant").Create(u).Error
}

func (r *UserRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var u models.User
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := r.DB.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&count).Error
	return count > 0, err
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error {
	return r.DB.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("password_hash", hash).Error
}

func (r *UserRepository) MarkEmailVerified(ctx context.Context, id uuid.UUID) error {
	return r.DB.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("email_verified", true).Error
}

func (r *UserRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	return r.DB.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("is_active", active).Error
}

// List returns a page of users (newest first) plus the unpaged total
func (r *UserRepository) List(ctx context.Context, f UserFilter) ([]models.User, int64, error) {
	q := r.DB.WithContext(ctx).Model(&models.User{})
	if f.Role != "" {
		q = q.Where("role = ?", f.Role)
	}
	if f.IsActive != nil {
		q = q.Where("is_active = ?", *f.IsActive)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		q = q.Where("LOWER(email) LIKE ?", "%"+strings.ToLower(s)+"%")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var users []models.User
	err := q.Preload("Restaurant").
		Order("created_at DESC").
		Offset((f.Page - 1) * f.Limit).
		Limit(f.Limit).
		Find(&users).Error
	return users, total, err
}

func (r *UserRepository) CountByRole(ctx context.Context) ([]RoleCount, error) {
	var rows []RoleCount
	err := r.DB.WithContext(ctx).Model(&models.User{}).
		Select("role, COUNT(*) AS total, " +
			"SUM(CASE WHEN is_active THEN 1 ELSE 0 END) AS active, " +
			"SUM(CASE WHEN is_active THEN 0 ELSE 1 END) AS inactive").
		Group("role").
		Order("role").
		Scan(&rows).Error
	return rows, err
}
