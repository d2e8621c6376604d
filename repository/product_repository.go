package repository

import (
	"context"
	"strings"
	"time"

	"near-expiry-api/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ProductRepository struct {
	DB *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{DB: db}
}

func (r *ProductRepository) WithTx(tx *gorm.DB) *ProductRepository {
	return &ProductRepository{DB: tx}
}

// BrowseFilter drives the public catalogue listing
type BrowseFilter struct {
	Search     string
	CategoryID uint
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
	SortBy     string // newest | price_asc | price_desc | expiry
	Today      time.Time
	Page       int
	Limit      int
}

func (r *ProductRepository) Create(ctx context.Context, p *models.Product) error {
	return r.DB.WithContext(ctx).Omit("Restaurant", "Category").Create(p).Error
}

// Save writes every column of an existing product
func (r *ProductRepository) Save(ctx context.Context, p *models.Product) error {
	return r.DB.WithContext(ctx).Omit("Restaurant", "Category").Save(p).Error
}

func (r *ProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var p models.Product
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// FindByIDs loads every product in ids with a single query. Missing ids are
// simply absent from the result.
func (r *ProductRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error) {
	var products []models.Product
	err := r.DB.WithContext(ctx).Where("id IN ?", ids).Find(&products).Error
	return products, err
}

// FindActiveDetailed loads an active product with its category and restaurant
func (r *ProductRepository) FindActiveDetailed(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var p models.Product
	err := r.DB.WithContext(ctx).
		Preload("Category").
		Preload("Restaurant").
		Where("id = ? AND is_active = ?", id, true).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProductRepository) ListActiveByRestaurant(ctx context.Context, restaurantID uuid.UUID) ([]models.Product, error) {
	var products []models.Product
	err := r.DB.WithContext(ctx).
		Preload("Category").
		Where("restaurant_id = ? AND is_active = ?", restaurantID, true).
		Order("created_at DESC").
		Find(&products).Error
	return products, err
}

// Browse lists purchasable products: active, unexpired and in stock
func (r *ProductRepository) Browse(ctx context.Context, f BrowseFilter) ([]models.Product, int64, error) {
	q := r.DB.WithContext(ctx).Model(&models.Product{}).
		Where("is_active = ? AND quantity > 0 AND expiry_date >= ?", true, f.Today)
	if s := strings.TrimSpace(f.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where("(LOWER(name) LIKE ? OR LOWER(description) LIKE ?)", like, like)
	}
	if f.CategoryID != 0 {
		q = q.Where("category_id = ?", f.CategoryID)
	}
	if f.MinPrice != nil {
		q = q.Where("price >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		q = q.Where("price <= ?", *f.MaxPrice)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var products []models.Product
	err := q.Preload("Category").Preload("Restaurant").
		Order(browseOrder(f.SortBy)).
		Offset((f.Page - 1) * f.Limit).
		Limit(f.Limit).
		Find(&products).Error
	return products, total, err
}

func browseOrder(sortBy string) string {
	switch sortBy {
	case "price_asc":
		return "price ASC"
	case "price_desc":
		return "price DESC"
	case "expiry":
		return "expiry_date ASC"
	default:
		return "created_at DESC"
	}
}

// DecrementStock subtracts qty only while enough stock remains. Zero rows
// affected means the product ran out (or vanished) since it was read.
func (r *ProductRepository) DecrementStock(ctx context.Context, id uuid.UUID, qty int) (int64, error) {
	res := r.DB.WithContext(ctx).Model(&models.Product{}).
		Where("id = ? AND quantity >= ?", id, qty).
		Update("quantity", gorm.Expr("quantity - ?", qty))
	return res.RowsAffected, res.Error
}

func (r *ProductRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	return r.DB.WithContext(ctx).Model(&models.Product{}).
		Where("id = ?", id).
		Update("is_active", false).Error
}
