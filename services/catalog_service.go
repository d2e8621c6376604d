package services

import (
	"context"
	"time"

	"near-expiry-api/models"
	"near-expiry-api/repository"

	"github.com/shopspring/decimal"
)

const (
	defaultBrowseLimit = 12
	maxBrowseLimit     = 100
)

// BrowseQuery is the public product search
type BrowseQuery struct {
	Search     string
	CategoryID uint
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
	SortBy     string
	Page       int
	Limit      int
}

type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"totalPages"`
}

func newPagination(page, limit int, total int64) Pagination {
	pages := total / int64(limit)
	if total%int64(limit) != 0 {
		pages++
	}
	return Pagination{Page: page, Limit: limit, Total: total, TotalPages: pages}
}

// CatalogService serves the read-only buyer side: categories and browsing
type CatalogService struct {
	categories *repository.CategoryRepository
	products   *repository.ProductRepository
	now        func() time.Time
}

func NewCatalogService(categories *repository.CategoryRepository, products *repository.ProductRepository) *CatalogService {
	return &CatalogService{categories: categories, products: products, now: time.Now}
}

func (s *CatalogService) Categories(ctx context.Context) ([]models.Category, error) {
	return s.categories.List(ctx)
}

// Browse lists active, unexpired, in-stock products
func (s *CatalogService) Browse(ctx context.Context, q BrowseQuery) ([]models.Product, Pagination, error) {
	switch q.SortBy {
	case "", "newest", "price_asc", "price_desc", "expiry":
	default:
		return nil, Pagination{}, validationf("sortBy must be one of: newest, price_asc, price_desc, expiry")
	}
	if q.MinPrice != nil && q.MaxPrice != nil && q.MinPrice.GreaterThan(*q.MaxPrice) {
		return nil, Pagination{}, validationf("minPrice cannot exceed maxPrice")
	}
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = defaultBrowseLimit
	}
	if q.Limit > maxBrowseLimit {
		q.Limit = maxBrowseLimit
	}

	products, total, err := s.products.Browse(ctx, repository.BrowseFilter{
		Search:     q.Search,
		CategoryID: q.CategoryID,
		MinPrice:   q.MinPrice,
		MaxPrice:   q.MaxPrice,
		SortBy:     q.SortBy,
		Today:      truncateDay(s.now()),
		Page:       q.Page,
		Limit:      q.Limit,
	})
	if err != nil {
		return nil, Pagination{}, err
	}
	return products, newPagination(q.Page, q.Limit, total), nil
}
