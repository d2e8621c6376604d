package services

import (
	"context"
	"testing"
	"time"

	"near-expiry-api/config"
	"near-expiry-api/metrics"
	"near-expiry-api/models"
	"near-expiry-api/repository"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type fixture struct {
	db       *gorm.DB
	metrics  *metrics.Metrics
	orders   *repository.OrderRepository
	products *repository.ProductRepository
	settings *repository.SettingRepository
	svc      *OrderService
}

// newTestDB opens a private in-memory database. One connection keeps the
// schema alive and serialises transactions.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := config.OpenDatabase(config.DBConfig{
		Driver:       "sqlite",
		Source:       "file::memory:",
		MaxOpenConns: 1,
		LogLevel:     logger.Silent,
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := config.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := config.Seed(db, config.AdminConfig{}, zap.NewNop()); err != nil {
		t.Fatalf("seed: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := newTestDB(t)
	f := &fixture{
		db:       db,
		metrics:  metrics.New("test", prometheus.NewRegistry()),
		orders:   repository.NewOrderRepository(db),
		products: repository.NewProductRepository(db),
		settings: repository.NewSettingRepository(db),
	}
	f.svc = NewOrderService(db, f.orders, f.products, f.settings, f.metrics, zap.NewNop())
	return f
}

func createUser(t *testing.T, db *gorm.DB, role models.UserRole) *models.User {
	t.Helper()
	u := &models.User{
		Email:         uuid.NewString() + "@example.com",
		PasswordHash:  "x",
		Role:          role,
		IsActive:      true,
		EmailVerified: true,
	}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func createRestaurant(t *testing.T, db *gorm.DB) (*models.User, *models.Restaurant) {
	t.Helper()
	owner := createUser(t, db, models.RoleRestaurant)
	r := &models.Restaurant{
		UserID:  owner.ID,
		Name:    "Bakery " + owner.ID.String()[:8],
		Address: "1 Main St",
		Phone:   "+1 555 0100",
		IsOpen:  true,
	}
	if err := db.Create(r).Error; err != nil {
		t.Fatalf("create restaurant: %v", err)
	}
	return owner, r
}

func createProduct(t *testing.T, db *gorm.DB, restaurantID uuid.UUID, name, price string, qty int) *models.Product {
	t.Helper()
	p := &models.Product{
		RestaurantID: restaurantID,
		CategoryID:   1,
		Name:         name,
		Price:        decimal.RequireFromString(price),
		Quantity:     qty,
		ExpiryDate:   truncateDay(time.Now()).AddDate(0, 0, 2),
		IsActive:     true,
	}
	if err := db.Create(p).Error; err != nil {
		t.Fatalf("create product: %v", err)
	}
	return p
}

func stockOf(t *testing.T, db *gorm.DB, id uuid.UUID) int {
	t.Helper()
	var p models.Product
	if err := db.Where("id = ?", id).First(&p).Error; err != nil {
		t.Fatalf("load product: %v", err)
	}
	return p.Quantity
}

func countRows(t *testing.T, db *gorm.DB, model any) int64 {
	t.Helper()
	var n int64
	if err := db.Model(model).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

func pickup(items ...OrderItemInput) CreateOrderInput {
	return CreateOrderInput{Items: items, OrderType: models.OrderPickup}
}

func item(p *models.Product, qty int) OrderItemInput {
	return OrderItemInput{ProductID: p.ID.String(), Quantity: qty}
}

var bg = context.Background()

func zapNop() *zap.Logger { return zap.NewNop() }
