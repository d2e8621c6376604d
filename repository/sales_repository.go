package repository

import (
	"context"
	"time"

	"near-expiry-api/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TimeRange is a half-open [From, To) window. A zero bound is open.
type TimeRange struct {
	From time.Time
	To   time.Time
}

type SalesTotals struct {
	TotalSales      decimal.Decimal
	TotalCommission decimal.Decimal
	TotalOrders     int64
}

type ProductSales struct {
	ID           uuid.UUID       `json:"id"`
	Name         string          `json:"name"`
	CategoryID   uint            `json:"categoryId"`
	QuantitySold int64           `json:"quantitySold"`
	Revenue      decimal.Decimal `json:"revenue"`
}

type CategorySales struct {
	ID           uint            `json:"id"`
	CategoryName string          `json:"categoryName"`
	OrderCount   int64           `json:"orderCount"`
	ItemsSold    int64           `json:"itemsSold"`
	Revenue      decimal.Decimal `json:"revenue"`
}

type OrderTypeSales struct {
	OrderType  models.OrderType `json:"orderType"`
	OrderCount int64            `json:"orderCount"`
	Revenue    decimal.Decimal  `json:"revenue"`
}

// SalesRepository aggregates completed orders. Only portable SQL lives
// here; calendar bucketing is done by the caller.
type SalesRepository struct {
	DB *gorm.DB
}

func NewSalesRepository(db *gorm.DB) *SalesRepository {
	return &SalesRepository{DB: db}
}

func (r *SalesRepository) Totals(ctx context.Context, restaurantID uuid.UUID, tr TimeRange) (SalesTotals, error) {
	var out SalesTotals
	err := r.completed(ctx, "orders", restaurantID, tr).
		Table("orders").
		Select("COALESCE(SUM(orders.total_amount), 0) AS total_sales, " +
			"COALESCE(SUM(orders.commission_amount), 0) AS total_commission, " +
			"COUNT(orders.id) AS total_orders").
		Scan(&out).Error
	return out, err
}

func (r *SalesRepository) ItemsSold(ctx context.Context, restaurantID uuid.UUID, tr TimeRange) (int64, error) {
	var n int64
	err := r.completed(ctx, "orders", restaurantID, tr).
		Table("order_items").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Select("COALESCE(SUM(order_items.quantity), 0)").
		Scan(&n).Error
	return n, err
}

func (r *SalesRepository) TopProducts(ctx context.Context, restaurantID uuid.UUID, tr TimeRange, limit int) ([]ProductSales, error) {
	var out []ProductSales
	err := r.completed(ctx, "orders", restaurantID, tr).
		Table("order_items").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Joins("JOIN products ON products.id = order_items.product_id").
		Select("products.id AS id, products.name AS name, products.category_id AS category_id, " +
			"SUM(order_items.quantity) AS quantity_sold, " +
			"SUM(order_items.quantity * order_items.price_at_order) AS revenue").
		Group("products.id, products.name, products.category_id").
		Order("revenue DESC").
		Limit(limit).
		Scan(&out).Error
	return out, err
}

func (r *SalesRepository) ByCategory(ctx context.Context, restaurantID uuid.UUID, tr TimeRange) ([]CategorySales, error) {
	var out []CategorySales
	err := r.completed(ctx, "orders", restaurantID, tr).
		Table("order_items").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Joins("JOIN products ON products.id = order_items.product_id").
		Joins("JOIN categories ON categories.id = products.category_id").
		Select("categories.id AS id, categories.name AS category_name, " +
			"COUNT(DISTINCT orders.id) AS order_count, " +
			"SUM(order_items.quantity) AS items_sold, " +
			"SUM(order_items.quantity * order_items.price_at_order) AS revenue").
		Group("categories.id, categories.name").
		Order("revenue DESC").
		Scan(&out).Error
	return out, err
}

func (r *SalesRepository) ByOrderType(ctx context.Context, restaurantID uuid.UUID, tr TimeRange) ([]OrderTypeSales, error) {
	var out []OrderTypeSales
	err := r.completed(ctx, "orders", restaurantID, tr).
		Table("orders").
		Select("orders.order_type AS order_type, COUNT(orders.id) AS order_count, " +
			"COALESCE(SUM(orders.total_amount), 0) AS revenue").
		Group("orders.order_type").
		Order("orders.order_type").
		Scan(&out).Error
	return out, err
}

// CompletedOrders returns the money columns and timestamps of completed
// orders, oldest first, for calendar bucketing.
func (r *SalesRepository) CompletedOrders(ctx context.Context, restaurantID uuid.UUID, tr TimeRange) ([]models.Order, error) {
	var out []models.Order
	err := r.completed(ctx, "orders", restaurantID, tr).
		Model(&models.Order{}).
		Select("id, total_amount, commission_amount, created_at").
		Order("created_at ASC").
		Find(&out).Error
	return out, err
}

// PlatformTotals sums revenue and commission over every completed order
func (r *SalesRepository) PlatformTotals(ctx context.Context) (SalesTotals, error) {
	var out SalesTotals
	err := r.DB.WithContext(ctx).
		Table("orders").
		Where("status = ?", models.StatusCompleted).
		Select("COALESCE(SUM(total_amount), 0) AS total_sales, " +
			"COALESCE(SUM(commission_amount), 0) AS total_commission, " +
			"COUNT(id) AS total_orders").
		Scan(&out).Error
	return out, err
}

func (r *SalesRepository) completed(ctx context.Context, table string, restaurantID uuid.UUID, tr TimeRange) *gorm.DB {
	q := r.DB.WithContext(ctx).
		Where(table+".restaurant_id = ? AND "+table+".status = ?", restaurantID, models.StatusCompleted)
	if !tr.From.IsZero() {
		q = q.Where(table+".created_at >= ?", tr.From)
	}
	if !tr.To.IsZero() {
		q = q.Where(table+".created_at < ?", tr.To)
	}
	return q
}
