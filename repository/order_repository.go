package repository

import (
	"context"
	"time"

	"near-expiry-api/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OrderRepository struct {
	DB *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{DB: db}
}

// WithTx returns a copy bound to tx
func (r *OrderRepository) WithTx(tx *gorm.DB) *OrderRepository {
	return &OrderRepository{DB: tx}
}

// OrderFilter narrows a restaurant's order list. Zero values are ignored.
type OrderFilter struct {
	Status models.OrderStatus
	From   time.Time
	To     time.Time
}

// Create inserts the order header only; items are written with CreateItems
func (r *OrderRepository) Create(ctx context.Context, o *models.Order) error {
	return r.DB.WithContext(ctx).Omit(clause.Associations).Create(o).Error
}

func (r *OrderRepository) CreateItems(ctx context.Context, items []models.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.DB.WithContext(ctx).Omit(clause.Associations).Create(&items).Error
}

func (r *OrderRepository) AddHistory(ctx context.Context, h *models.OrderStatusHistory) error {
	return r.DB.WithContext(ctx).Create(h).Error
}

// FindForRestaurant loads an order only if it belongs to restaurantID
func (r *OrderRepository) FindForRestaurant(ctx context.Context, orderID, restaurantID uuid.UUID) (*models.Order, error) {
	var o models.Order
	err := r.DB.WithContext(ctx).
		Where("id = ? AND restaurant_id = ?", orderID, restaurantID).
		First(&o).Error
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// FindDetailed loads an order with items, products, restaurant and history
func (r *OrderRepository) FindDetailed(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	var o models.Order
	err := r.detailed(ctx).Where("id = ?", orderID).First(&o).Error
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// FindDetailedForClient is FindDetailed scoped to the client who placed it
func (r *OrderRepository) FindDetailedForClient(ctx context.Context, orderID, clientID uuid.UUID) (*models.Order, error) {
	var o models.Order
	err := r.detailed(ctx).Where("id = ? AND client_id = ?", orderID, clientID).First(&o).Error
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *OrderRepository) ListForClient(ctx context.Context, clientID uuid.UUID) ([]models.Order, error) {
	var orders []models.Order
	err := r.DB.WithContext(ctx).
		Preload("Items.Product").
		Preload("Restaurant").
		Where("client_id = ?", clientID).
		Order("created_at DESC").
		Find(&orders).Error
	return orders, err
}

func (r *OrderRepository) ListForRestaurant(ctx context.Context, restaurantID uuid.UUID, f OrderFilter) ([]models.Order, error) {
	q := r.DB.WithContext(ctx).
		Preload("Items.Product").
		Preload("Client").
		Where("restaurant_id = ?", restaurantID)
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if !f.From.IsZero() {
		q = q.Where("created_at >= ?", f.From)
	}
	if !f.To.IsZero() {
		q = q.Where("created_at < ?", f.To)
	}

	var orders []models.Order
	err := q.Order("created_at DESC").Find(&orders).Error
	return orders, err
}

// UpdateStatusGuard moves an order from -> to only if it is still in from.
// A non-nil commission is written in the same statement. Returns the number
// of rows changed; zero means the order moved underneath us.
func (r *OrderRepository) UpdateStatusGuard(ctx context.Context, orderID uuid.UUID, from, to models.OrderStatus, commission *decimal.Decimal) (int64, error) {
	updates := map[string]interface{}{"status": to}
	if commission != nil {
		updates["commission_amount"] = *commission
	}
	res := r.DB.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND status = ?", orderID, from).
		Updates(updates)
	return res.RowsAffected, res.Error
}

// CountByStatus returns order counts keyed by status
func (r *OrderRepository) CountByStatus(ctx context.Context) (map[models.OrderStatus]int64, error) {
	var rows []struct {
		Status models.OrderStatus
		Count  int64
	}
	err := r.DB.WithContext(ctx).Model(&models.Order{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[models.OrderStatus]int64, len(rows))
	for _, row := range rows {
		out[row.Status] = row.Count
	}
	return out, nil
}

func (r *OrderRepository) detailed(ctx context.Context) *gorm.DB {
	return r.DB.WithContext(ctx).
		Preload("Items.Product").
		Preload("Restaurant").
		Preload("StatusHistory", func(db *gorm.DB) *gorm.DB {
			return db.Order("id ASC")
		})
}
