package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"near-expiry-api/metrics"
	"near-expiry-api/models"
	"near-expiry-api/repository"
	"near-expiry-api/statemachine"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CommissionSource supplies the platform commission percentage. tx is the
// transaction the read must join; nil means no transaction.
type CommissionSource interface {
	CommissionPercentage(ctx context.Context, tx *gorm.DB) (decimal.Decimal, error)
}

type OrderItemInput struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type CreateOrderInput struct {
	Items           []OrderItemInput `json:"items"`
	OrderType       models.OrderType `json:"orderType"`
	DeliveryAddress string           `json:"deliveryAddress"`
	DeliveryPhone   string           `json:"deliveryPhone"`
}

// RestaurantOrderQuery is the raw filter a restaurant sends when listing
// its orders. Dates are YYYY-MM-DD or RFC 3339; a date-only EndDate
// includes that whole day.
type RestaurantOrderQuery struct {
	Status    string
	StartDate string
	EndDate   string
}

type OrderService struct {
	db         *gorm.DB
	orders     *repository.OrderRepository
	products   *repository.ProductRepository
	commission CommissionSource
	metrics    *metrics.Metrics
	log        *zap.Logger
}

func NewOrderService(
	db *gorm.DB,
	orders *repository.OrderRepository,
	products *repository.ProductRepository,
	commission CommissionSource,
	m *metrics.Metrics,
	log *zap.Logger,
) *OrderService {
	return &OrderService{
		db:         db,
		orders:     orders,
		products:   products,
		commission: commission,
		metrics:    m,
		log:        log.Named("orders"),
	}
}

type orderLine struct {
	product  models.Product
	quantity int
}

// Create validates the request, then atomically writes the order, its
// items and the stock decrements. Nothing is written on any failure.
func (s *OrderService) Create(ctx context.Context, clientID uuid.UUID, in CreateOrderInput) (*models.Order, error) {
	order, err := s.create(ctx, clientID, in)
	if err != nil {
		s.observeFailure("create", err)
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.OrdersCreated.Inc()
	}
	s.log.Info("order created",
		zap.String("order_id", order.ID.String()),
		zap.String("client_id", clientID.String()),
		zap.String("restaurant_id", order.RestaurantID.String()),
		zap.String("total", order.TotalAmount.StringFixed(2)),
	)
	return order, nil
}

func (s *OrderService) create(ctx context.Context, clientID uuid.UUID, in CreateOrderInput) (*models.Order, error) {
	ids, err := validateCreateInput(in)
	if err != nil {
		return nil, err
	}

	found, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	if len(found) != len(ids) {
		return nil, notFoundf("One or more products not found")
	}
	byID := make(map[uuid.UUID]models.Product, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}

	lines := make([]orderLine, len(ids))
	for i, id := range ids {
		lines[i] = orderLine{product: byID[id], quantity: in.Items[i].Quantity}
	}

	for _, l := range lines {
		if !l.product.IsActive {
			return nil, newError(ErrUnavailable, "Product %q is not available", l.product.Name)
		}
	}

	restaurantID := lines[0].product.RestaurantID
	for _, l := range lines[1:] {
		if l.product.RestaurantID != restaurantID {
			return nil, validationf("All items must be from the same restaurant")
		}
	}

	total := decimal.Zero
	for _, l := range lines {
		if l.quantity > l.product.Quantity {
			return nil, insufficientStock(l.product.Name, l.product.Quantity, l.quantity)
		}
		total = total.Add(l.product.Price.Mul(decimal.NewFromInt(int64(l.quantity))))
	}

	order := &models.Order{
		ClientID:         clientID,
		RestaurantID:     restaurantID,
		TotalAmount:      total,
		CommissionAmount: decimal.Zero,
		Status:           models.StatusPending,
		OrderType:        in.OrderType,
	}
	if in.OrderType == models.OrderDelivery {
		addr := strings.TrimSpace(in.DeliveryAddress)
		phone := strings.TrimSpace(in.DeliveryPhone)
		order.DeliveryAddress = &addr
		order.DeliveryPhone = &phone
	}

	err = repository.Transaction(ctx, s.db, s.log, "create_order", func(tx *gorm.DB) error {
		orders := s.orders.WithTx(tx)
		products := s.products.WithTx(tx)

		if err := orders.Create(ctx, order); err != nil {
			return fmt.Errorf("insert order: %w", err)
		}

		items := make([]models.OrderItem, len(lines))
		for i, l := range lines {
			items[i] = models.OrderItem{
				OrderID:      order.ID,
				ProductID:    l.product.ID,
				Quantity:     l.quantity,
				PriceAtOrder: l.product.Price,
			}
		}
		if err := orders.CreateItems(ctx, items); err != nil {
			return fmt.Errorf("insert order items: %w", err)
		}

		for _, l := range lines {
			affected, err := products.DecrementStock(ctx, l.product.ID, l.quantity)
			if err != nil {
				return fmt.Errorf("decrement stock: %w", err)
			}
			if affected == 0 {
				// Someone bought it between our read and this update.
				current := 0
				if p, err := products.FindByID(ctx, l.product.ID); err == nil {
					current = p.Quantity
				}
				return insufficientStock(l.product.Name, current, l.quantity)
			}
		}

		return orders.AddHistory(ctx, &models.OrderStatusHistory{
			OrderID:   order.ID,
			ToStatus:  models.StatusPending,
			ChangedBy: clientID,
			Note:      "Order placed",
		})
	})
	if err != nil {
		return nil, err
	}

	return s.orders.FindDetailed(ctx, order.ID)
}

func validateCreateInput(in CreateOrderInput) ([]uuid.UUID, error) {
	if len(in.Items) == 0 {
		return nil, validationf("Items array is required and must not be empty")
	}
	if !in.OrderType.Valid() {
		return nil, validationf("Order type must be either %q or %q", models.OrderPickup, models.OrderDelivery)
	}
	if in.OrderType == models.OrderDelivery {
		if strings.TrimSpace(in.DeliveryAddress) == "" {
			return nil, validationf("Delivery address is required for delivery orders")
		}
		if strings.TrimSpace(in.DeliveryPhone) == "" {
			return nil, validationf("Delivery phone is required for delivery orders")
		}
	}

	ids := make([]uuid.UUID, len(in.Items))
	seen := make(map[uuid.UUID]bool, len(in.Items))
	for i, item := range in.Items {
		if strings.TrimSpace(item.ProductID) == "" {
			return nil, validationf("Each item must have productId and quantity")
		}
		if item.Quantity <= 0 {
			return nil, validationf("Quantity must be a positive integer")
		}
		id, err := uuid.Parse(item.ProductID)
		if err != nil {
			return nil, notFoundf("One or more products not found")
		}
		if seen[id] {
			return nil, validationf("Each product may appear only once per order")
		}
		seen[id] = true
		ids[i] = id
	}
	return ids, nil
}

func insufficientStock(name string, available, requested int) error {
	return newError(ErrInsufficientStock, "Insufficient quantity for product %q. Available: %d, Requested: %d",
		name, available, requested)
}

// Transition moves an order owned by restaurantID to status. Completing an
// order records commission = total * pct / 100, rounded to cents.
func (s *OrderService) Transition(ctx context.Context, orderID, restaurantID uuid.UUID, status models.OrderStatus, actorID uuid.UUID) (*models.Order, error) {
	from, order, err := s.transition(ctx, orderID, restaurantID, status, actorID)
	if err != nil {
		s.observeFailure("transition", err)
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.OrderTransitions.WithLabelValues(string(from), string(status)).Inc()
		if status == models.StatusCompleted {
			s.metrics.CommissionCharged.Add(order.CommissionAmount.InexactFloat64())
		}
	}
	s.log.Info("order status changed",
		zap.String("order_id", orderID.String()),
		zap.String("from", string(from)),
		zap.String("to", string(status)),
		zap.String("changed_by", actorID.String()),
	)
	return order, nil
}

func (s *OrderService) transition(ctx context.Context, orderID, restaurantID uuid.UUID, status models.OrderStatus, actorID uuid.UUID) (models.OrderStatus, *models.Order, error) {
	if !status.Valid() {
		return "", nil, validationf("Status must be one of: %s", joinStatuses(models.AllStatuses))
	}

	var from models.OrderStatus
	err := repository.Transaction(ctx, s.db, s.log, "update_order_status", func(tx *gorm.DB) error {
		orders := s.orders.WithTx(tx)

		order, err := orders.FindForRestaurant(ctx, orderID, restaurantID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFoundf("Order not found or you do not have permission to update it")
		}
		if err != nil {
			return fmt.Errorf("load order: %w", err)
		}
		from = order.Status

		if err := statemachine.CanTransition(from, status); err != nil {
			return newError(ErrInvalidTransition, "Cannot transition from %s to %s. Valid transitions: %s",
				from, status, statemachine.DescribeValidFrom(from))
		}

		var commission *decimal.Decimal
		if status == models.StatusCompleted {
			pct, err := s.commission.CommissionPercentage(ctx, tx)
			if err != nil {
				return fmt.Errorf("read commission percentage: %w", err)
			}
			c := CommissionFor(order.TotalAmount, pct)
			commission = &c
		}

		affected, err := orders.UpdateStatusGuard(ctx, order.ID, from, status, commission)
		if err != nil {
			return fmt.Errorf("update order status: %w", err)
		}
		if affected == 0 {
			return newError(ErrInvalidTransition, "Order is no longer %s", from)
		}

		return orders.AddHistory(ctx, &models.OrderStatusHistory{
			OrderID:    order.ID,
			FromStatus: from,
			ToStatus:   status,
			ChangedBy:  actorID,
		})
	})
	if err != nil {
		return "", nil, err
	}

	order, err := s.orders.FindDetailed(ctx, orderID)
	if err != nil {
		return "", nil, fmt.Errorf("reload order: %w", err)
	}
	return from, order, nil
}

// CommissionFor computes total * pct / 100 rounded half away from zero to
// two decimal places.
func CommissionFor(total, pct decimal.Decimal) decimal.Decimal {
	return total.Mul(pct).Div(decimal.NewFromInt(100)).Round(2)
}

func (s *OrderService) ListForClient(ctx context.Context, clientID uuid.UUID) ([]models.Order, error) {
	return s.orders.ListForClient(ctx, clientID)
}

func (s *OrderService) GetForClient(ctx context.Context, orderID, clientID uuid.UUID) (*models.Order, error) {
	order, err := s.orders.FindDetailedForClient(ctx, orderID, clientID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFoundf("Order not found")
	}
	return order, err
}

func (s *OrderService) ListForRestaurant(ctx context.Context, restaurantID uuid.UUID, q RestaurantOrderQuery) ([]models.Order, error) {
	var f repository.OrderFilter
	if q.Status != "" {
		f.Status = models.OrderStatus(q.Status)
		if !f.Status.Valid() {
			return nil, validationf("Status must be one of: %s", joinStatuses(models.AllStatuses))
		}
	}
	if q.StartDate != "" {
		t, _, err := parseDate(q.StartDate)
		if err != nil {
			return nil, validationf("Invalid startDate")
		}
		f.From = t
	}
	if q.EndDate != "" {
		t, dateOnly, err := parseDate(q.EndDate)
		if err != nil {
			return nil, validationf("Invalid endDate")
		}
		if dateOnly {
			t = t.AddDate(0, 0, 1)
		} else {
			t = t.Add(time.Nanosecond)
		}
		f.To = t
	}
	return s.orders.ListForRestaurant(ctx, restaurantID, f)
}

// StateMachine describes every allowed transition
func (s *OrderService) StateMachine() []statemachine.Transition {
	return statemachine.GetAllTransitions()
}

func (s *OrderService) observeFailure(op string, err error) {
	kind := KindOf(err)
	if kind == nil {
		s.log.Error("order operation failed", zap.String("operation", op), zap.Error(err))
	}
	if s.metrics == nil {
		return
	}
	label := "internal"
	if kind != nil {
		label = strings.ReplaceAll(kind.Error(), " ", "_")
	}
	s.metrics.OrderFailures.WithLabelValues(op, label).Inc()
}

func parseDate(raw string) (time.Time, bool, error) {
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t.UTC(), true, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	return t.UTC(), false, err
}

func joinStatuses(statuses []models.OrderStatus) string {
	names := make([]string, len(statuses))
	for i, s := range statuses {
		names[i] = string(s)
	}
	return strings.Join(names, ", ")
}
