package services

import (
	"context"
	"errors"

	"near-expiry-api/models"
	"near-expiry-api/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	defaultUserPageSize = 10
	maxUserPageSize     = 100
)

var maxCommission = decimal.NewFromInt(100)

type UserListQuery struct {
	Role     string
	IsActive *bool
	Search   string
	Page     int
	Limit    int
}

type RestaurantStats struct {
	Total  int64 `json:"total"`
	Open   int64 `json:"open"`
	Closed int64 `json:"closed"`
}

type OrderStats struct {
	Total    int64                        `json:"total"`
	ByStatus map[models.OrderStatus]int64 `json:"byStatus"`
}

type RevenueStats struct {
	TotalRevenue    decimal.Decimal `json:"totalRevenue"`
	TotalCommission decimal.Decimal `json:"totalCommission"`
}

type SystemStats struct {
	Users       []repository.RoleCount `json:"users"`
	Restaurants RestaurantStats        `json:"restaurants"`
	Orders      OrderStats             `json:"orders"`
	Revenue     RevenueStats           `json:"revenue"`
}

// SettingStore is the read/write side of platform settings
type SettingStore interface {
	CommissionSource
	SetCommissionPercentage(ctx context.Context, pct decimal.Decimal) error
}

type AdminService struct {
	users       *repository.UserRepository
	restaurants *repository.RestaurantRepository
	orders      *repository.OrderRepository
	sales       *repository.SalesRepository
	settings    SettingStore
	log         *zap.Logger
}

func NewAdminService(
	users *repository.UserRepository,
	restaurants *repository.RestaurantRepository,
	orders *repository.OrderRepository,
	sales *repository.SalesRepository,
	settings SettingStore,
	log *zap.Logger,
) *AdminService {
	return &AdminService{
		users:       users,
		restaurants: restaurants,
		orders:      orders,
		sales:       sales,
		settings:    settings,
		log:         log.Named("admin"),
	}
}

func (s *AdminService) ListUsers(ctx context.Context, q UserListQuery) ([]models.User, Pagination, error) {
	role := models.UserRole(q.Role)
	if role != "" && !role.Valid() {
		return nil, Pagination{}, validationf("Role must be one of: client, restaurant, admin")
	}
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = defaultUserPageSize
	}
	if q.Limit > maxUserPageSize {
		q.Limit = maxUserPageSize
	}

	users, total, err := s.users.List(ctx, repository.UserFilter{
		Role:     role,
		IsActive: q.IsActive,
		Search:   q.Search,
		Page:     q.Page,
		Limit:    q.Limit,
	})
	if err != nil {
		return nil, Pagination{}, err
	}
	return users, newPagination(q.Page, q.Limit, total), nil
}

// ToggleUserStatus flips is_active on a client or restaurant account.
// Admins can neither deactivate themselves nor each other.
func (s *AdminService) ToggleUserStatus(ctx context.Context, adminID, userID uuid.UUID) (*models.User, error) {
	if adminID == userID {
		return nil, validationf("You cannot deactivate your own account")
	}
	user, err := s.users.FindByID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFoundf("User not found")
	}
	if err != nil {
		return nil, err
	}
	if user.Role == models.RoleAdmin {
		return nil, forbiddenf("You cannot deactivate other admin accounts")
	}

	user.IsActive = !user.IsActive
	if err := s.users.SetActive(ctx, user.ID, user.IsActive); err != nil {
		return nil, err
	}
	s.log.Info("user status toggled",
		zap.String("admin_id", adminID.String()),
		zap.String("user_id", user.ID.String()),
		zap.Bool("is_active", user.IsActive),
	)
	return user, nil
}

func (s *AdminService) Stats(ctx context.Context) (*SystemStats, error) {
	users, err := s.users.CountByRole(ctx)
	if err != nil {
		return nil, err
	}
	open, closed, err := s.restaurants.CountByOpen(ctx)
	if err != nil {
		return nil, err
	}
	byStatus, err := s.orders.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	totals, err := s.sales.PlatformTotals(ctx)
	if err != nil {
		return nil, err
	}

	stats := &SystemStats{
		Users:       users,
		Restaurants: RestaurantStats{Total: open + closed, Open: open, Closed: closed},
		Orders:      OrderStats{ByStatus: make(map[models.OrderStatus]int64, len(models.AllStatuses))},
		Revenue: RevenueStats{
			TotalRevenue:    totals.TotalSales.Round(2),
			TotalCommission: totals.TotalCommission.Round(2),
		},
	}
	for _, st := range models.AllStatuses {
		stats.Orders.ByStatus[st] = byStatus[st]
		stats.Orders.Total += byStatus[st]
	}
	return stats, nil
}

func (s *AdminService) Commission(ctx context.Context) (decimal.Decimal, error) {
	return s.settings.CommissionPercentage(ctx, nil)
}

// SetCommission stores a new percentage; it applies to orders completed
// from now on and never to ones already completed.
func (s *AdminService) SetCommission(ctx context.Context, adminID uuid.UUID, pct *decimal.Decimal) (decimal.Decimal, error) {
	if pct == nil {
		return decimal.Zero, validationf("Commission percentage is required")
	}
	if pct.IsNegative() || pct.GreaterThan(maxCommission) {
		return decimal.Zero, validationf("Commission percentage must be a number between 0 and 100")
	}
	if err := s.settings.SetCommissionPercentage(ctx, *pct); err != nil {
		return decimal.Zero, err
	}
	s.log.Info("commission percentage updated",
		zap.String("admin_id", adminID.String()),
		zap.String("percentage", pct.String()),
	)
	return *pct, nil
}
