package services

import (
	"context"
	"time"

	"near-expiry-api/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type SalesPeriod string

const (
	PeriodToday SalesPeriod = "today"
	PeriodWeek  SalesPeriod = "week"
	PeriodMonth SalesPeriod = "month"
	PeriodAll   SalesPeriod = "all"
)

type SalesSummary struct {
	TotalSales        decimal.Decimal `json:"totalSales"`
	TotalCommission   decimal.Decimal `json:"totalCommission"`
	NetRevenue        decimal.Decimal `json:"netRevenue"`
	TotalOrders       int64           `json:"totalOrders"`
	TotalItemsSold    int64           `json:"totalItemsSold"`
	AverageOrderValue decimal.Decimal `json:"averageOrderValue"`
}

type SalesComparison struct {
	PreviousPeriodSales decimal.Decimal `json:"previousPeriodSales"`
	PercentageChange    decimal.Decimal `json:"percentageChange"`
	Trend               string          `json:"trend"`
}

// SalesBucket is one row of the calendar breakdown: an hour for today, a
// day for week/month, a month for all.
type SalesBucket struct {
	Period     string          `json:"period"`
	OrderCount int64           `json:"orderCount"`
	Sales      decimal.Decimal `json:"sales"`
	Commission decimal.Decimal `json:"commission"`
}

type SalesReport struct {
	Period             SalesPeriod                 `json:"period"`
	Summary            SalesSummary                `json:"summary"`
	Comparison         *SalesComparison            `json:"comparison"`
	TopProducts        []repository.ProductSales   `json:"topProducts"`
	SalesByCategory    []repository.CategorySales  `json:"salesByCategory"`
	SalesBreakdown     []SalesBucket               `json:"salesBreakdown"`
	OrderTypeBreakdown []repository.OrderTypeSales `json:"orderTypeBreakdown"`
}

// SalesService reports on a restaurant's completed orders
type SalesService struct {
	sales *repository.SalesRepository
	now   func() time.Time
}

func NewSalesService(sales *repository.SalesRepository) *SalesService {
	return &SalesService{sales: sales, now: time.Now}
}

// periodRanges returns the current window and the one before it. Windows
// start at UTC midnight so "today" is the calendar day.
func periodRanges(p SalesPeriod, now time.Time) (cur, prev repository.TimeRange, err error) {
	today := truncateDay(now)
	var days int
	switch p {
	case PeriodToday:
		days = 1
		cur = repository.TimeRange{From: today}
	case PeriodWeek:
		days = 7
		cur = repository.TimeRange{From: today.AddDate(0, 0, -days)}
	case PeriodMonth:
		days = 30
		cur = repository.TimeRange{From: today.AddDate(0, 0, -days)}
	case PeriodAll:
		return cur, prev, nil
	default:
		return cur, prev, validationf("Invalid period. Must be one of: today, week, month, all")
	}
	prev = repository.TimeRange{From: cur.From.AddDate(0, 0, -days), To: cur.From}
	return cur, prev, nil
}

func (s *SalesService) Report(ctx context.Context, restaurantID uuid.UUID, period SalesPeriod) (*SalesReport, error) {
	if period == "" {
		period = PeriodToday
	}
	cur, prev, err := periodRanges(period, s.now())
	if err != nil {
		return nil, err
	}

	totals, err := s.sales.Totals(ctx, restaurantID, cur)
	if err != nil {
		return nil, err
	}
	items, err := s.sales.ItemsSold(ctx, restaurantID, cur)
	if err != nil {
		return nil, err
	}

	report := &SalesReport{
		Period: period,
		Summary: SalesSummary{
			TotalSales:        totals.TotalSales.Round(2),
			TotalCommission:   totals.TotalCommission.Round(2),
			NetRevenue:        totals.TotalSales.Sub(totals.TotalCommission).Round(2),
			TotalOrders:       totals.TotalOrders,
			TotalItemsSold:    items,
			AverageOrderValue: decimal.Zero,
		},
	}
	if totals.TotalOrders > 0 {
		report.Summary.AverageOrderValue = totals.TotalSales.Div(decimal.NewFromInt(totals.TotalOrders)).Round(2)
	}

	if period != PeriodAll {
		before, err := s.sales.Totals(ctx, restaurantID, prev)
		if err != nil {
			return nil, err
		}
		report.Comparison = compare(totals.TotalSales, before.TotalSales)
	}

	if report.TopProducts, err = s.sales.TopProducts(ctx, restaurantID, cur, 10); err != nil {
		return nil, err
	}
	if report.SalesByCategory, err = s.sales.ByCategory(ctx, restaurantID, cur); err != nil {
		return nil, err
	}
	if report.OrderTypeBreakdown, err = s.sales.ByOrderType(ctx, restaurantID, cur); err != nil {
		return nil, err
	}

	orders, err := s.sales.CompletedOrders(ctx, restaurantID, cur)
	if err != nil {
		return nil, err
	}
	report.SalesBreakdown = []SalesBucket{}
	index := map[string]int{}
	for _, o := range orders {
		key := bucketKey(period, o.CreatedAt)
		i, ok := index[key]
		if !ok {
			i = len(report.SalesBreakdown)
			index[key] = i
			report.SalesBreakdown = append(report.SalesBreakdown, SalesBucket{Period: key})
		}
		b := &report.SalesBreakdown[i]
		b.OrderCount++
		b.Sales = b.Sales.Add(o.TotalAmount)
		b.Commission = b.Commission.Add(o.CommissionAmount)
	}
	return report, nil
}

// compare mirrors the dashboard rule: growth from zero counts as 100%
func compare(current, previous decimal.Decimal) *SalesComparison {
	c := &SalesComparison{PreviousPeriodSales: previous.Round(2)}
	switch {
	case previous.IsPositive():
		c.PercentageChange = current.Sub(previous).Div(previous).Mul(decimal.NewFromInt(100)).Round(2)
	case current.IsPositive():
		c.PercentageChange = decimal.NewFromInt(100)
	default:
		c.PercentageChange = decimal.Zero
	}
	c.Trend = "up"
	if c.PercentageChange.IsNegative() {
		c.Trend = "down"
	}
	return c
}

func bucketKey(p SalesPeriod, t time.Time) string {
	t = t.UTC()
	switch p {
	case PeriodToday:
		return t.Format("15:00")
	case PeriodAll:
		return t.Format("2006-01")
	default:
		return t.Format("2006-01-02")
	}
}
