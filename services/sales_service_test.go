package services

import (
	"errors"
	"testing"
	"time"

	"near-expiry-api/models"
	"near-expiry-api/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func complete(t *testing.T, f *fixture, order *models.Order) {
	t.Helper()
	rest := order.RestaurantID
	for _, s := range []models.OrderStatus{models.StatusPreparing, models.StatusReady, models.StatusCompleted} {
		if _, err := f.svc.Transition(bg, order.ID, rest, s, order.ClientID); err != nil {
			t.Fatalf("-> %s: %v", s, err)
		}
	}
}

func TestSalesReportToday(t *testing.T) {
	f := newFixture(t)
	client := createUser(t, f.db, models.RoleClient)
	_, rest := createRestaurant(t, f.db)
	bread := createProduct(t, f.db, rest.ID, "Bread", "5.00", 20)
	cake := createProduct(t, f.db, rest.ID, "Cake", "20.00", 5)

	first, err := f.svc.Create(bg, client.ID, pickup(item(bread, 2), item(cake, 1)))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	second, err := f.svc.Create(bg, client.ID, CreateOrderInput{
		Items:           []OrderItemInput{item(bread, 1)},
		OrderType:       models.OrderDelivery,
		DeliveryAddress: "2 Elm",
		DeliveryPhone:   "555",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	// pending orders never count
	if _, err := f.svc.Create(bg, client.ID, pickup(item(cake, 1))); err != nil {
		t.Fatalf("create: %v", err)
	}
	complete(t, f, first)
	complete(t, f, second)

	svc := NewSalesService(repository.NewSalesRepository(f.db))
	report, err := svc.Report(bg, rest.ID, "")
	if err != nil {
		t.Fatalf("report: %v", err)
	}

	if report.Period != PeriodToday {
		t.Errorf("period = %s, want today", report.Period)
	}
	s := report.Summary
	checks := []struct {
		name string
		got  decimal.Decimal
		want string
	}{
		{"total sales", s.TotalSales, "35.00"},
		{"commission", s.TotalCommission, "3.50"},
		{"net revenue", s.NetRevenue, "31.50"},
		{"average", s.AverageOrderValue, "17.50"},
	}
	for _, c := range checks {
		if c.got.StringFixed(2) != c.want {
			t.Errorf("%s = %s, want %s", c.name, c.got.StringFixed(2), c.want)
		}
	}
	if s.TotalOrders != 2 || s.TotalItemsSold != 4 {
		t.Errorf("orders = %d, items = %d, want 2 and 4", s.TotalOrders, s.TotalItemsSold)
	}

	if report.Comparison == nil || report.Comparison.PercentageChange.StringFixed(0) != "100" || report.Comparison.Trend != "up" {
		t.Errorf("comparison = %+v", report.Comparison)
	}
	if len(report.TopProducts) != 2 || report.TopProducts[0].ID != cake.ID {
		t.Errorf("top products = %+v", report.TopProducts)
	}
	if len(report.OrderTypeBreakdown) != 2 {
		t.Errorf("order types = %+v", report.OrderTypeBreakdown)
	}
	if len(report.SalesByCategory) != 1 || report.SalesByCategory[0].ItemsSold != 4 {
		t.Errorf("categories = %+v", report.SalesByCategory)
	}

	var bucketed int64
	for _, b := range report.SalesBreakdown {
		bucketed += b.OrderCount
	}
	if bucketed != 2 {
		t.Errorf("breakdown covers %d orders, want 2", bucketed)
	}
}

func TestSalesReportInvalidPeriod(t *testing.T) {
	svc := NewSalesService(nil)
	if _, err := svc.Report(bg, uuid.Nil, "decade"); !errors.Is(err, ErrValidation) {
		t.Fatalf("err = %v, want validation", err)
	}
}

func TestPeriodRanges(t *testing.T) {
	now := time.Date(2026, 5, 20, 13, 45, 0, 0, time.UTC)
	midnight := time.Date(2026, 5, 20, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		period   SalesPeriod
		wantFrom time.Time
		wantPrev time.Time
	}{
		{PeriodToday, midnight, midnight.AddDate(0, 0, -1)},
		{PeriodWeek, midnight.AddDate(0, 0, -7), midnight.AddDate(0, 0, -14)},
		{PeriodMonth, midnight.AddDate(0, 0, -30), midnight.AddDate(0, 0, -60)},
	}
	for _, tt := range tests {
		cur, prev, err := periodRanges(tt.period, now)
		if err != nil {
			t.Fatalf("%s: %v", tt.period, err)
		}
		if !cur.From.Equal(tt.wantFrom) || !cur.To.IsZero() {
			t.Errorf("%s current = %+v", tt.period, cur)
		}
		if !prev.From.Equal(tt.wantPrev) || !prev.To.Equal(cur.From) {
			t.Errorf("%s previous = %+v", tt.period, prev)
		}
	}

	cur, _, err := periodRanges(PeriodAll, now)
	if err != nil || !cur.From.IsZero() {
		t.Errorf("all = %+v, err %v", cur, err)
	}
}

func TestCompare(t *testing.T) {
	tests := []struct {
		current, previous string
		wantChange        string
		wantTrend         string
	}{
		{"150", "100", "50.00", "up"},
		{"50", "100", "-50.00", "down"},
		{"10", "0", "100.00", "up"},
		{"0", "0", "0.00", "up"},
	}
	for _, tt := range tests {
		c := compare(decimal.RequireFromString(tt.current), decimal.RequireFromString(tt.previous))
		if c.PercentageChange.StringFixed(2) != tt.wantChange || c.Trend != tt.wantTrend {
			t.Errorf("compare(%s, %s) = %s %s, want %s %s", tt.current, tt.previous,
				c.PercentageChange.StringFixed(2), c.Trend, tt.wantChange, tt.wantTrend)
		}
	}
}

func TestBucketKey(t *testing.T) {
	ts := time.Date(2026, 5, 20, 13, 45, 0, 0, time.UTC)
	tests := map[SalesPeriod]string{
		PeriodToday: "13:00",
		PeriodWeek:  "2026-05-20",
		PeriodMonth: "2026-05-20",
		PeriodAll:   "2026-05",
	}
	for p, want := range tests {
		if got := bucketKey(p, ts); got != want {
			t.Errorf("bucketKey(%s) = %q, want %q", p, got, want)
		}
	}
}
