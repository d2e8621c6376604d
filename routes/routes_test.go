package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"near-expiry-api/config"
	"near-expiry-api/metrics"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const (
	adminEmail = "admin@example.com"
	password   = "Sup3r$ecret"
)

type captureMailer struct {
	codes map[string]string
}

func (m *captureMailer) SendVerificationCode(ctx context.Context, to, code string) error {
	m.codes[to] = code
	return nil
}

func (m *captureMailer) SendPasswordReset(ctx context.Context, to, link string) error {
	return nil
}

type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type testServer struct {
	t      *testing.T
	engine *gin.Engine
	mailer *captureMailer
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	cfg := &config.Config{
		ServiceName: "near-expiry-test",
		FrontendURL: "http://localhost:5173",
		DB:          config.DBConfig{Driver: "sqlite", Source: "file::memory:", MaxOpenConns: 1, LogLevel: logger.Silent},
		JWT:         config.JWTConfig{Secret: "test-secret", TTL: time.Hour},
		CORS:        config.CORSConfig{AllowOrigins: []string{"*"}},
		Admin:       config.AdminConfig{Email: adminEmail, Password: password},
	}
	db, err := config.OpenDatabase(cfg.DB)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	if err := config.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := config.Seed(db, cfg.Admin, zap.NewNop()); err != nil {
		t.Fatalf("seed: %v", err)
	}

	mailer := &captureMailer{codes: map[string]string{}}
	engine := NewEngine(Deps{
		Config:  cfg,
		DB:      db,
		Log:     zap.NewNop(),
		Metrics: metrics.New("test", prometheus.NewRegistry()),
		Mailer:  mailer,
	})
	return &testServer{t: t, engine: engine, mailer: mailer}
}

func (s *testServer) do(method, path, token string, body any) (int, envelope) {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			s.t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	var env envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
			s.t.Fatalf("%s %s: decode %q: %v", method, path, w.Body.String(), err)
		}
	}
	return w.Code, env
}

func (s *testServer) expect(wantCode int, method, path, token string, body any) envelope {
	s.t.Helper()
	code, env := s.do(method, path, token, body)
	if code != wantCode {
		s.t.Fatalf("%s %s = %d (%s), want %d", method, path, code, env.Message, wantCode)
	}
	return env
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		t.Fatalf("decode %s: %v", raw, err)
	}
	return v
}

// signUp registers, verifies and logs in, returning a bearer token
func (s *testServer) signUp(email, role string) string {
	s.t.Helper()
	s.expect(http.StatusCreated, "POST", "/api/auth/register", "", gin.H{
		"email": email, "password": password, "role": role, "fullName": "Test " + role,
	})
	s.expect(http.StatusOK, "POST", "/api/auth/verify-email", "", gin.H{
		"email": email, "otpCode": s.mailer.codes[email],
	})
	return s.login(email)
}

func (s *testServer) login(email string) string {
	s.t.Helper()
	env := s.expect(http.StatusOK, "POST", "/api/auth/login", "", gin.H{"email": email, "password": password})
	return decode[struct {
		Token string `json:"token"`
	}](s.t, env.Data).Token
}

type orderBody struct {
	ID               string          `json:"id"`
	Status           string          `json:"status"`
	TotalAmount      decimal.Decimal `json:"totalAmount"`
	CommissionAmount decimal.Decimal `json:"commissionAmount"`
	RestaurantName   string          `json:"restaurantName"`
	Items            []struct {
		ProductName string `json:"productName"`
		Quantity    int    `json:"quantity"`
	} `json:"items"`
}

func TestOrderLifecycleOverHTTP(t *testing.T) {
	s := newTestServer(t)
	restToken := s.signUp("bakery@example.com", "restaurant")
	clientToken := s.signUp("ana@example.com", "client")

	s.expect(http.StatusNotFound, "GET", "/api/restaurants/my-profile", restToken, nil)
	s.expect(http.StatusOK, "POST", "/api/restaurants/profile", restToken, gin.H{
		"name": "Corner Bakery", "address": "1 Main St", "phone": "+1 555 0100",
	})

	tomorrow := time.Now().UTC().AddDate(0, 0, 1).Format("2006-01-02")
	newProduct := func(name string, price string, qty int) string {
		env := s.expect(http.StatusCreated, "POST", "/api/products", restToken, gin.H{
			"name": name, "category_id": 1, "price": json.Number(price), "quantity": qty, "expiry_date": tomorrow,
		})
		return decode[struct {
			Product struct {
				ID string `json:"id"`
			} `json:"product"`
		}](t, env.Data).Product.ID
	}
	bread := newProduct("Bread", "5.00", 10)
	milk := newProduct("Milk", "3.50", 1)

	// clients cannot list products, restaurants cannot order
	s.expect(http.StatusForbidden, "POST", "/api/products", clientToken, gin.H{})
	s.expect(http.StatusForbidden, "POST", "/api/orders", restToken, gin.H{})

	s.expect(http.StatusBadRequest, "POST", "/api/orders", clientToken, gin.H{"items": []gin.H{}, "orderType": "pickup"})
	s.expect(http.StatusBadRequest, "POST", "/api/orders", clientToken, gin.H{
		"orderType": "pickup",
		"items":     []gin.H{{"productId": milk, "quantity": 2}},
	})

	env := s.expect(http.StatusCreated, "POST", "/api/orders", clientToken, gin.H{
		"orderType": "pickup",
		"items": []gin.H{
			{"productId": bread, "quantity": 2},
			{"productId": milk, "quantity": 1},
		},
	})
	order := decode[struct {
		Order orderBody `json:"order"`
	}](t, env.Data).Order
	if order.TotalAmount.StringFixed(2) != "13.50" || order.Status != "pending" || !order.CommissionAmount.IsZero() {
		t.Fatalf("order = %+v", order)
	}
	if order.RestaurantName != "Corner Bakery" || len(order.Items) != 2 || order.Items[0].ProductName == "" {
		t.Errorf("order view not hydrated: %+v", order)
	}

	// milk is sold out now
	browse := s.expect(http.StatusOK, "GET", "/api/client/products?search=milk", "", nil)
	if got := decode[struct {
		Products []json.RawMessage `json:"products"`
	}](t, browse.Data).Products; len(got) != 0 {
		t.Errorf("sold out product still browsable: %s", browse.Data)
	}

	statusPath := "/api/orders/" + order.ID + "/status"
	s.expect(http.StatusForbidden, "PATCH", statusPath, clientToken, gin.H{"status": "preparing"})
	s.expect(http.StatusBadRequest, "PATCH", statusPath, restToken, gin.H{})
	s.expect(http.StatusBadRequest, "PATCH", statusPath, restToken, gin.H{"status": "completed"})
	for _, st := range []string{"preparing", "ready", "completed"} {
		s.expect(http.StatusOK, "PATCH", statusPath, restToken, gin.H{"status": st})
	}
	s.expect(http.StatusBadRequest, "PATCH", statusPath, restToken, gin.H{"status": "completed"})

	env = s.expect(http.StatusOK, "GET", "/api/orders/"+order.ID, clientToken, nil)
	done := decode[struct {
		Order orderBody `json:"order"`
	}](t, env.Data).Order
	if done.Status != "completed" || done.CommissionAmount.StringFixed(2) != "1.35" {
		t.Errorf("completed order = %+v", done)
	}

	env = s.expect(http.StatusOK, "GET", "/api/orders/restaurant/my-orders?status=completed", restToken, nil)
	if got := decode[struct {
		Orders []orderBody `json:"orders"`
	}](t, env.Data).Orders; len(got) != 1 {
		t.Errorf("restaurant orders = %d, want 1", len(got))
	}

	env = s.expect(http.StatusOK, "GET", "/api/sales/restaurant?period=today", restToken, nil)
	sales := decode[struct {
		Summary struct {
			TotalSales  decimal.Decimal `json:"totalSales"`
			TotalOrders int64           `json:"totalOrders"`
		} `json:"summary"`
	}](t, env.Data)
	if sales.Summary.TotalSales.StringFixed(2) != "13.50" || sales.Summary.TotalOrders != 1 {
		t.Errorf("sales = %+v", sales.Summary)
	}

	s.expect(http.StatusNotFound, "GET", "/api/orders/not-a-uuid", clientToken, nil)
}

func TestAuthGuards(t *testing.T) {
	s := newTestServer(t)

	s.expect(http.StatusUnauthorized, "GET", "/api/auth/me", "", nil)
	s.expect(http.StatusUnauthorized, "GET", "/api/auth/me", "garbage", nil)

	s.expect(http.StatusCreated, "POST", "/api/auth/register", "", gin.H{
		"email": "new@example.com", "password": password, "role": "client",
	})
	code, env := s.do("POST", "/api/auth/login", "", gin.H{"email": "new@example.com", "password": password})
	if code != http.StatusForbidden || !strings.Contains(string(env.Data), "requiresVerification") {
		t.Errorf("unverified login = %d %s", code, env.Data)
	}
	s.expect(http.StatusConflict, "POST", "/api/auth/register", "", gin.H{
		"email": "new@example.com", "password": password, "role": "client",
	})
	s.expect(http.StatusUnauthorized, "POST", "/api/auth/login", "", gin.H{"email": "new@example.com", "password": "Wr0ng$pass"})
	s.expect(http.StatusBadRequest, "POST", "/api/auth/login", "", "not an object")
}

func TestAdminRoutes(t *testing.T) {
	s := newTestServer(t)
	adminToken := s.login(adminEmail)
	clientToken := s.signUp("c@example.com", "client")

	s.expect(http.StatusForbidden, "GET", "/api/admin/stats", clientToken, nil)

	env := s.expect(http.StatusOK, "GET", "/api/admin/commission", adminToken, nil)
	pct := decode[struct {
		CommissionPercentage decimal.Decimal `json:"commissionPercentage"`
	}](t, env.Data).CommissionPercentage
	if pct.String() != "10" {
		t.Errorf("commission = %s, want 10", pct)
	}
	s.expect(http.StatusBadRequest, "PUT", "/api/admin/commission", adminToken, gin.H{"commissionPercentage": 150})
	s.expect(http.StatusOK, "PUT", "/api/admin/commission", adminToken, gin.H{"commissionPercentage": 12.5})

	env = s.expect(http.StatusOK, "GET", "/api/admin/users?role=client", adminToken, nil)
	users := decode[struct {
		Users []struct {
			ID string `json:"id"`
		} `json:"users"`
	}](t, env.Data).Users
	if len(users) != 1 {
		t.Fatalf("clients = %d, want 1", len(users))
	}

	s.expect(http.StatusOK, "PATCH", "/api/admin/users/"+users[0].ID+"/toggle-status", adminToken, nil)
	// deactivation applies to tokens already issued
	s.expect(http.StatusUnauthorized, "GET", "/api/auth/me", clientToken, nil)

	s.expect(http.StatusBadRequest, "GET", "/api/admin/users?is_active=maybe", adminToken, nil)
	s.expect(http.StatusOK, "GET", "/api/admin/stats", adminToken, nil)
}

func TestPublicEndpoints(t *testing.T) {
	s := newTestServer(t)

	s.expect(http.StatusOK, "GET", "/health", "", nil)
	s.expect(http.StatusOK, "GET", "/api/categories", "", nil)
	s.expect(http.StatusOK, "GET", "/api/client/restaurants", "", nil)
	s.expect(http.StatusBadRequest, "GET", "/api/client/products?minPrice=cheap", "", nil)

	env := s.expect(http.StatusOK, "GET", "/api/state-machine", "", nil)
	sm := decode[struct {
		Transitions []struct {
			From string `json:"from"`
			To   string `json:"to"`
		} `json:"transitions"`
	}](t, env.Data)
	if len(sm.Transitions) != 6 {
		t.Errorf("transitions = %d, want 6", len(sm.Transitions))
	}

	env = s.expect(http.StatusNotFound, "GET", "/api/nope", "", nil)
	if env.Status != "error" || env.Message != "Route not found" {
		t.Errorf("no route = %+v", env)
	}

	req := httptest.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "test_http_requests_total") {
		t.Errorf("metrics = %d, missing request counter", w.Code)
	}
}
