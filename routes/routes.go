package routes

import (
	"net/http"

	"near-expiry-api/config"
	"near-expiry-api/handlers"
	"near-expiry-api/metrics"
	"near-expiry-api/middleware"
	"near-expiry-api/models"
	"near-expiry-api/pkg/jwtutil"
	"near-expiry-api/pkg/resp"
	"near-expiry-api/repository"
	"near-expiry-api/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Deps is everything the HTTP stack is built from
type Deps struct {
	Config  *config.Config
	DB      *gorm.DB
	Log     *zap.Logger
	Metrics *metrics.Metrics
	Mailer  services.Mailer
}

// NewEngine wires repositories, services and handlers into a gin engine
// with recovery, CORS, request logging and metrics applied.
func NewEngine(d Deps) *gin.Engine {
	users := repository.NewUserRepository(d.DB)
	restaurants := repository.NewRestaurantRepository(d.DB)
	products := repository.NewProductRepository(d.DB)
	categories := repository.NewCategoryRepository(d.DB)
	orders := repository.NewOrderRepository(d.DB)
	settings := repository.NewSettingRepository(d.DB)
	tokens := repository.NewTokenRepository(d.DB)
	sales := repository.NewSalesRepository(d.DB)

	mailer := d.Mailer
	if mailer == nil {
		mailer = services.NewLogMailer(d.Log)
	}

	authSvc := services.NewAuthService(d.DB, users, restaurants, tokens,
		jwtutil.NewManager(d.Config.JWT.Secret, d.Config.JWT.TTL), mailer, d.Config.FrontendURL, d.Log)
	restaurantSvc := services.NewRestaurantService(d.DB, restaurants, d.Log)
	orderSvc := services.NewOrderService(d.DB, orders, products, settings, d.Metrics, d.Log)

	r := gin.New()
	r.Use(
		gin.Recovery(),
		middleware.RequestLogger(d.Log.Named("http")),
		middleware.Metrics(d.Metrics),
		middleware.CORS(d.Config.CORS.AllowOrigins),
	)

	SetupRoutes(r, authSvc, Handlers{
		Auth:        handlers.NewAuthHandler(authSvc),
		Restaurants: handlers.NewRestaurantHandler(restaurantSvc),
		Products:    handlers.NewProductHandler(services.NewProductService(products, restaurants, categories, d.Log)),
		Catalog:     handlers.NewCatalogHandler(services.NewCatalogService(categories, products)),
		Orders:      handlers.NewOrderHandler(orderSvc, restaurantSvc),
		Sales:       handlers.NewSalesHandler(services.NewSalesService(sales), restaurantSvc),
		Admin:       handlers.NewAdminHandler(services.NewAdminService(users, restaurants, orders, sales, settings, d.Log)),
	})

	r.GET("/metrics", gin.WrapH(d.Metrics.Handler()))
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": d.Config.ServiceName,
		})
	})
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "Near-expiry food marketplace API",
			"docs":    "/api/state-machine",
			"health":  "/health",
			"roles":   []models.UserRole{models.RoleClient, models.RoleRestaurant, models.RoleAdmin},
		})
	})
	r.NoRoute(func(c *gin.Context) {
		resp.NotFound(c, "Route not found")
	})
	return r
}

type Handlers struct {
	Auth        *handlers.AuthHandler
	Restaurants *handlers.RestaurantHandler
	Products    *handlers.ProductHandler
	Catalog     *handlers.CatalogHandler
	Orders      *handlers.OrderHandler
	Sales       *handlers.SalesHandler
	Admin       *handlers.AdminHandler
}

func SetupRoutes(r *gin.Engine, auth middleware.Authenticator, h Handlers) {
	authed := middleware.AuthRequired(auth)
	client := middleware.RoleRequired(models.RoleClient)
	restaurant := middleware.RoleRequired(models.RoleRestaurant)

	api := r.Group("/api")

	// ── Auth ───────────────────────────────────────────────────────
	a := api.Group("/auth")
	{
		a.POST("/register", h.Auth.Register)
		a.POST("/verify-email", h.Auth.VerifyEmail)
		a.POST("/resend-verification", h.Auth.ResendVerification)
		a.POST("/login", h.Auth.Login)
		a.POST("/forgot-password", h.Auth.ForgotPassword)
		a.POST("/reset-password", h.Auth.ResetPassword)
		a.GET("/me", authed, h.Auth.Me)
	}

	// ── Public routes ──────────────────────────────────────────────
	{
		api.GET("/categories", h.Catalog.Categories)
		api.GET("/client/products", h.Catalog.Browse)
		api.GET("/client/restaurants", h.Restaurants.List)
		api.GET("/state-machine", handlers.StateMachine)
	}

	// ── Restaurant profile ─────────────────────────────────────────
	rest := api.Group("/restaurants")
	{
		rest.POST("/profile", authed, restaurant, h.Restaurants.UpsertProfile)
		rest.GET("/my-profile", authed, restaurant, h.Restaurants.MyProfile)
		rest.PATCH("/toggle-open", authed, restaurant, h.Restaurants.ToggleOpen)
		rest.GET("/:id", h.Restaurants.Get)
	}

	// ── Products ───────────────────────────────────────────────────
	products := api.Group("/products")
	{
		products.POST("", authed, restaurant, h.Products.Create)
		products.GET("/my-products", authed, restaurant, h.Products.ListMine)
		products.PUT("/:id", authed, restaurant, h.Products.Update)
		products.DELETE("/:id", authed, restaurant, h.Products.Delete)
		products.GET("/:id", h.Products.Get)
	}

	// ── Orders ─────────────────────────────────────────────────────
	orders := api.Group("/orders", authed)
	{
		orders.POST("", client, h.Orders.Create)
		orders.GET("/client/my-orders", client, h.Orders.MyOrders)
		orders.GET("/restaurant/my-orders", restaurant, h.Orders.RestaurantOrders)
		orders.GET("/:id", client, h.Orders.Get)
		orders.PATCH("/:id/status", restaurant, h.Orders.UpdateStatus)
	}

	// ── Sales ──────────────────────────────────────────────────────
	api.GET("/sales/restaurant", authed, restaurant, h.Sales.Restaurant)

	// ── Admin routes ───────────────────────────────────────────────
	admin := api.Group("/admin", authed, middleware.RoleRequired(models.RoleAdmin))
	{
		admin.GET("/users", h.Admin.Users)
		admin.PATCH("/users/:id/toggle-status", h.Admin.ToggleUserStatus)
		admin.GET("/stats", h.Admin.Stats)
		admin.GET("/commission", h.Admin.Commission)
		admin.PUT("/commission", h.Admin.SetCommission)
	}
}
