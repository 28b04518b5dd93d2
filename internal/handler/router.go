package handler

import (
	"net/http"
	"slices"
	"time"

	"zayana-be/internal/cart"
	"zayana-be/internal/category"
	"zayana-be/internal/idempotency"
	"zayana-be/internal/logger"
	"zayana-be/internal/metrics"
	"zayana-be/internal/middleware"
	"zayana-be/internal/order"
	"zayana-be/internal/product"
	"zayana-be/internal/user"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Deps carries everything the router wires into handlers.
type Deps struct {
	Users      user.Service
	Categories category.Service
	Products   product.Service
	Carts      cart.Service
	Orders     order.Service

	Tokens      middleware.TokenParser
	Limiter     *middleware.Limiter
	Idempotency idempotency.Store
	Metrics     *metrics.Registry
	DB          Pinger

	CORSOrigins    []string
	TokenTTL       time.Duration
	IdempotencyTTL time.Duration
	SecureCookies  bool
}

func NewRouter(d Deps) *gin.Engine {
	SetupValidator()

	r := gin.New()
	r.Use(
		logger.RequestID(),
		logger.Access(),
		logger.Recovery(),
		cors.New(corsConfig(d.CORSOrigins)),
		middleware.OptionalAuth(d.Tokens),
	)
	if d.Limiter != nil {
		r.Use(d.Limiter.Middleware())
	}

	r.NoRoute(func(c *gin.Context) {
		(&BaseHandler{}).Error(c, http.StatusNotFound, ErrCodeNotFound, "route not found", nil)
	})

	sys := NewSystemHandler(d.DB)
	r.GET("/health", sys.Health)
	r.GET("/metrics", gin.WrapH(d.Metrics.Handler()))

	api := r.Group("/api")
	requireAuth := middleware.RequireAuth(d.Tokens)

	authH := NewAuthHandler(d.Users, d.TokenTTL, d.SecureCookies)
	authGroup := api.Group("/auth")
	authGroup.POST("/register", authH.Register)
	authGroup.POST("/login", authH.Login)

	userH := NewUserHandler(d.Users)
	users := api.Group("/users", requireAuth)
	users.GET("/:id", userH.Get)
	users.PUT("/:id", userH.Update)
	users.DELETE("/:id", userH.Delete)

	catH := NewCategoryHandler(d.Categories)
	api.GET("/categories", catH.List)
	api.GET("/categories/:id", catH.Get)
	api.POST("/categories", requireAuth, catH.Create)
	api.PUT("/categories/:id", requireAuth, catH.Update)
	api.DELETE("/categories/:id", requireAuth, catH.Delete)

	prodH := NewProductHandler(d.Products)
	api.GET("/products", prodH.List)
	api.GET("/products/:id", prodH.Get)
	api.POST("/products", requireAuth, prodH.Create)
	api.PUT("/products/:id", requireAuth, prodH.Update)
	api.DELETE("/products/:id", requireAuth, prodH.Delete)

	cartH := NewCartHandler(d.Carts)
	carts := api.Group("/cart", requireAuth)
	carts.GET("", cartH.Get)
	carts.POST("", cartH.Add)
	carts.DELETE("", cartH.Clear)
	carts.DELETE("/items/:productId", cartH.Remove)

	store := d.Idempotency
	if store == nil {
		store = idempotency.NoopStore{}
	}
	orderH := NewOrderHandler(d.Orders)
	orders := api.Group("/orders", requireAuth)
	orders.POST("", idempotency.Middleware(store, d.IdempotencyTTL, d.Metrics), orderH.Create)
	orders.GET("", orderH.List)
	orders.GET("/:id", orderH.Get)
	orders.PATCH("/:id/status", orderH.UpdateStatus)

	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", logger.RequestIDHeader, idempotency.HeaderKey},
		ExposeHeaders:    []string{logger.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	switch {
	case len(origins) == 0:
		cfg.AllowOrigins = []string{"http://localhost:3000"}
	case slices.Contains(origins, "*"):
		// Browsers reject credentialed wildcard responses.
		cfg.AllowAllOrigins = true
		cfg.AllowCredentials = false
	default:
		cfg.AllowOrigins = origins
	}
	return cfg
}
