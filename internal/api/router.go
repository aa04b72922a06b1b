package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/bcr-rental/car-rental-api/internal/api/handler"
	"github.com/bcr-rental/car-rental-api/internal/api/middleware"
	"github.com/bcr-rental/car-rental-api/internal/core/domain"
	"github.com/bcr-rental/car-rental-api/internal/core/ports"
)

// Deps holds everything the router wires into handlers and middleware.
type Deps struct {
	Auth    ports.AuthService
	Cars    ports.CarService
	Rentals ports.RentalService
	Tokens  ports.TokenVerifier

	Logger zerolog.Logger
	Checks []handler.ReadinessCheck

	RateLimitRPS   float64
	RateLimitBurst int

	// Registerer and Gatherer default to the prometheus globals.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	if d.Registerer == nil {
		d.Registerer = prometheus.DefaultRegisterer
	}
	if d.Gatherer == nil {
		d.Gatherer = prometheus.DefaultGatherer
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(d.Logger))
	e.Use(echomiddleware.CORS())
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "car_rental",
		Registerer: d.Registerer,
	}))

	// --- Dependencies ---
	authHandler := handler.NewAuthHandler(d.Auth)
	carHandler := handler.NewCarHandler(d.Cars)
	rentalHandler := handler.NewRentalHandler(d.Rentals)
	healthHandler := handler.NewHealthHandler(d.Checks...)

	requireAuth := middleware.Auth(d.Tokens)
	adminOnly := middleware.RBAC(domain.RoleAdmin)
	limiter := middleware.RateLimit(middleware.NewRateLimiter(d.RateLimitRPS, d.RateLimitBurst))

	// --- Probes and tooling (no auth required) ---
	e.GET("/", healthHandler.Root)
	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: d.Gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	v1 := e.Group("/v1")

	// --- Auth routes ---
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register, limiter)
	auth.POST("/login", authHandler.Login, limiter)
	auth.GET("/whoami", authHandler.WhoAmI, requireAuth)

	// --- Catalog routes ---
	cars := v1.Group("/cars")
	cars.GET("", carHandler.List)
	cars.GET("/:id", carHandler.Get)
	cars.POST("", carHandler.Create, requireAuth, adminOnly)
	cars.PUT("/:id", carHandler.Update, requireAuth, adminOnly)
	cars.DELETE("/:id", carHandler.Delete, requireAuth, adminOnly)

	// --- Rental routes ---
	cars.POST("/:id/rent", rentalHandler.Rent, requireAuth)
	v1.GET("/rentals", rentalHandler.List, requireAuth)

	return e
}
