package api

import (
	"net/http"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/synergia/erp-api/docs"
	"github.com/synergia/erp-api/internal/api/handler"
	"github.com/synergia/erp-api/internal/api/metrics"
	"github.com/synergia/erp-api/internal/api/middleware"
	"github.com/synergia/erp-api/internal/core/domain"
	"github.com/synergia/erp-api/internal/core/ports"
)

const (
	apiPrefix   = "/api"
	serviceName = "erp-api"
	version     = "1.0.0"
)

// Deps are the collaborators the router wires into handlers.
type Deps struct {
	Auth      ports.AuthService
	Clients   ports.ClientService
	Projects  ports.ProjectService
	Users     ports.UserService
	Dashboard ports.DashboardService

	// Health maps dependency names to the pingers checked by /health/ready.
	Health map[string]handler.Pinger

	// Registry receives the HTTP metrics and serves /metrics. Metrics must be
	// registered on the same registry. A fresh registry is used when nil.
	Registry *prometheus.Registry
	Metrics  *metrics.Metrics

	Logger      zerolog.Logger
	CORSOrigins []string
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Logger)

	reg := d.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Logger))
	e.Use(echomiddleware.Secure())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     d.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: len(d.CORSOrigins) > 0,
	}))
	e.Use(echomiddleware.BodyLimit("1M"))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:                 "erp_http",
		Registerer:                reg,
		DoNotUseRequestPathFor404: true,
		StatusCodeResolver: func(c echo.Context, err error) int {
			if err == nil {
				return c.Response().Status
			}
			return httpStatus(err)
		},
	}))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(d.Auth)
	clientHandler := handler.NewClientHandler(d.Clients, d.Metrics)
	projectHandler := handler.NewProjectHandler(d.Projects, d.Metrics)
	userHandler := handler.NewUserHandler(d.Users, d.Metrics)
	dashboardHandler := handler.NewDashboardHandler(d.Dashboard, d.Metrics)
	healthHandler := handler.NewHealthHandler(d.Health)

	authRequired := middleware.Auth(d.Auth, d.Metrics)
	adminOnly := middleware.RequireRole(domain.RoleAdmin)

	// --- Operational endpoints (no auth required) ---
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: reg}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group(apiPrefix)
	api.GET("", banner)
	api.GET("/health", healthHandler.Liveness)
	api.GET("/health/ready", healthHandler.Readiness)

	// --- Auth routes ---
	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/logout", authHandler.Logout, authRequired)
	api.GET("/auth/me", authHandler.Me, authRequired)

	// --- Any authenticated role ---
	// Per-route middleware keeps unknown paths on the 404 handler.
	api.GET("/dashboard/stats", dashboardHandler.Stats, authRequired)

	api.GET("/clients", clientHandler.List, authRequired)
	api.POST("/clients", clientHandler.Create, authRequired)
	api.GET("/clients/:id", clientHandler.Get, authRequired)
	api.PUT("/clients/:id", clientHandler.Update, authRequired)
	api.DELETE("/clients/:id", clientHandler.Delete, authRequired)

	api.GET("/projects", projectHandler.List, authRequired)
	api.POST("/projects", projectHandler.Create, authRequired)
	api.GET("/projects/:id", projectHandler.Get, authRequired)
	api.PUT("/projects/:id", projectHandler.Update, authRequired)
	api.DELETE("/projects/:id", projectHandler.Delete, authRequired)

	// --- Admin only ---
	api.GET("/users", userHandler.List, authRequired, adminOnly)
	api.POST("/users/invite", userHandler.Invite, authRequired, adminOnly)
	api.PUT("/users/:id", userHandler.Update, authRequired, adminOnly)
	api.DELETE("/users/:id", userHandler.Delete, authRequired, adminOnly)

	return e
}

type bannerResponse struct {
	Service string `json:"service"`
	Version string `json:"version"`
	Docs    string `json:"docs"`
}

func banner(c echo.Context) error {
	return c.JSON(http.StatusOK, handler.Envelope{
		Success: true,
		Data:    bannerResponse{Service: serviceName, Version: version, Docs: "/swagger/index.html"},
		Message: "ERP API is running",
	})
}

// requestLogger writes one zerolog line per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Status >= http.StatusInternalServerError {
				ev = log.Error().Err(v.Error)
			} else if v.Status >= http.StatusBadRequest {
				ev = log.Warn()
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
