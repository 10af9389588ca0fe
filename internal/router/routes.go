package router

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/dealgrid/directory-api/internal/auth"
	"github.com/dealgrid/directory-api/internal/config"
	"github.com/dealgrid/directory-api/internal/handler"
	middlewarepkg "github.com/dealgrid/directory-api/internal/middleware"
)

// Handlers aggregates HTTP handlers used by the router.
type Handlers struct {
	Auth          *handler.AuthHandler
	Users         *handler.UserAdminHandler
	Yext          *handler.YextHandler
	Directory     *handler.DirectoryHandler
	ListingsAdmin *handler.ListingsAdminHandler
	AdminUpload   *handler.AdminUploadHandler
}

// Register wires all HTTP routes for the API.
func Register(e *echo.Echo, cfg *config.Config, jwtManager *auth.JWTManager, handlers Handlers) {
	e.GET("/healthz", func(c echo.Context) error {
		return handler.Success(c, http.StatusOK, "service healthy", map[string]any{"status": "ok"})
	})

	e.POST("/auth/register", handlers.Auth.Register)
	e.POST("/auth/login", handlers.Auth.Login)

	e.GET("/cities", handlers.Directory.ListCities)
	e.GET("/cities/:slug", handlers.Directory.GetCity)
	e.GET("/pages", handlers.Directory.GetPage)

	// Partner feed surface. Response shapes here are the partner's contract.
	yext := e.Group("/api/yext", middlewarepkg.PartnerRateLimiter(cfg.RateLimitPartner))
	yext.POST("/powerlistings/order", handlers.Yext.CreateOrder)
	yext.PUT("/powerlistings/:listingId", handlers.Yext.Update)
	yext.DELETE("/powerlistings/:listingId", handlers.Yext.Delete)
	yext.POST("/powerlistings/suppress", handlers.Yext.Suppress)
	yext.GET("/details", handlers.Yext.Details)
	yext.GET("/search", handlers.Yext.Search)
	yext.GET("/health_check", handlers.Yext.HealthCheck)

	secured := e.Group("")
	secured.Use(middlewarepkg.JWT(jwtManager))

	admin := secured.Group("/admin", middlewarepkg.RequireRole("admin"))
	admin.GET("/listings", handlers.ListingsAdmin.List)
	admin.POST("/listings", handlers.ListingsAdmin.Create)
	admin.GET("/listings/:id", handlers.ListingsAdmin.Get)
	admin.POST("/upload-csv", handlers.AdminUpload.UploadCSV)
	admin.GET("/users", handlers.Users.List)
	admin.POST("/users", handlers.Users.Create)
	admin.PATCH("/users/:id", handlers.Users.Update)
	admin.DELETE("/users/:id", handlers.Users.Delete)
}
