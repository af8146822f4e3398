package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/medocupa/access-backend/internal/config"
	"github.com/medocupa/access-backend/internal/handler"
	"github.com/medocupa/access-backend/internal/middleware"
	"github.com/medocupa/access-backend/internal/model"
	"github.com/medocupa/access-backend/internal/response"
	"github.com/medocupa/access-backend/internal/service"
	"github.com/rs/zerolog"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth   *handler.AuthHandler
	Menu   *handler.MenuHandler
	Role   *handler.RoleHandler
	Grant  *handler.GrantHandler
	WS     *handler.WSHandler
	System *handler.SystemHandler
}

// Guards carries what the authentication and authorization middlewares need.
type Guards struct {
	Sessions     *service.SessionService
	Authorizer   *service.Authorizer
	Notifier     *service.Notifier
	LoginLimiter *middleware.RateLimiter
	Log          zerolog.Logger
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(guards *Guards, handlers *Handlers, cfg *config.Config) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware(guards.Log))
	router.Use(middleware.Brotli())

	router.GET("/health", handlers.System.Health)

	requireIdentity := middleware.RequireIdentity(guards.Sessions, guards.Log)
	access := func(resource string, level model.Level) gin.HandlerFunc {
		return middleware.RequireAccess(guards.Authorizer, guards.Notifier, resource, level)
	}

	// ─── 1. Auth Group ─────────────────────────────────────────────────
	auth := router.Group("/api/v1/auth")
	{
		if guards.LoginLimiter != nil {
			auth.POST("/login", guards.LoginLimiter.Middleware(), handlers.Auth.Login)
		} else {
			auth.POST("/login", handlers.Auth.Login)
		}

		auth.POST("/logout", requireIdentity, handlers.Auth.Logout)
		auth.GET("/me", requireIdentity, middleware.NoStore(), handlers.Auth.Me)
		auth.POST("/refresh", requireIdentity, handlers.Auth.Refresh)
	}

	// ─── 2. Menu & Access (any signed-in identity) ─────────────────────
	api := router.Group("/api/v1")
	{
		api.GET("/menu/catalog", middleware.CacheControl(300), handlers.Menu.Catalog)
		api.GET("/menu", requireIdentity, middleware.NoStore(), handlers.Menu.Menu)
		api.GET("/access/:resource", requireIdentity, middleware.NoStore(), handlers.Menu.CheckAccess)

		api.GET("/roles", requireIdentity, access(model.ResourceUsers, model.LevelRead), handlers.Role.ListRoles)
		api.GET("/roles/:role", requireIdentity, access(model.ResourceUsers, model.LevelRead), handlers.Role.GetRole)
	}

	// ─── 3. WebSocket Group (token in query) ───────────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(requireIdentity)
	{
		ws.GET("/events", handlers.WS.Events)
	}

	// ─── 4. Admin Group (identity + resource checks) ───────────────────
	adminAPI := router.Group("/api/v1/admin")
	adminAPI.Use(requireIdentity, middleware.NoStore())
	{
		adminAPI.GET("/users", access(model.ResourceUsers, model.LevelRead), handlers.Grant.ListUsers)
		adminAPI.GET("/users/:id/grants", access(model.ResourceUsers, model.LevelRead), handlers.Grant.ListGrants)
		adminAPI.POST("/users/:id/grants", access(model.ResourceUsers, model.LevelFull), handlers.Grant.CreateGrant)
		adminAPI.DELETE("/users/:id/grants/:grant_id", access(model.ResourceUsers, model.LevelFull), handlers.Grant.RevokeGrant)

		adminAPI.GET("/system/metrics",
			middleware.RequireAnyAccess(guards.Authorizer, model.LevelRead, model.ResourceSettings, model.ResourceReports),
			handlers.System.Metrics)
	}

	return router
}
