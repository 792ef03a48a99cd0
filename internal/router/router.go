package router // package router defines how HTTP routes are registered for the API

import (
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/event-ticketing/internal/handler"
	"github.com/iliyamo/event-ticketing/internal/middleware"
	"github.com/iliyamo/event-ticketing/internal/model"
)

// Handlers bundles everything the routes dispatch to.
type Handlers struct {
	Auth     *handler.AuthHandler
	Catalog  *handler.CatalogHandler
	Layout   *handler.LayoutHandler
	Tickets  *handler.TicketHandler
	Activity *handler.ActivityHandler
	Public   *handler.PublicHandler
	DB       handler.Pinger
}

// Options carries the cross-cutting middleware configuration.
type Options struct {
	JWTSecret      string
	RequestTimeout time.Duration
	RateLimit      echo.MiddlewareFunc       // nil disables rate limiting
	Cache          *middleware.ResponseCache // nil disables response caching
}

// New builds the Echo instance with global middleware and every route.
func New(h Handlers, opt Options) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = handler.HTTPErrorHandler

	e.Use(echomw.Recover())
	e.Use(middleware.CorrelationID())
	e.Use(middleware.RequestLogger())
	if opt.RequestTimeout > 0 {
		e.Use(echomw.ContextTimeout(opt.RequestTimeout))
	}

	RegisterRoutes(e, h.DB)
	RegisterAuth(e, h.Auth, opt)
	RegisterCatalog(e, h.Catalog, opt)
	RegisterLayout(e, h.Layout, h.Activity, opt)
	RegisterTickets(e, h.Tickets, opt)
	if h.Public != nil {
		RegisterPublic(e, h.Public, opt)
	}
	return e
}

// protected returns the middleware chain for an authenticated /v1 group:
// JWT first so the rate limiter can key on the user.
func protected(opt Options, roles ...string) []echo.MiddlewareFunc {
	chain := []echo.MiddlewareFunc{middleware.JWTAuth(opt.JWTSecret)}
	if opt.RateLimit != nil {
		chain = append(chain, opt.RateLimit)
	}
	if len(roles) == 0 {
		roles = []string{model.RoleAdmin, model.RoleOrganizer, model.RoleAttendee}
	}
	return append(chain, middleware.RequireRole(roles...))
}

// RegisterRoutes registers routes that do not require authentication: the
// liveness and readiness checks.
func RegisterRoutes(e *echo.Echo, db handler.Pinger) {
	e.GET("/healthz", handler.Health)
	if db != nil {
		e.GET("/readyz", handler.Ready(db))
	}
}

// RegisterAuth registers all authentication-related routes.  Unauthenticated
// operations live under /v1/auth, /v1/me requires an access token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, opt Options) {
	var mw []echo.MiddlewareFunc
	if opt.RateLimit != nil {
		mw = append(mw, opt.RateLimit)
	}
	g := e.Group("/v1/auth", mw...)
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	// Rotates the refresh token.
	g.POST("/refresh", a.Refresh)
	// Issues a new access token and keeps the refresh token.
	g.POST("/refresh-access", a.RefreshAccess)
	// Logout accepts a refresh token or a bearer, so it is not behind JWTAuth.
	g.POST("/logout", a.Logout)

	auth := e.Group("/v1", protected(opt)...)
	auth.GET("/me", a.Me)
}

// RegisterPublic registers unauthenticated browse endpoints.  They are rate
// limited but carry no JWT or role middleware.
func RegisterPublic(e *echo.Echo, p *handler.PublicHandler, opt Options) {
	var mw []echo.MiddlewareFunc
	if opt.RateLimit != nil {
		mw = append(mw, opt.RateLimit)
	}
	g := e.Group("/v1/public", mw...)
	g.GET("/eventos", p.SearchEvents)
}
