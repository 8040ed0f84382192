package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/FelixHertweck/seatReservation-sub000/internal/handler"    // handlers implementing the endpoints
	"github.com/FelixHertweck/seatReservation-sub000/internal/middleware" // JWT authentication and role enforcement
)

// RegisterRoutes registers all routes on the provided Echo instance.
// The health check is open; the supervisor live-view stream requires
// a valid token carrying the ADMIN or SUPERVISOR role.
func RegisterRoutes(e *echo.Echo, lv *handler.LiveViewHandler, jwtSecret string) {
	// Health endpoint for load balancers and monitoring.
	e.GET("/healthz", handler.Health)

	// Supervisor endpoints live under /api/supervisor.  JWTAuth
	// accepts the token from the Authorization header or the ?token=
	// query parameter, the latter for browser WebSocket clients.
	g := e.Group("/api/supervisor")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole("ADMIN", "SUPERVISOR"))
	g.GET("/liveview/:event", lv.Stream)
}
