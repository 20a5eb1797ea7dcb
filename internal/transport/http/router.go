// Package http wires the REST API, the websocket endpoint and the operational
// endpoints into one chi router.
package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"flashstore/internal/cart"
	"flashstore/internal/checkout"
	"flashstore/internal/config"
	"flashstore/internal/license"
	"flashstore/internal/middleware"
	"flashstore/internal/portal"
	"flashstore/internal/websocket"
)

// RouterDeps carries everything the router needs.
type RouterDeps struct {
	Config   *config.Config
	Logger   *slog.Logger
	Registry *license.Registry
	Cart     *cart.Manager
	Checkout *checkout.Session
	Portal   *portal.Manager
	Hub      *websocket.Hub
}

// NewRouter builds the full HTTP surface.
func NewRouter(deps RouterDeps) chi.Router {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.RateLimit(deps.Config.Security.RateLimit))

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		render.JSON(w, req, map[string]any{
			"status":  "ok",
			"clients": deps.Hub.ClientCount(),
		})
	})
	r.Handle("/metrics", promhttp.Handler())

	upgrader := websocket.Upgrader(
		deps.Config.WebSocket.ReadBufferSize,
		deps.Config.WebSocket.WriteBufferSize)
	r.Get("/ws", func(w http.ResponseWriter, req *http.Request) {
		websocket.ServeWS(deps.Hub, w, req, upgrader, deps.Logger)
	})

	r.Route("/api", func(r chi.Router) {
		r.Mount("/products", NewProductHandler(deps.Logger).Routes())
		r.Mount("/cart", NewCartHandler(deps.Cart, deps.Hub, deps.Logger).Routes())
		r.Mount("/checkout", NewCheckoutHandler(deps.Checkout, deps.Logger).Routes())
		r.Mount("/portal", NewPortalHandler(deps.Portal, deps.Logger).Routes())
		r.Mount("/vault", NewVaultHandler(deps.Registry, deps.Logger).Routes())
	})

	return r
}
