package httptransport

import (
	"expvar"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"meme-hunter/internal/app/relay"
	"meme-hunter/internal/auth"
	"meme-hunter/internal/program"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
)

type RouterOptions struct {
	AdminJWTSecret string
	GameDefaults   program.Options
	// HuntFeed serves the websocket hunt stream when set.
	HuntFeed http.Handler
	// MCP is mounted at /mcp when set.
	MCP http.Handler
}

func NewRouter(svc *relay.Service, opts RouterOptions) *chi.Mux {
	publicHandlers := NewPublicHandlers(svc)
	adminHandlers := NewAdminHandlers(svc, opts.GameDefaults)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)

	r.With(APILogMiddleware()).Get("/healthz", publicHandlers.Health())
	if opts.MCP != nil {
		r.With(APILogMiddleware()).MethodFunc(http.MethodOptions, "/mcp", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		})
		r.With(APILogMiddleware()).Method(http.MethodPost, "/mcp", opts.MCP)
		r.With(APILogMiddleware()).Method(http.MethodGet, "/mcp", opts.MCP)
		r.With(APILogMiddleware()).Method(http.MethodDelete, "/mcp", opts.MCP)
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(APILogMiddleware())
		r.Get("/config", publicHandlers.Config())
		r.Get("/pool", publicHandlers.Pool())
		r.Get("/windows/{slot}", publicHandlers.Window())

		r.Post("/sessions", publicHandlers.AuthorizeSession())
		r.Get("/sessions/{owner}", publicHandlers.Session())
		r.Delete("/sessions/{owner}", publicHandlers.RevokeSession())

		r.Post("/hunt", publicHandlers.Hunt())
		if opts.HuntFeed != nil {
			r.Handle("/hunts/ws", opts.HuntFeed)
		}
		r.Get("/players/{address}/hunts", publicHandlers.HuntHistory())

		r.Post("/rooms", publicHandlers.CreateRoom())
		r.Get("/rooms/{room}", publicHandlers.Room())
		r.Post("/rooms/{room}/settle", publicHandlers.SettleRoom())

		r.Route("/admin", func(r chi.Router) {
			r.Use(OperatorAuthMiddleware(opts.AdminJWTSecret))
			r.Use(BodyCaptureMiddleware(4096))
			r.Post("/pool/deposit", adminHandlers.Deposit())
			r.Post("/rooms/{room}/claim", adminHandlers.ClaimReward())
			r.Get("/ledger", adminHandlers.Ledger())
			r.Get("/debug/vars", expvar.Handler().ServeHTTP)

			r.Group(func(r chi.Router) {
				r.Use(RequireRole(auth.RoleAdmin))
				r.Post("/initialize", adminHandlers.Initialize())
				r.Post("/fund", adminHandlers.Fund())
			})
		})
	})
	return r
}

func LogRoutes(r chi.Router) {
	type routeDef struct {
		Method string
		Path   string
	}
	routes := make([]routeDef, 0, 32)
	err := chi.Walk(r, func(method string, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		routes = append(routes, routeDef{Method: method, Path: route})
		return nil
	})
	if err != nil {
		log.Error().Err(err).Msg("walk routes failed")
		return
	}
	sort.Slice(routes, func(i, j int) bool {
		if routes[i].Path == routes[j].Path {
			return routes[i].Method < routes[j].Method
		}
		return routes[i].Path < routes[j].Path
	})
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Registered routes (%d):\n", len(routes)))
	for _, rt := range routes {
		b.WriteString(fmt.Sprintf("  %-6s %s\n", rt.Method, rt.Path))
	}
	fmt.Print(b.String())
}
