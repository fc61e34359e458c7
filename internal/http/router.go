package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

// DefaultRequestTimeout applies when no positive timeout is configured
const DefaultRequestTimeout = 30 * time.Second

func requestTimeout(d time.Duration) time.Duration {
	if d <= 0 {
		return DefaultRequestTimeout
	}
	return d
}

type RouterConfig struct {
	ServiceName    string
	RequestTimeout time.Duration
	Logger         *zap.Logger
	Menu           *MenuHandler
	Basket         *BasketHandler
}

// NewRouter builds the REST API, instrumented with otelhttp.
func NewRouter(cfg RouterConfig) http.Handler {
	l := cfg.Logger
	if l == nil {
		l = zap.NewNop()
	}

	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(l))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout(cfg.RequestTimeout)))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, l, http.StatusOK, map[string]string{"status": "ok"})
	})

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/menu", func(r chi.Router) {
			r.Get("/", cfg.Menu.List)
			r.Get("/popular", cfg.Menu.Popular)
			r.Get("/extras", cfg.Menu.Extras)
			r.Get("/{item_id}", cfg.Menu.Get)
		})
		r.Route("/basket", func(r chi.Router) {
			r.Use(SessionMiddleware(l))
			r.Get("/", cfg.Basket.Get)
			r.Delete("/", cfg.Basket.Clear)
			r.Post("/items", cfg.Basket.AddItem)
			r.Delete("/items/{line_item_id}", cfg.Basket.RemoveItem)
			r.Post("/checkout", cfg.Basket.Checkout)
		})
	})

	return otelhttp.NewHandler(r, cfg.ServiceName)
}
