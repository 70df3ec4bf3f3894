package handlers

import (
	"net/http"

	"photo-capture-backend/internal/middleware"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// RouterConfig holds router settings
type RouterConfig struct {
	AllowedOrigins []string
	StaticDir      string
}

// NewRouter builds the HTTP routes
func NewRouter(
	cfg RouterConfig,
	photoHandler *PhotoHandler,
	wsHandler *WebSocketHandler,
	healthHandler *HealthHandler,
) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.CORS(cfg.AllowedOrigins))

	// Routes
	r.Get("/healthz", healthHandler.HealthStatus)
	r.Post("/capture", photoHandler.CapturePhoto)
	r.Route("/photos", func(r chi.Router) {
		r.Get("/", photoHandler.ListPhotos)
		r.Delete("/", photoHandler.DeletePhotos)
		r.Get("/{filename}", photoHandler.GetPhoto)
	})

	// WebSocket route
	r.Get("/ws", wsHandler.HandleWebSocket)

	if cfg.StaticDir != "" {
		r.Handle("/*", http.FileServer(http.Dir(cfg.StaticDir)))
	}

	return r
}
