package rest

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"github.com/dmitrijs2005/daleavatar/internal/logging"
)

// MaxBodyBytes caps request bodies; base64 video uploads are the largest.
const MaxBodyBytes = 50 << 20

// RouterConfig holds the HTTP-level knobs of NewRouter.
type RouterConfig struct {
	CORSAllowedOrigins []string

	// AuthRateLimit requests per AuthRateWindow are allowed per client IP
	// on register and login. Zero disables the limit.
	AuthRateLimit  int
	AuthRateWindow time.Duration
}

func DefaultRouterConfig() RouterConfig {
	return RouterConfig{
		CORSAllowedOrigins: []string{"*"},
		AuthRateLimit:      20,
		AuthRateWindow:     time.Minute,
	}
}

func NewRouter(h *Handler, tokens TokenVerifier, cfg RouterConfig, logger logging.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDWithLogging())
	r.Use(chimiddleware.RealIP)
	r.Use(RequestLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization", chimiddleware.RequestIDHeader},
		ExposedHeaders: []string{chimiddleware.RequestIDHeader},
		MaxAge:         86400,
	}))
	r.Use(chimiddleware.RequestSize(MaxBodyBytes))

	r.Get("/health", h.Health)

	gate := RequireAuth(tokens)

	r.Route("/api/auth", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(rateLimit(cfg))
			r.Post("/register", h.Register)
			r.Post("/login", h.Login)
		})

		r.Group(func(r chi.Router) {
			r.Use(gate)
			r.Get("/me", h.Me)
			r.Put("/profile", h.UpdateProfile)
			r.Post("/change-password", h.ChangePassword)
		})
	})

	r.Route("/api/stream", func(r chi.Router) {
		r.Use(gate)
		r.Post("/session-token", h.SessionToken)
		r.Post("/new-session", h.NewSession)
		r.Post("/start", h.StartSession)
		r.Post("/keepalive", h.KeepAlive)
		r.Post("/speak", h.Speak)
	})

	r.Route("/api/recordings", func(r chi.Router) {
		r.Use(gate)
		r.Get("/", h.ListRecordings)
		r.Post("/init", h.InitRecording)
		r.Post("/upload/{id}", h.UploadRecording)
		r.Get("/{id}", h.GetRecording)
		r.Get("/{id}/url", h.RecordingURL)
		r.Post("/{id}/export", h.ExportRecording)
	})

	return r
}

func rateLimit(cfg RouterConfig) func(http.Handler) http.Handler {
	if cfg.AuthRateLimit <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return httprate.Limit(cfg.AuthRateLimit, cfg.AuthRateWindow,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			writeError(w, http.StatusTooManyRequests, "rate_limited", "Too many requests")
		}),
	)
}
