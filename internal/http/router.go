package http

import (
	"context"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/pluckstudio/demandas/internal/config"
	httpmiddleware "github.com/pluckstudio/demandas/internal/http/middleware"
	"github.com/pluckstudio/demandas/internal/painel"
	"github.com/pluckstudio/demandas/internal/sessao"
)

// Check verifica uma dependência para /ready.
type Check func(ctx context.Context) error

// Dependencies agrupa o que o roteador precisa além da configuração.
type Dependencies struct {
	Bootstrapper *sessao.Bootstrapper
	Drafts       painel.DraftStore
	Notices      painel.Notices
	Checks       map[string]Check
	Logger       zerolog.Logger
}

type Handler struct {
	cfg           *config.Config
	boot          *sessao.Bootstrapper
	drafts        painel.DraftStore
	notices       painel.Notices
	exporter      *painel.Exporter
	checks        map[string]Check
	logger        zerolog.Logger
	loc           *time.Location
	heartbeat     time.Duration
	publicLimiter *httpmiddleware.RateLimiter
	authLimiter   *httpmiddleware.RateLimiter
	devCookies    bool
}

// NewRouter devolve roteador configurado.
func NewRouter(cfg *config.Config, deps Dependencies) http.Handler {
	devCookies := false
	for _, origin := range cfg.AllowOrigins {
		if strings.Contains(origin, "localhost") {
			devCookies = true
			break
		}
	}

	loc := cfg.DisplayLocation
	if loc == nil {
		loc = time.UTC
	}

	h := &Handler{
		cfg:           cfg,
		boot:          deps.Bootstrapper,
		drafts:        deps.Drafts,
		notices:       deps.Notices,
		exporter:      painel.NewExporter(loc, deps.Notices, deps.Logger),
		checks:        deps.Checks,
		logger:        deps.Logger,
		loc:           loc,
		heartbeat:     25 * time.Second,
		publicLimiter: httpmiddleware.NewRateLimiter(cfg.RateLimitPublic.RequestsPerSecond, cfg.RateLimitPublic.Burst),
		authLimiter:   httpmiddleware.NewRateLimiter(cfg.RateLimitAuth.RequestsPerSecond, cfg.RateLimitAuth.Burst),
		devCookies:    devCookies,
	}

	return h.routes(cfg.AllowOrigins)
}

func (h *Handler) routes(allowOrigins []string) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(httpmiddleware.Logging)
	r.Use(httpmiddleware.Recover)
	r.Use(httpmiddleware.CORS(allowOrigins))

	r.Group(func(public chi.Router) {
		public.Use(httpmiddleware.IPRateLimit(h.publicLimiter))

		public.Get("/health", h.Health)
		public.Get("/ready", h.Ready)
		public.Post("/sessao", h.StartSession)
		public.Delete("/sessao", h.EndSession)
	})

	r.Group(func(private chi.Router) {
		private.Use(httpmiddleware.Session(h.boot))
		private.Use(httpmiddleware.SessionRateLimit(h.authLimiter))

		private.Get("/aviso", h.CurrentNotice)

		private.Route("/rascunho", func(d chi.Router) {
			d.Get("/", h.GetDraft)
			d.Patch("/", h.ChangeDraftField)
			d.Post("/enviar", h.SubmitDraft)
		})

		private.Route("/demandas", func(d chi.Router) {
			d.Get("/", h.ListDemandas)
			d.Post("/", h.CreateDemanda)
			d.Get("/stream", h.StreamDemandas)
			d.Get("/exportar", h.ExportDemandas)
			d.Delete("/{id}", h.DeleteDemanda)
		})
	})

	return r
}

// Health responde status simples.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready executa as verificações de dependências (Postgres, Redis, feed).
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	failures := make(map[string]any)
	for _, name := range names {
		if err := h.checks[name](ctx); err != nil {
			failures[name] = err.Error()
		}
	}

	if len(failures) > 0 {
		WriteError(w, http.StatusServiceUnavailable, "INTERNAL", "dependências indisponíveis", failures)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]bool{"ready": true})
}

func (h *Handler) setSessionCookie(w http.ResponseWriter, token string, expires time.Time) {
	secure := !h.devCookies
	sameSite := http.SameSiteNoneMode
	if h.devCookies {
		sameSite = http.SameSiteLaxMode
	}
	http.SetCookie(w, &http.Cookie{
		Name:     httpmiddleware.SessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   secure,
		SameSite: sameSite,
	})
}

func (h *Handler) clearSessionCookie(w http.ResponseWriter) {
	secure := !h.devCookies
	sameSite := http.SameSiteNoneMode
	if h.devCookies {
		sameSite = http.SameSiteLaxMode
	}
	http.SetCookie(w, &http.Cookie{
		Name:     httpmiddleware.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: sameSite,
	})
}
