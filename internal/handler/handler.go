// Package handler is the JSON-over-HTTP surface.
package handler

import (
	"context"
	"net/http"
	"net/netip"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"mediconnect/internal/apperr"
	"mediconnect/internal/auth"
	mw "mediconnect/internal/middleware"
	"mediconnect/internal/model"
	"mediconnect/internal/service"
)

// Pinger reports whether a backing dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Options struct {
	Tokens      mw.Verifier
	Limiter     *mw.RateLimiter
	CORSOrigins []string
	StaticDir   string
	Ready       Pinger

	// TrustedProxies may set the client address through forwarding headers.
	// With none, the socket address is used.
	TrustedProxies []netip.Prefix

	// GRPCWeb, when set, serves gRPC-Web calls under GRPCWebPrefix. The
	// gRPC interceptors authenticate those calls.
	GRPCWeb       http.Handler
	GRPCWebPrefix string
}

type Handler struct {
	svc service.Services
	log *zap.Logger
}

func New(svc service.Services, log *zap.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

// Router mounts every route. Everything under /api except /api/auth needs a
// bearer token.
func (h *Handler) Router(o Options) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(mw.ClientIP(o.TrustedProxies))
	r.Use(mw.RequestLogger(h.log))
	r.Use(mw.Recovery(h.log))
	r.Use(mw.Metrics)
	r.Use(mw.CORS(o.CORSOrigins))

	r.Get("/", h.landing)
	r.Get("/health/live", h.live)
	r.Get("/health/ready", h.ready(o.Ready))
	r.Handle("/metrics", promhttp.Handler())
	if o.StaticDir != "" {
		r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir(o.StaticDir))))
	}

	if o.GRPCWeb != nil && o.GRPCWebPrefix != "" {
		r.Handle(o.GRPCWebPrefix+"/*", o.GRPCWeb)
	}

	r.Route("/api/auth", func(r chi.Router) {
		if o.Limiter != nil {
			r.Use(mw.Limit(o.Limiter, h.log))
		}
		r.Post("/register", h.register)
		r.Post("/login", h.login)
	})

	r.Group(func(r chi.Router) {
		r.Use(mw.Authenticate(o.Tokens, h.log))

		r.Get("/api/users/profile", h.getProfile)
		r.Put("/api/users/profile", h.updateProfile)

		r.Get("/api/doctors", h.listDoctors)
		r.Get("/api/doctors/online", h.onlineDoctors)
		r.With(mw.RequireRole(h.log, model.RoleDoctor)).Put("/api/doctors/status", h.setStatus)

		r.Get("/api/appointments", h.listAppointments)
		r.With(mw.RequireRole(h.log, model.RolePatient)).Post("/api/appointments", h.createAppointment)
		r.Get("/api/appointments/{id}", h.getAppointment)
		r.Put("/api/appointments/{id}", h.updateAppointment)
		r.Delete("/api/appointments/{id}", h.deleteAppointment)

		r.Get("/api/analytics", h.analytics)
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		mw.WriteError(w, h.log, apperr.NotFound("Route"))
	})
	return r
}

func (h *Handler) fail(w http.ResponseWriter, err error) { mw.WriteError(w, h.log, err) }

// identity is set by Authenticate for every protected route.
func identity(r *http.Request) auth.Identity {
	id, _ := mw.IdentityFromContext(r.Context())
	return id
}

func queryInt(r *http.Request, key string) int {
	n, _ := strconv.Atoi(r.URL.Query().Get(key))
	return n
}

func (h *Handler) landing(w http.ResponseWriter, _ *http.Request) {
	mw.WriteJSON(w, http.StatusOK, map[string]string{
		"name":    "MediConnect",
		"status":  "ok",
		"version": "v1",
	})
}

func (h *Handler) live(w http.ResponseWriter, _ *http.Request) {
	mw.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) ready(p Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if p != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := p.Ping(ctx); err != nil {
				h.log.Warn("readiness check failed", zap.Error(err))
				mw.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		mw.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
