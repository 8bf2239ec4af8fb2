package simgateway

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"cleanbook/internal/api"
)

type Options struct {
	// Secret signs staff tokens. Required.
	Secret string
	// Users overrides the fixture accounts; empty means DefaultUsers.
	Users []StaffUser
	// TokenTTL bounds staff sessions; zero means 8h.
	TokenTTL time.Duration
	Log      *zap.Logger
}

// NewRouter wires the simulator's routes exactly as the production backend
// exposes them, so the client packages can be tested against a real HTTP
// round-trip.
func NewRouter(opts Options) http.Handler {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}
	store := NewStore(opts.Users)
	hub := NewHub(log)
	h := Handlers{
		Store:    store,
		Secret:   opts.Secret,
		TokenTTL: opts.TokenTTL,
		Hub:      hub,
		Log:      log,
	}

	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Post("/auth/login", h.Login)

	// Public funnel: possession of the URL token is the whole trust model,
	// never a login.
	r.Post("/bookings", h.Create)

	// Staff routes (bearer). Registered before the public token route so the
	// fixed segments win.
	r.Group(func(r chi.Router) {
		r.Use(api.StaffAuth(opts.Secret))

		r.Get("/bookings", h.List)
		r.Get("/bookings/pending", h.ListPending)
		r.Get("/bookings/cleaner", h.ListForCleaner)
		r.Get("/bookings/stats", h.Stats)
		r.Get("/bookings/{id}", h.Get)
		r.Put("/bookings/{id}", h.Update(false))
		r.Put("/bookings/{id}/progress", h.Update(true))
	})

	r.Get("/bookings/{id}/{token}", h.PublicGet)
	r.Post("/bookings/{id}/{token}/rate", h.Rate)
	r.Post("/bookings/{id}/{token}/approve-budget", h.ApproveBudget)

	r.Get("/ws", hub.Serve(opts.Secret))

	return r
}
