package simgateway

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"cleanbook/internal/api"
	"cleanbook/internal/booking"
	"cleanbook/internal/realtime"
	"cleanbook/internal/workflow"
)

var (
	errNotFound   = errors.New("not found")
	errConflict   = errors.New("conflict")
	errValidation = errors.New("validation failed")
)

type Handlers struct {
	Store    *Store
	Secret   string
	TokenTTL time.Duration
	Hub      *Hub
	Log      *zap.Logger
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, api.CodeValidationFailed, "invalid json")
		return
	}
	u, ok := h.Store.FindUserByEmail(req.Email)
	if !ok || u.Password != req.Password {
		api.WriteError(w, http.StatusUnauthorized, api.CodeUnauthorized, "invalid credentials")
		return
	}

	ttl := h.TokenTTL
	if ttl <= 0 {
		ttl = 8 * time.Hour
	}
	now := time.Now()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   u.ID,
		"role":  string(u.Role),
		"email": u.Email,
		"name":  u.Name,
		"iat":   now.Unix(),
		"exp":   now.Add(ttl).Unix(),
	})
	signed, err := tok.SignedString([]byte(h.Secret))
	if err != nil {
		api.WriteError(w, http.StatusInternalServerError, api.CodeInternal, "token signing failed")
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"token": signed})
}

func (h Handlers) Create(w http.ResponseWriter, r *http.Request) {
	var req workflow.CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, api.CodeValidationFailed, "invalid json")
		return
	}
	if err := workflow.ValidateCreate(req); err != nil {
		api.WriteError(w, http.StatusBadRequest, api.CodeValidationFailed, err.Error())
		return
	}

	b, token := h.Store.Create(req, time.Now())
	h.notify(realtime.Event{Type: realtime.EventBookingCreated, BookingID: b.ID, Status: string(b.Status)})
	api.WriteJSON(w, http.StatusCreated, map[string]any{"booking": b, "token": token})
}

func (h Handlers) PublicGet(w http.ResponseWriter, r *http.Request) {
	b, ok := h.Store.GetByToken(chi.URLParam(r, "id"), chi.URLParam(r, "token"))
	if !ok {
		api.WriteError(w, http.StatusNotFound, api.CodeNotFound, "booking not found")
		return
	}
	api.WriteJSON(w, http.StatusOK, b)
}

type rateRequest struct {
	Score    int    `json:"score"`
	Feedback string `json:"feedback"`
}

func (h Handlers) Rate(w http.ResponseWriter, r *http.Request) {
	var req rateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, api.CodeValidationFailed, "invalid json")
		return
	}
	b, err := h.Store.Rate(chi.URLParam(r, "id"), chi.URLParam(r, "token"), req.Score, req.Feedback, time.Now())
	if err != nil {
		h.writeStoreError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, b)
}

type approveBudgetRequest struct {
	Approve bool   `json:"approve"`
	Note    string `json:"note"`
}

func (h Handlers) ApproveBudget(w http.ResponseWriter, r *http.Request) {
	var req approveBudgetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, api.CodeValidationFailed, "invalid json")
		return
	}
	b, err := h.Store.ApproveBudget(chi.URLParam(r, "id"), chi.URLParam(r, "token"), req.Approve, req.Note, time.Now())
	if err != nil {
		h.writeStoreError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, b)
}

func (h Handlers) List(w http.ResponseWriter, r *http.Request) {
	if api.ActorFromContext(r.Context()) == nil {
		api.WriteError(w, http.StatusUnauthorized, api.CodeUnauthorized, "missing staff identity")
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"items": h.Store.List(nil)})
}

func (h Handlers) ListPending(w http.ResponseWriter, r *http.Request) {
	if api.ActorFromContext(r.Context()) == nil {
		api.WriteError(w, http.StatusUnauthorized, api.CodeUnauthorized, "missing staff identity")
		return
	}
	items := h.Store.List(func(b *booking.Booking) bool { return b.Status == booking.StatusPending })
	api.WriteJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h Handlers) ListForCleaner(w http.ResponseWriter, r *http.Request) {
	actor := api.ActorFromContext(r.Context())
	if actor == nil {
		api.WriteError(w, http.StatusUnauthorized, api.CodeUnauthorized, "missing staff identity")
		return
	}
	items := h.Store.List(func(b *booking.Booking) bool { return b.AssignedTo(actor.UserID) })
	api.WriteJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h Handlers) Get(w http.ResponseWriter, r *http.Request) {
	if api.ActorFromContext(r.Context()) == nil {
		api.WriteError(w, http.StatusUnauthorized, api.CodeUnauthorized, "missing staff identity")
		return
	}
	b, ok := h.Store.Get(chi.URLParam(r, "id"))
	if !ok {
		api.WriteError(w, http.StatusNotFound, api.CodeNotFound, "booking not found")
		return
	}
	api.WriteJSON(w, http.StatusOK, b)
}

func (h Handlers) Stats(w http.ResponseWriter, r *http.Request) {
	if api.ActorFromContext(r.Context()) == nil {
		api.WriteError(w, http.StatusUnauthorized, api.CodeUnauthorized, "missing staff identity")
		return
	}
	api.WriteJSON(w, http.StatusOK, h.Store.Stats())
}

// Update applies a staff transition. The same handler backs the cleaner
// /progress route, restricted to the progress edges.
func (h Handlers) Update(progressOnly bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor := api.ActorFromContext(r.Context())
		if actor == nil {
			api.WriteError(w, http.StatusUnauthorized, api.CodeUnauthorized, "missing staff identity")
			return
		}

		var req workflow.TransitionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.WriteError(w, http.StatusBadRequest, api.CodeValidationFailed, "invalid json")
			return
		}
		if progressOnly && req.To != booking.StatusInProgress && req.To != booking.StatusCompleted {
			api.WriteError(w, http.StatusForbidden, api.CodeForbidden, "progress route only covers start and complete")
			return
		}

		b, err := h.Store.Transition(chi.URLParam(r, "id"), *actor, req, time.Now())
		if err != nil {
			h.writeTransitionError(w, err)
			return
		}

		h.notify(realtime.Event{Type: realtime.EventStatusChanged, BookingID: b.ID, Status: string(b.Status)})
		api.WriteJSON(w, http.StatusOK, b)
	}
}

func (h Handlers) writeTransitionError(w http.ResponseWriter, err error) {
	var unauth *workflow.UnauthorizedTransitionError
	var invalid *workflow.InvalidTransitionError
	var verr *workflow.ValidationError
	switch {
	case errors.Is(err, errNotFound):
		api.WriteError(w, http.StatusNotFound, api.CodeNotFound, "booking not found")
	case errors.As(err, &unauth):
		api.WriteError(w, http.StatusForbidden, api.CodeForbidden, err.Error())
	case errors.As(err, &invalid):
		api.WriteError(w, http.StatusConflict, api.CodeInvalidTransition, err.Error())
	case errors.As(err, &verr):
		api.WriteError(w, http.StatusBadRequest, api.CodeValidationFailed, err.Error())
	default:
		api.WriteError(w, http.StatusInternalServerError, api.CodeInternal, "internal error")
	}
}

func (h Handlers) writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errNotFound):
		api.WriteError(w, http.StatusNotFound, api.CodeNotFound, "booking not found")
	case errors.Is(err, errConflict):
		api.WriteError(w, http.StatusConflict, api.CodeInvalidTransition, err.Error())
	case errors.Is(err, errValidation):
		api.WriteError(w, http.StatusBadRequest, api.CodeValidationFailed, err.Error())
	default:
		api.WriteError(w, http.StatusInternalServerError, api.CodeInternal, "internal error")
	}
}

func (h Handlers) notify(ev realtime.Event) {
	if h.Hub != nil {
		h.Hub.Broadcast(ev)
	}
}
