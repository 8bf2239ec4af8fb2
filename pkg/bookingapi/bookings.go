package bookingapi

import (
	"context"
	"net/http"
	"net/url"

	"cleanbook/internal/booking"
	"cleanbook/internal/workflow"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// Login exchanges staff credentials for a bearer token.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	var resp loginResponse
	if _, err := c.doJSON(ctx, http.MethodPost, "/auth/login", "", loginRequest{Email: email, Password: password}, &resp); err != nil {
		return "", err
	}
	return resp.Token, nil
}

type listResponse struct {
	Items []booking.Booking `json:"items"`
}

// CreateBooking is the public funnel action. It needs no authentication; the
// server answers with the created record (status "pending") and its possession
// token.
func (c *Client) CreateBooking(ctx context.Context, req workflow.CreateRequest) (*CreatedBooking, error) {
	var resp CreatedBooking
	if _, err := c.doJSON(ctx, http.MethodPost, "/bookings", "", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CreatedBooking pairs the new record with the secret token that authorizes
// later public actions (rating, budget approval).
type CreatedBooking struct {
	Booking booking.Booking `json:"booking"`
	Token   string          `json:"token"`
}

// GetPublicBooking reads a booking through its possession token. No login.
func (c *Client) GetPublicBooking(ctx context.Context, id, token string) (*booking.Booking, error) {
	var b booking.Booking
	path := "/bookings/" + url.PathEscape(id) + "/" + url.PathEscape(token)
	if _, err := c.doJSON(ctx, http.MethodGet, path, "", nil, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

type rateRequest struct {
	Score    int    `json:"score"`
	Feedback string `json:"feedback,omitempty"`
}

// RateBooking attaches a rating after completion, authorized by the possession
// token.
func (c *Client) RateBooking(ctx context.Context, id, token string, score int, feedback string) (*booking.Booking, error) {
	var b booking.Booking
	path := "/bookings/" + url.PathEscape(id) + "/" + url.PathEscape(token) + "/rate"
	if _, err := c.doJSON(ctx, http.MethodPost, path, "", rateRequest{Score: score, Feedback: feedback}, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

type approveBudgetRequest struct {
	Approve bool   `json:"approve"`
	Note    string `json:"note,omitempty"`
}

// ApproveBudget records the client's budget decision through the possession
// token.
func (c *Client) ApproveBudget(ctx context.Context, id, token string, approve bool, note string) (*booking.Booking, error) {
	var b booking.Booking
	path := "/bookings/" + url.PathEscape(id) + "/" + url.PathEscape(token) + "/approve-budget"
	if _, err := c.doJSON(ctx, http.MethodPost, path, "", approveBudgetRequest{Approve: approve, Note: note}, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// ListBookings returns the full staff collection.
func (c *Client) ListBookings(ctx context.Context, bearer string) ([]booking.Booking, error) {
	var resp listResponse
	if _, err := c.doJSON(ctx, http.MethodGet, "/bookings", bearer, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

// ListPending returns the bookings still waiting for a pre-visit.
func (c *Client) ListPending(ctx context.Context, bearer string) ([]booking.Booking, error) {
	var resp listResponse
	if _, err := c.doJSON(ctx, http.MethodGet, "/bookings/pending", bearer, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

// ListForCleaner returns the bookings assigned to the calling cleaner.
func (c *Client) ListForCleaner(ctx context.Context, bearer string) ([]booking.Booking, error) {
	var resp listResponse
	if _, err := c.doJSON(ctx, http.MethodGet, "/bookings/cleaner", bearer, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

// GetBooking reads one booking as staff.
func (c *Client) GetBooking(ctx context.Context, bearer, id string) (*booking.Booking, error) {
	var b booking.Booking
	if _, err := c.doJSON(ctx, http.MethodGet, "/bookings/"+url.PathEscape(id), bearer, nil, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// UpdateBooking submits a staff transition. The server re-checks the edge
// against its own current status; its answer is authoritative.
func (c *Client) UpdateBooking(ctx context.Context, bearer, id string, req workflow.TransitionRequest) (*booking.Booking, error) {
	var b booking.Booking
	if _, err := c.doJSON(ctx, http.MethodPut, "/bookings/"+url.PathEscape(id), bearer, req, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// UpdateProgress submits a cleaner progress transition (start / complete).
func (c *Client) UpdateProgress(ctx context.Context, bearer, id string, req workflow.TransitionRequest) (*booking.Booking, error) {
	var b booking.Booking
	if _, err := c.doJSON(ctx, http.MethodPut, "/bookings/"+url.PathEscape(id)+"/progress", bearer, req, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// GetStats returns aggregate booking counts.
func (c *Client) GetStats(ctx context.Context, bearer string) (*booking.Stats, error) {
	var s booking.Stats
	if _, err := c.doJSON(ctx, http.MethodGet, "/bookings/stats", bearer, nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}
