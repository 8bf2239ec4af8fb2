package bookingapi

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"cleanbook/internal/booking"
	"cleanbook/internal/simgateway"
	"cleanbook/internal/workflow"
)

const testSecret = "test-secret"

func newTestGateway(t *testing.T) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(simgateway.NewRouter(simgateway.Options{Secret: testSecret}))
	t.Cleanup(srv.Close)
	return New(srv.URL, nil), srv
}

func login(t *testing.T, c *Client, email, password string) string {
	t.Helper()
	tok, err := c.Login(context.Background(), email, password)
	if err != nil {
		t.Fatalf("login %s: %v", email, err)
	}
	return tok
}

func createReq() workflow.CreateRequest {
	return workflow.CreateRequest{
		Client:            booking.ClientInfo{Name: "Ana", Email: "ana@example.com", Phone: "+15550100"},
		Location:          booking.Location{Address: "12 Main St", City: "Springfield"},
		ServiceType:       "deep_clean",
		PreferredDateTime: time.Now().Add(72 * time.Hour),
	}
}

func TestLogin_BadCredentials(t *testing.T) {
	c, _ := newTestGateway(t)
	_, err := c.Login(context.Background(), "admin@cleanbook.test", "wrong")
	var rerr *RemoteError
	if !errors.As(err, &rerr) || rerr.StatusCode != 401 {
		t.Fatalf("expected 401 RemoteError, got %v", err)
	}
}

func TestCreateThenFetch_RoundTrip(t *testing.T) {
	c, _ := newTestGateway(t)
	ctx := context.Background()

	created, err := c.CreateBooking(ctx, createReq())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Booking.Status != booking.StatusPending {
		t.Fatalf("status = %s, want pending", created.Booking.Status)
	}
	if created.Token == "" {
		t.Fatalf("expected possession token")
	}

	// Public read through the possession token: no login involved.
	got, err := c.GetPublicBooking(ctx, created.Booking.ID, created.Token)
	if err != nil {
		t.Fatalf("public get: %v", err)
	}
	if got.Client.Email != "ana@example.com" || got.Location.City != "Springfield" || got.ServiceType != "deep_clean" {
		t.Fatalf("submitted fields lost: %+v", got)
	}

	// Wrong token resolves nothing.
	if _, err := c.GetPublicBooking(ctx, created.Booking.ID, "bogus"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for wrong token, got %v", err)
	}
}

func TestGetBooking_NotFound(t *testing.T) {
	c, _ := newTestGateway(t)
	head := login(t, c, "head@cleanbook.test", "head")

	_, err := c.GetBooking(context.Background(), head, "nope")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStaffRoutes_RequireBearer(t *testing.T) {
	c, _ := newTestGateway(t)
	_, err := c.ListBookings(context.Background(), "")
	var rerr *RemoteError
	if !errors.As(err, &rerr) || rerr.StatusCode != 401 {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestFullPipeline(t *testing.T) {
	c, _ := newTestGateway(t)
	ctx := context.Background()
	head := login(t, c, "head@cleanbook.test", "head")
	kim := login(t, c, "kim@cleanbook.test", "kim")

	created, err := c.CreateBooking(ctx, createReq())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	id := created.Booking.ID

	pv := time.Now().Add(24 * time.Hour)
	b, err := c.UpdateBooking(ctx, head, id, workflow.TransitionRequest{
		To:           booking.StatusPreVisitScheduled,
		PreVisitDate: &pv,
	})
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}
	if b.Status != booking.StatusPreVisitScheduled || b.PreVisitDate == nil {
		t.Fatalf("schedule not applied: %+v", b)
	}

	b, err = c.UpdateBooking(ctx, head, id, workflow.TransitionRequest{
		To:                booking.StatusPreVisitCompleted,
		Budget:            decimal.RequireFromString("180.00"),
		AssessmentDetails: "two bedrooms, one kitchen",
	})
	if err != nil {
		t.Fatalf("complete pre-visit: %v", err)
	}
	if !b.Budget.Equal(decimal.RequireFromString("180.00")) {
		t.Fatalf("budget = %s", b.Budget)
	}

	// Client approves the budget via the possession token.
	b, err = c.ApproveBudget(ctx, id, created.Token, true, "")
	if err != nil {
		t.Fatalf("approve budget: %v", err)
	}
	if b.BudgetApproved == nil || !*b.BudgetApproved {
		t.Fatalf("budget approval not recorded")
	}

	b, err = c.UpdateBooking(ctx, head, id, workflow.TransitionRequest{
		To:                booking.StatusAssigned,
		AssignedCleanerID: "c-1",
	})
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if b.AssignedCleaner == nil || b.AssignedCleaner.ID != "c-1" {
		t.Fatalf("cleaner not recorded: %+v", b.AssignedCleaner)
	}

	// The assigned cleaner works through the progress route.
	if _, err := c.UpdateProgress(ctx, kim, id, workflow.TransitionRequest{To: booking.StatusInProgress}); err != nil {
		t.Fatalf("start: %v", err)
	}
	b, err = c.UpdateProgress(ctx, kim, id, workflow.TransitionRequest{To: booking.StatusCompleted, Notes: "all done"})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if b.Status != booking.StatusCompleted {
		t.Fatalf("status = %s", b.Status)
	}

	// Rating only opens after completion.
	rated, err := c.RateBooking(ctx, id, created.Token, 5, "spotless")
	if err != nil {
		t.Fatalf("rate: %v", err)
	}
	if rated.Rating == nil || rated.Rating.Score != 5 {
		t.Fatalf("rating not recorded: %+v", rated.Rating)
	}

	st, err := c.GetStats(ctx, head)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if st.Total != 1 || st.ByStatus[booking.StatusCompleted] != 1 {
		t.Fatalf("stats off: %+v", st)
	}
	if !st.Revenue.Equal(decimal.RequireFromString("180.00")) {
		t.Fatalf("revenue = %s", st.Revenue)
	}
}

func TestStaleTransition_Conflict(t *testing.T) {
	c, _ := newTestGateway(t)
	ctx := context.Background()
	head := login(t, c, "head@cleanbook.test", "head")

	created, err := c.CreateBooking(ctx, createReq())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	pv := time.Now().Add(24 * time.Hour)
	req := workflow.TransitionRequest{To: booking.StatusPreVisitScheduled, PreVisitDate: &pv}
	if _, err := c.UpdateBooking(ctx, head, created.Booking.ID, req); err != nil {
		t.Fatalf("first transition: %v", err)
	}

	// A second submission of the same edge races against the already-moved
	// server state and must come back as a conflict, not a silent success.
	_, err = c.UpdateBooking(ctx, head, created.Booking.ID, req)
	var rerr *RemoteError
	if !errors.As(err, &rerr) || !rerr.Conflict() {
		t.Fatalf("expected conflict RemoteError, got %v", err)
	}
	if rerr.Message == "" {
		t.Fatalf("server message must be carried verbatim")
	}
}

func TestProgressRoute_RejectsStaffEdges(t *testing.T) {
	c, _ := newTestGateway(t)
	ctx := context.Background()
	head := login(t, c, "head@cleanbook.test", "head")

	created, err := c.CreateBooking(ctx, createReq())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	pv := time.Now().Add(24 * time.Hour)
	_, err = c.UpdateProgress(ctx, head, created.Booking.ID, workflow.TransitionRequest{
		To:           booking.StatusPreVisitScheduled,
		PreVisitDate: &pv,
	})
	var rerr *RemoteError
	if !errors.As(err, &rerr) || rerr.StatusCode != 403 {
		t.Fatalf("expected 403, got %v", err)
	}
}

func TestCleanerCannotCancel_ServerSide(t *testing.T) {
	c, _ := newTestGateway(t)
	ctx := context.Background()
	kim := login(t, c, "kim@cleanbook.test", "kim")

	created, err := c.CreateBooking(ctx, createReq())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err = c.UpdateBooking(ctx, kim, created.Booking.ID, workflow.TransitionRequest{To: booking.StatusCancelled})
	var rerr *RemoteError
	if !errors.As(err, &rerr) || rerr.StatusCode != 403 {
		t.Fatalf("expected 403, got %v", err)
	}

	// Status untouched.
	b, err := c.GetPublicBooking(ctx, created.Booking.ID, created.Token)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if b.Status != booking.StatusPending {
		t.Fatalf("status moved to %s", b.Status)
	}
}

func TestRate_BeforeCompletionConflicts(t *testing.T) {
	c, _ := newTestGateway(t)
	ctx := context.Background()

	created, err := c.CreateBooking(ctx, createReq())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	_, err = c.RateBooking(ctx, created.Booking.ID, created.Token, 4, "")
	var rerr *RemoteError
	if !errors.As(err, &rerr) || !rerr.Conflict() {
		t.Fatalf("expected conflict, got %v", err)
	}
}
