package realtime_test

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"cleanbook/internal/booking"
	"cleanbook/internal/realtime"
	"cleanbook/internal/simgateway"
	"cleanbook/internal/workflow"
	"cleanbook/pkg/bookingapi"
)

func TestListener_ReceivesBookingEvents(t *testing.T) {
	srv := httptest.NewServer(simgateway.NewRouter(simgateway.Options{Secret: "test-secret"}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	gw := bookingapi.New(srv.URL, nil)
	tok, err := gw.Login(ctx, "head@cleanbook.test", "head")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	events := make(chan realtime.Event, 16)
	l := &realtime.Listener{
		URL:     "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws",
		Token:   tok,
		OnEvent: func(ev realtime.Event) { events <- ev },
	}

	runDone := make(chan error, 1)
	go func() { runDone <- l.Run(ctx) }()

	// The dial races the first broadcast, so keep creating until one lands.
	var got realtime.Event
	deadline := time.After(8 * time.Second)
	ticker := time.NewTicker(150 * time.Millisecond)
	defer ticker.Stop()
waiting:
	for {
		select {
		case got = <-events:
			break waiting
		case <-deadline:
			t.Fatalf("no event received")
		case <-ticker.C:
			_, err := gw.CreateBooking(ctx, workflow.CreateRequest{
				Client:            booking.ClientInfo{Name: "Ana", Email: "ana@example.com", Phone: "+15550100"},
				Location:          booking.Location{Address: "12 Main St", City: "Springfield"},
				ServiceType:       "standard_clean",
				PreferredDateTime: time.Now().Add(24 * time.Hour),
			})
			if err != nil {
				t.Fatalf("create: %v", err)
			}
		}
	}

	if got.Type != realtime.EventBookingCreated || got.BookingID == "" {
		t.Fatalf("unexpected event: %+v", got)
	}

	// Cancellation is the clean teardown path.
	cancel()
	select {
	case err := <-runDone:
		if err == nil {
			t.Fatalf("expected context error")
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("listener did not stop on cancel")
	}
}

func TestListener_RejectsBadToken(t *testing.T) {
	srv := httptest.NewServer(simgateway.NewRouter(simgateway.Options{Secret: "test-secret"}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	l := &realtime.Listener{
		URL:   "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws",
		Token: "garbage",
	}
	// Dial keeps failing; Run must still exit on cancellation.
	if err := l.Run(ctx); err == nil {
		t.Fatalf("expected error")
	}
}
