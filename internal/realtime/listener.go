// Package realtime is the notification side-channel: opened once a session is
// authenticated, torn down on logout. Events never touch the booking cache
// directly; consumers react by re-fetching through the gateway.
package realtime

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Event is one push notification from the backend.
type Event struct {
	Type      string `json:"type"`
	BookingID string `json:"bookingId,omitempty"`
	Status    string `json:"status,omitempty"`
	Message   string `json:"message,omitempty"`
}

const (
	EventBookingCreated = "booking_created"
	EventStatusChanged  = "status_changed"
)

type Listener struct {
	URL     string
	Token   string
	OnEvent func(Event)
	Logger  *zap.Logger

	// Dialer may be overridden in tests; defaults to websocket.DefaultDialer.
	Dialer *websocket.Dialer
}

// Run dials the notification socket and pumps events into OnEvent until ctx is
// cancelled. Connection drops are retried with a capped backoff; cancellation
// is the only clean exit.
func (l *Listener) Run(ctx context.Context) error {
	log := l.Logger
	if log == nil {
		log = zap.NewNop()
	}
	dialer := l.Dialer
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}

	backoff := time.Second
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		header := http.Header{}
		if l.Token != "" {
			header.Set("Authorization", "Bearer "+l.Token)
		}
		conn, _, err := dialer.DialContext(ctx, l.URL, header)
		if err != nil {
			log.Warn("notification socket dial failed", zap.Error(err))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second
		log.Info("notification socket open")

		if err := l.pump(ctx, conn); err != nil && ctx.Err() == nil {
			log.Warn("notification socket closed", zap.Error(err))
		}
		_ = conn.Close()
	}
}

func (l *Listener) pump(ctx context.Context, conn *websocket.Conn) error {
	// Close the connection when ctx ends so ReadJSON unblocks.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-done:
		}
	}()

	for {
		var ev Event
		if err := conn.ReadJSON(&ev); err != nil {
			return err
		}
		if l.OnEvent != nil {
			l.OnEvent(ev)
		}
	}
}
