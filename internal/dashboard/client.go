// Package dashboard ties the staff-facing pieces together: session, transition
// engine, remote gateway and state cache. One Client serves one signed-in
// dashboard session.
package dashboard

import (
	"context"

	"go.uber.org/zap"

	"cleanbook/internal/booking"
	"cleanbook/internal/cache"
	"cleanbook/internal/session"
	"cleanbook/internal/workflow"
	"cleanbook/pkg/bookingapi"
)

type Client struct {
	gw       *bookingapi.Client
	sessions *session.Manager
	store    *cache.Store
	log      *zap.Logger
}

func New(gw *bookingapi.Client, sessions *session.Manager, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		gw:       gw,
		sessions: sessions,
		store:    cache.NewStore(),
		log:      log,
	}
}

// Cache exposes the slices for rendering.
func (c *Client) Cache() *cache.Store {
	return c.store
}

// ResetStatus clears request flags between screens.
func (c *Client) ResetStatus() {
	c.store.Bookings.Reset()
	c.store.Stats.Reset()
}

// FetchAll replaces the cached collection with the server's full collection.
func (c *Client) FetchAll(ctx context.Context) error {
	return c.fetchList(ctx, c.gw.ListBookings)
}

// FetchPending mirrors the head-of-cleaning work queue.
func (c *Client) FetchPending(ctx context.Context) error {
	return c.fetchList(ctx, c.gw.ListPending)
}

// FetchMine mirrors the signed-in cleaner's assignments.
func (c *Client) FetchMine(ctx context.Context) error {
	return c.fetchList(ctx, c.gw.ListForCleaner)
}

func (c *Client) fetchList(ctx context.Context, list func(context.Context, string) ([]booking.Booking, error)) error {
	sess, err := c.sessions.Current(ctx)
	if err != nil {
		return err
	}
	c.store.Bookings.Begin()
	items, err := list(ctx, sess.Token)
	if err != nil {
		c.store.Bookings.Fail(err)
		return err
	}
	c.store.Bookings.SetAll(items)
	return nil
}

// FetchOne replaces the cached detail record.
func (c *Client) FetchOne(ctx context.Context, id string) (*booking.Booking, error) {
	sess, err := c.sessions.Current(ctx)
	if err != nil {
		return nil, err
	}
	c.store.Bookings.Begin()
	b, err := c.gw.GetBooking(ctx, sess.Token, id)
	if err != nil {
		c.store.Bookings.Fail(err)
		return nil, err
	}
	c.store.Bookings.SetSelected(*b)
	return b, nil
}

// Transition walks the full mutation path: local rule check first (local
// failures never reach the network and never touch cached data), then the
// gateway call, then a wholesale cache update from the server's echo. The
// cache never invents a status on its own.
func (c *Client) Transition(ctx context.Context, id string, req workflow.TransitionRequest) (*booking.Booking, error) {
	sess, err := c.sessions.Current(ctx)
	if err != nil {
		return nil, err
	}
	actor := workflow.Actor{UserID: sess.UserID, Role: sess.Role}

	cur := c.store.Bookings.Selected()
	if cur == nil || cur.ID != id {
		// Not on a detail screen; pull the current record for validation
		// without disturbing slice flags.
		cur, err = c.gw.GetBooking(ctx, sess.Token, id)
		if err != nil {
			return nil, err
		}
	}
	if err := workflow.Validate(cur, actor, req); err != nil {
		return nil, err
	}

	c.store.Bookings.Begin()
	var updated *booking.Booking
	if sess.Role == booking.RoleCleaner {
		updated, err = c.gw.UpdateProgress(ctx, sess.Token, id, req)
	} else {
		updated, err = c.gw.UpdateBooking(ctx, sess.Token, id, req)
	}
	if err != nil {
		// Includes conflicts against a stale status: surfaced, never retried.
		c.store.Bookings.Fail(err)
		return nil, err
	}

	c.store.Bookings.ApplyMutation(*updated)
	c.log.Info("booking transitioned",
		zap.String("bookingId", updated.ID),
		zap.String("status", string(updated.Status)))
	return updated, nil
}

// FetchStats refreshes the aggregate counters slice.
func (c *Client) FetchStats(ctx context.Context) (*booking.Stats, error) {
	sess, err := c.sessions.Current(ctx)
	if err != nil {
		return nil, err
	}
	c.store.Stats.Begin()
	st, err := c.gw.GetStats(ctx, sess.Token)
	if err != nil {
		c.store.Stats.Fail(err)
		return nil, err
	}
	c.store.Stats.Set(*st)
	return st, nil
}
