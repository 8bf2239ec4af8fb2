package session

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// Authenticator exchanges staff credentials for a bearer token. Implemented by
// the booking gateway client.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (string, error)
}

// Manager runs the explicit login/logout lifecycle and hands the current
// session to whoever needs it (access gate, gateway calls, realtime listener).
type Manager struct {
	auth  Authenticator
	store Store
	log   *zap.Logger
}

func NewManager(auth Authenticator, store Store, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{auth: auth, store: store, log: log}
}

// Login authenticates against the backend, decodes the returned token and
// persists the session.
func (m *Manager) Login(ctx context.Context, email, password string) (*Session, error) {
	token, err := m.auth.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	sess, err := FromToken(token)
	if err != nil {
		return nil, err
	}
	if err := m.store.Save(ctx, sess); err != nil {
		return nil, err
	}
	m.log.Info("staff session opened",
		zap.String("userId", sess.UserID),
		zap.String("role", string(sess.Role)))
	return sess, nil
}

// Logout drops the persisted session. Clearing an absent session is not an
// error.
func (m *Manager) Logout(ctx context.Context) error {
	if err := m.store.Clear(ctx); err != nil && !errors.Is(err, ErrNotAuthenticated) {
		return err
	}
	m.log.Info("staff session closed")
	return nil
}

// Current returns the live session, or ErrNotAuthenticated when there is none
// or it has expired.
func (m *Manager) Current(ctx context.Context) (*Session, error) {
	sess, err := m.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	if sess.Expired(time.Now()) {
		_ = m.store.Clear(ctx)
		return nil, ErrNotAuthenticated
	}
	return sess, nil
}
