// Package simgateway is an in-memory stand-in for the remote booking backend,
// used for local development and integration tests. It speaks the same wire
// contract and enforces the same transition rules server-side, so clients see
// real conflict and validation answers. Nothing here is durable.
package simgateway

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"cleanbook/internal/booking"
	"cleanbook/internal/workflow"
)

// StaffUser is a fixture account the simulator can authenticate.
type StaffUser struct {
	ID       string
	Name     string
	Email    string
	Password string
	Role     booking.Role
}

// DefaultUsers covers every dashboard role plus a second cleaner for
// assignment-mismatch scenarios.
func DefaultUsers() []StaffUser {
	return []StaffUser{
		{ID: "u-admin", Name: "Ada Admin", Email: "admin@cleanbook.test", Password: "admin", Role: booking.RoleAdmin},
		{ID: "u-head", Name: "Hana Head", Email: "head@cleanbook.test", Password: "head", Role: booking.RoleHeadCleaner},
		{ID: "u-manager", Name: "Mori Manager", Email: "manager@cleanbook.test", Password: "manager", Role: booking.RoleManager},
		{ID: "u-accountant", Name: "Ana Accountant", Email: "accountant@cleanbook.test", Password: "accountant", Role: booking.RoleAccountant},
		{ID: "c-1", Name: "Kim Cleaner", Email: "kim@cleanbook.test", Password: "kim", Role: booking.RoleCleaner},
		{ID: "c-2", Name: "Lee Cleaner", Email: "lee@cleanbook.test", Password: "lee", Role: booking.RoleCleaner},
	}
}

type Store struct {
	mu       sync.Mutex
	bookings map[string]*booking.Booking
	tokens   map[string]string // booking id -> possession token
	order    []string          // stable listing order (creation time)
	users    []StaffUser
}

func NewStore(users []StaffUser) *Store {
	if len(users) == 0 {
		users = DefaultUsers()
	}
	return &Store{
		bookings: make(map[string]*booking.Booking),
		tokens:   make(map[string]string),
		users:    users,
	}
}

func (s *Store) FindUserByEmail(email string) (*StaffUser, bool) {
	for i := range s.users {
		if s.users[i].Email == email {
			return &s.users[i], true
		}
	}
	return nil, false
}

func (s *Store) FindUserByID(id string) (*StaffUser, bool) {
	for i := range s.users {
		if s.users[i].ID == id {
			return &s.users[i], true
		}
	}
	return nil, false
}

// Create builds a pending booking from the public funnel payload and mints its
// possession token.
func (s *Store) Create(req workflow.CreateRequest, now time.Time) (booking.Booking, string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b := &booking.Booking{
		ID:                uuid.NewString(),
		Status:            booking.StatusPending,
		Client:            req.Client,
		Location:          req.Location,
		ServiceType:       req.ServiceType,
		PreferredDateTime: req.PreferredDateTime,
		Description:       req.Description,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	token := uuid.NewString()
	s.bookings[b.ID] = b
	s.tokens[b.ID] = token
	s.order = append(s.order, b.ID)
	return *b, token
}

func (s *Store) Get(id string) (booking.Booking, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return booking.Booking{}, false
	}
	return *b, true
}

// GetByToken resolves a booking through its possession token.
func (s *Store) GetByToken(id, token string) (booking.Booking, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok || s.tokens[id] != token {
		return booking.Booking{}, false
	}
	return *b, true
}

// List returns bookings in creation order, optionally filtered.
func (s *Store) List(filter func(*booking.Booking) bool) []booking.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]booking.Booking, 0, len(s.order))
	for _, id := range s.order {
		b := s.bookings[id]
		if filter == nil || filter(b) {
			out = append(out, *b)
		}
	}
	return out
}

// Transition validates and applies a staff transition atomically. The
// workflow rules run against the server's own current record, which makes the
// simulator's conflict answers authoritative for stale clients.
func (s *Store) Transition(id string, actor workflow.Actor, req workflow.TransitionRequest, now time.Time) (booking.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bookings[id]
	if !ok {
		return booking.Booking{}, errNotFound
	}
	if err := workflow.Validate(b, actor, req); err != nil {
		return booking.Booking{}, err
	}

	switch req.To {
	case booking.StatusPreVisitScheduled:
		b.PreVisitDate = req.PreVisitDate
		if req.Notes != "" {
			b.Notes = req.Notes
		}

	case booking.StatusPreVisitCompleted:
		b.Budget = req.Budget
		b.AssessmentDetails = req.AssessmentDetails
		if req.Notes != "" {
			b.Notes = req.Notes
		}
		b.RecommendedServices = req.RecommendedServices
		b.EstimatedDuration = req.EstimatedDuration
		if req.RequiredCleaners > 0 {
			b.RequiredCleaners = req.RequiredCleaners
		}

	case booking.StatusAssigned:
		ref := booking.CleanerRef{ID: req.AssignedCleanerID}
		if u, ok := s.findUserLocked(req.AssignedCleanerID); ok {
			ref.Name = u.Name
		}
		b.AssignedCleaner = &ref
		b.ScheduledDateTime = req.ScheduledDateTime

	case booking.StatusCompleted:
		if req.Notes != "" {
			b.Notes = req.Notes
		}

	case booking.StatusCancelled:
		b.CancelReason = req.Reason
	}

	b.Status = req.To
	b.UpdatedAt = now
	return *b, nil
}

func (s *Store) findUserLocked(id string) (*StaffUser, bool) {
	for i := range s.users {
		if s.users[i].ID == id {
			return &s.users[i], true
		}
	}
	return nil, false
}

// Rate attaches a rating through the possession token. Only completed bookings
// may be rated, and only once.
func (s *Store) Rate(id, token string, score int, feedback string, now time.Time) (booking.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bookings[id]
	if !ok || s.tokens[id] != token {
		return booking.Booking{}, errNotFound
	}
	if b.Status != booking.StatusCompleted {
		return booking.Booking{}, fmt.Errorf("%w: booking is not completed", errConflict)
	}
	if b.Rating != nil {
		return booking.Booking{}, fmt.Errorf("%w: booking already rated", errConflict)
	}
	if score < 1 || score > 5 {
		return booking.Booking{}, fmt.Errorf("%w: score must be between 1 and 5", errValidation)
	}
	b.Rating = &booking.Rating{Score: score, Feedback: feedback}
	b.UpdatedAt = now
	return *b, nil
}

// ApproveBudget records the client's budget decision through the possession
// token. Only meaningful once a budget exists.
func (s *Store) ApproveBudget(id, token string, approve bool, note string, now time.Time) (booking.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bookings[id]
	if !ok || s.tokens[id] != token {
		return booking.Booking{}, errNotFound
	}
	if b.Status != booking.StatusPreVisitCompleted || !b.HasBudget() {
		return booking.Booking{}, fmt.Errorf("%w: no budget awaiting approval", errConflict)
	}
	decision := approve
	b.BudgetApproved = &decision
	if note != "" {
		b.Notes = note
	}
	b.UpdatedAt = now
	return *b, nil
}

// Stats aggregates counts the way GET /bookings/stats reports them.
func (s *Store) Stats() booking.Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := booking.Stats{ByStatus: make(map[booking.Status]int)}
	ratings := 0
	ratingSum := 0
	for _, id := range s.order {
		b := s.bookings[id]
		st.Total++
		st.ByStatus[b.Status]++
		if b.Status == booking.StatusCompleted {
			st.Revenue = st.Revenue.Add(b.Budget)
		}
		if b.Rating != nil {
			ratings++
			ratingSum += b.Rating.Score
		}
	}
	if ratings > 0 {
		st.AvgRating = float64(ratingSum) / float64(ratings)
	}
	return st
}
