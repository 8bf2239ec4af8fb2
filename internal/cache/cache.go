// Package cache is the in-memory mirror of the last-known server truth. It
// never computes booking state locally: everything stored here was echoed back
// by the remote gateway.
package cache

import (
	"sync"

	"cleanbook/internal/booking"
)

// RequestState tracks one async operation's lifecycle per slice.
type RequestState string

const (
	StateIdle      RequestState = "idle"
	StateLoading   RequestState = "loading"
	StateSucceeded RequestState = "succeeded"
	StateFailed    RequestState = "failed"
)

// Slice mirrors one server collection plus a selected detail record.
// Failures keep the previous data; only the flags change.
type Slice struct {
	mu       sync.RWMutex
	items    []booking.Booking
	selected *booking.Booking
	state    RequestState
	err      string
}

func NewSlice() *Slice {
	return &Slice{state: StateIdle}
}

// Begin marks an operation in flight. Data is untouched.
func (s *Slice) Begin() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateLoading
	s.err = ""
}

// SetAll replaces the collection wholesale with the server's result.
func (s *Slice) SetAll(items []booking.Booking) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = items
	s.state = StateSucceeded
	s.err = ""
}

// SetSelected replaces the detail record wholesale.
func (s *Slice) SetSelected(b booking.Booking) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = &b
	s.state = StateSucceeded
	s.err = ""
}

// ApplyMutation installs a server-returned booking after a successful mutation:
// it becomes the selected record and patches the matching list entry in place,
// preserving order. Bookings absent from the list are not inserted.
func (s *Slice) ApplyMutation(b booking.Booking) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = &b
	for i := range s.items {
		if s.items[i].ID == b.ID {
			s.items[i] = b
			break
		}
	}
	s.state = StateSucceeded
	s.err = ""
}

// Fail records the error message. Items and selected keep their previous
// values so one failed call does not wipe the screen.
func (s *Slice) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateFailed
	if err != nil {
		s.err = err.Error()
	}
}

// Reset clears the flags without touching data. Consumers call it between
// operations so one screen's failure does not bleed into the next.
func (s *Slice) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateIdle
	s.err = ""
}

// Items returns a copy of the cached collection.
func (s *Slice) Items() []booking.Booking {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]booking.Booking, len(s.items))
	copy(out, s.items)
	return out
}

// Selected returns a copy of the cached detail record, or nil.
func (s *Slice) Selected() *booking.Booking {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.selected == nil {
		return nil
	}
	b := *s.selected
	return &b
}

func (s *Slice) State() RequestState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Slice) Err() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

// StatsSlice mirrors GET /bookings/stats.
type StatsSlice struct {
	mu    sync.RWMutex
	stats *booking.Stats
	state RequestState
	err   string
}

func NewStatsSlice() *StatsSlice {
	return &StatsSlice{state: StateIdle}
}

func (s *StatsSlice) Begin() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateLoading
	s.err = ""
}

func (s *StatsSlice) Set(st booking.Stats) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats = &st
	s.state = StateSucceeded
	s.err = ""
}

func (s *StatsSlice) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateFailed
	if err != nil {
		s.err = err.Error()
	}
}

func (s *StatsSlice) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateIdle
	s.err = ""
}

func (s *StatsSlice) Stats() *booking.Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.stats == nil {
		return nil
	}
	st := *s.stats
	return &st
}

func (s *StatsSlice) State() RequestState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *StatsSlice) Err() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

// Store bundles the per-resource slices one dashboard session works with.
type Store struct {
	Bookings *Slice
	Stats    *StatsSlice
}

func NewStore() *Store {
	return &Store{
		Bookings: NewSlice(),
		Stats:    NewStatsSlice(),
	}
}
