package cache

import (
	"errors"
	"reflect"
	"testing"

	"cleanbook/internal/booking"
)

func mk(id string, st booking.Status) booking.Booking {
	return booking.Booking{ID: id, Status: st, ServiceType: "standard_clean"}
}

func TestSlice_FailKeepsData(t *testing.T) {
	s := NewSlice()
	s.SetAll([]booking.Booking{mk("a", booking.StatusPending), mk("b", booking.StatusAssigned)})
	s.SetSelected(mk("a", booking.StatusPending))

	wantItems := s.Items()
	wantSel := s.Selected()

	s.Begin()
	s.Fail(errors.New("gateway: 502 bad gateway"))

	if s.State() != StateFailed {
		t.Fatalf("state = %s, want failed", s.State())
	}
	if s.Err() == "" {
		t.Fatalf("expected error message retained")
	}
	if !reflect.DeepEqual(s.Items(), wantItems) {
		t.Fatalf("items changed on failure")
	}
	if !reflect.DeepEqual(s.Selected(), wantSel) {
		t.Fatalf("selected changed on failure")
	}
}

func TestSlice_ApplyMutationPatchesListInPlace(t *testing.T) {
	s := NewSlice()
	s.SetAll([]booking.Booking{
		mk("a", booking.StatusPending),
		mk("b", booking.StatusPending),
		mk("c", booking.StatusPending),
	})

	updated := mk("b", booking.StatusPreVisitScheduled)
	s.ApplyMutation(updated)

	items := s.Items()
	if len(items) != 3 {
		t.Fatalf("len = %d, want 3", len(items))
	}
	// Ordering preserved, only the matching entry replaced.
	if items[0].ID != "a" || items[1].ID != "b" || items[2].ID != "c" {
		t.Fatalf("order changed: %v %v %v", items[0].ID, items[1].ID, items[2].ID)
	}
	if items[1].Status != booking.StatusPreVisitScheduled {
		t.Fatalf("list entry not patched: %s", items[1].Status)
	}
	if sel := s.Selected(); sel == nil || sel.ID != "b" || sel.Status != booking.StatusPreVisitScheduled {
		t.Fatalf("selected not replaced: %+v", sel)
	}
}

func TestSlice_ApplyMutationDoesNotInsert(t *testing.T) {
	s := NewSlice()
	s.SetAll([]booking.Booking{mk("a", booking.StatusPending)})

	s.ApplyMutation(mk("zzz", booking.StatusCancelled))
	if len(s.Items()) != 1 {
		t.Fatalf("mutation of unlisted booking must not grow the list")
	}
	if sel := s.Selected(); sel == nil || sel.ID != "zzz" {
		t.Fatalf("selected should still be replaced")
	}
}

func TestSlice_ResetClearsFlagsOnly(t *testing.T) {
	s := NewSlice()
	s.SetAll([]booking.Booking{mk("a", booking.StatusPending)})
	s.Fail(errors.New("boom"))

	s.Reset()
	if s.State() != StateIdle || s.Err() != "" {
		t.Fatalf("flags not cleared: %s %q", s.State(), s.Err())
	}
	if len(s.Items()) != 1 {
		t.Fatalf("data cleared by reset")
	}
}

func TestSlice_SecondFetchReplacesWholesale(t *testing.T) {
	s := NewSlice()
	first := mk("a", booking.StatusPending)
	first.Notes = "stale note"
	s.SetSelected(first)

	second := mk("a", booking.StatusPreVisitScheduled) // server moved on; no notes
	s.SetSelected(second)

	sel := s.Selected()
	if sel.Status != booking.StatusPreVisitScheduled {
		t.Fatalf("status = %s, want newer value", sel.Status)
	}
	if sel.Notes != "" {
		t.Fatalf("stale field merged into newer record: %q", sel.Notes)
	}
}

func TestSlice_CopiesAreIsolated(t *testing.T) {
	s := NewSlice()
	s.SetAll([]booking.Booking{mk("a", booking.StatusPending)})

	items := s.Items()
	items[0].Status = booking.StatusCancelled

	if got := s.Items()[0].Status; got != booking.StatusPending {
		t.Fatalf("caller mutation leaked into cache: %s", got)
	}
}

func TestStatsSlice_Lifecycle(t *testing.T) {
	s := NewStatsSlice()
	s.Begin()
	s.Set(booking.Stats{Total: 4, ByStatus: map[booking.Status]int{booking.StatusPending: 2}})
	if s.State() != StateSucceeded || s.Stats().Total != 4 {
		t.Fatalf("stats not stored")
	}

	s.Begin()
	s.Fail(errors.New("oops"))
	if s.Stats() == nil || s.Stats().Total != 4 {
		t.Fatalf("stats cleared on failure")
	}
}
