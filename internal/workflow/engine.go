// Package workflow holds the booking status transition rules: which edge each
// role may trigger and what data each edge requires. The engine is stateless
// and side-effect free; the remote gateway's answer is always authoritative.
package workflow

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"cleanbook/internal/booking"
)

// Actor identifies the staff user requesting a transition.
type Actor struct {
	UserID string
	Role   booking.Role
}

// TransitionRequest is the payload of PUT /bookings/:id (and the cleaner-scoped
// /progress variant). Only the fields relevant to the target status are read.
type TransitionRequest struct {
	To                  booking.Status  `json:"status"`
	PreVisitDate        *time.Time      `json:"preVisitDate,omitempty"`
	ScheduledDateTime   *time.Time      `json:"scheduledDateTime,omitempty"`
	Budget              decimal.Decimal `json:"budget"`
	AssessmentDetails   string          `json:"assessmentDetails,omitempty"`
	Notes               string          `json:"notes,omitempty"`
	AssignedCleanerID   string          `json:"assignedCleanerId,omitempty"`
	RecommendedServices []string        `json:"recommendedServices,omitempty"`
	EstimatedDuration   string          `json:"estimatedDuration,omitempty"`
	RequiredCleaners    int             `json:"requiredCleaners,omitempty"`
	Reason              string          `json:"reason,omitempty"`
}

// CreateRequest is the public POST /bookings payload. No role: creation is a
// public funnel action.
type CreateRequest struct {
	Client            booking.ClientInfo `json:"client" validate:"required"`
	Location          booking.Location   `json:"location" validate:"required"`
	ServiceType       string             `json:"serviceType" validate:"required"`
	PreferredDateTime time.Time          `json:"preferredDateTime" validate:"required"`
	Description       string             `json:"description,omitempty"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func init() {
	// time.Time and nested structs: "required" alone is not enough for the
	// pieces the funnel must always collect.
	validate.RegisterStructValidation(func(sl validator.StructLevel) {
		req := sl.Current().Interface().(CreateRequest)
		if req.Client.Name == "" {
			sl.ReportError(req.Client.Name, "client.name", "Name", "required", "")
		}
		if req.Client.Email == "" {
			sl.ReportError(req.Client.Email, "client.email", "Email", "required", "")
		}
		if req.Client.Phone == "" {
			sl.ReportError(req.Client.Phone, "client.phone", "Phone", "required", "")
		}
		if req.Location.Address == "" {
			sl.ReportError(req.Location.Address, "location.address", "Address", "required", "")
		}
		if req.Location.City == "" {
			sl.ReportError(req.Location.City, "location.city", "City", "required", "")
		}
		if req.PreferredDateTime.IsZero() {
			sl.ReportError(req.PreferredDateTime, "preferredDateTime", "PreferredDateTime", "required", "")
		}
	}, CreateRequest{})
}

// ValidateCreate checks the public creation payload.
func ValidateCreate(req CreateRequest) error {
	if err := validate.Struct(req); err != nil {
		if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
			return &ValidationError{Field: errs[0].Namespace(), Reason: "required"}
		}
		return &ValidationError{Field: "request", Reason: err.Error()}
	}
	return nil
}

// triggerRoles maps each target status to the roles allowed to request it.
// Each status has exactly one inbound pipeline edge, so the role set is a
// function of the target alone. The cleaner entries are additionally gated on
// booking.AssignedCleaner in Validate.
var triggerRoles = map[booking.Status]map[booking.Role]bool{
	booking.StatusPreVisitScheduled: {booking.RoleHeadCleaner: true, booking.RoleAdmin: true},
	booking.StatusPreVisitCompleted: {booking.RoleHeadCleaner: true, booking.RoleAdmin: true},
	booking.StatusAssigned:          {booking.RoleHeadCleaner: true, booking.RoleAdmin: true},
	booking.StatusInProgress:        {booking.RoleCleaner: true},
	booking.StatusCompleted:         {booking.RoleCleaner: true},
	booking.StatusCancelled:         {booking.RoleHeadCleaner: true, booking.RoleAdmin: true, booking.RoleManager: true},
}

// cleanerGated marks edges only the assigned cleaner may trigger.
var cleanerGated = map[booking.Status]bool{
	booking.StatusInProgress: true,
	booking.StatusCompleted:  true,
}

// Validate checks a requested transition against the current booking and the
// acting staff user. It returns nil when the request may be dispatched, or one
// of *UnauthorizedTransitionError, *InvalidTransitionError, *ValidationError.
// It never mutates the booking.
func Validate(cur *booking.Booking, actor Actor, req TransitionRequest) error {
	if cur == nil {
		return &ValidationError{Field: "booking", Reason: "no current booking"}
	}
	if _, err := booking.ParseStatus(string(req.To)); err != nil {
		return &ValidationError{Field: "status", Reason: err.Error()}
	}

	roles, known := triggerRoles[req.To]
	if !known || !roles[actor.Role] {
		return &UnauthorizedTransitionError{Role: actor.Role, To: req.To}
	}
	if cleanerGated[req.To] && !cur.AssignedTo(actor.UserID) {
		return &UnauthorizedTransitionError{Role: actor.Role, To: req.To}
	}

	if !booking.CanTransition(cur.Status, req.To) {
		return &InvalidTransitionError{From: cur.Status, To: req.To}
	}

	return validateFields(cur, req)
}

func validateFields(cur *booking.Booking, req TransitionRequest) error {
	switch req.To {
	case booking.StatusPreVisitScheduled:
		if req.PreVisitDate == nil {
			return &ValidationError{Field: "preVisitDate", Reason: "required"}
		}
		if !req.PreVisitDate.After(time.Now()) {
			return &ValidationError{Field: "preVisitDate", Reason: "must be in the future"}
		}

	case booking.StatusPreVisitCompleted:
		if !req.Budget.IsPositive() {
			return &ValidationError{Field: "budget", Reason: "must be greater than zero"}
		}
		if req.AssessmentDetails == "" && req.Notes == "" {
			return &ValidationError{Field: "assessmentDetails", Reason: "assessment details or notes required"}
		}

	case booking.StatusAssigned:
		if req.AssignedCleanerID == "" {
			return &ValidationError{Field: "assignedCleanerId", Reason: "required"}
		}
		// Budget must already be on the booking before assignment.
		if !cur.HasBudget() {
			return &ValidationError{Field: "budget", Reason: "booking has no budget"}
		}

	case booking.StatusInProgress, booking.StatusCompleted, booking.StatusCancelled:
		// Notes and reason are optional.
	}
	return nil
}
