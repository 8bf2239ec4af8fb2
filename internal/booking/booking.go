package booking

import (
	"time"

	"github.com/shopspring/decimal"
)

// ClientInfo is captured once at creation and immutable afterwards.
type ClientInfo struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type Location struct {
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state,omitempty"`
	ZipCode string `json:"zipCode,omitempty"`
}

// CleanerRef is the embedded summary of the cleaner a booking is assigned to.
type CleanerRef struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// Rating is attached after completion via the public token route, outside the
// staff workflow.
type Rating struct {
	Score    int    `json:"score"`
	Feedback string `json:"feedback,omitempty"`
}

type Booking struct {
	ID                string          `json:"id"`
	Status            Status          `json:"status"`
	Client            ClientInfo      `json:"client"`
	Location          Location        `json:"location"`
	ServiceType       string          `json:"serviceType"`
	PreferredDateTime time.Time       `json:"preferredDateTime"`
	PreVisitDate      *time.Time      `json:"preVisitDate,omitempty"`
	ScheduledDateTime *time.Time      `json:"scheduledDateTime,omitempty"`
	Budget            decimal.Decimal `json:"budget"`
	BudgetApproved    *bool           `json:"budgetApproved,omitempty"`
	AssignedCleaner   *CleanerRef     `json:"assignedCleaner,omitempty"`

	Notes               string   `json:"notes,omitempty"`
	Description         string   `json:"description,omitempty"`
	AssessmentDetails   string   `json:"assessmentDetails,omitempty"`
	RecommendedServices []string `json:"recommendedServices,omitempty"`
	EstimatedDuration   string   `json:"estimatedDuration,omitempty"`
	RequiredCleaners    int      `json:"requiredCleaners,omitempty"`
	CancelReason        string   `json:"cancelReason,omitempty"`

	Rating *Rating `json:"rating,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// HasBudget reports whether a usable budget has been recorded. A zero or
// negative budget blocks assignment.
func (b *Booking) HasBudget() bool {
	return b.Budget.IsPositive()
}

// AssignedTo reports whether the booking is assigned to the given cleaner id.
func (b *Booking) AssignedTo(cleanerID string) bool {
	return b.AssignedCleaner != nil && b.AssignedCleaner.ID == cleanerID
}

// Stats mirrors GET /bookings/stats.
type Stats struct {
	Total     int             `json:"total"`
	ByStatus  map[Status]int  `json:"byStatus"`
	Revenue   decimal.Decimal `json:"revenue"`
	AvgRating float64         `json:"avgRating"`
}
