// Package subscription provides subscription record value types and pure
// lifecycle transitions.
//
// A record only ever moves active -> cancelled or active -> expired.
// Renewal and upgrade are self-loops on the active state.
package subscription

import (
	"time"

	"github.com/subwave-io/subwave/domain/plan"
)

// Status is the lifecycle state of a subscription record.
type Status string

const (
	StatusActive    Status = "active"
	StatusExpired   Status = "expired"
	StatusCancelled Status = "cancelled"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusExpired, StatusCancelled:
		return true
	}
	return false
}

// InitialTermDays is the length of a new subscription's first term.
const InitialTermDays = 365

// DaysPerRenewalMonth is the length of one renewal month. Renewals are
// billed in 30-day blocks, a calendar-month approximation.
const DaysPerRenewalMonth = 30

// Renewal term bounds in months.
const (
	MinRenewalMonths = 1
	MaxRenewalMonths = 24
)

// Record is one customer's instance of a plan. It references the plan by
// name; deleting the plan from the catalog leaves the record untouched.
type Record struct {
	PlanName   string
	Status     Status
	StartDate  time.Time
	EndDate    time.Time
	DataUsedGB float64
	Cap        plan.DataCap
}

// IsActive reports whether the record is in the active state.
func (r Record) IsActive() bool {
	return r.Status == StatusActive
}

// New creates an active record for p starting at start.
// This is a PURE function.
func New(p plan.Plan, start time.Time) Record {
	return Record{
		PlanName:  p.Name,
		Status:    StatusActive,
		StartDate: start,
		EndDate:   start.AddDate(0, 0, InitialTermDays),
		Cap:       p.Cap,
	}
}

// ValidTerm reports whether months is an allowed renewal term.
func ValidTerm(months int) bool {
	return months >= MinRenewalMonths && months <= MaxRenewalMonths
}

// Renew extends the record's end date by months 30-day blocks from its
// current end date, regardless of elapsed real time. Status is unchanged.
// This is a PURE function.
func Renew(r Record, months int) Record {
	r.EndDate = r.EndDate.AddDate(0, 0, months*DaysPerRenewalMonth)
	return r
}

// Upgrade moves the record to plan p. Dates and consumed data carry over;
// only the plan name and data cap change.
// This is a PURE function.
func Upgrade(r Record, p plan.Plan) Record {
	r.PlanName = p.Name
	r.Cap = p.Cap
	return r
}

// Cancel flips the record to cancelled. Cancelling an already-cancelled
// or expired record leaves it cancelled; the transition is idempotent.
// This is a PURE function.
func Cancel(r Record) Record {
	r.Status = StatusCancelled
	return r
}

// ExpireDue flips an active record whose end date has passed to expired.
// Reports whether the record changed. Nothing calls this implicitly; an
// external scheduler drives expiration sweeps.
// This is a PURE function.
func ExpireDue(r Record, now time.Time) (Record, bool) {
	if r.Status == StatusActive && r.EndDate.Before(now) {
		r.Status = StatusExpired
		return r, true
	}
	return r, false
}
