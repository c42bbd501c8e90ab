package types

import (
	"time"

	"github.com/google/uuid"
)

// UserPlan statuses. The backend may assign other values (e.g. via payment
// webhooks); only 'active' grants access.
const (
	UserPlanStatusActive    = "active"
	UserPlanStatusCancelled = "cancelled"
)

// UserPlan binds a user to a plan for an interval. A user may hold any number
// of rows; access is defined by the existence of at least one row with
// status='active'. Cancellation flips the status and auto_renew but never
// deletes the row.
type UserPlan struct {
	ID        uuid.UUID  `json:"id"`
	UserID    uuid.UUID  `json:"user_id"`
	PlanID    uuid.UUID  `json:"plan_id"`
	StartDate time.Time  `json:"start_date"`
	EndDate   *time.Time `json:"end_date,omitempty"` // nil = open-ended.
	Status    string     `json:"status" example:"active"`
	AutoRenew bool       `json:"auto_renew"`
	IsTrial   bool       `json:"is_trial"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// CreateUserPlanParams is the insert shape for a subscription row.
type CreateUserPlanParams struct {
	UserID    uuid.UUID
	PlanID    uuid.UUID
	StartDate time.Time
	EndDate   *time.Time
	Status    string
	AutoRenew bool
	IsTrial   bool
}
