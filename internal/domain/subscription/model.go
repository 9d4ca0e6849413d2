package subscription

import (
	"strings"
	"time"
)

const (
	StatusActive = "active"
	PlanTrial    = "trial"
)

// Subscription is a paid plan held by an environment
type Subscription struct {
	ID            string    `db:"id" json:"id"`
	EnvironmentID string    `db:"environment_id" json:"environment_id"`
	Plan          string    `db:"plan" json:"plan"`
	Status        string    `db:"status" json:"status"`
	EndDate       time.Time `db:"end_date" json:"end_date"`
}

// IsValid reports whether the subscription lifts trial limits at now:
// active, unexpired and not itself a trial plan.
func (s *Subscription) IsValid(now time.Time) bool {
	if s == nil {
		return false
	}
	return s.Status == StatusActive &&
		!s.EndDate.IsZero() &&
		s.EndDate.After(now) &&
		s.Plan != "" &&
		!strings.EqualFold(s.Plan, PlanTrial)
}

// PlanName returns the display name of the plan
func (s *Subscription) PlanName() string {
	if s == nil || s.Plan == "" {
		return "Trial"
	}
	return strings.ToUpper(s.Plan[:1]) + strings.ToLower(s.Plan[1:])
}
