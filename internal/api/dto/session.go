package dto

import (
	"time"

	"github.com/walaka/walaka/internal/gate"
	"github.com/walaka/walaka/internal/types"
	"github.com/walaka/walaka/internal/validator"
)

// SessionResponse is the summary of a signed-in session and its gate
type SessionResponse struct {
	ID            string           `json:"id"`
	UserID        string           `json:"user_id"`
	Email         string           `json:"email,omitempty"`
	Role          types.UserRole   `json:"role"`
	EnvironmentID string           `json:"environment_id"`
	Policy        types.GatePolicy `json:"policy"`
	State         gate.State       `json:"state"`
	// Status is set once the trial status has been evaluated
	Status    *gate.Status `json:"status,omitempty"`
	Modal     *gate.Modal  `json:"modal,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
	ExpiresAt time.Time    `json:"expires_at"`
}

// DecisionRequest describes a user action about to be performed
type DecisionRequest struct {
	Action      gate.ActionID `json:"action,omitempty"`
	Destination string        `json:"destination,omitempty"`
	Selector    string        `json:"selector,omitempty"`
	Label       string        `json:"label,omitempty"`
	ElementID   string        `json:"element_id,omitempty"`
	// Intercept presents the restriction modal when the action is blocked
	Intercept bool `json:"intercept,omitempty"`
}

func (r *DecisionRequest) Validate() error {
	return validator.ValidateRequest(r)
}

func (r *DecisionRequest) ToRequest() gate.Request {
	return gate.Request{
		Action:      r.Action,
		Destination: r.Destination,
		Selector:    r.Selector,
		Label:       r.Label,
		ElementID:   r.ElementID,
	}
}

type DecisionResponse struct {
	gate.Decision
}

// MarksRequest lists the rendered elements to mark
type MarksRequest struct {
	Elements []DecisionRequest `json:"elements" validate:"required,min=1,dive"`
}

func (r *MarksRequest) Validate() error {
	return validator.ValidateRequest(r)
}

type MarksResponse struct {
	Marks []gate.Mark `json:"marks"`
}

type DismissModalResponse struct {
	Dismissed bool `json:"dismissed"`
}
