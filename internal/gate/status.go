package gate

import "github.com/walaka/walaka/internal/types"

// Status is the trial/subscription snapshot a session is evaluated against.
// It is immutable once delivered to an Evaluator.
type Status struct {
	DaysRemaining     int    `json:"days_remaining"`
	InvoicesRemaining int    `json:"invoices_remaining"`
	Subscribed        bool   `json:"subscribed"`
	Plan              string `json:"plan,omitempty"`
	// Assumed is set when no status could be obtained and the gate policy
	// supplied one.
	Assumed bool `json:"assumed,omitempty"`
	// Restricted only decides an assumed status. For a real status it is
	// derived from the counters, see Normalize.
	Restricted bool `json:"restricted"`
}

// NewStatus builds a trial status. Negative counts are clamped to zero.
func NewStatus(daysRemaining, invoicesRemaining int) Status {
	daysRemaining = max(daysRemaining, 0)
	invoicesRemaining = max(invoicesRemaining, 0)
	return Status{
		DaysRemaining:     daysRemaining,
		InvoicesRemaining: invoicesRemaining,
		Plan:              "trial",
		Restricted:        daysRemaining == 0 || invoicesRemaining == 0,
	}
}

// SubscribedStatus is the status of an account with a valid paid plan.
func SubscribedStatus(plan string) Status {
	return Status{Subscribed: true, Plan: plan}
}

// AssumedStatus is the status used when the wait for a real one ran out.
func AssumedStatus(policy types.GatePolicy) Status {
	return Status{
		Assumed:    true,
		Restricted: policy != types.GatePolicyFailOpen,
	}
}

// IsRestricted holds iff the trial is used up: no days or no invoices left.
// Subscribed accounts are never restricted.
func (s Status) IsRestricted() bool {
	switch {
	case s.Subscribed:
		return false
	case s.Assumed:
		return s.Restricted
	default:
		return s.DaysRemaining <= 0 || s.InvoicesRemaining <= 0
	}
}

// Normalize clamps the counters and recomputes Restricted from them
func (s Status) Normalize() Status {
	if !s.Subscribed {
		s.DaysRemaining = max(s.DaysRemaining, 0)
		s.InvoicesRemaining = max(s.InvoicesRemaining, 0)
	}
	s.Restricted = s.IsRestricted()
	return s
}
