package gate

import "fmt"

type ModalKind string

const (
	ModalKindTrial      ModalKind = "trial"
	ModalKindPermission ModalKind = "permission"
)

const (
	trialModalTitle      = "Plan Expired"
	permissionModalTitle = "Restricted Action"
	upgradeFooter        = "Please upgrade to continue using all features."
	unverifiedMessage    = "Your trial status could not be verified."
)

// Modal explains why an intercepted action did not run
type Modal struct {
	Kind     ModalKind `json:"kind"`
	Title    string    `json:"title"`
	Action   ActionID  `json:"action,omitempty"`
	Label    string    `json:"label"`
	Messages []string  `json:"messages"`
	Footer   string    `json:"footer,omitempty"`
}

func newModal(d Decision, label string) *Modal {
	m := &Modal{
		Action:   d.Action,
		Label:    label,
		Messages: append([]string(nil), d.Messages...),
	}
	switch d.Reason {
	case ReasonTrialRestricted:
		m.Kind = ModalKindTrial
		m.Title = trialModalTitle
		m.Footer = upgradeFooter
	default:
		m.Kind = ModalKindPermission
		m.Title = permissionModalTitle
	}
	return m
}

// trialMessages names every limit the status has hit
func trialMessages(s Status, trialDays, trialInvoices int) []string {
	if s.Assumed {
		return []string{unverifiedMessage}
	}

	var msgs []string
	if s.DaysRemaining == 0 {
		msgs = append(msgs, fmt.Sprintf("Your %d-day trial period has expired.", trialDays))
	}
	if s.InvoicesRemaining == 0 {
		msgs = append(msgs, fmt.Sprintf("You have used all %d of your free invoices.", trialInvoices))
	}
	return msgs
}

func permissionMessage(label string) string {
	return fmt.Sprintf("You do not have permission to %s.", label)
}
