package gate

import (
	"sync"

	"github.com/walaka/walaka/internal/config"
	"github.com/walaka/walaka/internal/metrics"
	"github.com/walaka/walaka/internal/types"
)

type State string

const (
	StateUnknown   State = "unknown"
	StateEvaluated State = "evaluated"
)

type Reason string

const (
	ReasonNone            Reason = "none"
	ReasonLoading         Reason = "loading"
	ReasonTrialRestricted Reason = "trial_restricted"
	ReasonRolePermission  Reason = "role_permission"
)

// Affordance is the visual state a rendered control should carry
type Affordance string

const (
	AffordanceNone    Affordance = "none"
	AffordanceLoading Affordance = "loading"
	AffordanceLocked  Affordance = "locked"
)

const fallbackLabel = "perform this action"

// Request identifies the control or navigation a user is acting on.
// Action is preferred; the other fields feed the secondary matchers.
type Request struct {
	Action      ActionID `json:"action,omitempty"`
	Destination string   `json:"destination,omitempty"`
	Selector    string   `json:"selector,omitempty"`
	Label       string   `json:"label,omitempty"`
	ElementID   string   `json:"element_id,omitempty"`
}

type Decision struct {
	Allowed  bool     `json:"allowed"`
	State    State    `json:"state"`
	Reason   Reason   `json:"reason"`
	Action   ActionID `json:"action,omitempty"`
	Messages []string `json:"messages,omitempty"`
	// Modal is set only when this decision presented one
	Modal *Modal `json:"modal,omitempty"`
}

// Mark is the render-time outcome for one element
type Mark struct {
	ElementID  string     `json:"element_id"`
	Affordance Affordance `json:"affordance"`
	Changed    bool       `json:"changed"`
}

// Authorizer answers role permission questions
type Authorizer interface {
	HasPermission(role types.UserRole, entity string, action string) bool
}

type Options struct {
	Policy types.GatePolicy
	// EnforceRolesAlways applies role rules even when the trial is not restricted
	EnforceRolesAlways bool
	TrialDays          int
	TrialInvoices      int
}

func OptionsFromConfig(cfg *config.Configuration) Options {
	return Options{
		Policy:             cfg.Gate.Policy,
		EnforceRolesAlways: cfg.Gate.EnforceRolesAlways,
		TrialDays:          cfg.Trial.Days,
		TrialInvoices:      cfg.Trial.Invoices,
	}
}

// Evaluator holds the restriction state of one session. It starts Unknown and
// moves to Evaluated exactly once, when Resolve is first called.
type Evaluator struct {
	mu     sync.Mutex
	rules  *Rules
	authz  Authorizer
	role   types.UserRole
	opts   Options
	state  State
	status Status
	done   chan struct{}
	modal  *Modal
	marks  map[string]Affordance
}

func NewEvaluator(rules *Rules, authz Authorizer, role types.UserRole, opts Options) *Evaluator {
	if !opts.Policy.Validate() {
		opts.Policy = types.GatePolicyFailClosed
	}
	return &Evaluator{
		rules: rules,
		authz: authz,
		role:  types.NormalizeUserRole(string(role)),
		opts:  opts,
		state: StateUnknown,
		done:  make(chan struct{}),
		marks: make(map[string]Affordance),
	}
}

// Resolve delivers the status. Only the first call has an effect; it
// reports whether this call performed the transition.
func (e *Evaluator) Resolve(status Status) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == StateEvaluated {
		return false
	}
	e.status = status.Normalize()
	e.state = StateEvaluated
	close(e.done)
	return true
}

// Done is closed once the evaluator leaves the Unknown state
func (e *Evaluator) Done() <-chan struct{} {
	return e.done
}

func (e *Evaluator) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Status returns the resolved status, false while Unknown
func (e *Evaluator) Status() (Status, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status, e.state == StateEvaluated
}

func (e *Evaluator) Role() types.UserRole {
	return e.role
}

func (e *Evaluator) Policy() types.GatePolicy {
	return e.opts.Policy
}

// Decide evaluates req without side effects on the session
func (e *Evaluator) Decide(req Request) Decision {
	e.mu.Lock()
	defer e.mu.Unlock()

	d, _ := e.decide(req)
	metrics.RecordGateDecision(d.Allowed, string(d.Reason))
	return d
}

// Recheck decides req against status instead of the session's snapshot,
// for submit paths whose outcome changes the trial counters. The session
// state is left untouched.
func (e *Evaluator) Recheck(req Request, status Status) Decision {
	e.mu.Lock()
	defer e.mu.Unlock()

	state, snapshot := e.state, e.status
	e.state, e.status = StateEvaluated, status.Normalize()
	d, _ := e.decide(req)
	e.state, e.status = state, snapshot

	metrics.RecordGateDecision(d.Allowed, string(d.Reason))
	return d
}

// Intercept is the click-time path. A blocked decision presents a modal
// unless one is already open.
func (e *Evaluator) Intercept(req Request) Decision {
	e.mu.Lock()
	defer e.mu.Unlock()

	d, label := e.decide(req)
	metrics.RecordGateDecision(d.Allowed, string(d.Reason))

	if d.Allowed || d.Reason == ReasonLoading || e.modal != nil {
		return d
	}
	e.modal = newModal(d, label)
	d.Modal = e.modal
	return d
}

// OpenModal returns the modal currently presented, if any
func (e *Evaluator) OpenModal() *Modal {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.modal
}

// DismissModal closes the open modal and reports whether one was open
func (e *Evaluator) DismissModal() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	open := e.modal != nil
	e.modal = nil
	return open
}

// MarkRestricted is the render-time path. An element once locked stays
// locked and re-marking it changes nothing.
func (e *Evaluator) MarkRestricted(req Request) Mark {
	e.mu.Lock()
	defer e.mu.Unlock()

	d, _ := e.decide(req)
	next := affordanceFor(d)
	mark := Mark{ElementID: req.ElementID, Affordance: next}
	if req.ElementID == "" {
		mark.Changed = next != AffordanceNone
		return mark
	}

	prev, seen := e.marks[req.ElementID]
	if prev == AffordanceLocked {
		mark.Affordance = AffordanceLocked
		return mark
	}
	if !seen && next == AffordanceNone {
		return mark
	}

	e.marks[req.ElementID] = next
	mark.Changed = prev != next
	return mark
}

// decide must be called with mu held. The second return is the label used
// to name the action to the user.
func (e *Evaluator) decide(req Request) (Decision, string) {
	action, known := e.rules.Lookup(req.Action)
	label := e.labelFor(req, action, known)
	trialGuarded := (known && action.TrialGuarded) || e.rules.matchesSecondary(req)

	d := Decision{
		Allowed: true,
		State:   e.state,
		Reason:  ReasonNone,
		Action:  req.Action,
	}

	// unguarded requests are never blocked
	if !trialGuarded && !known {
		return d, label
	}

	if e.state == StateUnknown && e.opts.Policy == types.GatePolicyFailClosed {
		d.Allowed = false
		d.Reason = ReasonLoading
		return d, label
	}

	restricted := e.state == StateEvaluated && e.status.IsRestricted()
	if restricted && trialGuarded {
		d.Allowed = false
		d.Reason = ReasonTrialRestricted
		d.Messages = trialMessages(e.status, e.opts.TrialDays, e.opts.TrialInvoices)
		return d, label
	}

	if known && (restricted || e.opts.EnforceRolesAlways) && !e.authz.HasPermission(e.role, action.Entity, action.Verb) {
		d.Allowed = false
		d.Reason = ReasonRolePermission
		d.Messages = []string{permissionMessage(label)}
		return d, label
	}

	return d, label
}

func (e *Evaluator) labelFor(req Request, action Action, known bool) string {
	switch {
	case known && action.Label != "":
		return action.Label
	case req.Label != "":
		return req.Label
	default:
		return fallbackLabel
	}
}

func affordanceFor(d Decision) Affordance {
	switch {
	case d.Allowed:
		return AffordanceNone
	case d.Reason == ReasonLoading:
		return AffordanceLoading
	default:
		return AffordanceLocked
	}
}
