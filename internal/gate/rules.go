package gate

import (
	"sort"
	"strings"

	"github.com/samber/lo"
	"github.com/walaka/walaka/internal/config"
)

// ActionID is a stable "entity.verb" identifier of a guarded action
type ActionID string

const (
	ActionInvoiceCreate     ActionID = "invoice.create"
	ActionReceiptCreate     ActionID = "receipt.create"
	ActionCreditNoteCreate  ActionID = "credit_note.create"
	ActionClientCreate      ActionID = "client.create"
	ActionClientUpdate      ActionID = "client.update"
	ActionClientDelete      ActionID = "client.delete"
	ActionProductCreate     ActionID = "product.create"
	ActionProductUpdate     ActionID = "product.update"
	ActionProductDelete     ActionID = "product.delete"
	ActionBankAccountCreate ActionID = "bank_account.create"
	ActionBankAccountUpdate ActionID = "bank_account.update"
	ActionBankAccountDelete ActionID = "bank_account.delete"
	ActionUserCreate        ActionID = "user.create"
	ActionUserUpdate        ActionID = "user.update"
	ActionUserDelete        ActionID = "user.delete"
	ActionUserChangeStatus  ActionID = "user.change_status"
	ActionSettingsUpdate    ActionID = "settings.update"
)

// Action describes one entry of the action table
type Action struct {
	ID     ActionID `json:"id"`
	Entity string   `json:"entity"`
	Verb   string   `json:"verb"`
	// Label completes "You do not have permission to ..."
	Label string `json:"label"`
	// TrialGuarded actions are blocked while the trial is restricted
	TrialGuarded bool `json:"trial_guarded"`
}

var defaultActions = []Action{
	{ID: ActionInvoiceCreate, Label: "create invoices", TrialGuarded: true},
	{ID: ActionReceiptCreate, Label: "create receipts", TrialGuarded: true},
	{ID: ActionCreditNoteCreate, Label: "create credit notes", TrialGuarded: true},
	{ID: ActionClientCreate, Label: "add new clients", TrialGuarded: true},
	{ID: ActionClientUpdate, Label: "edit clients", TrialGuarded: true},
	{ID: ActionClientDelete, Label: "delete clients"},
	{ID: ActionProductCreate, Label: "add new products", TrialGuarded: true},
	{ID: ActionProductUpdate, Label: "edit products", TrialGuarded: true},
	{ID: ActionProductDelete, Label: "delete products"},
	{ID: ActionBankAccountCreate, Label: "add bank accounts", TrialGuarded: true},
	{ID: ActionBankAccountUpdate, Label: "edit bank accounts", TrialGuarded: true},
	{ID: ActionBankAccountDelete, Label: "delete bank accounts"},
	{ID: ActionUserCreate, Label: "add new users", TrialGuarded: true},
	{ID: ActionUserUpdate, Label: "edit users", TrialGuarded: true},
	{ID: ActionUserDelete, Label: "delete users"},
	{ID: ActionUserChangeStatus, Label: "change user status"},
	{ID: ActionSettingsUpdate, Label: "change settings", TrialGuarded: true},
}

// Split returns the entity and verb parts of the id
func (id ActionID) Split() (entity string, verb string, ok bool) {
	entity, verb, ok = strings.Cut(string(id), ".")
	if !ok || entity == "" || verb == "" {
		return "", "", false
	}
	return entity, verb, true
}

// Rules holds the action table and the secondary matchers applied to
// requests that do not name a known action.
type Rules struct {
	actions      map[ActionID]Action
	destinations []string
	selectors    []string
	keywords     []string
}

// NewRules builds the default action table with the matchers from config
func NewRules(cfg config.GateConfig) *Rules {
	actions := make(map[ActionID]Action, len(defaultActions))
	for _, a := range defaultActions {
		a.Entity, a.Verb, _ = a.ID.Split()
		actions[a.ID] = a
	}

	return &Rules{
		actions:      actions,
		destinations: lo.Compact(cfg.RestrictedDestinations),
		selectors:    lo.Compact(cfg.RestrictedSelectors),
		keywords: lo.Compact(lo.Map(cfg.MutationKeywords, func(k string, _ int) string {
			return strings.ToLower(strings.TrimSpace(k))
		})),
	}
}

// Lookup returns the table entry for id
func (r *Rules) Lookup(id ActionID) (Action, bool) {
	a, ok := r.actions[id]
	return a, ok
}

// Actions lists the action table ordered by id
func (r *Rules) Actions() []Action {
	out := lo.Values(r.actions)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// matchesSecondary reports whether the destination, selector or label of
// req hits one of the configured matchers.
func (r *Rules) matchesSecondary(req Request) bool {
	if req.Destination != "" {
		for _, d := range r.destinations {
			if strings.Contains(req.Destination, d) {
				return true
			}
		}
	}
	if req.Selector != "" && lo.Contains(r.selectors, req.Selector) {
		return true
	}
	if label := strings.ToLower(req.Label); label != "" {
		for _, k := range r.keywords {
			if strings.Contains(label, k) {
				return true
			}
		}
	}
	return false
}
