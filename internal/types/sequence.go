package types

import (
	"github.com/samber/lo"
	ierr "github.com/walaka/walaka/internal/errors"
)

// ScopeKind identifies the family of documents a sequence number belongs to
type ScopeKind string

const (
	ScopeKindInvoiceGlobal    ScopeKind = "invoice-global"
	ScopeKindInvoicePerClient ScopeKind = "invoice-per-client"
	ScopeKindReceiptGlobal    ScopeKind = "receipt-global"
	ScopeKindCreditNoteGlobal ScopeKind = "credit-note-global"
)

// SequencePadding is the minimum width of the running number
const SequencePadding = 4

// ScopeDefinition describes how numbers of a scope kind are formatted and where they live
type ScopeDefinition struct {
	Kind        ScopeKind
	Prefix      string
	RequiresKey bool
	// Table and NumberColumn locate issued numbers in the persistence backend
	Table        string
	NumberColumn string
	// OwnerColumn narrows the lookup to the scope key when set
	OwnerColumn string
	// IDPrefix is used for the ids of records carrying numbers of this kind
	IDPrefix string
}

var scopeDefinitions = map[ScopeKind]ScopeDefinition{
	ScopeKindInvoiceGlobal: {
		Kind:         ScopeKindInvoiceGlobal,
		Prefix:       "INV",
		Table:        "invoices",
		NumberColumn: "invoice_number",
		IDPrefix:     UUID_PREFIX_INVOICE,
	},
	ScopeKindInvoicePerClient: {
		Kind:         ScopeKindInvoicePerClient,
		Prefix:       "CLI",
		RequiresKey:  true,
		Table:        "invoices",
		NumberColumn: "invoice_number",
		OwnerColumn:  "client_id",
		IDPrefix:     UUID_PREFIX_INVOICE,
	},
	ScopeKindReceiptGlobal: {
		Kind:         ScopeKindReceiptGlobal,
		Prefix:       "REC",
		Table:        "receipts",
		NumberColumn: "receipt_number",
		IDPrefix:     UUID_PREFIX_RECEIPT,
	},
	ScopeKindCreditNoteGlobal: {
		Kind:         ScopeKindCreditNoteGlobal,
		Prefix:       "NC",
		Table:        "credit_notes",
		NumberColumn: "credit_note_number",
		IDPrefix:     UUID_PREFIX_CREDIT_NOTE,
	},
}

// GetScopeDefinition returns the definition for a scope kind
func GetScopeDefinition(kind ScopeKind) (ScopeDefinition, bool) {
	def, ok := scopeDefinitions[kind]
	return def, ok
}

// ScopeKinds returns every known scope kind
func ScopeKinds() []ScopeKind {
	return lo.Keys(scopeDefinitions)
}

func (k ScopeKind) String() string {
	return string(k)
}

func (k ScopeKind) Validate() error {
	if _, ok := scopeDefinitions[k]; !ok {
		return ierr.NewError("unknown scope kind").
			WithHintf("Unknown document numbering scope %q", string(k)).
			WithReportableDetails(map[string]any{
				"scope_kind":    k,
				"allowed_kinds": ScopeKinds(),
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}
