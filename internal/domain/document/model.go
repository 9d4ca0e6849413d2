package document

import (
	"time"

	"github.com/walaka/walaka/internal/types"
)

// Document is a numbered record: an invoice, a receipt or a credit note.
// Only the fields the numbering and trial rules depend on are modelled.
type Document struct {
	ID            string          `db:"id" json:"id"`
	Kind          types.ScopeKind `db:"-" json:"kind"`
	Number        string          `db:"number" json:"number"`
	ClientID      string          `db:"client_id" json:"client_id,omitempty"`
	EnvironmentID string          `db:"environment_id" json:"environment_id"`
	UserID        string          `db:"user_id" json:"user_id"`
	// Year is the numbering year, taken from the issue date
	Year      int       `db:"-" json:"year"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// New prepares a document of kind owned by userID. The number is assigned at issue time.
func New(kind types.ScopeKind, clientID, environmentID, userID string, now time.Time) *Document {
	def, _ := types.GetScopeDefinition(kind)
	return &Document{
		ID:            types.GenerateUUIDWithPrefix(def.IDPrefix),
		Kind:          kind,
		ClientID:      clientID,
		EnvironmentID: environmentID,
		UserID:        userID,
		Year:          now.Year(),
		CreatedAt:     now,
	}
}
