package types

import (
	"fmt"

	"github.com/oklog/ulid/v2"
)

// GenerateUUID returns a k-sortable unique identifier
func GenerateUUID() string {
	return ulid.Make().String()
}

// GenerateUUIDWithPrefix returns a k-sortable unique identifier
// with a prefix ex inv_01HZX3Q4M9V6T1N0J5F8K2B7C3
func GenerateUUIDWithPrefix(prefix string) string {
	if prefix == "" {
		return GenerateUUID()
	}
	return fmt.Sprintf("%s_%s", prefix, GenerateUUID())
}

const (
	// Prefixes for all domains and entities

	UUID_PREFIX_INVOICE     = "inv"
	UUID_PREFIX_RECEIPT     = "rec"
	UUID_PREFIX_CREDIT_NOTE = "cn"
	UUID_PREFIX_SESSION     = "sess"
	UUID_PREFIX_REQUEST     = "req"
)
