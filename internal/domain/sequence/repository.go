package sequence

import "context"

// Repository is the read side of the persistence collaborator used for numbering
type Repository interface {
	// FindHighest returns the issued number of the scope with the largest running number.
	// found is false when the scope has no numbers yet.
	FindHighest(ctx context.Context, scope Scope) (number string, found bool, err error)

	// Exists reports whether number has already been issued for the scope's document table
	Exists(ctx context.Context, scope Scope, number string) (bool, error)
}

// Counter is implemented by backends that can hand out sequence values atomically
type Counter interface {
	// Increment advances the scope's counter and returns the new value.
	// The value returned is never below floor, so numbers issued before the
	// counter existed are skipped.
	Increment(ctx context.Context, scope Scope, floor int64) (int64, error)

	// Current returns the last value handed out for the scope without
	// advancing it, zero when the counter does not exist yet.
	Current(ctx context.Context, scope Scope) (int64, error)
}
