package types

type RunMode string

const (
	// ModeLocal is the mode for running the API server on a developer machine
	ModeLocal RunMode = "local"
	// ModeAPI is the mode for running the API server in a deployment
	ModeAPI RunMode = "api"
)

type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// StorageBackend selects the persistence collaborator implementation
type StorageBackend string

const (
	StorageBackendPostgres StorageBackend = "postgres"
	StorageBackendSupabase StorageBackend = "supabase"
)

type AuthProvider string

const (
	AuthProviderSupabase AuthProvider = "supabase"
	AuthProviderLocal    AuthProvider = "local"
)

// SequenceStrategy selects how the next sequence value of a scope is obtained
type SequenceStrategy string

const (
	// SequenceStrategyLookup reads the highest issued number and rechecks the candidate
	SequenceStrategyLookup SequenceStrategy = "lookup"
	// SequenceStrategyCounter increments a backend-held counter per scope atomically
	SequenceStrategyCounter SequenceStrategy = "counter"
)

// GatePolicy decides how guarded actions behave while the trial status cannot be determined
type GatePolicy string

const (
	GatePolicyFailClosed GatePolicy = "fail_closed"
	GatePolicyFailOpen   GatePolicy = "fail_open"
)

func (p GatePolicy) Validate() bool {
	return p == GatePolicyFailClosed || p == GatePolicyFailOpen
}

const (
	HeaderAuthorization = "Authorization"
	HeaderEnvironment   = "X-Environment-ID"
	HeaderRequestID     = "X-Request-ID"
)
