package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"github.com/walaka/walaka/internal/types"
)

type Configuration struct {
	Deployment DeploymentConfig `validate:"required"`
	Server     ServerConfig     `validate:"required"`
	Logging    LoggingConfig    `validate:"required"`
	Storage    StorageConfig    `validate:"required"`
	Postgres   PostgresConfig
	Supabase   SupabaseConfig
	Auth       AuthConfig `validate:"required"`
	Cache      CacheConfig
	Sequence   SequenceConfig `validate:"required"`
	Gate       GateConfig     `validate:"required"`
	Trial      TrialConfig    `validate:"required"`
	RBAC       RBACConfig
}

type DeploymentConfig struct {
	Mode types.RunMode `validate:"required"`
}

type ServerConfig struct {
	Address string `validate:"required"`
}

type LoggingConfig struct {
	Level types.LogLevel `validate:"required"`
}

type StorageConfig struct {
	Backend types.StorageBackend `validate:"required,oneof=postgres supabase"`
}

type PostgresConfig struct {
	Host                   string
	Port                   int
	User                   string
	Password               string
	DBName                 string
	SSLMode                string
	MaxOpenConns           int `mapstructure:"max_open_conns"`
	MaxIdleConns           int `mapstructure:"max_idle_conns"`
	ConnMaxLifetimeMinutes int `mapstructure:"conn_max_lifetime_minutes"`
}

type SupabaseConfig struct {
	BaseURL    string `mapstructure:"base_url"`
	ServiceKey string `mapstructure:"service_key"`
}

type AuthConfig struct {
	Provider types.AuthProvider `validate:"required,oneof=supabase local"`
	// Secret is the HS256 key used to verify access tokens
	Secret string `validate:"required"`
}

type CacheConfig struct {
	Enabled    bool
	SessionTTL time.Duration `mapstructure:"session_ttl"`
	// TrialStatusTTL bounds how stale a cached trial status may be
	TrialStatusTTL time.Duration `mapstructure:"trial_status_ttl"`
}

type SequenceConfig struct {
	Strategy      types.SequenceStrategy `validate:"required,oneof=lookup counter"`
	MaxAttempts   uint64                 `mapstructure:"max_attempts" validate:"required,min=1"`
	RetryInterval time.Duration          `mapstructure:"retry_interval"`
}

type GateConfig struct {
	Policy       types.GatePolicy `validate:"required,oneof=fail_open fail_closed"`
	GracePeriod  time.Duration    `mapstructure:"grace_period"`
	PollAttempts int              `mapstructure:"poll_attempts" validate:"min=0"`
	PollInterval time.Duration    `mapstructure:"poll_interval"`
	// EnforceRolesAlways applies role rules to accounts that are not trial restricted
	EnforceRolesAlways bool `mapstructure:"enforce_roles_always"`
	// Secondary matchers applied to requests that carry no trial-guarded action id
	RestrictedDestinations []string `mapstructure:"restricted_destinations"`
	RestrictedSelectors    []string `mapstructure:"restricted_selectors"`
	MutationKeywords       []string `mapstructure:"mutation_keywords"`
}

type TrialConfig struct {
	Days     int `validate:"required,min=1"`
	Invoices int `validate:"required,min=1"`
}

type RBACConfig struct {
	RolesConfigPath string `mapstructure:"roles_config_path"`
}

func NewConfig() (*Configuration, error) {
	// A missing .env is normal outside local development
	_ = godotenv.Load()

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./internal/config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/walaka")

	v.SetEnvPrefix("WALAKA")
	v.SetEnvKeyReplacer(strings.NewReplacer(
		".", "_",
		"-", "_",
	))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		fmt.Printf("Error reading config file: %v\n", err)
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, err
		}
	} else {
		fmt.Printf("Using config file: %s\n", v.ConfigFileUsed())
	}

	var config Configuration
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	d := GetDefaultConfig()
	v.SetDefault("deployment.mode", d.Deployment.Mode)
	v.SetDefault("server.address", d.Server.Address)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("storage.backend", d.Storage.Backend)
	v.SetDefault("auth.provider", d.Auth.Provider)
	v.SetDefault("cache.enabled", d.Cache.Enabled)
	v.SetDefault("cache.session_ttl", d.Cache.SessionTTL)
	v.SetDefault("cache.trial_status_ttl", d.Cache.TrialStatusTTL)
	v.SetDefault("sequence.strategy", d.Sequence.Strategy)
	v.SetDefault("sequence.max_attempts", d.Sequence.MaxAttempts)
	v.SetDefault("sequence.retry_interval", d.Sequence.RetryInterval)
	v.SetDefault("gate.policy", d.Gate.Policy)
	v.SetDefault("gate.grace_period", d.Gate.GracePeriod)
	v.SetDefault("gate.poll_attempts", d.Gate.PollAttempts)
	v.SetDefault("gate.poll_interval", d.Gate.PollInterval)
	v.SetDefault("gate.enforce_roles_always", d.Gate.EnforceRolesAlways)
	v.SetDefault("gate.restricted_destinations", d.Gate.RestrictedDestinations)
	v.SetDefault("gate.restricted_selectors", d.Gate.RestrictedSelectors)
	v.SetDefault("gate.mutation_keywords", d.Gate.MutationKeywords)
	v.SetDefault("trial.days", d.Trial.Days)
	v.SetDefault("trial.invoices", d.Trial.Invoices)
}

func (c Configuration) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return err
	}

	if c.Sequence.Strategy == types.SequenceStrategyCounter && c.Storage.Backend != types.StorageBackendPostgres {
		return fmt.Errorf("sequence strategy %q requires the %q storage backend", c.Sequence.Strategy, types.StorageBackendPostgres)
	}
	if c.Storage.Backend == types.StorageBackendSupabase && c.Supabase.BaseURL == "" {
		return fmt.Errorf("supabase.base_url is required for the %q storage backend", types.StorageBackendSupabase)
	}
	if c.Auth.Provider == types.AuthProviderSupabase && c.Supabase.BaseURL == "" {
		return fmt.Errorf("supabase.base_url is required for the %q auth provider", types.AuthProviderSupabase)
	}
	return nil
}

// GetDefaultConfig returns a default configuration for local development
// This is useful for running scripts or tests
func GetDefaultConfig() *Configuration {
	return &Configuration{
		Deployment: DeploymentConfig{Mode: types.ModeLocal},
		Server:     ServerConfig{Address: ":8080"},
		Logging:    LoggingConfig{Level: types.LogLevelDebug},
		Storage:    StorageConfig{Backend: types.StorageBackendPostgres},
		Auth:       AuthConfig{Provider: types.AuthProviderLocal, Secret: "local-development-secret"},
		Cache:      CacheConfig{Enabled: true, SessionTTL: 12 * time.Hour, TrialStatusTTL: 30 * time.Second},
		Sequence: SequenceConfig{
			Strategy:      types.SequenceStrategyLookup,
			MaxAttempts:   5,
			RetryInterval: 50 * time.Millisecond,
		},
		Gate: GateConfig{
			Policy:       types.GatePolicyFailClosed,
			GracePeriod:  1500 * time.Millisecond,
			PollAttempts: 10,
			PollInterval: 100 * time.Millisecond,
			RestrictedDestinations: []string{
				"invoices.html",
				"clients/clients.html",
				"products.html",
				"banks/banks.html",
				"usermanagement-vanilla/",
			},
			RestrictedSelectors: []string{
				"#createInvoiceBtn",
				"#add-new-client-btn",
				"#add-new-product-btn",
				"#add-account-btn",
				"#empty-add-btn",
				".btn.primary-btn",
				"#addUserBtn",
				"#edit-user-btn",
				".user-create-btn",
				".user-edit-btn",
			},
			MutationKeywords: []string{
				"create", "add", "new", "generate", "salvar", "user", "utilizador", "editar", "edit", "save",
			},
		},
		Trial: TrialConfig{Days: 14, Invoices: 5},
	}
}

func (c PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"user=%s password=%s dbname=%s host=%s port=%d sslmode=%s",
		c.User,
		c.Password,
		c.DBName,
		c.Host,
		c.Port,
		c.SSLMode,
	)
}

// GetURL returns the connection string in URL form, as expected by the migration runner
func (c PostgresConfig) GetURL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.DBName,
		c.SSLMode,
	)
}
