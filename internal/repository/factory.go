package repository

import (
	"context"

	"github.com/walaka/walaka/internal/config"
	"github.com/walaka/walaka/internal/domain/document"
	"github.com/walaka/walaka/internal/domain/sequence"
	"github.com/walaka/walaka/internal/domain/subscription"
	"github.com/walaka/walaka/internal/domain/user"
	"github.com/walaka/walaka/internal/logger"
	"github.com/walaka/walaka/internal/postgres"
	postgresRepo "github.com/walaka/walaka/internal/repository/postgres"
	supabaseRepo "github.com/walaka/walaka/internal/repository/supabase"
	"github.com/walaka/walaka/internal/types"
	"go.uber.org/fx"
)

// Transactor runs fn atomically when the backend supports it
type Transactor interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type noopTransactor struct{}

func (noopTransactor) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// NoopTransactor runs fn directly, for backends without transactions
func NoopTransactor() Transactor {
	return noopTransactor{}
}

// Stores is the set of repositories backing the services
type Stores struct {
	Sequences     sequence.Repository
	Counter       sequence.Counter // nil when the backend has no atomic counter
	Users         user.Repository
	Subscriptions subscription.Repository
	Documents     document.Repository
	Tx            Transactor
}

// NewStores opens the configured storage backend. The postgres pool is
// closed when the application stops.
func NewStores(lc fx.Lifecycle, cfg *config.Configuration, logger *logger.Logger) (*Stores, error) {
	switch cfg.Storage.Backend {
	case types.StorageBackendSupabase:
		client := supabaseRepo.NewClient(cfg)
		logger.Infow("using supabase storage backend", "base_url", cfg.Supabase.BaseURL)
		return &Stores{
			Sequences:     supabaseRepo.NewSequenceRepository(client, logger),
			Users:         supabaseRepo.NewUserRepository(client, logger),
			Subscriptions: supabaseRepo.NewSubscriptionRepository(client, logger),
			Documents:     supabaseRepo.NewDocumentRepository(client, logger),
			Tx:            NoopTransactor(),
		}, nil
	default:
		db, err := postgres.NewDB(cfg, logger)
		if err != nil {
			return nil, err
		}
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				return db.Close()
			},
		})
		logger.Infow("using postgres storage backend", "host", cfg.Postgres.Host, "dbname", cfg.Postgres.DBName)
		return NewPostgresStores(db, logger), nil
	}
}

// NewPostgresStores wires every repository to db
func NewPostgresStores(db *postgres.DB, logger *logger.Logger) *Stores {
	return &Stores{
		Sequences:     postgresRepo.NewSequenceRepository(db, logger),
		Counter:       postgresRepo.NewSequenceCounter(db, logger),
		Users:         postgresRepo.NewUserRepository(db, logger),
		Subscriptions: postgresRepo.NewSubscriptionRepository(db, logger),
		Documents:     postgresRepo.NewDocumentRepository(db, logger),
		Tx:            db,
	}
}

// Module provides the stores and the individual repositories
func Module() fx.Option {
	return fx.Options(
		fx.Provide(
			NewStores,
			func(s *Stores) sequence.Repository { return s.Sequences },
			func(s *Stores) user.Repository { return s.Users },
			func(s *Stores) subscription.Repository { return s.Subscriptions },
			func(s *Stores) document.Repository { return s.Documents },
			func(s *Stores) Transactor { return s.Tx },
		),
	)
}
