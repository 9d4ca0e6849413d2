package service

import (
	"context"
	"time"

	"github.com/sourcegraph/conc/pool"
	"github.com/walaka/walaka/internal/cache"
	"github.com/walaka/walaka/internal/domain/subscription"
	"github.com/walaka/walaka/internal/domain/user"
	ierr "github.com/walaka/walaka/internal/errors"
	"github.com/walaka/walaka/internal/gate"
	"github.com/walaka/walaka/internal/types"
)

const day = 24 * time.Hour

type TrialService interface {
	// GetStatus computes the trial status of the account userID belongs to.
	// A user without a profile row owns a trial started now.
	GetStatus(ctx context.Context, userID string) (gate.Status, error)

	// AccountStatus computes the trial status of an already resolved account
	AccountStatus(ctx context.Context, account *user.Account) (gate.Status, error)

	// StatusSource fetches the status of account on demand
	StatusSource(account *user.Account) gate.StatusSource

	// Invalidate drops the cached status of the account owned by ownerID
	Invalidate(ctx context.Context, ownerID string)
}

type trialService struct {
	ServiceParams
	cache cache.Cache
	now   func() time.Time
}

func NewTrialService(params ServiceParams) TrialService {
	return &trialService{
		ServiceParams: params,
		cache:         cache.NewInMemoryCache(params.Config.Cache.TrialStatusTTL, params.Config.Cache.Enabled),
		now:           time.Now,
	}
}

func (s *trialService) GetStatus(ctx context.Context, userID string) (gate.Status, error) {
	account, err := user.ResolveAccount(ctx, s.UserRepo, userID)
	if err != nil {
		if !ierr.IsNotFound(err) {
			return gate.Status{}, err
		}
		account = user.DefaultAccount(userID, "", s.now().UTC())
	}
	return s.AccountStatus(ctx, account)
}

func (s *trialService) AccountStatus(ctx context.Context, account *user.Account) (gate.Status, error) {
	userID := account.User.ID
	key := cache.GenerateKey(cache.PrefixTrialStatus, account.Owner.ID)
	if cached, ok := s.cache.Get(ctx, key); ok {
		if status, ok := cached.(gate.Status); ok {
			return status, nil
		}
	}

	var (
		sub          *subscription.Subscription
		invoiceCount int
	)

	p := pool.New().WithErrors().WithContext(ctx).WithFirstError().WithCancelOnError()
	p.Go(func(ctx context.Context) error {
		if account.EnvironmentID == "" {
			return nil
		}
		var err error
		sub, err = s.SubRepo.GetLatest(ctx, account.EnvironmentID)
		return err
	})
	p.Go(func(ctx context.Context) error {
		var err error
		invoiceCount, err = s.DocumentRepo.CountByUser(ctx, types.ScopeKindInvoiceGlobal, account.Owner.ID)
		return err
	})
	if err := p.Wait(); err != nil {
		s.Logger.Errorw("failed to compute trial status",
			"user_id", userID,
			"owner_id", account.Owner.ID,
			"error", err,
		)
		return gate.Status{}, err
	}

	status := s.compute(account.Owner, sub, invoiceCount)
	s.cache.Set(ctx, key, status, 0)

	s.Logger.Debugw("computed trial status",
		"user_id", userID,
		"owner_id", account.Owner.ID,
		"environment_id", account.EnvironmentID,
		"subscribed", status.Subscribed,
		"days_remaining", status.DaysRemaining,
		"invoices_remaining", status.InvoicesRemaining,
		"restricted", status.IsRestricted(),
	)
	return status, nil
}

// compute applies the trial limits to the owner's account
func (s *trialService) compute(owner *user.User, sub *subscription.Subscription, invoiceCount int) gate.Status {
	now := s.now()
	if sub.IsValid(now) {
		return gate.SubscribedStatus(sub.PlanName())
	}

	daysElapsed := 0
	if !owner.CreatedAt.IsZero() && now.After(owner.CreatedAt) {
		daysElapsed = int(now.Sub(owner.CreatedAt) / day)
	}

	return gate.NewStatus(
		s.Config.Trial.Days-daysElapsed,
		s.Config.Trial.Invoices-invoiceCount,
	)
}

func (s *trialService) StatusSource(account *user.Account) gate.StatusSource {
	return gate.StatusSourceFunc(func(ctx context.Context) (gate.Status, error) {
		return s.AccountStatus(ctx, account)
	})
}

func (s *trialService) Invalidate(ctx context.Context, ownerID string) {
	s.cache.Delete(ctx, cache.GenerateKey(cache.PrefixTrialStatus, ownerID))
}
