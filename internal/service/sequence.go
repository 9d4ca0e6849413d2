package service

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/cockroachdb/errors"
	"github.com/walaka/walaka/internal/api/dto"
	"github.com/walaka/walaka/internal/domain/sequence"
	ierr "github.com/walaka/walaka/internal/errors"
	"github.com/walaka/walaka/internal/metrics"
	"github.com/walaka/walaka/internal/types"
)

const (
	collisionStageRecheck = "recheck"
	collisionStageWrite   = "write"
)

// errNumberTaken signals a candidate that another writer already holds
var errNumberTaken = errors.New("sequence number already taken")

// PersistFunc stores the record carrying number. It must fail with an
// ierr.ErrAlreadyExists marked error when the number is already taken.
type PersistFunc func(ctx context.Context, number string) error

type SequenceService interface {
	// Next returns the next free number for the requested scope
	Next(ctx context.Context, req dto.NextSequenceRequest) (*dto.NextSequenceResponse, error)

	// Generate returns a number that was free when it was checked. It only
	// reads, so the number is not reserved under either strategy.
	Generate(ctx context.Context, scope sequence.Scope) (string, error)

	// Issue generates a number and hands it to persist, generating a new one
	// whenever persist reports the number as taken.
	Issue(ctx context.Context, scope sequence.Scope, persist PersistFunc) (string, error)
}

type sequenceService struct {
	ServiceParams
}

func NewSequenceService(params ServiceParams) SequenceService {
	return &sequenceService{
		ServiceParams: params,
	}
}

func (s *sequenceService) Next(ctx context.Context, req dto.NextSequenceRequest) (*dto.NextSequenceResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	scope, err := req.ToScope(time.Now().UTC())
	if err != nil {
		return nil, err
	}

	number, err := s.Generate(ctx, scope)
	if err != nil {
		return nil, err
	}

	return &dto.NextSequenceResponse{
		Number:    number,
		ScopeKind: scope.Kind(),
		Prefix:    scope.Prefix(),
	}, nil
}

func (s *sequenceService) Generate(ctx context.Context, scope sequence.Scope) (string, error) {
	return s.issue(ctx, scope, nil, false)
}

func (s *sequenceService) Issue(ctx context.Context, scope sequence.Scope, persist PersistFunc) (string, error) {
	return s.issue(ctx, scope, persist, true)
}

// issue runs the generate and persist loop. reserve advances the backend
// counter under the counter strategy.
func (s *sequenceService) issue(ctx context.Context, scope sequence.Scope, persist PersistFunc, reserve bool) (string, error) {
	var (
		number  string
		attempt int
	)

	op := func() error {
		attempt++

		candidate, err := s.candidate(ctx, scope, reserve)
		if err != nil {
			if errors.Is(err, errNumberTaken) {
				s.logCollision(scope, candidate, attempt, collisionStageRecheck)
				return err
			}
			return backoff.Permanent(err)
		}

		if persist != nil {
			if err := persist(ctx, candidate); err != nil {
				if ierr.IsAlreadyExists(err) {
					s.logCollision(scope, candidate, attempt, collisionStageWrite)
					return errNumberTaken
				}
				return backoff.Permanent(err)
			}
		}

		number = candidate
		return nil
	}

	if err := backoff.Retry(op, s.retryPolicy(ctx)); err != nil {
		if errors.Is(err, errNumberTaken) {
			return "", ierr.WithError(err).
				WithHint("could not generate a unique number, please retry").
				WithReportableDetails(map[string]any{
					"scope":    scope.CounterKey(),
					"attempts": attempt,
				}).
				Mark(ierr.ErrAlreadyExists)
		}
		return "", err
	}

	if !reserve {
		s.Logger.Debugw("previewed sequence number",
			"scope", scope.CounterKey(),
			"number", number,
			"strategy", s.strategy(),
		)
		return number, nil
	}

	metrics.RecordSequenceIssued(scope.Kind().String(), string(s.strategy()))
	s.Logger.Debugw("issued sequence number",
		"scope", scope.CounterKey(),
		"number", number,
		"attempts", attempt,
		"strategy", s.strategy(),
	)
	return number, nil
}

// candidate computes the next number of scope. Under the lookup strategy the
// number is rechecked and errNumberTaken is returned along with it when taken.
// Under the counter strategy only a reserving call advances the counter.
func (s *sequenceService) candidate(ctx context.Context, scope sequence.Scope, reserve bool) (string, error) {
	highest, found, err := s.SequenceRepo.FindHighest(ctx, scope)
	if err != nil {
		return "", err
	}

	next := int64(1)
	if found {
		if seq, ok := sequence.ParseSequence(highest); ok {
			next = seq + 1
		}
	}

	if s.strategy() == types.SequenceStrategyCounter {
		if !reserve {
			current, err := s.Counter.Current(ctx, scope)
			if err != nil {
				return "", err
			}
			return scope.Format(max(current+1, next)), nil
		}
		value, err := s.Counter.Increment(ctx, scope, next)
		if err != nil {
			return "", err
		}
		return scope.Format(value), nil
	}

	number := scope.Format(next)
	exists, err := s.SequenceRepo.Exists(ctx, scope, number)
	if err != nil {
		return "", err
	}
	if exists {
		return number, errNumberTaken
	}
	return number, nil
}

// strategy falls back to lookup when the backend has no counter
func (s *sequenceService) strategy() types.SequenceStrategy {
	if s.Config.Sequence.Strategy == types.SequenceStrategyCounter && s.Counter != nil {
		return types.SequenceStrategyCounter
	}
	return types.SequenceStrategyLookup
}

func (s *sequenceService) retryPolicy(ctx context.Context) backoff.BackOff {
	var b backoff.BackOff = &backoff.StopBackOff{}
	// a zero retry count means unlimited to WithMaxRetries
	if retries := s.Config.Sequence.MaxAttempts; retries > 1 {
		b = backoff.WithMaxRetries(backoff.NewConstantBackOff(s.Config.Sequence.RetryInterval), retries-1)
	}
	return backoff.WithContext(b, ctx)
}

func (s *sequenceService) logCollision(scope sequence.Scope, number string, attempt int, stage string) {
	metrics.RecordSequenceCollision(scope.Kind().String(), stage)
	s.Logger.Infow("sequence number already taken, regenerating",
		"scope", scope.CounterKey(),
		"number", number,
		"attempt", attempt,
		"stage", stage,
	)
}
