package service

import (
	"context"
	"time"

	"github.com/walaka/walaka/internal/api/dto"
	"github.com/walaka/walaka/internal/cache"
	"github.com/walaka/walaka/internal/domain/user"
	ierr "github.com/walaka/walaka/internal/errors"
	"github.com/walaka/walaka/internal/gate"
	"github.com/walaka/walaka/internal/metrics"
	"github.com/walaka/walaka/internal/types"
)

// Session is the signed-in context of one user: identity, role, effective
// environment and the gate evaluating their actions.
type Session struct {
	ID            string
	UserID        string
	Email         string
	Role          types.UserRole
	EnvironmentID string
	// OwnerID is the account holding the trial, the inviting user for invited users
	OwnerID   string
	Gate      *gate.Evaluator
	CreatedAt time.Time
	ExpiresAt time.Time

	token   string
	account *user.Account
	cancel  context.CancelFunc
}

type SessionService interface {
	// Start validates accessToken and opens a session whose gate starts Unknown
	Start(ctx context.Context, accessToken string) (*Session, error)
	Get(ctx context.Context, id string) (*Session, error)
	// End signs the session out and stops its status watch
	End(ctx context.Context, id string) error

	Decide(ctx context.Context, id string, req dto.DecisionRequest) (*dto.DecisionResponse, error)
	Mark(ctx context.Context, id string, req dto.MarksRequest) (*dto.MarksResponse, error)
	DismissModal(ctx context.Context, id string) (*dto.DismissModalResponse, error)
}

type sessionService struct {
	ServiceParams
	trial    TrialService
	sessions *cache.InMemoryCache
}

func NewSessionService(params ServiceParams, trial TrialService) SessionService {
	s := &sessionService{
		ServiceParams: params,
		trial:         trial,
		sessions:      cache.NewInMemoryCache(params.Config.Cache.SessionTTL, true),
	}
	s.sessions.OnEvicted(s.onEvicted)
	return s
}

func (s *sessionService) Start(ctx context.Context, accessToken string) (*Session, error) {
	if accessToken == "" {
		return nil, ierr.NewError("missing access token").
			WithHint("Please sign in to continue").
			Mark(ierr.ErrUnauthorized)
	}

	claims, err := s.Auth.ValidateToken(ctx, accessToken)
	if err != nil {
		return nil, err
	}

	account, err := user.ResolveAccount(ctx, s.UserRepo, claims.UserID)
	if err != nil {
		if !ierr.IsNotFound(err) {
			return nil, err
		}
		// no profile row yet, the user gets the default role and owns a trial
		// started at sign up
		s.Logger.Warnw("no profile found for user, using defaults", "user_id", claims.UserID)
		createdAt := claims.CreatedAt
		if createdAt.IsZero() {
			createdAt = time.Now().UTC()
		}
		account = user.DefaultAccount(claims.UserID, claims.Email, createdAt)
	}

	now := time.Now().UTC()
	ttl := s.Config.Cache.SessionTTL
	if !claims.ExpiresAt.IsZero() {
		if until := claims.ExpiresAt.Sub(now); until > 0 && (ttl <= 0 || until < ttl) {
			ttl = until
		}
	}
	if ttl <= 0 {
		ttl = cache.DefaultExpiration
	}

	email := claims.Email
	if email == "" {
		email = account.User.Email
	}

	sess := &Session{
		ID:            types.GenerateUUIDWithPrefix(types.UUID_PREFIX_SESSION),
		UserID:        account.User.ID,
		Email:         email,
		Role:          account.User.GetRole(),
		EnvironmentID: account.EnvironmentID,
		OwnerID:       account.Owner.ID,
		Gate:          gate.NewEvaluator(s.Rules, s.RBAC, account.User.GetRole(), gate.OptionsFromConfig(s.Config)),
		CreatedAt:     now,
		ExpiresAt:     now.Add(ttl),
		token:         accessToken,
		account:       account,
	}

	watchCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	sess.cancel = cancel

	s.sessions.Set(ctx, sessionKey(sess.ID), sess, ttl)
	metrics.SetActiveSessions(s.sessions.Count())
	s.watch(watchCtx, sess)

	s.Logger.Infow("session started",
		"session_id", sess.ID,
		"user_id", sess.UserID,
		"role", sess.Role,
		"environment_id", sess.EnvironmentID,
		"owner_id", sess.OwnerID,
		"policy", sess.Gate.Policy(),
	)
	return sess, nil
}

// watch resolves the session gate. The trial status is computed right away
// and pushed; gate.Watch falls back to fetching it and then to the policy.
func (s *sessionService) watch(ctx context.Context, sess *Session) {
	updates := make(chan gate.Status, 1)

	go func() {
		status, err := s.trial.AccountStatus(ctx, sess.account)
		if err != nil {
			s.Logger.Warnw("trial status not available yet",
				"session_id", sess.ID,
				"user_id", sess.UserID,
				"error", err,
			)
			return
		}
		updates <- status
	}()

	go func() {
		res := gate.Watch(ctx, sess.Gate, updates, s.trial.StatusSource(sess.account), gate.WatchOptionsFromConfig(s.Config))
		status, _ := sess.Gate.Status()
		s.Logger.Infow("session gate resolved",
			"session_id", sess.ID,
			"source", res.Source,
			"attempts", res.Attempts,
			"restricted", status.IsRestricted(),
			"assumed", status.Assumed,
			"last_error", res.LastErr,
		)
	}()
}

func (s *sessionService) Get(ctx context.Context, id string) (*Session, error) {
	cached, ok := s.sessions.Get(ctx, sessionKey(id))
	sess, isSession := cached.(*Session)
	if !ok || !isSession || time.Now().After(sess.ExpiresAt) {
		return nil, sessionNotFound(id)
	}

	// sessions are only visible to their own user
	if userID := types.GetUserID(ctx); userID != "" && userID != sess.UserID {
		return nil, sessionNotFound(id)
	}
	return sess, nil
}

func (s *sessionService) End(ctx context.Context, id string) error {
	sess, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := s.Auth.SignOut(ctx, sess.token); err != nil {
		s.Logger.Warnw("failed to sign out with the auth provider",
			"session_id", sess.ID,
			"user_id", sess.UserID,
			"error", err,
		)
	}

	s.sessions.Delete(ctx, sessionKey(id))
	s.Logger.Infow("session ended", "session_id", sess.ID, "user_id", sess.UserID)
	return nil
}

func (s *sessionService) Decide(ctx context.Context, id string, req dto.DecisionRequest) (*dto.DecisionResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	sess, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	var d gate.Decision
	if req.Intercept {
		d = sess.Gate.Intercept(req.ToRequest())
	} else {
		d = sess.Gate.Decide(req.ToRequest())
	}

	if !d.Allowed {
		s.Logger.Debugw("action blocked",
			"session_id", sess.ID,
			"action", req.Action,
			"destination", req.Destination,
			"reason", d.Reason,
			"modal", d.Modal != nil,
		)
	}
	return &dto.DecisionResponse{Decision: d}, nil
}

func (s *sessionService) Mark(ctx context.Context, id string, req dto.MarksRequest) (*dto.MarksResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	sess, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	marks := make([]gate.Mark, 0, len(req.Elements))
	for _, el := range req.Elements {
		marks = append(marks, sess.Gate.MarkRestricted(el.ToRequest()))
	}
	return &dto.MarksResponse{Marks: marks}, nil
}

func (s *sessionService) DismissModal(ctx context.Context, id string) (*dto.DismissModalResponse, error) {
	sess, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &dto.DismissModalResponse{Dismissed: sess.Gate.DismissModal()}, nil
}

func (s *sessionService) onEvicted(_ string, value interface{}) {
	if sess, ok := value.(*Session); ok && sess.cancel != nil {
		sess.cancel()
	}
	metrics.SetActiveSessions(s.sessions.Count())
}

// ToResponse summarizes the session and the current state of its gate
func (sess *Session) ToResponse() *dto.SessionResponse {
	resp := &dto.SessionResponse{
		ID:            sess.ID,
		UserID:        sess.UserID,
		Email:         sess.Email,
		Role:          sess.Role,
		EnvironmentID: sess.EnvironmentID,
		Policy:        sess.Gate.Policy(),
		State:         sess.Gate.State(),
		Modal:         sess.Gate.OpenModal(),
		CreatedAt:     sess.CreatedAt,
		ExpiresAt:     sess.ExpiresAt,
	}
	if status, ok := sess.Gate.Status(); ok {
		resp.Status = &status
	}
	return resp
}

func sessionKey(id string) string {
	return cache.GenerateKey(cache.PrefixSession, id)
}

func sessionNotFound(id string) error {
	return ierr.NewError("session not found").
		WithHint("Your session has expired, please sign in again").
		WithReportableDetails(map[string]any{
			"session_id": id,
		}).
		Mark(ierr.ErrNotFound)
}
