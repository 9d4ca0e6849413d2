package service

import (
	"context"
	"strings"
	"time"

	"github.com/walaka/walaka/internal/api/dto"
	"github.com/walaka/walaka/internal/domain/document"
	"github.com/walaka/walaka/internal/domain/sequence"
	ierr "github.com/walaka/walaka/internal/errors"
	"github.com/walaka/walaka/internal/gate"
	"github.com/walaka/walaka/internal/types"
)

type DocumentService interface {
	// Create issues a number and stores a new document for the session's user.
	// Nothing is written when the gate blocks the action.
	Create(ctx context.Context, sessionID string, req dto.CreateDocumentRequest) (*dto.DocumentResponse, error)
}

type documentService struct {
	ServiceParams
	sessions  SessionService
	sequences SequenceService
	trial     TrialService
}

func NewDocumentService(
	params ServiceParams,
	sessions SessionService,
	sequences SequenceService,
	trial TrialService,
) DocumentService {
	return &documentService{
		ServiceParams: params,
		sessions:      sessions,
		sequences:     sequences,
		trial:         trial,
	}
}

var documentActions = map[types.ScopeKind]gate.ActionID{
	types.ScopeKindInvoiceGlobal:    gate.ActionInvoiceCreate,
	types.ScopeKindInvoicePerClient: gate.ActionInvoiceCreate,
	types.ScopeKindReceiptGlobal:    gate.ActionReceiptCreate,
	types.ScopeKindCreditNoteGlobal: gate.ActionCreditNoteCreate,
}

func (s *documentService) Create(ctx context.Context, sessionID string, req dto.CreateDocumentRequest) (*dto.DocumentResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	action := documentActions[req.Kind]
	if d := sess.Gate.Decide(gate.Request{Action: action}); !d.Allowed {
		return nil, blockedError(d)
	}
	if err := s.recheck(ctx, sess, action); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	scope, err := sequence.NewScope(req.Kind, req.ClientID, now)
	if err != nil {
		return nil, err
	}

	doc := document.New(req.Kind, req.ClientID, sess.EnvironmentID, sess.UserID, now)
	_, err = s.sequences.Issue(ctx, scope, func(ctx context.Context, number string) error {
		doc.Number = number
		return s.Tx.WithTx(ctx, func(ctx context.Context) error {
			return s.DocumentRepo.Create(ctx, doc)
		})
	})
	if err != nil {
		return nil, err
	}

	if action == gate.ActionInvoiceCreate {
		s.trial.Invalidate(ctx, sess.OwnerID)
	}

	s.Logger.Infow("document created",
		"document_id", doc.ID,
		"kind", doc.Kind,
		"number", doc.Number,
		"session_id", sess.ID,
		"user_id", sess.UserID,
	)
	return &dto.DocumentResponse{Document: doc}, nil
}

// recheck decides action against the current trial status, since documents
// created during the session have used up invoices the snapshot still counts.
func (s *documentService) recheck(ctx context.Context, sess *Session, action gate.ActionID) error {
	status, err := s.trial.AccountStatus(ctx, sess.account)
	if err != nil {
		if sess.Gate.Policy() == types.GatePolicyFailOpen {
			s.Logger.Warnw("trial status unavailable, allowing document",
				"session_id", sess.ID,
				"action", action,
				"error", err,
			)
			return nil
		}
		return err
	}

	if d := sess.Gate.Recheck(gate.Request{Action: action}, status); !d.Allowed {
		return blockedError(d)
	}
	return nil
}

// blockedError turns a blocked gate decision into the submit path error
func blockedError(d gate.Decision) error {
	hint := strings.Join(d.Messages, " ")
	if d.Reason == gate.ReasonLoading || hint == "" {
		hint = "Your account status is still loading, please try again in a moment"
	}
	return ierr.NewError("action blocked").
		WithHint(hint).
		WithReportableDetails(map[string]any{
			"action": d.Action,
			"reason": d.Reason,
		}).
		Mark(ierr.ErrPermissionDenied)
}
