package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/walaka/walaka/internal/api/dto"
	"github.com/walaka/walaka/internal/config"
	ierr "github.com/walaka/walaka/internal/errors"
	"github.com/walaka/walaka/internal/gate"
	"github.com/walaka/walaka/internal/testutil"
	"github.com/walaka/walaka/internal/types"
)

const resolveTimeout = time.Second

type SessionServiceSuite struct {
	testutil.BaseServiceTestSuite
	service SessionService
}

func TestSessionService(t *testing.T) {
	suite.Run(t, new(SessionServiceSuite))
}

func (s *SessionServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = s.newService(s.GetConfig())
}

func (s *SessionServiceSuite) newService(cfg *config.Configuration) SessionService {
	params := newTestParams(&s.BaseServiceTestSuite, cfg)
	return NewSessionService(params, NewTrialService(params))
}

func (s *SessionServiceSuite) ctxFor(userID string) context.Context {
	return types.SetUserID(s.GetContext(), userID)
}

// start opens a session for userID and waits for its gate to resolve
func (s *SessionServiceSuite) start(svc SessionService, userID string) *Session {
	token, err := issueToken(s.GetConfig(), userID)
	s.Require().NoError(err)

	sess, err := svc.Start(s.ctxFor(userID), token)
	s.Require().NoError(err)
	s.Require().True(waitResolved(sess, resolveTimeout), "gate did not resolve")
	return sess
}

func (s *SessionServiceSuite) TestStartResolvesTrialStatus() {
	owner := addUser(&s.BaseServiceTestSuite, "usr_owner", "admin", "", 2*day)

	sess := s.start(s.service, owner.ID)
	s.Equal(owner.ID, sess.UserID)
	s.Equal(owner.ID, sess.OwnerID)
	s.Equal(types.UserRoleAdmin, sess.Role)
	s.Equal(owner.EnvironmentID, sess.EnvironmentID)

	status, ok := sess.Gate.Status()
	s.True(ok)
	s.Equal(gate.NewStatus(12, 5), status)

	resp := sess.ToResponse()
	s.Equal(gate.StateEvaluated, resp.State)
	s.Require().NotNil(resp.Status)
	s.Equal(12, resp.Status.DaysRemaining)
	s.Equal(types.GatePolicyFailClosed, resp.Policy)
	s.True(resp.ExpiresAt.After(resp.CreatedAt))

	d, err := s.service.Decide(s.ctxFor(owner.ID), sess.ID, dto.DecisionRequest{Action: gate.ActionInvoiceCreate})
	s.Require().NoError(err)
	s.True(d.Allowed)
}

func (s *SessionServiceSuite) TestStartInvitedUser() {
	owner := addUser(&s.BaseServiceTestSuite, "usr_owner", "admin", "", 20*day)
	member := addUser(&s.BaseServiceTestSuite, "usr_member", "editor", owner.ID, time.Hour)

	sess := s.start(s.service, member.ID)
	s.Equal(member.ID, sess.UserID)
	s.Equal(owner.ID, sess.OwnerID)
	s.Equal(types.UserRoleEditor, sess.Role)
	s.Equal(owner.EnvironmentID, sess.EnvironmentID)

	status, _ := sess.Gate.Status()
	s.True(status.IsRestricted())
	s.Equal(0, status.DaysRemaining)
}

func (s *SessionServiceSuite) TestStartWithoutProfile() {
	sess := s.start(s.service, "usr_ghost")
	s.Equal(types.UserRoleViewer, sess.Role)
	s.Equal("usr_ghost", sess.OwnerID)
	s.Empty(sess.EnvironmentID)

	// the user owns a fresh trial instead of an unverified one
	status, ok := sess.Gate.Status()
	s.True(ok)
	s.False(status.Assumed)
	s.False(status.IsRestricted())
	s.Equal(14, status.DaysRemaining)
	s.Equal(5, status.InvoicesRemaining)

	d, err := s.service.Decide(s.ctxFor("usr_ghost"), sess.ID, dto.DecisionRequest{Action: gate.ActionInvoiceCreate})
	s.Require().NoError(err)
	s.True(d.Allowed)
}

func (s *SessionServiceSuite) TestStartWithoutProfileCountsOwnInvoices() {
	for i := 1; i <= 5; i++ {
		s.GetStores().DocumentRepo.Seed(types.ScopeKindInvoiceGlobal, fmt.Sprintf("INV-2024-%04d", i), "", "usr_ghost")
	}

	sess := s.start(s.service, "usr_ghost")
	status, _ := sess.Gate.Status()
	s.False(status.Assumed)
	s.Equal(0, status.InvoicesRemaining)
	s.True(status.IsRestricted())
}

func (s *SessionServiceSuite) TestFailOpenTimeout() {
	cfg := s.GetConfig()
	cfg.Gate.Policy = types.GatePolicyFailOpen
	svc := s.newService(cfg)

	owner := addUser(&s.BaseServiceTestSuite, "usr_owner", "admin", "", 20*day)
	s.GetStores().SubscriptionRepo.FailWith(ierr.NewError("timeout").Mark(ierr.ErrDatabase))

	sess := s.start(svc, owner.ID)
	status, _ := sess.Gate.Status()
	s.True(status.Assumed)
	s.False(status.IsRestricted())

	d, err := svc.Decide(s.ctxFor(owner.ID), sess.ID, dto.DecisionRequest{Action: gate.ActionInvoiceCreate})
	s.Require().NoError(err)
	s.True(d.Allowed)
}

func (s *SessionServiceSuite) TestStartRejectsInvalidToken() {
	_, err := s.service.Start(s.GetContext(), "")
	s.Require().Error(err)
	s.True(ierr.IsUnauthorized(err))

	_, err = s.service.Start(s.GetContext(), "not-a-token")
	s.Require().Error(err)
	s.True(ierr.IsUnauthorized(err))
}

func (s *SessionServiceSuite) TestGetIsScopedToUser() {
	owner := addUser(&s.BaseServiceTestSuite, "usr_owner", "admin", "", day)
	sess := s.start(s.service, owner.ID)

	got, err := s.service.Get(s.ctxFor(owner.ID), sess.ID)
	s.Require().NoError(err)
	s.Same(sess, got)

	_, err = s.service.Get(s.ctxFor("usr_other"), sess.ID)
	s.Require().Error(err)
	s.True(ierr.IsNotFound(err))

	_, err = s.service.Get(s.ctxFor(owner.ID), "sess_missing")
	s.Require().Error(err)
	s.True(ierr.IsNotFound(err))
}

func (s *SessionServiceSuite) TestEnd() {
	owner := addUser(&s.BaseServiceTestSuite, "usr_owner", "admin", "", day)
	sess := s.start(s.service, owner.ID)
	ctx := s.ctxFor(owner.ID)

	s.Require().NoError(s.service.End(ctx, sess.ID))

	_, err := s.service.Get(ctx, sess.ID)
	s.True(ierr.IsNotFound(err))

	err = s.service.End(ctx, sess.ID)
	s.True(ierr.IsNotFound(err))
}

func (s *SessionServiceSuite) TestInterceptPresentsOneModal() {
	owner := addUser(&s.BaseServiceTestSuite, "usr_owner", "viewer", "", 20*day)
	sess := s.start(s.service, owner.ID)
	ctx := s.ctxFor(owner.ID)
	click := dto.DecisionRequest{Label: "Create Invoice", Intercept: true}

	first, err := s.service.Decide(ctx, sess.ID, click)
	s.Require().NoError(err)
	s.False(first.Allowed)
	s.Contains(first.Messages, "Your 14-day trial period has expired.")
	s.Require().NotNil(first.Modal)
	s.Equal(gate.ModalKindTrial, first.Modal.Kind)

	second, err := s.service.Decide(ctx, sess.ID, click)
	s.Require().NoError(err)
	s.False(second.Allowed)
	s.Nil(second.Modal)
	s.NotNil(sess.ToResponse().Modal)

	dismissed, err := s.service.DismissModal(ctx, sess.ID)
	s.Require().NoError(err)
	s.True(dismissed.Dismissed)
	s.Nil(sess.ToResponse().Modal)

	third, err := s.service.Decide(ctx, sess.ID, click)
	s.Require().NoError(err)
	s.NotNil(third.Modal)
}

func (s *SessionServiceSuite) TestRoleRulesWhenRestricted() {
	owner := addUser(&s.BaseServiceTestSuite, "usr_owner", "admin", "", 20*day)
	viewer := addUser(&s.BaseServiceTestSuite, "usr_viewer", "viewer", owner.ID, time.Hour)

	sess := s.start(s.service, viewer.ID)
	d, err := s.service.Decide(s.ctxFor(viewer.ID), sess.ID, dto.DecisionRequest{Action: gate.ActionClientDelete})
	s.Require().NoError(err)
	s.False(d.Allowed)
	s.Equal(gate.ReasonRolePermission, d.Reason)
	s.Equal([]string{"You do not have permission to delete clients."}, d.Messages)

	ownerSess := s.start(s.service, owner.ID)
	d, err = s.service.Decide(s.ctxFor(owner.ID), ownerSess.ID, dto.DecisionRequest{Action: gate.ActionClientDelete})
	s.Require().NoError(err)
	s.True(d.Allowed)
}

func (s *SessionServiceSuite) TestMark() {
	owner := addUser(&s.BaseServiceTestSuite, "usr_owner", "admin", "", 20*day)
	sess := s.start(s.service, owner.ID)
	ctx := s.ctxFor(owner.ID)

	req := dto.MarksRequest{Elements: []dto.DecisionRequest{
		{Action: gate.ActionInvoiceCreate, ElementID: "createInvoiceBtn"},
		{Action: gate.ActionClientDelete, ElementID: "deleteClientBtn"},
	}}

	first, err := s.service.Mark(ctx, sess.ID, req)
	s.Require().NoError(err)
	s.Require().Len(first.Marks, 2)
	s.Equal(gate.AffordanceLocked, first.Marks[0].Affordance)
	s.True(first.Marks[0].Changed)
	s.Equal(gate.AffordanceNone, first.Marks[1].Affordance)
	s.False(first.Marks[1].Changed)

	again, err := s.service.Mark(ctx, sess.ID, req)
	s.Require().NoError(err)
	s.Equal(gate.AffordanceLocked, again.Marks[0].Affordance)
	s.False(again.Marks[0].Changed)

	_, err = s.service.Mark(ctx, sess.ID, dto.MarksRequest{})
	s.True(ierr.IsValidation(err))
}
