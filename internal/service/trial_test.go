package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/walaka/walaka/internal/domain/subscription"
	"github.com/walaka/walaka/internal/domain/user"
	ierr "github.com/walaka/walaka/internal/errors"
	"github.com/walaka/walaka/internal/gate"
	"github.com/walaka/walaka/internal/testutil"
	"github.com/walaka/walaka/internal/types"
)

type TrialServiceSuite struct {
	testutil.BaseServiceTestSuite
	service TrialService
}

func TestTrialService(t *testing.T) {
	suite.Run(t, new(TrialServiceSuite))
}

func (s *TrialServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewTrialService(newTestParams(&s.BaseServiceTestSuite, s.GetConfig()))
}

func (s *TrialServiceSuite) seedInvoices(userID string, n int) {
	for i := 1; i <= n; i++ {
		s.GetStores().DocumentRepo.Seed(types.ScopeKindInvoiceGlobal, fmt.Sprintf("INV-2024-%04d", i), "", userID)
	}
}

func (s *TrialServiceSuite) TestTrialArithmetic() {
	tests := []struct {
		name       string
		age        time.Duration
		invoices   int
		want       gate.Status
		restricted bool
	}{
		{
			name: "new account",
			want: gate.NewStatus(14, 5),
		},
		{
			name:     "partial days are not counted",
			age:      3*day + 23*time.Hour,
			invoices: 2,
			want:     gate.NewStatus(11, 3),
		},
		{
			name:       "trial period over",
			age:        20 * day,
			invoices:   3,
			want:       gate.NewStatus(0, 2),
			restricted: true,
		},
		{
			name:       "all free invoices used",
			age:        9 * day,
			invoices:   5,
			want:       gate.NewStatus(5, 0),
			restricted: true,
		},
		{
			name:       "last day",
			age:        14 * day,
			want:       gate.NewStatus(0, 5),
			restricted: true,
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.ClearStores()
			addUser(&s.BaseServiceTestSuite, "usr_owner", "admin", "", tt.age)
			s.seedInvoices("usr_owner", tt.invoices)
			s.service.Invalidate(s.GetContext(), "usr_owner")

			status, err := s.service.GetStatus(s.GetContext(), "usr_owner")
			s.Require().NoError(err)
			s.Equal(tt.want, status)
			s.Equal(tt.restricted, status.IsRestricted())
		})
	}
}

func (s *TrialServiceSuite) TestInvitedUserUsesOwnerTrial() {
	addUser(&s.BaseServiceTestSuite, "usr_owner", "admin", "", 15*day)
	addUser(&s.BaseServiceTestSuite, "usr_member", "editor", "usr_owner", time.Hour)
	s.seedInvoices("usr_owner", 1)
	s.seedInvoices("usr_member", 3)

	status, err := s.service.GetStatus(s.GetContext(), "usr_member")
	s.Require().NoError(err)
	s.Equal(0, status.DaysRemaining)
	s.Equal(4, status.InvoicesRemaining)
	s.True(status.IsRestricted())
}

func (s *TrialServiceSuite) TestSubscription() {
	now := s.GetNow()

	tests := []struct {
		name       string
		sub        *subscription.Subscription
		subscribed bool
	}{
		{
			name:       "active paid plan",
			sub:        &subscription.Subscription{Plan: "pro", Status: subscription.StatusActive, EndDate: now.Add(30 * day)},
			subscribed: true,
		},
		{
			name: "expired plan",
			sub:  &subscription.Subscription{Plan: "pro", Status: subscription.StatusActive, EndDate: now.Add(-day)},
		},
		{
			name: "cancelled plan",
			sub:  &subscription.Subscription{Plan: "pro", Status: "cancelled", EndDate: now.Add(30 * day)},
		},
		{
			name: "trial plan",
			sub:  &subscription.Subscription{Plan: "trial", Status: subscription.StatusActive, EndDate: now.Add(30 * day)},
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.ClearStores()
			owner := addUser(&s.BaseServiceTestSuite, "usr_owner", "admin", "", 30*day)
			s.seedInvoices("usr_owner", 5)
			tt.sub.ID = s.GetUUID()
			tt.sub.EnvironmentID = owner.EnvironmentID
			s.GetStores().SubscriptionRepo.Add(tt.sub)
			s.service.Invalidate(s.GetContext(), owner.ID)

			status, err := s.service.GetStatus(s.GetContext(), owner.ID)
			s.Require().NoError(err)
			s.Equal(tt.subscribed, status.Subscribed)
			s.Equal(!tt.subscribed, status.IsRestricted())
			if tt.subscribed {
				s.Equal("Pro", status.Plan)
			}
		})
	}
}

func (s *TrialServiceSuite) TestLatestSubscriptionDecides() {
	owner := addUser(&s.BaseServiceTestSuite, "usr_owner", "admin", "", 30*day)
	now := s.GetNow()
	s.GetStores().SubscriptionRepo.Add(&subscription.Subscription{
		ID: "sub_old", EnvironmentID: owner.EnvironmentID, Plan: "pro", Status: subscription.StatusActive, EndDate: now.Add(10 * day),
	})
	s.GetStores().SubscriptionRepo.Add(&subscription.Subscription{
		ID: "sub_new", EnvironmentID: owner.EnvironmentID, Plan: "pro", Status: "cancelled", EndDate: now.Add(40 * day),
	})

	status, err := s.service.GetStatus(s.GetContext(), owner.ID)
	s.Require().NoError(err)
	s.False(status.Subscribed)
	s.True(status.IsRestricted())
}

func (s *TrialServiceSuite) TestStatusIsCachedUntilInvalidated() {
	addUser(&s.BaseServiceTestSuite, "usr_owner", "admin", "", day)
	s.seedInvoices("usr_owner", 1)

	first, err := s.service.GetStatus(s.GetContext(), "usr_owner")
	s.Require().NoError(err)
	s.Equal(4, first.InvoicesRemaining)

	s.GetStores().DocumentRepo.Seed(types.ScopeKindInvoiceGlobal, "INV-2024-0100", "", "usr_owner")

	cached, err := s.service.GetStatus(s.GetContext(), "usr_owner")
	s.Require().NoError(err)
	s.Equal(4, cached.InvoicesRemaining)

	s.service.Invalidate(s.GetContext(), "usr_owner")
	fresh, err := s.service.GetStatus(s.GetContext(), "usr_owner")
	s.Require().NoError(err)
	s.Equal(3, fresh.InvoicesRemaining)
}

func (s *TrialServiceSuite) TestStatusSource() {
	addUser(&s.BaseServiceTestSuite, "usr_owner", "admin", "", 2*day)

	account, err := user.ResolveAccount(s.GetContext(), s.GetStores().UserRepo, "usr_owner")
	s.Require().NoError(err)

	status, err := s.service.StatusSource(account).FetchStatus(s.GetContext())
	s.Require().NoError(err)
	s.Equal(gate.NewStatus(12, 5), status)
}

func (s *TrialServiceSuite) TestUserWithoutProfile() {
	s.Run("trial starts now", func() {
		status, err := s.service.GetStatus(s.GetContext(), "usr_missing")
		s.Require().NoError(err)
		s.Equal(gate.NewStatus(14, 5), status)
	})

	s.Run("trial starts at sign up", func() {
		account := user.DefaultAccount("usr_signed_up", "", s.GetNow().Add(-3*day))
		s.seedInvoices("usr_signed_up", 2)

		status, err := s.service.AccountStatus(s.GetContext(), account)
		s.Require().NoError(err)
		s.Equal(gate.NewStatus(11, 3), status)
	})
}

func (s *TrialServiceSuite) TestErrors() {
	s.Run("profile backend failure", func() {
		s.GetStores().UserRepo.FailWith(ierr.NewError("timeout").Mark(ierr.ErrDatabase))
		defer s.GetStores().UserRepo.FailWith(nil)

		_, err := s.service.GetStatus(s.GetContext(), "usr_broken")
		s.Require().Error(err)
		s.True(ierr.IsDatabase(err))
	})

	s.Run("subscription backend failure", func() {
		addUser(&s.BaseServiceTestSuite, "usr_owner", "admin", "", day)
		s.GetStores().SubscriptionRepo.FailWith(ierr.NewError("timeout").Mark(ierr.ErrDatabase))

		_, err := s.service.GetStatus(s.GetContext(), "usr_owner")
		s.Require().Error(err)
		s.True(ierr.IsDatabase(err))
	})
}
