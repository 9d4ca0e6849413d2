package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
	"github.com/walaka/walaka/internal/api/dto"
	v1 "github.com/walaka/walaka/internal/api/v1"
	"github.com/walaka/walaka/internal/auth"
	"github.com/walaka/walaka/internal/domain/user"
	ierr "github.com/walaka/walaka/internal/errors"
	"github.com/walaka/walaka/internal/gate"
	"github.com/walaka/walaka/internal/service"
	"github.com/walaka/walaka/internal/testutil"
	"github.com/walaka/walaka/internal/types"
)

type RouterSuite struct {
	testutil.BaseServiceTestSuite
	router *gin.Engine
	token  string
}

func TestRouter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	suite.Run(t, new(RouterSuite))
}

func (s *RouterSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	cfg := s.GetConfig()
	authProvider := auth.NewProvider(cfg)

	params := service.NewServiceParams(s.GetLogger(), cfg, s.GetStores().Repositories(), s.GetRBAC(), s.GetRules(), authProvider)
	trial := service.NewTrialService(params)
	sessions := service.NewSessionService(params, trial)
	sequences := service.NewSequenceService(params)
	documents := service.NewDocumentService(params, sessions, sequences, trial)

	s.router = NewRouter(Handlers{
		Health:   v1.NewHealthHandler(s.GetLogger()),
		Sequence: v1.NewSequenceHandler(sequences, s.GetLogger()),
		Session:  v1.NewSessionHandler(sessions, s.GetLogger()),
		Document: v1.NewDocumentHandler(documents, s.GetLogger()),
		RBAC:     v1.NewRBACHandler(s.GetRBAC(), s.GetLogger()),
	}, cfg, s.GetLogger(), authProvider)

	s.GetStores().UserRepo.Add(&user.User{
		ID:            "usr_owner",
		Email:         "owner@example.com",
		Role:          "admin",
		EnvironmentID: "env_owner",
		CreatedAt:     s.GetNow().Add(-48 * time.Hour),
	})

	token, err := auth.NewLocalAuth(cfg).GenerateToken("usr_owner", "owner@example.com", time.Hour)
	s.Require().NoError(err)
	s.token = token
}

func (s *RouterSuite) do(method, path string, body any, authed bool) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if authed {
		req.Header.Set(types.HeaderAuthorization, "Bearer "+s.token)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *RouterSuite) decode(w *httptest.ResponseRecorder, out any) {
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), out), w.Body.String())
}

// startSession opens a session and waits until its gate is evaluated
func (s *RouterSuite) startSession() dto.SessionResponse {
	w := s.do(http.MethodPost, "/v1/sessions", nil, true)
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	var sess dto.SessionResponse
	s.decode(w, &sess)
	s.Equal("usr_owner", sess.UserID)
	s.Equal(types.UserRoleAdmin, sess.Role)

	s.Require().Eventually(func() bool {
		w := s.do(http.MethodGet, "/v1/sessions/"+sess.ID, nil, true)
		if w.Code != http.StatusOK {
			return false
		}
		s.decode(w, &sess)
		return sess.State == gate.StateEvaluated
	}, time.Second, 5*time.Millisecond)
	return sess
}

func (s *RouterSuite) TestHealthAndMetrics() {
	w := s.do(http.MethodGet, "/health", nil, false)
	s.Equal(http.StatusOK, w.Code)

	w = s.do(http.MethodGet, "/metrics", nil, false)
	s.Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), "walaka_")
}

func (s *RouterSuite) TestRequiresAuthentication() {
	w := s.do(http.MethodPost, "/v1/sequences/next", dto.NextSequenceRequest{ScopeKind: types.ScopeKindReceiptGlobal}, false)
	s.Equal(http.StatusUnauthorized, w.Code)

	var resp ierr.ErrorResponse
	s.decode(w, &resp)
	s.False(resp.Success)
	s.Equal("Please sign in to continue", resp.Error.Display)
	s.NotEmpty(w.Header().Get(types.HeaderRequestID))
}

func (s *RouterSuite) TestNextSequence() {
	date := time.Date(2025, time.January, 2, 0, 0, 0, 0, time.UTC)
	w := s.do(http.MethodPost, "/v1/sequences/next", dto.NextSequenceRequest{ScopeKind: types.ScopeKindReceiptGlobal, Date: &date}, true)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var resp dto.NextSequenceResponse
	s.decode(w, &resp)
	s.Equal("REC-2025-0001", resp.Number)

	w = s.do(http.MethodPost, "/v1/sequences/next", dto.NextSequenceRequest{ScopeKind: types.ScopeKindInvoicePerClient}, true)
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *RouterSuite) TestSessionFlow() {
	sess := s.startSession()
	s.Require().NotNil(sess.Status)
	s.Equal(12, sess.Status.DaysRemaining)

	w := s.do(http.MethodPost, fmt.Sprintf("/v1/sessions/%s/decisions", sess.ID), dto.DecisionRequest{Action: gate.ActionInvoiceCreate}, true)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var decision dto.DecisionResponse
	s.decode(w, &decision)
	s.True(decision.Allowed)

	w = s.do(http.MethodPost, fmt.Sprintf("/v1/sessions/%s/documents", sess.ID), dto.CreateDocumentRequest{Kind: types.ScopeKindInvoiceGlobal}, true)
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var doc dto.DocumentResponse
	s.decode(w, &doc)
	s.Equal(fmt.Sprintf("INV-%d-0001", time.Now().UTC().Year()), doc.Number)

	w = s.do(http.MethodPost, fmt.Sprintf("/v1/sessions/%s/marks", sess.ID), dto.MarksRequest{
		Elements: []dto.DecisionRequest{{Action: gate.ActionClientCreate, ElementID: "add-new-client-btn"}},
	}, true)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var marks dto.MarksResponse
	s.decode(w, &marks)
	s.Require().Len(marks.Marks, 1)
	s.Equal(gate.AffordanceNone, marks.Marks[0].Affordance)

	w = s.do(http.MethodPost, fmt.Sprintf("/v1/sessions/%s/modal/dismiss", sess.ID), nil, true)
	s.Require().Equal(http.StatusOK, w.Code)
	var dismissed dto.DismissModalResponse
	s.decode(w, &dismissed)
	s.False(dismissed.Dismissed)

	w = s.do(http.MethodDelete, "/v1/sessions/"+sess.ID, nil, true)
	s.Equal(http.StatusNoContent, w.Code)

	w = s.do(http.MethodGet, "/v1/sessions/"+sess.ID, nil, true)
	s.Equal(http.StatusNotFound, w.Code)
	var resp ierr.ErrorResponse
	s.decode(w, &resp)
	s.Equal("Your session has expired, please sign in again", resp.Error.Display)
}

func (s *RouterSuite) TestBlockedDocumentIsForbidden() {
	for i := 1; i <= 5; i++ {
		s.GetStores().DocumentRepo.Seed(types.ScopeKindInvoiceGlobal, fmt.Sprintf("INV-2024-%04d", i), "", "usr_owner")
	}
	sess := s.startSession()
	s.True(sess.Status.Restricted)

	w := s.do(http.MethodPost, fmt.Sprintf("/v1/sessions/%s/documents", sess.ID), dto.CreateDocumentRequest{Kind: types.ScopeKindInvoiceGlobal}, true)
	s.Equal(http.StatusForbidden, w.Code)

	var resp ierr.ErrorResponse
	s.decode(w, &resp)
	s.Equal("You have used all 5 of your free invoices.", resp.Error.Display)
}

func (s *RouterSuite) TestRoles() {
	w := s.do(http.MethodGet, "/v1/rbac/roles", nil, true)
	s.Require().Equal(http.StatusOK, w.Code)
	var roles dto.ListRolesResponse
	s.decode(w, &roles)
	s.Len(roles.Items, 3)

	w = s.do(http.MethodGet, "/v1/rbac/roles/owner", nil, true)
	s.Equal(http.StatusNotFound, w.Code)
}
