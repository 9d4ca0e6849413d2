package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/walaka/walaka/internal/api/dto"
	ierr "github.com/walaka/walaka/internal/errors"
	"github.com/walaka/walaka/internal/logger"
	"github.com/walaka/walaka/internal/service"
	"github.com/walaka/walaka/internal/types"
)

type SessionHandler struct {
	service service.SessionService
	log     *logger.Logger
}

func NewSessionHandler(service service.SessionService, log *logger.Logger) *SessionHandler {
	return &SessionHandler{
		service: service,
		log:     log,
	}
}

// @Summary Start a session
// @Description Opens a session for the bearer token. The session gate starts unknown and resolves in the background.
// @Tags Sessions
// @Produce json
// @Security BearerAuth
// @Success 201 {object} dto.SessionResponse
// @Failure 401 {object} ierr.ErrorResponse
// @Router /sessions [post]
func (h *SessionHandler) Start(c *gin.Context) {
	ctx := c.Request.Context()

	sess, err := h.service.Start(ctx, types.GetJWT(ctx))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, sess.ToResponse())
}

// @Summary Get a session
// @Tags Sessions
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Success 200 {object} dto.SessionResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Router /sessions/{id} [get]
func (h *SessionHandler) Get(c *gin.Context) {
	sess, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, sess.ToResponse())
}

// @Summary End a session
// @Tags Sessions
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Success 204
// @Failure 404 {object} ierr.ErrorResponse
// @Router /sessions/{id} [delete]
func (h *SessionHandler) End(c *gin.Context) {
	if err := h.service.End(c.Request.Context(), c.Param("id")); err != nil {
		c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}

// @Summary Decide an action
// @Description Evaluates an action against the session gate. With intercept set a blocked action presents the restriction modal.
// @Tags Sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Param request body dto.DecisionRequest true "Action"
// @Success 200 {object} dto.DecisionResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Router /sessions/{id}/decisions [post]
func (h *SessionHandler) Decide(c *gin.Context) {
	var req dto.DecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.Decide(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Dismiss the restriction modal
// @Tags Sessions
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Success 200 {object} dto.DismissModalResponse
// @Router /sessions/{id}/modal/dismiss [post]
func (h *SessionHandler) DismissModal(c *gin.Context) {
	resp, err := h.service.DismissModal(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Mark rendered controls
// @Description Returns the affordance each rendered control should carry
// @Tags Sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Param request body dto.MarksRequest true "Elements"
// @Success 200 {object} dto.MarksResponse
// @Router /sessions/{id}/marks [post]
func (h *SessionHandler) Mark(c *gin.Context) {
	var req dto.MarksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.Mark(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
