package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/walaka/walaka/internal/api/dto"
	ierr "github.com/walaka/walaka/internal/errors"
	"github.com/walaka/walaka/internal/logger"
	"github.com/walaka/walaka/internal/service"
)

type SequenceHandler struct {
	service service.SequenceService
	log     *logger.Logger
}

func NewSequenceHandler(service service.SequenceService, log *logger.Logger) *SequenceHandler {
	return &SequenceHandler{
		service: service,
		log:     log,
	}
}

// @Summary Next document number
// @Description Returns the next free number of a numbering scope. The number is not reserved.
// @Tags Sequences
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.NextSequenceRequest true "Scope"
// @Success 200 {object} dto.NextSequenceResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 409 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /sequences/next [post]
func (h *SequenceHandler) Next(c *gin.Context) {
	var req dto.NextSequenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.Next(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
