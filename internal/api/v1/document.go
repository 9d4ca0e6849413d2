package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/walaka/walaka/internal/api/dto"
	ierr "github.com/walaka/walaka/internal/errors"
	"github.com/walaka/walaka/internal/logger"
	"github.com/walaka/walaka/internal/service"
)

type DocumentHandler struct {
	service service.DocumentService
	log     *logger.Logger
}

func NewDocumentHandler(service service.DocumentService, log *logger.Logger) *DocumentHandler {
	return &DocumentHandler{
		service: service,
		log:     log,
	}
}

// @Summary Create a document
// @Description Creates an invoice, receipt or credit note with the next free number
// @Tags Documents
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Param request body dto.CreateDocumentRequest true "Document"
// @Success 201 {object} dto.DocumentResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 403 {object} ierr.ErrorResponse
// @Failure 409 {object} ierr.ErrorResponse
// @Router /sessions/{id}/documents [post]
func (h *DocumentHandler) Create(c *gin.Context) {
	var req dto.CreateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.Create(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}
