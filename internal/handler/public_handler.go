package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"form-builder-api/internal/dto"
	"form-builder-api/internal/middleware"
	"form-builder-api/internal/response"
	"form-builder-api/internal/service"
)

// PublicHandler handles the unauthenticated form fill and submit endpoints
type PublicHandler struct {
	formService       service.FormService
	submissionService service.SubmissionService
}

// NewPublicHandler creates a new PublicHandler
func NewPublicHandler(formService service.FormService, submissionService service.SubmissionService) *PublicHandler {
	return &PublicHandler{
		formService:       formService,
		submissionService: submissionService,
	}
}

// GetPublicForm returns a published, active form for the fill page
func (h *PublicHandler) GetPublicForm(c *gin.Context) {
	formID, ok := parseIDParam(c, "formId")
	if !ok {
		return
	}

	form, err := h.formService.GetPublicForm(c.Request.Context(), formID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, form)
}

// SubmitResponse validates and stores a submission. The submitter identity is
// attached when a valid token accompanied the request.
func (h *PublicHandler) SubmitResponse(c *gin.Context) {
	formID, ok := parseIDParam(c, "formId")
	if !ok {
		return
	}

	var req dto.SubmitResponseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request body")
		return
	}

	// Request metadata beats whatever the client claims
	req.UserAgent = c.Request.UserAgent()
	req.IPAddress = c.ClientIP()

	var userID *uuid.UUID
	if rawID, exists := c.Get(middleware.ContextUserID); exists {
		if id, ok := rawID.(uuid.UUID); ok {
			userID = &id
		}
	}

	record, err := h.submissionService.SubmitResponse(c.Request.Context(), formID, userID, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.SendSuccess(c, http.StatusCreated, record)
}
