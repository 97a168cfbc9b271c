package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"form-builder-api/internal/dto"
	"form-builder-api/internal/repository"
	"form-builder-api/internal/response"
	"form-builder-api/internal/service"
)

// FormHandler handles form management requests
type FormHandler struct {
	formService service.FormService
}

// NewFormHandler creates a new FormHandler
func NewFormHandler(formService service.FormService) *FormHandler {
	return &FormHandler{
		formService: formService,
	}
}

// CreateForm creates a form with its fields
func (h *FormHandler) CreateForm(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}

	var req dto.CreateFormRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request body")
		return
	}

	form, err := h.formService.CreateForm(c.Request.Context(), userID, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.SendSuccess(c, http.StatusCreated, form)
}

// ListForms lists the user's forms with search, status filter and pagination
func (h *FormHandler) ListForms(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}

	filter := repository.FormListFilter{
		Search: c.Query("search"),
		Status: c.Query("status"),
		Page:   queryInt(c, "page", 1),
		Limit:  queryInt(c, "limit", 10),
	}

	result, err := h.formService.ListForms(c.Request.Context(), userID, filter)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, result)
}

// GetForm returns a single form with its fields
func (h *FormHandler) GetForm(c *gin.Context) {
	formID, ok := parseIDParam(c, "formId")
	if !ok {
		return
	}
	userID, role, ok := currentUser(c)
	if !ok {
		return
	}

	form, err := h.formService.GetForm(c.Request.Context(), formID, userID, role)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, form)
}

// UpdateForm partially updates a form; a fields array replaces the field set
func (h *FormHandler) UpdateForm(c *gin.Context) {
	formID, ok := parseIDParam(c, "formId")
	if !ok {
		return
	}
	userID, role, ok := currentUser(c)
	if !ok {
		return
	}

	var req dto.UpdateFormRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request body")
		return
	}

	form, err := h.formService.UpdateForm(c.Request.Context(), formID, userID, role, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, form)
}

// DeleteForm deletes a form along with its fields and responses
func (h *FormHandler) DeleteForm(c *gin.Context) {
	formID, ok := parseIDParam(c, "formId")
	if !ok {
		return
	}
	userID, role, ok := currentUser(c)
	if !ok {
		return
	}

	if err := h.formService.DeleteForm(c.Request.Context(), formID, userID, role); err != nil {
		handleServiceError(c, err)
		return
	}

	response.SendMessage(c, http.StatusOK, "Form deleted successfully", nil)
}

// DuplicateForm copies a form as a new unpublished draft
func (h *FormHandler) DuplicateForm(c *gin.Context) {
	formID, ok := parseIDParam(c, "formId")
	if !ok {
		return
	}
	userID, role, ok := currentUser(c)
	if !ok {
		return
	}

	form, err := h.formService.DuplicateForm(c.Request.Context(), formID, userID, role)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.SendSuccess(c, http.StatusCreated, form)
}

// queryInt parses an integer query parameter, falling back on bad input
func queryInt(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
