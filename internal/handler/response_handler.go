package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"form-builder-api/internal/dto"
	"form-builder-api/internal/repository"
	"form-builder-api/internal/response"
	"form-builder-api/internal/service"
)

// ResponseHandler handles response browsing, statistics and export requests
type ResponseHandler struct {
	analyticsService service.AnalyticsService
}

// NewResponseHandler creates a new ResponseHandler
func NewResponseHandler(analyticsService service.AnalyticsService) *ResponseHandler {
	return &ResponseHandler{
		analyticsService: analyticsService,
	}
}

// GetResponses returns a page of a form's responses
func (h *ResponseHandler) GetResponses(c *gin.Context) {
	formID, ok := parseIDParam(c, "formId")
	if !ok {
		return
	}
	userID, role, ok := currentUser(c)
	if !ok {
		return
	}

	filter := repository.ResponseFilter{
		Page:  queryInt(c, "page", 1),
		Limit: queryInt(c, "limit", 10),
	}
	if from, ok := queryTime(c, "dateFrom"); ok {
		filter.DateFrom = from
	} else {
		return
	}
	if to, ok := queryTime(c, "dateTo"); ok {
		filter.DateTo = to
	} else {
		return
	}

	result, err := h.analyticsService.GetResponses(c.Request.Context(), formID, userID, role, filter)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, result)
}

// GetStatistics returns submission volume and top answered fields
func (h *ResponseHandler) GetStatistics(c *gin.Context) {
	formID, ok := parseIDParam(c, "formId")
	if !ok {
		return
	}
	userID, role, ok := currentUser(c)
	if !ok {
		return
	}

	stats, err := h.analyticsService.GetStatistics(c.Request.Context(), formID, userID, role)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, stats)
}

// ExportResponses streams the form's responses as a CSV or JSON download
func (h *ResponseHandler) ExportResponses(c *gin.Context) {
	formID, ok := parseIDParam(c, "formId")
	if !ok {
		return
	}
	userID, role, ok := currentUser(c)
	if !ok {
		return
	}

	var req dto.ExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request body")
		return
	}

	result, err := h.analyticsService.ExportResponses(c.Request.Context(), formID, userID, role, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+result.Filename+`"`)
	c.Data(http.StatusOK, result.ContentType, result.Content)
}

// queryTime parses an RFC 3339 query parameter. The bool is false only after
// an error response has been written.
func queryTime(c *gin.Context, name string) (*time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid "+name+" format, expected RFC 3339")
		return nil, false
	}
	return &t, true
}
