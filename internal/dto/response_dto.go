package dto

import (
	"time"

	"github.com/google/uuid"

	"form-builder-api/internal/domain"
)

// SubmitResponseRequest represents an anonymous form submission payload
type SubmitResponseRequest struct {
	Data      map[string]interface{} `json:"data" binding:"required"`
	UserAgent string                 `json:"userAgent"`
	IPAddress string                 `json:"ipAddress"`
}

// ResponseRecord represents a stored form response in API responses
type ResponseRecord struct {
	ID          uuid.UUID              `json:"id"`
	FormID      uuid.UUID              `json:"formId"`
	Data        map[string]interface{} `json:"data"`
	UserAgent   string                 `json:"userAgent,omitempty"`
	IPAddress   string                 `json:"ipAddress,omitempty"`
	UserID      *uuid.UUID             `json:"userId,omitempty"`
	SubmittedAt time.Time              `json:"submittedAt"`
}

// PaginatedResponsesResponse is a page of response records
type PaginatedResponsesResponse struct {
	Responses  []ResponseRecord `json:"responses"`
	Pagination Pagination       `json:"pagination"`
}

// FieldTally is the per-field response count in statistics
type FieldTally struct {
	FieldID       uuid.UUID `json:"fieldId"`
	FieldLabel    string    `json:"fieldLabel"`
	ResponseCount int64     `json:"responseCount"`
}

// StatisticsResponse summarizes a form's collected responses
type StatisticsResponse struct {
	TotalResponses     int64        `json:"totalResponses"`
	ResponsesThisMonth int64        `json:"responsesThisMonth"`
	TopFields          []FieldTally `json:"topFields"`
}

// DateRange is an inclusive [start, end] bound on submission time
type DateRange struct {
	Start time.Time `json:"start" binding:"required"`
	End   time.Time `json:"end" binding:"required"`
}

// ExportRequest represents export options for form responses
type ExportRequest struct {
	Format          string     `json:"format" binding:"required,oneof=csv json"`
	DateRange       *DateRange `json:"dateRange"`
	IncludeMetadata bool       `json:"includeMetadata"`
}

// ToResponseRecord converts a stored response to its API shape
func ToResponseRecord(r *domain.FormResponse) *ResponseRecord {
	return &ResponseRecord{
		ID:          r.ID,
		FormID:      r.FormID,
		Data:        r.Data,
		UserAgent:   r.UserAgent,
		IPAddress:   r.IPAddress,
		UserID:      r.UserID,
		SubmittedAt: r.SubmittedAt,
	}
}
