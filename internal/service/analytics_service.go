package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"form-builder-api/internal/domain"
	"form-builder-api/internal/dto"
	"form-builder-api/internal/repository"
	"form-builder-api/internal/response"
)

// ExportResult carries a rendered export ready to stream to the client
type ExportResult struct {
	Filename    string
	ContentType string
	Content     []byte
}

// AnalyticsService defines the interface for response browsing, statistics
// and export
type AnalyticsService interface {
	GetResponses(ctx context.Context, formID, userID uuid.UUID, role domain.UserRole, filter repository.ResponseFilter) (*dto.PaginatedResponsesResponse, error)
	GetStatistics(ctx context.Context, formID, userID uuid.UUID, role domain.UserRole) (*dto.StatisticsResponse, error)
	ExportResponses(ctx context.Context, formID, userID uuid.UUID, role domain.UserRole, req *dto.ExportRequest) (*ExportResult, error)
}

type analyticsServiceImpl struct {
	formRepo     repository.FormRepository
	responseRepo repository.ResponseRepository
	logger       *zap.Logger
	now          func() time.Time
}

// NewAnalyticsService creates a new instance of AnalyticsService
func NewAnalyticsService(formRepo repository.FormRepository, responseRepo repository.ResponseRepository, logger *zap.Logger) AnalyticsService {
	return &analyticsServiceImpl{
		formRepo:     formRepo,
		responseRepo: responseRepo,
		logger:       logger,
		now:          time.Now,
	}
}

// findManagedForm resolves ownership the same way form management does
func (s *analyticsServiceImpl) findManagedForm(ctx context.Context, formID, userID uuid.UUID, role domain.UserRole) (*domain.Form, error) {
	var form *domain.Form
	var err error
	if role == domain.UserRoleAdmin {
		form, err = s.formRepo.FindByID(ctx, formID)
	} else {
		form, err = s.formRepo.FindByIDAndOwner(ctx, formID, userID)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFoundError("Form not found", "")
		}
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to fetch form", err.Error())
	}
	return form, nil
}

// GetResponses returns a page of responses for a form the user manages
func (s *analyticsServiceImpl) GetResponses(ctx context.Context, formID, userID uuid.UUID, role domain.UserRole, filter repository.ResponseFilter) (*dto.PaginatedResponsesResponse, error) {
	if _, err := s.findManagedForm(ctx, formID, userID, role); err != nil {
		return nil, err
	}

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 10
	}
	if filter.Limit > 100 {
		filter.Limit = 100
	}

	records, total, err := s.responseRepo.FindByFormID(ctx, formID, filter)
	if err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to list responses", err.Error())
	}

	results := make([]dto.ResponseRecord, 0, len(records))
	for _, r := range records {
		results = append(results, *dto.ToResponseRecord(r))
	}

	return &dto.PaginatedResponsesResponse{
		Responses:  results,
		Pagination: paginationFor(filter.Page, filter.Limit, total),
	}, nil
}

// GetStatistics summarizes submission volume and per-field answer rates.
// "This month" is the current UTC calendar month.
func (s *analyticsServiceImpl) GetStatistics(ctx context.Context, formID, userID uuid.UUID, role domain.UserRole) (*dto.StatisticsResponse, error) {
	form, err := s.findManagedForm(ctx, formID, userID, role)
	if err != nil {
		return nil, err
	}

	total, err := s.responseRepo.CountByFormID(ctx, formID)
	if err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to count responses", err.Error())
	}

	nowUTC := s.now().UTC()
	monthStart := time.Date(nowUTC.Year(), nowUTC.Month(), 1, 0, 0, 0, 0, time.UTC)
	thisMonth, err := s.responseRepo.CountByFormIDSince(ctx, formID, monthStart)
	if err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to count responses", err.Error())
	}

	records, err := s.responseRepo.FindAllByFormID(ctx, formID, nil, nil)
	if err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to load responses", err.Error())
	}

	return &dto.StatisticsResponse{
		TotalResponses:     total,
		ResponsesThisMonth: thisMonth,
		TopFields:          topAnsweredFields(form.Fields, records),
	}, nil
}

// topAnsweredFields tallies how many responses answered each field and
// returns the five most answered. Ties break on field display order so the
// result is stable.
func topAnsweredFields(fields []domain.FormField, records []*domain.FormResponse) []dto.FieldTally {
	tallies := make([]dto.FieldTally, len(fields))
	for i, field := range fields {
		count := int64(0)
		key := field.ID.String()
		for _, r := range records {
			if !isEmptyValue(r.Data[key]) {
				count++
			}
		}
		tallies[i] = dto.FieldTally{
			FieldID:       field.ID,
			FieldLabel:    field.Label,
			ResponseCount: count,
		}
	}

	order := make(map[uuid.UUID]int, len(fields))
	for _, field := range fields {
		order[field.ID] = field.Order
	}
	sort.SliceStable(tallies, func(i, j int) bool {
		if tallies[i].ResponseCount != tallies[j].ResponseCount {
			return tallies[i].ResponseCount > tallies[j].ResponseCount
		}
		return order[tallies[i].FieldID] < order[tallies[j].FieldID]
	})

	if len(tallies) > 5 {
		tallies = tallies[:5]
	}
	return tallies
}

// ExportResponses renders all of a form's responses (optionally bounded by a
// date range) as CSV or pretty-printed JSON
func (s *analyticsServiceImpl) ExportResponses(ctx context.Context, formID, userID uuid.UUID, role domain.UserRole, req *dto.ExportRequest) (*ExportResult, error) {
	form, err := s.findManagedForm(ctx, formID, userID, role)
	if err != nil {
		return nil, err
	}

	var from, to *time.Time
	if req.DateRange != nil {
		from = &req.DateRange.Start
		to = &req.DateRange.End
	}

	records, err := s.responseRepo.FindAllByFormID(ctx, formID, from, to)
	if err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to load responses", err.Error())
	}

	var content []byte
	var contentType string
	switch req.Format {
	case "json":
		content, err = renderJSONExport(records, req.IncludeMetadata)
		contentType = "application/json"
	case "csv":
		content, err = renderCSVExport(form, records, req.IncludeMetadata)
		contentType = "text/csv"
	default:
		return nil, response.NewValidationError("Unsupported export format", req.Format)
	}
	if err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to render export", err.Error())
	}

	filename := fmt.Sprintf("form-responses-%s-%d.%s", formID, s.now().UnixMilli(), req.Format)

	s.logger.Info("Responses exported",
		zap.String("form_id", formID.String()),
		zap.String("format", req.Format),
		zap.Int("count", len(records)),
	)

	return &ExportResult{
		Filename:    filename,
		ContentType: contentType,
		Content:     content,
	}, nil
}

type exportRow struct {
	ID          uuid.UUID              `json:"id"`
	FormID      uuid.UUID              `json:"formId"`
	SubmittedAt time.Time              `json:"submittedAt"`
	Data        map[string]interface{} `json:"data"`
	UserAgent   string                 `json:"userAgent,omitempty"`
	IPAddress   string                 `json:"ipAddress,omitempty"`
}

// renderJSONExport emits the stored records as-is, answers keyed by field id,
// so a parsed export matches what the responses endpoint returns
func renderJSONExport(records []*domain.FormResponse, includeMetadata bool) ([]byte, error) {
	rows := make([]exportRow, 0, len(records))
	for _, r := range records {
		row := exportRow{
			ID:          r.ID,
			FormID:      r.FormID,
			SubmittedAt: r.SubmittedAt,
			Data:        r.Data,
		}
		if includeMetadata {
			row.UserAgent = r.UserAgent
			row.IPAddress = r.IPAddress
		}
		rows = append(rows, row)
	}
	return json.MarshalIndent(rows, "", "  ")
}

func renderCSVExport(form *domain.Form, records []*domain.FormResponse, includeMetadata bool) ([]byte, error) {
	fields := make([]domain.FormField, len(form.Fields))
	copy(fields, form.Fields)
	sort.SliceStable(fields, func(i, j int) bool { return fields[i].Order < fields[j].Order })

	header := []string{"Submission Date"}
	for _, field := range fields {
		header = append(header, field.Label)
	}
	if includeMetadata {
		header = append(header, "User Agent", "IP Address")
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return nil, err
	}

	for _, r := range records {
		row := []string{r.SubmittedAt.UTC().Format(time.RFC3339)}
		for _, field := range fields {
			row = append(row, cellValue(r.Data[field.ID.String()]))
		}
		if includeMetadata {
			row = append(row, r.UserAgent, r.IPAddress)
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}

	w.Flush()
	return buf.Bytes(), w.Error()
}

// cellValue flattens a decoded JSON value into a CSV cell. List answers join
// with ", ".
func cellValue(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case []interface{}:
		parts := make([]string, len(v))
		for i, item := range v {
			parts[i] = cellValue(item)
		}
		return strings.Join(parts, ", ")
	case []string:
		return strings.Join(v, ", ")
	case float64:
		return formatFloat(v)
	case bool:
		if v {
			return "true"
		}
		return "false"
	default:
		return fmt.Sprintf("%v", v)
	}
}

func formatFloat(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%g", v)
}
