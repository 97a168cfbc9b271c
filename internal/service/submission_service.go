package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"form-builder-api/internal/domain"
	"form-builder-api/internal/dto"
	"form-builder-api/internal/metrics"
	"form-builder-api/internal/repository"
	"form-builder-api/internal/response"
)

// SubmissionService defines the interface for public response submission
type SubmissionService interface {
	SubmitResponse(ctx context.Context, formID uuid.UUID, userID *uuid.UUID, req *dto.SubmitResponseRequest) (*dto.ResponseRecord, error)
}

type submissionServiceImpl struct {
	formRepo     repository.FormRepository
	responseRepo repository.ResponseRepository
	metrics      *metrics.Metrics
	logger       *zap.Logger
}

// NewSubmissionService creates a new instance of SubmissionService
func NewSubmissionService(formRepo repository.FormRepository, responseRepo repository.ResponseRepository, m *metrics.Metrics, logger *zap.Logger) SubmissionService {
	return &submissionServiceImpl{
		formRepo:     formRepo,
		responseRepo: responseRepo,
		metrics:      m,
		logger:       logger,
	}
}

// SubmitResponse validates the submitted data against the form's fields and
// persists it. Forms that are unpublished or inactive reject submissions the
// same way a missing form does.
func (s *submissionServiceImpl) SubmitResponse(ctx context.Context, formID uuid.UUID, userID *uuid.UUID, req *dto.SubmitResponseRequest) (*dto.ResponseRecord, error) {
	form, err := s.formRepo.FindPublicByID(ctx, formID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFoundError("Form not found", "")
		}
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to fetch form", err.Error())
	}

	if err := ValidateSubmission(form.Fields, req.Data); err != nil {
		return nil, err
	}

	record := &domain.FormResponse{
		FormID:    formID,
		Data:      datatypes.JSONMap(req.Data),
		UserAgent: req.UserAgent,
		IPAddress: req.IPAddress,
		UserID:    userID,
	}

	if err := s.responseRepo.Create(ctx, record); err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to save response", err.Error())
	}

	if s.metrics != nil {
		s.metrics.IncrementResponseSubmitted()
	}

	s.logger.Info("Response submitted",
		zap.String("form_id", formID.String()),
		zap.String("response_id", record.ID.String()),
	)

	return dto.ToResponseRecord(record), nil
}

var emailFieldPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidateSubmission checks submitted data against the form's field
// definitions and returns the first violation found. Keys in data that match
// no field are ignored.
func ValidateSubmission(fields []domain.FormField, data map[string]interface{}) error {
	for _, field := range fields {
		value := data[field.ID.String()]

		if isEmptyValue(value) {
			if field.Required {
				return response.NewValidationError(
					fmt.Sprintf("Field '%s' is required", field.Label), field.ID.String())
			}
			continue
		}

		if err := validateFieldValue(field, value); err != nil {
			return err
		}
	}
	return nil
}

// isEmptyValue reports whether a submitted value counts as not answered
func isEmptyValue(value interface{}) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case []interface{}:
		return len(v) == 0
	case []string:
		return len(v) == 0
	default:
		return false
	}
}

func validateFieldValue(field domain.FormField, value interface{}) error {
	switch field.Type {
	case domain.FieldTypeEmail:
		str, ok := value.(string)
		if !ok || !emailFieldPattern.MatchString(str) {
			return response.NewValidationError(
				fmt.Sprintf("Field '%s' must be a valid email address", field.Label), field.ID.String())
		}
	case domain.FieldTypeNumber:
		if !isNumeric(value) {
			return response.NewValidationError(
				fmt.Sprintf("Field '%s' must be a number", field.Label), field.ID.String())
		}
	case domain.FieldTypeSelect, domain.FieldTypeRadio:
		str, ok := value.(string)
		if !ok || !containsOption(field.Options, str) {
			return response.NewValidationError(
				fmt.Sprintf("Field '%s' has an invalid option", field.Label), field.ID.String())
		}
	case domain.FieldTypeCheckbox, domain.FieldTypeMultiSelect:
		selected, err := stringSlice(value)
		if err != nil {
			return response.NewValidationError(
				fmt.Sprintf("Field '%s' must be a list of options", field.Label), field.ID.String())
		}
		for _, item := range selected {
			if !containsOption(field.Options, item) {
				return response.NewValidationError(
					fmt.Sprintf("Field '%s' has an invalid option", field.Label), field.ID.String())
			}
		}
	}
	return nil
}

// isNumeric accepts JSON numbers and numeric strings
func isNumeric(value interface{}) bool {
	switch v := value.(type) {
	case float64, int:
		return true
	case string:
		_, err := strconv.ParseFloat(v, 64)
		return err == nil
	default:
		return false
	}
}

func containsOption(options []string, value string) bool {
	for _, opt := range options {
		if opt == value {
			return true
		}
	}
	return false
}

// stringSlice coerces a decoded JSON array into strings
func stringSlice(value interface{}) ([]string, error) {
	switch v := value.(type) {
	case []string:
		return v, nil
	case []interface{}:
		out := make([]string, len(v))
		for i, item := range v {
			str, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("element %d is not a string", i)
			}
			out[i] = str
		}
		return out, nil
	default:
		return nil, fmt.Errorf("not a list")
	}
}
