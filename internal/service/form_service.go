package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"

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

// PublicFormCache caches the public shape of published forms. Implementations
// must be safe for concurrent use; a nil cache disables caching.
type PublicFormCache interface {
	Get(ctx context.Context, formID uuid.UUID) (*dto.FormResponse, bool)
	Set(ctx context.Context, formID uuid.UUID, form *dto.FormResponse)
	Invalidate(ctx context.Context, formID uuid.UUID)
}

// FormService defines the interface for form lifecycle management
type FormService interface {
	CreateForm(ctx context.Context, userID uuid.UUID, req *dto.CreateFormRequest) (*dto.FormResponse, error)
	ListForms(ctx context.Context, userID uuid.UUID, filter repository.FormListFilter) (*dto.PaginatedFormsResponse, error)
	GetForm(ctx context.Context, formID, userID uuid.UUID, role domain.UserRole) (*dto.FormResponse, error)
	UpdateForm(ctx context.Context, formID, userID uuid.UUID, role domain.UserRole, req *dto.UpdateFormRequest) (*dto.FormResponse, error)
	DeleteForm(ctx context.Context, formID, userID uuid.UUID, role domain.UserRole) error
	DuplicateForm(ctx context.Context, formID, userID uuid.UUID, role domain.UserRole) (*dto.FormResponse, error)
	GetPublicForm(ctx context.Context, formID uuid.UUID) (*dto.FormResponse, error)
}

// formServiceImpl is the implementation of FormService
type formServiceImpl struct {
	formRepo     repository.FormRepository
	responseRepo repository.ResponseRepository
	cache        PublicFormCache
	metrics      *metrics.Metrics
	logger       *zap.Logger
}

// NewFormService creates a new instance of FormService
func NewFormService(formRepo repository.FormRepository, responseRepo repository.ResponseRepository, cache PublicFormCache, m *metrics.Metrics, logger *zap.Logger) FormService {
	return &formServiceImpl{
		formRepo:     formRepo,
		responseRepo: responseRepo,
		cache:        cache,
		metrics:      m,
		logger:       logger,
	}
}

var fontSizePattern = regexp.MustCompile(`^\d+px$`)

// validateTheme checks the constraints binding tags cannot express
func validateTheme(theme *dto.ThemeRequest) error {
	if !fontSizePattern.MatchString(theme.FontSize) {
		return response.NewValidationError("Font size must be in px format", theme.FontSize)
	}
	return nil
}

// buildFields validates field definitions and converts them to domain fields.
// A field without an explicit order gets its position in the input sequence;
// explicit orders must not collide.
func buildFields(reqFields []dto.FieldRequest) ([]domain.FormField, error) {
	if len(reqFields) == 0 {
		return nil, response.NewValidationError("At least one field is required", "")
	}

	seenOrders := make(map[int]bool, len(reqFields))
	fields := make([]domain.FormField, len(reqFields))
	for i, f := range reqFields {
		if !domain.IsValidFieldType(f.Type) {
			return nil, response.NewValidationError(
				fmt.Sprintf("Unknown field type '%s'", f.Type), f.Label)
		}

		fieldType := domain.FieldType(f.Type)
		if fieldType.IsChoiceType() && len(f.Options) == 0 {
			return nil, response.NewValidationError(
				fmt.Sprintf("Field '%s' of type %s requires at least one option", f.Label, f.Type), "")
		}

		order := i
		if f.Order != nil {
			order = *f.Order
			if seenOrders[order] {
				return nil, response.NewValidationError(
					fmt.Sprintf("Duplicate field order %d", order), f.Label)
			}
			seenOrders[order] = true
		}

		fields[i] = domain.FormField{
			Type:        fieldType,
			Label:       f.Label,
			Placeholder: f.Placeholder,
			Required:    f.Required,
			Options:     datatypes.NewJSONSlice(f.Options),
			Order:       order,
			Section:     f.Section,
		}
	}
	return fields, nil
}

// CreateForm creates a form with its field set in one transaction
func (s *formServiceImpl) CreateForm(ctx context.Context, userID uuid.UUID, req *dto.CreateFormRequest) (*dto.FormResponse, error) {
	if err := validateTheme(&req.Theme); err != nil {
		return nil, err
	}

	fields, err := buildFields(req.Fields)
	if err != nil {
		return nil, err
	}

	form := &domain.Form{
		OwnerID:          userID,
		Title:            req.Title,
		Description:      req.Description,
		SubmitButtonText: req.SubmitButtonText,
		SuccessMessage:   req.SuccessMessage,
		Theme:            datatypes.NewJSONType(req.Theme.ToTheme()),
		IsPublished:      false,
		IsActive:         true,
		Fields:           fields,
	}
	if form.SubmitButtonText == "" {
		form.SubmitButtonText = "Submit"
	}
	if form.SuccessMessage == "" {
		form.SuccessMessage = "Thank you for your submission!"
	}

	if err := s.formRepo.Create(ctx, form); err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to create form", err.Error())
	}

	if s.metrics != nil {
		s.metrics.IncrementFormCreated()
	}

	s.logger.Info("Form created",
		zap.String("form_id", form.ID.String()),
		zap.String("owner_id", userID.String()),
		zap.Int("field_count", len(form.Fields)),
	)

	return dto.ToFormResponse(form), nil
}

// ListForms returns a page of the user's forms with response counts
func (s *formServiceImpl) ListForms(ctx context.Context, userID uuid.UUID, filter repository.FormListFilter) (*dto.PaginatedFormsResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 10
	}
	if filter.Limit > 100 {
		filter.Limit = 100
	}

	forms, total, err := s.formRepo.ListByOwner(ctx, userID, filter)
	if err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to list forms", err.Error())
	}

	formIDs := make([]uuid.UUID, len(forms))
	for i, f := range forms {
		formIDs[i] = f.ID
	}
	counts, err := s.responseRepo.CountByFormIDs(ctx, formIDs)
	if err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to count responses", err.Error())
	}

	results := make([]dto.FormResponse, 0, len(forms))
	for _, form := range forms {
		resp := dto.ToFormResponse(form)
		resp.ResponseCount = counts[form.ID]
		results = append(results, *resp)
	}

	return &dto.PaginatedFormsResponse{
		Forms:      results,
		Pagination: paginationFor(filter.Page, filter.Limit, total),
	}, nil
}

// findOwnedForm fetches a form the user may manage. Admins may manage any
// form; for everyone else a missing form and a foreign form are the same
// NotFound, so unpublished forms never leak.
func (s *formServiceImpl) findOwnedForm(ctx context.Context, formID, userID uuid.UUID, role domain.UserRole) (*domain.Form, error) {
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

// GetForm returns a form the user owns (or any form, for admins)
func (s *formServiceImpl) GetForm(ctx context.Context, formID, userID uuid.UUID, role domain.UserRole) (*dto.FormResponse, error) {
	form, err := s.findOwnedForm(ctx, formID, userID, role)
	if err != nil {
		return nil, err
	}

	resp := dto.ToFormResponse(form)
	count, err := s.responseRepo.CountByFormID(ctx, formID)
	if err == nil {
		resp.ResponseCount = count
	}
	return resp, nil
}

// UpdateForm applies a partial update. A present Fields replaces the whole
// field set; attribute update and field replacement commit atomically.
func (s *formServiceImpl) UpdateForm(ctx context.Context, formID, userID uuid.UUID, role domain.UserRole, req *dto.UpdateFormRequest) (*dto.FormResponse, error) {
	form, err := s.findOwnedForm(ctx, formID, userID, role)
	if err != nil {
		return nil, err
	}

	if req.Theme != nil {
		if err := validateTheme(req.Theme); err != nil {
			return nil, err
		}
		form.Theme = datatypes.NewJSONType(req.Theme.ToTheme())
	}
	if req.Title != nil {
		form.Title = *req.Title
	}
	if req.Description != nil {
		form.Description = *req.Description
	}
	if req.SubmitButtonText != nil {
		form.SubmitButtonText = *req.SubmitButtonText
	}
	if req.SuccessMessage != nil {
		form.SuccessMessage = *req.SuccessMessage
	}
	if req.IsPublished != nil {
		form.IsPublished = *req.IsPublished
	}
	if req.IsActive != nil {
		form.IsActive = *req.IsActive
	}

	var newFields *[]domain.FormField
	if req.Fields != nil {
		fields, err := buildFields(*req.Fields)
		if err != nil {
			return nil, err
		}
		newFields = &fields
	}

	if err := s.formRepo.Update(ctx, form, newFields); err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to update form", err.Error())
	}

	if s.cache != nil {
		s.cache.Invalidate(ctx, formID)
	}

	return dto.ToFormResponse(form), nil
}

// DeleteForm deletes a form and cascades to its fields and responses
func (s *formServiceImpl) DeleteForm(ctx context.Context, formID, userID uuid.UUID, role domain.UserRole) error {
	form, err := s.findOwnedForm(ctx, formID, userID, role)
	if err != nil {
		return err
	}

	if err := s.formRepo.Delete(ctx, form.ID); err != nil {
		return response.NewAppError(response.ErrCodeInternal, "Failed to delete form", err.Error())
	}

	if s.cache != nil {
		s.cache.Invalidate(ctx, formID)
	}

	s.logger.Info("Form deleted",
		zap.String("form_id", formID.String()),
		zap.String("owner_id", userID.String()),
	)
	return nil
}

// DuplicateForm copies a form and its fields under fresh identifiers.
// The copy starts unpublished with the title suffixed " (Copy)".
func (s *formServiceImpl) DuplicateForm(ctx context.Context, formID, userID uuid.UUID, role domain.UserRole) (*dto.FormResponse, error) {
	original, err := s.findOwnedForm(ctx, formID, userID, role)
	if err != nil {
		return nil, err
	}

	fields := make([]domain.FormField, len(original.Fields))
	for i, f := range original.Fields {
		fields[i] = domain.FormField{
			Type:        f.Type,
			Label:       f.Label,
			Placeholder: f.Placeholder,
			Required:    f.Required,
			Options:     f.Options,
			Order:       f.Order,
			Section:     f.Section,
		}
	}

	dup := &domain.Form{
		OwnerID:          original.OwnerID,
		Title:            original.Title + " (Copy)",
		Description:      original.Description,
		SubmitButtonText: original.SubmitButtonText,
		SuccessMessage:   original.SuccessMessage,
		Theme:            original.Theme,
		IsPublished:      false,
		IsActive:         original.IsActive,
		Fields:           fields,
	}

	if err := s.formRepo.Create(ctx, dup); err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to duplicate form", err.Error())
	}

	if s.metrics != nil {
		s.metrics.IncrementFormCreated()
	}

	return dto.ToFormResponse(dup), nil
}

// GetPublicForm returns a form for the public fill page. Unpublished,
// inactive and nonexistent forms are indistinguishable.
func (s *formServiceImpl) GetPublicForm(ctx context.Context, formID uuid.UUID) (*dto.FormResponse, error) {
	if s.cache != nil {
		if cached, ok := s.cache.Get(ctx, formID); ok {
			return cached, nil
		}
	}

	form, err := s.formRepo.FindPublicByID(ctx, formID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFoundError("Form not found", "")
		}
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to fetch form", err.Error())
	}

	resp := dto.ToFormResponse(form)
	if s.cache != nil {
		s.cache.Set(ctx, formID, resp)
	}
	return resp, nil
}

// paginationFor computes the page window including the ceiling division
func paginationFor(page, limit int, total int64) dto.Pagination {
	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return dto.Pagination{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
	}
}
