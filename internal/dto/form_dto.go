package dto

import (
	"time"

	"github.com/google/uuid"

	"form-builder-api/internal/domain"
)

// ThemeRequest represents the presentation settings of a form
type ThemeRequest struct {
	BackgroundColor string `json:"backgroundColor" binding:"required,hexcolor"`
	InputColor      string `json:"inputColor" binding:"required,hexcolor"`
	LabelColor      string `json:"labelColor" binding:"required,hexcolor"`
	FontSize        string `json:"fontSize" binding:"required"`
	Alignment       string `json:"alignment" binding:"required,oneof=left center right"`
}

// ToTheme converts the request to the domain theme
func (t ThemeRequest) ToTheme() domain.FormTheme {
	return domain.FormTheme{
		BackgroundColor: t.BackgroundColor,
		InputColor:      t.InputColor,
		LabelColor:      t.LabelColor,
		FontSize:        t.FontSize,
		Alignment:       t.Alignment,
	}
}

// FieldRequest represents a single field definition in a create/update request
type FieldRequest struct {
	Type        string   `json:"type" binding:"required"`
	Label       string   `json:"label" binding:"required,max=100"`
	Placeholder string   `json:"placeholder"`
	Required    bool     `json:"required"`
	Options     []string `json:"options"`
	Order       *int     `json:"order" binding:"omitempty,min=0"`
	Section     string   `json:"section"`
}

// CreateFormRequest represents the request to create a new form
type CreateFormRequest struct {
	Title            string         `json:"title" binding:"required,max=100"`
	Description      string         `json:"description"`
	SubmitButtonText string         `json:"submitButtonText"`
	SuccessMessage   string         `json:"successMessage"`
	Theme            ThemeRequest   `json:"theme" binding:"required"`
	Fields           []FieldRequest `json:"fields" binding:"required,min=1,dive"`
}

// UpdateFormRequest represents a partial form update. A nil Fields leaves the
// field set untouched; a non-nil Fields replaces it wholesale.
type UpdateFormRequest struct {
	Title            *string         `json:"title" binding:"omitempty,max=100"`
	Description      *string         `json:"description"`
	SubmitButtonText *string         `json:"submitButtonText"`
	SuccessMessage   *string         `json:"successMessage"`
	Theme            *ThemeRequest   `json:"theme"`
	Fields           *[]FieldRequest `json:"fields" binding:"omitempty,min=1,dive"`
	IsPublished      *bool           `json:"isPublished"`
	IsActive         *bool           `json:"isActive"`
}

// FieldResponse represents a field definition in API responses
type FieldResponse struct {
	ID          uuid.UUID `json:"id"`
	Type        string    `json:"type"`
	Label       string    `json:"label"`
	Placeholder string    `json:"placeholder,omitempty"`
	Required    bool      `json:"required"`
	Options     []string  `json:"options,omitempty"`
	Order       int       `json:"order"`
	Section     string    `json:"section,omitempty"`
}

// FormResponse represents a form definition in API responses
type FormResponse struct {
	ID               uuid.UUID        `json:"id"`
	OwnerID          uuid.UUID        `json:"ownerId"`
	Title            string           `json:"title"`
	Description      string           `json:"description,omitempty"`
	SubmitButtonText string           `json:"submitButtonText"`
	SuccessMessage   string           `json:"successMessage"`
	Theme            domain.FormTheme `json:"theme"`
	IsPublished      bool             `json:"isPublished"`
	IsActive         bool             `json:"isActive"`
	Fields           []FieldResponse  `json:"fields"`
	ResponseCount    int64            `json:"responseCount"`
	CreatedAt        time.Time        `json:"createdAt"`
	UpdatedAt        time.Time        `json:"updatedAt"`
}

// Pagination describes the page window of a list response
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

// PaginatedFormsResponse is a page of forms with pagination metadata
type PaginatedFormsResponse struct {
	Forms      []FormResponse `json:"forms"`
	Pagination Pagination     `json:"pagination"`
}

// ToFieldResponse converts a domain field to its API shape
func ToFieldResponse(f *domain.FormField) FieldResponse {
	return FieldResponse{
		ID:          f.ID,
		Type:        string(f.Type),
		Label:       f.Label,
		Placeholder: f.Placeholder,
		Required:    f.Required,
		Options:     f.Options,
		Order:       f.Order,
		Section:     f.Section,
	}
}

// ToFormResponse converts a domain form to its API shape
func ToFormResponse(form *domain.Form) *FormResponse {
	fields := make([]FieldResponse, 0, len(form.Fields))
	for i := range form.Fields {
		fields = append(fields, ToFieldResponse(&form.Fields[i]))
	}

	return &FormResponse{
		ID:               form.ID,
		OwnerID:          form.OwnerID,
		Title:            form.Title,
		Description:      form.Description,
		SubmitButtonText: form.SubmitButtonText,
		SuccessMessage:   form.SuccessMessage,
		Theme:            form.Theme.Data(),
		IsPublished:      form.IsPublished,
		IsActive:         form.IsActive,
		Fields:           fields,
		CreatedAt:        form.CreatedAt,
		UpdatedAt:        form.UpdatedAt,
	}
}
