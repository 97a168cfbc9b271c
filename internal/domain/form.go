package domain

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// FieldType represents the input type of a form field
type FieldType string

// FieldType constants
const (
	FieldTypeText        FieldType = "TEXT"
	FieldTypeTextarea    FieldType = "TEXTAREA"
	FieldTypeRadio       FieldType = "RADIO"
	FieldTypeCheckbox    FieldType = "CHECKBOX"
	FieldTypeSelect      FieldType = "SELECT"
	FieldTypeMultiSelect FieldType = "MULTISELECT"
	FieldTypeDate        FieldType = "DATE"
	FieldTypeEmail       FieldType = "EMAIL"
	FieldTypeNumber      FieldType = "NUMBER"
	FieldTypePhone       FieldType = "PHONE"
	FieldTypeURL         FieldType = "URL"
	FieldTypeFile        FieldType = "FILE"
)

// IsChoiceType reports whether the field type selects from a fixed option set
func (t FieldType) IsChoiceType() bool {
	switch t {
	case FieldTypeRadio, FieldTypeCheckbox, FieldTypeSelect, FieldTypeMultiSelect:
		return true
	}
	return false
}

// IsValidFieldType reports whether the given string is a known field type
func IsValidFieldType(s string) bool {
	switch FieldType(s) {
	case FieldTypeText, FieldTypeTextarea, FieldTypeRadio, FieldTypeCheckbox,
		FieldTypeSelect, FieldTypeMultiSelect, FieldTypeDate, FieldTypeEmail,
		FieldTypeNumber, FieldTypePhone, FieldTypeURL, FieldTypeFile:
		return true
	}
	return false
}

// FormTheme holds presentation settings for the public form page
type FormTheme struct {
	BackgroundColor string `json:"backgroundColor"`
	InputColor      string `json:"inputColor"`
	LabelColor      string `json:"labelColor"`
	FontSize        string `json:"fontSize"`
	Alignment       string `json:"alignment"`
}

// Form represents a form definition owned by a user
type Form struct {
	BaseModel
	OwnerID          uuid.UUID                          `gorm:"type:uuid;not null;index:idx_forms_owner_id" json:"ownerId"`
	Title            string                             `gorm:"type:varchar(255);not null" json:"title"`
	Description      string                             `gorm:"type:text" json:"description"`
	SubmitButtonText string                             `gorm:"type:varchar(100);not null;default:'Submit'" json:"submitButtonText"`
	SuccessMessage   string                             `gorm:"type:text;not null;default:'Thank you for your submission!'" json:"successMessage"`
	Theme            datatypes.JSONType[FormTheme]      `gorm:"type:jsonb" json:"theme"`
	IsPublished      bool                               `gorm:"default:false;index:idx_forms_is_published" json:"isPublished"`
	IsActive         bool                               `gorm:"default:true" json:"isActive"`
	Fields           []FormField                        `gorm:"foreignKey:FormID;constraint:OnDelete:CASCADE" json:"fields,omitempty"`
	Responses        []FormResponse                     `gorm:"foreignKey:FormID;constraint:OnDelete:CASCADE" json:"responses,omitempty"`
}

// AcceptsSubmissions reports whether the form is in the published+active state
func (f *Form) AcceptsSubmissions() bool {
	return f.IsPublished && f.IsActive
}

// FormField represents a single field definition within a form
type FormField struct {
	BaseModel
	FormID      uuid.UUID                    `gorm:"type:uuid;not null;index:idx_form_fields_form_id" json:"formId"`
	Type        FieldType                    `gorm:"type:varchar(20);not null" json:"type"`
	Label       string                       `gorm:"type:varchar(100);not null" json:"label"`
	Placeholder string                       `gorm:"type:varchar(255)" json:"placeholder"`
	Required    bool                         `gorm:"default:false" json:"required"`
	Options     datatypes.JSONSlice[string]  `gorm:"type:jsonb" json:"options"`
	Order       int                          `gorm:"column:display_order;type:int;not null;default:0;index:idx_form_fields_display_order" json:"order"`
	Section     string                       `gorm:"type:varchar(100)" json:"section"`
}

// TableName specifies the table name for Form
func (Form) TableName() string {
	return "forms"
}

// TableName specifies the table name for FormField
func (FormField) TableName() string {
	return "form_fields"
}
