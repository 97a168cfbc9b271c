package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// FormResponse represents a single submitted response to a published form.
// Responses are immutable once stored and are removed only when the owning
// form is deleted.
type FormResponse struct {
	ID          uuid.UUID         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	FormID      uuid.UUID         `gorm:"type:uuid;not null;index:idx_form_responses_form_id" json:"formId"`
	Data        datatypes.JSONMap `gorm:"type:jsonb;not null" json:"data"`
	UserAgent   string            `gorm:"type:varchar(512)" json:"userAgent,omitempty"`
	IPAddress   string            `gorm:"type:varchar(64)" json:"ipAddress,omitempty"`
	UserID      *uuid.UUID        `gorm:"type:uuid;index:idx_form_responses_user_id" json:"userId,omitempty"`
	SubmittedAt time.Time         `gorm:"not null;index:idx_form_responses_submitted_at;autoCreateTime" json:"submittedAt"`
}

// TableName specifies the table name for FormResponse
func (FormResponse) TableName() string {
	return "form_responses"
}
