package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"form-builder-api/internal/domain"
)

// FormListFilter narrows the owner's form listing
type FormListFilter struct {
	Search string
	Status string // all | published | draft | active | inactive
	Page   int
	Limit  int
}

// FormRepository defines the interface for form data access
type FormRepository interface {
	Create(ctx context.Context, form *domain.Form) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Form, error)
	FindByIDAndOwner(ctx context.Context, id, ownerID uuid.UUID) (*domain.Form, error)
	FindPublicByID(ctx context.Context, id uuid.UUID) (*domain.Form, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID, filter FormListFilter) ([]*domain.Form, int64, error)
	Update(ctx context.Context, form *domain.Form, fields *[]domain.FormField) error
	Delete(ctx context.Context, id uuid.UUID) error
	PurgeDeletedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// formRepositoryImpl is the GORM implementation of FormRepository
type formRepositoryImpl struct {
	db *gorm.DB
}

// NewFormRepository creates a new instance of FormRepository
func NewFormRepository(db *gorm.DB) FormRepository {
	return &formRepositoryImpl{db: db}
}

// withFields preloads the field set in display order
func withFields(db *gorm.DB) *gorm.DB {
	return db.Preload("Fields", func(db *gorm.DB) *gorm.DB {
		return db.Order("display_order ASC")
	})
}

// Create persists a form together with its fields in a single transaction
func (r *formRepositoryImpl) Create(ctx context.Context, form *domain.Form) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(form).Error
	})
}

// FindByID finds a form by ID with its fields, ignoring ownership
func (r *formRepositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*domain.Form, error) {
	var form domain.Form
	if err := withFields(r.db.WithContext(ctx)).
		Where("id = ?", id).
		First(&form).Error; err != nil {
		return nil, err
	}
	return &form, nil
}

// FindByIDAndOwner finds a form owned by the given user
func (r *formRepositoryImpl) FindByIDAndOwner(ctx context.Context, id, ownerID uuid.UUID) (*domain.Form, error) {
	var form domain.Form
	if err := withFields(r.db.WithContext(ctx)).
		Where("id = ? AND owner_id = ?", id, ownerID).
		First(&form).Error; err != nil {
		return nil, err
	}
	return &form, nil
}

// FindPublicByID finds a form only if it is published and active
func (r *formRepositoryImpl) FindPublicByID(ctx context.Context, id uuid.UUID) (*domain.Form, error) {
	var form domain.Form
	if err := withFields(r.db.WithContext(ctx)).
		Where("id = ? AND is_published = ? AND is_active = ?", id, true, true).
		First(&form).Error; err != nil {
		return nil, err
	}
	return &form, nil
}

// ListByOwner returns a page of the owner's forms ordered by last update
func (r *formRepositoryImpl) ListByOwner(ctx context.Context, ownerID uuid.UUID, filter FormListFilter) ([]*domain.Form, int64, error) {
	query := r.db.WithContext(ctx).Model(&domain.Form{}).
		Where("owner_id = ?", ownerID)

	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("LOWER(title) LIKE LOWER(?) OR LOWER(description) LIKE LOWER(?)", like, like)
	}

	switch filter.Status {
	case "published":
		query = query.Where("is_published = ?", true)
	case "draft":
		query = query.Where("is_published = ?", false)
	case "active":
		query = query.Where("is_active = ?", true)
	case "inactive":
		query = query.Where("is_active = ?", false)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var forms []*domain.Form
	offset := (filter.Page - 1) * filter.Limit
	if err := withFields(query.Session(&gorm.Session{})).
		Order("updated_at DESC").
		Offset(offset).
		Limit(filter.Limit).
		Find(&forms).Error; err != nil {
		return nil, 0, err
	}

	return forms, total, nil
}

// Update saves the form attributes and, when fields is non-nil, replaces the
// entire field set. Both run in one transaction so readers never observe a
// partially replaced field set.
func (r *formRepositoryImpl) Update(ctx context.Context, form *domain.Form, fields *[]domain.FormField) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Fields", "Responses").Save(form).Error; err != nil {
			return err
		}

		if fields == nil {
			return nil
		}

		if err := tx.Unscoped().
			Where("form_id = ?", form.ID).
			Delete(&domain.FormField{}).Error; err != nil {
			return err
		}

		newFields := *fields
		for i := range newFields {
			newFields[i].FormID = form.ID
		}
		if len(newFields) > 0 {
			if err := tx.Create(&newFields).Error; err != nil {
				return err
			}
		}

		form.Fields = newFields
		return nil
	})
}

// Delete soft deletes the form and hard deletes its fields and responses
func (r *formRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().
			Where("form_id = ?", id).
			Delete(&domain.FormField{}).Error; err != nil {
			return err
		}
		if err := tx.Where("form_id = ?", id).
			Delete(&domain.FormResponse{}).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.Form{}, "id = ?", id).Error
	})
}

// PurgeDeletedBefore permanently removes forms soft-deleted before the cutoff.
// Fields and responses were already removed when the form was deleted.
func (r *formRepositoryImpl) PurgeDeletedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Unscoped().
		Where("deleted_at IS NOT NULL AND deleted_at < ?", cutoff).
		Delete(&domain.Form{})
	return result.RowsAffected, result.Error
}
