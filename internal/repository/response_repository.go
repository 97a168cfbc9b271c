package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"form-builder-api/internal/domain"
)

// ResponseFilter narrows a response listing by submission time
type ResponseFilter struct {
	DateFrom *time.Time
	DateTo   *time.Time
	Page     int
	Limit    int
}

// ResponseRepository defines the interface for form response data access
type ResponseRepository interface {
	Create(ctx context.Context, response *domain.FormResponse) error
	FindByFormID(ctx context.Context, formID uuid.UUID, filter ResponseFilter) ([]*domain.FormResponse, int64, error)
	FindAllByFormID(ctx context.Context, formID uuid.UUID, dateFrom, dateTo *time.Time) ([]*domain.FormResponse, error)
	CountByFormID(ctx context.Context, formID uuid.UUID) (int64, error)
	CountByFormIDSince(ctx context.Context, formID uuid.UUID, since time.Time) (int64, error)
	CountByFormIDs(ctx context.Context, formIDs []uuid.UUID) (map[uuid.UUID]int64, error)
}

// responseRepositoryImpl is the GORM implementation of ResponseRepository
type responseRepositoryImpl struct {
	db *gorm.DB
}

// NewResponseRepository creates a new instance of ResponseRepository
func NewResponseRepository(db *gorm.DB) ResponseRepository {
	return &responseRepositoryImpl{db: db}
}

// Create persists a new form response
func (r *responseRepositoryImpl) Create(ctx context.Context, response *domain.FormResponse) error {
	return r.db.WithContext(ctx).Create(response).Error
}

func applyDateBounds(query *gorm.DB, dateFrom, dateTo *time.Time) *gorm.DB {
	if dateFrom != nil {
		query = query.Where("submitted_at >= ?", *dateFrom)
	}
	if dateTo != nil {
		query = query.Where("submitted_at <= ?", *dateTo)
	}
	return query
}

// FindByFormID returns a page of responses ordered newest first
func (r *responseRepositoryImpl) FindByFormID(ctx context.Context, formID uuid.UUID, filter ResponseFilter) ([]*domain.FormResponse, int64, error) {
	query := r.db.WithContext(ctx).Model(&domain.FormResponse{}).
		Where("form_id = ?", formID)
	query = applyDateBounds(query, filter.DateFrom, filter.DateTo)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var responses []*domain.FormResponse
	offset := (filter.Page - 1) * filter.Limit
	if err := query.Session(&gorm.Session{}).
		Order("submitted_at DESC").
		Offset(offset).
		Limit(filter.Limit).
		Find(&responses).Error; err != nil {
		return nil, 0, err
	}

	return responses, total, nil
}

// FindAllByFormID returns every response in the optional date range,
// ordered newest first. Used for export and per-field tallies.
func (r *responseRepositoryImpl) FindAllByFormID(ctx context.Context, formID uuid.UUID, dateFrom, dateTo *time.Time) ([]*domain.FormResponse, error) {
	query := r.db.WithContext(ctx).
		Where("form_id = ?", formID)
	query = applyDateBounds(query, dateFrom, dateTo)

	var responses []*domain.FormResponse
	if err := query.Order("submitted_at DESC").Find(&responses).Error; err != nil {
		return nil, err
	}
	return responses, nil
}

// CountByFormID counts all responses for a form
func (r *responseRepositoryImpl) CountByFormID(ctx context.Context, formID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.FormResponse{}).
		Where("form_id = ?", formID).
		Count(&count).Error
	return count, err
}

// CountByFormIDSince counts responses submitted at or after the given time
func (r *responseRepositoryImpl) CountByFormIDSince(ctx context.Context, formID uuid.UUID, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.FormResponse{}).
		Where("form_id = ? AND submitted_at >= ?", formID, since).
		Count(&count).Error
	return count, err
}

// CountByFormIDs counts responses per form in a single query
func (r *responseRepositoryImpl) CountByFormIDs(ctx context.Context, formIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	counts := make(map[uuid.UUID]int64, len(formIDs))
	if len(formIDs) == 0 {
		return counts, nil
	}

	type row struct {
		FormID uuid.UUID
		Count  int64
	}
	var rows []row
	if err := r.db.WithContext(ctx).Model(&domain.FormResponse{}).
		Select("form_id, COUNT(*) as count").
		Where("form_id IN ?", formIDs).
		Group("form_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	for _, r := range rows {
		counts[r.FormID] = r.Count
	}
	return counts, nil
}
