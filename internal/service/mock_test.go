package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"form-builder-api/internal/domain"
	"form-builder-api/internal/dto"
	"form-builder-api/internal/repository"
)

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	CreateFunc      func(ctx context.Context, user *domain.User) error
	FindByIDFunc    func(ctx context.Context, id uuid.UUID) (*domain.User, error)
	FindByEmailFunc func(ctx context.Context, email string) (*domain.User, error)
	EmailTakenFunc  func(ctx context.Context, email string, excludeID uuid.UUID) (bool, error)
	UpdateFunc      func(ctx context.Context, user *domain.User) error
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}
	return nil
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.FindByEmailFunc != nil {
		return m.FindByEmailFunc(ctx, email)
	}
	return nil, nil
}

func (m *MockUserRepository) EmailTaken(ctx context.Context, email string, excludeID uuid.UUID) (bool, error) {
	if m.EmailTakenFunc != nil {
		return m.EmailTakenFunc(ctx, email, excludeID)
	}
	return false, nil
}

func (m *MockUserRepository) Update(ctx context.Context, user *domain.User) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, user)
	}
	return nil
}

// MockFormRepository is a mock implementation of FormRepository
type MockFormRepository struct {
	CreateFunc             func(ctx context.Context, form *domain.Form) error
	FindByIDFunc           func(ctx context.Context, id uuid.UUID) (*domain.Form, error)
	FindByIDAndOwnerFunc   func(ctx context.Context, id, ownerID uuid.UUID) (*domain.Form, error)
	FindPublicByIDFunc     func(ctx context.Context, id uuid.UUID) (*domain.Form, error)
	ListByOwnerFunc        func(ctx context.Context, ownerID uuid.UUID, filter repository.FormListFilter) ([]*domain.Form, int64, error)
	UpdateFunc             func(ctx context.Context, form *domain.Form, fields *[]domain.FormField) error
	DeleteFunc             func(ctx context.Context, id uuid.UUID) error
	PurgeDeletedBeforeFunc func(ctx context.Context, cutoff time.Time) (int64, error)
}

func (m *MockFormRepository) Create(ctx context.Context, form *domain.Form) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, form)
	}
	return nil
}

func (m *MockFormRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Form, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockFormRepository) FindByIDAndOwner(ctx context.Context, id, ownerID uuid.UUID) (*domain.Form, error) {
	if m.FindByIDAndOwnerFunc != nil {
		return m.FindByIDAndOwnerFunc(ctx, id, ownerID)
	}
	return nil, nil
}

func (m *MockFormRepository) FindPublicByID(ctx context.Context, id uuid.UUID) (*domain.Form, error) {
	if m.FindPublicByIDFunc != nil {
		return m.FindPublicByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockFormRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID, filter repository.FormListFilter) ([]*domain.Form, int64, error) {
	if m.ListByOwnerFunc != nil {
		return m.ListByOwnerFunc(ctx, ownerID, filter)
	}
	return nil, 0, nil
}

func (m *MockFormRepository) Update(ctx context.Context, form *domain.Form, fields *[]domain.FormField) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, form, fields)
	}
	return nil
}

func (m *MockFormRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

func (m *MockFormRepository) PurgeDeletedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	if m.PurgeDeletedBeforeFunc != nil {
		return m.PurgeDeletedBeforeFunc(ctx, cutoff)
	}
	return 0, nil
}

// MockResponseRepository is a mock implementation of ResponseRepository
type MockResponseRepository struct {
	CreateFunc             func(ctx context.Context, response *domain.FormResponse) error
	FindByFormIDFunc       func(ctx context.Context, formID uuid.UUID, filter repository.ResponseFilter) ([]*domain.FormResponse, int64, error)
	FindAllByFormIDFunc    func(ctx context.Context, formID uuid.UUID, dateFrom, dateTo *time.Time) ([]*domain.FormResponse, error)
	CountByFormIDFunc      func(ctx context.Context, formID uuid.UUID) (int64, error)
	CountByFormIDSinceFunc func(ctx context.Context, formID uuid.UUID, since time.Time) (int64, error)
	CountByFormIDsFunc     func(ctx context.Context, formIDs []uuid.UUID) (map[uuid.UUID]int64, error)
}

func (m *MockResponseRepository) Create(ctx context.Context, response *domain.FormResponse) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, response)
	}
	return nil
}

func (m *MockResponseRepository) FindByFormID(ctx context.Context, formID uuid.UUID, filter repository.ResponseFilter) ([]*domain.FormResponse, int64, error) {
	if m.FindByFormIDFunc != nil {
		return m.FindByFormIDFunc(ctx, formID, filter)
	}
	return nil, 0, nil
}

func (m *MockResponseRepository) FindAllByFormID(ctx context.Context, formID uuid.UUID, dateFrom, dateTo *time.Time) ([]*domain.FormResponse, error) {
	if m.FindAllByFormIDFunc != nil {
		return m.FindAllByFormIDFunc(ctx, formID, dateFrom, dateTo)
	}
	return nil, nil
}

func (m *MockResponseRepository) CountByFormID(ctx context.Context, formID uuid.UUID) (int64, error) {
	if m.CountByFormIDFunc != nil {
		return m.CountByFormIDFunc(ctx, formID)
	}
	return 0, nil
}

func (m *MockResponseRepository) CountByFormIDSince(ctx context.Context, formID uuid.UUID, since time.Time) (int64, error) {
	if m.CountByFormIDSinceFunc != nil {
		return m.CountByFormIDSinceFunc(ctx, formID, since)
	}
	return 0, nil
}

func (m *MockResponseRepository) CountByFormIDs(ctx context.Context, formIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	if m.CountByFormIDsFunc != nil {
		return m.CountByFormIDsFunc(ctx, formIDs)
	}
	return map[uuid.UUID]int64{}, nil
}

// MockFormCache is a mock implementation of PublicFormCache
type MockFormCache struct {
	GetFunc        func(ctx context.Context, formID uuid.UUID) (*dto.FormResponse, bool)
	SetFunc        func(ctx context.Context, formID uuid.UUID, form *dto.FormResponse)
	InvalidateFunc func(ctx context.Context, formID uuid.UUID)
}

func (m *MockFormCache) Get(ctx context.Context, formID uuid.UUID) (*dto.FormResponse, bool) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, formID)
	}
	return nil, false
}

func (m *MockFormCache) Set(ctx context.Context, formID uuid.UUID, form *dto.FormResponse) {
	if m.SetFunc != nil {
		m.SetFunc(ctx, formID, form)
	}
}

func (m *MockFormCache) Invalidate(ctx context.Context, formID uuid.UUID) {
	if m.InvalidateFunc != nil {
		m.InvalidateFunc(ctx, formID)
	}
}
