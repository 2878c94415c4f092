package mocks

import (
	"context"

	"checklistapi/internal/model"

	"github.com/stretchr/testify/mock"
)

type MockChecklistRepository struct {
	mock.Mock
}

func (m *MockChecklistRepository) Upsert(ctx context.Context, c *model.Checklist) (*model.Checklist, error) {
	args := m.Called(ctx, c)
	if f, ok := args.Get(0).(func(context.Context, *model.Checklist) *model.Checklist); ok {
		return f(ctx, c), args.Error(1)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Checklist), args.Error(1)
}

func (m *MockChecklistRepository) FindByID(ctx context.Context, id string) (*model.Checklist, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Checklist), args.Error(1)
}

func (m *MockChecklistRepository) List(ctx context.Context) ([]model.Checklist, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Checklist), args.Error(1)
}

func (m *MockChecklistRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockChecklistRepository) TableExists(ctx context.Context) (bool, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.Error(1)
}

func (m *MockChecklistRepository) TableName() string {
	args := m.Called()
	return args.String(0)
}
