package mocks

import (
	"context"

	"checklistapi/internal/model"
	"checklistapi/internal/service"

	"github.com/stretchr/testify/mock"
)

type MockChecklistService struct {
	mock.Mock
}

func (m *MockChecklistService) List(ctx context.Context, query string) ([]model.Checklist, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Checklist), args.Error(1)
}

func (m *MockChecklistService) Get(ctx context.Context, id string) (*model.Checklist, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Checklist), args.Error(1)
}

func (m *MockChecklistService) Save(ctx context.Context, c *model.Checklist) (*model.Checklist, error) {
	args := m.Called(ctx, c)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Checklist), args.Error(1)
}

func (m *MockChecklistService) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockChecklistService) Health(ctx context.Context) service.Health {
	args := m.Called(ctx)
	return args.Get(0).(service.Health)
}
