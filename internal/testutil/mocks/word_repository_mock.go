package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/lexidrill/lexidrill/internal/models"
	"github.com/lexidrill/lexidrill/internal/repository"
)

// MockWordRepository is a mock implementation of repository.WordRepository
type MockWordRepository struct {
	mock.Mock
}

func (m *MockWordRepository) Get(ctx context.Context, id string) (*models.Word, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Word), args.Error(1)
}

func (m *MockWordRepository) List(ctx context.Context, filter repository.WordFilter) ([]models.Word, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Word), args.Error(1)
}

func (m *MockWordRepository) Upsert(ctx context.Context, word models.Word) error {
	args := m.Called(ctx, word)
	return args.Error(0)
}

func (m *MockWordRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
