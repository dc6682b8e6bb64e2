package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/lexidrill/lexidrill/internal/models"
)

// MockTopicRepository is a mock implementation of repository.TopicRepository
type MockTopicRepository struct {
	mock.Mock
}

func (m *MockTopicRepository) Get(ctx context.Context, id string) (*models.Topic, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Topic), args.Error(1)
}

func (m *MockTopicRepository) List(ctx context.Context) ([]models.Topic, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Topic), args.Error(1)
}

func (m *MockTopicRepository) Upsert(ctx context.Context, topic models.Topic) error {
	args := m.Called(ctx, topic)
	return args.Error(0)
}

func (m *MockTopicRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockStoreAdmin is a mock implementation of repository.StoreAdmin
type MockStoreAdmin struct {
	mock.Mock
}

func (m *MockStoreAdmin) ClearAll(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
