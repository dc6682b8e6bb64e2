package repository

import (
	"context"

	"github.com/lexidrill/lexidrill/internal/models"
)

// TopicRepository handles topic data access
type TopicRepository interface {
	Get(ctx context.Context, id string) (*models.Topic, error)
	List(ctx context.Context) ([]models.Topic, error)
	Upsert(ctx context.Context, topic models.Topic) error
	// Delete removes a topic and cascades to every word in it.
	Delete(ctx context.Context, id string) error
}

// WordFilter narrows word listings.
type WordFilter struct {
	TopicID string
	Status  models.WordStatus
	Tag     string
}

// WordRepository handles word data access
type WordRepository interface {
	Get(ctx context.Context, id string) (*models.Word, error)
	List(ctx context.Context, filter WordFilter) ([]models.Word, error)
	Upsert(ctx context.Context, word models.Word) error
	Delete(ctx context.Context, id string) error
}

// StoreAdmin covers whole-store operations used by snapshot import.
type StoreAdmin interface {
	ClearAll(ctx context.Context) error
}
