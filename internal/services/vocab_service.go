package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/lexidrill/lexidrill/internal/errors"
	"github.com/lexidrill/lexidrill/internal/logger"
	"github.com/lexidrill/lexidrill/internal/models"
	"github.com/lexidrill/lexidrill/internal/repository"
)

// CreateWordRequest carries the caller-supplied fields of a new word.
type CreateWordRequest struct {
	TopicID     string   `json:"topic_id"`
	Term        string   `json:"term"`
	Translation string   `json:"translation"`
	Example     string   `json:"example"`
	Tags        []string `json:"tags"`
}

// VocabService handles topic and word management
type VocabService interface {
	ListTopics(ctx context.Context) ([]models.Topic, error)
	CreateTopic(ctx context.Context, name string) (*models.Topic, error)
	DeleteTopic(ctx context.Context, id string) error
	ListWords(ctx context.Context, filter repository.WordFilter) ([]models.Word, error)
	CreateWord(ctx context.Context, req CreateWordRequest) (*models.Word, error)
	DeleteWord(ctx context.Context, id string) error
}

type vocabService struct {
	topicRepo repository.TopicRepository
	wordRepo  repository.WordRepository
}

// NewVocabService creates a new VocabService
func NewVocabService(topicRepo repository.TopicRepository, wordRepo repository.WordRepository) VocabService {
	return &vocabService{topicRepo: topicRepo, wordRepo: wordRepo}
}

func (s *vocabService) ListTopics(ctx context.Context) ([]models.Topic, error) {
	topics, err := s.topicRepo.List(ctx)
	if err != nil {
		logger.FromContext(ctx).Error("failed to list topics: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return topics, nil
}

func (s *vocabService) CreateTopic(ctx context.Context, name string) (*models.Topic, error) {
	log := logger.FromContext(ctx)

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.NewValidationError("name", "cannot be empty")
	}

	topic := models.Topic{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: time.Now(),
	}
	if err := s.topicRepo.Upsert(ctx, topic); err != nil {
		log.Error("failed to create topic: %v", err)
		return nil, errors.NewInternalError(err)
	}

	log.Info("topic created: id=%s, name=%s", topic.ID, topic.Name)
	return &topic, nil
}

func (s *vocabService) DeleteTopic(ctx context.Context, id string) error {
	log := logger.FromContext(ctx)

	topic, err := s.topicRepo.Get(ctx, id)
	if err != nil {
		log.Error("failed to get topic: %v", err)
		return errors.NewInternalError(err)
	}
	if topic == nil {
		return errors.NewNotFoundError("topic", id)
	}

	if err := s.topicRepo.Delete(ctx, id); err != nil {
		log.Error("failed to delete topic: %v", err)
		return errors.NewInternalError(err)
	}
	log.Info("topic deleted with its words: id=%s", id)
	return nil
}

func (s *vocabService) ListWords(ctx context.Context, filter repository.WordFilter) ([]models.Word, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, errors.NewValidationError("status", "unknown word status")
	}
	words, err := s.wordRepo.List(ctx, filter)
	if err != nil {
		logger.FromContext(ctx).Error("failed to list words: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return words, nil
}

func (s *vocabService) CreateWord(ctx context.Context, req CreateWordRequest) (*models.Word, error) {
	log := logger.FromContext(ctx)

	req.Term = strings.TrimSpace(req.Term)
	req.Translation = strings.TrimSpace(req.Translation)
	if req.Term == "" {
		return nil, errors.NewValidationError("term", "cannot be empty")
	}
	if req.Translation == "" {
		return nil, errors.NewValidationError("translation", "cannot be empty")
	}

	topic, err := s.topicRepo.Get(ctx, req.TopicID)
	if err != nil {
		log.Error("failed to get topic: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if topic == nil {
		return nil, errors.NewNotFoundError("topic", req.TopicID)
	}

	word := models.NewWord(uuid.NewString(), req.TopicID, req.Term, req.Translation, time.Now())
	word.Example = req.Example
	word.Tags = req.Tags

	if err := s.wordRepo.Upsert(ctx, word); err != nil {
		log.Error("failed to create word: %v", err)
		return nil, errors.NewInternalError(err)
	}

	log.Info("word created: id=%s, term=%s", word.ID, word.Term)
	return &word, nil
}

func (s *vocabService) DeleteWord(ctx context.Context, id string) error {
	log := logger.FromContext(ctx)

	word, err := s.wordRepo.Get(ctx, id)
	if err != nil {
		log.Error("failed to get word: %v", err)
		return errors.NewInternalError(err)
	}
	if word == nil {
		return errors.NewNotFoundError("word", id)
	}

	if err := s.wordRepo.Delete(ctx, id); err != nil {
		log.Error("failed to delete word: %v", err)
		return errors.NewInternalError(err)
	}
	log.Info("word deleted: id=%s", id)
	return nil
}
