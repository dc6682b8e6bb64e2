package services

import (
	"context"
	"fmt"

	"github.com/lexidrill/lexidrill/internal/errors"
	"github.com/lexidrill/lexidrill/internal/logger"
	"github.com/lexidrill/lexidrill/internal/models"
	"github.com/lexidrill/lexidrill/internal/repository"
)

// ImportSummary reports what an import wrote.
type ImportSummary struct {
	TopicsWritten int `json:"topics_written"`
	WordsWritten  int `json:"words_written"`
	TopicsSkipped int `json:"topics_skipped"`
	WordsSkipped  int `json:"words_skipped"`
}

// SnapshotService handles whole-store export and import
type SnapshotService interface {
	Export(ctx context.Context) (*models.Snapshot, error)
	Import(ctx context.Context, snap models.Snapshot, policy models.MergePolicy) (*ImportSummary, error)
}

type snapshotService struct {
	topicRepo repository.TopicRepository
	wordRepo  repository.WordRepository
	admin     repository.StoreAdmin
}

// NewSnapshotService creates a new SnapshotService
func NewSnapshotService(topicRepo repository.TopicRepository, wordRepo repository.WordRepository, admin repository.StoreAdmin) SnapshotService {
	return &snapshotService{topicRepo: topicRepo, wordRepo: wordRepo, admin: admin}
}

func (s *snapshotService) Export(ctx context.Context) (*models.Snapshot, error) {
	log := logger.FromContext(ctx)

	topics, err := s.topicRepo.List(ctx)
	if err != nil {
		log.Error("failed to export topics: %v", err)
		return nil, errors.NewInternalError(err)
	}
	words, err := s.wordRepo.List(ctx, repository.WordFilter{})
	if err != nil {
		log.Error("failed to export words: %v", err)
		return nil, errors.NewInternalError(err)
	}

	if topics == nil {
		topics = []models.Topic{}
	}
	if words == nil {
		words = []models.Word{}
	}

	log.Info("exported snapshot: topics=%d, words=%d", len(topics), len(words))
	return &models.Snapshot{
		SchemaVersion: models.SnapshotSchemaVersion,
		Topics:        &topics,
		Words:         &words,
	}, nil
}

func (s *snapshotService) Import(ctx context.Context, snap models.Snapshot, policy models.MergePolicy) (*ImportSummary, error) {
	log := logger.FromContext(ctx)

	// All validation happens before the store is touched.
	if !policy.Valid() {
		return nil, errors.NewImportError(fmt.Sprintf("unknown merge policy %q", policy))
	}
	if snap.Topics == nil {
		return nil, errors.NewImportError("missing topics array")
	}
	if snap.Words == nil {
		return nil, errors.NewImportError("missing words array")
	}
	if snap.SchemaVersion != models.SnapshotSchemaVersion {
		return nil, errors.NewImportError(fmt.Sprintf("unsupported schema version %d", snap.SchemaVersion))
	}
	for i, t := range *snap.Topics {
		if t.ID == "" {
			return nil, errors.NewImportError(fmt.Sprintf("topic at index %d has no id", i))
		}
	}
	for i, w := range *snap.Words {
		if w.ID == "" {
			return nil, errors.NewImportError(fmt.Sprintf("word at index %d has no id", i))
		}
		if !w.Status.Valid() {
			return nil, errors.NewImportError(fmt.Sprintf("word %s has unknown status %q", w.ID, w.Status))
		}
	}

	summary := &ImportSummary{}

	existingTopics := map[string]bool{}
	existingWords := map[string]bool{}
	if policy == models.MergeReplace {
		if err := s.admin.ClearAll(ctx); err != nil {
			log.Error("failed to clear store for replace import: %v", err)
			return nil, errors.NewInternalError(err)
		}
	} else {
		topics, err := s.topicRepo.List(ctx)
		if err != nil {
			log.Error("failed to list topics for merge import: %v", err)
			return nil, errors.NewInternalError(err)
		}
		for _, t := range topics {
			existingTopics[t.ID] = true
		}
		words, err := s.wordRepo.List(ctx, repository.WordFilter{})
		if err != nil {
			log.Error("failed to list words for merge import: %v", err)
			return nil, errors.NewInternalError(err)
		}
		for _, w := range words {
			existingWords[w.ID] = true
		}
	}

	for _, t := range *snap.Topics {
		if existingTopics[t.ID] {
			// On collision the existing record wins.
			summary.TopicsSkipped++
			continue
		}
		if err := s.topicRepo.Upsert(ctx, t); err != nil {
			log.Error("failed to import topic %s: %v", t.ID, err)
			return nil, errors.NewInternalError(err)
		}
		summary.TopicsWritten++
	}
	for _, w := range *snap.Words {
		if existingWords[w.ID] {
			summary.WordsSkipped++
			continue
		}
		if err := s.wordRepo.Upsert(ctx, w); err != nil {
			log.Error("failed to import word %s: %v", w.ID, err)
			return nil, errors.NewInternalError(err)
		}
		summary.WordsWritten++
	}

	log.Info("snapshot imported: policy=%s, topics=%d, words=%d, skipped_topics=%d, skipped_words=%d",
		policy, summary.TopicsWritten, summary.WordsWritten, summary.TopicsSkipped, summary.WordsSkipped)
	return summary, nil
}
