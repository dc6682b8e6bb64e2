package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lexidrill/lexidrill/internal/logger"
	"github.com/lexidrill/lexidrill/internal/models"
	"github.com/lexidrill/lexidrill/internal/repository"
)

type topicRepository struct {
	db *sql.DB
}

// NewTopicRepository creates a new TopicRepository implementation
func NewTopicRepository(db *sql.DB) repository.TopicRepository {
	return &topicRepository{db: db}
}

func (r *topicRepository) Get(ctx context.Context, id string) (*models.Topic, error) {
	log := logger.FromContext(ctx).WithPrefix("topic_repo")
	log.Debug("getting topic: id=%s", id)

	var t models.Topic
	err := r.db.QueryRowContext(ctx, `SELECT id, name, created_at FROM topics WHERE id = ?`, id).
		Scan(&t.ID, &t.Name, &t.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("topic not found: id=%s", id)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get topic: %v", err)
		return nil, err
	}
	return &t, nil
}

func (r *topicRepository) List(ctx context.Context) ([]models.Topic, error) {
	log := logger.FromContext(ctx).WithPrefix("topic_repo")
	log.Debug("listing topics")

	rows, err := r.db.QueryContext(ctx, `SELECT id, name, created_at FROM topics ORDER BY name ASC`)
	if err != nil {
		log.Error("failed to query topics: %v", err)
		return nil, err
	}
	defer rows.Close()

	var topics []models.Topic
	for rows.Next() {
		var t models.Topic
		if err := rows.Scan(&t.ID, &t.Name, &t.CreatedAt); err != nil {
			log.Error("failed to scan topic row: %v", err)
			return nil, err
		}
		topics = append(topics, t)
	}
	log.Debug("found %d topics", len(topics))
	return topics, rows.Err()
}

func (r *topicRepository) Upsert(ctx context.Context, t models.Topic) error {
	log := logger.FromContext(ctx).WithPrefix("topic_repo")
	log.Debug("upserting topic: id=%s, name=%s", t.ID, t.Name)

	_, err := r.db.ExecContext(ctx, `
INSERT INTO topics (id, name, created_at)
VALUES (?, ?, ?)
ON CONFLICT(id) DO UPDATE SET name = excluded.name
`, t.ID, t.Name, t.CreatedAt)
	if err != nil {
		log.Error("failed to upsert topic: %v", err)
	}
	return err
}

func (r *topicRepository) Delete(ctx context.Context, id string) error {
	log := logger.FromContext(ctx).WithPrefix("topic_repo")
	log.Debug("deleting topic with cascade: id=%s", id)

	// Explicit cascade inside one transaction; the FK ON DELETE CASCADE is a
	// backstop for connections opened without foreign keys enabled.
	return tx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM words WHERE topic_id = ?`, id); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `DELETE FROM topics WHERE id = ?`, id)
		return err
	})
}
