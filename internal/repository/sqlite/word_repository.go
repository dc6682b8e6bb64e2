package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Masterminds/squirrel"

	"github.com/lexidrill/lexidrill/internal/logger"
	"github.com/lexidrill/lexidrill/internal/models"
	"github.com/lexidrill/lexidrill/internal/repository"
)

var sqlBuilder = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)

const wordColumns = "id, topic_id, term, translation, example, tags, status, ease_factor, interval_days, reps, lapses, due_at, right_count, wrong_count, skip_count, last_reviewed_at, created_at, updated_at"

type wordRepository struct {
	db *sql.DB
}

// NewWordRepository creates a new WordRepository implementation
func NewWordRepository(db *sql.DB) repository.WordRepository {
	return &wordRepository{db: db}
}

func (r *wordRepository) Get(ctx context.Context, id string) (*models.Word, error) {
	log := logger.FromContext(ctx).WithPrefix("word_repo")
	log.Debug("getting word: id=%s", id)

	row := r.db.QueryRowContext(ctx, `SELECT `+wordColumns+` FROM words WHERE id = ?`, id)
	w, err := scanWord(row)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("word not found: id=%s", id)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get word: %v", err)
		return nil, err
	}
	return w, nil
}

func (r *wordRepository) List(ctx context.Context, filter repository.WordFilter) ([]models.Word, error) {
	log := logger.FromContext(ctx).WithPrefix("word_repo")
	log.Debug("listing words: topic=%s status=%s tag=%s", filter.TopicID, filter.Status, filter.Tag)

	query := sqlBuilder.Select(wordColumns).From("words")
	if filter.TopicID != "" {
		query = query.Where(squirrel.Eq{"topic_id": filter.TopicID})
	}
	if filter.Status != "" {
		query = query.Where(squirrel.Eq{"status": string(filter.Status)})
	}
	if filter.Tag != "" {
		// Tags live in a JSON array column; match the quoted element.
		query = query.Where(squirrel.Like{"tags": `%"` + filter.Tag + `"%`})
	}
	query = query.OrderBy("created_at ASC, id ASC")

	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		log.Error("failed to query words: %v", err)
		return nil, err
	}
	defer rows.Close()

	var words []models.Word
	for rows.Next() {
		w, err := scanWord(rows)
		if err != nil {
			log.Error("failed to scan word row: %v", err)
			return nil, err
		}
		words = append(words, *w)
	}
	log.Debug("found %d words", len(words))
	return words, rows.Err()
}

func (r *wordRepository) Upsert(ctx context.Context, w models.Word) error {
	log := logger.FromContext(ctx).WithPrefix("word_repo")
	log.Debug("upserting word: id=%s, term=%s, status=%s", w.ID, w.Term, w.Status)

	_, err := r.db.ExecContext(ctx, `
INSERT INTO words (`+wordColumns+`)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    topic_id = excluded.topic_id,
    term = excluded.term,
    translation = excluded.translation,
    example = excluded.example,
    tags = excluded.tags,
    status = excluded.status,
    ease_factor = excluded.ease_factor,
    interval_days = excluded.interval_days,
    reps = excluded.reps,
    lapses = excluded.lapses,
    due_at = excluded.due_at,
    right_count = excluded.right_count,
    wrong_count = excluded.wrong_count,
    skip_count = excluded.skip_count,
    last_reviewed_at = excluded.last_reviewed_at,
    updated_at = excluded.updated_at
`, w.ID, w.TopicID, w.Term, w.Translation, w.Example, encodeTags(w.Tags), string(w.Status),
		w.EaseFactor, w.IntervalDays, w.Reps, w.Lapses, nullableTime(w.DueAt),
		w.RightCount, w.WrongCount, w.SkipCount, nullableTime(w.LastReviewedAt),
		w.CreatedAt, w.UpdatedAt)
	if err != nil {
		log.Error("failed to upsert word: %v", err)
	}
	return err
}

func (r *wordRepository) Delete(ctx context.Context, id string) error {
	log := logger.FromContext(ctx).WithPrefix("word_repo")
	log.Debug("deleting word: id=%s", id)

	_, err := r.db.ExecContext(ctx, `DELETE FROM words WHERE id = ?`, id)
	if err != nil {
		log.Error("failed to delete word: %v", err)
	}
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWord(row rowScanner) (*models.Word, error) {
	var w models.Word
	var tags, status string
	var dueAt, lastReviewedAt sql.NullTime
	err := row.Scan(&w.ID, &w.TopicID, &w.Term, &w.Translation, &w.Example, &tags, &status,
		&w.EaseFactor, &w.IntervalDays, &w.Reps, &w.Lapses, &dueAt,
		&w.RightCount, &w.WrongCount, &w.SkipCount, &lastReviewedAt,
		&w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		return nil, err
	}
	w.Tags = decodeTags(tags)
	w.Status = models.WordStatus(status)
	w.DueAt = timePtr(dueAt)
	w.LastReviewedAt = timePtr(lastReviewedAt)
	return &w, nil
}
