package importer

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/lexidrill/lexidrill/internal/logger"
	"github.com/lexidrill/lexidrill/internal/models"
	"github.com/lexidrill/lexidrill/internal/repository"
)

// Config defines the column layout of an imported word list.
type Config struct {
	TermColumn        int    // 0-based column index of the term
	TranslationColumn int    // column of the translation
	ExampleColumn     int    // column of the example sentence (optional)
	TopicColumn       int    // column of the topic name (optional)
	TagsColumn        int    // column of comma-separated tags (optional)
	SheetName         string // XLSX sheet to read
	StartRow          int    // 1-based row to start from (2 skips a header)
	DefaultTopic      string // topic used when the topic column is empty
}

// DefaultConfig returns the layout used by the stock import templates.
func DefaultConfig() Config {
	return Config{
		TermColumn:        0,
		TranslationColumn: 1,
		ExampleColumn:     2,
		TopicColumn:       3,
		TagsColumn:        4,
		SheetName:         "Sheet1",
		StartRow:          2,
		DefaultTopic:      "Imported",
	}
}

// Result holds the outcome of an import operation.
type Result struct {
	TotalProcessed int      `json:"total_processed"`
	TopicsCreated  int      `json:"topics_created"`
	Created        int      `json:"created"`
	Updated        int      `json:"updated"`
	Skipped        int      `json:"skipped"`
	Errors         []string `json:"errors,omitempty"`
}

// Importer loads word lists from spreadsheet files into the store. Existing
// words (matched by term within a topic) keep their scheduling state; only
// their text fields are refreshed.
type Importer struct {
	topicRepo repository.TopicRepository
	wordRepo  repository.WordRepository
}

// New creates an Importer.
func New(topicRepo repository.TopicRepository, wordRepo repository.WordRepository) *Importer {
	return &Importer{topicRepo: topicRepo, wordRepo: wordRepo}
}

// ImportXLSX reads an Excel workbook.
func (im *Importer) ImportXLSX(ctx context.Context, r io.Reader, cfg Config) (*Result, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheet := cfg.SheetName
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	return im.importRows(ctx, rows, cfg)
}

// ImportCSV reads a comma-separated word list.
func (im *Importer) ImportCSV(ctx context.Context, r io.Reader, cfg Config) (*Result, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	return im.importRows(ctx, rows, cfg)
}

func (im *Importer) importRows(ctx context.Context, rows [][]string, cfg Config) (*Result, error) {
	log := logger.FromContext(ctx).WithPrefix("importer")
	result := &Result{}

	topicsByName, err := im.loadTopicsByName(ctx)
	if err != nil {
		return nil, err
	}
	wordsByKey, err := im.loadWordsByKey(ctx)
	if err != nil {
		return nil, err
	}

	start := cfg.StartRow - 1
	if start < 0 {
		start = 0
	}

	now := time.Now()
	for i := start; i < len(rows); i++ {
		row := rows[i]
		result.TotalProcessed++

		term := cell(row, cfg.TermColumn)
		translation := cell(row, cfg.TranslationColumn)
		if term == "" || translation == "" {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: term or translation missing", i+1))
			continue
		}

		topicName := cell(row, cfg.TopicColumn)
		if topicName == "" {
			topicName = cfg.DefaultTopic
		}
		topicID, ok := topicsByName[strings.ToLower(topicName)]
		if !ok {
			topic := models.Topic{ID: uuid.NewString(), Name: topicName, CreatedAt: now}
			if err := im.topicRepo.Upsert(ctx, topic); err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("row %d: create topic %q: %v", i+1, topicName, err))
				result.Skipped++
				continue
			}
			topicsByName[strings.ToLower(topicName)] = topic.ID
			topicID = topic.ID
			result.TopicsCreated++
		}

		var tags []string
		if raw := cell(row, cfg.TagsColumn); raw != "" {
			for _, t := range strings.Split(raw, ",") {
				if t = strings.TrimSpace(t); t != "" {
					tags = append(tags, t)
				}
			}
		}

		key := wordKey(topicID, term)
		if existing, ok := wordsByKey[key]; ok {
			existing.Translation = translation
			existing.Example = cell(row, cfg.ExampleColumn)
			existing.Tags = tags
			existing.UpdatedAt = now
			if err := im.wordRepo.Upsert(ctx, existing); err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("row %d: update word %q: %v", i+1, term, err))
				result.Skipped++
				continue
			}
			wordsByKey[key] = existing
			result.Updated++
			continue
		}

		word := models.NewWord(uuid.NewString(), topicID, term, translation, now)
		word.Example = cell(row, cfg.ExampleColumn)
		word.Tags = tags
		if err := im.wordRepo.Upsert(ctx, word); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: create word %q: %v", i+1, term, err))
			result.Skipped++
			continue
		}
		wordsByKey[key] = word
		result.Created++
	}

	log.Info("import finished: processed=%d, created=%d, updated=%d, skipped=%d, topics_created=%d",
		result.TotalProcessed, result.Created, result.Updated, result.Skipped, result.TopicsCreated)
	return result, nil
}

func (im *Importer) loadTopicsByName(ctx context.Context) (map[string]string, error) {
	topics, err := im.topicRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load existing topics: %w", err)
	}
	byName := make(map[string]string, len(topics))
	for _, t := range topics {
		byName[strings.ToLower(t.Name)] = t.ID
	}
	return byName, nil
}

func (im *Importer) loadWordsByKey(ctx context.Context) (map[string]models.Word, error) {
	words, err := im.wordRepo.List(ctx, repository.WordFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to load existing words: %w", err)
	}
	byKey := make(map[string]models.Word, len(words))
	for _, w := range words {
		byKey[wordKey(w.TopicID, w.Term)] = w
	}
	return byKey, nil
}

func wordKey(topicID, term string) string {
	return topicID + "\x00" + strings.ToLower(strings.TrimSpace(term))
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
