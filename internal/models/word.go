package models

import "time"

// WordStatus tracks where a word sits in the learning lifecycle.
type WordStatus string

const (
	StatusNew        WordStatus = "new"
	StatusInProgress WordStatus = "in_progress"
	StatusCompleted  WordStatus = "completed"
)

// Valid reports whether s is one of the known statuses.
func (s WordStatus) Valid() bool {
	switch s {
	case StatusNew, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// Word is a vocabulary item together with its scheduling state.
// Scheduling fields are mutated only through srs.Apply.
type Word struct {
	ID          string   `json:"id"`
	TopicID     string   `json:"topic_id"`
	Term        string   `json:"term"`
	Translation string   `json:"translation"`
	Example     string   `json:"example,omitempty"`
	Tags        []string `json:"tags,omitempty"`

	Status       WordStatus `json:"status"`
	EaseFactor   float64    `json:"ease_factor"`
	IntervalDays int        `json:"interval_days"`
	Reps         int        `json:"reps"`
	Lapses       int        `json:"lapses"`
	DueAt        *time.Time `json:"due_at"` // nil = due immediately

	RightCount int `json:"right_count"`
	WrongCount int `json:"wrong_count"`
	SkipCount  int `json:"skip_count"`

	LastReviewedAt *time.Time `json:"last_reviewed_at"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// NewWord returns a word in its initial scheduling state.
func NewWord(id, topicID, term, translation string, now time.Time) Word {
	return Word{
		ID:          id,
		TopicID:     topicID,
		Term:        term,
		Translation: translation,
		Status:      StatusNew,
		EaseFactor:  2.5,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// HasAnyTag reports whether the word carries at least one of the given tags.
// An empty filter matches every word.
func (w Word) HasAnyTag(tags []string) bool {
	if len(tags) == 0 {
		return true
	}
	for _, want := range tags {
		for _, have := range w.Tags {
			if have == want {
				return true
			}
		}
	}
	return false
}
