package review

import "time"

// TrainingMode selects how a word is drilled in the session UI.
type TrainingMode string

const (
	ModeMixed      TrainingMode = "mixed"
	ModeFlashcards TrainingMode = "flashcards"
	ModeFillBlank  TrainingMode = "fill_blank"
	ModeSpelling   TrainingMode = "spelling"
	ModeSentence   TrainingMode = "sentence"
)

// Valid reports whether m is a known training mode.
func (m TrainingMode) Valid() bool {
	switch m {
	case ModeMixed, ModeFlashcards, ModeFillBlank, ModeSpelling, ModeSentence:
		return true
	}
	return false
}

// concreteModes are the modes a mixed session draws from.
var concreteModes = []TrainingMode{ModeFlashcards, ModeFillBlank, ModeSpelling, ModeSentence}

// Origin records which selection bucket produced an item. It feeds session
// statistics only; scheduling never looks at it after selection.
type Origin string

const (
	OriginDue        Origin = "due"
	OriginInProgress Origin = "in_progress"
	OriginNew        Origin = "new"
)

// Item is one slot of the session queue.
type Item struct {
	WordID string       `json:"word_id"`
	Mode   TrainingMode `json:"mode"`
	Origin Origin       `json:"origin"`
}

// Config describes the session a caller wants.
type Config struct {
	Size    int          `json:"size"`
	Mode    TrainingMode `json:"mode"`
	TopicID string       `json:"topic_id"` // topic id or "all"
	Tags    []string     `json:"tags"`     // OR semantics; empty matches all
}

// TopicAll disables topic filtering.
const TopicAll = "all"

// Stats are the running counters of one session.
type Stats struct {
	Total          int        `json:"total"`
	Answered       int        `json:"answered"`
	Correct        int        `json:"correct"`
	DueDone        int        `json:"due_done"`
	NewIntroduced  int        `json:"new_introduced"`
	MovedCompleted int        `json:"moved_completed"`
	Lapses         int        `json:"lapses"`
	StartedAt      time.Time  `json:"started_at"`
	FinishedAt     *time.Time `json:"finished_at"`
}
