package review

import (
	"math/rand"
	"sync"
	"time"

	"github.com/lexidrill/lexidrill/internal/errors"
	"github.com/lexidrill/lexidrill/internal/models"
	"github.com/lexidrill/lexidrill/internal/srs"
)

const (
	// A word lapsing this many times in one session stops being reinserted
	// and is deferred a full day instead.
	maxAttemptsPerSession = 3

	// Deferral applied after the attempt cap, overriding the short lapse
	// retry delay from the rating engine.
	attemptCapDeferral = 24 * time.Hour

	// Reinsertion distance bounds. Far enough that intervening items force
	// genuine recall, near enough to land within the same session.
	reinsertMinOffset = 5
	reinsertMaxOffset = 7
)

// Persister receives every word mutation the session produces. It must not
// block: the in-memory state is authoritative and the session advances
// without waiting for the write to land.
type Persister func(models.Word)

// CardState is the transient per-card UI state, reset whenever the session
// moves to a new item.
type CardState struct {
	AnswerShown      bool `json:"answer_shown"`
	HintLevel        int  `json:"hint_level"`
	SpellingMistakes int  `json:"spelling_mistakes"`

	ratingInFlight bool
}

// Outcome describes what one rating submission did.
type Outcome struct {
	Word       models.Word `json:"word"`
	Reinserted bool        `json:"reinserted"`
	ReinsertAt int         `json:"reinsert_at,omitempty"`
	Deferred   bool        `json:"deferred"` // attempt cap reached, due pushed a day out
	Finished   bool        `json:"finished"`
	Stats      Stats       `json:"stats"`
}

// Session walks a queue built by BuildQueue, applies the rating engine to
// each submission, reinserts lapsed items a short distance ahead, and ends
// on queue exhaustion or an external timeout.
//
// All methods are safe for concurrent use; the deadline timer and the caller
// race on the finished flag and whichever event lands first wins.
type Session struct {
	mu       sync.Mutex
	id       string
	queue    []Item
	index    int
	stats    Stats
	attempts map[string]int
	seen     map[string]bool
	words    map[string]models.Word
	card     CardState
	deadline time.Time
	timedOut bool
	rng      *rand.Rand
	persist  Persister
}

// NewSession initializes a session over the given queue. The words map must
// contain every word the queue references; the session takes ownership of it.
func NewSession(id string, queue []Item, words map[string]models.Word, timeout time.Duration, now time.Time, rng *rand.Rand, persist Persister) *Session {
	if persist == nil {
		persist = func(models.Word) {}
	}
	return &Session{
		id:       id,
		queue:    queue,
		stats:    Stats{Total: len(queue), StartedAt: now},
		attempts: make(map[string]int),
		seen:     make(map[string]bool),
		words:    words,
		deadline: now.Add(timeout),
		rng:      rng,
		persist:  persist,
	}
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Deadline returns the instant the session times out.
func (s *Session) Deadline() time.Time {
	return s.deadline
}

// Current returns the item under review and its word. ok is false once the
// session has ended or the queue is exhausted.
func (s *Session) Current() (Item, models.Word, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stats.FinishedAt != nil || s.index >= len(s.queue) {
		return Item{}, models.Word{}, false
	}
	item := s.queue[s.index]
	return item, s.words[item.WordID], true
}

// Stats returns a copy of the running counters.
func (s *Session) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// Card returns the transient state of the current card.
func (s *Session) Card() CardState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.card
}

// Finished reports whether the session has ended by either path.
func (s *Session) Finished() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats.FinishedAt != nil
}

// TimedOut reports whether the session ended via the deadline.
func (s *Session) TimedOut() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timedOut
}

// SubmitRating applies a rating to the current item. skipped marks ratings
// forced by an explicit skip action. A finished session, an exhausted queue
// or a duplicate in-flight rating reject the call without mutating anything.
func (s *Session) SubmitRating(rating srs.Rating, skipped bool, now time.Time) (Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stats.FinishedAt != nil {
		return Outcome{}, errors.NewPreconditionError("session already finished")
	}
	if s.index >= len(s.queue) {
		return Outcome{}, errors.NewPreconditionError("session queue exhausted")
	}
	if s.card.ratingInFlight {
		return Outcome{}, errors.NewPreconditionError("a rating is already being applied to this item")
	}
	s.card.ratingInFlight = true

	item := s.queue[s.index]
	word := s.words[item.WordID]
	isNewIntroduction := word.Status == models.StatusNew && !s.seen[word.ID]
	wasCompleted := word.Status == models.StatusCompleted

	updated := srs.Apply(word, rating, now)
	if rating == srs.RatingAgain {
		updated.WrongCount++
	} else {
		updated.RightCount++
	}
	if skipped {
		updated.SkipCount++
	}

	s.stats.Answered++
	if rating == srs.RatingAgain {
		s.stats.Lapses++
	} else {
		s.stats.Correct++
	}
	if item.Origin == OriginDue {
		s.stats.DueDone++
	}
	if isNewIntroduction {
		s.stats.NewIntroduced++
	}
	if !wasCompleted && updated.Status == models.StatusCompleted {
		s.stats.MovedCompleted++
	}

	s.seen[word.ID] = true
	s.words[word.ID] = updated
	s.persist(updated)

	out := Outcome{Word: updated}

	if rating == srs.RatingAgain {
		s.attempts[word.ID]++
		if s.attempts[word.ID] >= maxAttemptsPerSession {
			due := now.Add(attemptCapDeferral)
			updated.DueAt = &due
			updated.UpdatedAt = now
			s.words[word.ID] = updated
			s.persist(updated)
			out.Word = updated
			out.Deferred = true
		} else {
			offset := reinsertMinOffset + s.rng.Intn(reinsertMaxOffset-reinsertMinOffset+1)
			pos := s.index + offset
			if pos > len(s.queue) {
				pos = len(s.queue)
			}
			s.queue = append(s.queue, Item{})
			copy(s.queue[pos+1:], s.queue[pos:])
			s.queue[pos] = item
			out.Reinserted = true
			out.ReinsertAt = pos
		}
	}

	s.advance(now)
	out.Finished = s.stats.FinishedAt != nil
	out.Stats = s.stats
	return out, nil
}

// RevealAnswer marks the current card's answer as shown.
func (s *Session) RevealAnswer() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stats.FinishedAt == nil {
		s.card.AnswerShown = true
	}
}

// NextHint bumps the current card's hint level and returns it.
func (s *Session) NextHint() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stats.FinishedAt == nil {
		s.card.HintLevel++
	}
	return s.card.HintLevel
}

// AddSpellingMistake records one spelling miss on the current card.
func (s *Session) AddSpellingMistake() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stats.FinishedAt == nil {
		s.card.SpellingMistakes++
	}
	return s.card.SpellingMistakes
}

// QueueLength returns the current queue length, including reinsertions.
func (s *Session) QueueLength() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

// ItemAt returns the queue item at position i.
func (s *Session) ItemAt(i int) (Item, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= len(s.queue) {
		return Item{}, false
	}
	return s.queue[i], true
}

// Timeout forcibly ends the session at the deadline. It reports whether this
// call terminated the session; false means it already ended and the timeout
// is inert.
func (s *Session) Timeout(now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stats.FinishedAt != nil {
		return false
	}
	s.stats.FinishedAt = &now
	s.timedOut = true
	return true
}

// End finishes the session early at the caller's request.
func (s *Session) End(now time.Time) Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stats.FinishedAt == nil {
		s.stats.FinishedAt = &now
	}
	return s.stats
}

// advance moves to the next item, resetting per-card transient state, and
// finishes the session when the queue is exhausted. Callers hold s.mu.
func (s *Session) advance(now time.Time) {
	s.index++
	s.card = CardState{}
	if s.index >= len(s.queue) {
		s.stats.FinishedAt = &now
	}
}
