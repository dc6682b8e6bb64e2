package services

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lexidrill/lexidrill/internal/errors"
	"github.com/lexidrill/lexidrill/internal/logger"
	"github.com/lexidrill/lexidrill/internal/models"
	"github.com/lexidrill/lexidrill/internal/repository"
	"github.com/lexidrill/lexidrill/internal/review"
	"github.com/lexidrill/lexidrill/internal/srs"
	"github.com/lexidrill/lexidrill/internal/worker"
)

// SessionView is the caller-facing snapshot of the active session.
type SessionView struct {
	ID       string           `json:"id"`
	Item     *review.Item     `json:"item,omitempty"`
	Word     *models.Word     `json:"word,omitempty"`
	Card     review.CardState `json:"card"`
	Stats    review.Stats     `json:"stats"`
	TimedOut bool             `json:"timed_out"`
	Deadline time.Time        `json:"deadline"`
}

// ReviewService owns the single active review session: it composes the
// queue, drives the runtime, persists every word mutation through the worker
// pool, and manages the session deadline timer.
type ReviewService interface {
	StartSession(ctx context.Context, cfg review.Config) (*SessionView, error)
	CurrentSession(ctx context.Context) (*SessionView, error)
	SubmitRating(ctx context.Context, rating string, skipped bool) (*review.Outcome, error)
	RevealAnswer(ctx context.Context) error
	EndSession(ctx context.Context) (*review.Stats, error)
}

// ReviewOption configures a reviewService.
type ReviewOption func(*reviewService)

// WithRand injects the randomness source used for queue composition and
// retry offsets, so tests can pin a seed.
func WithRand(rng *rand.Rand) ReviewOption {
	return func(s *reviewService) {
		s.rng = rng
	}
}

// WithClock injects the time source.
func WithClock(now func() time.Time) ReviewOption {
	return func(s *reviewService) {
		s.now = now
	}
}

type reviewService struct {
	wordRepo    repository.WordRepository
	pool        *worker.Pool
	defaultSize int
	timeout     time.Duration
	rng         *rand.Rand
	now         func() time.Time

	mu      sync.Mutex
	current *review.Session
	timer   *time.Timer
}

// NewReviewService creates a new ReviewService
func NewReviewService(wordRepo repository.WordRepository, pool *worker.Pool, defaultSize int, timeout time.Duration, opts ...ReviewOption) ReviewService {
	s := &reviewService{
		wordRepo:    wordRepo,
		pool:        pool,
		defaultSize: defaultSize,
		timeout:     timeout,
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *reviewService) StartSession(ctx context.Context, cfg review.Config) (*SessionView, error) {
	log := logger.FromContext(ctx)

	if cfg.Size <= 0 {
		cfg.Size = s.defaultSize
	}
	if cfg.Mode == "" {
		cfg.Mode = review.ModeMixed
	}
	if !cfg.Mode.Valid() {
		return nil, errors.NewValidationError("mode", "unknown training mode")
	}
	if cfg.TopicID == "" {
		cfg.TopicID = review.TopicAll
	}
	log.Debug("starting session: size=%d, mode=%s, topic=%s", cfg.Size, cfg.Mode, cfg.TopicID)

	pool, err := s.wordRepo.List(ctx, repository.WordFilter{})
	if err != nil {
		log.Error("failed to load word pool: %v", err)
		return nil, errors.NewInternalError(err)
	}

	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	queue := review.BuildQueue(pool, cfg, now, s.rng)
	if len(queue) == 0 {
		log.Info("no eligible words for session: topic=%s, tags=%v", cfg.TopicID, cfg.Tags)
		return nil, errors.NewNoEligibleWordsError()
	}

	// A stale timer from the previous session must never fire against the
	// new one.
	s.stopTimerLocked()

	words := make(map[string]models.Word, len(queue))
	byID := make(map[string]models.Word, len(pool))
	for _, w := range pool {
		byID[w.ID] = w
	}
	for _, item := range queue {
		words[item.WordID] = byID[item.WordID]
	}

	sess := review.NewSession(uuid.NewString(), queue, words, s.timeout, now, s.rng, s.persistAsync)
	s.current = sess
	s.timer = time.AfterFunc(s.timeout, func() {
		s.fireTimeout(sess)
	})

	log.Info("session started: id=%s, items=%d", sess.ID(), len(queue))
	return s.viewLocked(), nil
}

func (s *reviewService) CurrentSession(ctx context.Context) (*SessionView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil, errors.NewNotFoundError("session", "current")
	}
	return s.viewLocked(), nil
}

func (s *reviewService) SubmitRating(ctx context.Context, rating string, skipped bool) (*review.Outcome, error) {
	log := logger.FromContext(ctx)

	parsed, err := srs.ParseRating(rating)
	if err != nil {
		return nil, errors.NewValidationError("rating", err.Error())
	}

	s.mu.Lock()
	sess := s.current
	s.mu.Unlock()
	if sess == nil {
		return nil, errors.NewPreconditionError("no active session")
	}

	outcome, err := sess.SubmitRating(parsed, skipped, s.now())
	if err != nil {
		return nil, err
	}
	log.Debug("rating applied: word=%s, rating=%s, answered=%d/%d",
		outcome.Word.ID, parsed, outcome.Stats.Answered, outcome.Stats.Total)

	if outcome.Finished {
		s.mu.Lock()
		s.stopTimerLocked()
		s.mu.Unlock()
		log.Info("session finished: answered=%d, correct=%d, lapses=%d",
			outcome.Stats.Answered, outcome.Stats.Correct, outcome.Stats.Lapses)
	}
	return &outcome, nil
}

func (s *reviewService) RevealAnswer(ctx context.Context) error {
	s.mu.Lock()
	sess := s.current
	s.mu.Unlock()
	if sess == nil {
		return errors.NewPreconditionError("no active session")
	}
	sess.RevealAnswer()
	return nil
}

func (s *reviewService) EndSession(ctx context.Context) (*review.Stats, error) {
	log := logger.FromContext(ctx)

	s.mu.Lock()
	sess := s.current
	s.stopTimerLocked()
	s.mu.Unlock()
	if sess == nil {
		return nil, errors.NewPreconditionError("no active session")
	}

	stats := sess.End(s.now())
	log.Info("session ended: id=%s, answered=%d", sess.ID(), stats.Answered)
	return &stats, nil
}

// fireTimeout runs on the deadline timer goroutine. The bound session makes
// a timer that outlives its session inert.
func (s *reviewService) fireTimeout(sess *review.Session) {
	if sess.Timeout(s.now()) {
		logger.Default().Info("session timed out: id=%s", sess.ID())
	}
}

// persistAsync enqueues a word write. The session state is authoritative the
// moment it mutates; the write is at-least-once and a failure never rolls
// the session back.
func (s *reviewService) persistAsync(w models.Word) {
	s.pool.Submit(&persistWordJob{repo: s.wordRepo, word: w})
}

func (s *reviewService) stopTimerLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *reviewService) viewLocked() *SessionView {
	sess := s.current
	view := &SessionView{
		ID:       sess.ID(),
		Card:     sess.Card(),
		Stats:    sess.Stats(),
		TimedOut: sess.TimedOut(),
		Deadline: sess.Deadline(),
	}
	if item, word, ok := sess.Current(); ok {
		view.Item = &item
		view.Word = &word
	}
	return view
}

// persistWordJob writes one word mutation through the worker pool.
type persistWordJob struct {
	repo repository.WordRepository
	word models.Word
}

func (j *persistWordJob) Name() string {
	return "persist-word"
}

func (j *persistWordJob) Run(ctx context.Context) error {
	return j.repo.Upsert(ctx, j.word)
}
