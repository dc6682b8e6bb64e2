package services_test

import (
	"context"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/lexidrill/lexidrill/internal/errors"
	"github.com/lexidrill/lexidrill/internal/models"
	"github.com/lexidrill/lexidrill/internal/review"
	"github.com/lexidrill/lexidrill/internal/services"
	"github.com/lexidrill/lexidrill/internal/testutil/mocks"
	"github.com/lexidrill/lexidrill/internal/worker"
)

var svcNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func startedPool(t *testing.T) *worker.Pool {
	t.Helper()
	pool := worker.NewPool(1, 16)
	ctx, cancel := context.WithCancel(context.Background())
	pool.Start(ctx)
	t.Cleanup(func() {
		cancel()
		pool.Stop()
	})
	return pool
}

func newReviewService(t *testing.T, wordRepo *mocks.MockWordRepository, timeout time.Duration) services.ReviewService {
	t.Helper()
	return services.NewReviewService(wordRepo, startedPool(t), 10, timeout,
		services.WithRand(rand.New(rand.NewSource(1))),
		services.WithClock(func() time.Time { return svcNow }),
	)
}

func TestStartSession_NoEligibleWords(t *testing.T) {
	wordRepo := new(mocks.MockWordRepository)
	wordRepo.On("List", mock.Anything, mock.Anything).Return([]models.Word{}, nil)

	svc := newReviewService(t, wordRepo, 10*time.Minute)

	_, err := svc.StartSession(context.Background(), review.Config{})
	require.Error(t, err)

	appErr, ok := err.(*errors.AppError)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeNoEligibleWords, appErr.Code)

	// No runtime state was created.
	_, err = svc.CurrentSession(context.Background())
	require.Error(t, err)
}

func TestStartSession_ReturnsCurrentItem(t *testing.T) {
	wordRepo := new(mocks.MockWordRepository)
	pool := []models.Word{
		models.NewWord("w1", "t1", "term", "tr", svcNow.Add(-time.Hour)),
	}
	wordRepo.On("List", mock.Anything, mock.Anything).Return(pool, nil)

	svc := newReviewService(t, wordRepo, 10*time.Minute)

	view, err := svc.StartSession(context.Background(), review.Config{Size: 5})
	require.NoError(t, err)

	assert.NotEmpty(t, view.ID)
	require.NotNil(t, view.Item)
	assert.Equal(t, "w1", view.Item.WordID)
	assert.Equal(t, 1, view.Stats.Total)
	assert.Equal(t, svcNow.Add(10*time.Minute), view.Deadline)
}

func TestSubmitRating_PersistsThroughPool(t *testing.T) {
	wordRepo := new(mocks.MockWordRepository)
	pool := []models.Word{
		models.NewWord("w1", "t1", "term", "tr", svcNow.Add(-time.Hour)),
	}
	wordRepo.On("List", mock.Anything, mock.Anything).Return(pool, nil)

	var mu sync.Mutex
	var upserted []models.Word
	wordRepo.On("Upsert", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		mu.Lock()
		defer mu.Unlock()
		upserted = append(upserted, args.Get(1).(models.Word))
	}).Return(nil)

	svc := newReviewService(t, wordRepo, 10*time.Minute)
	_, err := svc.StartSession(context.Background(), review.Config{Size: 1})
	require.NoError(t, err)

	outcome, err := svc.SubmitRating(context.Background(), "good", false)
	require.NoError(t, err)
	assert.True(t, outcome.Finished)
	assert.Equal(t, models.StatusInProgress, outcome.Word.Status)

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(upserted) == 1
	}, time.Second, 10*time.Millisecond, "the rating mutation must reach the store")

	mu.Lock()
	assert.Equal(t, outcome.Word, upserted[0])
	mu.Unlock()
}

func TestSubmitRating_InvalidRating(t *testing.T) {
	wordRepo := new(mocks.MockWordRepository)
	pool := []models.Word{
		models.NewWord("w1", "t1", "term", "tr", svcNow.Add(-time.Hour)),
	}
	wordRepo.On("List", mock.Anything, mock.Anything).Return(pool, nil)

	svc := newReviewService(t, wordRepo, 10*time.Minute)
	_, err := svc.StartSession(context.Background(), review.Config{Size: 1})
	require.NoError(t, err)

	_, err = svc.SubmitRating(context.Background(), "perfect", false)
	require.Error(t, err)
	appErr, ok := err.(*errors.AppError)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeValidation, appErr.Code)
}

func TestSubmitRating_NoActiveSession(t *testing.T) {
	wordRepo := new(mocks.MockWordRepository)
	svc := newReviewService(t, wordRepo, 10*time.Minute)

	_, err := svc.SubmitRating(context.Background(), "good", false)
	require.Error(t, err)
	appErr, ok := err.(*errors.AppError)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodePrecondition, appErr.Code)
}

func TestSessionDeadline_TimesOutSession(t *testing.T) {
	wordRepo := new(mocks.MockWordRepository)
	pool := []models.Word{
		models.NewWord("w1", "t1", "term", "tr", svcNow.Add(-time.Hour)),
		models.NewWord("w2", "t1", "term2", "tr2", svcNow.Add(-time.Hour)),
	}
	wordRepo.On("List", mock.Anything, mock.Anything).Return(pool, nil)

	svc := newReviewService(t, wordRepo, 30*time.Millisecond)
	_, err := svc.StartSession(context.Background(), review.Config{Size: 2})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		view, err := svc.CurrentSession(context.Background())
		return err == nil && view.TimedOut
	}, time.Second, 5*time.Millisecond)

	_, err = svc.SubmitRating(context.Background(), "good", false)
	require.Error(t, err, "submissions after timeout are inert")
}

func TestStartSession_ReplacesPreviousSession(t *testing.T) {
	wordRepo := new(mocks.MockWordRepository)
	pool := []models.Word{
		models.NewWord("w1", "t1", "term", "tr", svcNow.Add(-time.Hour)),
		models.NewWord("w2", "t1", "term2", "tr2", svcNow.Add(-time.Hour)),
	}
	wordRepo.On("List", mock.Anything, mock.Anything).Return(pool, nil)

	svc := newReviewService(t, wordRepo, 10*time.Minute)

	first, err := svc.StartSession(context.Background(), review.Config{Size: 2})
	require.NoError(t, err)
	second, err := svc.StartSession(context.Background(), review.Config{Size: 2})
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	view, err := svc.CurrentSession(context.Background())
	require.NoError(t, err)
	assert.Equal(t, second.ID, view.ID)
	assert.False(t, view.TimedOut, "the old session's timer must not touch the new session")
}

func TestEndSession_ReturnsFinalStats(t *testing.T) {
	wordRepo := new(mocks.MockWordRepository)
	pool := []models.Word{
		models.NewWord("w1", "t1", "term", "tr", svcNow.Add(-time.Hour)),
	}
	wordRepo.On("List", mock.Anything, mock.Anything).Return(pool, nil)

	svc := newReviewService(t, wordRepo, 10*time.Minute)
	_, err := svc.StartSession(context.Background(), review.Config{Size: 1})
	require.NoError(t, err)

	stats, err := svc.EndSession(context.Background())
	require.NoError(t, err)
	require.NotNil(t, stats.FinishedAt)
	assert.Equal(t, 0, stats.Answered)
}
