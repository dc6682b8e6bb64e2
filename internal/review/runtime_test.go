package review_test

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexidrill/lexidrill/internal/errors"
	"github.com/lexidrill/lexidrill/internal/models"
	"github.com/lexidrill/lexidrill/internal/review"
	"github.com/lexidrill/lexidrill/internal/srs"
)

var sessionStart = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

// newSessionOf builds a session over n fresh words with a recording persister.
func newSessionOf(n int, persisted *[]models.Word) *review.Session {
	queue := make([]review.Item, 0, n)
	words := make(map[string]models.Word, n)
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("w%d", i)
		queue = append(queue, review.Item{WordID: id, Mode: review.ModeFlashcards, Origin: review.OriginNew})
		words[id] = models.NewWord(id, "t1", "term-"+id, "tr-"+id, sessionStart.Add(-time.Hour))
	}
	persist := func(w models.Word) {
		if persisted != nil {
			*persisted = append(*persisted, w)
		}
	}
	return review.NewSession("s1", queue, words, 10*time.Minute, sessionStart, rand.New(rand.NewSource(1)), persist)
}

func TestSession_SingleGoodRatingFinishes(t *testing.T) {
	var persisted []models.Word
	sess := newSessionOf(1, &persisted)

	outcome, err := sess.SubmitRating(srs.RatingGood, false, sessionStart.Add(time.Minute))
	require.NoError(t, err)

	assert.True(t, outcome.Finished)
	assert.Equal(t, 1, outcome.Stats.Total)
	assert.Equal(t, 1, outcome.Stats.Answered)
	assert.Equal(t, 1, outcome.Stats.Correct)
	assert.Equal(t, 1, outcome.Stats.NewIntroduced)
	assert.Equal(t, 0, outcome.Stats.Lapses)
	require.NotNil(t, outcome.Stats.FinishedAt)

	assert.Equal(t, models.StatusInProgress, outcome.Word.Status)
	assert.Equal(t, 1, outcome.Word.IntervalDays)
	assert.Equal(t, 1, outcome.Word.RightCount)

	require.Len(t, persisted, 1)
	assert.Equal(t, outcome.Word, persisted[0])
}

func TestSession_AgainReinsertsWithinOffsetWindow(t *testing.T) {
	sess := newSessionOf(12, nil)

	first, _, ok := sess.Current()
	require.True(t, ok)

	outcome, err := sess.SubmitRating(srs.RatingAgain, false, sessionStart.Add(time.Minute))
	require.NoError(t, err)

	assert.True(t, outcome.Reinserted)
	assert.False(t, outcome.Deferred)
	assert.GreaterOrEqual(t, outcome.ReinsertAt, 5)
	assert.LessOrEqual(t, outcome.ReinsertAt, 7)
	assert.Equal(t, 13, sess.QueueLength())

	item, ok := sess.ItemAt(outcome.ReinsertAt)
	require.True(t, ok)
	assert.Equal(t, first.WordID, item.WordID)

	assert.Equal(t, 1, outcome.Stats.Lapses)
	assert.Equal(t, 0, outcome.Stats.Correct)
	assert.Equal(t, 0, outcome.Word.IntervalDays)
	assert.Equal(t, 1, outcome.Word.WrongCount)
}

func TestSession_ThirdAgainDefersInsteadOfReinserting(t *testing.T) {
	var persisted []models.Word
	sess := newSessionOf(1, &persisted)
	now := sessionStart.Add(time.Minute)

	// With a single-word queue every reinsertion lands right behind the
	// cursor, so the same word keeps coming back.
	out1, err := sess.SubmitRating(srs.RatingAgain, false, now)
	require.NoError(t, err)
	assert.True(t, out1.Reinserted)

	out2, err := sess.SubmitRating(srs.RatingAgain, false, now)
	require.NoError(t, err)
	assert.True(t, out2.Reinserted)

	out3, err := sess.SubmitRating(srs.RatingAgain, false, now)
	require.NoError(t, err)
	assert.False(t, out3.Reinserted, "the attempt cap stops reinsertion")
	assert.True(t, out3.Deferred)
	require.NotNil(t, out3.Word.DueAt)
	assert.Equal(t, now.Add(24*time.Hour), *out3.Word.DueAt, "capped word is deferred a full day")
	assert.True(t, out3.Finished)
	assert.Equal(t, 3, sess.QueueLength())

	// The deferral persists a second write for the overriding due date.
	require.Len(t, persisted, 4)
	last := persisted[len(persisted)-1]
	require.NotNil(t, last.DueAt)
	assert.Equal(t, now.Add(24*time.Hour), *last.DueAt)
}

func TestSession_SubmitAfterFinishIsRejected(t *testing.T) {
	sess := newSessionOf(1, nil)
	_, err := sess.SubmitRating(srs.RatingGood, false, sessionStart.Add(time.Minute))
	require.NoError(t, err)
	require.True(t, sess.Finished())

	statsBefore := sess.Stats()
	_, err = sess.SubmitRating(srs.RatingGood, false, sessionStart.Add(2*time.Minute))
	require.Error(t, err)

	appErr, ok := err.(*errors.AppError)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodePrecondition, appErr.Code)
	assert.Equal(t, statsBefore, sess.Stats(), "a rejected submission must not mutate stats")
}

func TestSession_TimeoutEndsSessionOnce(t *testing.T) {
	sess := newSessionOf(3, nil)
	deadline := sessionStart.Add(10 * time.Minute)

	assert.True(t, sess.Timeout(deadline))
	assert.True(t, sess.Finished())
	assert.True(t, sess.TimedOut())
	require.NotNil(t, sess.Stats().FinishedAt)
	assert.Equal(t, deadline, *sess.Stats().FinishedAt)

	// A second firing is inert.
	assert.False(t, sess.Timeout(deadline.Add(time.Minute)))

	_, err := sess.SubmitRating(srs.RatingGood, false, deadline.Add(time.Second))
	require.Error(t, err)
}

func TestSession_TimeoutAfterNaturalFinishIsInert(t *testing.T) {
	sess := newSessionOf(1, nil)
	finishAt := sessionStart.Add(time.Minute)
	_, err := sess.SubmitRating(srs.RatingGood, false, finishAt)
	require.NoError(t, err)

	assert.False(t, sess.Timeout(sessionStart.Add(10*time.Minute)))
	assert.False(t, sess.TimedOut())
	assert.Equal(t, finishAt, *sess.Stats().FinishedAt)
}

func TestSession_StatsAcrossMixedRatings(t *testing.T) {
	queue := []review.Item{
		{WordID: "due1", Mode: review.ModeFlashcards, Origin: review.OriginDue},
		{WordID: "new1", Mode: review.ModeSpelling, Origin: review.OriginNew},
	}
	dueWord := models.NewWord("due1", "t1", "a", "b", sessionStart.Add(-72*time.Hour))
	dueWord.Status = models.StatusInProgress
	dueWord.Reps = 2
	dueWord.IntervalDays = 3
	words := map[string]models.Word{
		"due1": dueWord,
		"new1": models.NewWord("new1", "t1", "c", "d", sessionStart.Add(-time.Hour)),
	}
	sess := review.NewSession("s2", queue, words, 10*time.Minute, sessionStart, rand.New(rand.NewSource(3)), nil)

	out, err := sess.SubmitRating(srs.RatingGood, false, sessionStart.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 1, out.Stats.DueDone)
	assert.Equal(t, 0, out.Stats.NewIntroduced)

	out, err = sess.SubmitRating(srs.RatingEasy, false, sessionStart.Add(2*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 1, out.Stats.NewIntroduced)
	assert.Equal(t, 2, out.Stats.Answered)
	assert.Equal(t, 2, out.Stats.Correct)
	assert.True(t, out.Finished)
}

func TestSession_MovedCompletedCounted(t *testing.T) {
	queue := []review.Item{{WordID: "w", Mode: review.ModeFlashcards, Origin: review.OriginDue}}
	w := models.NewWord("w", "t1", "a", "b", sessionStart.Add(-time.Hour))
	w.Status = models.StatusInProgress
	w.Reps = 4
	w.IntervalDays = 10
	w.EaseFactor = 2.1
	sess := review.NewSession("s3", queue, map[string]models.Word{"w": w}, 10*time.Minute, sessionStart, rand.New(rand.NewSource(1)), nil)

	out, err := sess.SubmitRating(srs.RatingGood, false, sessionStart.Add(time.Minute))
	require.NoError(t, err)

	assert.Equal(t, models.StatusCompleted, out.Word.Status)
	assert.Equal(t, 1, out.Stats.MovedCompleted)
}

func TestSession_SkippedRatingCountsSkip(t *testing.T) {
	sess := newSessionOf(1, nil)

	out, err := sess.SubmitRating(srs.RatingAgain, true, sessionStart.Add(time.Minute))
	require.NoError(t, err)

	assert.Equal(t, 1, out.Word.SkipCount)
	assert.Equal(t, 1, out.Word.WrongCount)
	assert.Equal(t, 0, out.Word.RightCount)
}

func TestSession_CardStateResetsOnAdvance(t *testing.T) {
	sess := newSessionOf(2, nil)
	sess.RevealAnswer()
	sess.NextHint()
	sess.AddSpellingMistake()

	card := sess.Card()
	assert.True(t, card.AnswerShown)
	assert.Equal(t, 1, card.HintLevel)
	assert.Equal(t, 1, card.SpellingMistakes)

	_, err := sess.SubmitRating(srs.RatingGood, false, sessionStart.Add(time.Minute))
	require.NoError(t, err)

	card = sess.Card()
	assert.False(t, card.AnswerShown)
	assert.Equal(t, 0, card.HintLevel)
	assert.Equal(t, 0, card.SpellingMistakes)
}

func TestSession_NewIntroductionCountedOncePerWord(t *testing.T) {
	sess := newSessionOf(1, nil)
	now := sessionStart.Add(time.Minute)

	out, err := sess.SubmitRating(srs.RatingAgain, false, now)
	require.NoError(t, err)
	assert.Equal(t, 1, out.Stats.NewIntroduced)

	// The reinserted copy is no longer a new introduction.
	out, err = sess.SubmitRating(srs.RatingGood, false, now.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 1, out.Stats.NewIntroduced)
}
