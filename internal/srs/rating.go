package srs

import (
	"fmt"
	"math"
	"time"

	"github.com/lexidrill/lexidrill/internal/models"
)

// Rating is the learner's self-assessment of one recall attempt.
type Rating string

const (
	RatingAgain Rating = "again"
	RatingHard  Rating = "hard"
	RatingGood  Rating = "good"
	RatingEasy  Rating = "easy"
)

// ParseRating validates a raw rating value.
func ParseRating(s string) (Rating, error) {
	switch r := Rating(s); r {
	case RatingAgain, RatingHard, RatingGood, RatingEasy:
		return r, nil
	}
	return "", fmt.Errorf("unknown rating %q", s)
}

const (
	minEase = 1.3

	// An "again" schedules an immediate re-drill rather than a multi-day
	// interval.
	lapseRetryDelay = 10 * time.Minute

	// Mastery needs both a repetition streak and a long interval, so one
	// lucky long interval cannot complete a word.
	completedMinReps     = 5
	completedMinInterval = 21
)

// Apply computes the next scheduling state for a word given a rating at the
// review instant. Pure: the input word is not modified. Right/wrong/skip
// counters are session bookkeeping and are handled by the caller.
func Apply(w models.Word, rating Rating, now time.Time) models.Word {
	prevStatus := w.Status

	switch rating {
	case RatingAgain:
		w.Reps = 0
		w.Lapses++
		w.EaseFactor = math.Max(minEase, w.EaseFactor-0.2)
		w.IntervalDays = 0
		due := now.Add(lapseRetryDelay)
		w.DueAt = &due
	case RatingHard:
		w.EaseFactor = math.Max(minEase, w.EaseFactor-0.05)
		w.IntervalDays = maxInt(1, roundToInt(float64(w.IntervalDays)*1.2))
		due := now.AddDate(0, 0, w.IntervalDays)
		w.DueAt = &due
		w.Reps++
	case RatingGood:
		switch w.Reps {
		case 0:
			w.IntervalDays = 1
		case 1:
			w.IntervalDays = 3
		default:
			w.IntervalDays = roundToInt(float64(w.IntervalDays) * w.EaseFactor)
		}
		due := now.AddDate(0, 0, w.IntervalDays)
		w.DueAt = &due
		w.Reps++
	case RatingEasy:
		w.EaseFactor += 0.1
		w.IntervalDays = maxInt(4, roundToInt(float64(w.IntervalDays)*w.EaseFactor*1.3))
		due := now.AddDate(0, 0, w.IntervalDays)
		w.DueAt = &due
		w.Reps++
	}

	reviewed := now
	w.LastReviewedAt = &reviewed
	w.UpdatedAt = now

	switch {
	case prevStatus == models.StatusCompleted && rating == RatingAgain:
		w.Status = models.StatusInProgress
	case w.Reps >= completedMinReps && w.IntervalDays >= completedMinInterval:
		w.Status = models.StatusCompleted
	case prevStatus == models.StatusNew:
		w.Status = models.StatusInProgress
	}

	return w
}

func roundToInt(f float64) int {
	return int(math.Round(f))
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
