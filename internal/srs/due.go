package srs

import (
	"time"

	"github.com/lexidrill/lexidrill/internal/models"
)

// IsDue reports whether a word is eligible for review at the given instant.
// A word that was never scheduled (nil DueAt) is due immediately.
func IsDue(w models.Word, now time.Time) bool {
	if w.DueAt == nil {
		return true
	}
	return !w.DueAt.After(now)
}
