package review

import (
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/lexidrill/lexidrill/internal/models"
	"github.com/lexidrill/lexidrill/internal/srs"
)

// Share of the session reserved for each bucket. Whatever the due and
// in-progress buckets leave unclaimed goes to new words.
const (
	dueShare        = 0.6
	inProgressShare = 0.25
)

// BuildQueue selects and orders up to cfg.Size words from the pool.
//
// The pool is filtered by topic and tags, partitioned into due / in-progress /
// new buckets, sampled according to the bucket shares, backfilled from the
// remaining filtered words when the buckets cannot fill the session, and
// finally shuffled so an item's position does not reveal its bucket.
//
// All randomness (mode assignment, shuffle) comes from rng, so a seeded
// source yields a reproducible queue. An empty result means no session can
// be started.
func BuildQueue(pool []models.Word, cfg Config, now time.Time, rng *rand.Rand) []Item {
	filtered := make([]models.Word, 0, len(pool))
	for _, w := range pool {
		if cfg.TopicID != "" && cfg.TopicID != TopicAll && w.TopicID != cfg.TopicID {
			continue
		}
		if !w.HasAnyTag(cfg.Tags) {
			continue
		}
		filtered = append(filtered, w)
	}
	if len(filtered) == 0 || cfg.Size <= 0 {
		return nil
	}

	var due, inProgress, fresh []models.Word
	for _, w := range filtered {
		switch {
		case w.Status != models.StatusNew && srs.IsDue(w, now):
			due = append(due, w)
		case w.Status == models.StatusInProgress:
			inProgress = append(inProgress, w)
		case w.Status == models.StatusNew:
			fresh = append(fresh, w)
		}
	}

	// Earliest due first; a word never scheduled sorts before everything.
	// Stable, so equal keys keep pool order.
	sort.SliceStable(due, func(i, j int) bool {
		a, b := due[i].DueAt, due[j].DueAt
		if a == nil {
			return b != nil
		}
		if b == nil {
			return false
		}
		return a.Before(*b)
	})

	// Hardest in-progress words first, to reinforce weak items before they
	// come due again.
	sort.SliceStable(inProgress, func(i, j int) bool {
		return inProgress[i].Lapses+inProgress[i].WrongCount > inProgress[j].Lapses+inProgress[j].WrongCount
	})

	size := cfg.Size
	dueTarget := minInt(size, roundShare(size, dueShare))
	inProgressTarget := minInt(size-dueTarget, roundShare(size, inProgressShare))
	newTarget := maxInt(0, size-dueTarget-inProgressTarget)

	selected := make(map[string]bool, size)
	items := make([]Item, 0, size)

	take := func(bucket []models.Word, target int, origin Origin) {
		for _, w := range bucket {
			if target <= 0 {
				return
			}
			items = append(items, Item{WordID: w.ID, Origin: origin})
			selected[w.ID] = true
			target--
		}
	}
	take(due, dueTarget, OriginDue)
	take(inProgress, inProgressTarget, OriginInProgress)
	take(fresh, newTarget, OriginNew)

	// Under-filled buckets: top up from any filtered word not yet chosen,
	// in pool order.
	for _, w := range filtered {
		if len(items) >= size {
			break
		}
		if selected[w.ID] {
			continue
		}
		origin := OriginInProgress
		if w.Status == models.StatusNew {
			origin = OriginNew
		}
		items = append(items, Item{WordID: w.ID, Origin: origin})
		selected[w.ID] = true
	}

	for i := range items {
		if cfg.Mode == ModeMixed {
			items[i].Mode = concreteModes[rng.Intn(len(concreteModes))]
		} else {
			items[i].Mode = cfg.Mode
		}
	}

	rng.Shuffle(len(items), func(i, j int) {
		items[i], items[j] = items[j], items[i]
	})

	return items
}

func roundShare(size int, share float64) int {
	return int(math.Round(float64(size) * share))
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
