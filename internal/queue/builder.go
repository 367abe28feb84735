// Package queue turns a pack's cards and their review state into a session
// ordering: five bucket-weighted slots up front, a stable fallback order for
// the rest, deferred (not yet due) cards last. It only reads state.
package queue

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/example/studycore/internal/calendar"
	"github.com/example/studycore/pkg/models"
)

// Builder orders session queues. The random source is injectable so tests
// can pin the shuffles.
type Builder struct {
	rng *rand.Rand
}

// NewBuilder creates a builder with a time-seeded random source.
func NewBuilder() *Builder {
	return NewBuilderWithSeed(time.Now().UnixNano())
}

// NewBuilderWithSeed creates a builder with a deterministic random source.
func NewBuilderWithSeed(seed int64) *Builder {
	return &Builder{rng: rand.New(rand.NewSource(seed))}
}

// Build produces a permutation of card indices for a review session.
//
// Cards are partitioned by due-ness and mastery level into weighted buckets
// (retry and hard are additive; random holds everything). Each of the five
// algorithm slots draws the first unused card from its bucket, falling back
// to the random bucket when the named bucket has none left. Unused cards
// that are due follow in original order; cards deferred to a future day
// close the queue.
func (b *Builder) Build(cardIDs []string, states map[string]models.CardState, algo models.SessionAlgorithm, tz string) []int {
	n := len(cardIDs)
	if n == 0 {
		return nil
	}

	buckets := map[models.Bucket][]int{}
	deferredSet := make(map[int]bool)
	for i, id := range cardIDs {
		state, tracked := states[id]
		if tracked {
			state = state.Normalize()
		}
		due := !tracked || state.Seen == 0 || calendar.IsDue(state.NextReviewDate, tz)
		if due {
			switch {
			case !tracked || state.Level == models.LevelNew:
				buckets[models.BucketNew] = append(buckets[models.BucketNew], i)
			case state.Level == models.LevelFamiliar:
				buckets[models.BucketFamiliar] = append(buckets[models.BucketFamiliar], i)
			case state.Level == models.LevelMastered:
				buckets[models.BucketRemaster] = append(buckets[models.BucketRemaster], i)
			}
			if tracked && state.Wrong > 0 {
				buckets[models.BucketRetry] = append(buckets[models.BucketRetry], i)
			}
			if tracked && state.Difficulty == models.DifficultyHard {
				buckets[models.BucketHard] = append(buckets[models.BucketHard], i)
			}
		} else {
			deferredSet[i] = true
		}
		buckets[models.BucketRandom] = append(buckets[models.BucketRandom], i)
	}

	for _, pool := range buckets {
		pool := pool
		b.rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	}

	used := make([]bool, n)
	result := make([]int, 0, n)
	for _, slot := range algo {
		idx, ok := pickUnused(buckets[slot], used)
		if !ok {
			idx, ok = pickUnused(buckets[models.BucketRandom], used)
		}
		if ok {
			result = append(result, idx)
			used[idx] = true
		}
	}

	for i := 0; i < n; i++ {
		if !used[i] && !deferredSet[i] {
			result = append(result, i)
			used[i] = true
		}
	}
	for i := 0; i < n; i++ {
		if !used[i] && deferredSet[i] {
			result = append(result, i)
			used[i] = true
		}
	}
	return result
}

// BuildForPack orders a pack of numCards flashcards using the fc_<i> id
// scheme.
func (b *Builder) BuildForPack(numCards int, states models.PackStates, algo models.SessionAlgorithm, tz string) []int {
	cardIDs := make([]string, numCards)
	for i := range cardIDs {
		cardIDs[i] = FlashcardID(i)
	}
	return b.Build(cardIDs, states, algo, tz)
}

// FlashcardID returns the card id for the flashcard at the given pack index.
func FlashcardID(index int) string {
	return fmt.Sprintf("fc_%d", index)
}

// QuestionID returns the card id for the test question at the given pack
// index.
func QuestionID(index int) string {
	return fmt.Sprintf("q_%d", index)
}

func pickUnused(pool []int, used []bool) (int, bool) {
	for _, idx := range pool {
		if !used[idx] {
			return idx, true
		}
	}
	return 0, false
}
