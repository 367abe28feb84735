package models

import "strings"

// Bucket selects which group of cards feeds one slot of a review session.
type Bucket string

const (
	BucketNew      Bucket = "new"
	BucketFamiliar Bucket = "familiar"
	BucketRetry    Bucket = "retry"
	BucketRemaster Bucket = "remaster"
	BucketHard     Bucket = "hard"
	BucketRandom   Bucket = "random"
)

// AlgorithmSlots is the number of bucket-weighted positions at the head of a
// session queue.
const AlgorithmSlots = 5

// SessionAlgorithm is the ordered 5-slot sequence of bucket selectors that
// shapes the start of a review session.
type SessionAlgorithm [AlgorithmSlots]Bucket

// Named presets, persisted per user alongside any custom slot sequence.
var Presets = map[string]SessionAlgorithm{
	"balanced":    {BucketNew, BucketNew, BucketFamiliar, BucketRetry, BucketRemaster},
	"random":      {BucketRandom, BucketRandom, BucketRandom, BucketRandom, BucketRandom},
	"lastminute":  {BucketNew, BucketNew, BucketNew, BucketNew, BucketRetry},
	"fixmistakes": {BucketNew, BucketRetry, BucketNew, BucketRetry, BucketRetry},
	"hardfirst":   {BucketHard, BucketHard, BucketRetry, BucketNew, BucketFamiliar},
}

// DefaultAlgorithm is the balanced preset.
func DefaultAlgorithm() SessionAlgorithm {
	return Presets["balanced"]
}

// ParseBucket normalizes a persisted bucket name. Unknown values map to
// "random" so a corrupt slot still yields a card.
func ParseBucket(value string) Bucket {
	switch Bucket(value) {
	case BucketNew, BucketFamiliar, BucketRetry, BucketRemaster, BucketHard, BucketRandom:
		return Bucket(value)
	default:
		return BucketRandom
	}
}

// ParseAlgorithm decodes a comma-separated slot list as stored in
// user_settings. Anything that does not yield exactly 5 slots falls back to
// the balanced preset.
func ParseAlgorithm(value string) SessionAlgorithm {
	parts := strings.Split(value, ",")
	if len(parts) != AlgorithmSlots {
		return DefaultAlgorithm()
	}
	var algo SessionAlgorithm
	for i, part := range parts {
		algo[i] = ParseBucket(strings.TrimSpace(part))
	}
	return algo
}

// String encodes the algorithm for storage.
func (a SessionAlgorithm) String() string {
	parts := make([]string, AlgorithmSlots)
	for i, b := range a {
		parts[i] = string(b)
	}
	return strings.Join(parts, ",")
}
