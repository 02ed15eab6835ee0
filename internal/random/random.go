// Package random is the single source of randomness for the game.
// Every draw in the mini-game and the economy goes through a Source so tests
// can replace it with a deterministic sequence.
package random

import (
	"crypto/rand"
	"math/big"
	mrand "math/rand"
	"sync"
)

// Source produces uniform random values.
type Source interface {
	// Intn returns a value in [0, n). n must be > 0.
	Intn(n int) int
	// Float64 returns a value in [0.0, 1.0).
	Float64() float64
}

// precision of Float64 draws from the crypto source (0.000001)
const floatPrecision = 1000000

// CryptoSource draws from crypto/rand.
type CryptoSource struct{}

// NewCrypto returns a Source backed by crypto/rand.
func NewCrypto() CryptoSource {
	return CryptoSource{}
}

func (CryptoSource) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		// Fallback - should never happen
		return 0
	}
	return int(v.Int64())
}

func (CryptoSource) Float64() float64 {
	v, err := rand.Int(rand.Reader, big.NewInt(floatPrecision))
	if err != nil {
		return 0.5
	}
	return float64(v.Int64()) / floatPrecision
}

// SeededSource is a deterministic source for replays and tests.
// Safe for concurrent use.
type SeededSource struct {
	mu  sync.Mutex
	rng *mrand.Rand
}

// NewSeeded returns a Source whose sequence is fully determined by seed.
func NewSeeded(seed int64) *SeededSource {
	return &SeededSource{rng: mrand.New(mrand.NewSource(seed))}
}

func (s *SeededSource) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Intn(n)
}

func (s *SeededSource) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64()
}

// Between returns a float uniformly drawn from [min, max).
func Between(src Source, min, max float64) float64 {
	return min + src.Float64()*(max-min)
}

// IntBetween returns an int uniformly drawn from [min, max] (inclusive).
func IntBetween(src Source, min, max int) int {
	if max <= min {
		return min
	}
	return min + src.Intn(max-min+1)
}

// Pick returns a uniformly chosen element of items.
func Pick[T any](src Source, items []T) T {
	return items[src.Intn(len(items))]
}

// Sample returns count distinct elements of items in random order.
// If count exceeds len(items) every element is returned.
func Sample[T any](src Source, items []T, count int) []T {
	pool := make([]T, len(items))
	copy(pool, items)
	if count > len(pool) {
		count = len(pool)
	}
	// partial Fisher-Yates
	for i := 0; i < count; i++ {
		j := i + src.Intn(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	return pool[:count]
}
