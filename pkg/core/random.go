package core

import (
	"math/rand"
	"strings"
	"time"
)

// Random is the source of every random decision in the engine.
// *rand.Rand satisfies it.
type Random interface {
	Intn(n int) int
	Float64() float64
}

// NewRandom returns a seeded source. A zero seed draws one from the wall clock.
func NewRandom(seed int64) Random {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

// RandomBetween returns a value in [min, max).
func RandomBetween(r Random, min, max float64) float64 {
	return min + r.Float64()*(max-min)
}

// RandomTurn draws Left, Right or Straight uniformly.
func RandomTurn(r Random) Turn {
	return turnChoices[r.Intn(len(turnChoices))]
}

const (
	plateAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	plateLength   = 7
)

// GeneratePlate returns a license plate of 7 characters from [A-Z0-9].
func GeneratePlate(r Random) string {
	var b strings.Builder
	b.Grow(plateLength)
	for i := 0; i < plateLength; i++ {
		b.WriteByte(plateAlphabet[r.Intn(len(plateAlphabet))])
	}
	return b.String()
}

// Clock reads wall time.
type Clock interface {
	Now() time.Time
}

// SystemClock is the real wall clock.
type SystemClock struct{}

// Now returns time.Now()
func (SystemClock) Now() time.Time {
	return time.Now()
}
