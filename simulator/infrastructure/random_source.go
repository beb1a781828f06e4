// Package infrastructure provides concrete adapters for the simulator domain:
// transports, randomness, time and configuration.
package infrastructure

import (
	"math/rand/v2"
	"time"
)

// NewRandomSource returns a PCG-backed generator. A zero seed picks one from
// the current time, any other seed replays the same sensor history.
func NewRandomSource(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// SystemClock reads the local wall clock.
type SystemClock struct{}

// Now returns the current local time.
func (SystemClock) Now() time.Time {
	return time.Now()
}
