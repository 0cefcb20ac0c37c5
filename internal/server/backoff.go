package server

import (
	"math"
	"math/rand"
	"time"
)

const (
	backoffBase = 500 * time.Millisecond
	backoffCap  = 10 * time.Second
)

// Backoff returns the wait before retry number attempt (0-based):
// 500ms, 1s, 2s ... capped at 10s, plus up to 250ms of jitter.
func Backoff(attempt int) time.Duration {
	multiple := math.Pow(2, float64(attempt))
	delay := time.Duration(float64(backoffBase) * multiple)

	if delay > backoffCap || delay <= 0 {
		delay = backoffCap
	}

	delay += time.Duration(rand.Intn(250)) * time.Millisecond
	return delay
}
