// README: Candidate sampler picks a random destination short of the target distance.
package route

import (
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"routeroll/internal/types"
)

// RandomSource yields floats in [0, 1).
type RandomSource interface {
	Float64() float64
}

// lockedSource lets one Service serve concurrent requests from a single generator.
type lockedSource struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewRandomSource returns a goroutine-safe PCG source. Equal seeds give equal sequences.
func NewRandomSource(seed uint64) RandomSource {
	return &lockedSource{rnd: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (s *lockedSource) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rnd.Float64()
}

func newTimeSeededSource() RandomSource {
	return NewRandomSource(uint64(time.Now().UnixNano()))
}

// Sampler draws candidate destinations. The fraction band sits below 1 because
// walking paths follow the street network and run longer than the straight line.
type Sampler struct {
	rnd         RandomSource
	minFraction float64
	maxFraction float64
}

func NewSampler(rnd RandomSource, minFraction, maxFraction float64) *Sampler {
	return &Sampler{rnd: rnd, minFraction: minFraction, maxFraction: maxFraction}
}

// Sample returns a destination at a uniform bearing and a fraction of targetM
// drawn from [minFraction, maxFraction).
func (s *Sampler) Sample(start types.GeoPoint, targetM float64) types.GeoPoint {
	bearing := s.rnd.Float64() * 2 * math.Pi
	fraction := s.minFraction + s.rnd.Float64()*(s.maxFraction-s.minFraction)

	if p, ok := DestinationPoint(start, bearing, targetM*fraction); ok {
		return p
	}
	return jitter(start, s.rnd)
}
