package service

import (
	"math"

	"github.com/pkordes/metro-commuter/internal/domain"
)

// FarePolicy prices an itinerary whose segments carry no explicit fare.
type FarePolicy struct {
	// RatePerMinute multiplies the scheduled travel time.
	RatePerMinute float64
	// Minimum is the lowest price ever charged by the estimate.
	Minimum float64
	// ZeroDurationMinutes replaces a zero travel time before scaling.
	ZeroDurationMinutes int
}

// DefaultFarePolicy returns the network's standard estimate:
// 5 per minute, at least 10, with a 6 minute stand-in for zero-length hops.
func DefaultFarePolicy() FarePolicy {
	return FarePolicy{RatePerMinute: 5, Minimum: 10, ZeroDurationMinutes: 6}
}

// Price returns the price of the contiguous chain slice segs.
// Explicit fares are summed; when they add up to nothing the price is
// estimated from the first departure and the last arrival.
func (p FarePolicy) Price(segs []domain.Segment) float64 {
	if len(segs) == 0 {
		return 0
	}

	var sum float64
	for _, s := range segs {
		if s.Fare != nil {
			sum += *s.Fare
		}
	}
	if sum > 0 {
		return math.Round(sum*100) / 100
	}

	first, last := segs[0], segs[len(segs)-1]
	delta := domain.MinutesOfDay(last.Arrival) - domain.MinutesOfDay(first.Departure)
	if delta < 0 {
		delta = -delta
	}
	if delta == 0 {
		delta = p.ZeroDurationMinutes
	}
	return math.Max(p.Minimum, math.Round(float64(delta)*p.RatePerMinute))
}
