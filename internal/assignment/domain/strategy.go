// Package domain implements the partner selection strategies of the
// assignment engine. All functions are pure: they operate on a snapshot of
// the eligible pool and an externally advanced rotation cursor.
package domain

import (
	"errors"
	"sort"

	"github.com/google/uuid"
)

// Strategy names, persisted in the assignment_config row.
const (
	StrategyRoundRobin  = "round_robin"
	StrategyRatingBased = "rating_based"
	StrategyCombined    = "combined"
)

// ErrEmptyPool is returned when no eligible partner exists for a service.
var ErrEmptyPool = errors.New("no eligible partners")

// ValidStrategy reports whether name is a known strategy.
func ValidStrategy(name string) bool {
	switch name {
	case StrategyRoundRobin, StrategyRatingBased, StrategyCombined:
		return true
	}
	return false
}

// Candidate is one eligible partner with the metrics the strategies read.
// Pools are ordered by partner creation time so the round-robin rotation is
// stable across calls.
type Candidate struct {
	PartnerID            uuid.UUID
	AverageRating        float64 // 0..5
	ActiveAssignments    int
	CompletedAssignments int
	AvgResponseMinutes   float64
}

// Weights configures the combined strategy's score terms.
type Weights struct {
	Rating   float64
	Load     float64
	Response float64
}

// DefaultWeights per the combined strategy's design.
func DefaultWeights() Weights {
	return Weights{Rating: 0.5, Load: 0.3, Response: 0.2}
}

const scoreEpsilon = 1e-9

// SelectRoundRobin returns the candidate at the cursor's position, wrapping
// around the pool. Cursor values start at 1, so the first call lands on the
// first candidate in insertion order.
func SelectRoundRobin(pool []Candidate, cursor int64) (Candidate, error) {
	if len(pool) == 0 {
		return Candidate{}, ErrEmptyPool
	}
	idx := int((cursor - 1) % int64(len(pool)))
	if idx < 0 {
		idx += len(pool)
	}
	return pool[idx], nil
}

// SelectRatingBased returns the candidate with the highest average rating;
// ties go to the partner with fewer completed assignments.
func SelectRatingBased(pool []Candidate) (Candidate, error) {
	if len(pool) == 0 {
		return Candidate{}, ErrEmptyPool
	}

	sorted := append([]Candidate(nil), pool...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].AverageRating != sorted[j].AverageRating {
			return sorted[i].AverageRating > sorted[j].AverageRating
		}
		return sorted[i].CompletedAssignments < sorted[j].CompletedAssignments
	})
	return sorted[0], nil
}

// SelectCombined scores each candidate as
//
//	w_r·normalizedRating + w_l·(1 − normalizedLoad) + w_t·normalizedResponseSpeed
//
// and returns the highest-scoring one. Score ties fall back to the
// round-robin cursor over the tied candidates so repeated ties still
// distribute evenly.
func SelectCombined(pool []Candidate, w Weights, cursor int64) (Candidate, error) {
	if len(pool) == 0 {
		return Candidate{}, ErrEmptyPool
	}

	maxLoad, maxResponse := 0, 0.0
	for _, c := range pool {
		if c.ActiveAssignments > maxLoad {
			maxLoad = c.ActiveAssignments
		}
		if c.AvgResponseMinutes > maxResponse {
			maxResponse = c.AvgResponseMinutes
		}
	}

	best, bestScore := []Candidate(nil), -1.0
	for _, c := range pool {
		score := w.Rating * (c.AverageRating / 5.0)

		load := 0.0
		if maxLoad > 0 {
			load = float64(c.ActiveAssignments) / float64(maxLoad)
		}
		score += w.Load * (1 - load)

		speed := 1.0
		if maxResponse > 0 {
			speed = 1 - c.AvgResponseMinutes/maxResponse
		}
		score += w.Response * speed

		switch {
		case score > bestScore+scoreEpsilon:
			best, bestScore = []Candidate{c}, score
		case score > bestScore-scoreEpsilon:
			best = append(best, c)
		}
	}

	return SelectRoundRobin(best, cursor)
}
