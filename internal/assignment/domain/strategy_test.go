package domain

import (
	"testing"

	"github.com/google/uuid"
)

func makePool(n int) []Candidate {
	pool := make([]Candidate, n)
	for i := range pool {
		pool[i] = Candidate{PartnerID: uuid.New()}
	}
	return pool
}

func TestSelectRoundRobinDistributesEqually(t *testing.T) {
	const n = 4
	pool := makePool(n)

	counts := make(map[uuid.UUID]int, n)
	for cursor := int64(1); cursor <= 10*n; cursor++ {
		picked, err := SelectRoundRobin(pool, cursor)
		if err != nil {
			t.Fatalf("SelectRoundRobin: %v", err)
		}
		counts[picked.PartnerID]++
	}

	for _, c := range pool {
		if counts[c.PartnerID] != 10 {
			t.Errorf("partner %s picked %d times, want 10", c.PartnerID, counts[c.PartnerID])
		}
	}
}

func TestSelectRoundRobinWrapsInInsertionOrder(t *testing.T) {
	pool := makePool(3)

	for cursor := int64(1); cursor <= 6; cursor++ {
		picked, err := SelectRoundRobin(pool, cursor)
		if err != nil {
			t.Fatalf("SelectRoundRobin: %v", err)
		}
		want := pool[(cursor-1)%3]
		if picked.PartnerID != want.PartnerID {
			t.Errorf("cursor %d picked %s, want %s", cursor, picked.PartnerID, want.PartnerID)
		}
	}
}

func TestSelectRoundRobinEmptyPool(t *testing.T) {
	if _, err := SelectRoundRobin(nil, 1); err != ErrEmptyPool {
		t.Errorf("err = %v, want ErrEmptyPool", err)
	}
}

func TestSelectRatingBasedPicksHighestRating(t *testing.T) {
	pool := []Candidate{
		{PartnerID: uuid.New(), AverageRating: 3.5},
		{PartnerID: uuid.New(), AverageRating: 4.8},
		{PartnerID: uuid.New(), AverageRating: 4.2},
	}

	picked, err := SelectRatingBased(pool)
	if err != nil {
		t.Fatalf("SelectRatingBased: %v", err)
	}
	if picked.PartnerID != pool[1].PartnerID {
		t.Errorf("picked %s, want highest-rated %s", picked.PartnerID, pool[1].PartnerID)
	}
}

func TestSelectRatingBasedTieBreaksOnCompletedVolume(t *testing.T) {
	busy := Candidate{PartnerID: uuid.New(), AverageRating: 4.5, CompletedAssignments: 20}
	idle := Candidate{PartnerID: uuid.New(), AverageRating: 4.5, CompletedAssignments: 3}
	pool := []Candidate{busy, idle}

	picked, err := SelectRatingBased(pool)
	if err != nil {
		t.Fatalf("SelectRatingBased: %v", err)
	}
	if picked.PartnerID != idle.PartnerID {
		t.Errorf("picked %s, want less-loaded %s", picked.PartnerID, idle.PartnerID)
	}
}

func TestSelectCombinedPrefersHighScore(t *testing.T) {
	strong := Candidate{PartnerID: uuid.New(), AverageRating: 5, ActiveAssignments: 0, AvgResponseMinutes: 10}
	weak := Candidate{PartnerID: uuid.New(), AverageRating: 2, ActiveAssignments: 8, AvgResponseMinutes: 240}
	pool := []Candidate{weak, strong}

	picked, err := SelectCombined(pool, DefaultWeights(), 1)
	if err != nil {
		t.Fatalf("SelectCombined: %v", err)
	}
	if picked.PartnerID != strong.PartnerID {
		t.Errorf("picked %s, want %s", picked.PartnerID, strong.PartnerID)
	}
}

func TestSelectCombinedTieFallsBackToCursor(t *testing.T) {
	// Identical metrics produce identical scores, so the pick must rotate
	// with the cursor.
	a := Candidate{PartnerID: uuid.New(), AverageRating: 4}
	b := Candidate{PartnerID: uuid.New(), AverageRating: 4}
	pool := []Candidate{a, b}

	first, err := SelectCombined(pool, DefaultWeights(), 1)
	if err != nil {
		t.Fatalf("SelectCombined: %v", err)
	}
	second, err := SelectCombined(pool, DefaultWeights(), 2)
	if err != nil {
		t.Fatalf("SelectCombined: %v", err)
	}

	if first.PartnerID != a.PartnerID {
		t.Errorf("cursor 1 picked %s, want %s", first.PartnerID, a.PartnerID)
	}
	if second.PartnerID != b.PartnerID {
		t.Errorf("cursor 2 picked %s, want %s", second.PartnerID, b.PartnerID)
	}
}

func TestValidStrategy(t *testing.T) {
	for _, name := range []string{StrategyRoundRobin, StrategyRatingBased, StrategyCombined} {
		if !ValidStrategy(name) {
			t.Errorf("ValidStrategy(%s) = false, want true", name)
		}
	}
	if ValidStrategy("random") {
		t.Error("ValidStrategy(random) = true, want false")
	}
}
