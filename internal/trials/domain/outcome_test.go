package domain

import "testing"

func TestEvaluateOutcome(t *testing.T) {
	tests := []struct {
		name    string
		quality int
		onTime  bool
		want    string
	}{
		{"high quality on time", 5, true, StatusCompleted},
		{"threshold quality on time", 3, true, StatusCompleted},
		{"low quality", 2, true, StatusFailed},
		{"lowest quality", 1, true, StatusFailed},
		{"high quality but late", 5, false, StatusFailed},
		{"low quality and late", 2, false, StatusFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EvaluateOutcome(tt.quality, tt.onTime); got != tt.want {
				t.Errorf("EvaluateOutcome(%d, %v) = %s, want %s", tt.quality, tt.onTime, got, tt.want)
			}
		})
	}
}

func TestReadyForPromotion(t *testing.T) {
	tests := []struct {
		name     string
		statuses []string
		want     bool
	}{
		{"no trials", nil, false},
		{"all completed", []string{StatusCompleted, StatusCompleted}, true},
		{"single completed", []string{StatusCompleted}, true},
		{"one failed blocks", []string{StatusCompleted, StatusFailed}, false},
		{"still in progress", []string{StatusCompleted, StatusInProgress}, false},
		{"not yet started", []string{StatusAssigned}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ReadyForPromotion(tt.statuses); got != tt.want {
				t.Errorf("ReadyForPromotion(%v) = %v, want %v", tt.statuses, got, tt.want)
			}
		})
	}
}
