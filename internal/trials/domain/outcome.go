// Package domain holds the trial evaluation rules.
package domain

// Trial statuses.
const (
	StatusAssigned   = "assigned"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// minPassingQuality is the lowest quality rating that still passes a trial.
const minPassingQuality = 3

// EvaluateOutcome applies the pass threshold: a trial fails when quality is
// below 3 or the delivery was late, and completes otherwise.
func EvaluateOutcome(qualityRating int, onTimeDelivery bool) string {
	if qualityRating < minPassingQuality || !onTimeDelivery {
		return StatusFailed
	}
	return StatusCompleted
}

// ReadyForPromotion reports whether a partner's trial record justifies
// promotion: at least one trial exists and every one of them completed.
// A failed trial blocks promotion but never auto-rejects; rejection stays a
// human decision.
func ReadyForPromotion(statuses []string) bool {
	if len(statuses) == 0 {
		return false
	}
	for _, status := range statuses {
		if status != StatusCompleted {
			return false
		}
	}
	return true
}
