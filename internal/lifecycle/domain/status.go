// Package domain defines the partner lifecycle state machine.
package domain

import "fmt"

// Status is a partner lifecycle status.
type Status string

const (
	StatusPending          Status = "pending"
	StatusScreening        Status = "screening"
	StatusServiceSelection Status = "service_selection"
	StatusTrialPeriod      Status = "trial_period"
	StatusApproved         Status = "approved"
	StatusRejected         Status = "rejected"
	StatusSuspended        Status = "suspended"
)

// progression is the ordered happy path. Advancing moves exactly one step
// forward; skipping stages is not allowed.
var progression = []Status{
	StatusPending,
	StatusScreening,
	StatusServiceSelection,
	StatusTrialPeriod,
	StatusApproved,
}

// Progression returns the ordered happy path, for progress rendering.
func Progression() []Status {
	return append([]Status(nil), progression...)
}

// Index returns the position of s on the progression path, or -1 when s is
// not on it.
func (s Status) Index() int {
	for i, st := range progression {
		if s == st {
			return i
		}
	}
	return -1
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusScreening, StatusServiceSelection,
		StatusTrialPeriod, StatusApproved, StatusRejected, StatusSuspended:
		return true
	}
	return false
}

// Active reports whether the status is on the progression path, i.e. the
// partner is neither rejected nor suspended.
func (s Status) Active() bool {
	for _, st := range progression {
		if s == st {
			return true
		}
	}
	return false
}

// Next returns the status one step further along the progression.
// Rejected and suspended are absorbing: they have no next step.
func (s Status) Next() (Status, error) {
	for i, st := range progression {
		if s != st {
			continue
		}
		if i == len(progression)-1 {
			return "", fmt.Errorf("partner is already %s", s)
		}
		return progression[i+1], nil
	}
	return "", fmt.Errorf("cannot advance from %s", s)
}

// CanReject reports whether a partner in s may be rejected.
// Approved partners are suspended instead of rejected.
func (s Status) CanReject() bool {
	return s.Active() && s != StatusApproved
}

// CanSuspend reports whether a partner in s may be suspended.
func (s Status) CanSuspend() bool {
	return s.Active()
}

// ValidResumeTarget reports whether a suspended partner may be reinstated
// into target. Reinstating resumes the progression at the point the caller
// names; only active statuses qualify.
func ValidResumeTarget(target Status) bool {
	return target.Active()
}
