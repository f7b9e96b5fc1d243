package domain

import "testing"

func TestNext(t *testing.T) {
	tests := []struct {
		from    Status
		want    Status
		wantErr bool
	}{
		{StatusPending, StatusScreening, false},
		{StatusScreening, StatusServiceSelection, false},
		{StatusServiceSelection, StatusTrialPeriod, false},
		{StatusTrialPeriod, StatusApproved, false},
		{StatusApproved, "", true},
		{StatusRejected, "", true},
		{StatusSuspended, "", true},
		{Status("bogus"), "", true},
	}

	for _, tt := range tests {
		t.Run(string(tt.from), func(t *testing.T) {
			got, err := tt.from.Next()
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Next(%s) expected error, got %s", tt.from, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Next(%s) unexpected error: %v", tt.from, err)
			}
			if got != tt.want {
				t.Errorf("Next(%s) = %s, want %s", tt.from, got, tt.want)
			}
		})
	}
}

func TestCanReject(t *testing.T) {
	tests := []struct {
		status Status
		want   bool
	}{
		{StatusPending, true},
		{StatusScreening, true},
		{StatusServiceSelection, true},
		{StatusTrialPeriod, true},
		{StatusApproved, false},
		{StatusRejected, false},
		{StatusSuspended, false},
	}

	for _, tt := range tests {
		if got := tt.status.CanReject(); got != tt.want {
			t.Errorf("CanReject(%s) = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestCanSuspend(t *testing.T) {
	tests := []struct {
		status Status
		want   bool
	}{
		{StatusPending, true},
		{StatusTrialPeriod, true},
		{StatusApproved, true},
		{StatusRejected, false},
		{StatusSuspended, false},
	}

	for _, tt := range tests {
		if got := tt.status.CanSuspend(); got != tt.want {
			t.Errorf("CanSuspend(%s) = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestValidResumeTarget(t *testing.T) {
	for _, target := range []Status{StatusPending, StatusScreening, StatusServiceSelection, StatusTrialPeriod, StatusApproved} {
		if !ValidResumeTarget(target) {
			t.Errorf("ValidResumeTarget(%s) = false, want true", target)
		}
	}
	for _, target := range []Status{StatusRejected, StatusSuspended, Status("bogus")} {
		if ValidResumeTarget(target) {
			t.Errorf("ValidResumeTarget(%s) = true, want false", target)
		}
	}
}
