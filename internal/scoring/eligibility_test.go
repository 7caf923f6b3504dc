package scoring

import (
	"testing"
	"time"
)

func TestCheckEligibility(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	tests := []struct {
		name   string
		policy Policy
		role   Role
		want   Decision
	}{
		{name: "no restrictions", policy: Policy{}, role: RoleStudent, want: Decision{Allowed: true}},
		{name: "not yet open", policy: Policy{Opens: &future}, role: RoleStudent, want: Decision{Reason: ReasonNotYetOpen}},
		{name: "open now", policy: Policy{Opens: &now}, role: RoleStudent, want: Decision{Allowed: true}},
		{name: "expired", policy: Policy{Opens: &past, Due: &past}, role: RoleStudent, want: Decision{Reason: ReasonExpired}},
		{name: "due exactly now", policy: Policy{Due: &now}, role: RoleStudent, want: Decision{Allowed: true}},
		{name: "attempts left", policy: Policy{MaxAttempts: 2, AttemptCount: 1}, role: RoleStudent, want: Decision{Allowed: true}},
		{name: "attempts exhausted", policy: Policy{MaxAttempts: 2, AttemptCount: 2}, role: RoleStudent, want: Decision{Reason: ReasonMaxAttemptsReached}},
		{name: "unlimited attempts", policy: Policy{MaxAttempts: 0, AttemptCount: 50}, role: RoleStudent, want: Decision{Allowed: true}},
		{name: "not open wins over attempts", policy: Policy{Opens: &future, MaxAttempts: 1, AttemptCount: 1}, role: RoleStudent, want: Decision{Reason: ReasonNotYetOpen}},
		{name: "teacher bypasses window", policy: Policy{Opens: &future}, role: RoleTeacher, want: Decision{Allowed: true}},
		{name: "admin bypasses attempts", policy: Policy{MaxAttempts: 1, AttemptCount: 3}, role: RoleAdmin, want: Decision{Allowed: true}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := CheckEligibility(tc.policy, tc.role, now)
			if got != tc.want {
				t.Errorf("CheckEligibility() = %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestOvertime(t *testing.T) {
	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	if Overtime(start, start.Add(30*time.Minute), 30) {
		t.Error("exactly on the limit should not be overtime")
	}
	if !Overtime(start, start.Add(31*time.Minute), 30) {
		t.Error("one minute past the limit should be overtime")
	}
	if Overtime(start, start.Add(10*time.Hour), 0) {
		t.Error("zero duration never runs over")
	}
}
