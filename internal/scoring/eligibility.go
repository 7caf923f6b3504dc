package scoring

import "time"

type Reason string

const (
	ReasonNone               Reason = ""
	ReasonNotYetOpen         Reason = "not yet open"
	ReasonExpired            Reason = "expired"
	ReasonMaxAttemptsReached Reason = "max attempts reached"
)

type Decision struct {
	Allowed bool
	Reason  Reason
}

func allow() Decision { return Decision{Allowed: true} }

func deny(r Reason) Decision { return Decision{Allowed: false, Reason: r} }

// CheckEligibility decides whether an actor with the given role may act on a
// test now. Only students are subject to the window and the attempt budget.
func CheckEligibility(p Policy, role Role, now time.Time) Decision {
	if role != RoleStudent {
		return allow()
	}
	if p.Opens != nil && now.Before(*p.Opens) {
		return deny(ReasonNotYetOpen)
	}
	if p.Due != nil && now.After(*p.Due) {
		return deny(ReasonExpired)
	}
	if p.MaxAttempts > 0 && p.AttemptCount >= p.MaxAttempts {
		return deny(ReasonMaxAttemptsReached)
	}
	return allow()
}

// Overtime reports whether an attempt that ran from start to end exceeded a
// fixed duration. A non-positive duration never runs over.
func Overtime(start, end time.Time, durationMinutes int) bool {
	if durationMinutes <= 0 {
		return false
	}
	return end.Sub(start) > time.Duration(durationMinutes)*time.Minute
}
