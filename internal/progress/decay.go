package progress

import "time"

// DecayWindowDays is how many days before today the decay check inspects.
const DecayWindowDays = 7

// Profile is the mutable slice of a user profile touched by the engine.
type Profile struct {
	CurrentStreak int
	RecordStreak  int
	Level         int
	TotalXP       int
	LastDecayDate string
}

// InactiveRun counts the unbroken run of days without any completion, ending yesterday.
func InactiveRun(today time.Time, activeDays map[string]bool) int {
	run := 0
	for i := 1; i <= DecayWindowDays; i++ {
		if activeDays[DaysAgo(today, i)] {
			break
		}
		run++
	}
	return run
}

// DecayFor maps an inactive run to the experience penalty.
func DecayFor(inactive int) int {
	switch {
	case inactive >= 7:
		return 100
	case inactive >= 3:
		return 50
	case inactive >= 1:
		return 20
	default:
		return 0
	}
}

// ApplyDecay returns the profile after the once-per-day inactivity penalty.
// applied is false when the day was already stamped or nothing was owed; in
// that case the profile is returned unchanged and LastDecayDate is not written.
func ApplyDecay(today time.Time, profile Profile, activeDays map[string]bool) (Profile, bool) {
	todayStr := CanonicalDay(today)
	if profile.LastDecayDate == todayStr {
		return profile, false
	}

	decay := DecayFor(InactiveRun(today, activeDays))
	if decay == 0 {
		return profile, false
	}

	next := profile
	next.TotalXP = max(0, profile.TotalXP-decay)
	next.Level = FlooredLevel(next.TotalXP)
	next.LastDecayDate = todayStr
	return next, true
}

// ActiveDaySet indexes completions by day.
func ActiveDaySet(completions []Completion) map[string]bool {
	days := make(map[string]bool, len(completions))
	for _, c := range completions {
		days[c.Date] = true
	}
	return days
}
