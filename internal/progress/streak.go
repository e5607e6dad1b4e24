package progress

import "time"

// StreakLookbackDays bounds how far back ComputeStreak scans.
const StreakLookbackDays = 60

// Completion is one ledger row: habit HabitID was done on Date (canonical day-string).
type Completion struct {
	HabitID string
	Date    string
}

// ComputeStreak counts consecutive fully-completed days ending today.
// An unfinished today does not break the chain. ok is false when there are no
// daily habits, in which case the stored streak must be left untouched.
func ComputeStreak(today time.Time, completions []Completion, dailyHabits []Habit) (streak int, ok bool) {
	if len(dailyHabits) == 0 {
		return 0, false
	}

	tracked := make(map[string]struct{}, len(dailyHabits))
	for _, habit := range dailyHabits {
		tracked[habit.ID] = struct{}{}
	}

	done := make(map[string]map[string]struct{})
	for _, c := range completions {
		if _, ok := tracked[c.HabitID]; !ok {
			continue
		}
		ids, exists := done[c.Date]
		if !exists {
			ids = make(map[string]struct{})
			done[c.Date] = ids
		}
		ids[c.HabitID] = struct{}{}
	}

	for i := 0; i < StreakLookbackDays; i++ {
		day := DaysAgo(today, i)
		if len(done[day]) >= len(tracked) {
			streak++
			continue
		}
		if i > 0 {
			break
		}
	}

	return streak, true
}
