package progress

import (
	"slices"
	"strings"
	"time"
)

// Recurrence kinds stored on a habit.
const (
	KindOnce      = "once"
	KindDaily     = "daily"
	KindRecurring = "recurring"
	KindWeekly    = "weekly"
)

// Habit is the slice of a stored habit the engine needs.
type Habit struct {
	ID             string
	Name           string
	Category       string
	RecurrenceKind string
	DaysOfWeek     []string
	// TimesPerWeek is carried for weekly habits but no rule reads it yet.
	TimesPerWeek  int
	ProofRequired bool
	EstimatedXP   int
	Active        bool
}

// IsKnownKind reports whether kind is one of the stored recurrence kinds.
func IsKnownKind(kind string) bool {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case KindOnce, KindDaily, KindRecurring, KindWeekly:
		return true
	}
	return false
}

// IsDue reports whether habit should be actioned on date. Unknown kinds are never due.
func IsDue(habit Habit, date time.Time) bool {
	switch strings.ToLower(strings.TrimSpace(habit.RecurrenceKind)) {
	case KindOnce, KindDaily:
		return true
	case KindRecurring, KindWeekly:
		return slices.Contains(habit.DaysOfWeek, WeekdayCode(date))
	default:
		return false
	}
}

// IsOnce reports whether habit is a one-off task, retired after its first completion.
func IsOnce(habit Habit) bool {
	return strings.ToLower(strings.TrimSpace(habit.RecurrenceKind)) == KindOnce
}

// CountsTowardStreak reports whether habit is part of the all-daily-habits streak bar.
func CountsTowardStreak(habit Habit) bool {
	if !habit.Active {
		return false
	}
	kind := strings.ToLower(strings.TrimSpace(habit.RecurrenceKind))
	return kind == KindDaily || kind == KindRecurring
}

// StreakHabits filters habits down to the daily-cadence set.
func StreakHabits(habits []Habit) []Habit {
	out := make([]Habit, 0, len(habits))
	for _, habit := range habits {
		if CountsTowardStreak(habit) {
			out = append(out, habit)
		}
	}
	return out
}
