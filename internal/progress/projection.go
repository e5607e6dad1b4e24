package progress

import (
	"math"
	"strings"
	"time"
)

// energyCategories feed the energy gauge.
var energyCategories = map[string]struct{}{
	"sport":     {},
	"nutrition": {},
}

// DayItem is one row of a projected day.
type DayItem struct {
	Habit     Habit
	Completed bool
}

// ProjectDay keeps active habits due on date and flags the ones in completedIDs.
// A once habit listed in doneBefore was completed on an earlier day and is dropped.
func ProjectDay(date time.Time, habits []Habit, completedIDs, doneBefore map[string]bool) []DayItem {
	items := make([]DayItem, 0, len(habits))
	for _, habit := range habits {
		if !habit.Active || !IsDue(habit, date) {
			continue
		}
		if IsOnce(habit) && doneBefore[habit.ID] {
			continue
		}
		items = append(items, DayItem{Habit: habit, Completed: completedIDs[habit.ID]})
	}
	return items
}

// HomeStats holds the three home-screen gauges, each 0..100.
type HomeStats struct {
	Energy     int `json:"energy"`
	Discipline int `json:"discipline"`
	Morale     int `json:"morale"`
}

// ComputeHomeStats derives the gauges from a projected day and the current streak.
func ComputeHomeStats(items []DayItem, currentStreak int) HomeStats {
	total := len(items)
	if total == 0 {
		total = 1
	}
	done := 0
	energyTotal, energyDone := 0, 0
	for _, item := range items {
		if item.Completed {
			done++
		}
		if _, ok := energyCategories[strings.ToLower(strings.TrimSpace(item.Habit.Category))]; ok {
			energyTotal++
			if item.Completed {
				energyDone++
			}
		}
	}

	discipline := percent(done, total)
	energy := discipline
	if energyTotal > 0 {
		energy = percent(energyDone, energyTotal)
	}

	return HomeStats{
		Energy:     energy,
		Discipline: discipline,
		Morale:     min(max(0, currentStreak)*10, 100),
	}
}

func percent(part, whole int) int {
	return int(math.Round(float64(part) / float64(whole) * 100))
}
