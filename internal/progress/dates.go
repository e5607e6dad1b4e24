package progress

import (
	"strings"
	"time"
)

// DayLayout is the canonical day-string layout shared by the ledger and the profile.
const DayLayout = "2006-01-02"

// Weekday codes matched against a habit's DaysOfWeek.
const (
	Sunday    = "sun"
	Monday    = "mon"
	Tuesday   = "tue"
	Wednesday = "wed"
	Thursday  = "thu"
	Friday    = "fri"
	Saturday  = "sat"
)

var weekdayCodes = [7]string{Sunday, Monday, Tuesday, Wednesday, Thursday, Friday, Saturday}

// 兼容旧数据里的法语缩写
var weekdayAliases = map[string]string{
	"dim": Sunday,
	"lun": Monday,
	"mar": Tuesday,
	"mer": Wednesday,
	"jeu": Thursday,
	"ven": Friday,
	"sam": Saturday,
}

// CanonicalDay formats the wall-clock date of t in t's own location.
// Callers pick the zone by converting t first (see Clock).
func CanonicalDay(t time.Time) string {
	return t.Format(DayLayout)
}

// WeekdayCode returns the three-letter code of t's weekday.
func WeekdayCode(t time.Time) string {
	return weekdayCodes[t.Weekday()]
}

// NormalizeWeekdayCode maps user input to a canonical code, reporting false for unknown values.
func NormalizeWeekdayCode(raw string) (string, bool) {
	code := strings.ToLower(strings.TrimSpace(raw))
	if len(code) > 3 {
		code = code[:3]
	}
	for _, known := range weekdayCodes {
		if code == known {
			return known, true
		}
	}
	if alias, ok := weekdayAliases[code]; ok {
		return alias, true
	}
	return "", false
}

// DayStart pins t to noon of its calendar day so AddDate never lands on a DST gap.
func DayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 12, 0, 0, 0, t.Location())
}

// DaysAgo returns the canonical day-string n calendar days before t.
func DaysAgo(t time.Time, n int) string {
	return CanonicalDay(DayStart(t).AddDate(0, 0, -n))
}

// ParseDay parses a canonical day-string in loc.
func ParseDay(value string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(DayLayout, strings.TrimSpace(value), loc)
	if err != nil {
		return time.Time{}, err
	}
	return DayStart(t), nil
}

// MondayOf returns the Monday of the week containing t.
func MondayOf(t time.Time) time.Time {
	weekday := int(t.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	return DayStart(t).AddDate(0, 0, -weekday+1)
}

// WeekDays returns the seven dates Monday..Sunday of t's week.
func WeekDays(t time.Time) []time.Time {
	monday := MondayOf(t)
	days := make([]time.Time, 7)
	for i := range days {
		days[i] = monday.AddDate(0, 0, i)
	}
	return days
}
