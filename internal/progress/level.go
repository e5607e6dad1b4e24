package progress

// XPPerLevel is the fixed divisor between total experience and level.
const XPPerLevel = 100

// LevelForXP derives the level reached with xp on the completion path.
func LevelForXP(xp int) int {
	return xp/XPPerLevel + 1
}

// FlooredLevel is LevelForXP clamped to at least 1, used wherever xp may shrink.
func FlooredLevel(xp int) int {
	return max(1, LevelForXP(max(0, xp)))
}

// XPProgress describes where total experience sits inside the current level.
type XPProgress struct {
	Level        int `json:"level"`
	TotalXP      int `json:"total_xp"`
	IntoLevel    int `json:"into_level"`
	ToNextLevel  int `json:"to_next_level"`
	PercentLevel int `json:"percent_level"`
}

// ProgressForXP splits xp into the level bar shown on the home screen.
func ProgressForXP(xp int) XPProgress {
	xp = max(0, xp)
	into := xp % XPPerLevel
	return XPProgress{
		Level:        FlooredLevel(xp),
		TotalXP:      xp,
		IntoLevel:    into,
		ToNextLevel:  XPPerLevel - into,
		PercentLevel: into * 100 / XPPerLevel,
	}
}
