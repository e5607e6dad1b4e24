package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/habitspark/internal/db"
	"github.com/habitspark/internal/locale"
	"github.com/habitspark/internal/progress"
	"github.com/habitspark/internal/service"
)

var outcomeMessages = map[service.CompletionOutcome]string{
	service.OutcomeCompleted:        locale.MsgHabitCompleted,
	service.OutcomeAlreadyCompleted: locale.MsgAlreadyCompleted,
	service.OutcomeProofPending:     locale.MsgProofPending,
	service.OutcomeNotDue:           locale.MsgNotDue,
}

// GetDay 返回指定日期（默认今天）的习惯投影
func (a *API) GetDay(c *gin.Context) {
	date, ok := a.queryDate(c)
	if !ok {
		return
	}

	items, err := a.progress.Day(a.currentUser(c), date)
	if err != nil {
		c.Error(err)
		respondError(c, http.StatusInternalServerError, "failed to load habits")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"date":   progress.CanonicalDay(date),
		"habits": serializeDayItems(items),
	})
}

// GetHome 返回首页：今日习惯、三项指标、经验条
func (a *API) GetHome(c *gin.Context) {
	home, err := a.progress.Home(a.currentUser(c))
	if err != nil {
		c.Error(err)
		respondError(c, http.StatusInternalServerError, "failed to load home")
		return
	}

	done := 0
	for _, item := range home.Items {
		if item.Completed {
			done++
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"date":       home.Day,
		"habits":     serializeDayItems(home.Items),
		"done_count": done,
		"total":      len(home.Items),
		"stats":      home.Stats,
		"profile":    profileToPayload(home.Profile),
		"xp":         home.XP,
	})
}

// GetWeek 返回日期所在周每天是否有打卡
func (a *API) GetWeek(c *gin.Context) {
	date, ok := a.queryDate(c)
	if !ok {
		return
	}

	days, err := a.progress.Week(a.currentUser(c), date)
	if err != nil {
		c.Error(err)
		respondError(c, http.StatusInternalServerError, "failed to load week")
		return
	}

	c.JSON(http.StatusOK, gin.H{"days": days})
}

// CompleteHabit 为今天打卡
func (a *API) CompleteHabit(c *gin.Context) {
	result, err := a.progress.CompleteHabit(a.currentUser(c), c.Param("id"))
	if err != nil {
		handleHabitError(c, err)
		return
	}

	a.metrics.ObserveCompletion(string(result.Outcome))

	status := http.StatusOK
	if result.Outcome == service.OutcomeProofPending {
		status = http.StatusAccepted
	}

	c.JSON(status, gin.H{
		"outcome": result.Outcome,
		"message": a.message(c, outcomeMessages[result.Outcome]),
		"profile": profileToPayload(result.Profile),
	})
}

// UncompleteHabit 撤销今天的打卡
func (a *API) UncompleteHabit(c *gin.Context) {
	result, err := a.progress.UncompleteHabit(a.currentUser(c), c.Param("id"))
	if err != nil {
		handleHabitError(c, err)
		return
	}
	if result.Removed {
		a.metrics.ObserveUncompletion()
	}

	c.JSON(http.StatusOK, gin.H{
		"removed": result.Removed,
		"message": a.message(c, locale.MsgHabitUnchecked),
		"profile": profileToPayload(result.Profile),
	})
}

func serializeDayItems(items []progress.DayItem) []gin.H {
	out := make([]gin.H, 0, len(items))
	for _, item := range items {
		out = append(out, gin.H{
			"id":             item.Habit.ID,
			"name":           item.Habit.Name,
			"category":       item.Habit.Category,
			"proof_required": item.Habit.ProofRequired,
			"estimated_xp":   item.Habit.EstimatedXP,
			"completed":      item.Completed,
		})
	}
	return out
}

func profileToPayload(profile db.UserProfile) gin.H {
	goals := profile.Goals
	if goals == nil {
		goals = []string{}
	}

	payload := gin.H{
		"user_id":        profile.UserID,
		"first_name":     profile.FirstName,
		"current_streak": profile.CurrentStreak,
		"record_streak":  profile.RecordStreak,
		"level":          profile.Level,
		"total_xp":       profile.TotalXP,
		"goals":          goals,
	}
	if profile.LastDecayDate != nil {
		payload["last_decay_date"] = *profile.LastDecayDate
	}
	return payload
}
