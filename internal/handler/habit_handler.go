package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/habitspark/internal/db"
	"github.com/habitspark/internal/locale"
	"github.com/habitspark/internal/progress"
	"github.com/habitspark/internal/service"
)

type habitPayload struct {
	Name           string   `json:"name"`
	Description    string   `json:"description"`
	Category       string   `json:"category"`
	RecurrenceKind string   `json:"recurrence_kind"`
	DaysOfWeek     []string `json:"days_of_week"`
	TimesPerWeek   int      `json:"times_per_week"`
	ReminderTime   string   `json:"reminder_time"`
	ProofRequired  bool     `json:"proof_required"`
	EstimatedXP    int      `json:"estimated_xp"`
}

// ListHabits 返回当前用户的习惯列表
func (a *API) ListHabits(c *gin.Context) {
	habits, err := a.habits.List(a.currentUser(c), queryBool(c, "include_inactive"))
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to list habits")
		return
	}

	items := make([]gin.H, 0, len(habits))
	for _, habit := range habits {
		items = append(items, habitToPayload(habit))
	}

	c.JSON(http.StatusOK, gin.H{"habits": items})
}

// GetHabit 返回单个习惯详情，附带渲染后的描述
func (a *API) GetHabit(c *gin.Context) {
	habit, err := a.habits.Get(a.currentUser(c), c.Param("id"))
	if err != nil {
		handleHabitError(c, err)
		return
	}

	payload := habitToPayload(*habit)
	rendered, err := service.RenderDescription(habit.Description)
	if err != nil {
		c.Error(err)
	} else {
		payload["description_html"] = rendered
	}

	done, err := a.completions.Exists(habit.ID, progress.CanonicalDay(a.progress.Today()))
	if err != nil {
		c.Error(err)
		respondError(c, http.StatusInternalServerError, "failed to load habit")
		return
	}
	payload["completed_today"] = done

	c.JSON(http.StatusOK, gin.H{"habit": payload})
}

// CreateHabit 创建习惯
func (a *API) CreateHabit(c *gin.Context) {
	var payload habitPayload
	if !bindJSON(c, &payload, "invalid habit payload") {
		return
	}

	habit, err := a.habits.Create(a.currentUser(c), payload.toInput())
	if err != nil {
		handleHabitError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"habit":   habitToPayload(*habit),
		"message": a.message(c, locale.MsgHabitCreated),
	})
}

// UpdateHabit 更新习惯
func (a *API) UpdateHabit(c *gin.Context) {
	var payload habitPayload
	if !bindJSON(c, &payload, "invalid habit payload") {
		return
	}

	habit, err := a.habits.Update(a.currentUser(c), c.Param("id"), payload.toInput())
	if err != nil {
		handleHabitError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"habit":   habitToPayload(*habit),
		"message": a.message(c, locale.MsgHabitUpdated),
	})
}

// DeactivateHabit 停用习惯（软删除）
func (a *API) DeactivateHabit(c *gin.Context) {
	habit, err := a.habits.Deactivate(a.currentUser(c), c.Param("id"))
	if err != nil {
		handleHabitError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"habit":   habitToPayload(*habit),
		"message": a.message(c, locale.MsgHabitDeactivated),
	})
}

func (p habitPayload) toInput() service.HabitInput {
	return service.HabitInput{
		Name:           p.Name,
		Description:    p.Description,
		Category:       p.Category,
		RecurrenceKind: p.RecurrenceKind,
		DaysOfWeek:     p.DaysOfWeek,
		TimesPerWeek:   p.TimesPerWeek,
		ReminderTime:   p.ReminderTime,
		ProofRequired:  p.ProofRequired,
		EstimatedXP:    p.EstimatedXP,
	}
}

func habitToPayload(habit db.Habit) gin.H {
	days := habit.DaysOfWeek
	if days == nil {
		days = []string{}
	}

	item := gin.H{
		"id":              habit.ID,
		"name":            habit.Name,
		"description":     habit.Description,
		"category":        habit.Category,
		"recurrence_kind": habit.RecurrenceKind,
		"days_of_week":    days,
		"times_per_week":  habit.TimesPerWeek,
		"proof_required":  habit.ProofRequired,
		"estimated_xp":    habit.EstimatedXP,
		"active":          habit.Active,
		"created_at":      habit.CreatedAt.Format(time.RFC3339),
	}
	if habit.ReminderTime != nil {
		item["reminder_time"] = *habit.ReminderTime
	}
	return item
}

func handleHabitError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrHabitNotFound):
		respondError(c, http.StatusNotFound, "habit not found")
	case errors.Is(err, service.ErrHabitInvalidInput):
		respondError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrHabitInactive):
		respondError(c, http.StatusConflict, "habit is inactive")
	default:
		c.Error(err)
		respondError(c, http.StatusInternalServerError, "operation failed")
	}
}
