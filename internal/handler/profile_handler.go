package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/habitspark/internal/locale"
	"github.com/habitspark/internal/progress"
	"github.com/habitspark/internal/service"
)

// GetProfile 返回用户档案；当天首次加载时先结算经验衰减
func (a *API) GetProfile(c *gin.Context) {
	result, err := a.progress.ApplyDecay(a.currentUser(c))
	if err != nil {
		c.Error(err)
		respondError(c, http.StatusInternalServerError, "failed to load profile")
		return
	}

	payload := gin.H{
		"profile": profileToPayload(result.Profile),
		"xp":      progress.ProgressForXP(result.Profile.TotalXP),
	}
	if result.Applied {
		a.metrics.ObserveDecay(result.Decay)
		payload["decay"] = gin.H{
			"amount":  result.Decay,
			"message": a.message(c, locale.MsgDecayApplied),
		}
	}

	c.JSON(http.StatusOK, payload)
}

// Onboard 保存引导流程中的名字与目标
func (a *API) Onboard(c *gin.Context) {
	var payload struct {
		FirstName string   `json:"first_name"`
		Goals     []string `json:"goals"`
	}
	if !bindJSON(c, &payload, "invalid onboarding payload") {
		return
	}

	profile, err := a.profiles.Onboard(a.currentUser(c), service.OnboardingInput{
		FirstName: payload.FirstName,
		Goals:     payload.Goals,
	})
	if err != nil {
		if errors.Is(err, service.ErrProfileInvalidInput) {
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}
		c.Error(err)
		respondError(c, http.StatusInternalServerError, "failed to save profile")
		return
	}

	c.JSON(http.StatusOK, gin.H{"profile": profileToPayload(profile)})
}
