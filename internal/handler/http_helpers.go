package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/habitspark/internal/progress"
)

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

func bindJSON(c *gin.Context, dst interface{}, message string) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, http.StatusBadRequest, message)
		return false
	}
	return true
}

// queryDate reads ?date=YYYY-MM-DD, defaulting to today in the canonical zone.
func (a *API) queryDate(c *gin.Context) (time.Time, bool) {
	raw := strings.TrimSpace(c.Query("date"))
	if raw == "" {
		return a.progress.Today(), true
	}
	date, err := progress.ParseDay(raw, a.progress.Location())
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return time.Time{}, false
	}
	return date, true
}

func queryBool(c *gin.Context, key string) bool {
	switch strings.ToLower(strings.TrimSpace(c.Query(key))) {
	case "1", "true", "yes":
		return true
	}
	return false
}
