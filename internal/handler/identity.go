package handler

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const (
	userIDContextKey = "__user_id"
	userIDSessionKey = "user_id"
	userIDHeader     = "X-User-ID"
)

var userIDPattern = regexp.MustCompile(`^[A-Za-z0-9_.-]{1,64}$`)

// IdentityMiddleware resolves which profile the request acts on:
// the X-User-ID header, then the session, then the configured default.
func (a *API) IdentityMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := strings.TrimSpace(c.GetHeader(userIDHeader))
		if userID == "" {
			if stored, ok := sessions.Default(c).Get(userIDSessionKey).(string); ok {
				userID = stored
			}
		}
		if userID == "" {
			userID = a.defaultUserID
		}
		if !userIDPattern.MatchString(userID) {
			respondError(c, http.StatusBadRequest, "invalid user id")
			c.Abort()
			return
		}
		c.Set(userIDContextKey, userID)
		c.Next()
	}
}

// SelectUser stores the chosen user id in the cookie session.
func (a *API) SelectUser(c *gin.Context) {
	var payload struct {
		UserID string `json:"user_id"`
	}
	if !bindJSON(c, &payload, "invalid request payload") {
		return
	}

	userID := strings.TrimSpace(payload.UserID)
	if !userIDPattern.MatchString(userID) {
		respondError(c, http.StatusBadRequest, "invalid user id")
		return
	}

	session := sessions.Default(c)
	session.Set(userIDSessionKey, userID)
	if err := session.Save(); err != nil {
		respondError(c, http.StatusInternalServerError, "failed to save session")
		return
	}

	c.JSON(http.StatusOK, gin.H{"user_id": userID})
}

func (a *API) currentUser(c *gin.Context) string {
	if value, ok := c.Get(userIDContextKey); ok {
		if userID, ok := value.(string); ok && userID != "" {
			return userID
		}
	}
	return a.defaultUserID
}
