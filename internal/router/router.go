package router

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/habitspark/internal/handler"
)

// SetupRouter 配置 Gin 引擎和路由
func SetupRouter(api *handler.API, sessionSecret string) *gin.Engine {
	r := gin.Default()

	// 配置会话中间件，会话里只保存当前用户标识
	store := cookie.NewStore([]byte(sessionSecret))
	store.Options(sessions.Options{Path: "/", MaxAge: 365 * 24 * 60 * 60, HttpOnly: true, SameSite: http.SameSiteLaxMode})
	r.Use(sessions.Sessions("habitspark_session", store))

	if recorder := api.Metrics(); recorder != nil {
		r.Use(recorder.Middleware())
		r.GET("/metrics", gin.WrapH(recorder.Handler()))
	}

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	apiGroup := r.Group("/api")
	{
		apiGroup.POST("/session", api.SelectUser)

		user := apiGroup.Group("")
		user.Use(api.IdentityMiddleware())
		{
			user.GET("/profile", api.GetProfile)
			user.PUT("/profile/onboarding", api.Onboard)

			user.GET("/habits", api.ListHabits)
			user.POST("/habits", api.CreateHabit)
			user.GET("/habits/:id", api.GetHabit)
			user.PUT("/habits/:id", api.UpdateHabit)
			user.POST("/habits/:id/deactivate", api.DeactivateHabit)
			user.POST("/habits/:id/complete", api.CompleteHabit)
			user.DELETE("/habits/:id/complete", api.UncompleteHabit)

			user.GET("/today", api.GetDay)
			user.GET("/home", api.GetHome)
			user.GET("/week", api.GetWeek)
		}
	}

	return r
}
