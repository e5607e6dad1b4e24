package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/habitspark/internal/config"
	"github.com/habitspark/internal/db"
	"github.com/habitspark/internal/handler"
	"github.com/habitspark/internal/metrics"
	"github.com/habitspark/internal/progress"
	"github.com/habitspark/internal/router"
	"github.com/habitspark/internal/service"
)

func main() {
	cfg := config.Load()
	gin.SetMode(cfg.GinMode)

	// 初始化数据库
	if err := db.Init(cfg.DatabasePath, db.ParseLogLevel(cfg.DatabaseLogLevel)); err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	// 单用户模式下先准备好默认档案
	if _, err := service.NewProfileService(db.DB).Ensure(cfg.DefaultUserID); err != nil {
		log.Fatalf("failed to ensure default profile: %v", err)
	}

	var recorder *metrics.Recorder
	if cfg.MetricsEnabled {
		recorder = metrics.New()
	}

	api := handler.NewAPI(db.DB, handler.Options{
		Clock:                 progress.ZoneClock{Location: cfg.Location},
		DefaultUserID:         cfg.DefaultUserID,
		DefaultLanguage:       cfg.DefaultLanguage,
		ReverseXPOnUncomplete: cfg.ReverseXPOnUncomplete,
		Metrics:               recorder,
	})

	// 设置并运行 Gin 服务器
	r := router.SetupRouter(api, cfg.SessionSecret)
	log.Printf("[server] listening on %s (timezone %s)", cfg.ListenAddr, cfg.Location)
	if err := r.Run(cfg.ListenAddr); err != nil {
		log.Fatalf("failed to run server: %v", err)
	}
}
