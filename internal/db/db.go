package db

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB 是一个全局的数据库连接实例
var DB *gorm.DB

// Models 返回需要自动迁移的全部模型，测试与初始化共用
func Models() []any {
	return []any{&Habit{}, &Completion{}, &UserProfile{}}
}

// Init 初始化数据库连接并执行自动迁移。
// databasePath 为空时将回退到默认值 habitspark.db。
func Init(databasePath string, logLevel logger.LogLevel) error {
	path := strings.TrimSpace(databasePath)
	if path == "" {
		path = "habitspark.db"
	}

	if err := ensureParentDir(path); err != nil {
		return err
	}

	var err error
	DB, err = gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return err
	}

	// SQLite 只有一个写者，避免多连接并发写入时出现 database is locked
	if sqlDB, dbErr := DB.DB(); dbErr == nil {
		sqlDB.SetMaxOpenConns(1)
	}

	return DB.AutoMigrate(Models()...)
}

// ParseLogLevel 将配置中的字符串映射为 gorm 日志级别
func ParseLogLevel(raw string) logger.LogLevel {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}

func ensureParentDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}

	info, err := os.Stat(dir)
	if err == nil {
		if !info.IsDir() {
			return errors.New("database path parent is not a directory")
		}
		return nil
	}

	if os.IsNotExist(err) {
		return os.MkdirAll(dir, 0o755)
	}

	return err
}
