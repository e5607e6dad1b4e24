package service

import (
	"strings"
	"testing"
	"time"

	"github.com/habitspark/internal/db"
	"github.com/habitspark/internal/progress"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testUser = "local_user"

func setupServiceTestDB(t *testing.T) func() {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	gdb, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := gdb.AutoMigrate(db.Models()...); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	db.DB = gdb

	return func() {
		sqlDB, err := gdb.DB()
		if err == nil {
			sqlDB.Close()
		}
	}
}

func mustCreateHabit(t *testing.T, svc *HabitService, input HabitInput) *db.Habit {
	t.Helper()
	habit, err := svc.Create(testUser, input)
	if err != nil {
		t.Fatalf("failed to create habit %q: %v", input.Name, err)
	}
	return habit
}

func seedCompletion(t *testing.T, habitID, day string) {
	t.Helper()
	if err := db.DB.Create(&db.Completion{HabitID: habitID, Date: day}).Error; err != nil {
		t.Fatalf("failed to seed completion: %v", err)
	}
}

// 2024-05-20 是周一
func testClock() *progress.FixedClock {
	return progress.NewFixedClock(time.Date(2024, 5, 20, 9, 30, 0, 0, time.UTC))
}
