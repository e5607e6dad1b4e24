package main

import (
	"fmt"
	"log"

	"github.com/habitspark/internal/config"
	"github.com/habitspark/internal/db"
	"github.com/habitspark/internal/progress"
	"github.com/habitspark/internal/service"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const demoHistoryDays = 21

var demoHabits = []service.HabitInput{
	{Name: "Pompes", Description: "3 séries de **20**", Category: "sport", RecurrenceKind: progress.KindDaily, EstimatedXP: 20},
	{Name: "Boire 2L d'eau", Category: "nutrition", RecurrenceKind: progress.KindDaily, EstimatedXP: 10},
	{Name: "Lecture", Description: "20 pages minimum", Category: "connaissance", RecurrenceKind: progress.KindWeekly, DaysOfWeek: []string{"mon", "wed", "fri"}, TimesPerWeek: 3, EstimatedXP: 30},
	{Name: "Photo du repas", Category: "nutrition", RecurrenceKind: progress.KindWeekly, DaysOfWeek: []string{"sun"}, ProofRequired: true, EstimatedXP: 15},
	{Name: "Prospection clients", Category: "business", RecurrenceKind: progress.KindWeekly, DaysOfWeek: []string{"tue"}, TimesPerWeek: 1, EstimatedXP: 50},
}

// 演示数据生成器
func main() {
	cfg := config.Load()
	if err := db.Init(cfg.DatabasePath, db.ParseLogLevel(cfg.DatabaseLogLevel)); err != nil {
		log.Fatal("数据库初始化失败:", err)
	}

	fmt.Println("开始生成演示数据...")

	clock := progress.ZoneClock{Location: cfg.Location}
	created, err := seedDemoData(db.DB, cfg.DefaultUserID, clock)
	if err != nil {
		log.Fatal("生成演示数据失败:", err)
	}
	if !created {
		fmt.Println("用户已有习惯，跳过生成")
		return
	}

	fmt.Println("演示数据生成完成！")
	fmt.Printf("用户: %s\n", cfg.DefaultUserID)
	fmt.Printf("习惯: %d 个，历史: %d 天\n", len(demoHabits), demoHistoryDays)
}

// seedDemoData 为 userID 写入档案、习惯以及过去几周的打卡记录；已有习惯时不做任何修改
func seedDemoData(gdb *gorm.DB, userID string, clock progress.Clock) (bool, error) {
	habitService := service.NewHabitService(gdb)
	existing, err := habitService.List(userID, true)
	if err != nil {
		return false, err
	}
	if len(existing) > 0 {
		return false, nil
	}

	if _, err := service.NewProfileService(gdb).Onboard(userID, service.OnboardingInput{
		FirstName: "Alex",
		Goals:     []string{"sport", "discipline"},
	}); err != nil {
		return false, err
	}

	habits := make([]db.Habit, 0, len(demoHabits))
	for _, input := range demoHabits {
		habit, err := habitService.Create(userID, input)
		if err != nil {
			return false, fmt.Errorf("create habit %s: %w", input.Name, err)
		}
		habits = append(habits, *habit)
	}

	today := progress.DayStart(clock.Now())
	totalXP := 0
	var completions []db.Completion
	for offset := demoHistoryDays; offset >= 1; offset-- {
		// 每隔一周留一个空档，让连续天数看起来真实一些
		if offset%8 == 0 {
			continue
		}
		date := today.AddDate(0, 0, -offset)
		for _, habit := range habits {
			if habit.ProofRequired || !progress.IsDue(toDemoHabit(habit), date) {
				continue
			}
			completions = append(completions, db.Completion{
				HabitID: habit.ID,
				Date:    progress.CanonicalDay(date),
			})
			totalXP += habit.EstimatedXP
		}
	}

	err = gdb.Transaction(func(tx *gorm.DB) error {
		if len(completions) > 0 {
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&completions).Error; err != nil {
				return fmt.Errorf("create completions: %w", err)
			}
		}
		return tx.Model(&db.UserProfile{}).Where("user_id = ?", userID).Updates(map[string]any{
			"total_xp": totalXP,
			"level":    progress.LevelForXP(totalXP),
		}).Error
	})
	if err != nil {
		return false, err
	}

	progressService := service.NewProgressService(gdb, clock, service.ProgressOptions{})
	if _, err := progressService.RefreshStreak(userID); err != nil {
		return false, fmt.Errorf("refresh streak: %w", err)
	}
	return true, nil
}

func toDemoHabit(habit db.Habit) progress.Habit {
	return progress.Habit{
		ID:             habit.ID,
		RecurrenceKind: habit.RecurrenceKind,
		DaysOfWeek:     habit.DaysOfWeek,
		Active:         habit.Active,
	}
}
