package service

import (
	"fmt"

	"github.com/habitspark/internal/db"
	"github.com/habitspark/internal/progress"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CompletionService 负责读取与维护打卡账本
// 所有查询都通过 habits 表关联到 owner，避免跨用户串数据
type CompletionService struct {
	db *gorm.DB
}

// NewCompletionService 构造 CompletionService
func NewCompletionService(gdb *gorm.DB) *CompletionService {
	return &CompletionService{db: gdb}
}

// WithTx 返回绑定到事务 tx 的账本，事务内的读写都要走 tx
func (s *CompletionService) WithTx(tx *gorm.DB) *CompletionService {
	return &CompletionService{db: tx}
}

// CompletedOn 返回某天已完成的习惯 ID 集合
func (s *CompletionService) CompletedOn(ownerID, day string) (map[string]bool, error) {
	return completedOn(s.db, ownerID, day)
}

// ActiveDays 返回 days 中至少有一次打卡的日期集合
func (s *CompletionService) ActiveDays(ownerID string, days []string) (map[string]bool, error) {
	return activeDays(s.db, ownerID, days)
}

// ListSince 返回 since（含）之后的全部打卡记录
func (s *CompletionService) ListSince(ownerID, since string) ([]progress.Completion, error) {
	return listSince(s.db, ownerID, since)
}

// OnceCompletedBefore 返回在 day 之前已经完成过的一次性习惯 ID
func (s *CompletionService) OnceCompletedBefore(ownerID, day string) (map[string]bool, error) {
	var ids []string
	if err := ownedCompletions(s.db, ownerID).
		Where("habits.recurrence_kind = ? AND completions.date < ?", progress.KindOnce, day).
		Distinct().
		Pluck("completions.habit_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("list finished once habits: %w", err)
	}

	out := make(map[string]bool, len(ids))
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}

// Exists 判断习惯在某天是否已有打卡
func (s *CompletionService) Exists(habitID, day string) (bool, error) {
	var count int64
	if err := s.db.Model(&db.Completion{}).
		Where("habit_id = ? AND date = ?", habitID, day).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("check completion: %w", err)
	}
	return count > 0, nil
}

// Record 写入一条打卡，返回是否新插入
func (s *CompletionService) Record(habitID, day string) (bool, error) {
	return insertCompletion(s.db, habitID, day)
}

// Remove 删除某天的打卡，返回是否真的删除了记录
func (s *CompletionService) Remove(habitID, day string) (bool, error) {
	return removeCompletion(s.db, habitID, day)
}

func ownedCompletions(gdb *gorm.DB, ownerID string) *gorm.DB {
	return gdb.Model(&db.Completion{}).
		Joins("JOIN habits ON habits.id = completions.habit_id").
		Where("habits.owner_id = ?", ownerID)
}

func completedOn(gdb *gorm.DB, ownerID, day string) (map[string]bool, error) {
	var ids []string
	if err := ownedCompletions(gdb, ownerID).
		Where("completions.date = ?", day).
		Pluck("completions.habit_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("list completions for %s: %w", day, err)
	}

	out := make(map[string]bool, len(ids))
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}

func activeDays(gdb *gorm.DB, ownerID string, days []string) (map[string]bool, error) {
	out := make(map[string]bool, len(days))
	if len(days) == 0 {
		return out, nil
	}

	var dates []string
	if err := ownedCompletions(gdb, ownerID).
		Where("completions.date IN ?", days).
		Distinct().
		Pluck("completions.date", &dates).Error; err != nil {
		return nil, fmt.Errorf("list active days: %w", err)
	}

	for _, date := range dates {
		out[date] = true
	}
	return out, nil
}

func listSince(gdb *gorm.DB, ownerID, since string) ([]progress.Completion, error) {
	var rows []progress.Completion
	if err := ownedCompletions(gdb, ownerID).
		Select("completions.habit_id AS habit_id, completions.date AS date").
		Where("completions.date >= ?", since).
		Order("completions.date DESC").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("list completions since %s: %w", since, err)
	}
	return rows, nil
}

// insertCompletion 依赖唯一索引做幂等写入，返回是否新插入
func insertCompletion(gdb *gorm.DB, habitID, day string) (bool, error) {
	record := db.Completion{HabitID: habitID, Date: day}
	result := gdb.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "habit_id"}, {Name: "date"}},
		DoNothing: true,
	}).Create(&record)
	if result.Error != nil {
		return false, fmt.Errorf("insert completion: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

func removeCompletion(gdb *gorm.DB, habitID, day string) (bool, error) {
	result := gdb.Where("habit_id = ? AND date = ?", habitID, day).Delete(&db.Completion{})
	if result.Error != nil {
		return false, fmt.Errorf("delete completion: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}
