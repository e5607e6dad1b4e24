package service

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/habitspark/internal/db"
	"github.com/habitspark/internal/progress"
	"gorm.io/gorm"
)

// CompletionOutcome 描述一次打卡请求的结果，拒绝不是错误
type CompletionOutcome string

const (
	OutcomeCompleted        CompletionOutcome = "completed"
	OutcomeAlreadyCompleted CompletionOutcome = "already_completed"
	OutcomeProofPending     CompletionOutcome = "proof_pending"
	OutcomeNotDue           CompletionOutcome = "not_due"
)

// ProgressOptions 控制经验值相关的可选行为
type ProgressOptions struct {
	// ReverseXPOnUncomplete 为 true 时取消打卡会扣回该习惯的经验值
	ReverseXPOnUncomplete bool
}

// ProgressService 串联打卡、经验、连胜与衰减逻辑
// 所有先读后写的路径都在事务内完成，并使用条件更新避免重复生效
type ProgressService struct {
	db     *gorm.DB
	ledger *CompletionService
	clock  progress.Clock
	opts   ProgressOptions
}

// CompletionResult 为 CompleteHabit 的返回值
type CompletionResult struct {
	Outcome CompletionOutcome
	Habit   db.Habit
	Profile db.UserProfile
}

// UncompleteResult 为 UncompleteHabit 的返回值
type UncompleteResult struct {
	Removed bool
	Profile db.UserProfile
}

// DecayResult 为 ApplyDecay 的返回值
type DecayResult struct {
	Applied bool
	Decay   int
	Profile db.UserProfile
}

// HomeView 汇总首页需要的数据
type HomeView struct {
	Day     string
	Items   []progress.DayItem
	Stats   progress.HomeStats
	Profile db.UserProfile
	XP      progress.XPProgress
}

// WeekDay 表示周视图中的一天
type WeekDay struct {
	Date    string `json:"date"`
	Code    string `json:"code"`
	Day     int    `json:"day"`
	IsToday bool   `json:"is_today"`
	Active  bool   `json:"active"`
}

// NewProgressService 构造 ProgressService
func NewProgressService(gdb *gorm.DB, clock progress.Clock, opts ProgressOptions) *ProgressService {
	if clock == nil {
		clock = progress.ZoneClock{Location: time.UTC}
	}
	return &ProgressService{db: gdb, ledger: NewCompletionService(gdb), clock: clock, opts: opts}
}

// Today 返回当前规范时区下的日期
func (s *ProgressService) Today() time.Time {
	return progress.DayStart(s.clock.Now())
}

// Location 返回规范时区
func (s *ProgressService) Location() *time.Location {
	return s.clock.Now().Location()
}

// CompleteHabit 为今天打卡并累加经验，随后重算连胜
func (s *ProgressService) CompleteHabit(userID, habitID string) (*CompletionResult, error) {
	today := s.Today()
	day := progress.CanonicalDay(today)
	result := &CompletionResult{}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		ledger := s.ledger.WithTx(tx)

		habit, err := findHabit(tx, userID, habitID)
		if err != nil {
			return err
		}
		if !habit.Active {
			return ErrHabitInactive
		}
		result.Habit = *habit
		rule := toProgressHabit(*habit)

		done, err := ledger.CompletedOn(userID, day)
		if err != nil {
			return err
		}
		if done[habit.ID] {
			result.Outcome = OutcomeAlreadyCompleted
			return nil
		}
		if progress.IsOnce(rule) {
			finished, err := ledger.OnceCompletedBefore(userID, day)
			if err != nil {
				return err
			}
			if finished[habit.ID] {
				result.Outcome = OutcomeAlreadyCompleted
				return nil
			}
		}
		if !progress.IsDue(rule, today) {
			result.Outcome = OutcomeNotDue
			return nil
		}
		if habit.ProofRequired {
			result.Outcome = OutcomeProofPending
			return nil
		}

		inserted, err := ledger.Record(habit.ID, day)
		if err != nil {
			return err
		}
		if !inserted {
			result.Outcome = OutcomeAlreadyCompleted
			return nil
		}

		if _, err := ensureProfile(tx, userID); err != nil {
			return err
		}
		if err := tx.Model(&db.UserProfile{}).
			Where("user_id = ?", userID).
			Updates(map[string]any{
				"total_xp": gorm.Expr("total_xp + ?", habit.EstimatedXP),
				"level":    gorm.Expr("(total_xp + ?) / ? + 1", habit.EstimatedXP, progress.XPPerLevel),
			}).Error; err != nil {
			return fmt.Errorf("add experience: %w", err)
		}

		if _, _, err := refreshStreak(tx, ledger, userID, today); err != nil {
			return err
		}
		result.Outcome = OutcomeCompleted
		return nil
	})
	if err != nil {
		return nil, err
	}

	profile, err := loadProfile(s.db, userID)
	if err != nil {
		return nil, err
	}
	result.Profile = profile

	if result.Outcome == OutcomeCompleted {
		log.Printf("[progress] user=%s habit=%s day=%s xp=+%d total=%d level=%d streak=%d",
			userID, habitID, day, result.Habit.EstimatedXP, profile.TotalXP, profile.Level, profile.CurrentStreak)
	}
	return result, nil
}

// UncompleteHabit 撤销今天的打卡；历史日期无法撤销
func (s *ProgressService) UncompleteHabit(userID, habitID string) (*UncompleteResult, error) {
	today := s.Today()
	day := progress.CanonicalDay(today)
	result := &UncompleteResult{}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		ledger := s.ledger.WithTx(tx)

		habit, err := findHabit(tx, userID, habitID)
		if err != nil {
			return err
		}

		removed, err := ledger.Remove(habit.ID, day)
		if err != nil {
			return err
		}
		result.Removed = removed
		if !removed {
			return nil
		}

		if s.opts.ReverseXPOnUncomplete && habit.EstimatedXP > 0 {
			current, err := ensureProfile(tx, userID)
			if err != nil {
				return err
			}
			xp := max(0, current.TotalXP-habit.EstimatedXP)
			if err := tx.Model(&db.UserProfile{}).
				Where("user_id = ?", userID).
				Updates(map[string]any{"total_xp": xp, "level": progress.FlooredLevel(xp)}).Error; err != nil {
				return fmt.Errorf("reverse experience: %w", err)
			}
		}

		_, _, err = refreshStreak(tx, ledger, userID, today)
		return err
	})
	if err != nil {
		return nil, err
	}

	profile, err := loadProfile(s.db, userID)
	if err != nil {
		return nil, err
	}
	result.Profile = profile
	return result, nil
}

// RefreshStreak 重新计算连胜，没有每日习惯时保持原值
func (s *ProgressService) RefreshStreak(userID string) (db.UserProfile, error) {
	today := s.Today()
	err := s.db.Transaction(func(tx *gorm.DB) error {
		_, _, err := refreshStreak(tx, s.ledger.WithTx(tx), userID, today)
		return err
	})
	if err != nil {
		return db.UserProfile{}, err
	}
	return loadProfile(s.db, userID)
}

// ApplyDecay 在当天首次加载时根据不活跃天数扣减经验
func (s *ProgressService) ApplyDecay(userID string) (*DecayResult, error) {
	today := s.Today()
	todayStr := progress.CanonicalDay(today)
	result := &DecayResult{}

	window := make([]string, 0, progress.DecayWindowDays)
	for i := 1; i <= progress.DecayWindowDays; i++ {
		window = append(window, progress.DaysAgo(today, i))
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var current db.UserProfile
		if err := tx.Where("user_id = ?", userID).First(&current).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return fmt.Errorf("get profile: %w", err)
		}

		active, err := s.ledger.WithTx(tx).ActiveDays(userID, window)
		if err != nil {
			return err
		}

		next, applied := progress.ApplyDecay(today, toProgressProfile(current), active)
		if !applied {
			return nil
		}

		update := tx.Model(&db.UserProfile{}).
			Where("user_id = ? AND total_xp = ?", userID, current.TotalXP).
			Where("last_decay_date IS NULL OR last_decay_date <> ?", todayStr).
			Updates(map[string]any{
				"total_xp":        next.TotalXP,
				"level":           next.Level,
				"last_decay_date": next.LastDecayDate,
			})
		if update.Error != nil {
			return fmt.Errorf("apply decay: %w", update.Error)
		}
		if update.RowsAffected == 0 {
			return nil
		}

		result.Applied = true
		result.Decay = current.TotalXP - next.TotalXP
		return nil
	})
	if err != nil {
		return nil, err
	}

	profile, err := loadProfile(s.db, userID)
	if err != nil {
		return nil, err
	}
	result.Profile = profile

	if result.Applied {
		log.Printf("[decay] user=%s day=%s xp=-%d total=%d level=%d", userID, todayStr, result.Decay, profile.TotalXP, profile.Level)
	}
	return result, nil
}

// Day 返回指定日期的习惯投影
func (s *ProgressService) Day(userID string, date time.Time) ([]progress.DayItem, error) {
	var habits []db.Habit
	if err := s.db.Where("owner_id = ? AND active = ?", userID, true).
		Order("created_at ASC").
		Find(&habits).Error; err != nil {
		return nil, fmt.Errorf("list habits: %w", err)
	}

	day := progress.CanonicalDay(date)
	done, err := s.ledger.CompletedOn(userID, day)
	if err != nil {
		return nil, err
	}
	finished, err := s.ledger.OnceCompletedBefore(userID, day)
	if err != nil {
		return nil, err
	}

	return progress.ProjectDay(date, toProgressHabits(habits), done, finished), nil
}

// Home 返回今天的投影、首页指标与档案
func (s *ProgressService) Home(userID string) (*HomeView, error) {
	today := s.Today()

	items, err := s.Day(userID, today)
	if err != nil {
		return nil, err
	}

	profile, err := loadProfile(s.db, userID)
	if err != nil {
		return nil, err
	}

	return &HomeView{
		Day:     progress.CanonicalDay(today),
		Items:   items,
		Stats:   progress.ComputeHomeStats(items, profile.CurrentStreak),
		Profile: profile,
		XP:      progress.ProgressForXP(profile.TotalXP),
	}, nil
}

// Week 返回 date 所在周（周一到周日）每天是否有打卡
func (s *ProgressService) Week(userID string, date time.Time) ([]WeekDay, error) {
	todayStr := progress.CanonicalDay(s.Today())
	days := progress.WeekDays(date)

	keys := make([]string, 0, len(days))
	for _, day := range days {
		keys = append(keys, progress.CanonicalDay(day))
	}

	active, err := s.ledger.ActiveDays(userID, keys)
	if err != nil {
		return nil, err
	}

	out := make([]WeekDay, 0, len(days))
	for i, day := range days {
		out = append(out, WeekDay{
			Date:    keys[i],
			Code:    progress.WeekdayCode(day),
			Day:     day.Day(),
			IsToday: keys[i] == todayStr,
			Active:  active[keys[i]],
		})
	}
	return out, nil
}

// refreshStreak 返回新的连胜值；ok=false 表示没有每日习惯，档案保持不变
func refreshStreak(tx *gorm.DB, ledger *CompletionService, userID string, today time.Time) (int, bool, error) {
	var habits []db.Habit
	if err := tx.Where("owner_id = ? AND active = ?", userID, true).Find(&habits).Error; err != nil {
		return 0, false, fmt.Errorf("list habits: %w", err)
	}

	daily := progress.StreakHabits(toProgressHabits(habits))
	if len(daily) == 0 {
		return 0, false, nil
	}

	since := progress.DaysAgo(today, progress.StreakLookbackDays-1)
	completions, err := ledger.ListSince(userID, since)
	if err != nil {
		return 0, false, err
	}

	streak, ok := progress.ComputeStreak(today, completions, daily)
	if !ok {
		return 0, false, nil
	}

	current, err := ensureProfile(tx, userID)
	if err != nil {
		return 0, false, err
	}

	if err := tx.Model(&db.UserProfile{}).
		Where("user_id = ?", userID).
		Updates(map[string]any{
			"current_streak": streak,
			"record_streak":  max(current.RecordStreak, streak),
		}).Error; err != nil {
		return 0, false, fmt.Errorf("update streak: %w", err)
	}
	return streak, true, nil
}

func toProgressProfile(profile db.UserProfile) progress.Profile {
	out := progress.Profile{
		CurrentStreak: profile.CurrentStreak,
		RecordStreak:  profile.RecordStreak,
		Level:         profile.Level,
		TotalXP:       profile.TotalXP,
	}
	if profile.LastDecayDate != nil {
		out.LastDecayDate = *profile.LastDecayDate
	}
	return out
}
