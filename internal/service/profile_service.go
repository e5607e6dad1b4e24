package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/habitspark/internal/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	defaultFirstName = "Toi"
	maxProfileGoals  = 3
)

var (
	// ErrProfileInvalidInput 在引导信息不完整时返回
	ErrProfileInvalidInput = errors.New("invalid profile input")
)

// ProfileService 负责读取与初始化用户档案
// 读取时若档案不存在直接返回默认值，不视为错误

type ProfileService struct {
	db *gorm.DB
}

// OnboardingInput 描述引导流程提交的数据
type OnboardingInput struct {
	FirstName string
	Goals     []string
}

// NewProfileService 构造 ProfileService
func NewProfileService(gdb *gorm.DB) *ProfileService {
	return &ProfileService{db: gdb}
}

// Get 返回用户档案，不存在时返回默认档案
func (s *ProfileService) Get(userID string) (db.UserProfile, error) {
	return loadProfile(s.db, userID)
}

// Ensure 确保档案行存在并返回
func (s *ProfileService) Ensure(userID string) (db.UserProfile, error) {
	return ensureProfile(s.db, userID)
}

// Onboard 保存名字与目标，最多保留 3 个目标
func (s *ProfileService) Onboard(userID string, input OnboardingInput) (db.UserProfile, error) {
	name := sanitizeText(input.FirstName)
	if name == "" {
		name = defaultFirstName
	}

	goals := make([]string, 0, len(input.Goals))
	seen := make(map[string]struct{}, len(input.Goals))
	for _, raw := range input.Goals {
		goal := strings.ToLower(sanitizeText(raw))
		if goal == "" {
			continue
		}
		if _, dup := seen[goal]; dup {
			continue
		}
		seen[goal] = struct{}{}
		goals = append(goals, goal)
	}
	if len(goals) > maxProfileGoals {
		return db.UserProfile{}, fmt.Errorf("%w: at most %d goals", ErrProfileInvalidInput, maxProfileGoals)
	}

	var profile db.UserProfile
	err := s.db.Transaction(func(tx *gorm.DB) error {
		current, err := ensureProfile(tx, userID)
		if err != nil {
			return err
		}
		current.FirstName = name
		current.Goals = goals
		if err := tx.Model(&current).Select("first_name", "goals").Updates(&current).Error; err != nil {
			return fmt.Errorf("update onboarding: %w", err)
		}
		profile = current
		return nil
	})
	if err != nil {
		return db.UserProfile{}, err
	}
	return profile, nil
}

func loadProfile(gdb *gorm.DB, userID string) (db.UserProfile, error) {
	var profile db.UserProfile
	if err := gdb.Where("user_id = ?", userID).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return db.DefaultProfile(userID), nil
		}
		return db.UserProfile{}, fmt.Errorf("get profile: %w", err)
	}
	return profile, nil
}

func ensureProfile(gdb *gorm.DB, userID string) (db.UserProfile, error) {
	seed := db.DefaultProfile(userID)
	if err := gdb.Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error; err != nil {
		return db.UserProfile{}, fmt.Errorf("seed profile: %w", err)
	}
	return loadProfile(gdb, userID)
}
