package service

import (
	"bytes"
	"errors"
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/habitspark/internal/db"
	"github.com/habitspark/internal/progress"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	"gorm.io/gorm"
)

var (
	// ErrHabitNotFound 在指定习惯不存在时返回
	ErrHabitNotFound = errors.New("habit not found")
	// ErrHabitInvalidInput 当表单字段不合法时返回
	ErrHabitInvalidInput = errors.New("invalid habit input")
	// ErrHabitInactive 在对已停用的习惯打卡时返回
	ErrHabitInactive = errors.New("habit is inactive")
)

var (
	reminderPattern = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)
	plainText       = bluemonday.StrictPolicy()
	descriptionHTML = bluemonday.UGCPolicy()
	markdownEngine  = goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Linkify),
		goldmark.WithRendererOptions(gmhtml.WithHardWraps(), gmhtml.WithXHTML()),
	)
)

// HabitService 负责 Habit 数据的增删改查
// 习惯不做物理删除，停用后仅在 includeInactive 时返回
type HabitService struct {
	db *gorm.DB
}

// HabitInput 定义创建/更新习惯时可配置字段
type HabitInput struct {
	Name           string
	Description    string
	Category       string
	RecurrenceKind string
	DaysOfWeek     []string
	TimesPerWeek   int
	ReminderTime   string
	ProofRequired  bool
	EstimatedXP    int
}

// NewHabitService 构造 HabitService
func NewHabitService(gdb *gorm.DB) *HabitService {
	return &HabitService{db: gdb}
}

// List 返回用户的习惯，默认只包含 active
func (s *HabitService) List(ownerID string, includeInactive bool) ([]db.Habit, error) {
	var habits []db.Habit

	query := s.db.Where("owner_id = ?", ownerID)
	if !includeInactive {
		query = query.Where("active = ?", true)
	}

	if err := query.Order("created_at ASC").Find(&habits).Error; err != nil {
		return nil, fmt.Errorf("list habits: %w", err)
	}
	return habits, nil
}

// Get 根据 ID 获取属于 ownerID 的习惯
func (s *HabitService) Get(ownerID, id string) (*db.Habit, error) {
	return findHabit(s.db, ownerID, id)
}

// Create 新建习惯
func (s *HabitService) Create(ownerID string, input HabitInput) (*db.Habit, error) {
	normalized, err := normalizeHabitInput(input)
	if err != nil {
		return nil, err
	}

	habit := db.Habit{OwnerID: ownerID, Active: true}
	applyHabitInput(&habit, normalized)

	if err := s.db.Create(&habit).Error; err != nil {
		return nil, fmt.Errorf("create habit: %w", err)
	}
	return &habit, nil
}

// Update 更新习惯
func (s *HabitService) Update(ownerID, id string, input HabitInput) (*db.Habit, error) {
	normalized, err := normalizeHabitInput(input)
	if err != nil {
		return nil, err
	}

	existing, err := findHabit(s.db, ownerID, id)
	if err != nil {
		return nil, err
	}

	applyHabitInput(existing, normalized)
	if err := s.db.Save(existing).Error; err != nil {
		return nil, fmt.Errorf("update habit: %w", err)
	}
	return existing, nil
}

// Deactivate 软删除习惯
func (s *HabitService) Deactivate(ownerID, id string) (*db.Habit, error) {
	existing, err := findHabit(s.db, ownerID, id)
	if err != nil {
		return nil, err
	}
	if !existing.Active {
		return existing, nil
	}

	if err := s.db.Model(existing).Update("active", false).Error; err != nil {
		return nil, fmt.Errorf("deactivate habit: %w", err)
	}
	existing.Active = false
	return existing, nil
}

// RenderDescription 将 Markdown 描述转换为安全的 HTML
func RenderDescription(markdown string) (string, error) {
	if strings.TrimSpace(markdown) == "" {
		return "", nil
	}
	var buf bytes.Buffer
	if err := markdownEngine.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("render habit description: %w", err)
	}
	return string(descriptionHTML.SanitizeBytes(buf.Bytes())), nil
}

func findHabit(gdb *gorm.DB, ownerID, id string) (*db.Habit, error) {
	var habit db.Habit
	if err := gdb.Where("id = ? AND owner_id = ?", id, ownerID).First(&habit).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrHabitNotFound
		}
		return nil, fmt.Errorf("get habit: %w", err)
	}
	return &habit, nil
}

func applyHabitInput(habit *db.Habit, input HabitInput) {
	habit.Name = input.Name
	habit.Description = input.Description
	habit.Category = input.Category
	habit.RecurrenceKind = input.RecurrenceKind
	habit.DaysOfWeek = input.DaysOfWeek
	habit.TimesPerWeek = input.TimesPerWeek
	habit.ProofRequired = input.ProofRequired
	habit.EstimatedXP = input.EstimatedXP
	habit.ReminderTime = nil
	if input.ReminderTime != "" {
		reminder := input.ReminderTime
		habit.ReminderTime = &reminder
	}
}

func normalizeHabitInput(input HabitInput) (HabitInput, error) {
	out := HabitInput{
		Name:           sanitizeText(input.Name),
		Description:    strings.TrimSpace(input.Description),
		Category:       strings.ToLower(sanitizeText(input.Category)),
		RecurrenceKind: strings.ToLower(strings.TrimSpace(input.RecurrenceKind)),
		TimesPerWeek:   input.TimesPerWeek,
		ReminderTime:   strings.TrimSpace(input.ReminderTime),
		ProofRequired:  input.ProofRequired,
		EstimatedXP:    input.EstimatedXP,
	}

	if out.Name == "" {
		return HabitInput{}, fmt.Errorf("%w: name is required", ErrHabitInvalidInput)
	}
	if out.RecurrenceKind == "" {
		out.RecurrenceKind = progress.KindDaily
	}
	if !progress.IsKnownKind(out.RecurrenceKind) {
		return HabitInput{}, fmt.Errorf("%w: unsupported recurrence %s", ErrHabitInvalidInput, input.RecurrenceKind)
	}
	if out.EstimatedXP < 0 {
		return HabitInput{}, fmt.Errorf("%w: estimated xp must not be negative", ErrHabitInvalidInput)
	}
	if out.TimesPerWeek < 0 || out.TimesPerWeek > 7 {
		return HabitInput{}, fmt.Errorf("%w: times per week must be between 0 and 7", ErrHabitInvalidInput)
	}
	if out.ReminderTime != "" && !reminderPattern.MatchString(out.ReminderTime) {
		return HabitInput{}, fmt.Errorf("%w: reminder must use HH:MM", ErrHabitInvalidInput)
	}

	seen := make(map[string]struct{}, len(input.DaysOfWeek))
	days := make([]string, 0, len(input.DaysOfWeek))
	for _, raw := range input.DaysOfWeek {
		code, ok := progress.NormalizeWeekdayCode(raw)
		if !ok {
			return HabitInput{}, fmt.Errorf("%w: unknown weekday %s", ErrHabitInvalidInput, raw)
		}
		if _, dup := seen[code]; dup {
			continue
		}
		seen[code] = struct{}{}
		days = append(days, code)
	}
	out.DaysOfWeek = days

	if (out.RecurrenceKind == progress.KindRecurring || out.RecurrenceKind == progress.KindWeekly) && len(days) == 0 {
		return HabitInput{}, fmt.Errorf("%w: %s habits need at least one weekday", ErrHabitInvalidInput, out.RecurrenceKind)
	}

	return out, nil
}

// sanitizeText 去掉所有标签，保留纯文本（包括撇号等字符）
func sanitizeText(value string) string {
	return strings.TrimSpace(html.UnescapeString(plainText.Sanitize(value)))
}

// toProgressHabit 把存储模型映射为计算引擎使用的结构
func toProgressHabit(habit db.Habit) progress.Habit {
	return progress.Habit{
		ID:             habit.ID,
		Name:           habit.Name,
		Category:       habit.Category,
		RecurrenceKind: habit.RecurrenceKind,
		DaysOfWeek:     habit.DaysOfWeek,
		TimesPerWeek:   habit.TimesPerWeek,
		ProofRequired:  habit.ProofRequired,
		EstimatedXP:    habit.EstimatedXP,
		Active:         habit.Active,
	}
}

func toProgressHabits(habits []db.Habit) []progress.Habit {
	out := make([]progress.Habit, 0, len(habits))
	for _, habit := range habits {
		out = append(out, toProgressHabit(habit))
	}
	return out
}
