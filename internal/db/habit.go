package db

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Habit 定义了习惯模型
// RecurrenceKind 取值 once/daily/recurring/weekly，DaysOfWeek 保存 mon/tue… 代码
// TimesPerWeek 仅做存储，当前的到期判断不会读取
// Active=false 即软删除，任何日视图都不会展示
type Habit struct {
	ID             string `gorm:"primaryKey;size:36"`
	OwnerID        string `gorm:"size:64;index:idx_habit_owner_active"`
	Name           string `gorm:"size:120;not null"`
	Description    string
	Category       string   `gorm:"size:40"`
	RecurrenceKind string   `gorm:"size:20;not null"`
	DaysOfWeek     []string `gorm:"serializer:json"`
	TimesPerWeek   int
	ReminderTime   *string `gorm:"size:5"`
	ProofRequired  bool
	EstimatedXP    int
	Active         bool `gorm:"index:idx_habit_owner_active"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// BeforeCreate 在未指定主键时生成 UUID
func (h *Habit) BeforeCreate(tx *gorm.DB) error {
	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	return nil
}
