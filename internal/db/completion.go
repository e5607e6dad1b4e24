package db

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Completion 记录某个习惯在某一天的完成情况
// HabitID + Date 采用唯一索引，保证同一天只会记一次；Date 为 YYYY-MM-DD
type Completion struct {
	ID          string `gorm:"primaryKey;size:36"`
	HabitID     string `gorm:"size:36;not null;index;index:idx_completion_unique,unique"`
	Habit       Habit  `gorm:"constraint:OnDelete:CASCADE"`
	Date        string `gorm:"size:10;not null;index;index:idx_completion_unique,unique"`
	ProofURL    *string
	ValidatedAt *time.Time
	CreatedAt   time.Time
}

// TableName 重写确保唯一索引作用到 habit_id + date
func (Completion) TableName() string {
	return "completions"
}

// BeforeCreate 在未指定主键时生成 UUID
func (c *Completion) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}
