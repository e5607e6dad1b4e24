package db

import "time"

// UserProfile 每个用户一行，保存连胜、等级与经验值
// RecordStreak 不会小于 CurrentStreak；LastDecayDate 仅在真正扣减经验时写入
type UserProfile struct {
	UserID        string   `gorm:"primaryKey;size:64"`
	FirstName     string   `gorm:"size:80"`
	CurrentStreak int      `gorm:"not null;default:0"`
	RecordStreak  int      `gorm:"not null;default:0"`
	Level         int      `gorm:"not null;default:1"`
	TotalXP       int      `gorm:"not null;default:0"`
	Goals         []string `gorm:"serializer:json"`
	LastDecayDate *string  `gorm:"size:10"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TableName 固定表名为 user_profile
func (UserProfile) TableName() string {
	return "user_profile"
}

// DefaultProfile 返回尚未落库时使用的默认档案
func DefaultProfile(userID string) UserProfile {
	return UserProfile{UserID: userID, Level: 1}
}
