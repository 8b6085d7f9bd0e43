package entity

import (
	"time"
)

// TriggerLog 告警触发历史, 只追加
type TriggerLog struct {
	Id          int64  `gorm:"primaryKey;autoIncrement"`
	AlertId     string `gorm:"index"`
	Symbol      string `gorm:"index"`
	AlertType   string `gorm:"index"`
	TargetPrice string
	Price       string
	Repeat      bool
	TriggeredAt time.Time `gorm:"index"`
	CreatedAt   time.Time
}
