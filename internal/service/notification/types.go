package notification

import (
	"context"
	"errors"
	"time"
)

var ErrNotifierDisabled = errors.New("notifier is disabled")

// DefaultMinSendInterval 同一通道两条消息间的最小间隔
const DefaultMinSendInterval = time.Second

// Notification 一条待投递的消息, 投递尝试后即丢弃
type Notification struct {
	Symbol    string
	Body      string
	CreatedAt time.Time
}

// Notifier 单个外发通道. 未配置的通道拒绝 Send 而不入队,
// 调用方无需关心配置状态.
type Notifier interface {
	Send(ctx context.Context, n Notification) error
	Ready() bool
	Name() string
}
