package alert

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/quantora/coinsentry/internal/service/notification"
)

var _ Dispatcher = (*Coordinator)(nil)

// Coordinator 把一次触发扇出给所有已注册通道.
// 单个通道失败被隔离, 不影响其余通道, 也不回滚告警状态.
type Coordinator struct {
	mu        sync.Mutex
	notifiers []notification.Notifier
}

func NewCoordinator(notifiers ...notification.Notifier) *Coordinator {
	return &Coordinator{notifiers: notifiers}
}

// AddNotifier 注册一个通道, 进程生命周期内不支持移除
func (c *Coordinator) AddNotifier(n notification.Notifier) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notifiers = append(c.notifiers, n)
}

func (c *Coordinator) Dispatch(ctx context.Context, rec TriggerRecord) {
	c.Broadcast(ctx, rec.Symbol, renderTrigger(rec))
}

// Broadcast 把一条已渲染好的消息投递到所有通道
func (c *Coordinator) Broadcast(ctx context.Context, symbol, body string) {
	c.mu.Lock()
	notifiers := make([]notification.Notifier, len(c.notifiers))
	copy(notifiers, c.notifiers)
	c.mu.Unlock()

	n := notification.Notification{
		Symbol:    symbol,
		Body:      body,
		CreatedAt: time.Now(),
	}
	for _, notifier := range notifiers {
		if err := notifier.Send(ctx, n); err != nil {
			slog.Error("failed to send notification", "notifier", notifier.Name(), "symbol", symbol, "error", err)
		}
	}
}

func renderTrigger(rec TriggerRecord) string {
	return fmt.Sprintf("🚨 %s %s target %s hit at %s",
		rec.Symbol, directionGlyph(rec.Type), rec.TargetPrice.String(), rec.Price.String())
}

func directionGlyph(t Type) string {
	switch t {
	case TypeAbove:
		return "▲"
	case TypeBelow:
		return "▼"
	case TypeCross:
		return "⇅"
	default:
		return "•"
	}
}
