package telegram

import (
	"context"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/quantora/coinsentry/internal/service/notification"
)

var _ notification.Notifier = (*Notifier)(nil)

type Config struct {
	Enabled         bool          `mapstructure:"enabled"`
	Token           string        `mapstructure:"token"`
	ChatId          int64         `mapstructure:"chat_id"`
	MinSendInterval time.Duration `mapstructure:"min_send_interval"`
}

// Notifier 通过 telegram bot api 外发消息, 自带串行限速队列
type Notifier struct {
	bot     *tgbotapi.BotAPI
	chatId  int64
	queue   *notification.SendQueue
	enabled bool
}

// NewNotifier 在启用但缺少 token/chat_id 时立即报错,
// 未启用时返回一个拒绝 Send 的空 notifier.
func NewNotifier(cfg Config) (*Notifier, error) {
	if !cfg.Enabled {
		return &Notifier{}, nil
	}
	if cfg.Token == "" {
		return nil, fmt.Errorf("telegram notifier enabled but no token configured")
	}
	if cfg.ChatId == 0 {
		return nil, fmt.Errorf("telegram notifier enabled but no chat_id configured")
	}

	bot, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("init telegram bot: %w", err)
	}

	n := &Notifier{
		bot:     bot,
		chatId:  cfg.ChatId,
		enabled: true,
	}
	n.queue = notification.NewSendQueue("telegram", cfg.MinSendInterval, n.deliver)
	return n, nil
}

func (n *Notifier) Send(ctx context.Context, msg notification.Notification) error {
	if !n.Ready() {
		return notification.ErrNotifierDisabled
	}
	n.queue.Enqueue(ctx, msg)
	return nil
}

func (n *Notifier) Ready() bool {
	return n.enabled && n.bot != nil
}

func (n *Notifier) Name() string {
	return "telegram"
}

func (n *Notifier) deliver(ctx context.Context, msg notification.Notification) error {
	m := tgbotapi.NewMessage(n.chatId, tgbotapi.EscapeText(tgbotapi.ModeMarkdownV2, msg.Body))
	m.ParseMode = tgbotapi.ModeMarkdownV2
	_, err := n.bot.Send(m)
	return err
}
