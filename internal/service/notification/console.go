package notification

import (
	"context"
	"fmt"
)

// ConsoleNotifier 本地调试用, 始终就绪
type ConsoleNotifier struct{}

func NewConsoleNotifier() ConsoleNotifier {
	return ConsoleNotifier{}
}

func (c ConsoleNotifier) Send(ctx context.Context, n Notification) error {
	fmt.Println("notification:", n.Body)
	return nil
}

func (c ConsoleNotifier) Ready() bool {
	return true
}

func (c ConsoleNotifier) Name() string {
	return "console"
}
