package alert

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantora/coinsentry/internal/service/notification"
)

type fakeNotifier struct {
	name     string
	fail     bool
	received []notification.Notification
}

func (f *fakeNotifier) Send(ctx context.Context, n notification.Notification) error {
	if f.fail {
		return errors.New("channel down")
	}
	f.received = append(f.received, n)
	return nil
}

func (f *fakeNotifier) Ready() bool {
	return true
}

func (f *fakeNotifier) Name() string {
	return f.name
}

func TestCoordinator_FailureIsolation(t *testing.T) {
	first := &fakeNotifier{name: "first", fail: true}
	second := &fakeNotifier{name: "second"}
	third := &fakeNotifier{name: "third"}

	c := NewCoordinator(first, second)
	c.AddNotifier(third)

	c.Dispatch(context.Background(), TriggerRecord{
		AlertId:     "a1",
		Symbol:      "BTCUSDT",
		Type:        TypeAbove,
		TargetPrice: price("50000"),
		Price:       price("50500"),
		TriggeredAt: time.Now(),
	})

	// 第一个通道失败不影响其余通道
	require.Len(t, second.received, 1)
	require.Len(t, third.received, 1)
	assert.Equal(t, second.received[0].Body, third.received[0].Body)
}

func TestCoordinator_MessageContent(t *testing.T) {
	n := &fakeNotifier{name: "console"}
	c := NewCoordinator(n)

	c.Dispatch(context.Background(), TriggerRecord{
		Symbol:      "BTCUSDT",
		Type:        TypeAbove,
		TargetPrice: price("50000"),
		Price:       price("50500"),
	})

	require.Len(t, n.received, 1)
	body := n.received[0].Body
	assert.Contains(t, body, "BTCUSDT")
	assert.Contains(t, body, "▲")
	assert.Contains(t, body, "50000")
	assert.Contains(t, body, "50500")
	assert.Equal(t, "BTCUSDT", n.received[0].Symbol)
}

func TestDirectionGlyph(t *testing.T) {
	assert.Equal(t, "▲", directionGlyph(TypeAbove))
	assert.Equal(t, "▼", directionGlyph(TypeBelow))
	assert.Equal(t, "⇅", directionGlyph(TypeCross))
}
