package notification

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/quantora/coinsentry/internal/service/metrics"
)

// DeliverFunc 执行一次真正的投递
type DeliverFunc func(ctx context.Context, n Notification) error

// SendQueue 串行外发队列: 逐条出队, 等满最小间隔后投递.
// 单条投递失败只记日志, 队列继续, 不重发.
type SendQueue struct {
	mu       sync.Mutex
	queue    []Notification
	draining bool
	lastSend time.Time

	channel     string
	minInterval time.Duration
	deliver     DeliverFunc

	now   func() time.Time
	sleep func(d time.Duration)
}

type QueueOption func(q *SendQueue)

func WithClock(now func() time.Time, sleep func(d time.Duration)) QueueOption {
	return func(q *SendQueue) {
		q.now = now
		q.sleep = sleep
	}
}

func NewSendQueue(channel string, minInterval time.Duration, deliver DeliverFunc, opts ...QueueOption) *SendQueue {
	if minInterval <= 0 {
		minInterval = DefaultMinSendInterval
	}
	q := &SendQueue{
		channel:     channel,
		minInterval: minInterval,
		deliver:     deliver,
		now:         time.Now,
		sleep:       time.Sleep,
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Enqueue 入队并在没有 drain 协程时启动一个
func (q *SendQueue) Enqueue(ctx context.Context, n Notification) {
	q.mu.Lock()
	q.queue = append(q.queue, n)
	start := !q.draining
	if start {
		q.draining = true
	}
	q.mu.Unlock()

	if start {
		go q.drain(ctx)
	}
}

func (q *SendQueue) drain(ctx context.Context) {
	for {
		q.mu.Lock()
		if len(q.queue) == 0 {
			q.draining = false
			q.mu.Unlock()
			return
		}
		n := q.queue[0]
		q.queue = q.queue[1:]
		wait := q.minInterval - q.now().Sub(q.lastSend)
		q.mu.Unlock()

		if wait > 0 {
			q.sleep(wait)
		}

		err := q.deliver(ctx, n)

		q.mu.Lock()
		q.lastSend = q.now()
		q.mu.Unlock()

		if err != nil {
			metrics.NotificationsFailed.WithLabelValues(q.channel).Inc()
			slog.Error("failed to deliver notification", "channel", q.channel, "symbol", n.Symbol, "error", err)
			continue
		}
		metrics.NotificationsSent.WithLabelValues(q.channel).Inc()
	}
}

// Pending 当前队列长度
func (q *SendQueue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.queue)
}
