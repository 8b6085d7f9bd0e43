package schedule

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// TickerFunc 提供周期信号源, 测试里可以换成手动驱动的 channel
type TickerFunc func(d time.Duration) (<-chan time.Time, func())

func defaultTicker(d time.Duration) (<-chan time.Time, func()) {
	t := time.NewTicker(d)
	return t.C, t.Stop
}

// Runner 按固定间隔执行 Task, 每个任务一个可取消的循环.
// 同名任务重复 Start 是幂等的, Stop 不存在的任务是 no-op.
type Runner struct {
	mu      sync.Mutex
	cancels map[string]context.CancelFunc
	wg      sync.WaitGroup
	ticker  TickerFunc
}

type RunnerOption func(r *Runner)

func WithTicker(t TickerFunc) RunnerOption {
	return func(r *Runner) {
		r.ticker = t
	}
}

func NewRunner(opts ...RunnerOption) *Runner {
	r := &Runner{
		cancels: make(map[string]context.CancelFunc),
		ticker:  defaultTicker,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Start 启动一个周期任务, 先立即执行一次再进入间隔循环.
// 返回 false 表示同名任务已在运行.
func (r *Runner) Start(ctx context.Context, interval time.Duration, task Task) bool {
	r.mu.Lock()
	if _, ok := r.cancels[task.Name()]; ok {
		r.mu.Unlock()
		return false
	}
	ctx, cancel := context.WithCancel(ctx)
	r.cancels[task.Name()] = cancel
	r.wg.Add(1)
	r.mu.Unlock()

	go r.loop(ctx, interval, task)
	return true
}

// Stop 取消任务循环, 已发出的 fetch 不会被打断, 其结果被丢弃
func (r *Runner) Stop(name string) bool {
	r.mu.Lock()
	cancel, ok := r.cancels[name]
	if ok {
		delete(r.cancels, name)
	}
	r.mu.Unlock()

	if !ok {
		return false
	}
	cancel()
	return true
}

// Running 任务是否在运行
func (r *Runner) Running(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.cancels[name]
	return ok
}

// StopAll 停掉所有任务并等待循环退出
func (r *Runner) StopAll() {
	r.mu.Lock()
	for name, cancel := range r.cancels {
		cancel()
		delete(r.cancels, name)
	}
	r.mu.Unlock()
	r.wg.Wait()
}

func (r *Runner) loop(ctx context.Context, interval time.Duration, task Task) {
	defer r.wg.Done()

	run := func() {
		if err := task.Run(ctx); err != nil {
			slog.Error("task run failed", "task", task.Name(), "error", err)
		}
	}
	run()

	ticks, stop := r.ticker(interval)
	defer stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticks:
			// 被 Stop 后即使还有排队 tick 也不再执行
			if ctx.Err() != nil {
				return
			}
			run()
		}
	}
}
