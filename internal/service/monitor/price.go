package monitor

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/quantora/coinsentry/internal/schedule"
	"github.com/quantora/coinsentry/internal/service/exchange"
	"github.com/quantora/coinsentry/internal/service/metrics"
	"github.com/quantora/coinsentry/pkg/decimalx"
)

type PricePoint struct {
	Time  time.Time
	Price decimal.Decimal
}

type movementRule struct {
	window    time.Duration
	threshold decimal.Decimal // percent, strict
}

var defaultMovementRules = []movementRule{
	{window: time.Minute, threshold: decimal.NewFromInt(2)},
	{window: 5 * time.Minute, threshold: decimal.NewFromInt(5)},
}

// PriceMonitor 定时拉取现价, 喂给 alert.Store, 并在短窗口内
// 检测显著波动. 拉取失败时退回上一次已知价格, 轮询不中断.
type PriceMonitor struct {
	marketSvc exchange.MarketService
	sink      PriceSink
	runner    *schedule.Runner
	interval  time.Duration

	mu         sync.Mutex
	history    map[string][]PricePoint
	lastKnown  map[string]decimal.Decimal
	onMovement []func(Movement)

	rules []movementRule
	now   func() time.Time
}

type PriceOption func(m *PriceMonitor)

func WithPriceInterval(d time.Duration) PriceOption {
	return func(m *PriceMonitor) {
		m.interval = d
	}
}

func WithPriceRunner(r *schedule.Runner) PriceOption {
	return func(m *PriceMonitor) {
		m.runner = r
	}
}

func WithPriceNowFunc(now func() time.Time) PriceOption {
	return func(m *PriceMonitor) {
		m.now = now
	}
}

func NewPriceMonitor(marketSvc exchange.MarketService, sink PriceSink, opts ...PriceOption) *PriceMonitor {
	m := &PriceMonitor{
		marketSvc: marketSvc,
		sink:      sink,
		runner:    schedule.NewRunner(),
		interval:  30 * time.Second,
		history:   make(map[string][]PricePoint),
		lastKnown: make(map[string]decimal.Decimal),
		rules:     defaultMovementRules,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// OnMovement 注册波动事件回调, 需在 Watch 之前调用
func (m *PriceMonitor) OnMovement(h func(Movement)) {
	m.onMovement = append(m.onMovement, h)
}

// Watch 启动某个 symbol 的轮询, 已在运行时为 no-op
func (m *PriceMonitor) Watch(ctx context.Context, symbol string) bool {
	return m.runner.Start(ctx, m.interval, &priceTask{monitor: m, symbol: symbol})
}

// Unwatch 停止轮询, 未运行时为 no-op
func (m *PriceMonitor) Unwatch(symbol string) bool {
	return m.runner.Stop(priceTaskName(symbol))
}

func (m *PriceMonitor) Stop() {
	m.runner.StopAll()
}

func (m *PriceMonitor) poll(ctx context.Context, symbol string) error {
	price, err := m.marketSvc.GetPrice(ctx, symbol)
	if err != nil {
		metrics.FetchErrors.WithLabelValues("price").Inc()
		m.mu.Lock()
		last, ok := m.lastKnown[symbol]
		m.mu.Unlock()
		if !ok {
			slog.Error("failed to fetch price, no fallback yet", "symbol", symbol, "error", err)
			return nil
		}
		slog.Warn("failed to fetch price, falling back to last known", "symbol", symbol, "error", err)
		price = last
	}

	now := m.now()
	m.sink.ProcessPriceUpdate(ctx, symbol, price)

	m.mu.Lock()
	m.lastKnown[symbol] = price
	points := append(m.history[symbol], PricePoint{Time: now, Price: price})
	if len(points) > historyLimit {
		points = points[len(points)-historyLimit:]
	}
	m.history[symbol] = points
	movements := m.detect(symbol, points, price, now)
	handlers := m.onMovement
	m.mu.Unlock()

	for _, mv := range movements {
		for _, h := range handlers {
			h(mv)
		}
	}
	return nil
}

// detect 对每条窗口规则取窗口内最老样本和当前价比较. 调用方持有锁.
func (m *PriceMonitor) detect(symbol string, points []PricePoint, price decimal.Decimal, now time.Time) []Movement {
	var res []Movement
	for _, rule := range m.rules {
		cutoff := now.Add(-rule.window)
		fromIdx := -1
		for i := range points[:len(points)-1] {
			if !points[i].Time.Before(cutoff) {
				fromIdx = i
				break
			}
		}
		if fromIdx < 0 || points[fromIdx].Price.IsZero() {
			continue
		}
		from := points[fromIdx].Price
		change := price.Sub(from).Div(from).Mul(decimal.NewFromInt(100))
		if change.Abs().GreaterThan(rule.threshold) {
			window := lo.Map(points[fromIdx:], func(p PricePoint, index int) decimal.Decimal {
				return p.Price
			})
			res = append(res, Movement{
				Symbol:        symbol,
				ChangePercent: change,
				Window:        rule.window,
				From:          from,
				To:            price,
				Trend:         decimalx.Slope(window),
				Timestamp:     now,
			})
		}
	}
	return res
}

// History 返回某 symbol 的样本拷贝, 观测用
func (m *PriceMonitor) History(symbol string) []PricePoint {
	m.mu.Lock()
	defer m.mu.Unlock()
	points := make([]PricePoint, len(m.history[symbol]))
	copy(points, m.history[symbol])
	return points
}
