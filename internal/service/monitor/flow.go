package monitor

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/quantora/coinsentry/internal/schedule"
	"github.com/quantora/coinsentry/internal/service/flow"
	"github.com/quantora/coinsentry/internal/service/metrics"
)

// Thresholds 每种资产的鲸鱼/临界流量水位, 没配置的资产用默认值
type Thresholds struct {
	Whale           map[string]decimal.Decimal
	Critical        map[string]decimal.Decimal
	DefaultWhale    decimal.Decimal
	DefaultCritical decimal.Decimal
}

// DefaultThresholds BTC 与其他资产使用不同的水位
func DefaultThresholds() Thresholds {
	return Thresholds{
		Whale: map[string]decimal.Decimal{
			"BTC": decimal.NewFromInt(100),
		},
		Critical: map[string]decimal.Decimal{
			"BTC": decimal.NewFromInt(2000),
		},
		DefaultWhale:    decimal.NewFromInt(1000),
		DefaultCritical: decimal.NewFromInt(50000),
	}
}

func (t Thresholds) whaleFor(asset string) decimal.Decimal {
	if v, ok := t.Whale[asset]; ok {
		return v
	}
	return t.DefaultWhale
}

func (t Thresholds) criticalFor(asset string) decimal.Decimal {
	if v, ok := t.Critical[asset]; ok {
		return v
	}
	return t.DefaultCritical
}

// FlowMonitor 定时拉取交易所出入金统计, 检测鲸鱼流动和临界流量.
// 拉取失败时本 tick 用零值统计兜底, 轮询不中断.
type FlowMonitor struct {
	flowSvc      flow.Service
	runner       *schedule.Runner
	interval     time.Duration
	exchangeName string
	window       time.Duration
	thresholds   Thresholds

	mu      sync.Mutex
	onFlow  []func(FlowAlert)
	onWhale []func(WhaleAlert)

	now func() time.Time
}

type FlowOption func(m *FlowMonitor)

func WithFlowInterval(d time.Duration) FlowOption {
	return func(m *FlowMonitor) {
		m.interval = d
	}
}

func WithFlowExchange(name string) FlowOption {
	return func(m *FlowMonitor) {
		m.exchangeName = name
	}
}

func WithFlowWindow(d time.Duration) FlowOption {
	return func(m *FlowMonitor) {
		m.window = d
	}
}

func WithThresholds(t Thresholds) FlowOption {
	return func(m *FlowMonitor) {
		m.thresholds = t
	}
}

func WithFlowRunner(r *schedule.Runner) FlowOption {
	return func(m *FlowMonitor) {
		m.runner = r
	}
}

func WithFlowNowFunc(now func() time.Time) FlowOption {
	return func(m *FlowMonitor) {
		m.now = now
	}
}

func NewFlowMonitor(flowSvc flow.Service, opts ...FlowOption) *FlowMonitor {
	m := &FlowMonitor{
		flowSvc:    flowSvc,
		runner:     schedule.NewRunner(),
		interval:   5 * time.Minute,
		window:     24 * time.Hour,
		thresholds: DefaultThresholds(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *FlowMonitor) OnFlowAlert(h func(FlowAlert)) {
	m.onFlow = append(m.onFlow, h)
}

func (m *FlowMonitor) OnWhaleAlert(h func(WhaleAlert)) {
	m.onWhale = append(m.onWhale, h)
}

func (m *FlowMonitor) Watch(ctx context.Context, asset string) bool {
	return m.runner.Start(ctx, m.interval, &flowTask{monitor: m, asset: asset})
}

func (m *FlowMonitor) Unwatch(asset string) bool {
	return m.runner.Stop(flowTaskName(asset))
}

func (m *FlowMonitor) Stop() {
	m.runner.StopAll()
}

func (m *FlowMonitor) poll(ctx context.Context, asset string) error {
	for _, dir := range []flow.Direction{flow.Inflow, flow.Outflow} {
		stats, err := m.flowSvc.GetExchangeFlow(ctx, dir, flow.Request{
			Asset:    asset,
			Exchange: m.exchangeName,
			Window:   m.window,
		})
		if err != nil {
			metrics.FetchErrors.WithLabelValues("flow").Inc()
			slog.Error("failed to fetch exchange flow", "asset", asset, "direction", dir, "error", err)
			stats = flow.Stats{}
		}
		m.inspect(asset, dir, stats)
	}
	return nil
}

func (m *FlowMonitor) inspect(asset string, dir flow.Direction, stats flow.Stats) {
	now := m.now()

	m.mu.Lock()
	flowHandlers := m.onFlow
	whaleHandlers := m.onWhale
	m.mu.Unlock()

	if stats.WhaleVolume.GreaterThan(m.thresholds.whaleFor(asset)) {
		alert := WhaleAlert{
			Asset:        asset,
			Direction:    dir,
			Volume:       stats.WhaleVolume,
			Transactions: stats.WhaleTransactions,
			Timestamp:    now,
		}
		for _, h := range whaleHandlers {
			h(alert)
		}
	}

	if stats.Total24h.GreaterThan(m.thresholds.criticalFor(asset)) {
		severity := SeverityMedium
		if dir == flow.Inflow {
			severity = SeverityHigh
		}
		alert := FlowAlert{
			Asset:     asset,
			Direction: dir,
			Severity:  severity,
			Total24h:  stats.Total24h,
			Timestamp: now,
		}
		for _, h := range flowHandlers {
			h(alert)
		}
	}
}
