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
)

const (
	rsiPeriod     = 14
	emaFastPeriod = 9
	emaSlowPeriod = 21
	minKlines     = 50

	rsiOversold   = 30
	rsiOverbought = 70
)

// Annotator 给信号补充一句可读的市场点评, 可选
type Annotator interface {
	Annotate(ctx context.Context, sig Signal) (string, error)
}

// TechnicalMonitor 定时拉取K线, 计算 RSI/EMA/布林带并派生信号.
// 同种信号连续出现时只在首次出现的 tick 发出.
type TechnicalMonitor struct {
	marketSvc     exchange.MarketService
	runner        *schedule.Runner
	interval      time.Duration
	klineInterval exchange.Interval
	klineLimit    int
	annotator     Annotator

	mu        sync.Mutex
	lastKinds map[string]map[SignalKind]struct{}
	onSignal  []func(Signal)

	now func() time.Time
}

type TechnicalOption func(m *TechnicalMonitor)

func WithTechnicalInterval(d time.Duration) TechnicalOption {
	return func(m *TechnicalMonitor) {
		m.interval = d
	}
}

func WithKlineSource(interval exchange.Interval, limit int) TechnicalOption {
	return func(m *TechnicalMonitor) {
		m.klineInterval = interval
		m.klineLimit = limit
	}
}

func WithAnnotator(a Annotator) TechnicalOption {
	return func(m *TechnicalMonitor) {
		m.annotator = a
	}
}

func WithTechnicalRunner(r *schedule.Runner) TechnicalOption {
	return func(m *TechnicalMonitor) {
		m.runner = r
	}
}

func WithTechnicalNowFunc(now func() time.Time) TechnicalOption {
	return func(m *TechnicalMonitor) {
		m.now = now
	}
}

func NewTechnicalMonitor(marketSvc exchange.MarketService, opts ...TechnicalOption) *TechnicalMonitor {
	m := &TechnicalMonitor{
		marketSvc:     marketSvc,
		runner:        schedule.NewRunner(),
		interval:      time.Minute,
		klineInterval: exchange.Interval5m,
		klineLimit:    historyLimit,
		lastKinds:     make(map[string]map[SignalKind]struct{}),
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *TechnicalMonitor) OnSignal(h func(Signal)) {
	m.onSignal = append(m.onSignal, h)
}

func (m *TechnicalMonitor) Watch(ctx context.Context, symbol string) bool {
	return m.runner.Start(ctx, m.interval, &technicalTask{monitor: m, symbol: symbol})
}

func (m *TechnicalMonitor) Unwatch(symbol string) bool {
	return m.runner.Stop(technicalTaskName(symbol))
}

func (m *TechnicalMonitor) Stop() {
	m.runner.StopAll()
}

func (m *TechnicalMonitor) poll(ctx context.Context, symbol string) error {
	klines, err := m.marketSvc.GetKlines(ctx, symbol, m.klineInterval, m.klineLimit)
	if err != nil {
		metrics.FetchErrors.WithLabelValues("klines").Inc()
		slog.Error("failed to get k lines", "symbol", symbol, "error", err)
		return nil
	}
	if len(klines) < minKlines {
		slog.Warn("skip technical analysis", "symbol", symbol, "reason", "too little k lines")
		return nil
	}

	closes := lo.Map(klines, func(k exchange.Kline, index int) float64 {
		f, _ := k.Close.Float64()
		return f
	})
	price := klines[len(klines)-1].Close
	signals := m.derive(symbol, closes, price)

	m.mu.Lock()
	prev := m.lastKinds[symbol]
	cur := make(map[SignalKind]struct{}, len(signals))
	fresh := signals[:0]
	for _, sig := range signals {
		cur[sig.Kind] = struct{}{}
		if _, seen := prev[sig.Kind]; !seen {
			fresh = append(fresh, sig)
		}
	}
	m.lastKinds[symbol] = cur
	handlers := m.onSignal
	m.mu.Unlock()

	for _, sig := range fresh {
		if m.annotator != nil {
			commentary, err := m.annotator.Annotate(ctx, sig)
			if err != nil {
				slog.Error("failed to annotate signal", "symbol", symbol, "kind", sig.Kind, "error", err)
			} else {
				sig.Commentary = commentary
			}
		}
		for _, h := range handlers {
			h(sig)
		}
	}
	return nil
}

func (m *TechnicalMonitor) derive(symbol string, closes []float64, price decimal.Decimal) []Signal {
	now := m.now()
	var signals []Signal
	emit := func(kind SignalKind, value float64) {
		signals = append(signals, Signal{
			Symbol:    symbol,
			Kind:      kind,
			Value:     decimal.NewFromFloat(value),
			Price:     price,
			Timestamp: now,
		})
	}

	if rsi := computeRsi(closes, rsiPeriod); len(rsi) > 0 {
		last := rsi[len(rsi)-1]
		switch {
		case last <= rsiOversold:
			emit(SignalRsiOversold, last)
		case last >= rsiOverbought:
			emit(SignalRsiOverbought, last)
		}
	}

	fast := computeEma(closes, emaFastPeriod)
	slow := computeEma(closes, emaSlowPeriod)
	if len(fast) >= 2 && len(slow) >= 2 {
		// EMA序列长度不同, 对齐到末尾比较
		prevFast, curFast := fast[len(fast)-2], fast[len(fast)-1]
		prevSlow, curSlow := slow[len(slow)-2], slow[len(slow)-1]
		if prevFast <= prevSlow && curFast > curSlow {
			emit(SignalEmaBullishCross, curFast)
		} else if prevFast >= prevSlow && curFast < curSlow {
			emit(SignalEmaBearishCross, curFast)
		}
	}

	upper, _, lower := computeBollinger(closes)
	if len(upper) > 0 && len(lower) > 0 {
		last := closes[len(closes)-1]
		if last > upper[len(upper)-1] {
			emit(SignalBollingerBreakout, upper[len(upper)-1])
		} else if last < lower[len(lower)-1] {
			emit(SignalBollingerBreakdown, lower[len(lower)-1])
		}
	}
	return signals
}
