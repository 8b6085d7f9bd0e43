package monitor

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/quantora/coinsentry/internal/service/flow"
)

// PriceSink 接收价格样本, 由 alert.Store 实现
type PriceSink interface {
	ProcessPriceUpdate(ctx context.Context, symbol string, price decimal.Decimal)
}

// Movement 短窗口内的显著波动事件.
// Trend 是窗口内样本的拟合斜率, 正值上行负值下行.
type Movement struct {
	Symbol        string
	ChangePercent decimal.Decimal
	Window        time.Duration
	From          decimal.Decimal
	To            decimal.Decimal
	Trend         decimal.Decimal
	Timestamp     time.Time
}

type SignalKind string

const (
	SignalRsiOversold        SignalKind = "rsi_oversold"
	SignalRsiOverbought      SignalKind = "rsi_overbought"
	SignalEmaBullishCross    SignalKind = "ema_bullish_cross"
	SignalEmaBearishCross    SignalKind = "ema_bearish_cross"
	SignalBollingerBreakout  SignalKind = "bollinger_breakout"
	SignalBollingerBreakdown SignalKind = "bollinger_breakdown"
)

// Signal 技术指标派生的信号
type Signal struct {
	Symbol     string
	Kind       SignalKind
	Value      decimal.Decimal
	Price      decimal.Decimal
	Commentary string
	Timestamp  time.Time
}

type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
)

// FlowAlert 资金流超过临界水位
type FlowAlert struct {
	Asset     string
	Direction flow.Direction
	Severity  Severity
	Total24h  decimal.Decimal
	Timestamp time.Time
}

// WhaleAlert 鲸鱼级别的大额流动
type WhaleAlert struct {
	Asset        string
	Direction    flow.Direction
	Volume       decimal.Decimal
	Transactions int64
	Timestamp    time.Time
}

const historyLimit = 100
