package exchange

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type Interval string

func (i Interval) ToString() string {
	return string(i)
}

const (
	Interval1m  Interval = "1m"
	Interval3m  Interval = "3m"
	Interval5m  Interval = "5m"
	Interval15m Interval = "15m"
	Interval30m Interval = "30m"
	Interval1h  Interval = "1h"
	Interval4h  Interval = "4h"
	Interval1d  Interval = "1d"
)

type Kline struct {
	OpenTime         time.Time
	CloseTime        time.Time
	Open             decimal.Decimal
	Close            decimal.Decimal
	High             decimal.Decimal
	Low              decimal.Decimal
	Volume           decimal.Decimal
	QuoteAssetVolume decimal.Decimal
	TradeNum         int64
}

// Ticker24h 24小时行情统计
type Ticker24h struct {
	Symbol             string
	LastPrice          decimal.Decimal
	PriceChangePercent decimal.Decimal
	HighPrice          decimal.Decimal
	LowPrice           decimal.Decimal
	Volume             decimal.Decimal
	QuoteVolume        decimal.Decimal
}

// MarketService 市场行情数据, symbol 使用交易所格式, 如 BTCUSDT
type MarketService interface {
	GetPrice(ctx context.Context, symbol string) (decimal.Decimal, error)
	Get24hrTicker(ctx context.Context, symbol string) (Ticker24h, error)
	GetKlines(ctx context.Context, symbol string, interval Interval, limit int) ([]Kline, error)
}
