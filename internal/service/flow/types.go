package flow

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type Direction string

const (
	Inflow  Direction = "inflow"
	Outflow Direction = "outflow"
)

// Stats 某个方向上的链上资金流统计
type Stats struct {
	Total24h          decimal.Decimal
	WhaleVolume       decimal.Decimal
	WhaleTransactions int64
	NetBalance        decimal.Decimal
}

type Request struct {
	Asset    string
	Exchange string
	Window   time.Duration
}

// Service 链上资金流数据源
type Service interface {
	GetExchangeFlow(ctx context.Context, direction Direction, req Request) (Stats, error)
}
