package alert

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

type Type string

const (
	TypeAbove Type = "above"
	TypeBelow Type = "below"
	TypeCross Type = "cross"
)

type Status string

const (
	StatusActive    Status = "active"
	StatusTriggered Status = "triggered"
)

var (
	ErrStoreFull   = errors.New("alert store is full")
	ErrInvalidType = errors.New("invalid alert type")
	ErrBadTarget   = errors.New("target price must be positive")
)

// Alert 一条价格触发条件, 归 Store 独占管理
type Alert struct {
	Id     string
	Symbol string
	Price  decimal.Decimal
	Type   Type
	Status Status
	// Repeat 为 true 时触发后回到 active, 否则停留在 triggered
	Repeat bool
	// LastPrice 上一次评估时的样本价, cross 边沿检测用
	LastPrice      *decimal.Decimal
	CreatedAt      time.Time
	TriggeredAt    time.Time
	TriggeredPrice decimal.Decimal
}

// Definition 创建告警的入参
type Definition struct {
	Symbol string
	Price  decimal.Decimal
	Type   Type
	Repeat bool
}

// TriggerRecord 一次触发事件的不可变快照
type TriggerRecord struct {
	AlertId     string
	Symbol      string
	Type        Type
	TargetPrice decimal.Decimal
	Price       decimal.Decimal
	Repeat      bool
	TriggeredAt time.Time
}

// Filter 可选过滤条件, 零值字段表示不过滤
type Filter struct {
	Symbol string
	Status Status
	Type   Type
}

type Statistics struct {
	Total     int
	Active    int
	Triggered int
	BySymbol  map[string]int
	// Recent 最近 10 条触发记录, 新的在前
	Recent []TriggerRecord
}

// Dispatcher 把触发记录交给下游通知链路
type Dispatcher interface {
	Dispatch(ctx context.Context, rec TriggerRecord)
}

// TriggerLog 触发历史落盘, 失败只记日志不阻塞触发流程
type TriggerLog interface {
	Append(ctx context.Context, rec TriggerRecord) error
}
