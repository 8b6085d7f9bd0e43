package monitor

import (
	"context"
	"fmt"

	"github.com/quantora/coinsentry/internal/schedule"
)

var (
	_ schedule.Task = (*priceTask)(nil)
	_ schedule.Task = (*technicalTask)(nil)
	_ schedule.Task = (*flowTask)(nil)
)

type priceTask struct {
	monitor *PriceMonitor
	symbol  string
}

func (t *priceTask) Run(ctx context.Context) error {
	return t.monitor.poll(ctx, t.symbol)
}

func (t *priceTask) Name() string {
	return priceTaskName(t.symbol)
}

func priceTaskName(symbol string) string {
	return fmt.Sprintf("price monitor %s", symbol)
}

type technicalTask struct {
	monitor *TechnicalMonitor
	symbol  string
}

func (t *technicalTask) Run(ctx context.Context) error {
	return t.monitor.poll(ctx, t.symbol)
}

func (t *technicalTask) Name() string {
	return technicalTaskName(t.symbol)
}

func technicalTaskName(symbol string) string {
	return fmt.Sprintf("technical monitor %s", symbol)
}

type flowTask struct {
	monitor *FlowMonitor
	asset   string
}

func (t *flowTask) Run(ctx context.Context) error {
	return t.monitor.poll(ctx, t.asset)
}

func (t *flowTask) Name() string {
	return flowTaskName(t.asset)
}

func flowTaskName(asset string) string {
	return fmt.Sprintf("flow monitor %s", asset)
}
