package alert

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/quantora/coinsentry/internal/service/metrics"
)

const (
	DefaultMaxAlerts  = 100
	DefaultCooldown   = time.Hour
	historyBufferSize = 100
)

// Store 持有全部告警并对每个价格样本做触发评估.
// 冷却窗口按 (symbol, type, target) 共享, 不按告警 id 区分.
type Store struct {
	mu sync.Mutex

	maxAlerts int
	cooldown  time.Duration

	alerts    map[string]*Alert
	cooldowns map[string]time.Time
	history   []TriggerRecord

	dispatcher Dispatcher
	log        TriggerLog

	now func() time.Time
}

type StoreOption func(s *Store)

func WithMaxAlerts(n int) StoreOption {
	return func(s *Store) {
		s.maxAlerts = n
	}
}

func WithCooldown(d time.Duration) StoreOption {
	return func(s *Store) {
		s.cooldown = d
	}
}

func WithDispatcher(d Dispatcher) StoreOption {
	return func(s *Store) {
		s.dispatcher = d
	}
}

func WithTriggerLog(l TriggerLog) StoreOption {
	return func(s *Store) {
		s.log = l
	}
}

func WithNowFunc(now func() time.Time) StoreOption {
	return func(s *Store) {
		s.now = now
	}
}

func NewStore(opts ...StoreOption) *Store {
	s := &Store{
		maxAlerts: DefaultMaxAlerts,
		cooldown:  DefaultCooldown,
		alerts:    make(map[string]*Alert),
		cooldowns: make(map[string]time.Time),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddAlert 创建一条 active 告警. 容量已满时返回 ErrStoreFull, 不做淘汰.
func (s *Store) AddAlert(def Definition) (Alert, error) {
	if def.Symbol == "" {
		return Alert{}, fmt.Errorf("empty symbol")
	}
	if !def.Price.IsPositive() {
		return Alert{}, ErrBadTarget
	}
	switch def.Type {
	case TypeAbove, TypeBelow, TypeCross:
	default:
		return Alert{}, fmt.Errorf("%w: %q", ErrInvalidType, def.Type)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.alerts) >= s.maxAlerts {
		return Alert{}, fmt.Errorf("%w: max %d alerts", ErrStoreFull, s.maxAlerts)
	}

	a := &Alert{
		Id:        uuid.NewString(),
		Symbol:    def.Symbol,
		Price:     def.Price,
		Type:      def.Type,
		Status:    StatusActive,
		Repeat:    def.Repeat,
		CreatedAt: s.now(),
	}
	s.alerts[a.Id] = a
	return *a, nil
}

// RemoveAlert 删除告警, 返回是否找到. 重复删除不是错误.
func (s *Store) RemoveAlert(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.alerts[id]; !ok {
		return false
	}
	delete(s.alerts, id)
	return true
}

// ProcessPriceUpdate 用一个一致的价格样本评估该 symbol 的全部 active 告警.
// 同一个更新内共享冷却 key 的告警一起转为 triggered, 但只发起一轮通知.
func (s *Store) ProcessPriceUpdate(ctx context.Context, symbol string, price decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	firedKeys := make(map[string]struct{})

	for _, a := range s.alerts {
		if a.Symbol != symbol || a.Status != StatusActive {
			continue
		}

		fired := s.evaluate(a, price)
		p := price
		a.LastPrice = &p
		if !fired {
			continue
		}

		key := cooldownKey(a.Symbol, a.Type, a.Price)
		if last, ok := s.cooldowns[key]; ok && now.Sub(last) < s.cooldown {
			// 冷却中, 无状态变化, 无记录, 无通知
			continue
		}

		a.Status = StatusTriggered
		a.TriggeredAt = now
		a.TriggeredPrice = price

		if _, dup := firedKeys[key]; !dup {
			firedKeys[key] = struct{}{}
			s.commit(ctx, TriggerRecord{
				AlertId:     a.Id,
				Symbol:      a.Symbol,
				Type:        a.Type,
				TargetPrice: a.Price,
				Price:       price,
				Repeat:      a.Repeat,
				TriggeredAt: now,
			})
		}

		if a.Repeat {
			a.Status = StatusActive
		}
	}

	for key := range firedKeys {
		s.cooldowns[key] = now
	}
}

// commit 追加历史, 落盘, 分发. 调用方持有锁.
func (s *Store) commit(ctx context.Context, rec TriggerRecord) {
	s.history = append(s.history, rec)
	if len(s.history) > historyBufferSize {
		s.history = s.history[len(s.history)-historyBufferSize:]
	}
	metrics.AlertsTriggered.Inc()

	if s.log != nil {
		if err := s.log.Append(ctx, rec); err != nil {
			slog.Error("failed to persist trigger record", "alertId", rec.AlertId, "symbol", rec.Symbol, "error", err)
		}
	}
	if s.dispatcher != nil {
		s.dispatcher.Dispatch(ctx, rec)
	}
}

func (s *Store) evaluate(a *Alert, price decimal.Decimal) bool {
	switch a.Type {
	case TypeAbove:
		return price.GreaterThanOrEqual(a.Price)
	case TypeBelow:
		return price.LessThanOrEqual(a.Price)
	case TypeCross:
		if a.LastPrice == nil {
			return false
		}
		last := *a.LastPrice
		up := last.LessThan(a.Price) && price.GreaterThanOrEqual(a.Price)
		down := last.GreaterThan(a.Price) && price.LessThanOrEqual(a.Price)
		return up || down
	default:
		return false
	}
}

// Alerts 按可选条件过滤, 返回拷贝
func (s *Store) Alerts(f Filter) []Alert {
	s.mu.Lock()
	defer s.mu.Unlock()

	res := make([]Alert, 0, len(s.alerts))
	for _, a := range s.alerts {
		if f.Symbol != "" && a.Symbol != f.Symbol {
			continue
		}
		if f.Status != "" && a.Status != f.Status {
			continue
		}
		if f.Type != "" && a.Type != f.Type {
			continue
		}
		res = append(res, *a)
	}
	return res
}

func (s *Store) Statistics() Statistics {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := lo.Values(s.alerts)
	stats := Statistics{
		Total: len(all),
		Active: lo.CountBy(all, func(a *Alert) bool {
			return a.Status == StatusActive
		}),
		Triggered: lo.CountBy(all, func(a *Alert) bool {
			return a.Status == StatusTriggered
		}),
		BySymbol: lo.CountValuesBy(all, func(a *Alert) string {
			return a.Symbol
		}),
	}

	n := len(s.history)
	limit := 10
	if n < limit {
		limit = n
	}
	stats.Recent = make([]TriggerRecord, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		stats.Recent = append(stats.Recent, s.history[i])
	}
	return stats
}

func cooldownKey(symbol string, typ Type, target decimal.Decimal) string {
	return fmt.Sprintf("%s|%s|%s", symbol, typ, target.String())
}
