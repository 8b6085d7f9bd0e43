package monitor

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/quantora/coinsentry/internal/service/exchange"
)

type MockMarketService struct {
	mock.Mock
}

func (m *MockMarketService) GetPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	args := m.Called(ctx, symbol)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockMarketService) Get24hrTicker(ctx context.Context, symbol string) (exchange.Ticker24h, error) {
	args := m.Called(ctx, symbol)
	return args.Get(0).(exchange.Ticker24h), args.Error(1)
}

func (m *MockMarketService) GetKlines(ctx context.Context, symbol string, interval exchange.Interval, limit int) ([]exchange.Kline, error) {
	args := m.Called(ctx, symbol, interval, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]exchange.Kline), args.Error(1)
}

type recordingSink struct {
	mu      sync.Mutex
	samples []decimal.Decimal
}

func (s *recordingSink) ProcessPriceUpdate(ctx context.Context, symbol string, price decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.samples = append(s.samples, price)
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.samples)
}

type manualClock struct {
	mu  sync.Mutex
	cur time.Time
}

func newManualClock() *manualClock {
	return &manualClock{cur: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *manualClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cur
}

func (c *manualClock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cur = c.cur.Add(d)
}

func d(s string) decimal.Decimal {
	res, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return res
}

func TestPriceMonitor_FeedsSink(t *testing.T) {
	marketSvc := new(MockMarketService)
	marketSvc.On("GetPrice", mock.Anything, "BTCUSDT").Return(d("50000"), nil).Once()

	sink := &recordingSink{}
	m := NewPriceMonitor(marketSvc, sink, WithPriceNowFunc(newManualClock().now))

	require.NoError(t, m.poll(context.Background(), "BTCUSDT"))
	require.Equal(t, 1, sink.count())
	assert.Equal(t, d("50000"), sink.samples[0])
	marketSvc.AssertExpectations(t)
}

func TestPriceMonitor_SignificantMovement(t *testing.T) {
	tests := []struct {
		name       string
		prices     []string
		step       time.Duration
		wantWindow []time.Duration
	}{
		{
			name:       "1分钟内超过2%",
			prices:     []string{"100", "103"},
			step:       30 * time.Second,
			wantWindow: []time.Duration{time.Minute},
		},
		{
			name:       "1分钟内2%以内不算显著",
			prices:     []string{"100", "101.5"},
			step:       30 * time.Second,
			wantWindow: nil,
		},
		{
			name:   "5分钟内超过5%",
			prices: []string{"100", "101.5", "101.8", "102.5", "103.0", "106"},
			step:   time.Minute,
			// 最后一个样本相对1分钟前 +2.9%, 相对5分钟窗口最老样本 +6%
			wantWindow: []time.Duration{time.Minute, 5 * time.Minute},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			marketSvc := new(MockMarketService)
			clock := newManualClock()
			sink := &recordingSink{}
			m := NewPriceMonitor(marketSvc, sink, WithPriceNowFunc(clock.now))

			var movements []Movement
			m.OnMovement(func(mv Movement) {
				movements = append(movements, mv)
			})

			ctx := context.Background()
			for i, p := range tt.prices {
				marketSvc.On("GetPrice", mock.Anything, "BTCUSDT").Return(d(p), nil).Once()
				if i == len(tt.prices)-1 {
					movements = movements[:0]
				}
				require.NoError(t, m.poll(ctx, "BTCUSDT"))
				clock.advance(tt.step)
			}

			var gotWindows []time.Duration
			for _, mv := range movements {
				gotWindows = append(gotWindows, mv.Window)
				// 趋势方向跟涨跌幅方向一致
				assert.Equal(t, mv.ChangePercent.Sign(), mv.Trend.Sign())
			}
			assert.Equal(t, tt.wantWindow, gotWindows)
		})
	}
}

func TestPriceMonitor_FallbackOnFetchError(t *testing.T) {
	marketSvc := new(MockMarketService)
	marketSvc.On("GetPrice", mock.Anything, "BTCUSDT").Return(d("50000"), nil).Once()
	marketSvc.On("GetPrice", mock.Anything, "BTCUSDT").Return(decimal.Zero, errors.New("network down")).Once()

	sink := &recordingSink{}
	m := NewPriceMonitor(marketSvc, sink, WithPriceNowFunc(newManualClock().now))

	ctx := context.Background()
	require.NoError(t, m.poll(ctx, "BTCUSDT"))
	require.NoError(t, m.poll(ctx, "BTCUSDT"))

	// 第二次拉取失败, 退回上一次已知价格
	require.Equal(t, 2, sink.count())
	assert.Equal(t, d("50000"), sink.samples[1])
}

func TestPriceMonitor_NoFallbackBeforeFirstSample(t *testing.T) {
	marketSvc := new(MockMarketService)
	marketSvc.On("GetPrice", mock.Anything, "BTCUSDT").Return(decimal.Zero, errors.New("network down")).Once()

	sink := &recordingSink{}
	m := NewPriceMonitor(marketSvc, sink)

	require.NoError(t, m.poll(context.Background(), "BTCUSDT"))
	assert.Equal(t, 0, sink.count())
}

func TestPriceMonitor_WatchIdempotent(t *testing.T) {
	marketSvc := new(MockMarketService)
	marketSvc.On("GetPrice", mock.Anything, "BTCUSDT").Return(d("50000"), nil)

	sink := &recordingSink{}
	m := NewPriceMonitor(marketSvc, sink, WithPriceInterval(time.Hour))

	ctx := context.Background()
	assert.True(t, m.Watch(ctx, "BTCUSDT"))
	assert.False(t, m.Watch(ctx, "BTCUSDT"), "重复 Watch 是 no-op")

	assert.True(t, m.Unwatch("BTCUSDT"))
	assert.False(t, m.Unwatch("BTCUSDT"), "重复 Unwatch 是 no-op")
	m.Stop()
}

func TestPriceMonitor_HistoryBounded(t *testing.T) {
	marketSvc := new(MockMarketService)
	marketSvc.On("GetPrice", mock.Anything, "BTCUSDT").Return(d("50000"), nil)

	sink := &recordingSink{}
	clock := newManualClock()
	m := NewPriceMonitor(marketSvc, sink, WithPriceNowFunc(clock.now))

	ctx := context.Background()
	for i := 0; i < historyLimit+10; i++ {
		require.NoError(t, m.poll(ctx, "BTCUSDT"))
		clock.advance(time.Second)
	}
	assert.Len(t, m.History("BTCUSDT"), historyLimit)
}
