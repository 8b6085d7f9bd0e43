package binance

import (
	"context"
	"fmt"
	"time"

	"github.com/adshao/go-binance/v2"
	"github.com/shopspring/decimal"

	"github.com/quantora/coinsentry/internal/service/exchange"
)

var _ exchange.MarketService = (*MarketService)(nil)

type MarketService struct {
	cli *binance.Client
}

func NewMarketService(cli *binance.Client) *MarketService {
	return &MarketService{cli: cli}
}

func (m *MarketService) GetPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	prices, err := m.cli.NewListPricesService().Symbol(symbol).Do(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	if len(prices) == 0 {
		return decimal.Zero, fmt.Errorf("no price returned for symbol %s", symbol)
	}
	return decimal.NewFromString(prices[0].Price)
}

func (m *MarketService) Get24hrTicker(ctx context.Context, symbol string) (exchange.Ticker24h, error) {
	stats, err := m.cli.NewListPriceChangeStatsService().Symbol(symbol).Do(ctx)
	if err != nil {
		return exchange.Ticker24h{}, err
	}
	if len(stats) == 0 {
		return exchange.Ticker24h{}, fmt.Errorf("no ticker returned for symbol %s", symbol)
	}
	return convertTicker(stats[0])
}

func (m *MarketService) GetKlines(ctx context.Context, symbol string, interval exchange.Interval, limit int) ([]exchange.Kline, error) {
	svc := m.cli.NewKlinesService().Symbol(symbol)
	if interval.ToString() != "" {
		svc.Interval(interval.ToString())
	}
	if limit > 0 {
		svc.Limit(limit)
	}
	res, err := svc.Do(ctx)
	if err != nil {
		return nil, err
	}
	return m.convertKlines(res)
}

func convertTicker(s *binance.PriceChangeStats) (exchange.Ticker24h, error) {
	ticker := exchange.Ticker24h{Symbol: s.Symbol}
	for _, f := range []struct {
		raw string
		dst *decimal.Decimal
	}{
		{s.LastPrice, &ticker.LastPrice},
		{s.PriceChangePercent, &ticker.PriceChangePercent},
		{s.HighPrice, &ticker.HighPrice},
		{s.LowPrice, &ticker.LowPrice},
		{s.Volume, &ticker.Volume},
		{s.QuoteVolume, &ticker.QuoteVolume},
	} {
		v, err := decimal.NewFromString(f.raw)
		if err != nil {
			return exchange.Ticker24h{}, fmt.Errorf("parse ticker field %q: %w", f.raw, err)
		}
		*f.dst = v
	}
	return ticker, nil
}

func (m *MarketService) convertKlines(klines []*binance.Kline) ([]exchange.Kline, error) {
	kls := make([]exchange.Kline, len(klines))
	for i, k := range klines {
		klineOpen, err := decimal.NewFromString(k.Open)
		if err != nil {
			return nil, err
		}
		klineClose, err := decimal.NewFromString(k.Close)
		if err != nil {
			return nil, err
		}
		klineHigh, err := decimal.NewFromString(k.High)
		if err != nil {
			return nil, err
		}
		klineLow, err := decimal.NewFromString(k.Low)
		if err != nil {
			return nil, err
		}
		klineVolume, err := decimal.NewFromString(k.Volume)
		if err != nil {
			return nil, err
		}
		klineQuoteAssetVolume, err := decimal.NewFromString(k.QuoteAssetVolume)
		if err != nil {
			return nil, err
		}
		kls[i] = exchange.Kline{
			OpenTime:         time.UnixMilli(k.OpenTime),
			CloseTime:        time.UnixMilli(k.CloseTime),
			Open:             klineOpen,
			Close:            klineClose,
			High:             klineHigh,
			Low:              klineLow,
			Volume:           klineVolume,
			QuoteAssetVolume: klineQuoteAssetVolume,
			TradeNum:         k.TradeNum,
		}
	}
	return kls, nil
}
