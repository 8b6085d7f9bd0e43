package monitor

import (
	"github.com/cinar/indicator/v2/helper"
	"github.com/cinar/indicator/v2/momentum"
	"github.com/cinar/indicator/v2/trend"
	"github.com/cinar/indicator/v2/volatility"
)

func computeRsi(closes []float64, period int) []float64 {
	rsi := momentum.NewRsiWithPeriod[float64](period)
	return helper.ChanToSlice(rsi.Compute(helper.SliceToChan(closes)))
}

func computeEma(closes []float64, period int) []float64 {
	ema := trend.NewEmaWithPeriod[float64](period)
	return helper.ChanToSlice(ema.Compute(helper.SliceToChan(closes)))
}

func computeBollinger(closes []float64) (upper, middle, lower []float64) {
	bb := volatility.NewBollingerBands[float64]()
	upperC, middleC, lowerC := bb.Compute(helper.SliceToChan(closes))

	// 三条 channel 必须同时消费, 否则指标内部会阻塞
	done := make(chan struct{})
	go func() {
		middle = helper.ChanToSlice(middleC)
		close(done)
	}()
	done2 := make(chan struct{})
	go func() {
		lower = helper.ChanToSlice(lowerC)
		close(done2)
	}()
	upper = helper.ChanToSlice(upperC)
	<-done
	<-done2
	return upper, middle, lower
}
