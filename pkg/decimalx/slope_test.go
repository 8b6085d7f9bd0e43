package decimalx

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestSlope(t *testing.T) {
	testCases := []struct {
		name string
		ds   []decimal.Decimal
		want func(t *testing.T, slope decimal.Decimal)
	}{
		{
			name: "上涨序列斜率为正",
			ds: []decimal.Decimal{
				decimal.NewFromInt(1),
				decimal.NewFromInt(2),
				decimal.NewFromInt(3),
				decimal.NewFromInt(4),
			},
			want: func(t *testing.T, slope decimal.Decimal) {
				assert.True(t, slope.IsPositive(), "slope = %s", slope)
			},
		},
		{
			name: "下跌序列斜率为负",
			ds: []decimal.Decimal{
				decimal.NewFromInt(300),
				decimal.NewFromInt(200),
				decimal.NewFromInt(100),
			},
			want: func(t *testing.T, slope decimal.Decimal) {
				assert.True(t, slope.IsNegative(), "slope = %s", slope)
			},
		},
		{
			name: "全部相同返回零",
			ds: []decimal.Decimal{
				decimal.NewFromInt(100),
				decimal.NewFromInt(100),
				decimal.NewFromInt(100),
			},
			want: func(t *testing.T, slope decimal.Decimal) {
				assert.True(t, slope.IsZero())
			},
		},
		{
			name: "样本不足返回零",
			ds:   []decimal.Decimal{decimal.NewFromInt(100)},
			want: func(t *testing.T, slope decimal.Decimal) {
				assert.True(t, slope.IsZero())
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tc.want(t, Slope(tc.ds))
		})
	}
}
