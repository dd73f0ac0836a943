package fees_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sokopay/sokopay/internal/fees"
)

func TestCompute(t *testing.T) {
	tests := []struct {
		name       string
		amount     int64
		feePercent float64
		wantFee    int64
		wantPayout int64
	}{
		{name: "FivePercentOfThousand", amount: 1000, feePercent: 5, wantFee: 50, wantPayout: 950},
		{name: "FivePercentOfThousandShillings", amount: 100_000, feePercent: 5, wantFee: 5000, wantPayout: 95_000},
		{name: "ZeroFee", amount: 1000, feePercent: 0, wantFee: 0, wantPayout: 1000},
		{name: "FractionalPercent", amount: 10_000, feePercent: 2.5, wantFee: 250, wantPayout: 9750},
		{name: "HalfRoundsToEvenDown", amount: 50, feePercent: 5, wantFee: 2, wantPayout: 48},   // 2.5 -> 2
		{name: "HalfRoundsToEvenUp", amount: 70, feePercent: 5, wantFee: 4, wantPayout: 66},     // 3.5 -> 4
		{name: "TinyAmount", amount: 1, feePercent: 5, wantFee: 0, wantPayout: 1},               // 0.05 -> 0
		{name: "NegativePercentTreatedAsZero", amount: 1000, feePercent: -3, wantFee: 0, wantPayout: 1000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fee, payout := fees.Compute(tt.amount, tt.feePercent)

			assert.Equal(t, tt.wantFee, fee)
			assert.Equal(t, tt.wantPayout, payout)
			assert.Equal(t, tt.amount, fee+payout, "fee + payout must equal amount")
		})
	}
}

func TestCompute_SplitInvariant(t *testing.T) {
	// The invariant must hold for awkward amounts and rates alike.
	amounts := []int64{1, 3, 99, 101, 999, 12_345, 1_000_000, 7_777_777}
	rates := []float64{0, 0.1, 1, 2.5, 5, 7.35, 10, 50, 100}

	for _, amount := range amounts {
		for _, rate := range rates {
			fee, payout := fees.Compute(amount, rate)
			assert.Equal(t, amount, fee+payout, "amount=%d rate=%v", amount, rate)
			assert.GreaterOrEqual(t, fee, int64(0))
			assert.GreaterOrEqual(t, payout, int64(0))
		}
	}
}

func TestCompute_Reproducible(t *testing.T) {
	// Checkout and approval both call Compute; identical inputs must not drift.
	for range 3 {
		fee, payout := fees.Compute(123_457, 5)
		assert.Equal(t, int64(6173), fee)
		assert.Equal(t, int64(117_284), payout)
	}
}
