package fees

// Amounts are integer minor units (cents). The fee percentage is converted to
// basis points so the split is computed entirely in integer arithmetic and is
// reproducible when recomputed at approval time.

// Compute splits a gross amount into the platform fee and the seller payout
// for the given fee percentage. fee + payout == amount always holds; the fee
// is rounded half-to-even at the basis-point division.
func Compute(amount int64, feePercent float64) (fee, payout int64) {
	bps := toBasisPoints(feePercent)
	fee = divRoundHalfEven(amount*bps, 10_000)
	payout = amount - fee

	return fee, payout
}

func toBasisPoints(feePercent float64) int64 {
	if feePercent < 0 {
		return 0
	}

	// Round to the nearest basis point so e.g. 2.5% -> 250.
	return int64(feePercent*100 + 0.5)
}

// divRoundHalfEven divides n by d (d > 0, n >= 0) rounding halves to the
// nearest even quotient.
func divRoundHalfEven(n, d int64) int64 {
	q := n / d
	r := n % d

	switch {
	case 2*r > d:
		return q + 1
	case 2*r < d:
		return q
	default: // exactly half
		if q%2 != 0 {
			return q + 1
		}

		return q
	}
}
