package rewards

import (
	"errors"
	"math/big"

	"github.com/holiman/uint256"
)

// SecondsPerDay is the accrual period length. Sub-day remainders earn nothing.
const SecondsPerDay int64 = 24 * 60 * 60

// dailyRateDenominator converts an integer-percent APY into a per-day rate:
// apy / (365 * 100).
const dailyRateDenominator = 36_500

var (
	// ErrAmountOutOfRange signals an input or intermediate value that does
	// not fit the 256-bit working width. Realistic principals (up to ~1e10
	// whole tokens at 18 decimals) and horizons (thousands of days at a few
	// hundred percent APY) stay far inside the limit.
	ErrAmountOutOfRange = errors.New("rewards: amount out of range")

	wad = uint256.NewInt(1e18)
)

// Calculate compounds principal daily over wholeDays at apyPercent and returns
// principal plus accrued interest. Amounts are wei scale (18 decimals) and all
// fixed-point multiplications truncate toward zero, so payouts round down.
//
// A zero day count or zero APY returns the principal unchanged.
func Calculate(principal *big.Int, wholeDays uint64, apyPercent uint64) (*big.Int, error) {
	if principal == nil || principal.Sign() <= 0 {
		return big.NewInt(0), nil
	}
	if wholeDays == 0 || apyPercent == 0 {
		return new(big.Int).Set(principal), nil
	}

	p, overflow := uint256.FromBig(principal)
	if overflow {
		return nil, ErrAmountOutOfRange
	}

	rate := new(uint256.Int).Mul(uint256.NewInt(apyPercent), wad)
	rate.Div(rate, uint256.NewInt(dailyRateDenominator))
	base := new(uint256.Int).Add(wad, rate)

	factor, err := wadPow(base, wholeDays)
	if err != nil {
		return nil, err
	}
	result, err := wadMul(p, factor)
	if err != nil {
		return nil, err
	}
	return result.ToBig(), nil
}

// WholeDays returns the number of complete accrual periods between stakeDate
// and now. A non-positive span yields zero.
func WholeDays(stakeDate, now int64) uint64 {
	if stakeDate <= 0 || now <= stakeDate {
		return 0
	}
	return uint64((now - stakeDate) / SecondsPerDay)
}

// wadPow raises a wad-scale base to an integer exponent by repeated squaring,
// truncating at every multiplication step.
func wadPow(base *uint256.Int, n uint64) (*uint256.Int, error) {
	result := new(uint256.Int).Set(wad)
	sq := new(uint256.Int).Set(base)
	for n > 0 {
		if n&1 == 1 {
			r, err := wadMul(result, sq)
			if err != nil {
				return nil, err
			}
			result = r
		}
		n >>= 1
		if n == 0 {
			break
		}
		s, err := wadMul(sq, sq)
		if err != nil {
			return nil, err
		}
		sq = s
	}
	return result, nil
}

func wadMul(a, b *uint256.Int) (*uint256.Int, error) {
	product, overflow := new(uint256.Int).MulOverflow(a, b)
	if overflow {
		return nil, ErrAmountOutOfRange
	}
	return product.Div(product, wad), nil
}
