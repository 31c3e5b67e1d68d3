/*
Package fixedpoint provides the scaled integer arithmetic used by the reward
accrual math. All multiply-then-divide operations go through MulDiv so the
intermediate product is computed at full width and the quotient is floored,
biasing any rounding loss toward the protocol rather than the payout.
*/
package fixedpoint

import (
	"cosmossdk.io/errors"
	sdkmath "cosmossdk.io/math"

	"github.com/stakeflow/ledger/internal/types"
)

const (
	// ScaleExponent is the number of decimal digits of reward-per-share
	// precision carried through accrual math.
	ScaleExponent = 12

	// MaxMagnitudeBits bounds every MulDiv input. Two 127-bit operands
	// multiply into at most 254 bits, safely inside sdkmath.Int's 256-bit
	// limit, so the guard turns would-be wraparound into an explicit error.
	MaxMagnitudeBits = 127
)

// Scale is the fixed-point scale factor (1e12).
var Scale = sdkmath.NewIntWithDecimal(1, ScaleExponent)

// MulDiv returns floor((a * b) / denom). Inputs must be non-negative and
// within MaxMagnitudeBits; denom must be positive. Violations are reported,
// never silently wrapped or truncated beyond the documented floor.
func MulDiv(a, b, denom sdkmath.Int) (sdkmath.Int, error) {
	if a.IsNil() || b.IsNil() || denom.IsNil() {
		return sdkmath.ZeroInt(), errors.Wrap(types.ErrOverflow, "nil operand")
	}
	if a.IsNegative() || b.IsNegative() {
		return sdkmath.ZeroInt(), errors.Wrap(types.ErrOverflow, "negative operand")
	}
	if !denom.IsPositive() {
		return sdkmath.ZeroInt(), errors.Wrap(types.ErrOverflow, "non-positive denominator")
	}
	if err := CheckMagnitude(a, b); err != nil {
		return sdkmath.ZeroInt(), err
	}
	// Quo on non-negative operands truncates toward zero, which is floor here.
	return a.Mul(b).Quo(denom), nil
}

// CheckMagnitude verifies every value fits in MaxMagnitudeBits.
func CheckMagnitude(values ...sdkmath.Int) error {
	for _, v := range values {
		if v.BigInt().BitLen() > MaxMagnitudeBits {
			return errors.Wrapf(types.ErrOverflow, "magnitude exceeds 2^%d", MaxMagnitudeBits)
		}
	}
	return nil
}
