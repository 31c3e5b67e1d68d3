package fixedpoint

import (
	"errors"
	"math/big"
	"testing"

	sdkmath "cosmossdk.io/math"

	"github.com/stakeflow/ledger/internal/types"
)

func TestMulDivFloors(t *testing.T) {
	// 7 * 3 / 2 = 10.5, floored to 10
	got, err := MulDiv(sdkmath.NewInt(7), sdkmath.NewInt(3), sdkmath.NewInt(2))
	if err != nil {
		t.Fatalf("MulDiv failed: %v", err)
	}
	if !got.Equal(sdkmath.NewInt(10)) {
		t.Errorf("expected 10, got %s", got.String())
	}
}

func TestMulDivExactScale(t *testing.T) {
	// a 30-day grant of 100000 units: 100000 * SCALE / 2592000
	rate, err := MulDiv(sdkmath.NewInt(100000), Scale, sdkmath.NewInt(2592000))
	if err != nil {
		t.Fatalf("MulDiv failed: %v", err)
	}
	// floor(1e17 / 2592000) = 38580246913
	if !rate.Equal(sdkmath.NewInt(38580246913)) {
		t.Errorf("expected 38580246913, got %s", rate.String())
	}
}

func TestMulDivZeroNumerator(t *testing.T) {
	got, err := MulDiv(sdkmath.ZeroInt(), Scale, sdkmath.NewInt(100))
	if err != nil {
		t.Fatalf("MulDiv failed: %v", err)
	}
	if !got.IsZero() {
		t.Errorf("expected 0, got %s", got.String())
	}
}

func TestMulDivRejectsOversizedInput(t *testing.T) {
	huge := sdkmath.NewIntWithDecimal(1, 40) // 1e40 > 2^127
	_, err := MulDiv(huge, huge, sdkmath.OneInt())
	if !errors.Is(err, types.ErrOverflow) {
		t.Errorf("expected Overflow, got %v", err)
	}
}

func TestMulDivRejectsNegative(t *testing.T) {
	_, err := MulDiv(sdkmath.NewInt(-1), sdkmath.OneInt(), sdkmath.OneInt())
	if !errors.Is(err, types.ErrOverflow) {
		t.Errorf("expected Overflow, got %v", err)
	}
}

func TestMulDivRejectsZeroDenominator(t *testing.T) {
	_, err := MulDiv(sdkmath.OneInt(), sdkmath.OneInt(), sdkmath.ZeroInt())
	if !errors.Is(err, types.ErrOverflow) {
		t.Errorf("expected Overflow, got %v", err)
	}
}

func TestCheckMagnitudeBoundary(t *testing.T) {
	// 2^127 - 1 fits; 2^127 does not
	max := sdkmath.NewIntFromBigInt(new(big.Int).Lsh(big.NewInt(1), 127))
	if err := CheckMagnitude(max.SubRaw(1)); err != nil {
		t.Errorf("2^127-1 should fit: %v", err)
	}
	if err := CheckMagnitude(max); err == nil {
		t.Error("2^127 should be rejected")
	}
}
