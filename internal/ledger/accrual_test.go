package ledger

import (
	"testing"

	sdkmath "cosmossdk.io/math"

	"github.com/stakeflow/ledger/internal/types"
)

func testPool(rate int64, principal int64) types.Pool {
	pool := types.NewPool(0, "STAKE", "REWARD", sdkmath.NewInt(rate), 0, 0, 0, 0)
	pool.TotalPrincipal = sdkmath.NewInt(principal)
	return pool
}

func TestSettleAccrualIdempotent(t *testing.T) {
	pool := testPool(1_000_000_000_000, 100)

	if err := settleAccrual(&pool, 50); err != nil {
		t.Fatalf("settleAccrual failed: %v", err)
	}
	first := pool.RewardPerShare

	if err := settleAccrual(&pool, 50); err != nil {
		t.Fatalf("repeated settleAccrual failed: %v", err)
	}
	if !pool.RewardPerShare.Equal(first) {
		t.Errorf("second settle changed reward per share: %s -> %s", first, pool.RewardPerShare)
	}
	if pool.LastAccrualTime != 50 {
		t.Errorf("last accrual time = %d, want 50", pool.LastAccrualTime)
	}
}

func TestSettleAccrualMonotone(t *testing.T) {
	pool := testPool(38_580_246_913, 10_000)

	prev := pool.RewardPerShare
	for _, now := range []int64{1, 7, 7, 100, 86_400, 86_401} {
		if err := settleAccrual(&pool, now); err != nil {
			t.Fatalf("settleAccrual(%d) failed: %v", now, err)
		}
		if pool.RewardPerShare.LT(prev) {
			t.Fatalf("reward per share decreased at t=%d: %s -> %s", now, prev, pool.RewardPerShare)
		}
		prev = pool.RewardPerShare
	}
}

func TestEmptyPoolAccruesNothing(t *testing.T) {
	pool := testPool(1_000_000_000_000, 0)

	if err := settleAccrual(&pool, 1_000); err != nil {
		t.Fatalf("settleAccrual failed: %v", err)
	}
	if !pool.RewardPerShare.IsZero() {
		t.Errorf("empty pool accrued %s", pool.RewardPerShare)
	}
	// Time still advances so the idle interval is never paid out later.
	if pool.LastAccrualTime != 1_000 {
		t.Errorf("last accrual time = %d, want 1000", pool.LastAccrualTime)
	}
}

func TestSettleUserIdempotent(t *testing.T) {
	pool := testPool(1_000_000_000_000, 100)
	if err := settleAccrual(&pool, 10); err != nil {
		t.Fatalf("settleAccrual failed: %v", err)
	}

	position := types.NewUserPosition()
	position.Principal = sdkmath.NewInt(100)

	if err := settleUser(&pool, &position); err != nil {
		t.Fatalf("settleUser failed: %v", err)
	}
	unclaimed, debt := position.UnclaimedRewards, position.RewardDebt

	if err := settleUser(&pool, &position); err != nil {
		t.Fatalf("repeated settleUser failed: %v", err)
	}
	if !position.UnclaimedRewards.Equal(unclaimed) {
		t.Errorf("second settle changed unclaimed: %s -> %s", unclaimed, position.UnclaimedRewards)
	}
	if !position.RewardDebt.Equal(debt) {
		t.Errorf("second settle changed debt: %s -> %s", debt, position.RewardDebt)
	}
}

func TestSettleUserBeforePrincipalChange(t *testing.T) {
	pool := testPool(1_000_000_000_000, 100)
	if err := settleAccrual(&pool, 10); err != nil {
		t.Fatalf("settleAccrual failed: %v", err)
	}

	position := types.NewUserPosition()
	position.Principal = sdkmath.NewInt(100)
	if err := settleUser(&pool, &position); err != nil {
		t.Fatalf("settleUser failed: %v", err)
	}
	earned := position.UnclaimedRewards

	// Doubling principal after settlement must not retroactively double the
	// earned amount: the debt re-anchor isolates past from future.
	position.Principal = sdkmath.NewInt(200)
	if err := refreshRewardDebt(&pool, &position); err != nil {
		t.Fatalf("refreshRewardDebt failed: %v", err)
	}
	if err := settleUser(&pool, &position); err != nil {
		t.Fatalf("settleUser failed: %v", err)
	}
	if !position.UnclaimedRewards.Equal(earned) {
		t.Errorf("unclaimed changed without time passing: %s -> %s", earned, position.UnclaimedRewards)
	}
}
