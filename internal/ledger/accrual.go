package ledger

import (
	sdkmath "cosmossdk.io/math"

	"github.com/stakeflow/ledger/internal/fixedpoint"
	"github.com/stakeflow/ledger/internal/types"
)

// previewRewardPerShare computes the reward-per-share accumulator as of now
// without mutating the pool. An empty pool accrues nothing: reward time is
// effectively paused while nothing is staked.
func previewRewardPerShare(pool *types.Pool, now int64) (sdkmath.Int, error) {
	if now <= pool.LastAccrualTime || pool.TotalPrincipal.IsZero() {
		return pool.RewardPerShare, nil
	}
	elapsed := sdkmath.NewInt(now - pool.LastAccrualTime)
	// RewardRate carries the fixed-point scale, so the quotient is the scaled
	// per-share delta: floor(elapsed * rate / totalPrincipal).
	delta, err := fixedpoint.MulDiv(elapsed, pool.RewardRate, pool.TotalPrincipal)
	if err != nil {
		return sdkmath.ZeroInt(), err
	}
	return pool.RewardPerShare.Add(delta), nil
}

// settleAccrual pulls the pool's accumulator up to now. Idempotent: a second
// call with the same timestamp changes nothing.
func settleAccrual(pool *types.Pool, now int64) error {
	updated, err := previewRewardPerShare(pool, now)
	if err != nil {
		return err
	}
	pool.RewardPerShare = updated
	if now > pool.LastAccrualTime {
		pool.LastAccrualTime = now
	}
	return nil
}

// settleUser folds the accrual since the position's last settlement into
// unclaimed rewards and re-anchors the reward debt. Must run after
// settleAccrual and before any change to the position's principal, so debt
// never straddles two principal values.
func settleUser(pool *types.Pool, position *types.UserPosition) error {
	accounted, err := fixedpoint.MulDiv(position.Principal, pool.RewardPerShare, fixedpoint.Scale)
	if err != nil {
		return err
	}
	delta := accounted.Sub(position.RewardDebt)
	if delta.IsPositive() {
		position.UnclaimedRewards = position.UnclaimedRewards.Add(delta)
	}
	position.RewardDebt = accounted
	return nil
}

// refreshRewardDebt re-anchors reward debt after a principal change so the
// next settlement starts from the new principal.
func refreshRewardDebt(pool *types.Pool, position *types.UserPosition) error {
	accounted, err := fixedpoint.MulDiv(position.Principal, pool.RewardPerShare, fixedpoint.Scale)
	if err != nil {
		return err
	}
	position.RewardDebt = accounted
	return nil
}
