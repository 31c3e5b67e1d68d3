package ledger

import (
	sdkmath "cosmossdk.io/math"

	"github.com/stakeflow/ledger/internal/fixedpoint"
	"github.com/stakeflow/ledger/internal/types"
)

// GetPool returns a copy of the pool record.
func (e *Engine) GetPool(poolID types.PoolID) (types.Pool, error) {
	ps, err := e.poolByID(poolID)
	if err != nil {
		return types.Pool{}, err
	}
	ps.mu.Lock()
	defer ps.mu.Unlock()
	return ps.pool, nil
}

// PoolCount returns the number of pools ever created.
func (e *Engine) PoolCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.pools)
}

// ListPools returns copies of every pool record.
func (e *Engine) ListPools() []types.Pool {
	e.mu.RLock()
	states := make([]*poolState, len(e.pools))
	copy(states, e.pools)
	e.mu.RUnlock()

	pools := make([]types.Pool, 0, len(states))
	for _, ps := range states {
		ps.mu.Lock()
		pools = append(pools, ps.pool)
		ps.mu.Unlock()
	}
	return pools
}

// GetUserInfo returns a copy of the user's position in a pool. A user who has
// never staked gets a zeroed position.
func (e *Engine) GetUserInfo(poolID types.PoolID, user string) (types.UserPosition, error) {
	ps, err := e.poolByID(poolID)
	if err != nil {
		return types.UserPosition{}, err
	}
	ps.mu.Lock()
	defer ps.mu.Unlock()
	return ps.positionCopy(user), nil
}

// PendingRewards returns the rewards the user could claim as of now: the
// already-settled balance plus a preview of the accrual since the last
// settlement. Nothing is mutated.
func (e *Engine) PendingRewards(poolID types.PoolID, user string, now int64) (sdkmath.Int, error) {
	ps, err := e.poolByID(poolID)
	if err != nil {
		return sdkmath.ZeroInt(), err
	}
	ps.mu.Lock()
	defer ps.mu.Unlock()
	return pendingRewardsLocked(ps, user, now)
}

// pendingRewardsLocked computes pending rewards with ps.mu already held.
func pendingRewardsLocked(ps *poolState, user string, now int64) (sdkmath.Int, error) {
	position := ps.positionCopy(user)
	rps, err := previewRewardPerShare(&ps.pool, now)
	if err != nil {
		return sdkmath.ZeroInt(), err
	}
	accounted, err := fixedpoint.MulDiv(position.Principal, rps, fixedpoint.Scale)
	if err != nil {
		return sdkmath.ZeroInt(), err
	}
	pending := position.UnclaimedRewards
	if delta := accounted.Sub(position.RewardDebt); delta.IsPositive() {
		pending = pending.Add(delta)
	}
	return pending, nil
}

// PoolAPY returns the pool's annualized reward rate in basis points of its
// staked principal. An empty pool yields 0 rather than dividing by zero.
func (e *Engine) PoolAPY(poolID types.PoolID) (sdkmath.Int, error) {
	ps, err := e.poolByID(poolID)
	if err != nil {
		return sdkmath.ZeroInt(), err
	}
	ps.mu.Lock()
	defer ps.mu.Unlock()

	pool := ps.pool
	if pool.TotalPrincipal.IsZero() {
		return sdkmath.ZeroInt(), nil
	}
	// Unscale the yearly reward first, then express it in bps of principal.
	yearlyReward, err := fixedpoint.MulDiv(pool.RewardRate, sdkmath.NewInt(types.SecondsPerYear), fixedpoint.Scale)
	if err != nil {
		return sdkmath.ZeroInt(), err
	}
	return fixedpoint.MulDiv(yearlyReward, sdkmath.NewInt(types.BpsDenominator), pool.TotalPrincipal)
}

// UserPositions enumerates every pool where the user has principal staked,
// with the staked amount and a pending-rewards preview as of now.
func (e *Engine) UserPositions(user string, now int64) ([]types.UserPoolPosition, error) {
	e.mu.RLock()
	states := make([]*poolState, len(e.pools))
	copy(states, e.pools)
	e.mu.RUnlock()

	var positions []types.UserPoolPosition
	for _, ps := range states {
		ps.mu.Lock()
		held, ok := ps.positions[user]
		if !ok || !held.Principal.IsPositive() {
			ps.mu.Unlock()
			continue
		}
		pending, err := pendingRewardsLocked(ps, user, now)
		if err != nil {
			ps.mu.Unlock()
			return nil, err
		}
		positions = append(positions, types.UserPoolPosition{
			PoolID:         ps.pool.ID,
			Principal:      held.Principal,
			PendingRewards: pending,
			UnlockTime:     held.UnlockTime,
		})
		ps.mu.Unlock()
	}
	return positions, nil
}
