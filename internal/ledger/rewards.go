package ledger

import (
	"cosmossdk.io/errors"
	sdkmath "cosmossdk.io/math"

	"github.com/stakeflow/ledger/internal/types"
)

// ClaimRewards pays out the user's settled rewards, capped by the pool's
// remaining funding. When funding covers only part of the rewards the
// available amount is paid and the remainder stays pending; the claim fails
// only when funding is exactly zero. Claims stay available after a pool is
// deactivated.
func (e *Engine) ClaimRewards(poolID types.PoolID, user string, now int64) (*types.Event, error) {
	ps, err := e.poolByID(poolID)
	if err != nil {
		return nil, err
	}

	ps.mu.Lock()
	defer ps.mu.Unlock()

	pool := ps.pool
	if err := settleAccrual(&pool, now); err != nil {
		return nil, err
	}
	position := ps.positionCopy(user)
	if err := settleUser(&pool, &position); err != nil {
		return nil, err
	}

	if !position.UnclaimedRewards.IsPositive() {
		return nil, types.ErrNoRewards
	}
	if pool.RewardFunding.IsZero() {
		return nil, types.ErrInsufficientFunding
	}

	rewardsPaid := sdkmath.MinInt(position.UnclaimedRewards, pool.RewardFunding)
	position.UnclaimedRewards = position.UnclaimedRewards.Sub(rewardsPaid)
	pool.RewardFunding = pool.RewardFunding.Sub(rewardsPaid)

	if err := e.custody.TransferOut(pool.RewardAsset, user, rewardsPaid); err != nil {
		return nil, errors.Wrap(types.ErrTransferFailed, err.Error())
	}

	ps.pool = pool
	ps.commitPosition(user, position)

	e.logger.Info().
		Uint64("pool_id", uint64(poolID)).
		Str("user", user).
		Str("rewards_paid", rewardsPaid.String()).
		Str("still_pending", position.UnclaimedRewards.String()).
		Msg("Rewards claimed")

	event := e.emit(types.Event{
		Kind:         types.EventRewardClaimed,
		PoolID:       poolID,
		User:         user,
		Asset:        pool.RewardAsset,
		RewardAmount: rewardsPaid,
		Timestamp:    now,
	})
	return &event, nil
}

// Compound folds the user's settled rewards into their principal. Only valid
// when the pool pays rewards in its principal asset; no fee is taken and the
// lock window is not restarted. The compounded amount is drawn from the
// pool's reward funding so later withdrawals stay covered.
func (e *Engine) Compound(poolID types.PoolID, user string, now int64) (*types.Event, error) {
	ps, err := e.poolByID(poolID)
	if err != nil {
		return nil, err
	}

	ps.mu.Lock()
	defer ps.mu.Unlock()

	pool := ps.pool
	if !pool.Active {
		return nil, types.ErrPoolInactive
	}
	if pool.PrincipalAsset != pool.RewardAsset {
		return nil, types.ErrAssetMismatch
	}
	if err := settleAccrual(&pool, now); err != nil {
		return nil, err
	}
	position := ps.positionCopy(user)
	if err := settleUser(&pool, &position); err != nil {
		return nil, err
	}

	if !position.UnclaimedRewards.IsPositive() {
		return nil, types.ErrNoRewards
	}
	compounded := position.UnclaimedRewards
	if pool.RewardFunding.LT(compounded) {
		return nil, types.ErrInsufficientFunding
	}

	position.UnclaimedRewards = sdkmath.ZeroInt()
	position.Principal = position.Principal.Add(compounded)
	pool.TotalPrincipal = pool.TotalPrincipal.Add(compounded)
	pool.RewardFunding = pool.RewardFunding.Sub(compounded)
	if err := refreshRewardDebt(&pool, &position); err != nil {
		return nil, err
	}

	// The asset never leaves custody; no transfer is needed.
	ps.pool = pool
	ps.commitPosition(user, position)

	e.logger.Info().
		Uint64("pool_id", uint64(poolID)).
		Str("user", user).
		Str("compounded", compounded.String()).
		Msg("Rewards compounded")

	event := e.emit(types.Event{
		Kind:      types.EventCompounded,
		PoolID:    poolID,
		User:      user,
		Asset:     pool.PrincipalAsset,
		Amount:    compounded,
		Timestamp: now,
	})
	return &event, nil
}
