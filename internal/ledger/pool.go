package ledger

import (
	"cosmossdk.io/errors"
	sdkmath "cosmossdk.io/math"

	"github.com/stakeflow/ledger/internal/fixedpoint"
	"github.com/stakeflow/ledger/internal/types"
)

// CreatePool registers a new pool and returns its sequential id. Admin only.
func (e *Engine) CreatePool(caller string, principalAsset, rewardAsset types.Asset, rewardRate sdkmath.Int, lockDuration, depositFeeBps, withdrawFeeBps, now int64) (types.PoolID, error) {
	if !e.auth.IsAdmin(caller) {
		return 0, types.ErrUnauthorized
	}
	if principalAsset == "" || rewardAsset == "" {
		return 0, types.ErrInvalidAsset
	}
	if depositFeeBps < 0 || depositFeeBps > types.MaxFeeBps {
		return 0, errors.Wrapf(types.ErrFeeTooHigh, "deposit fee %d bps", depositFeeBps)
	}
	if withdrawFeeBps < 0 || withdrawFeeBps > types.MaxFeeBps {
		return 0, errors.Wrapf(types.ErrFeeTooHigh, "withdraw fee %d bps", withdrawFeeBps)
	}
	if lockDuration < 0 {
		return 0, types.ErrInvalidDuration
	}
	if rewardRate.IsNil() {
		rewardRate = sdkmath.ZeroInt()
	}
	if rewardRate.IsNegative() {
		return 0, errors.Wrap(types.ErrZeroAmount, "reward rate cannot be negative")
	}
	if err := fixedpoint.CheckMagnitude(rewardRate); err != nil {
		return 0, err
	}

	e.mu.Lock()
	id := types.PoolID(len(e.pools))
	pool := types.NewPool(id, principalAsset, rewardAsset, rewardRate, lockDuration, depositFeeBps, withdrawFeeBps, now)
	e.pools = append(e.pools, &poolState{
		pool:      pool,
		positions: make(map[string]*types.UserPosition),
	})
	e.mu.Unlock()

	e.logger.Info().
		Uint64("pool_id", uint64(id)).
		Str("principal_asset", string(principalAsset)).
		Str("reward_asset", string(rewardAsset)).
		Int64("lock_duration", lockDuration).
		Msg("Pool created")

	e.emit(types.Event{
		Kind:      types.EventPoolCreated,
		PoolID:    id,
		Asset:     principalAsset,
		Timestamp: now,
	})
	return id, nil
}

// UpdatePool changes a pool's reward rate and lock duration. Admin only.
// Accrual is settled first so the new rate applies only prospectively.
func (e *Engine) UpdatePool(caller string, poolID types.PoolID, rewardRate sdkmath.Int, lockDuration, now int64) error {
	if !e.auth.IsAdmin(caller) {
		return types.ErrUnauthorized
	}
	if lockDuration < 0 {
		return types.ErrInvalidDuration
	}
	if rewardRate.IsNil() || rewardRate.IsNegative() {
		return errors.Wrap(types.ErrZeroAmount, "reward rate cannot be negative")
	}
	if err := fixedpoint.CheckMagnitude(rewardRate); err != nil {
		return err
	}
	ps, err := e.poolByID(poolID)
	if err != nil {
		return err
	}

	ps.mu.Lock()
	defer ps.mu.Unlock()

	pool := ps.pool
	if err := settleAccrual(&pool, now); err != nil {
		return err
	}
	pool.RewardRate = rewardRate
	pool.LockDuration = lockDuration
	ps.pool = pool

	e.logger.Info().
		Uint64("pool_id", uint64(poolID)).
		Str("reward_rate", rewardRate.String()).
		Int64("lock_duration", lockDuration).
		Msg("Pool updated")

	e.emit(types.Event{
		Kind:      types.EventPoolUpdated,
		PoolID:    poolID,
		Timestamp: now,
	})
	return nil
}

// SetPoolActive toggles whether a pool accepts new stakes, claims and
// compounds. Withdrawals are never gated by it. Admin only.
func (e *Engine) SetPoolActive(caller string, poolID types.PoolID, active bool, now int64) error {
	if !e.auth.IsAdmin(caller) {
		return types.ErrUnauthorized
	}
	ps, err := e.poolByID(poolID)
	if err != nil {
		return err
	}

	ps.mu.Lock()
	ps.pool.Active = active
	ps.mu.Unlock()

	e.logger.Info().Uint64("pool_id", uint64(poolID)).Bool("active", active).Msg("Pool active flag set")

	e.emit(types.Event{
		Kind:      types.EventPoolActiveSet,
		PoolID:    poolID,
		Timestamp: now,
	})
	return nil
}

// FundRewards transfers reward asset into the pool's funding and derives a
// new reward rate spread over duration. The new rate replaces the previous
// one outright: refunding before the prior grant's duration has elapsed
// abandons the unaccrued remainder of that grant. Distributor only.
func (e *Engine) FundRewards(caller string, poolID types.PoolID, amount sdkmath.Int, duration, now int64) (*types.Event, error) {
	if !e.auth.IsDistributor(caller) {
		return nil, types.ErrUnauthorized
	}
	if amount.IsNil() || !amount.IsPositive() {
		return nil, types.ErrZeroAmount
	}
	if duration <= 0 {
		return nil, types.ErrInvalidDuration
	}
	ps, err := e.poolByID(poolID)
	if err != nil {
		return nil, err
	}

	ps.mu.Lock()
	defer ps.mu.Unlock()

	pool := ps.pool
	// Settle at the old rate first so the replacement is prospective.
	if err := settleAccrual(&pool, now); err != nil {
		return nil, err
	}
	rate, err := fixedpoint.MulDiv(amount, fixedpoint.Scale, sdkmath.NewInt(duration))
	if err != nil {
		return nil, err
	}
	pool.RewardRate = rate
	pool.RewardFunding = pool.RewardFunding.Add(amount)

	if err := e.custody.TransferIn(pool.RewardAsset, caller, amount); err != nil {
		return nil, errors.Wrap(types.ErrTransferFailed, err.Error())
	}
	ps.pool = pool

	e.logger.Info().
		Uint64("pool_id", uint64(poolID)).
		Str("amount", amount.String()).
		Int64("duration", duration).
		Str("reward_rate", rate.String()).
		Msg("Rewards funded")

	event := e.emit(types.Event{
		Kind:      types.EventRewardsFunded,
		PoolID:    poolID,
		User:      caller,
		Asset:     pool.RewardAsset,
		Amount:    amount,
		Timestamp: now,
	})
	return &event, nil
}
