package ledger

import (
	"cosmossdk.io/errors"
	sdkmath "cosmossdk.io/math"

	"github.com/stakeflow/ledger/internal/fixedpoint"
	"github.com/stakeflow/ledger/internal/types"
)

// Stake deposits amount of principal asset for the user. The deposit fee is
// routed to the treasury and only the net amount starts earning; the lock
// window restarts from now.
func (e *Engine) Stake(poolID types.PoolID, user string, amount sdkmath.Int, now int64) (*types.Event, error) {
	if amount.IsNil() || !amount.IsPositive() {
		return nil, types.ErrZeroAmount
	}
	if err := fixedpoint.CheckMagnitude(amount); err != nil {
		return nil, err
	}
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
	if err := settleAccrual(&pool, now); err != nil {
		return nil, err
	}
	position := ps.positionCopy(user)
	if err := settleUser(&pool, &position); err != nil {
		return nil, err
	}

	fee, err := fixedpoint.MulDiv(amount, sdkmath.NewInt(pool.DepositFeeBps), sdkmath.NewInt(types.BpsDenominator))
	if err != nil {
		return nil, err
	}
	netAmount := amount.Sub(fee)

	position.Principal = position.Principal.Add(netAmount)
	position.LastStakeTime = now
	position.UnlockTime = now + pool.LockDuration
	if err := refreshRewardDebt(&pool, &position); err != nil {
		return nil, err
	}
	pool.TotalPrincipal = pool.TotalPrincipal.Add(netAmount)

	// All arithmetic is done; move the asset last so a failure aborts cleanly.
	if err := e.custody.TransferIn(pool.PrincipalAsset, user, amount); err != nil {
		return nil, errors.Wrap(types.ErrTransferFailed, err.Error())
	}

	ps.pool = pool
	ps.commitPosition(user, position)
	e.creditTreasury(pool.PrincipalAsset, fee)

	e.logger.Info().
		Uint64("pool_id", uint64(poolID)).
		Str("user", user).
		Str("amount", amount.String()).
		Str("net_amount", netAmount.String()).
		Str("fee", fee.String()).
		Msg("Stake processed")

	event := e.emit(types.Event{
		Kind:      types.EventStaked,
		PoolID:    poolID,
		User:      user,
		Asset:     pool.PrincipalAsset,
		Amount:    netAmount,
		FeeAmount: fee,
		Timestamp: now,
	})
	return &event, nil
}

// Withdraw removes amount of principal once the lock has expired, paying out
// the net of the withdraw fee plus as much of the settled rewards as the
// pool's funding covers. Works on deactivated pools.
func (e *Engine) Withdraw(poolID types.PoolID, user string, amount sdkmath.Int, now int64) (*types.Event, error) {
	if amount.IsNil() || !amount.IsPositive() {
		return nil, types.ErrZeroAmount
	}
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

	if amount.GT(position.Principal) {
		return nil, types.ErrInsufficientBalance
	}
	if position.IsLocked(now) {
		return nil, errors.Wrapf(types.ErrLocked, "unlocks at %d", position.UnlockTime)
	}

	fee, err := fixedpoint.MulDiv(amount, sdkmath.NewInt(pool.WithdrawFeeBps), sdkmath.NewInt(types.BpsDenominator))
	if err != nil {
		return nil, err
	}
	netOut := amount.Sub(fee)

	position.Principal = position.Principal.Sub(amount)
	pool.TotalPrincipal = pool.TotalPrincipal.Sub(amount)
	if position.Principal.IsZero() {
		position.UnlockTime = 0
	}

	if err := refreshRewardDebt(&pool, &position); err != nil {
		return nil, err
	}

	// Rewards are capped by what has actually been funded.
	rewardsPaid := sdkmath.MinInt(position.UnclaimedRewards, pool.RewardFunding)

	if err := e.custody.TransferOut(pool.PrincipalAsset, user, netOut); err != nil {
		return nil, errors.Wrap(types.ErrTransferFailed, err.Error())
	}
	if rewardsPaid.IsPositive() {
		if err := e.custody.TransferOut(pool.RewardAsset, user, rewardsPaid); err != nil {
			// The principal has already left custody, so that leg commits.
			// The rewards stay pending for a later claim instead of the
			// ledger discarding a transfer that happened.
			e.logger.Warn().
				Err(err).
				Uint64("pool_id", uint64(poolID)).
				Str("user", user).
				Str("rewards", rewardsPaid.String()).
				Msg("Reward payout failed during withdrawal, rewards kept pending")
			rewardsPaid = sdkmath.ZeroInt()
		}
	}
	if rewardsPaid.IsPositive() {
		pool.RewardFunding = pool.RewardFunding.Sub(rewardsPaid)
		position.UnclaimedRewards = sdkmath.ZeroInt()
	} else if !position.UnclaimedRewards.IsZero() && pool.RewardFunding.IsZero() {
		// Owed but unfunded rewards are forfeited on an ordinary withdrawal.
		position.UnclaimedRewards = sdkmath.ZeroInt()
	}

	ps.pool = pool
	ps.commitPosition(user, position)
	e.creditTreasury(pool.PrincipalAsset, fee)

	e.logger.Info().
		Uint64("pool_id", uint64(poolID)).
		Str("user", user).
		Str("net_out", netOut.String()).
		Str("rewards_paid", rewardsPaid.String()).
		Str("fee", fee.String()).
		Msg("Withdrawal processed")

	event := e.emit(types.Event{
		Kind:         types.EventWithdrawn,
		PoolID:       poolID,
		User:         user,
		Asset:        pool.PrincipalAsset,
		Amount:       netOut,
		RewardAmount: rewardsPaid,
		FeeAmount:    fee,
		Timestamp:    now,
	})
	return &event, nil
}

// EmergencyWithdraw exits the full position immediately, bypassing the lock.
// A penalty is taken on principal and every accrued reward is forfeited.
// Works on deactivated pools.
func (e *Engine) EmergencyWithdraw(poolID types.PoolID, user string, now int64) (*types.Event, error) {
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
	if !position.Principal.IsPositive() {
		return nil, types.ErrNoStake
	}

	principal := position.Principal
	penalty, err := fixedpoint.MulDiv(principal, sdkmath.NewInt(types.EmergencyPenaltyBps), sdkmath.NewInt(types.BpsDenominator))
	if err != nil {
		return nil, err
	}
	// netOut + penalty == principal exactly: the floor is applied once, to
	// the penalty.
	netOut := principal.Sub(penalty)

	pool.TotalPrincipal = pool.TotalPrincipal.Sub(principal)
	position.Principal = sdkmath.ZeroInt()
	position.RewardDebt = sdkmath.ZeroInt()
	position.UnclaimedRewards = sdkmath.ZeroInt()
	position.UnlockTime = 0

	if err := e.custody.TransferOut(pool.PrincipalAsset, user, netOut); err != nil {
		return nil, errors.Wrap(types.ErrTransferFailed, err.Error())
	}

	ps.pool = pool
	ps.commitPosition(user, position)
	e.creditTreasury(pool.PrincipalAsset, penalty)

	e.logger.Warn().
		Uint64("pool_id", uint64(poolID)).
		Str("user", user).
		Str("net_out", netOut.String()).
		Str("penalty", penalty.String()).
		Msg("Emergency withdrawal processed")

	event := e.emit(types.Event{
		Kind:      types.EventEmergencyWithdrawn,
		PoolID:    poolID,
		User:      user,
		Asset:     pool.PrincipalAsset,
		Amount:    netOut,
		FeeAmount: penalty,
		Timestamp: now,
	})
	return &event, nil
}
