package types

import (
	sdkmath "cosmossdk.io/math"
)

// UserPosition is the per-(pool, user) staking record. It is created
// implicitly on first stake and persists after a full exit so settled but
// unclaimed rewards remain claimable.
type UserPosition struct {
	Principal        sdkmath.Int `json:"principal"`
	RewardDebt       sdkmath.Int `json:"reward_debt"`
	UnclaimedRewards sdkmath.Int `json:"unclaimed_rewards"`
	LastStakeTime    int64       `json:"last_stake_time"`
	UnlockTime       int64       `json:"unlock_time"`
}

// NewUserPosition returns an empty position with all balances at zero.
func NewUserPosition() UserPosition {
	return UserPosition{
		Principal:        sdkmath.ZeroInt(),
		RewardDebt:       sdkmath.ZeroInt(),
		UnclaimedRewards: sdkmath.ZeroInt(),
	}
}

// IsLocked reports whether ordinary withdrawal is still blocked at the given
// time. The engine passes time in; positions never read a clock.
func (p *UserPosition) IsLocked(now int64) bool {
	return now < p.UnlockTime
}

// UserPoolPosition is the read-model row returned by the positions query:
// one entry per pool where the user has principal staked.
type UserPoolPosition struct {
	PoolID         PoolID      `json:"pool_id"`
	Principal      sdkmath.Int `json:"principal"`
	PendingRewards sdkmath.Int `json:"pending_rewards"`
	UnlockTime     int64       `json:"unlock_time"`
}
