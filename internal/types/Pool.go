package types

import (
	sdkmath "cosmossdk.io/math"
)

// PoolID is a sequentially assigned, never reused pool identifier.
type PoolID uint64

// Asset is an opaque asset identifier. The empty string is the null sentinel
// and is rejected at pool creation.
type Asset string

// Protocol-wide parameters.
const (
	// MaxFeeBps caps deposit and withdraw fees at 10%.
	MaxFeeBps = int64(1000)

	// EmergencyPenaltyBps is the penalty taken on an emergency withdrawal.
	EmergencyPenaltyBps = int64(1000)

	// BpsDenominator converts basis points to a fraction.
	BpsDenominator = int64(10000)

	// SecondsPerYear is used by the APY query.
	SecondsPerYear = int64(31536000)
)

// Pool holds the per-pool configuration and accrual state. Amounts are
// integer token units; RewardRate and RewardPerShare carry the fixed-point
// scale so reward math never loses sub-unit precision.
type Pool struct {
	ID             PoolID `json:"id"`
	PrincipalAsset Asset  `json:"principal_asset"`
	RewardAsset    Asset  `json:"reward_asset"`

	// Accrual state
	TotalPrincipal  sdkmath.Int `json:"total_principal"`
	RewardRate      sdkmath.Int `json:"reward_rate"`      // reward units per second, scaled
	RewardPerShare  sdkmath.Int `json:"reward_per_share"` // cumulative, scaled, non-decreasing
	RewardFunding   sdkmath.Int `json:"reward_funding"`   // reward asset still available for payout
	LastAccrualTime int64       `json:"last_accrual_time"`

	// Configuration
	LockDuration   int64 `json:"lock_duration"` // seconds
	DepositFeeBps  int64 `json:"deposit_fee_bps"`
	WithdrawFeeBps int64 `json:"withdraw_fee_bps"`
	Active         bool  `json:"active"`

	CreatedAt int64 `json:"created_at"`
}

// NewPool creates a pool with zeroed accrual state. Validation of assets and
// fees happens in the engine before this is called.
func NewPool(id PoolID, principalAsset, rewardAsset Asset, rewardRate sdkmath.Int, lockDuration, depositFeeBps, withdrawFeeBps, now int64) Pool {
	return Pool{
		ID:              id,
		PrincipalAsset:  principalAsset,
		RewardAsset:     rewardAsset,
		TotalPrincipal:  sdkmath.ZeroInt(),
		RewardRate:      rewardRate,
		RewardPerShare:  sdkmath.ZeroInt(),
		RewardFunding:   sdkmath.ZeroInt(),
		LastAccrualTime: now,
		LockDuration:    lockDuration,
		DepositFeeBps:   depositFeeBps,
		WithdrawFeeBps:  withdrawFeeBps,
		Active:          true,
		CreatedAt:       now,
	}
}
