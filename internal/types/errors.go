package types

import (
	"cosmossdk.io/errors"
)

// Ledger error codes. Every engine operation fails with exactly one of these;
// callers match with errors.Is.
var (
	ErrNotFound            = errors.Register("ledger", 1, "pool not found")
	ErrUnauthorized        = errors.Register("ledger", 2, "caller not authorized")
	ErrInvalidAsset        = errors.Register("ledger", 3, "invalid asset identifier")
	ErrFeeTooHigh          = errors.Register("ledger", 4, "fee exceeds maximum basis points")
	ErrZeroAmount          = errors.Register("ledger", 5, "amount must be positive")
	ErrInvalidDuration     = errors.Register("ledger", 6, "duration must be positive")
	ErrInsufficientBalance = errors.Register("ledger", 7, "insufficient staked balance")
	ErrLocked              = errors.Register("ledger", 8, "principal is still locked")
	ErrNoStake             = errors.Register("ledger", 9, "no principal staked")
	ErrNoRewards           = errors.Register("ledger", 10, "no rewards to claim")
	ErrAssetMismatch       = errors.Register("ledger", 11, "principal and reward assets differ")
	ErrInsufficientFees    = errors.Register("ledger", 12, "insufficient treasury balance")
	ErrInsufficientFunding = errors.Register("ledger", 13, "no reward funding available")
	ErrOverflow            = errors.Register("ledger", 14, "arithmetic overflow")
	ErrPoolInactive        = errors.Register("ledger", 15, "pool is not active")
	ErrTransferFailed      = errors.Register("ledger", 16, "asset transfer failed")
)
