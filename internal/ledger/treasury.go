package ledger

import (
	"cosmossdk.io/errors"
	sdkmath "cosmossdk.io/math"

	"github.com/stakeflow/ledger/internal/types"
)

// TreasuryBalance returns the accumulated fees and penalties for an asset.
func (e *Engine) TreasuryBalance(asset types.Asset) sdkmath.Int {
	e.treasuryMu.Lock()
	defer e.treasuryMu.Unlock()
	if balance, ok := e.treasury[asset]; ok {
		return balance
	}
	return sdkmath.ZeroInt()
}

// WithdrawTreasury draws accumulated fees out to a recipient. Admin only.
func (e *Engine) WithdrawTreasury(caller string, asset types.Asset, amount sdkmath.Int, recipient string, now int64) (*types.Event, error) {
	if !e.auth.IsAdmin(caller) {
		return nil, types.ErrUnauthorized
	}
	if amount.IsNil() || !amount.IsPositive() {
		return nil, types.ErrZeroAmount
	}

	e.treasuryMu.Lock()
	defer e.treasuryMu.Unlock()

	balance, ok := e.treasury[asset]
	if !ok || balance.LT(amount) {
		return nil, types.ErrInsufficientFees
	}

	if err := e.custody.TransferOut(asset, recipient, amount); err != nil {
		return nil, errors.Wrap(types.ErrTransferFailed, err.Error())
	}
	e.treasury[asset] = balance.Sub(amount)

	e.logger.Info().
		Str("asset", string(asset)).
		Str("amount", amount.String()).
		Str("recipient", recipient).
		Msg("Treasury withdrawal processed")

	event := e.emit(types.Event{
		Kind:      types.EventTreasuryWithdrawn,
		User:      recipient,
		Asset:     asset,
		Amount:    amount,
		Timestamp: now,
	})
	return &event, nil
}
