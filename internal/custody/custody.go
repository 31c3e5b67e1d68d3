package custody

import (
	"fmt"
	"sync"

	sdkmath "cosmossdk.io/math"

	"github.com/stakeflow/ledger/internal/types"
)

// Custody abstracts the asset-transfer collaborator. Each call is synchronous
// and all-or-nothing; the engine invokes it only after all ledger arithmetic
// for an operation has been computed, so a failure aborts the operation
// cleanly with no state change.
type Custody interface {
	// TransferIn moves amount of asset from the given account into the
	// ledger's custody.
	TransferIn(asset types.Asset, from string, amount sdkmath.Int) error

	// TransferOut moves amount of asset from the ledger's custody to the
	// given account.
	TransferOut(asset types.Asset, to string, amount sdkmath.Int) error
}

// MemoryCustody is an in-process custody ledger tracking per-(asset, account)
// balances. It backs ledgerd's simulation mode and the engine tests.
type MemoryCustody struct {
	mu       sync.Mutex
	account  string // the ledger's own holding account
	balances map[types.Asset]map[string]sdkmath.Int
}

// NewMemoryCustody creates an empty custody ledger holding assets under the
// given account name.
func NewMemoryCustody(account string) *MemoryCustody {
	return &MemoryCustody{
		account:  account,
		balances: make(map[types.Asset]map[string]sdkmath.Int),
	}
}

// Credit mints amount of asset to an account. Used to seed balances in
// simulation mode and tests.
func (c *MemoryCustody) Credit(asset types.Asset, account string, amount sdkmath.Int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.credit(asset, account, amount)
}

// Balance returns the current balance of an account for an asset.
func (c *MemoryCustody) Balance(asset types.Asset, account string) sdkmath.Int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if held, ok := c.balances[asset][account]; ok {
		return held
	}
	return sdkmath.ZeroInt()
}

// TransferIn moves amount from the account into the ledger's custody account.
func (c *MemoryCustody) TransferIn(asset types.Asset, from string, amount sdkmath.Int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.debit(asset, from, amount); err != nil {
		return err
	}
	c.credit(asset, c.account, amount)
	return nil
}

// TransferOut moves amount from the ledger's custody account to the account.
func (c *MemoryCustody) TransferOut(asset types.Asset, to string, amount sdkmath.Int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.debit(asset, c.account, amount); err != nil {
		return err
	}
	c.credit(asset, to, amount)
	return nil
}

func (c *MemoryCustody) credit(asset types.Asset, account string, amount sdkmath.Int) {
	if amount.IsNil() || !amount.IsPositive() {
		return
	}
	holders, ok := c.balances[asset]
	if !ok {
		holders = make(map[string]sdkmath.Int)
		c.balances[asset] = holders
	}
	held, ok := holders[account]
	if !ok {
		held = sdkmath.ZeroInt()
	}
	holders[account] = held.Add(amount)
}

func (c *MemoryCustody) debit(asset types.Asset, account string, amount sdkmath.Int) error {
	if amount.IsNil() || amount.IsNegative() {
		return fmt.Errorf("invalid transfer amount")
	}
	if amount.IsZero() {
		return nil
	}
	held, ok := c.balances[asset][account]
	if !ok || held.LT(amount) {
		return fmt.Errorf("account %s holds insufficient %s", account, asset)
	}
	c.balances[asset][account] = held.Sub(amount)
	return nil
}

// FailingCustody rejects every transfer. Tests use it to verify that a
// custody failure rolls the whole operation back.
type FailingCustody struct{}

// TransferIn always fails.
func (FailingCustody) TransferIn(types.Asset, string, sdkmath.Int) error {
	return fmt.Errorf("transfer-in rejected")
}

// TransferOut always fails.
func (FailingCustody) TransferOut(types.Asset, string, sdkmath.Int) error {
	return fmt.Errorf("transfer-out rejected")
}
