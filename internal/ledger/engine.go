package ledger

import (
	"fmt"
	"sync"

	sdkmath "cosmossdk.io/math"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/stakeflow/ledger/internal/auth"
	"github.com/stakeflow/ledger/internal/custody"
	"github.com/stakeflow/ledger/internal/logger"
	"github.com/stakeflow/ledger/internal/types"
)

// EventSink receives one immutable fact per successful operation. The engine
// logs a failed publish and moves on; its correctness never depends on the
// sink.
type EventSink interface {
	Publish(event types.Event) error
}

// NopSink discards events.
type NopSink struct{}

// Publish discards the event.
func (NopSink) Publish(types.Event) error { return nil }

// Engine is the multi-pool staking ledger. Every mutating operation settles
// pool accrual, then the caller's position, then applies its effect and any
// fee, atomically: custody transfers run after all arithmetic, and a transfer
// failure aborts with no state change. Timestamps are supplied by callers so
// time can be driven deterministically.
type Engine struct {
	logger  zerolog.Logger
	custody custody.Custody
	auth    auth.Authorizer
	sink    EventSink

	// mu guards the pool arena; each poolState serializes operations on its
	// own pool, so different pools proceed independently.
	mu    sync.RWMutex
	pools []*poolState

	treasuryMu sync.Mutex
	treasury   map[types.Asset]sdkmath.Int
}

// poolState bundles a pool with its positions under one lock.
type poolState struct {
	mu        sync.Mutex
	pool      types.Pool
	positions map[string]*types.UserPosition
}

// Config holds the dependencies for creating a new Engine instance.
type Config struct {
	Custody   custody.Custody
	Auth      auth.Authorizer
	EventSink EventSink
}

// NewEngine creates a new Engine with dependency injection.
func NewEngine(cfg Config) (*Engine, error) {
	if err := validateEngineConfig(cfg); err != nil {
		return nil, fmt.Errorf("engine configuration validation failed: %w", err)
	}

	sink := cfg.EventSink
	if sink == nil {
		sink = NopSink{}
	}

	engine := &Engine{
		logger:   logger.GetForComponent("ledger_engine"),
		custody:  cfg.Custody,
		auth:     cfg.Auth,
		sink:     sink,
		treasury: make(map[types.Asset]sdkmath.Int),
	}

	engine.logger.Info().Msg("Ledger engine created")
	return engine, nil
}

// validateEngineConfig validates the engine dependencies.
func validateEngineConfig(cfg Config) error {
	if cfg.Custody == nil {
		return fmt.Errorf("custody collaborator cannot be nil")
	}
	if cfg.Auth == nil {
		return fmt.Errorf("authorizer cannot be nil")
	}
	return nil
}

// poolByID returns the pool state for an id, or NotFound. The comparison
// stays in PoolID space: converting a huge id to int would wrap negative and
// slip past the bounds check.
func (e *Engine) poolByID(id types.PoolID) (*poolState, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if id >= types.PoolID(len(e.pools)) {
		return nil, types.ErrNotFound
	}
	return e.pools[id], nil
}

// positionCopy returns a copy of the user's position, or a fresh zeroed one.
// Callers mutate the copy and write it back only after custody succeeds.
func (ps *poolState) positionCopy(user string) types.UserPosition {
	if existing, ok := ps.positions[user]; ok {
		return *existing
	}
	return types.NewUserPosition()
}

// commitPosition writes a settled position copy back into the pool state.
func (ps *poolState) commitPosition(user string, position types.UserPosition) {
	ps.positions[user] = &position
}

// creditTreasury adds a fee or penalty to the per-asset treasury balance.
func (e *Engine) creditTreasury(asset types.Asset, amount sdkmath.Int) {
	if amount.IsNil() || !amount.IsPositive() {
		return
	}
	e.treasuryMu.Lock()
	defer e.treasuryMu.Unlock()
	balance, ok := e.treasury[asset]
	if !ok {
		balance = sdkmath.ZeroInt()
	}
	e.treasury[asset] = balance.Add(amount)
}

// emit publishes one fact for a successful operation. Publish failures are
// logged, never propagated.
func (e *Engine) emit(event types.Event) types.Event {
	event.ID = uuid.New().String()
	if event.Amount.IsNil() {
		event.Amount = sdkmath.ZeroInt()
	}
	if event.RewardAmount.IsNil() {
		event.RewardAmount = sdkmath.ZeroInt()
	}
	if event.FeeAmount.IsNil() {
		event.FeeAmount = sdkmath.ZeroInt()
	}
	if err := e.sink.Publish(event); err != nil {
		e.logger.Error().Err(err).Str("kind", string(event.Kind)).Msg("Event sink publish failed")
	}
	return event
}
