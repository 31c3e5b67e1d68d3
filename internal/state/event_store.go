package state

import (
	"fmt"
	"strings"

	sdkmath "cosmossdk.io/math"

	"github.com/stakeflow/ledger/internal/types"
)

// EventFilter narrows an event query. Zero values mean "no constraint".
type EventFilter struct {
	Kind   types.EventKind
	PoolID *types.PoolID
	User   string
	Limit  int
	Offset int
}

// SaveEvent persists one immutable ledger fact.
func SaveEvent(event types.Event) error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}

	insertSQL := `
		INSERT INTO ledger_events (
			event_id, kind, pool_id, user_address, asset,
			amount, reward_amount, fee_amount, event_timestamp
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (event_id) DO NOTHING
	`
	_, err := DB.Exec(insertSQL,
		event.ID,
		string(event.Kind),
		uint64(event.PoolID),
		event.User,
		string(event.Asset),
		event.Amount.String(),
		event.RewardAmount.String(),
		event.FeeAmount.String(),
		event.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to insert ledger event: %w", err)
	}
	return nil
}

// buildEventsQuery assembles the filtered SELECT with positional parameters.
func buildEventsQuery(filter EventFilter) (string, []interface{}) {
	var conditions []string
	var args []interface{}
	arg := func(value interface{}) string {
		args = append(args, value)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Kind != "" {
		conditions = append(conditions, "kind = "+arg(string(filter.Kind)))
	}
	if filter.PoolID != nil {
		conditions = append(conditions, "pool_id = "+arg(uint64(*filter.PoolID)))
	}
	if filter.User != "" {
		conditions = append(conditions, "user_address = "+arg(filter.User))
	}

	querySQL := `
		SELECT event_id, kind, pool_id, user_address, asset,
		       amount, reward_amount, fee_amount, event_timestamp
		FROM ledger_events
	`
	if len(conditions) > 0 {
		querySQL += " WHERE " + strings.Join(conditions, " AND ")
	}
	querySQL += " ORDER BY event_timestamp DESC, recorded_at DESC"

	limit := filter.Limit
	if limit <= 0 || limit > 1000 {
		limit = 100
	}
	querySQL += " LIMIT " + arg(limit)
	if filter.Offset > 0 {
		querySQL += " OFFSET " + arg(filter.Offset)
	}
	return querySQL, args
}

// GetEvents returns events matching the filter, newest first.
func GetEvents(filter EventFilter) ([]types.Event, error) {
	if DB == nil {
		return nil, fmt.Errorf("database not initialized")
	}

	querySQL, args := buildEventsQuery(filter)
	rows, err := DB.Query(querySQL, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query ledger events: %w", err)
	}
	defer rows.Close()

	var events []types.Event
	for rows.Next() {
		var (
			event                          types.Event
			kind, asset                    string
			poolID                         uint64
			amount, rewardAmount, feeAmount string
		)
		if err := rows.Scan(&event.ID, &kind, &poolID, &event.User, &asset,
			&amount, &rewardAmount, &feeAmount, &event.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan ledger event: %w", err)
		}
		event.Kind = types.EventKind(kind)
		event.PoolID = types.PoolID(poolID)
		event.Asset = types.Asset(asset)
		if event.Amount, err = parseNumeric(amount); err != nil {
			return nil, err
		}
		if event.RewardAmount, err = parseNumeric(rewardAmount); err != nil {
			return nil, err
		}
		if event.FeeAmount, err = parseNumeric(feeAmount); err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate ledger events: %w", err)
	}
	return events, nil
}

// parseNumeric converts a NUMERIC column value back into an integer.
func parseNumeric(value string) (sdkmath.Int, error) {
	parsed, ok := sdkmath.NewIntFromString(value)
	if !ok {
		return sdkmath.ZeroInt(), fmt.Errorf("invalid numeric value %q in ledger_events", value)
	}
	return parsed, nil
}
