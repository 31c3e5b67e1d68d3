package state

import (
	"database/sql"
	"fmt"
	"time"

	sdkmath "cosmossdk.io/math"

	"github.com/stakeflow/ledger/internal/types"
)

// DailyStats is one row of per-day activity aggregates.
type DailyStats struct {
	Day              time.Time   `json:"day"`
	StakesCount      int64       `json:"stakesCount"`
	WithdrawalsCount int64       `json:"withdrawalsCount"`
	ClaimsCount      int64       `json:"claimsCount"`
	StakedVolume     sdkmath.Int `json:"stakedVolume"`
	WithdrawnVolume  sdkmath.Int `json:"withdrawnVolume"`
	RewardsPaid      sdkmath.Int `json:"rewardsPaid"`
	FeesCollected    sdkmath.Int `json:"feesCollected"`
}

// ProtocolStats summarizes all recorded activity.
type ProtocolStats struct {
	TotalEvents      int64       `json:"totalEvents"`
	TotalStakes      int64       `json:"totalStakes"`
	TotalWithdrawals int64       `json:"totalWithdrawals"`
	TotalClaims      int64       `json:"totalClaims"`
	StakedVolume     sdkmath.Int `json:"stakedVolume"`
	RewardsPaid      sdkmath.Int `json:"rewardsPaid"`
	FeesCollected    sdkmath.Int `json:"feesCollected"`
}

// RecordEventStats folds one event into the current day's aggregate row.
func RecordEventStats(event types.Event) error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}

	day := time.Unix(event.Timestamp, 0).UTC().Format("2006-01-02")

	var column string
	switch event.Kind {
	case types.EventStaked:
		column = "stakes_count"
	case types.EventWithdrawn, types.EventEmergencyWithdrawn:
		column = "withdrawals_count"
	case types.EventRewardClaimed:
		column = "claims_count"
	default:
		// Admin and funding events are kept in ledger_events only.
		return nil
	}

	upsertSQL := fmt.Sprintf(`
		INSERT INTO daily_stats (
			stat_day, %s, staked_volume, withdrawn_volume, rewards_paid, fees_collected
		) VALUES ($1, 1, $2, $3, $4, $5)
		ON CONFLICT (stat_day) DO UPDATE SET
			%s = daily_stats.%s + 1,
			staked_volume = daily_stats.staked_volume + EXCLUDED.staked_volume,
			withdrawn_volume = daily_stats.withdrawn_volume + EXCLUDED.withdrawn_volume,
			rewards_paid = daily_stats.rewards_paid + EXCLUDED.rewards_paid,
			fees_collected = daily_stats.fees_collected + EXCLUDED.fees_collected,
			updated_at = CURRENT_TIMESTAMP
	`, column, column, column)

	stakedVolume := "0"
	withdrawnVolume := "0"
	if event.Kind == types.EventStaked {
		stakedVolume = event.Amount.String()
	} else if event.Kind == types.EventWithdrawn || event.Kind == types.EventEmergencyWithdrawn {
		withdrawnVolume = event.Amount.String()
	}

	_, err := DB.Exec(upsertSQL, day, stakedVolume, withdrawnVolume,
		event.RewardAmount.String(), event.FeeAmount.String())
	if err != nil {
		return fmt.Errorf("failed to upsert daily stats: %w", err)
	}
	return nil
}

// GetDailyStats returns per-day aggregates for the most recent days.
func GetDailyStats(days int) ([]DailyStats, error) {
	if DB == nil {
		return nil, fmt.Errorf("database not initialized")
	}
	if days <= 0 || days > 365 {
		days = 30
	}

	querySQL := `
		SELECT stat_day, stakes_count, withdrawals_count, claims_count,
		       staked_volume, withdrawn_volume, rewards_paid, fees_collected
		FROM daily_stats
		ORDER BY stat_day DESC
		LIMIT $1
	`
	rows, err := DB.Query(querySQL, days)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily stats: %w", err)
	}
	defer rows.Close()

	var stats []DailyStats
	for rows.Next() {
		var (
			row                                                        DailyStats
			stakedVolume, withdrawnVolume, rewardsPaid, feesCollected string
		)
		if err := rows.Scan(&row.Day, &row.StakesCount, &row.WithdrawalsCount, &row.ClaimsCount,
			&stakedVolume, &withdrawnVolume, &rewardsPaid, &feesCollected); err != nil {
			return nil, fmt.Errorf("failed to scan daily stats: %w", err)
		}
		if row.StakedVolume, err = parseNumeric(stakedVolume); err != nil {
			return nil, err
		}
		if row.WithdrawnVolume, err = parseNumeric(withdrawnVolume); err != nil {
			return nil, err
		}
		if row.RewardsPaid, err = parseNumeric(rewardsPaid); err != nil {
			return nil, err
		}
		if row.FeesCollected, err = parseNumeric(feesCollected); err != nil {
			return nil, err
		}
		stats = append(stats, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate daily stats: %w", err)
	}
	return stats, nil
}

// GetProtocolStats aggregates the full event history.
func GetProtocolStats() (*ProtocolStats, error) {
	if DB == nil {
		return nil, fmt.Errorf("database not initialized")
	}

	querySQL := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE kind = $1),
			COUNT(*) FILTER (WHERE kind IN ($2, $3)),
			COUNT(*) FILTER (WHERE kind = $4),
			COALESCE(SUM(amount) FILTER (WHERE kind = $1), 0),
			COALESCE(SUM(reward_amount), 0),
			COALESCE(SUM(fee_amount), 0)
		FROM ledger_events
	`
	var (
		stats                                   ProtocolStats
		stakedVolume, rewardsPaid, feesCollected string
	)
	err := DB.QueryRow(querySQL,
		string(types.EventStaked),
		string(types.EventWithdrawn),
		string(types.EventEmergencyWithdrawn),
		string(types.EventRewardClaimed),
	).Scan(&stats.TotalEvents, &stats.TotalStakes, &stats.TotalWithdrawals, &stats.TotalClaims,
		&stakedVolume, &rewardsPaid, &feesCollected)
	if err != nil {
		if err == sql.ErrNoRows {
			return &ProtocolStats{
				StakedVolume:  sdkmath.ZeroInt(),
				RewardsPaid:   sdkmath.ZeroInt(),
				FeesCollected: sdkmath.ZeroInt(),
			}, nil
		}
		return nil, fmt.Errorf("failed to query protocol stats: %w", err)
	}

	if stats.StakedVolume, err = parseNumeric(stakedVolume); err != nil {
		return nil, err
	}
	if stats.RewardsPaid, err = parseNumeric(rewardsPaid); err != nil {
		return nil, err
	}
	if stats.FeesCollected, err = parseNumeric(feesCollected); err != nil {
		return nil, err
	}
	return &stats, nil
}
