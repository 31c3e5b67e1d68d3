package types

import (
	sdkmath "cosmossdk.io/math"
)

// EventKind identifies the operation a fact records. The four user-facing
// kinds keep the names downstream indexers already filter on.
type EventKind string

const (
	EventPoolCreated        EventKind = "PoolCreated"
	EventPoolUpdated        EventKind = "PoolUpdated"
	EventPoolActiveSet      EventKind = "PoolActiveSet"
	EventRewardsFunded      EventKind = "RewardsFunded"
	EventStaked             EventKind = "Staked"
	EventWithdrawn          EventKind = "Withdrawn"
	EventEmergencyWithdrawn EventKind = "EmergencyWithdrawn"
	EventRewardClaimed      EventKind = "RewardClaimed"
	EventCompounded         EventKind = "Compounded"
	EventTreasuryWithdrawn  EventKind = "TreasuryWithdrawn"
)

// Event is the immutable fact emitted once per successful operation. Amount
// carries the operation's net principal movement (net stake, net payout,
// funded amount); RewardAmount the rewards actually paid; FeeAmount any fee
// or penalty routed to the treasury.
type Event struct {
	ID           string      `json:"id"`
	Kind         EventKind   `json:"kind"`
	PoolID       PoolID      `json:"pool_id"`
	User         string      `json:"user,omitempty"`
	Asset        Asset       `json:"asset,omitempty"`
	Amount       sdkmath.Int `json:"amount"`
	RewardAmount sdkmath.Int `json:"reward_amount"`
	FeeAmount    sdkmath.Int `json:"fee_amount"`
	Timestamp    int64       `json:"timestamp"`
}
