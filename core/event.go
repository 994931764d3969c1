package core

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx/types"
	"github.com/shopspring/decimal"
)

// EventType string
type EventType string

const (
	// EventTypePositionOpened position opened
	EventTypePositionOpened EventType = "position_opened"
	// EventTypePositionClosed position closed by exit
	EventTypePositionClosed EventType = "position_closed"
	// EventTypeCollateralSupplied collateral supplied
	EventTypeCollateralSupplied EventType = "collateral_supplied"
	// EventTypeCollateralWithdrawn collateral withdrawn
	EventTypeCollateralWithdrawn EventType = "collateral_withdrawn"
	// EventTypeBorrowed borrowed
	EventTypeBorrowed EventType = "borrowed"
	// EventTypeRepaid repaid
	EventTypeRepaid EventType = "repaid"
	// EventTypeInterestAccrued interest accrued
	EventTypeInterestAccrued EventType = "interest_accrued"
	// EventTypeLiquidated liquidated
	EventTypeLiquidated EventType = "liquidated"
	// EventTypeLiquidityDeposited vault deposit
	EventTypeLiquidityDeposited EventType = "liquidity_deposited"
	// EventTypeLiquidityWithdrawn vault withdrawal
	EventTypeLiquidityWithdrawn EventType = "liquidity_withdrawn"
	// EventTypeSharesMinted vault shares minted
	EventTypeSharesMinted EventType = "shares_minted"
	// EventTypeSharesRedeemed vault shares redeemed
	EventTypeSharesRedeemed EventType = "shares_redeemed"
	// EventTypeYieldBoosted external profit injected
	EventTypeYieldBoosted EventType = "yield_boosted"
	// EventTypeFlashLoan flash loan executed
	EventTypeFlashLoan EventType = "flash_loan"
	// EventTypeConfigUpdated protocol config updated
	EventTypeConfigUpdated EventType = "protocol_config_updated"
	// EventTypeStakeUpdated governance stake updated
	EventTypeStakeUpdated EventType = "stake_updated"
	// EventTypeAssetRegistered asset registered
	EventTypeAssetRegistered EventType = "asset_registered"
	// EventTypePriceUpdated price updated
	EventTypePriceUpdated EventType = "price_updated"
)

// EventExtraData extra data
type EventExtraData map[string]interface{}

// Put put data
func (e EventExtraData) Put(key string, value interface{}) {
	e[key] = value
}

// Format marshal to json
func (e EventExtraData) Format() []byte {
	b, err := json.Marshal(e)
	if err != nil {
		return []byte("{}")
	}
	return b
}

// Event journal row of one state change
type Event struct {
	ID         uint64          `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id"`
	TraceID    string          `sql:"size:36;unique_index:event_trace_idx" json:"trace_id"`
	Type       EventType       `sql:"size:36;index:event_type_idx" json:"type"`
	UserID     string          `sql:"size:36;index:event_user_idx" json:"user_id"`
	PositionID uint64          `sql:"default:0" json:"position_id,omitempty"`
	AssetID    string          `sql:"size:36" json:"asset_id,omitempty"`
	Amount     decimal.Decimal `sql:"type:decimal(32,16)" json:"amount"`
	Block      int64           `sql:"default:0" json:"block"`
	Extra      types.JSONText  `sql:"type:TEXT" json:"extra,omitempty"`
	CreatedAt  time.Time       `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`
}

// IEventStore event store interface
type IEventStore interface {
	Create(ctx context.Context, event *Event) error
	List(ctx context.Context, fromID uint64, limit int) ([]*Event, error)
	ListByUser(ctx context.Context, userID string, fromID uint64, limit int) ([]*Event, error)
}
