package core

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// IBlockService discrete time-step source. One block is the MEV window:
// at most one state-mutating operation per account is accepted per block.
type IBlockService interface {
	CurrentBlock(ctx context.Context) (int64, error)
}

// OperationLock same-block guard row; unique on (user, block)
type OperationLock struct {
	ID        uint64    `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id"`
	UserID    string    `sql:"size:36;unique_index:lock_user_block_idx" json:"user_id"`
	Block     int64     `sql:"unique_index:lock_user_block_idx" json:"block"`
	CreatedAt time.Time `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`
}

// IGuardStore same-block operation guard. Acquire fails with
// ErrMEVSameBlockOperation when the account already mutated state
// in this block.
type IGuardStore interface {
	Acquire(ctx context.Context, userID string, block int64) error
}

// TxRunner the external transactional substrate: fn either commits as a
// whole or rolls back as a whole.
type TxRunner interface {
	Tx(ctx context.Context, fn func(ctx context.Context) error) error
}

// IProtocolStore protocol config store interface
type IProtocolStore interface {
	Find(ctx context.Context) (*ProtocolConfig, error)
	Save(ctx context.Context, config *ProtocolConfig) error
}

// IProtocolService privileged protocol configuration interface
type IProtocolService interface {
	// LoadProtocolConfig validates and installs a new protocol config;
	// admin only, invalid values are rejected rather than clamped
	LoadProtocolConfig(ctx context.Context, caller string, config *ProtocolConfig) error
	Current(ctx context.Context) (*ProtocolConfig, error)
	// SetStake privileged update of a liquidator eligibility stake
	SetStake(ctx context.Context, caller, userID string, amount decimal.Decimal) error
}
