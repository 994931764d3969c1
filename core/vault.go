package core

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// VaultState the pooled liquidity vault totals. TotalBase counts custodied
// cash plus outstanding receivables, so totalAssets() == TotalBase and cash
// on hand is TotalBase - TotalBorrow. Only accounting entry points move
// TotalBase; direct donations never do.
type VaultState struct {
	ID uint64 `sql:"PRIMARY_KEY" json:"id"`
	// TotalBase assets custodied + accounted, base currency
	TotalBase decimal.Decimal `sql:"type:decimal(32,16)" json:"total_base"`
	// TotalBorrow outstanding principal + accrued interest owed to the vault
	TotalBorrow decimal.Decimal `sql:"type:decimal(32,16)" json:"total_borrow"`
	// TotalSuppliedLiquidity lender principal currently supplied
	TotalSuppliedLiquidity decimal.Decimal `sql:"type:decimal(32,16)" json:"total_supplied_liquidity"`
	// TotalAccruedInterest lifetime yield
	TotalAccruedInterest decimal.Decimal `sql:"type:decimal(32,16)" json:"total_accrued_interest"`
	TotalShares          decimal.Decimal `sql:"type:decimal(32,16)" json:"total_shares"`
	GenesisBlock         int64           `sql:"default:0" json:"genesis_block"`
	Version              int64           `sql:"default:0" json:"version"`
	CreatedAt            time.Time       `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt            time.Time       `sql:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// SharePrice totalAssets / totalShares, 1 when the vault is empty
func (v *VaultState) SharePrice() decimal.Decimal {
	if !v.TotalShares.IsPositive() {
		return decimal.New(1, 0)
	}
	return v.TotalBase.Div(v.TotalShares)
}

// Cash liquidity available for borrows and flash loans
func (v *VaultState) Cash() decimal.Decimal {
	return v.TotalBase.Sub(v.TotalBorrow)
}

// Lender per-account share and cost-basis record, used for
// commission-on-realized-yield accounting
type Lender struct {
	ID      uint64          `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id"`
	UserID  string          `sql:"size:36;unique_index:lender_user_idx" json:"user_id"`
	Shares  decimal.Decimal `sql:"type:decimal(32,16)" json:"shares"`
	Principal decimal.Decimal `sql:"type:decimal(32,16)" json:"principal"`
	Version   int64           `sql:"default:0" json:"version"`
	CreatedAt time.Time       `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time       `sql:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// FlashLoanReceiver callback contract for flash loans. The receiver reports
// the amount it transfers back; anything below amount + fee aborts the loan.
type FlashLoanReceiver interface {
	OnFlashLoan(ctx context.Context, amount, fee decimal.Decimal, data []byte) (repayment decimal.Decimal, ok bool, err error)
}

// IVaultStore vault store interface
type IVaultStore interface {
	Create(ctx context.Context, vault *VaultState) error
	Find(ctx context.Context) (*VaultState, error)
	Update(ctx context.Context, vault *VaultState) error
}

// ILenderStore lender store interface
type ILenderStore interface {
	Find(ctx context.Context, userID string) (*Lender, error)
	Save(ctx context.Context, lender *Lender) error
	All(ctx context.Context) ([]*Lender, error)
}

// IVaultService share-based liquidity vault.
// Borrow and Repay are core-only privileged calls.
type IVaultService interface {
	Bootstrap(ctx context.Context, caller string) error
	Deposit(ctx context.Context, userID string, amount, expectedShares decimal.Decimal, maxSlippageBps int64) (decimal.Decimal, error)
	Withdraw(ctx context.Context, userID string, amount, expectedShares decimal.Decimal, maxSlippageBps int64) (decimal.Decimal, error)
	Mint(ctx context.Context, userID string, shares, expectedAmount decimal.Decimal, maxSlippageBps int64) (decimal.Decimal, error)
	Redeem(ctx context.Context, userID string, shares, expectedAmount decimal.Decimal, maxSlippageBps int64) (decimal.Decimal, error)
	Borrow(ctx context.Context, amount decimal.Decimal, recipient string) error
	Repay(ctx context.Context, amount decimal.Decimal, payer string) error
	BoostYield(ctx context.Context, attributedTo string, amount decimal.Decimal) error
	FlashLoan(ctx context.Context, userID string, receiver FlashLoanReceiver, amount decimal.Decimal, data []byte) error
	TotalAssets(ctx context.Context) (decimal.Decimal, error)
	TotalBorrow(ctx context.Context) (decimal.Decimal, error)
	Utilization(ctx context.Context) (decimal.Decimal, error)
	GetSupplyRate(ctx context.Context) (decimal.Decimal, error)
	GetBorrowRate(ctx context.Context, tier AssetTier) (decimal.Decimal, error)
}
