package core

import (
	"time"

	"github.com/asaskevich/govalidator"
	"github.com/fox-one/pkg/store/db"
	"github.com/shopspring/decimal"
)

// Config lever node config
type Config struct {
	App       App       `json:"app"`
	DB        db.Config `json:"db"`
	PriceFeed PriceFeed `json:"price_feed"`
	Admins    []string  `json:"admins"`
}

// App app config
type App struct {
	// Genesis unix seconds of block zero
	Genesis int64 `json:"genesis"`
	// SecondsPerBlock length of one discrete time-step
	SecondsPerBlock int64 `json:"seconds_per_block"`
	// Operator account credited with commission shares
	Operator string `json:"operator"`
	// MaxPriceAgeSeconds prices older than this are rejected as stale
	MaxPriceAgeSeconds int64  `json:"max_price_age_seconds"`
	Location           string `json:"location"`
}

// PriceFeed external price endpoint polled by the pricefeed worker
type PriceFeed struct {
	EndPoint string `json:"end_point"`
}

// IsAdmin check if the user is admin
func (c *Config) IsAdmin(userID string) bool {
	if len(c.Admins) <= 0 {
		return false
	}

	for _, a := range c.Admins {
		if a == userID {
			return true
		}
	}

	return false
}

// MaxPriceAge price freshness window
func (c *Config) MaxPriceAge() time.Duration {
	if c.App.MaxPriceAgeSeconds <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(c.App.MaxPriceAgeSeconds) * time.Second
}

// ProtocolConfig tunable protocol parameters, installed by governance.
// Out-of-bounds values are rejected on load, never clamped.
type ProtocolConfig struct {
	ID uint64 `sql:"PRIMARY_KEY" json:"id"`
	// ProfitTargetRate commission fraction of realized lender yield, [0, 0.5)
	ProfitTargetRate decimal.Decimal `sql:"type:decimal(32,16)" json:"profit_target_rate"`
	// BorrowRate baseline annualized borrow rate, (0, 1]
	BorrowRate decimal.Decimal `sql:"type:decimal(32,16)" json:"borrow_rate"`
	// Multiplier utilization slope of the rate model, per year
	Multiplier decimal.Decimal `sql:"type:decimal(32,16)" json:"multiplier"`
	// JumpMultiplier slope beyond the kink, per year
	JumpMultiplier decimal.Decimal `sql:"type:decimal(32,16)" json:"jump_multiplier"`
	// Kink utilization point where the jump slope starts, (0, 1]
	Kink decimal.Decimal `sql:"type:decimal(32,16)" json:"kink"`
	// RewardRate per-block reward emission
	RewardRate decimal.Decimal `sql:"type:decimal(32,16)" json:"reward_rate"`
	// LiquidatorThreshold minimum governance stake to liquidate
	LiquidatorThreshold decimal.Decimal `sql:"type:decimal(32,16)" json:"liquidator_threshold"`
	// FlashLoanFee basis points, [0, 500]
	FlashLoanFee int64 `sql:"default:0" json:"flash_loan_fee"`
	// PoolSupplyCap total collateral value the protocol accepts, 0 = unlimited
	PoolSupplyCap decimal.Decimal `sql:"type:decimal(32,16)" json:"pool_supply_cap"`
	Version       int64           `sql:"default:0" json:"version"`
	CreatedAt     time.Time       `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt     time.Time       `sql:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// Validate reject out-of-bounds parameters
func (c *ProtocolConfig) Validate() error {
	profit, _ := c.ProfitTargetRate.Float64()
	if !govalidator.InRangeFloat64(profit, 0, 0.5) || c.ProfitTargetRate.GreaterThanOrEqual(decimal.NewFromFloat(0.5)) {
		return ErrInvalidConfig
	}

	borrow, _ := c.BorrowRate.Float64()
	if !govalidator.InRangeFloat64(borrow, 0, 1) || !c.BorrowRate.IsPositive() {
		return ErrInvalidConfig
	}

	if c.Multiplier.IsNegative() || c.JumpMultiplier.IsNegative() {
		return ErrInvalidConfig
	}

	kink, _ := c.Kink.Float64()
	if !govalidator.InRangeFloat64(kink, 0, 1) {
		return ErrInvalidConfig
	}

	if c.RewardRate.IsNegative() || c.LiquidatorThreshold.IsNegative() {
		return ErrInvalidConfig
	}

	if c.FlashLoanFee < 0 || c.FlashLoanFee > 500 {
		return ErrInvalidConfig
	}

	if c.PoolSupplyCap.IsNegative() {
		return ErrInvalidConfig
	}

	return nil
}
