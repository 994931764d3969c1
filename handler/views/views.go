// Package views holds the wire shapes of the rest api.
package views

import (
	"time"

	"lever/core"

	"github.com/shopspring/decimal"
)

// Asset asset config with its latest price
type Asset struct {
	core.AssetConfig
	Tier           string          `json:"tier_name"`
	Price          decimal.Decimal `json:"price"`
	PriceUpdatedAt time.Time       `json:"price_updated_at,omitempty"`
}

// Position position with its derived limits
type Position struct {
	core.Position
	Status           string                    `json:"status_name"`
	Collaterals      []*core.CollateralHolding `json:"collaterals"`
	TotalValue       decimal.Decimal           `json:"total_value"`
	CreditLimit      decimal.Decimal           `json:"credit_limit"`
	LiquidationLevel decimal.Decimal           `json:"liquidation_level"`
	CurrentDebt      decimal.Decimal           `json:"current_debt"`
	HealthFactor     decimal.Decimal           `json:"health_factor"`
}

// Vault vault totals with derived rates
type Vault struct {
	core.VaultState
	SharePrice  decimal.Decimal            `json:"share_price"`
	Cash        decimal.Decimal            `json:"cash"`
	Utilization decimal.Decimal            `json:"utilization"`
	SupplyRate  decimal.Decimal            `json:"supply_rate"`
	BorrowRates map[string]decimal.Decimal `json:"borrow_rates"`
}
