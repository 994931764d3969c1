package core

import "strconv"

// ErrorCode int
type ErrorCode int

const (
	// ErrUnknown unknown
	ErrUnknown ErrorCode = 100000
	// ErrOperationForbidden privileged operation called by non-privileged caller
	ErrOperationForbidden ErrorCode = 100001
	// ErrAlreadyInitialized lifecycle operation invoked twice
	ErrAlreadyInitialized ErrorCode = 100002
	// ErrInvalidConfig protocol config out of bounds
	ErrInvalidConfig ErrorCode = 100003

	// ErrZeroAmount zero or negative amount
	ErrZeroAmount ErrorCode = 100100
	// ErrZeroAddress empty account identity
	ErrZeroAddress ErrorCode = 100101
	// ErrInvalidAmount invalid amount
	ErrInvalidAmount ErrorCode = 100102
	// ErrInvalidPosition position index out of range for owner
	ErrInvalidPosition ErrorCode = 100103

	// ErrIsolatedAssetViolation isolated-tier asset supplied to a cross position
	ErrIsolatedAssetViolation ErrorCode = 100200
	// ErrInvalidAssetForIsolation isolated position already holds a different asset
	ErrInvalidAssetForIsolation ErrorCode = 100201
	// ErrCreditLimitExceeded debt above credit limit
	ErrCreditLimitExceeded ErrorCode = 100202
	// ErrIsolationDebtCapExceeded isolated debt above the asset cap
	ErrIsolationDebtCapExceeded ErrorCode = 100203
	// ErrAssetCapacityReached per-asset supply cap reached
	ErrAssetCapacityReached ErrorCode = 100204
	// ErrPoolLiquidityLimitReached pool-level supply cap reached
	ErrPoolLiquidityLimitReached ErrorCode = 100205

	// ErrLowLiquidity vault cannot fund the request
	ErrLowLiquidity ErrorCode = 100300

	// ErrNotLiquidatable position is healthy
	ErrNotLiquidatable ErrorCode = 100400
	// ErrNotEnoughGovernanceTokens liquidator stake below threshold
	ErrNotEnoughGovernanceTokens ErrorCode = 100401

	// ErrMEVSameBlockOperation second state change for one account in one block
	ErrMEVSameBlockOperation ErrorCode = 100500
	// ErrMEVSlippageExceeded executed value outside the quoted band
	ErrMEVSlippageExceeded ErrorCode = 100501

	// ErrFlashLoanFailed flash loan callback rejected
	ErrFlashLoanFailed ErrorCode = 100600
	// ErrRepaymentFailed flash loan repaid less than amount + fee
	ErrRepaymentFailed ErrorCode = 100601

	// ErrAssetNotFound asset not registered
	ErrAssetNotFound ErrorCode = 100700
	// ErrPriceNotFound no price for asset
	ErrPriceNotFound ErrorCode = 100701
	// ErrStalePrice price older than the freshness window
	ErrStalePrice ErrorCode = 100702

	// ErrAccrualOverflow elapsed time or rate would overflow the accrual product
	ErrAccrualOverflow ErrorCode = 100800
)

func (e ErrorCode) String() string {
	return strconv.Itoa(int(e))
}

func (e ErrorCode) Error() string {
	return e.String()
}
