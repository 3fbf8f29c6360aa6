// internal/ledger/errors.go
package ledger

import "errors"

var (
	// ErrAssetNotFound means the asset referenced by a settlement request
	// does not exist.
	ErrAssetNotFound = errors.New("asset not found")

	// ErrAssetNotOpen means the asset is not in a status that accepts new
	// investment (only tokenized and partially funded assets do).
	ErrAssetNotOpen = errors.New("asset is not available for investment")

	// ErrInvalidAmount means the requested amount is non-positive or
	// exceeds the asset's remaining funding.
	ErrInvalidAmount = errors.New("investment amount exceeds remaining funding needed")

	// ErrInvestmentNotFound means the investment referenced by a cancel
	// request does not exist for the given asset and investor.
	ErrInvestmentNotFound = errors.New("investment not found")

	// ErrInvestmentNotPending means a cancel was requested for an
	// investment that has already been confirmed on-chain.
	ErrInvestmentNotPending = errors.New("investment is no longer pending")

	// ErrAssetFundingLocked means the asset has left the funding phase
	// (delivery underway, defaulted), so its funding state can no longer
	// be reversed by a cancellation.
	ErrAssetFundingLocked = errors.New("asset funding can no longer be reversed")
)
