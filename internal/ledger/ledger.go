// internal/ledger/ledger.go

// Package ledger owns the asset funding state: it settles investments
// against assets and emits one audit transaction per accepted investment.
// All mutations run inside a single transactional scope against a
// row-locked view of the asset, so concurrent settlements against the same
// asset cannot jointly over-fund it.
package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/desoy/desoy-backend/internal/models"
)

var oneHundred = decimal.NewFromInt(100)

// Tx is the per-transaction view of the persistence store. AssetForUpdate
// must return a view of the asset that stays stable for the remainder of
// the transaction (SELECT ... FOR UPDATE or an equivalent serialized check).
type Tx interface {
	AssetForUpdate(id uuid.UUID) (*models.Asset, error)
	InvestmentForUpdate(id uuid.UUID) (*models.Investment, error)
	SaveAsset(asset *models.Asset) error
	CreateInvestment(investment *models.Investment) error
	DeleteInvestment(investment *models.Investment) error
	CreateTransaction(transaction *models.Transaction) error
}

// Store provides atomic multi-row read-modify-write. Transact runs fn inside
// one transaction and rolls everything back if fn returns an error.
type Store interface {
	Transact(ctx context.Context, fn func(tx Tx) error) error
}

type Ledger struct {
	store Store
}

func New(store Store) *Ledger {
	return &Ledger{store: store}
}

type SettlementRequest struct {
	AssetID    uuid.UUID
	InvestorID uuid.UUID
	Amount     decimal.Decimal
}

// Settlement is everything a successful settlement persisted.
type Settlement struct {
	Investment  *models.Investment  `json:"investment"`
	Asset       *models.Asset       `json:"asset"`
	Transaction *models.Transaction `json:"transaction"`
}

// Settle validates and records an investment, updates the asset's funding
// state and writes the audit transaction, all-or-nothing. Validation errors
// (ErrAssetNotFound, ErrAssetNotOpen, ErrInvalidAmount) leave the store
// untouched; a store failure during the write phase rolls back every row.
func (l *Ledger) Settle(ctx context.Context, req SettlementRequest) (*Settlement, error) {
	var result Settlement
	err := l.store.Transact(ctx, func(tx Tx) error {
		asset, err := tx.AssetForUpdate(req.AssetID)
		if err != nil {
			return err
		}

		if !asset.OpenForInvestment() {
			return ErrAssetNotOpen
		}

		totalValue := asset.TotalValue()
		remaining := totalValue.Sub(asset.FundedAmount)
		if !req.Amount.IsPositive() || req.Amount.GreaterThan(remaining) {
			return ErrInvalidAmount
		}

		// Percentage snapshot, fixed at this instant. Not recomputed if
		// the asset's total value ever changes.
		percentage := req.Amount.Div(totalValue).Mul(oneHundred).Round(2)

		investment := &models.Investment{
			AssetID:              req.AssetID,
			InvestorID:           req.InvestorID,
			Amount:               req.Amount,
			InvestmentPercentage: percentage,
			Status:               models.InvestmentStatusPending,
			InvestmentDate:       time.Now(),
		}
		if err := tx.CreateInvestment(investment); err != nil {
			return err
		}

		asset.FundedAmount = asset.FundedAmount.Add(req.Amount)
		asset.FundedPercentage = asset.FundedAmount.Div(totalValue).Mul(oneHundred).Round(2)
		if asset.FundedAmount.GreaterThanOrEqual(totalValue) {
			asset.Status = models.AssetStatusFullyFunded
		} else if asset.FundedAmount.IsPositive() {
			asset.Status = models.AssetStatusPartiallyFunded
		}
		if err := tx.SaveAsset(asset); err != nil {
			return err
		}

		assetID := req.AssetID
		transaction := &models.Transaction{
			Type:       models.TransactionTypeInvestment,
			FromUserID: req.InvestorID,
			ToUserID:   asset.ProducerID,
			AssetID:    &assetID,
			Amount:     req.Amount,
			Status:     models.TransactionStatusPending,
			Metadata:   models.JSONB{"investment_id": investment.ID.String()},
		}
		if err := tx.CreateTransaction(transaction); err != nil {
			return err
		}

		result = Settlement{Investment: investment, Asset: asset, Transaction: transaction}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &result, nil
}

// Cancel reverses a still-pending investment owned by investorID: the
// investment row is soft-deleted, the asset's funded amount, percentage and
// status are restored, and a refund transaction is appended. Confirmed
// investments cannot be cancelled, and neither can investments in assets
// that have already left the funding phase (in progress, delivered,
// defaulted) — their funding state is settled history at that point.
func (l *Ledger) Cancel(ctx context.Context, investmentID, investorID uuid.UUID) (*Settlement, error) {
	var result Settlement
	err := l.store.Transact(ctx, func(tx Tx) error {
		investment, err := tx.InvestmentForUpdate(investmentID)
		if err != nil {
			return err
		}
		if investment.InvestorID != investorID {
			return ErrInvestmentNotFound
		}
		if investment.Status != models.InvestmentStatusPending {
			return ErrInvestmentNotPending
		}

		asset, err := tx.AssetForUpdate(investment.AssetID)
		if err != nil {
			return err
		}
		if asset.Status != models.AssetStatusPartiallyFunded && asset.Status != models.AssetStatusFullyFunded {
			return ErrAssetFundingLocked
		}

		totalValue := asset.TotalValue()
		asset.FundedAmount = asset.FundedAmount.Sub(investment.Amount)
		asset.FundedPercentage = asset.FundedAmount.Div(totalValue).Mul(oneHundred).Round(2)
		if !asset.FundedAmount.IsPositive() {
			asset.FundedAmount = decimal.Zero
			asset.FundedPercentage = decimal.Zero
			asset.Status = models.AssetStatusTokenized
		} else if asset.FundedAmount.LessThan(totalValue) {
			asset.Status = models.AssetStatusPartiallyFunded
		}
		if err := tx.SaveAsset(asset); err != nil {
			return err
		}

		if err := tx.DeleteInvestment(investment); err != nil {
			return err
		}

		assetID := asset.ID
		refund := &models.Transaction{
			Type:       models.TransactionTypeRefund,
			FromUserID: asset.ProducerID,
			ToUserID:   investment.InvestorID,
			AssetID:    &assetID,
			Amount:     investment.Amount,
			Status:     models.TransactionStatusPending,
			Metadata:   models.JSONB{"investment_id": investment.ID.String()},
		}
		if err := tx.CreateTransaction(refund); err != nil {
			return err
		}

		result = Settlement{Investment: investment, Asset: asset, Transaction: refund}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &result, nil
}
