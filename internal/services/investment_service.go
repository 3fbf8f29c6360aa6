// internal/services/investment_service.go
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/desoy/desoy-backend/internal/ledger"
	"github.com/desoy/desoy-backend/internal/models"
	"github.com/desoy/desoy-backend/internal/utils"
)

// FundingRefunder reverses the payment leg of a cancelled investment.
// *PaymentService satisfies it; investments funded on chain have no
// payment leg and the refund is a no-op there.
type FundingRefunder interface {
	RefundFunding(investmentID uuid.UUID) error
}

// InvestmentService exposes the funding ledger to the API layer and handles
// the read/confirm paths around it. All funding-state mutation goes through
// the ledger; this service never touches funded_amount directly.
type InvestmentService struct {
	db      *gorm.DB
	ledger  *ledger.Ledger
	refunds FundingRefunder
}

type CreateInvestmentRequest struct {
	AssetID uuid.UUID       `json:"asset_id" validate:"required"`
	Amount  decimal.Decimal `json:"amount" validate:"required"`
}

type ConfirmInvestmentRequest struct {
	TransactionHash string `json:"transaction_hash" validate:"required,max=128"`
}

type UpdateInvestmentRequest struct {
	Metadata map[string]interface{} `json:"metadata" validate:"required"`
}

func NewInvestmentService(db *gorm.DB, l *ledger.Ledger, refunds FundingRefunder) *InvestmentService {
	return &InvestmentService{
		db:      db,
		ledger:  l,
		refunds: refunds,
	}
}

// CreateInvestment settles a new investment through the ledger.
func (s *InvestmentService) CreateInvestment(ctx context.Context, investorID uuid.UUID, req *CreateInvestmentRequest) (*ledger.Settlement, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	return s.ledger.Settle(ctx, ledger.SettlementRequest{
		AssetID:    req.AssetID,
		InvestorID: investorID,
		Amount:     req.Amount,
	})
}

// GetInvestment returns an investment visible to the caller: the investor
// who made it or the producer of the underlying asset.
func (s *InvestmentService) GetInvestment(id, callerID uuid.UUID) (*models.Investment, error) {
	var investment models.Investment
	err := s.db.Preload("Asset").Preload("Investor").First(&investment, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if investment.InvestorID != callerID && investment.Asset.ProducerID != callerID {
		return nil, ErrUnauthorized
	}

	return &investment, nil
}

// ListInvestments returns the caller's own investments.
func (s *InvestmentService) ListInvestments(investorID uuid.UUID, params utils.PaginationParams) (*utils.PaginationResult, error) {
	var investments []models.Investment
	var total int64

	query := s.db.Model(&models.Investment{}).
		Preload("Asset").
		Where("investor_id = ?", investorID)

	if params.Status != "" {
		query = query.Where("status = ?", params.Status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count investments: %w", err)
	}

	allowedSortFields := []string{"created_at", "investment_date", "amount"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	if err := query.Find(&investments).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch investments: %w", err)
	}

	result := utils.CreatePaginationResult(investments, total, params)
	return &result, nil
}

// ConfirmInvestment marks a pending investment as confirmed once its payment
// leg has settled, attaches the settlement hash and confirms the matching
// audit transaction.
func (s *InvestmentService) ConfirmInvestment(id, investorID uuid.UUID, req *ConfirmInvestmentRequest) (*models.Investment, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var investment models.Investment
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&investment, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("database error: %w", err)
		}
		if investment.InvestorID != investorID {
			return ErrUnauthorized
		}
		if investment.Status != models.InvestmentStatusPending {
			return ErrInvalidState
		}

		updates := map[string]interface{}{
			"status":           models.InvestmentStatusConfirmed,
			"transaction_hash": req.TransactionHash,
		}
		if err := tx.Model(&investment).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to confirm investment: %w", err)
		}

		txUpdates := map[string]interface{}{
			"status":             models.TransactionStatusConfirmed,
			"blockchain_tx_hash": req.TransactionHash,
		}
		err := tx.Model(&models.Transaction{}).
			Where("type = ? AND metadata->>'investment_id' = ?", models.TransactionTypeInvestment, id.String()).
			Updates(txUpdates).Error
		if err != nil {
			return fmt.Errorf("failed to confirm audit transaction: %w", err)
		}

		event := &models.ContractEvent{
			Type:        models.EventTypeInvestmentMade,
			AssetID:     &investment.AssetID,
			TxSignature: req.TransactionHash,
			Payload: models.JSONB{
				"investment_id": investment.ID.String(),
				"amount":        investment.Amount.String(),
			},
		}
		if err := tx.Create(event).Error; err != nil {
			return fmt.Errorf("failed to record contract event: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"investment_id": investment.ID,
		"asset_id":      investment.AssetID,
		"tx_hash":       req.TransactionHash,
	}).Info("Investment confirmed")

	return &investment, nil
}

// UpdateInvestment allows the investor to amend free-form metadata only.
// Amount, percentage and asset linkage are immutable after settlement.
func (s *InvestmentService) UpdateInvestment(id, investorID uuid.UUID, req *UpdateInvestmentRequest) (*models.Investment, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var investment models.Investment
	if err := s.db.First(&investment, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	if investment.InvestorID != investorID {
		return nil, ErrUnauthorized
	}

	if err := s.db.Model(&investment).Update("metadata", models.JSONB(req.Metadata)).Error; err != nil {
		return nil, fmt.Errorf("failed to update investment: %w", err)
	}

	return &investment, nil
}

// CancelInvestment reverses the caller's still-pending investment through
// the ledger, then pushes back any payment already taken for it. A refund
// failure does not undo the committed ledger reversal; the refund
// transaction stays pending for a retry.
func (s *InvestmentService) CancelInvestment(ctx context.Context, id, investorID uuid.UUID) (*ledger.Settlement, error) {
	result, err := s.ledger.Cancel(ctx, id, investorID)
	if err != nil {
		return nil, err
	}

	if s.refunds != nil {
		if err := s.refunds.RefundFunding(id); err != nil {
			logrus.WithFields(logrus.Fields{
				"investment_id": id,
				"error":         err,
			}).Error("Failed to refund cancelled investment")
		}
	}

	return result, nil
}
