// internal/services/payment_service.go
package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/paymentintent"
	"github.com/stripe/stripe-go/v74/refund"
	"gorm.io/gorm"

	"github.com/desoy/desoy-backend/internal/config"
	"github.com/desoy/desoy-backend/internal/models"
	"github.com/desoy/desoy-backend/internal/utils"
)

var oneHundredCents = decimal.NewFromInt(100)

// PaymentService handles the fiat funding leg of pending investments via
// Stripe. Settlement state still belongs to the ledger; this service only
// moves investments from pending to confirmed once money actually arrived.
type PaymentService struct {
	db  *gorm.DB
	cfg *config.Config
}

type FundingIntentRequest struct {
	InvestmentID uuid.UUID `json:"investment_id" validate:"required"`
	Currency     string    `json:"currency,omitempty" validate:"omitempty,len=3"`
}

type FundingIntentResponse struct {
	ClientSecret string `json:"client_secret"`
	PaymentID    string `json:"payment_id"`
	Status       string `json:"status"`
}

type ConfirmFundingRequest struct {
	InvestmentID    uuid.UUID `json:"investment_id" validate:"required"`
	PaymentIntentID string    `json:"payment_intent_id" validate:"required"`
}

func NewPaymentService(db *gorm.DB, cfg *config.Config) *PaymentService {
	stripe.Key = cfg.Payment.StripeSecretKey

	return &PaymentService{
		db:  db,
		cfg: cfg,
	}
}

// CreateFundingIntent opens a Stripe payment intent for the caller's own
// pending investment, for its exact settled amount.
func (s *PaymentService) CreateFundingIntent(investorID uuid.UUID, req *FundingIntentRequest) (*FundingIntentResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	investment, err := s.ownedPendingInvestment(req.InvestmentID, investorID)
	if err != nil {
		return nil, err
	}

	currency := req.Currency
	if currency == "" {
		currency = "usd"
	}

	amountInCents := investment.Amount.Mul(oneHundredCents).IntPart()

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amountInCents),
		Currency: stripe.String(currency),
	}
	params.AddMetadata("investment_id", investment.ID.String())
	params.AddMetadata("asset_id", investment.AssetID.String())
	params.AddMetadata("investor_id", investorID.String())

	pi, err := paymentintent.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}

	return &FundingIntentResponse{
		ClientSecret: pi.ClientSecret,
		PaymentID:    pi.ID,
		Status:       string(pi.Status),
	}, nil
}

// ConfirmFunding checks the payment intent with Stripe and, if it succeeded,
// confirms the investment and its audit transaction in one transaction.
func (s *PaymentService) ConfirmFunding(investorID uuid.UUID, req *ConfirmFundingRequest) (*models.Investment, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	investment, err := s.ownedPendingInvestment(req.InvestmentID, investorID)
	if err != nil {
		return nil, err
	}

	pi, err := paymentintent.Get(req.PaymentIntentID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get payment intent: %w", err)
	}
	if pi.Metadata["investment_id"] != investment.ID.String() {
		return nil, errors.New("payment intent does not belong to this investment")
	}

	switch pi.Status {
	case stripe.PaymentIntentStatusSucceeded:
	case stripe.PaymentIntentStatusRequiresAction, stripe.PaymentIntentStatusRequiresConfirmation:
		return nil, errors.New("payment has not completed yet")
	default:
		return nil, fmt.Errorf("payment is in state %s", pi.Status)
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(investment).Update("status", models.InvestmentStatusConfirmed).Error; err != nil {
			return fmt.Errorf("failed to confirm investment: %w", err)
		}

		txUpdates := map[string]interface{}{
			"status":            models.TransactionStatusConfirmed,
			"payment_reference": pi.ID,
		}
		err := tx.Model(&models.Transaction{}).
			Where("type = ? AND metadata->>'investment_id' = ?", models.TransactionTypeInvestment, investment.ID.String()).
			Updates(txUpdates).Error
		if err != nil {
			return fmt.Errorf("failed to confirm audit transaction: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"investment_id":  investment.ID,
		"payment_intent": pi.ID,
	}).Info("Investment funding confirmed")

	investment.Status = models.InvestmentStatusConfirmed
	return investment, nil
}

// RefundFunding pushes a Stripe refund for a cancelled investment whose
// original payment went through Stripe, and confirms the ledger's refund
// transaction. Investments funded on chain have no Stripe leg to refund.
func (s *PaymentService) RefundFunding(investmentID uuid.UUID) error {
	var original models.Transaction
	err := s.db.Where("type = ? AND metadata->>'investment_id' = ?",
		models.TransactionTypeInvestment, investmentID.String()).
		First(&original).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("database error: %w", err)
	}

	if original.PaymentReference != "" {
		params := &stripe.RefundParams{
			PaymentIntent: stripe.String(original.PaymentReference),
			Reason:        stripe.String("requested_by_customer"),
		}
		if _, err := refund.New(params); err != nil {
			return fmt.Errorf("failed to process refund: %w", err)
		}
	}

	err = s.db.Model(&models.Transaction{}).
		Where("type = ? AND metadata->>'investment_id' = ?", models.TransactionTypeRefund, investmentID.String()).
		Update("status", models.TransactionStatusConfirmed).Error
	if err != nil {
		return fmt.Errorf("failed to update refund transaction: %w", err)
	}

	return nil
}

// GetPaymentHistory lists the caller's transactions, newest first.
func (s *PaymentService) GetPaymentHistory(userID uuid.UUID, params utils.PaginationParams) (*utils.PaginationResult, error) {
	var transactions []models.Transaction
	var total int64

	query := s.db.Model(&models.Transaction{}).
		Where("from_user_id = ? OR to_user_id = ?", userID, userID)

	if params.Status != "" {
		query = query.Where("status = ?", params.Status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count transactions: %w", err)
	}

	allowedSortFields := []string{"created_at", "amount"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	if err := query.Find(&transactions).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch transactions: %w", err)
	}

	result := utils.CreatePaginationResult(transactions, total, params)
	return &result, nil
}

func (s *PaymentService) ownedPendingInvestment(id, investorID uuid.UUID) (*models.Investment, error) {
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
	if investment.Status != models.InvestmentStatusPending {
		return nil, ErrInvalidState
	}
	return &investment, nil
}
