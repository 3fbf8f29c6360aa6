// internal/models/common.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// JSONB type for PostgreSQL
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}

	return json.Unmarshal(bytes, j)
}

// Enums
type UserRole string

const (
	UserRoleProducer UserRole = "producer"
	UserRoleInvestor UserRole = "investor"
	UserRoleAdmin    UserRole = "admin"
)

type UserStatus string

const (
	UserStatusPending   UserStatus = "pending"
	UserStatusActive    UserStatus = "active"
	UserStatusSuspended UserStatus = "suspended"
	UserStatusBlocked   UserStatus = "blocked"
)

type VerificationStatus string

const (
	VerificationStatusUnverified VerificationStatus = "unverified"
	VerificationStatusPending    VerificationStatus = "pending"
	VerificationStatusVerified   VerificationStatus = "verified"
	VerificationStatusRejected   VerificationStatus = "rejected"
)

type AssetType string

const (
	AssetTypeSoybean AssetType = "soybean"
	AssetTypeCorn    AssetType = "corn"
	AssetTypeWheat   AssetType = "wheat"
	AssetTypeCoffee  AssetType = "coffee"
	AssetTypeCotton  AssetType = "cotton"
)

type AssetStatus string

const (
	AssetStatusPending          AssetStatus = "pending"
	AssetStatusTokenized        AssetStatus = "tokenized"
	AssetStatusPartiallyFunded  AssetStatus = "partially_funded"
	AssetStatusFullyFunded      AssetStatus = "fully_funded"
	AssetStatusInProgress       AssetStatus = "in_progress"
	AssetStatusReadyForDelivery AssetStatus = "ready_for_delivery"
	AssetStatusDelivered        AssetStatus = "delivered"
	AssetStatusDefaulted        AssetStatus = "defaulted"
)

type UpdateType string

const (
	UpdateTypeWeather       UpdateType = "weather"
	UpdateTypeGrowth        UpdateType = "growth"
	UpdateTypePestControl   UpdateType = "pest_control"
	UpdateTypeIrrigation    UpdateType = "irrigation"
	UpdateTypeFertilization UpdateType = "fertilization"
	UpdateTypeHarvest       UpdateType = "harvest"
	UpdateTypeDelivery      UpdateType = "delivery"
	UpdateTypeQualityCheck  UpdateType = "quality_check"
)

type InvestmentStatus string

const (
	InvestmentStatusPending   InvestmentStatus = "pending"
	InvestmentStatusConfirmed InvestmentStatus = "confirmed"
	InvestmentStatusActive    InvestmentStatus = "active"
	InvestmentStatusCompleted InvestmentStatus = "completed"
	InvestmentStatusDefaulted InvestmentStatus = "defaulted"
)

type TransactionType string

const (
	TransactionTypeInvestment           TransactionType = "investment"
	TransactionTypeWithdrawal           TransactionType = "withdrawal"
	TransactionTypeDeliveryConfirmation TransactionType = "delivery_confirmation"
	TransactionTypeTokenTransfer        TransactionType = "token_transfer"
	TransactionTypeRefund               TransactionType = "refund"
)

type TransactionStatus string

const (
	TransactionStatusPending    TransactionStatus = "pending"
	TransactionStatusProcessing TransactionStatus = "processing"
	TransactionStatusConfirmed  TransactionStatus = "confirmed"
	TransactionStatusFailed     TransactionStatus = "failed"
	TransactionStatusReverted   TransactionStatus = "reverted"
)

type EventType string

const (
	EventTypeTokenMinted       EventType = "token_minted"
	EventTypeTokenTransferred  EventType = "token_transferred"
	EventTypeInvestmentMade    EventType = "investment_made"
	EventTypeDeliveryConfirmed EventType = "delivery_confirmed"
	EventTypeOracleUpdate      EventType = "oracle_update"
)
