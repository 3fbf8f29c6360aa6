// internal/models/transaction.go
package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Transaction is the append-only audit record of value movement. Exactly one
// row is written per accepted investment, atomically with the investment and
// the asset funding update.
type Transaction struct {
	BaseModel
	Type             TransactionType   `json:"type" gorm:"type:varchar(30);not null;index"`
	FromUserID       uuid.UUID         `json:"from_user_id" gorm:"type:uuid;not null;index"`
	ToUserID         uuid.UUID         `json:"to_user_id" gorm:"type:uuid;not null;index"`
	AssetID          *uuid.UUID        `json:"asset_id,omitempty" gorm:"type:uuid;index"`
	Amount           decimal.Decimal   `json:"amount" gorm:"type:decimal(12,2);not null"`
	Status           TransactionStatus `json:"status" gorm:"type:varchar(20);default:'pending';index"`
	BlockchainTxHash string            `json:"blockchain_tx_hash,omitempty" gorm:"size:128"`
	PaymentReference string            `json:"payment_reference,omitempty" gorm:"size:255"`
	Metadata         JSONB             `json:"metadata,omitempty" gorm:"type:jsonb"`

	// Relationships
	FromUser     User   `json:"from_user,omitempty" gorm:"foreignKey:FromUserID"`
	ToUser       User   `json:"to_user,omitempty" gorm:"foreignKey:ToUserID"`
	RelatedAsset *Asset `json:"related_asset,omitempty" gorm:"foreignKey:AssetID"`
}

// ContractEvent mirrors an on-chain event the backend has observed or
// produced (token mints, oracle pushes).
type ContractEvent struct {
	BaseModel
	Type        EventType  `json:"type" gorm:"type:varchar(30);not null;index"`
	AssetID     *uuid.UUID `json:"asset_id,omitempty" gorm:"type:uuid;index"`
	TxSignature string     `json:"tx_signature" gorm:"size:128"`
	Payload     JSONB      `json:"payload,omitempty" gorm:"type:jsonb"`

	RelatedAsset *Asset `json:"related_asset,omitempty" gorm:"foreignKey:AssetID"`
}

// CommodityPrice is one oracle price push for a commodity, in cents.
type CommodityPrice struct {
	BaseModel
	Commodity   string    `json:"commodity" gorm:"size:30;not null;index"`
	PriceCents  int64     `json:"price_cents" gorm:"not null"`
	TxSignature string    `json:"tx_signature,omitempty" gorm:"size:128"`
	PushedAt    time.Time `json:"pushed_at"`
}
