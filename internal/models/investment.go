// internal/models/investment.go
package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Investment records an investor's stake in an asset. Amount and
// InvestmentPercentage are snapshots taken at settlement time and never
// recomputed; only status and metadata may change afterwards.
type Investment struct {
	BaseModel
	AssetID              uuid.UUID        `json:"asset_id" gorm:"type:uuid;not null;index"`
	InvestorID           uuid.UUID        `json:"investor_id" gorm:"type:uuid;not null;index"`
	Amount               decimal.Decimal  `json:"amount" gorm:"type:decimal(12,2);not null"`
	InvestmentPercentage decimal.Decimal  `json:"investment_percentage" gorm:"type:decimal(5,2);not null"`
	Status               InvestmentStatus `json:"status" gorm:"type:varchar(20);default:'pending';index"`
	InvestmentDate       time.Time        `json:"investment_date"`
	TransactionHash      string           `json:"transaction_hash,omitempty" gorm:"size:128"`
	Metadata             JSONB            `json:"metadata,omitempty" gorm:"type:jsonb"`

	// Relationships
	Asset    Asset `json:"asset,omitempty" gorm:"foreignKey:AssetID"`
	Investor User  `json:"investor,omitempty" gorm:"foreignKey:InvestorID"`
}
