// internal/models/asset.go
package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

type Asset struct {
	BaseModel
	AssetType            AssetType       `json:"asset_type" gorm:"type:varchar(20);not null;index"`
	Quantity             decimal.Decimal `json:"quantity" gorm:"type:decimal(12,2);not null"`
	PricePerUnit         decimal.Decimal `json:"price_per_unit" gorm:"type:decimal(12,2);not null"`
	ExpectedHarvestDate  time.Time       `json:"expected_harvest_date"`
	ExpectedDeliveryDate time.Time       `json:"expected_delivery_date"`
	Status               AssetStatus     `json:"status" gorm:"type:varchar(20);default:'pending';index"`
	TokenMintAddress     string          `json:"token_mint_address,omitempty" gorm:"size:64"`
	TokenMetadata        JSONB           `json:"token_metadata,omitempty" gorm:"type:jsonb"`
	FundedAmount         decimal.Decimal `json:"funded_amount" gorm:"type:decimal(12,2);default:0"`
	FundedPercentage     decimal.Decimal `json:"funded_percentage" gorm:"type:decimal(5,2);default:0"`
	Location             JSONB           `json:"location" gorm:"type:jsonb"`
	Metadata             JSONB           `json:"metadata,omitempty" gorm:"type:jsonb"`
	DocumentURLs         pq.StringArray  `json:"document_urls,omitempty" gorm:"type:text[]"`
	ProducerID           uuid.UUID       `json:"producer_id" gorm:"type:uuid;not null;index"`

	// Relationships
	Producer       User            `json:"producer,omitempty" gorm:"foreignKey:ProducerID"`
	Investments    []Investment    `json:"investments,omitempty" gorm:"foreignKey:AssetID"`
	Updates        []AssetUpdate   `json:"updates,omitempty" gorm:"foreignKey:AssetID"`
	ContractEvents []ContractEvent `json:"contract_events,omitempty" gorm:"foreignKey:AssetID"`
}

// TotalValue is the full receivable value: quantity times unit price.
func (a *Asset) TotalValue() decimal.Decimal {
	return a.Quantity.Mul(a.PricePerUnit)
}

// RemainingFunding is how much investment the asset still accepts.
func (a *Asset) RemainingFunding() decimal.Decimal {
	return a.TotalValue().Sub(a.FundedAmount)
}

// OpenForInvestment reports whether the funding ledger may settle new
// investments against this asset.
func (a *Asset) OpenForInvestment() bool {
	return a.Status == AssetStatusTokenized || a.Status == AssetStatusPartiallyFunded
}

// assetTransitions lists the externally triggered lifecycle transitions.
// The funding-driven transitions (partially_funded, fully_funded) are owned
// by the ledger and are not reachable through UpdateAssetStatus.
var assetTransitions = map[AssetStatus][]AssetStatus{
	AssetStatusPending:          {AssetStatusTokenized},
	AssetStatusTokenized:        {AssetStatusDefaulted},
	AssetStatusPartiallyFunded:  {AssetStatusDefaulted},
	AssetStatusFullyFunded:      {AssetStatusInProgress, AssetStatusDefaulted},
	AssetStatusInProgress:       {AssetStatusReadyForDelivery, AssetStatusDefaulted},
	AssetStatusReadyForDelivery: {AssetStatusDelivered, AssetStatusDefaulted},
	AssetStatusDelivered:        {},
	AssetStatusDefaulted:        {},
}

// CanTransitionTo reports whether a producer- or oracle-triggered status
// change from the current status to target is allowed.
func (a *Asset) CanTransitionTo(target AssetStatus) bool {
	for _, next := range assetTransitions[a.Status] {
		if next == target {
			return true
		}
	}
	return false
}

type AssetUpdate struct {
	BaseModel
	AssetID            uuid.UUID  `json:"asset_id" gorm:"type:uuid;not null;index"`
	Type               UpdateType `json:"type" gorm:"type:varchar(20);not null"`
	UpdateDate         time.Time  `json:"update_date"`
	Data               JSONB      `json:"data" gorm:"type:jsonb"`
	OracleTxSignature  string     `json:"oracle_tx_signature,omitempty" gorm:"size:128"`
	Metadata           JSONB      `json:"metadata,omitempty" gorm:"type:jsonb"`

	Asset Asset `json:"asset,omitempty" gorm:"foreignKey:AssetID"`
}
