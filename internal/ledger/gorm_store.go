// internal/ledger/gorm_store.go
package ledger

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/desoy/desoy-backend/internal/models"
)

// GormStore backs the ledger with a GORM database handle. Row locking uses
// SELECT ... FOR UPDATE, so the remaining-funding check always sees a fresh
// view of the asset under concurrent settlements.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Transact(ctx context.Context, fn func(tx Tx) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTx{tx: tx})
	})
}

type gormTx struct {
	tx *gorm.DB
}

func (t *gormTx) AssetForUpdate(id uuid.UUID) (*models.Asset, error) {
	var asset models.Asset
	err := t.tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&asset, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssetNotFound
		}
		return nil, err
	}
	return &asset, nil
}

func (t *gormTx) InvestmentForUpdate(id uuid.UUID) (*models.Investment, error) {
	var investment models.Investment
	err := t.tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&investment, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvestmentNotFound
		}
		return nil, err
	}
	return &investment, nil
}

func (t *gormTx) SaveAsset(asset *models.Asset) error {
	return t.tx.Save(asset).Error
}

func (t *gormTx) CreateInvestment(investment *models.Investment) error {
	return t.tx.Create(investment).Error
}

func (t *gormTx) DeleteInvestment(investment *models.Investment) error {
	return t.tx.Delete(investment).Error
}

func (t *gormTx) CreateTransaction(transaction *models.Transaction) error {
	return t.tx.Create(transaction).Error
}
