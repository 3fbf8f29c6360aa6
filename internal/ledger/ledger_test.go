// internal/ledger/ledger_test.go
package ledger

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/desoy/desoy-backend/internal/models"
)

var errStoreWrite = errors.New("store write failed")

// fakeStore is an in-memory Store whose transactions are serialized by a
// mutex and staged until commit, mirroring the atomicity and row-lock
// semantics of the database-backed store.
type fakeStore struct {
	mu           sync.Mutex
	assets       map[uuid.UUID]models.Asset
	investments  map[uuid.UUID]models.Investment
	transactions []models.Transaction

	failTransactionWrite bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		assets:      make(map[uuid.UUID]models.Asset),
		investments: make(map[uuid.UUID]models.Investment),
	}
}

func (s *fakeStore) Transact(ctx context.Context, fn func(tx Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &fakeTx{
		store:       s,
		assets:      make(map[uuid.UUID]*models.Asset),
		investments: make(map[uuid.UUID]*models.Investment),
	}
	if err := fn(tx); err != nil {
		return err
	}

	// Commit staged state.
	for id, asset := range tx.assets {
		s.assets[id] = *asset
	}
	for id, investment := range tx.investments {
		s.investments[id] = *investment
	}
	for _, id := range tx.deletedInvestments {
		delete(s.investments, id)
	}
	s.transactions = append(s.transactions, tx.transactions...)
	return nil
}

type fakeTx struct {
	store              *fakeStore
	assets             map[uuid.UUID]*models.Asset
	investments        map[uuid.UUID]*models.Investment
	deletedInvestments []uuid.UUID
	transactions       []models.Transaction
}

func (t *fakeTx) AssetForUpdate(id uuid.UUID) (*models.Asset, error) {
	if staged, ok := t.assets[id]; ok {
		return staged, nil
	}
	asset, ok := t.store.assets[id]
	if !ok {
		return nil, ErrAssetNotFound
	}
	copied := asset
	t.assets[id] = &copied
	return &copied, nil
}

func (t *fakeTx) InvestmentForUpdate(id uuid.UUID) (*models.Investment, error) {
	if staged, ok := t.investments[id]; ok {
		return staged, nil
	}
	investment, ok := t.store.investments[id]
	if !ok {
		return nil, ErrInvestmentNotFound
	}
	copied := investment
	t.investments[id] = &copied
	return &copied, nil
}

func (t *fakeTx) SaveAsset(asset *models.Asset) error {
	t.assets[asset.ID] = asset
	return nil
}

func (t *fakeTx) CreateInvestment(investment *models.Investment) error {
	investment.ID = uuid.New()
	t.investments[investment.ID] = investment
	return nil
}

func (t *fakeTx) DeleteInvestment(investment *models.Investment) error {
	delete(t.investments, investment.ID)
	t.deletedInvestments = append(t.deletedInvestments, investment.ID)
	return nil
}

func (t *fakeTx) CreateTransaction(transaction *models.Transaction) error {
	if t.store.failTransactionWrite {
		return errStoreWrite
	}
	transaction.ID = uuid.New()
	t.transactions = append(t.transactions, *transaction)
	return nil
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// tokenizedAsset seeds the store with an open asset worth quantity * price.
func tokenizedAsset(store *fakeStore, quantity, price string) models.Asset {
	asset := models.Asset{
		AssetType:        models.AssetTypeSoybean,
		Quantity:         dec(quantity),
		PricePerUnit:     dec(price),
		Status:           models.AssetStatusTokenized,
		FundedAmount:     decimal.Zero,
		FundedPercentage: decimal.Zero,
		ProducerID:       uuid.New(),
	}
	asset.ID = uuid.New()
	store.assets[asset.ID] = asset
	return asset
}

func TestSettlePartialThenFull(t *testing.T) {
	store := newFakeStore()
	asset := tokenizedAsset(store, "100", "10") // total value 1000
	l := New(store)
	investor := uuid.New()

	first, err := l.Settle(context.Background(), SettlementRequest{
		AssetID:    asset.ID,
		InvestorID: investor,
		Amount:     dec("400"),
	})
	require.NoError(t, err)

	assert.True(t, first.Investment.InvestmentPercentage.Equal(dec("40")))
	assert.Equal(t, models.InvestmentStatusPending, first.Investment.Status)
	assert.True(t, first.Asset.FundedAmount.Equal(dec("400")))
	assert.True(t, first.Asset.FundedPercentage.Equal(dec("40")))
	assert.Equal(t, models.AssetStatusPartiallyFunded, first.Asset.Status)

	assert.Equal(t, models.TransactionTypeInvestment, first.Transaction.Type)
	assert.Equal(t, investor, first.Transaction.FromUserID)
	assert.Equal(t, asset.ProducerID, first.Transaction.ToUserID)
	assert.Equal(t, first.Investment.ID.String(), first.Transaction.Metadata["investment_id"])

	second, err := l.Settle(context.Background(), SettlementRequest{
		AssetID:    asset.ID,
		InvestorID: uuid.New(),
		Amount:     dec("600"),
	})
	require.NoError(t, err)

	assert.True(t, second.Investment.InvestmentPercentage.Equal(dec("60")))
	assert.True(t, second.Asset.FundedAmount.Equal(dec("1000")))
	assert.True(t, second.Asset.FundedPercentage.Equal(dec("100")))
	assert.Equal(t, models.AssetStatusFullyFunded, second.Asset.Status)

	assert.Len(t, store.transactions, 2)
	assert.Len(t, store.investments, 2)
}

func TestSettlePercentageRounding(t *testing.T) {
	store := newFakeStore()
	asset := tokenizedAsset(store, "100", "10")
	l := New(store)

	result, err := l.Settle(context.Background(), SettlementRequest{
		AssetID:    asset.ID,
		InvestorID: uuid.New(),
		Amount:     dec("333.33"),
	})
	require.NoError(t, err)

	assert.True(t, result.Investment.InvestmentPercentage.Equal(dec("33.33")),
		"got %s", result.Investment.InvestmentPercentage)
}

func TestSettleRejectsOverFunding(t *testing.T) {
	store := newFakeStore()
	asset := tokenizedAsset(store, "100", "10")
	l := New(store)

	_, err := l.Settle(context.Background(), SettlementRequest{
		AssetID:    asset.ID,
		InvestorID: uuid.New(),
		Amount:     dec("400"),
	})
	require.NoError(t, err)

	_, err = l.Settle(context.Background(), SettlementRequest{
		AssetID:    asset.ID,
		InvestorID: uuid.New(),
		Amount:     dec("700"),
	})
	assert.ErrorIs(t, err, ErrInvalidAmount)

	// Nothing about the failed settlement may persist.
	stored := store.assets[asset.ID]
	assert.True(t, stored.FundedAmount.Equal(dec("400")))
	assert.Len(t, store.investments, 1)
	assert.Len(t, store.transactions, 1)
}

func TestSettleRejectsNonPositiveAmounts(t *testing.T) {
	store := newFakeStore()
	asset := tokenizedAsset(store, "100", "10")
	l := New(store)

	for _, amount := range []string{"0", "-50"} {
		_, err := l.Settle(context.Background(), SettlementRequest{
			AssetID:    asset.ID,
			InvestorID: uuid.New(),
			Amount:     dec(amount),
		})
		assert.ErrorIs(t, err, ErrInvalidAmount, "amount %s", amount)
	}
	assert.Empty(t, store.investments)
}

func TestSettleUnknownAsset(t *testing.T) {
	l := New(newFakeStore())

	// NotFound wins over any amount problem, so even a non-positive
	// amount against a missing asset reports the missing asset.
	for _, amount := range []string{"100", "0", "-50"} {
		_, err := l.Settle(context.Background(), SettlementRequest{
			AssetID:    uuid.New(),
			InvestorID: uuid.New(),
			Amount:     dec(amount),
		})
		assert.ErrorIs(t, err, ErrAssetNotFound, "amount %s", amount)
	}
}

func TestSettleClosedAsset(t *testing.T) {
	for _, status := range []models.AssetStatus{
		models.AssetStatusPending,
		models.AssetStatusFullyFunded,
		models.AssetStatusInProgress,
		models.AssetStatusDefaulted,
	} {
		store := newFakeStore()
		asset := tokenizedAsset(store, "100", "10")
		asset.Status = status
		store.assets[asset.ID] = asset

		l := New(store)
		_, err := l.Settle(context.Background(), SettlementRequest{
			AssetID:    asset.ID,
			InvestorID: uuid.New(),
			Amount:     dec("100"),
		})
		assert.ErrorIs(t, err, ErrAssetNotOpen, "status %s", status)
	}
}

func TestSettleRollsBackOnWriteFailure(t *testing.T) {
	store := newFakeStore()
	asset := tokenizedAsset(store, "100", "10")
	store.failTransactionWrite = true
	l := New(store)

	_, err := l.Settle(context.Background(), SettlementRequest{
		AssetID:    asset.ID,
		InvestorID: uuid.New(),
		Amount:     dec("400"),
	})
	require.ErrorIs(t, err, errStoreWrite)

	stored := store.assets[asset.ID]
	assert.True(t, stored.FundedAmount.IsZero())
	assert.Equal(t, models.AssetStatusTokenized, stored.Status)
	assert.Empty(t, store.investments)
	assert.Empty(t, store.transactions)
}

func TestConcurrentSettlementsCannotOverFund(t *testing.T) {
	store := newFakeStore()
	asset := tokenizedAsset(store, "100", "10") // total value 1000
	l := New(store)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = l.Settle(context.Background(), SettlementRequest{
				AssetID:    asset.ID,
				InvestorID: uuid.New(),
				Amount:     dec("600"),
			})
		}(i)
	}
	wg.Wait()

	// Exactly one of the two 600 settlements may win on a 1000 asset.
	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, ErrInvalidAmount)
		}
	}
	assert.Equal(t, 1, succeeded)

	stored := store.assets[asset.ID]
	assert.True(t, stored.FundedAmount.Equal(dec("600")))
	assert.Equal(t, models.AssetStatusPartiallyFunded, stored.Status)
	assert.Len(t, store.investments, 1)
}

func TestCancelRestoresFundingState(t *testing.T) {
	store := newFakeStore()
	asset := tokenizedAsset(store, "100", "10")
	l := New(store)
	investor := uuid.New()

	settled, err := l.Settle(context.Background(), SettlementRequest{
		AssetID:    asset.ID,
		InvestorID: investor,
		Amount:     dec("400"),
	})
	require.NoError(t, err)

	result, err := l.Cancel(context.Background(), settled.Investment.ID, investor)
	require.NoError(t, err)

	assert.True(t, result.Asset.FundedAmount.IsZero())
	assert.True(t, result.Asset.FundedPercentage.IsZero())
	assert.Equal(t, models.AssetStatusTokenized, result.Asset.Status)

	assert.Equal(t, models.TransactionTypeRefund, result.Transaction.Type)
	assert.Equal(t, asset.ProducerID, result.Transaction.FromUserID)
	assert.Equal(t, investor, result.Transaction.ToUserID)
	assert.True(t, result.Transaction.Amount.Equal(dec("400")))

	assert.Empty(t, store.investments)
	assert.Len(t, store.transactions, 2)
}

func TestCancelKeepsAssetPartiallyFunded(t *testing.T) {
	store := newFakeStore()
	asset := tokenizedAsset(store, "100", "10")
	l := New(store)

	first, err := l.Settle(context.Background(), SettlementRequest{
		AssetID:    asset.ID,
		InvestorID: uuid.New(),
		Amount:     dec("300"),
	})
	require.NoError(t, err)

	_, err = l.Settle(context.Background(), SettlementRequest{
		AssetID:    asset.ID,
		InvestorID: uuid.New(),
		Amount:     dec("500"),
	})
	require.NoError(t, err)

	result, err := l.Cancel(context.Background(), first.Investment.ID, first.Investment.InvestorID)
	require.NoError(t, err)

	assert.True(t, result.Asset.FundedAmount.Equal(dec("500")))
	assert.True(t, result.Asset.FundedPercentage.Equal(dec("50")))
	assert.Equal(t, models.AssetStatusPartiallyFunded, result.Asset.Status)
	assert.Len(t, store.investments, 1)
}

func TestCancelRejectsConfirmedInvestment(t *testing.T) {
	store := newFakeStore()
	asset := tokenizedAsset(store, "100", "10")
	l := New(store)
	investor := uuid.New()

	settled, err := l.Settle(context.Background(), SettlementRequest{
		AssetID:    asset.ID,
		InvestorID: investor,
		Amount:     dec("400"),
	})
	require.NoError(t, err)

	confirmed := store.investments[settled.Investment.ID]
	confirmed.Status = models.InvestmentStatusConfirmed
	store.investments[settled.Investment.ID] = confirmed

	_, err = l.Cancel(context.Background(), settled.Investment.ID, investor)
	assert.ErrorIs(t, err, ErrInvestmentNotPending)

	stored := store.assets[asset.ID]
	assert.True(t, stored.FundedAmount.Equal(dec("400")))
}

func TestCancelRejectsOnceAssetLeftFundingPhase(t *testing.T) {
	store := newFakeStore()
	asset := tokenizedAsset(store, "100", "10")
	l := New(store)
	investor := uuid.New()

	settled, err := l.Settle(context.Background(), SettlementRequest{
		AssetID:    asset.ID,
		InvestorID: investor,
		Amount:     dec("1000"),
	})
	require.NoError(t, err)

	// The producer moved the fully funded asset into the delivery phase;
	// its funding history is settled and may not be rewound to an open
	// funding status.
	for _, status := range []models.AssetStatus{
		models.AssetStatusInProgress,
		models.AssetStatusReadyForDelivery,
		models.AssetStatusDelivered,
		models.AssetStatusDefaulted,
	} {
		progressed := store.assets[asset.ID]
		progressed.Status = status
		store.assets[asset.ID] = progressed

		_, err = l.Cancel(context.Background(), settled.Investment.ID, investor)
		assert.ErrorIs(t, err, ErrAssetFundingLocked, "status %s", status)

		stored := store.assets[asset.ID]
		assert.Equal(t, status, stored.Status)
		assert.True(t, stored.FundedAmount.Equal(dec("1000")))
	}
	assert.Len(t, store.investments, 1)
}

func TestCancelRejectsOtherInvestorsInvestment(t *testing.T) {
	store := newFakeStore()
	asset := tokenizedAsset(store, "100", "10")
	l := New(store)

	settled, err := l.Settle(context.Background(), SettlementRequest{
		AssetID:    asset.ID,
		InvestorID: uuid.New(),
		Amount:     dec("400"),
	})
	require.NoError(t, err)

	_, err = l.Cancel(context.Background(), settled.Investment.ID, uuid.New())
	assert.ErrorIs(t, err, ErrInvestmentNotFound)

	stored := store.assets[asset.ID]
	assert.True(t, stored.FundedAmount.Equal(dec("400")))
	assert.Len(t, store.investments, 1)
}

func TestCancelUnknownInvestment(t *testing.T) {
	l := New(newFakeStore())

	_, err := l.Cancel(context.Background(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, ErrInvestmentNotFound)
}
