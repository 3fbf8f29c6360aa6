// internal/handlers/investment_test.go
package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"github.com/desoy/desoy-backend/internal/ledger"
	"github.com/desoy/desoy-backend/internal/middleware"
	"github.com/desoy/desoy-backend/internal/models"
	"github.com/desoy/desoy-backend/internal/services"
	"github.com/desoy/desoy-backend/internal/utils"
)

// memoryStore is a minimal ledger.Store for exercising the investment
// endpoints without a database.
type memoryStore struct {
	mu          sync.Mutex
	assets      map[uuid.UUID]models.Asset
	investments map[uuid.UUID]models.Investment
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		assets:      make(map[uuid.UUID]models.Asset),
		investments: make(map[uuid.UUID]models.Investment),
	}
}

func (s *memoryStore) Transact(ctx context.Context, fn func(tx ledger.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memoryTx{store: s, staged: make(map[uuid.UUID]*models.Asset)}
	if err := fn(tx); err != nil {
		return err
	}
	for id, asset := range tx.staged {
		s.assets[id] = *asset
	}
	for _, investment := range tx.createdInvestments {
		s.investments[investment.ID] = investment
	}
	for _, id := range tx.deletedInvestments {
		delete(s.investments, id)
	}
	return nil
}

type memoryTx struct {
	store              *memoryStore
	staged             map[uuid.UUID]*models.Asset
	createdInvestments []models.Investment
	deletedInvestments []uuid.UUID
}

func (t *memoryTx) AssetForUpdate(id uuid.UUID) (*models.Asset, error) {
	asset, ok := t.store.assets[id]
	if !ok {
		return nil, ledger.ErrAssetNotFound
	}
	copied := asset
	t.staged[id] = &copied
	return &copied, nil
}

func (t *memoryTx) InvestmentForUpdate(id uuid.UUID) (*models.Investment, error) {
	investment, ok := t.store.investments[id]
	if !ok {
		return nil, ledger.ErrInvestmentNotFound
	}
	copied := investment
	return &copied, nil
}

func (t *memoryTx) SaveAsset(asset *models.Asset) error {
	t.staged[asset.ID] = asset
	return nil
}

func (t *memoryTx) CreateInvestment(investment *models.Investment) error {
	investment.ID = uuid.New()
	t.createdInvestments = append(t.createdInvestments, *investment)
	return nil
}

func (t *memoryTx) DeleteInvestment(investment *models.Investment) error {
	t.deletedInvestments = append(t.deletedInvestments, investment.ID)
	return nil
}

func (t *memoryTx) CreateTransaction(transaction *models.Transaction) error {
	transaction.ID = uuid.New()
	return nil
}

// refundRecorder stands in for the payment service's refund leg.
type refundRecorder struct {
	refunded []uuid.UUID
}

func (r *refundRecorder) RefundFunding(investmentID uuid.UUID) error {
	r.refunded = append(r.refunded, investmentID)
	return nil
}

type InvestmentHandlerTestSuite struct {
	suite.Suite
	router     *gin.Engine
	store      *memoryStore
	refunds    *refundRecorder
	assetID    uuid.UUID
	producerID uuid.UUID
	investorID uuid.UUID
	token      string
}

func (suite *InvestmentHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	utils.SetJWTSecret("test-secret")

	suite.store = newMemoryStore()
	suite.refunds = &refundRecorder{}
	suite.producerID = uuid.New()
	suite.investorID = uuid.New()

	asset := models.Asset{
		AssetType:        models.AssetTypeSoybean,
		Quantity:         decimal.NewFromInt(100),
		PricePerUnit:     decimal.NewFromInt(10),
		Status:           models.AssetStatusTokenized,
		FundedAmount:     decimal.Zero,
		FundedPercentage: decimal.Zero,
		ProducerID:       suite.producerID,
	}
	asset.ID = uuid.New()
	suite.assetID = asset.ID
	suite.store.assets[asset.ID] = asset

	investmentService := services.NewInvestmentService(nil, ledger.New(suite.store), suite.refunds)
	handler := NewInvestmentHandler(investmentService)

	suite.router = gin.New()
	investments := suite.router.Group("/v1/investments")
	investments.Use(middleware.AuthRequired())
	{
		investments.POST("", handler.CreateInvestment)
		investments.DELETE("/:id", handler.CancelInvestment)
	}

	token, err := utils.GenerateJWT(suite.investorID, "4Nd1mYvHrTf7QzSkzsRqXCydiSGyGnDoGDGzEKbuwJThq", "investor", 1)
	suite.Require().NoError(err)
	suite.token = token
}

func (suite *InvestmentHandlerTestSuite) postInvestment(body map[string]interface{}, token string) *httptest.ResponseRecorder {
	jsonData, _ := json.Marshal(body)
	req, _ := http.NewRequest("POST", "/v1/investments", bytes.NewBuffer(jsonData))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *InvestmentHandlerTestSuite) deleteInvestment(id string, token string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest("DELETE", "/v1/investments/"+id, nil)
	req.Header.Set("Authorization", "Bearer "+token)

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

// settleInvestment posts an investment and returns its ID.
func (suite *InvestmentHandlerTestSuite) settleInvestment(amount string) uuid.UUID {
	w := suite.postInvestment(map[string]interface{}{
		"asset_id": suite.assetID.String(),
		"amount":   amount,
	}, suite.token)
	suite.Require().Equal(http.StatusCreated, w.Code)

	var response map[string]interface{}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	data := response["data"].(map[string]interface{})
	investment := data["investment"].(map[string]interface{})
	id, err := uuid.Parse(investment["id"].(string))
	suite.Require().NoError(err)
	return id
}

func (suite *InvestmentHandlerTestSuite) TestCreateInvestment() {
	w := suite.postInvestment(map[string]interface{}{
		"asset_id": suite.assetID.String(),
		"amount":   "400",
	}, suite.token)

	assert.Equal(suite.T(), http.StatusCreated, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	assert.True(suite.T(), response["success"].(bool))

	data := response["data"].(map[string]interface{})
	investment := data["investment"].(map[string]interface{})
	assert.Equal(suite.T(), "pending", investment["status"])

	stored := suite.store.assets[suite.assetID]
	assert.True(suite.T(), stored.FundedAmount.Equal(decimal.NewFromInt(400)))
	assert.Equal(suite.T(), models.AssetStatusPartiallyFunded, stored.Status)
}

func (suite *InvestmentHandlerTestSuite) TestCreateInvestmentRequiresAuth() {
	w := suite.postInvestment(map[string]interface{}{
		"asset_id": suite.assetID.String(),
		"amount":   "400",
	}, "")

	assert.Equal(suite.T(), http.StatusUnauthorized, w.Code)
}

func (suite *InvestmentHandlerTestSuite) TestCreateInvestmentUnknownAsset() {
	w := suite.postInvestment(map[string]interface{}{
		"asset_id": uuid.New().String(),
		"amount":   "400",
	}, suite.token)

	assert.Equal(suite.T(), http.StatusNotFound, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	errBody := response["error"].(map[string]interface{})
	assert.Equal(suite.T(), "NOT_FOUND", errBody["code"])
}

func (suite *InvestmentHandlerTestSuite) TestCreateInvestmentOverRemaining() {
	w := suite.postInvestment(map[string]interface{}{
		"asset_id": suite.assetID.String(),
		"amount":   "1500",
	}, suite.token)

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	errBody := response["error"].(map[string]interface{})
	assert.Equal(suite.T(), "INVALID_AMOUNT", errBody["code"])
}

func (suite *InvestmentHandlerTestSuite) TestCreateInvestmentClosedAsset() {
	asset := suite.store.assets[suite.assetID]
	asset.Status = models.AssetStatusPending
	suite.store.assets[suite.assetID] = asset

	w := suite.postInvestment(map[string]interface{}{
		"asset_id": suite.assetID.String(),
		"amount":   "400",
	}, suite.token)

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	errBody := response["error"].(map[string]interface{})
	assert.Equal(suite.T(), "INVALID_STATE", errBody["code"])
}

func (suite *InvestmentHandlerTestSuite) TestCancelInvestmentReversesFundingAndRefunds() {
	investmentID := suite.settleInvestment("400")

	w := suite.deleteInvestment(investmentID.String(), suite.token)
	assert.Equal(suite.T(), http.StatusOK, w.Code)

	// Funding fully reversed on the asset.
	stored := suite.store.assets[suite.assetID]
	assert.True(suite.T(), stored.FundedAmount.IsZero())
	assert.True(suite.T(), stored.FundedPercentage.IsZero())
	assert.Equal(suite.T(), models.AssetStatusTokenized, stored.Status)

	// Investment gone from the store.
	_, exists := suite.store.investments[investmentID]
	assert.False(suite.T(), exists)

	// The payment leg was pushed back for this investment.
	suite.Require().Len(suite.refunds.refunded, 1)
	assert.Equal(suite.T(), investmentID, suite.refunds.refunded[0])
}

func (suite *InvestmentHandlerTestSuite) TestCancelInvestmentUnknown() {
	w := suite.deleteInvestment(uuid.New().String(), suite.token)

	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
	assert.Empty(suite.T(), suite.refunds.refunded)
}

func (suite *InvestmentHandlerTestSuite) TestCancelInvestmentLockedAsset() {
	investmentID := suite.settleInvestment("400")

	asset := suite.store.assets[suite.assetID]
	asset.Status = models.AssetStatusInProgress
	suite.store.assets[suite.assetID] = asset

	w := suite.deleteInvestment(investmentID.String(), suite.token)

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	errBody := response["error"].(map[string]interface{})
	assert.Equal(suite.T(), "INVALID_STATE", errBody["code"])

	// No refund without a ledger reversal.
	assert.Empty(suite.T(), suite.refunds.refunded)
	assert.Equal(suite.T(), models.AssetStatusInProgress, suite.store.assets[suite.assetID].Status)
}

func TestInvestmentHandlerSuite(t *testing.T) {
	suite.Run(t, new(InvestmentHandlerTestSuite))
}
