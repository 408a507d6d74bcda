package rest_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-projector/internal/api/rest"
	"github.com/feral-file/ff-projector/internal/api/rest/dto"
	"github.com/feral-file/ff-projector/internal/domain"
	"github.com/feral-file/ff-projector/internal/emitter"
	"github.com/feral-file/ff-projector/internal/mocks"
	"github.com/feral-file/ff-projector/internal/store"
	"github.com/feral-file/ff-projector/internal/store/schema"
	"github.com/feral-file/ff-projector/internal/store/storetest"
)

const (
	contentAddr  = "0x00000000000000000000000000000000000000c0"
	exchangeAddr = "0x00000000000000000000000000000000000000e1"
	tokenAddr    = "0x00000000000000000000000000000000000000d3"
	alice        = "0x000000000000000000000000000000000000000a"
	bob          = "0x000000000000000000000000000000000000000b"
)

type testHandler struct {
	ctrl    *gomock.Controller
	emitter *mocks.MockEmitter
	store   store.Store
	router  *gin.Engine
}

func setupTestHandler(t *testing.T) *testHandler {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ctrl := gomock.NewController(t)
	th := &testHandler{
		ctrl:    ctrl,
		emitter: mocks.NewMockEmitter(ctrl),
		store:   store.NewGormStore(storetest.NewSQLite(t)),
		router:  gin.New(),
	}
	rest.SetupRoutes(th.router, rest.NewHandler(th.store, th.emitter))
	return th
}

func (th *testHandler) get(t *testing.T, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	th.router.ServeHTTP(rec, req)
	return rec
}

func (th *testHandler) save(t *testing.T, entities ...interface{}) {
	t.Helper()
	for _, e := range entities {
		require.NoError(t, th.store.Save(context.Background(), e))
	}
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestHealthCheck(t *testing.T) {
	tests := []struct {
		name       string
		status     emitter.Status
		wantCode   int
		wantStatus string
	}{
		{
			name:       "running",
			status:     emitter.Status{Chain: domain.ChainPolygonMainnet, CursorBlock: 10},
			wantCode:   http.StatusOK,
			wantStatus: "ok",
		},
		{
			name:       "halted",
			status:     emitter.Status{Halted: true, Reason: "missing order"},
			wantCode:   http.StatusServiceUnavailable,
			wantStatus: "halted",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			th := setupTestHandler(t)
			th.emitter.EXPECT().Status().Return(tt.status)

			rec := th.get(t, "/health")
			assert.Equal(t, tt.wantCode, rec.Code)
			body := decode[map[string]string](t, rec)
			assert.Equal(t, tt.wantStatus, body["status"])
		})
	}
}

func TestGetStatus(t *testing.T) {
	th := setupTestHandler(t)
	cursor := domain.Position{Block: 41, LogIndex: 3}
	th.emitter.EXPECT().Status().Return(emitter.Status{
		Chain:       domain.ChainPolygonMainnet,
		Head:        60,
		CursorBlock: 40,
		Cursor:      &cursor,
		Halted:      true,
		Reason:      "order underflow",
	})

	rec := th.get(t, "/status")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	status := decode[emitter.Status](t, rec)
	assert.Equal(t, uint64(60), status.Head)
	assert.Equal(t, uint64(40), status.CursorBlock)
	require.NotNil(t, status.Cursor)
	assert.Equal(t, cursor, *status.Cursor)
	assert.Equal(t, "order underflow", status.Reason)
}

func TestGetContent(t *testing.T) {
	th := setupTestHandler(t)

	content := schema.NewContent(contentAddr)
	content.Name = "Rawr"
	content.Symbol = "RAWR"
	content.AssetsCount = 2
	fee := schema.NewContractFee(domain.ContractFeeKey(contentAddr, alice), contentAddr, alice)
	fee.Rate = schema.NewUint256(250)
	removed := schema.NewContractFee(domain.ContractFeeKey(contentAddr, bob), contentAddr, bob)
	th.save(t, content, fee, removed)

	// mixed case addresses resolve to the stored key
	rec := th.get(t, "/api/v1/contents/0x00000000000000000000000000000000000000C0")
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[dto.ContentResponse](t, rec)
	assert.Equal(t, contentAddr, resp.Address)
	assert.Equal(t, "Rawr", resp.Name)
	assert.Equal(t, "RAWR", resp.Symbol)
	assert.Equal(t, int64(2), resp.AssetsCount)
	assert.Equal(t, []string{}, resp.Tags)
	assert.Equal(t, []dto.FeeResponse{{Account: alice, Rate: "250"}}, resp.Royalties)
}

func TestGetContent_Errors(t *testing.T) {
	th := setupTestHandler(t)

	rec := th.get(t, "/api/v1/contents/not-an-address")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = th.get(t, "/api/v1/contents/"+contentAddr)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetAsset(t *testing.T) {
	th := setupTestHandler(t)

	assetID := contentAddr + "-7"
	asset := schema.NewAsset(assetID, contentAddr, "7")
	asset.CurrentSupply = schema.NewUint256(5)
	asset.OwnersCount = 1
	held := schema.NewAssetBalance(contentAddr+"-"+alice+"-7", assetID, contentAddr, alice, "7")
	held.Amount = schema.NewUint256(5)
	emptied := schema.NewAssetBalance(contentAddr+"-"+bob+"-7", assetID, contentAddr, bob, "7")
	th.save(t, asset, held, emptied)

	rec := th.get(t, "/api/v1/assets/"+assetID)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[dto.AssetResponse](t, rec)
	assert.Equal(t, assetID, resp.ID)
	assert.Equal(t, "5", resp.CurrentSupply)
	assert.Equal(t, "0", resp.MaxSupply)
	assert.Equal(t, []dto.BalanceResponse{{Owner: alice, Amount: "5"}}, resp.Balances)
	assert.Empty(t, resp.Royalties)
}

func TestGetAsset_InvalidIDs(t *testing.T) {
	th := setupTestHandler(t)

	for _, id := range []string{contentAddr, contentAddr + "-x", "abc-7", contentAddr + "--7"} {
		rec := th.get(t, "/api/v1/assets/"+id)
		assert.Equal(t, http.StatusBadRequest, rec.Code, id)
	}
}

func TestGetAccount(t *testing.T) {
	th := setupTestHandler(t)

	account := schema.NewAccount(alice)
	account.OrdersCount = 3
	account.Volume = schema.NewUint256(1200)
	th.save(t, account)

	rec := th.get(t, "/api/v1/accounts/"+alice)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[dto.AccountResponse](t, rec)
	assert.Equal(t, alice, resp.Address)
	assert.Equal(t, int64(3), resp.OrdersCount)
	assert.Equal(t, "1200", resp.Volume)

	rec = th.get(t, "/api/v1/accounts/"+bob)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetOrder(t *testing.T) {
	th := setupTestHandler(t)

	orderID := exchangeAddr + "-12"
	order := &schema.Order{
		ID:            orderID,
		Exchange:      exchangeAddr,
		OrderID:       "12",
		Asset:         contentAddr + "-7",
		Token:         tokenAddr,
		Owner:         alice,
		Type:          domain.OrderTypeSell,
		Status:        domain.OrderStatusClaimed,
		Price:         schema.NewUint256(100),
		AmountOrdered: schema.NewUint256(2),
		AmountFilled:  schema.NewUint256(2),
		AmountClaimed: schema.NewUint256(2),
	}
	fill := &schema.OrderFill{
		ID:           orderID + "-0xabc-4",
		Order:        orderID,
		Exchange:     exchangeAddr,
		Filler:       bob,
		Token:        tokenAddr,
		Amount:       schema.NewUint256(2),
		PricePerItem: schema.NewUint256(100),
		TotalPrice:   schema.NewUint256(200),
	}
	claim := &schema.OrderClaimTransaction{
		ID:            orderID + "-1",
		Order:         orderID,
		AmountClaimed: schema.NewUint256(2),
	}
	th.save(t, order, fill, claim)

	rec := th.get(t, "/api/v1/orders/"+orderID)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[dto.OrderResponse](t, rec)
	assert.Equal(t, domain.OrderStatusClaimed, resp.Status)
	assert.Equal(t, domain.OrderTypeSell, resp.Type)
	require.Len(t, resp.Fills, 1)
	assert.Equal(t, bob, resp.Fills[0].Filler)
	assert.Equal(t, "200", resp.Fills[0].TotalPrice)
	require.Len(t, resp.Claims, 1)
	assert.Equal(t, "2", resp.Claims[0].AmountClaimed)

	rec = th.get(t, "/api/v1/orders/"+exchangeAddr+"-13")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetToken(t *testing.T) {
	th := setupTestHandler(t)

	th.save(t,
		&schema.FungibleToken{ID: tokenAddr, TokenID: "0xff", Name: "Rawr", Symbol: "RAWR", OwnersCount: 1},
		&schema.TokenSupply{ID: tokenAddr, InitialSupply: schema.NewUint256(1000), CurrentSupply: schema.NewUint256(900), NumberOfBurns: 1},
		&schema.Token{ID: tokenAddr, TotalVolume: schema.NewUint256(42)},
	)

	rec := th.get(t, "/api/v1/tokens/"+tokenAddr)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[dto.TokenResponse](t, rec)
	require.NotNil(t, resp.Fungible)
	assert.Equal(t, "RAWR", resp.Fungible.Symbol)
	assert.Equal(t, "1000", resp.Fungible.InitialSupply)
	assert.Equal(t, "900", resp.Fungible.CurrentSupply)
	assert.Equal(t, int64(1), resp.Fungible.NumberOfBurns)
	require.NotNil(t, resp.Payment)
	assert.Equal(t, "42", resp.Payment.TotalVolume)
	assert.Empty(t, resp.Payment.Escrow)

	rec = th.get(t, "/api/v1/tokens/"+alice)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	th := setupTestHandler(t)

	rec := th.get(t, "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
