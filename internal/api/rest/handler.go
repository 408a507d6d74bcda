package rest

import (
	"math/big"
	"net/http"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/feral-file/ff-projector/internal/api/rest/dto"
	"github.com/feral-file/ff-projector/internal/domain"
	"github.com/feral-file/ff-projector/internal/emitter"
	"github.com/feral-file/ff-projector/internal/store"
	"github.com/feral-file/ff-projector/internal/store/schema"
)

// StatusProvider reports the state of the block loop
type StatusProvider interface {
	Status() emitter.Status
}

// Handler defines the interface for REST API handlers
type Handler interface {
	// HealthCheck returns 200 while the projection is running and 503 once it halted
	// GET /health
	HealthCheck(c *gin.Context)

	// GetStatus returns the block loop status
	// GET /status
	GetStatus(c *gin.Context)

	// GetContent retrieves a content contract with its contract royalties
	// GET /api/v1/contents/:address
	GetContent(c *gin.Context)

	// GetAsset retrieves an asset by contentAddress-tokenId with its royalties and holders
	// GET /api/v1/assets/:id
	GetAsset(c *gin.Context)

	// GetAccount retrieves an account's counters
	// GET /api/v1/accounts/:address
	GetAccount(c *gin.Context)

	// GetOrder retrieves an order by exchangeAddress-orderId with its fills and claims
	// GET /api/v1/orders/:id
	GetOrder(c *gin.Context)

	// GetToken retrieves a fungible or payment token by address
	// GET /api/v1/tokens/:address
	GetToken(c *gin.Context)
}

// handler implements the Handler interface
type handler struct {
	store  store.Store
	status StatusProvider
}

// NewHandler creates a new REST API handler
func NewHandler(st store.Store, status StatusProvider) Handler {
	return &handler{
		store:  st,
		status: status,
	}
}

// HealthCheck returns the health status of the projector
func (h *handler) HealthCheck(c *gin.Context) {
	status := h.status.Status()
	if status.Halted {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "halted",
			"service": "ff-projector",
			"reason":  status.Reason,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "ff-projector",
	})
}

// GetStatus returns the block loop status
func (h *handler) GetStatus(c *gin.Context) {
	status := h.status.Status()
	code := http.StatusOK
	if status.Halted {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, status)
}

// GetContent retrieves a content contract
func (h *handler) GetContent(c *gin.Context) {
	address, ok := addressParam(c, "address")
	if !ok {
		return
	}
	ctx := c.Request.Context()

	var content schema.Content
	found, err := h.store.Get(ctx, &content, address)
	if err != nil {
		respondInternalError(c, err, "Failed to get content", zap.String("address", address))
		return
	}
	if !found {
		respondNotFound(c, "Content not found")
		return
	}

	var fees []schema.ContractFee
	if err := h.store.Find(ctx, &fees, map[string]interface{}{"content": address}); err != nil {
		respondInternalError(c, err, "Failed to get content royalties", zap.String("address", address))
		return
	}

	c.JSON(http.StatusOK, dto.NewContentResponse(&content, fees))
}

// GetAsset retrieves an asset
func (h *handler) GetAsset(c *gin.Context) {
	content, tokenID, ok := compositeParam(c, "id", "asset")
	if !ok {
		return
	}
	id := domain.AssetKey(content, tokenID)
	ctx := c.Request.Context()

	var asset schema.Asset
	found, err := h.store.Get(ctx, &asset, id)
	if err != nil {
		respondInternalError(c, err, "Failed to get asset", zap.String("id", id))
		return
	}
	if !found {
		respondNotFound(c, "Asset not found")
		return
	}

	var fees []schema.AssetFee
	if err := h.store.Find(ctx, &fees, map[string]interface{}{"asset": id}); err != nil {
		respondInternalError(c, err, "Failed to get asset royalties", zap.String("id", id))
		return
	}
	var balances []schema.AssetBalance
	if err := h.store.Find(ctx, &balances, map[string]interface{}{"asset": id}); err != nil {
		respondInternalError(c, err, "Failed to get asset balances", zap.String("id", id))
		return
	}

	c.JSON(http.StatusOK, dto.NewAssetResponse(&asset, fees, balances))
}

// GetAccount retrieves an account
func (h *handler) GetAccount(c *gin.Context) {
	address, ok := addressParam(c, "address")
	if !ok {
		return
	}

	var account schema.Account
	found, err := h.store.Get(c.Request.Context(), &account, address)
	if err != nil {
		respondInternalError(c, err, "Failed to get account", zap.String("address", address))
		return
	}
	if !found {
		respondNotFound(c, "Account not found")
		return
	}

	c.JSON(http.StatusOK, dto.NewAccountResponse(&account))
}

// GetOrder retrieves an order
func (h *handler) GetOrder(c *gin.Context) {
	exchange, orderID, ok := compositeParam(c, "id", "order")
	if !ok {
		return
	}
	id := domain.OrderKey(exchange, orderID)
	ctx := c.Request.Context()

	var order schema.Order
	found, err := h.store.Get(ctx, &order, id)
	if err != nil {
		respondInternalError(c, err, "Failed to get order", zap.String("id", id))
		return
	}
	if !found {
		respondNotFound(c, "Order not found")
		return
	}

	var fills []schema.OrderFill
	if err := h.store.Find(ctx, &fills, map[string]interface{}{"order_ref": id}); err != nil {
		respondInternalError(c, err, "Failed to get order fills", zap.String("id", id))
		return
	}
	var claims []schema.OrderClaimTransaction
	if err := h.store.Find(ctx, &claims, map[string]interface{}{"order_ref": id}); err != nil {
		respondInternalError(c, err, "Failed to get order claims", zap.String("id", id))
		return
	}

	c.JSON(http.StatusOK, dto.NewOrderResponse(&order, fills, claims))
}

// GetToken retrieves a token. A fungible token and a payment token may share an address.
func (h *handler) GetToken(c *gin.Context) {
	address, ok := addressParam(c, "address")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	resp := dto.TokenResponse{Address: address}

	var fungible schema.FungibleToken
	found, err := h.store.Get(ctx, &fungible, address)
	if err != nil {
		respondInternalError(c, err, "Failed to get token", zap.String("address", address))
		return
	}
	if found {
		var supply schema.TokenSupply
		hasSupply, err := h.store.Get(ctx, &supply, address)
		if err != nil {
			respondInternalError(c, err, "Failed to get token supply", zap.String("address", address))
			return
		}
		if hasSupply {
			resp.Fungible = dto.NewFungibleTokenResponse(&fungible, &supply)
		} else {
			resp.Fungible = dto.NewFungibleTokenResponse(&fungible, nil)
		}
	}

	var payment schema.Token
	found, err = h.store.Get(ctx, &payment, address)
	if err != nil {
		respondInternalError(c, err, "Failed to get token", zap.String("address", address))
		return
	}
	if found {
		resp.Payment = dto.NewPaymentTokenResponse(&payment)
	}

	if resp.Fungible == nil && resp.Payment == nil {
		respondNotFound(c, "Token not found")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// addressParam reads and normalizes an address path parameter
func addressParam(c *gin.Context, name string) (string, bool) {
	raw := c.Param(name)
	if !common.IsHexAddress(raw) {
		respondBadRequest(c, "Invalid address", raw)
		return "", false
	}
	return domain.NormalizeAddress(raw), true
}

// compositeParam reads an address-number path parameter such as an asset or order id
func compositeParam(c *gin.Context, name, entity string) (string, *big.Int, bool) {
	raw := c.Param(name)
	address, number, found := strings.Cut(raw, "-")
	if !found || !common.IsHexAddress(address) {
		respondBadRequest(c, "Invalid "+entity+" id", "expected <address>-<number>")
		return "", nil, false
	}
	n, ok := new(big.Int).SetString(number, 10)
	if !ok || n.Sign() < 0 {
		respondBadRequest(c, "Invalid "+entity+" id", "expected <address>-<number>")
		return "", nil, false
	}
	return domain.NormalizeAddress(address), n, true
}
