package audit_test

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-projector/internal/audit"
	"github.com/feral-file/ff-projector/internal/domain"
	"github.com/feral-file/ff-projector/internal/logger"
	"github.com/feral-file/ff-projector/internal/store"
	"github.com/feral-file/ff-projector/internal/store/schema"
	"github.com/feral-file/ff-projector/internal/store/storetest"
)

const (
	contentAddr  = "0x00000000000000000000000000000000000000c0"
	exchangeAddr = "0x00000000000000000000000000000000000000e1"
	rawrAddr     = "0x00000000000000000000000000000000000000d3"
	alice        = "0x000000000000000000000000000000000000000a"
	bob          = "0x000000000000000000000000000000000000000b"
)

func TestMain(m *testing.M) {
	if err := logger.Initialize(logger.Config{Debug: false}); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

// seedConsistent stores a small projection whose counters all agree with their children
func seedConsistent(t *testing.T) store.Store {
	t.Helper()
	ctx := context.Background()
	s := store.NewGormStore(storetest.NewSQLite(t))

	assetID := contentAddr + "-7"
	content := schema.NewContent(contentAddr)
	content.AssetsCount = 1
	content.MintersCount = 1

	asset := schema.NewAsset(assetID, contentAddr, "7")
	asset.CurrentSupply = schema.NewUint256(5)
	asset.OwnersCount = 2

	aliceBalance := schema.NewAssetBalance(contentAddr+"-"+alice+"-7", assetID, contentAddr, alice, "7")
	aliceBalance.Amount = schema.NewUint256(3)
	bobBalance := schema.NewAssetBalance(contentAddr+"-"+bob+"-7", assetID, contentAddr, bob, "7")
	bobBalance.Amount = schema.NewUint256(2)

	aliceAccount := schema.NewAccount(alice)
	aliceAccount.UniqueAssetsCount = 1
	aliceAccount.OrdersCount = 2
	aliceAccount.ActiveOrdersCount = 1
	aliceAccount.ActiveSellOrders = 1
	aliceAccount.ActiveDaysCount = 1
	bobAccount := schema.NewAccount(bob)
	bobAccount.UniqueAssetsCount = 1

	exchange := &schema.Exchange{
		ID:                         exchangeAddr,
		TotalOrdersCount:           2,
		TotalBuyOrdersCount:        1,
		TotalSellOrdersCount:       1,
		TotalActiveOrdersCount:     1,
		TotalActiveSellOrdersCount: 1,
	}
	open := &schema.Order{ID: exchangeAddr + "-1", Exchange: exchangeAddr, Owner: alice, Asset: assetID, Type: domain.OrderTypeSell, Status: domain.OrderStatusPartiallyFilled}
	cancelled := &schema.Order{ID: exchangeAddr + "-2", Exchange: exchangeAddr, Owner: alice, Asset: assetID, Type: domain.OrderTypeBuy, Status: domain.OrderStatusCancelled}

	token := &schema.FungibleToken{ID: rawrAddr, OwnersCount: 1}
	supply := &schema.TokenSupply{ID: rawrAddr, CurrentSupply: schema.NewUint256(9)}
	tokenBalance := &schema.TokenBalance{ID: rawrAddr + "-" + alice, Token: rawrAddr, Owner: alice, Amount: schema.NewUint256(9)}
	emptyBalance := &schema.TokenBalance{ID: rawrAddr + "-" + bob, Token: rawrAddr, Owner: bob}

	for _, e := range []interface{}{
		content, asset, aliceBalance, bobBalance,
		&schema.Minter{ID: contentAddr + "-" + alice, Content: contentAddr, Account: alice},
		aliceAccount, bobAccount,
		&schema.AccountDayData{ID: alice + "-" + rawrAddr + "-19675", Account: alice, Token: rawrAddr, Day: 19675},
		&schema.AccountDayData{ID: alice + "-" + exchangeAddr + "-19675", Account: alice, Token: exchangeAddr, Day: 19675},
		exchange, open, cancelled,
		token, supply, tokenBalance, emptyBalance,
	} {
		require.NoError(t, s.Save(ctx, e))
	}
	return s
}

func TestVerify_Consistent(t *testing.T) {
	s := seedConsistent(t)

	report, err := audit.New(s).Verify(context.Background())
	require.NoError(t, err)
	assert.True(t, report.OK(), "%v", report.Violations)
	assert.Equal(t, 1, report.Checked["Asset"])
	assert.Equal(t, 2, report.Checked["Account"])
}

func TestVerifyAndRepair_DriftedCounters(t *testing.T) {
	ctx := context.Background()
	s := seedConsistent(t)

	var content schema.Content
	_, err := s.Get(ctx, &content, contentAddr)
	require.NoError(t, err)
	content.AssetsCount = 4
	content.OperatorsCount = 1

	var account schema.Account
	_, err = s.Get(ctx, &account, alice)
	require.NoError(t, err)
	account.ActiveOrdersCount = 0
	account.ActiveSellOrders = 0

	var exchange schema.Exchange
	_, err = s.Get(ctx, &exchange, exchangeAddr)
	require.NoError(t, err)
	exchange.TotalActiveBuyOrdersCount = 1

	var asset schema.Asset
	_, err = s.Get(ctx, &asset, contentAddr+"-7")
	require.NoError(t, err)
	asset.CurrentSupply = schema.NewUint256(6)

	for _, e := range []interface{}{&content, &account, &exchange, &asset} {
		require.NoError(t, s.Save(ctx, e))
	}

	auditor := audit.New(s)
	report, err := auditor.Verify(ctx)
	require.NoError(t, err)
	require.Len(t, report.Violations, 6)

	fields := map[string]bool{}
	for _, v := range report.Violations {
		fields[v.Entity+"."+v.Field] = v.Repairable
	}
	assert.Equal(t, map[string]bool{
		"Asset.currentSupply":                false,
		"Content.assetsCount":                true,
		"Content.operatorsCount":             true,
		"Account.activeOrdersCount":          true,
		"Account.activeSellOrders":           true,
		"Exchange.totalActiveBuyOrdersCount": true,
	}, fields)

	repaired, err := auditor.Repair(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, repaired.Repaired)

	_, err = s.Get(ctx, &content, contentAddr)
	require.NoError(t, err)
	assert.Equal(t, int64(1), content.AssetsCount)
	assert.Equal(t, int64(0), content.OperatorsCount)

	// supply is never rewritten
	after, err := auditor.Verify(ctx)
	require.NoError(t, err)
	require.Len(t, after.Violations, 1)
	assert.Equal(t, "6", after.Violations[0].Stored)
	assert.Equal(t, "5", after.Violations[0].Derived)
}
