package usecase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arzdex/arzdex/internal/core/logger"
	"github.com/arzdex/arzdex/internal/core/models"
	"github.com/arzdex/arzdex/internal/core/repository/memory"
	"github.com/arzdex/arzdex/internal/core/usecase"
)

func TestWalletCreatedLazilyWithZeroBalances(t *testing.T) {
	e, repo, _ := newTestExchange(t, nil)

	w := e.Wallet("nobody")
	assert.True(t, w.IRTBalance.IsZero())
	assert.Empty(t, w.Assets)

	// a read never persists anything
	var wallets map[string]*models.Wallet
	found, err := repo.Load(context.Background(), "wallets", &wallets)
	require.NoError(t, err)
	if found {
		assert.NotContains(t, wallets, "nobody")
	}
}

func TestPortfolioValueCoversEveryListedCrypto(t *testing.T) {
	e, _, _ := newTestExchange(t, nil)
	ctx := context.Background()

	require.NoError(t, e.SaveExchangeConfig(ctx, models.ExchangeConfig{
		PriceMode:       models.PriceModeManual,
		ManualUsdtPrice: dec("100000"),
	}))
	fundIRT(t, e, "alice", dec("500000"))
	fundAsset(t, e, "alice", "tether", dec("3"))

	valuation := e.PortfolioValue("alice")
	assert.Len(t, valuation.Assets, len(e.Cryptos(usecase.SortDefault)))
	assert.True(t, valuation.IRTBalance.Equal(dec("500000")))
	// 3 USDT at 100000 IRT
	assert.True(t, valuation.TotalPortfolioValue.Equal(dec("300000")), "got %s", valuation.TotalPortfolioValue)
	assert.True(t, valuation.TotalValue.Equal(dec("800000")))
}

func TestStateSurvivesRestart(t *testing.T) {
	repo := memory.NewRepo()
	sink := &recordingSink{}
	ctx := context.Background()

	first := usecase.NewExchange(repo, sink, nil, nil, logger.NewNop())
	require.NoError(t, first.Init(ctx))
	fundIRT(t, first, "alice", dec("750000"))
	req, err := first.SubmitTomanWithdraw(ctx, "alice", dec("250000"), "IR01")
	require.NoError(t, err)

	second := usecase.NewExchange(repo, sink, nil, nil, logger.NewNop())
	require.NoError(t, second.Init(ctx))

	assert.True(t, second.Wallet("alice").IRTBalance.Equal(dec("500000")))

	// the reloaded engine can settle requests submitted before the restart
	result, err := second.RejectTomanRequest(ctx, req.ID)
	require.NoError(t, err)
	assert.False(t, result.AlreadySettled)
	assert.True(t, second.Wallet("alice").IRTBalance.Equal(dec("750000")))
}
