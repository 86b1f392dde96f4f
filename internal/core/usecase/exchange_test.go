package usecase_test

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/arzdex/arzdex/internal/core/logger"
	"github.com/arzdex/arzdex/internal/core/models"
	"github.com/arzdex/arzdex/internal/core/repository/memory"
	"github.com/arzdex/arzdex/internal/core/usecase"
)

type sinkEvent struct {
	Audience string
	Title    string
	Message  string
	Severity usecase.Severity
}

type recordingSink struct {
	mu     sync.Mutex
	events []sinkEvent
}

func (s *recordingSink) Notify(audience, title, message string, severity usecase.Severity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, sinkEvent{audience, title, message, severity})
	return nil
}

func (s *recordingSink) Events() []sinkEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]sinkEvent, len(s.events))
	copy(out, s.events)
	return out
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newTestExchange(t *testing.T, feed usecase.PriceFeed) (*usecase.Exchange, *memory.Repo, *recordingSink) {
	t.Helper()

	repo := memory.NewRepo()
	sink := &recordingSink{}
	exchange := usecase.NewExchange(repo, sink, feed, nil, logger.NewNop())
	require.NoError(t, exchange.Init(context.Background()))
	return exchange, repo, sink
}

// fundIRT credits fiat to a user through the regular deposit flow.
func fundIRT(t *testing.T, e *usecase.Exchange, userID string, amount decimal.Decimal) {
	t.Helper()

	ctx := context.Background()
	req, err := e.SubmitTomanDeposit(ctx, userID, amount, "receipt.png")
	require.NoError(t, err)
	result, err := e.ApproveTomanRequest(ctx, req.ID)
	require.NoError(t, err)
	require.False(t, result.AlreadySettled)
}

// fundAsset credits a crypto to a user through the regular deposit flow.
func fundAsset(t *testing.T, e *usecase.Exchange, userID, cryptoID string, amount decimal.Decimal) {
	t.Helper()

	ctx := context.Background()
	req, err := e.SubmitDeposit(ctx, userID, cryptoID, amount, "receipt.png", "")
	require.NoError(t, err)
	result, err := e.ApproveDepositRequest(ctx, req.ID)
	require.NoError(t, err)
	require.False(t, result.AlreadySettled)
}

func requireWalletNonNegative(t *testing.T, w models.Wallet) {
	t.Helper()

	require.False(t, w.IRTBalance.IsNegative(), "irt balance went negative")
	for assetID, amount := range w.Assets {
		require.False(t, amount.IsNegative(), "asset %s went negative", assetID)
	}
}
