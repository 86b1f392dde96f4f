package usecase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arzdex/arzdex/internal/core/models"
	"github.com/arzdex/arzdex/internal/core/usecase"
)

func TestDepositRequestLifecycle(t *testing.T) {
	e, _, _ := newTestExchange(t, nil)
	ctx := context.Background()

	req, err := e.SubmitDeposit(ctx, "alice", "bitcoin", dec("0.5"), "receipt.png", "0xabc")
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, req.Status)
	assert.Equal(t, models.AssetRequestDeposit, req.Kind)

	// wallet untouched while pending
	assert.True(t, e.Wallet("alice").Asset("bitcoin").IsZero())

	result, err := e.ApproveDepositRequest(ctx, req.ID)
	require.NoError(t, err)
	assert.False(t, result.AlreadySettled)

	w := e.Wallet("alice")
	assert.True(t, w.Asset("bitcoin").Equal(dec("0.5")))
	assert.True(t, w.Asset("ethereum").IsZero(), "other assets unchanged")
	assert.True(t, w.IRTBalance.IsZero())
}

func TestDepositRequestRejectIsBalanceNeutral(t *testing.T) {
	e, _, _ := newTestExchange(t, nil)
	ctx := context.Background()

	req, err := e.SubmitDeposit(ctx, "alice", "bitcoin", dec("0.5"), "receipt.png", "")
	require.NoError(t, err)

	result, err := e.RejectDepositRequest(ctx, req.ID)
	require.NoError(t, err)
	assert.False(t, result.AlreadySettled)
	assert.True(t, e.Wallet("alice").Asset("bitcoin").IsZero())

	// settled requests stay settled
	result, err = e.ApproveDepositRequest(ctx, req.ID)
	require.NoError(t, err)
	assert.True(t, result.AlreadySettled)
	assert.True(t, e.Wallet("alice").Asset("bitcoin").IsZero())
}

func TestDepositRequestValidation(t *testing.T) {
	e, _, _ := newTestExchange(t, nil)
	ctx := context.Background()

	_, err := e.SubmitDeposit(ctx, "alice", "bitcoin", dec("0"), "receipt.png", "")
	assert.ErrorIs(t, err, usecase.ErrInvalidAmount)

	_, err = e.SubmitDeposit(ctx, "alice", "bitcoin", dec("1"), "", "")
	assert.ErrorIs(t, err, usecase.ErrInvalidReceipt)

	_, err = e.SubmitDeposit(ctx, "alice", "no-such-coin", dec("1"), "receipt.png", "")
	assert.ErrorIs(t, err, usecase.ErrNotFound)
}

func TestAssetWithdrawReservesAtSubmission(t *testing.T) {
	e, _, _ := newTestExchange(t, nil)
	ctx := context.Background()
	fundAsset(t, e, "bob", "bitcoin", dec("1"))

	req, err := e.SubmitAssetWithdraw(ctx, "bob", "bitcoin", dec("0.4"), "bc1qdest")
	require.NoError(t, err)
	assert.Equal(t, models.AssetRequestWithdraw, req.Kind)

	assert.True(t, e.Wallet("bob").Asset("bitcoin").Equal(dec("0.6")))

	// approval finalizes without a second debit
	result, err := e.ApproveDepositRequest(ctx, req.ID)
	require.NoError(t, err)
	assert.False(t, result.AlreadySettled)
	assert.True(t, e.Wallet("bob").Asset("bitcoin").Equal(dec("0.6")))
}

func TestAssetWithdrawRejectReleasesReservation(t *testing.T) {
	e, _, _ := newTestExchange(t, nil)
	ctx := context.Background()
	fundAsset(t, e, "bob", "bitcoin", dec("1"))

	req, err := e.SubmitAssetWithdraw(ctx, "bob", "bitcoin", dec("0.4"), "bc1qdest")
	require.NoError(t, err)

	result, err := e.RejectDepositRequest(ctx, req.ID)
	require.NoError(t, err)
	assert.False(t, result.AlreadySettled)
	assert.True(t, e.Wallet("bob").Asset("bitcoin").Equal(dec("1")))
}

func TestAssetWithdrawOverHeldBalanceRejectedAtSubmit(t *testing.T) {
	e, _, _ := newTestExchange(t, nil)
	ctx := context.Background()
	fundAsset(t, e, "bob", "bitcoin", dec("0.3"))

	_, err := e.SubmitAssetWithdraw(ctx, "bob", "bitcoin", dec("0.5"), "bc1qdest")
	assert.ErrorIs(t, err, usecase.ErrInsufficientFunds)

	for _, req := range e.DepositRequestsFor("bob") {
		assert.NotEqual(t, models.AssetRequestWithdraw, req.Kind, "failed submission must not be stored")
	}
	requireWalletNonNegative(t, e.Wallet("bob"))
}

func TestAssetWithdrawRequiresAddress(t *testing.T) {
	e, _, _ := newTestExchange(t, nil)
	fundAsset(t, e, "bob", "bitcoin", dec("1"))

	_, err := e.SubmitAssetWithdraw(context.Background(), "bob", "bitcoin", dec("0.1"), "")
	assert.ErrorIs(t, err, usecase.ErrInvalidReceipt)
}
