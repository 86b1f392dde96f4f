package usecase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arzdex/arzdex/internal/core/models"
	"github.com/arzdex/arzdex/internal/core/usecase"
)

func TestTomanWithdrawReservesAndReleases(t *testing.T) {
	e, _, _ := newTestExchange(t, nil)
	ctx := context.Background()
	fundIRT(t, e, "alice", dec("1000000"))

	req, err := e.SubmitTomanWithdraw(ctx, "alice", dec("400000"), "IR000000000000000000000001")
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, req.Status)

	// funds reserved immediately
	assert.True(t, e.Wallet("alice").IRTBalance.Equal(dec("600000")))

	result, err := e.RejectTomanRequest(ctx, req.ID)
	require.NoError(t, err)
	assert.False(t, result.AlreadySettled)

	// reservation released in full
	assert.True(t, e.Wallet("alice").IRTBalance.Equal(dec("1000000")))

	requests := e.TomanRequestsFor("alice")
	require.Len(t, requests, 2) // funding deposit + withdrawal
	assert.Equal(t, models.StatusRejected, requests[0].Status)
}

func TestTomanWithdrawApprovalKeepsReservedDebit(t *testing.T) {
	e, _, _ := newTestExchange(t, nil)
	ctx := context.Background()
	fundIRT(t, e, "alice", dec("1000000"))

	req, err := e.SubmitTomanWithdraw(ctx, "alice", dec("400000"), "IR000000000000000000000001")
	require.NoError(t, err)

	result, err := e.ApproveTomanRequest(ctx, req.ID)
	require.NoError(t, err)
	assert.False(t, result.AlreadySettled)

	// no double debit on approval
	assert.True(t, e.Wallet("alice").IRTBalance.Equal(dec("600000")))

	// second approval is a no-op
	result, err = e.ApproveTomanRequest(ctx, req.ID)
	require.NoError(t, err)
	assert.True(t, result.AlreadySettled)
	assert.True(t, e.Wallet("alice").IRTBalance.Equal(dec("600000")))
}

func TestTomanWithdrawOverAvailableBalanceRejectedAtSubmit(t *testing.T) {
	e, _, _ := newTestExchange(t, nil)
	ctx := context.Background()
	fundIRT(t, e, "alice", dec("1000000"))

	_, err := e.SubmitTomanWithdraw(ctx, "alice", dec("700000"), "IR01")
	require.NoError(t, err)

	// 300000 left after the pending reservation
	_, err = e.SubmitTomanWithdraw(ctx, "alice", dec("400000"), "IR02")
	assert.ErrorIs(t, err, usecase.ErrInsufficientFunds)

	var withdrawals int
	for _, req := range e.TomanRequestsFor("alice") {
		if req.Kind == models.TomanWithdraw {
			withdrawals++
		}
	}
	assert.Equal(t, 1, withdrawals, "failed submission must not be stored")
	requireWalletNonNegative(t, e.Wallet("alice"))
}

func TestTomanDepositLifecycle(t *testing.T) {
	e, _, sink := newTestExchange(t, nil)
	ctx := context.Background()

	req, err := e.SubmitTomanDeposit(ctx, "bob", dec("250000"), "receipt.png")
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, req.Status)
	assert.True(t, e.Wallet("bob").IRTBalance.IsZero())

	result, err := e.ApproveTomanRequest(ctx, req.ID)
	require.NoError(t, err)
	assert.False(t, result.AlreadySettled)
	assert.True(t, e.Wallet("bob").IRTBalance.Equal(dec("250000")))

	events := sink.Events()
	require.NotEmpty(t, events)
	assert.Equal(t, "bob", events[len(events)-1].Audience)
}

func TestTomanDepositRejectIsBalanceNeutral(t *testing.T) {
	e, _, _ := newTestExchange(t, nil)
	ctx := context.Background()

	req, err := e.SubmitTomanDeposit(ctx, "bob", dec("250000"), "receipt.png")
	require.NoError(t, err)

	result, err := e.RejectTomanRequest(ctx, req.ID)
	require.NoError(t, err)
	assert.False(t, result.AlreadySettled)
	assert.True(t, e.Wallet("bob").IRTBalance.IsZero())
}

func TestTomanSubmitValidation(t *testing.T) {
	e, _, _ := newTestExchange(t, nil)
	ctx := context.Background()

	_, err := e.SubmitTomanDeposit(ctx, "bob", dec("0"), "receipt.png")
	assert.ErrorIs(t, err, usecase.ErrInvalidAmount)

	_, err = e.SubmitTomanDeposit(ctx, "bob", dec("1000"), "")
	assert.ErrorIs(t, err, usecase.ErrInvalidReceipt)

	_, err = e.SubmitTomanWithdraw(ctx, "bob", dec("1000"), "")
	assert.ErrorIs(t, err, usecase.ErrInvalidReceipt)
}

func TestTomanRequestStorageFailureLeavesMemoryConsistent(t *testing.T) {
	e, repo, _ := newTestExchange(t, nil)
	ctx := context.Background()
	fundIRT(t, e, "alice", dec("1000000"))

	repo.FailWrites = true
	_, err := e.SubmitTomanWithdraw(ctx, "alice", dec("400000"), "IR01")
	assert.ErrorIs(t, err, usecase.ErrStorage)

	repo.FailWrites = false
	assert.True(t, e.Wallet("alice").IRTBalance.Equal(dec("1000000")),
		"failed persistence must not leave a reservation behind")
	for _, req := range e.TomanRequestsFor("alice") {
		assert.NotEqual(t, models.TomanWithdraw, req.Kind)
	}
}
