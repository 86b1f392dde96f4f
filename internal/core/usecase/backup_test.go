package usecase_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arzdex/arzdex/internal/core/models"
	"github.com/arzdex/arzdex/internal/core/usecase"
)

func populatedExchange(t *testing.T) *usecase.Exchange {
	t.Helper()

	e, _, _ := newTestExchange(t, nil)
	ctx := context.Background()
	fundIRT(t, e, "alice", dec("1000000"))
	fundAsset(t, e, "bob", "bitcoin", dec("0.75"))

	_, err := e.SubmitTomanWithdraw(ctx, "alice", dec("100000"), "IR01")
	require.NoError(t, err)
	_, err = e.SubmitTrade(ctx, "bob", "bitcoin", models.TradeSell, dec("0.25"))
	require.NoError(t, err)
	require.NoError(t, e.SetDepositInfo(ctx, "bitcoin", models.DepositInfo{Address: "bc1qexchange", Network: "mainnet"}))
	require.NoError(t, e.SetTomanDepositInfo(ctx, models.TomanDepositInfo{
		CardNumber:  "6037-0000-0000-0000",
		ShabaNumber: "IR990000000000000000000000",
	}))
	return e
}

func TestBackupRoundTrip(t *testing.T) {
	source := populatedExchange(t)
	target, _, _ := newTestExchange(t, nil)

	snap := source.ExportAll()
	raw, err := json.Marshal(snap)
	require.NoError(t, err)

	require.NoError(t, target.ImportAll(context.Background(), raw))

	imported := target.ExportAll()
	// pin the only field allowed to differ
	imported.ExportedAt = snap.ExportedAt

	want, err := json.Marshal(snap)
	require.NoError(t, err)
	got, err := json.Marshal(imported)
	require.NoError(t, err)
	assert.JSONEq(t, string(want), string(got))
}

func TestImportRejectsMissingVersion(t *testing.T) {
	e := populatedExchange(t)
	before := e.ExportAll()

	blob := map[string]any{"wallets": map[string]any{}, "exportedAt": time.Now()}
	raw, err := json.Marshal(blob)
	require.NoError(t, err)

	err = e.ImportAll(context.Background(), raw)
	assert.ErrorIs(t, err, usecase.ErrSchemaMismatch)

	after := e.ExportAll()
	after.ExportedAt = before.ExportedAt
	want, _ := json.Marshal(before)
	got, _ := json.Marshal(after)
	assert.JSONEq(t, string(want), string(got), "failed import must not modify any store")
}

func TestImportRejectsUnknownVersion(t *testing.T) {
	e, _, _ := newTestExchange(t, nil)

	raw := []byte(`{"version": 99}`)
	err := e.ImportAll(context.Background(), raw)
	assert.ErrorIs(t, err, usecase.ErrSchemaMismatch)
}

func TestImportRejectsNegativeBalances(t *testing.T) {
	e, _, _ := newTestExchange(t, nil)
	snap := e.ExportAll()
	snap.Wallets["mallory"] = &models.Wallet{
		OwnerID:    "mallory",
		IRTBalance: dec("-5"),
	}
	raw, err := json.Marshal(snap)
	require.NoError(t, err)

	err = e.ImportAll(context.Background(), raw)
	assert.ErrorIs(t, err, usecase.ErrSchemaMismatch)
}

func TestValidateSnapshotIsPure(t *testing.T) {
	_, err := usecase.ValidateSnapshot([]byte("not json"))
	assert.ErrorIs(t, err, usecase.ErrSchemaMismatch)

	_, err = usecase.ValidateSnapshot([]byte(`{"version": 1, "transactions": [{"id":"t1","status":"weird"}]}`))
	assert.ErrorIs(t, err, usecase.ErrSchemaMismatch)

	snap, err := usecase.ValidateSnapshot([]byte(`{"version": 1, "exchangeConfig": {"priceMode": "manual", "manualUsdtPrice": "60000"}}`))
	require.NoError(t, err)
	assert.NotNil(t, snap.Wallets)
	assert.NotNil(t, snap.DepositInfo)
}

func TestImportStorageFailureLeavesStateIntact(t *testing.T) {
	e, repo, _ := newTestExchange(t, nil)
	fundIRT(t, e, "alice", dec("500"))
	before := e.ExportAll()

	other := populatedExchange(t)
	raw, err := json.Marshal(other.ExportAll())
	require.NoError(t, err)

	repo.FailWrites = true
	err = e.ImportAll(context.Background(), raw)
	assert.ErrorIs(t, err, usecase.ErrStorage)

	repo.FailWrites = false
	after := e.ExportAll()
	after.ExportedAt = before.ExportedAt
	want, _ := json.Marshal(before)
	got, _ := json.Marshal(after)
	assert.JSONEq(t, string(want), string(got))
}
