package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/arzdex/arzdex/internal/core/logger"
	"github.com/arzdex/arzdex/internal/core/models"
	"github.com/arzdex/arzdex/internal/core/repository"
)

// ExportAll assembles a consistent point-in-time snapshot of every store.
// The read lock is held only while copying; no I/O happens under it.
func (e *Exchange) ExportAll() models.Snapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()

	wallets := make(map[string]*models.Wallet, len(e.st.wallets))
	for id, w := range e.st.wallets {
		wallets[id] = w.Clone()
	}
	depositInfo := make(map[string]models.DepositInfo, len(e.st.depositInfo))
	for id, info := range e.st.depositInfo {
		depositInfo[id] = info
	}

	return models.Snapshot{
		Version:          models.SnapshotVersion,
		ExportedAt:       time.Now().UTC(),
		Wallets:          wallets,
		Cryptos:          slices.Clone(e.st.cryptos),
		Transactions:     slices.Clone(e.st.transactions),
		DepositRequests:  slices.Clone(e.st.depositRequests),
		TomanRequests:    slices.Clone(e.st.tomanRequests),
		DepositInfo:      depositInfo,
		TomanDepositInfo: e.st.tomanDepositInfo,
		ExchangeConfig:   e.st.config,
	}
}

// ValidateSnapshot parses and structurally validates a backup blob without
// applying anything. It is the pure half of import: a snapshot it returns
// is safe to apply.
func ValidateSnapshot(raw []byte) (*models.Snapshot, error) {
	var probe struct {
		Version *int `json:"version"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, fmt.Errorf("%w: not a JSON document: %v", ErrSchemaMismatch, err)
	}
	if probe.Version == nil {
		return nil, fmt.Errorf("%w: missing version", ErrSchemaMismatch)
	}
	if *probe.Version != models.SnapshotVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrSchemaMismatch, *probe.Version)
	}

	var snap models.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchemaMismatch, err)
	}

	if snap.Wallets == nil {
		snap.Wallets = map[string]*models.Wallet{}
	}
	if snap.DepositInfo == nil {
		snap.DepositInfo = map[string]models.DepositInfo{}
	}
	normalizeWallets(snap.Wallets)

	for id, w := range snap.Wallets {
		if w.IRTBalance.IsNegative() {
			return nil, fmt.Errorf("%w: wallets[%s].irtBalance is negative", ErrSchemaMismatch, id)
		}
		for assetID, amount := range w.Assets {
			if amount.IsNegative() {
				return nil, fmt.Errorf("%w: wallets[%s].assets[%s] is negative", ErrSchemaMismatch, id, assetID)
			}
		}
	}
	for _, tx := range snap.Transactions {
		if !validStatus(tx.Status) {
			return nil, fmt.Errorf("%w: transactions[%s].status %q", ErrSchemaMismatch, tx.ID, tx.Status)
		}
	}
	for _, req := range snap.DepositRequests {
		if !validStatus(req.Status) {
			return nil, fmt.Errorf("%w: depositRequests[%s].status %q", ErrSchemaMismatch, req.ID, req.Status)
		}
	}
	for _, req := range snap.TomanRequests {
		if !validStatus(req.Status) {
			return nil, fmt.Errorf("%w: tomanRequests[%s].status %q", ErrSchemaMismatch, req.ID, req.Status)
		}
	}
	switch snap.ExchangeConfig.PriceMode {
	case models.PriceModeManual, models.PriceModeAuto:
	default:
		return nil, fmt.Errorf("%w: exchangeConfig.priceMode %q", ErrSchemaMismatch, snap.ExchangeConfig.PriceMode)
	}

	return &snap, nil
}

func validStatus(status models.RequestStatus) bool {
	switch status {
	case models.StatusPending, models.StatusApproved, models.StatusRejected:
		return true
	}
	return false
}

// ImportAll validates the blob and replaces every store, all or nothing.
// On any validation failure no store is touched; the durable write is one
// atomic batch.
func (e *Exchange) ImportAll(ctx context.Context, raw []byte) error {
	snap, err := ValidateSnapshot(raw)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.persist(ctx, map[string]any{
		repository.KeyWallets:          snap.Wallets,
		repository.KeyCryptos:          snap.Cryptos,
		repository.KeyTransactions:     snap.Transactions,
		repository.KeyDepositRequests:  snap.DepositRequests,
		repository.KeyTomanRequests:    snap.TomanRequests,
		repository.KeyDepositInfo:      snap.DepositInfo,
		repository.KeyTomanDepositInfo: snap.TomanDepositInfo,
		repository.KeyExchangeConfig:   snap.ExchangeConfig,
	}); err != nil {
		return err
	}

	e.st = state{
		wallets:          snap.Wallets,
		cryptos:          snap.Cryptos,
		transactions:     snap.Transactions,
		depositRequests:  snap.DepositRequests,
		tomanRequests:    snap.TomanRequests,
		depositInfo:      snap.DepositInfo,
		tomanDepositInfo: snap.TomanDepositInfo,
		config:           snap.ExchangeConfig,
	}
	e.publishPrices(ctx, e.st.cryptos)

	e.log.Info("State imported from backup",
		logger.IntField("wallets", len(snap.Wallets)),
		logger.IntField("transactions", len(snap.Transactions)))
	return nil
}
