package usecase

import (
	"context"
	"fmt"

	"github.com/arzdex/arzdex/internal/core/logger"
	"github.com/arzdex/arzdex/internal/core/models"
	"github.com/arzdex/arzdex/internal/core/repository"
)

// SetDepositInfo replaces the receiving address shown for one crypto.
func (e *Exchange) SetDepositInfo(ctx context.Context, cryptoID string, info models.DepositInfo) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if info.Address == "" {
		return fmt.Errorf("%w: deposit address", ErrInvalidReceipt)
	}
	if _, ok := e.cryptoByID(cryptoID); !ok {
		return fmt.Errorf("%w: crypto %q", ErrNotFound, cryptoID)
	}

	next := make(map[string]models.DepositInfo, len(e.st.depositInfo)+1)
	for id, existing := range e.st.depositInfo {
		next[id] = existing
	}
	next[cryptoID] = info

	if err := e.persist(ctx, map[string]any{repository.KeyDepositInfo: next}); err != nil {
		return err
	}
	e.st.depositInfo = next

	e.log.Info("Deposit info updated", logger.StringField("crypto_id", cryptoID))
	return nil
}

// DepositInfoFor returns the receiving address for one crypto.
func (e *Exchange) DepositInfoFor(cryptoID string) (models.DepositInfo, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	info, ok := e.st.depositInfo[cryptoID]
	return info, ok
}

// DepositInfoDirectory returns the whole crypto deposit-info map.
func (e *Exchange) DepositInfoDirectory() map[string]models.DepositInfo {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make(map[string]models.DepositInfo, len(e.st.depositInfo))
	for id, info := range e.st.depositInfo {
		out[id] = info
	}
	return out
}

// SetTomanDepositInfo replaces the bank details shown for fiat deposits.
func (e *Exchange) SetTomanDepositInfo(ctx context.Context, info models.TomanDepositInfo) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if info.CardNumber == "" || info.ShabaNumber == "" {
		return fmt.Errorf("%w: card and shaba numbers", ErrInvalidReceipt)
	}

	if err := e.persist(ctx, map[string]any{repository.KeyTomanDepositInfo: info}); err != nil {
		return err
	}
	e.st.tomanDepositInfo = info

	e.log.Info("Toman deposit info updated")
	return nil
}

// TomanDepositInfo returns the bank details shown for fiat deposits.
func (e *Exchange) TomanDepositInfo() models.TomanDepositInfo {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.st.tomanDepositInfo
}
