package usecase

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/arzdex/arzdex/internal/core/logger"
	"github.com/arzdex/arzdex/internal/core/models"
	"github.com/arzdex/arzdex/internal/core/repository"
)

// SubmitTrade records a pending buy/sell request at the current catalog
// price. Sell requests are validated against the held balance but nothing
// is reserved; settlement happens on approval.
func (e *Exchange) SubmitTrade(ctx context.Context, userID, cryptoID string, kind models.TradeKind, cryptoAmount decimal.Decimal) (models.Transaction, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if kind != models.TradeBuy && kind != models.TradeSell {
		return models.Transaction{}, fmt.Errorf("%w: %q", ErrInvalidOperationType, kind)
	}
	if !cryptoAmount.IsPositive() {
		return models.Transaction{}, ErrInvalidAmount
	}
	crypto, ok := e.cryptoByID(cryptoID)
	if !ok {
		return models.Transaction{}, fmt.Errorf("%w: crypto %q", ErrNotFound, cryptoID)
	}
	if kind == models.TradeSell {
		held := decimal.Zero
		if w, ok := e.st.wallets[userID]; ok {
			held = w.Asset(cryptoID)
		}
		if held.LessThan(cryptoAmount) {
			return models.Transaction{}, fmt.Errorf("%w: %s balance %s, requested %s",
				ErrInsufficientFunds, cryptoID, held, cryptoAmount)
		}
	}

	tx := models.Transaction{
		ID:             uuid.New().String(),
		UserID:         userID,
		CryptoID:       cryptoID,
		Kind:           kind,
		CryptoAmount:   cryptoAmount,
		PriceAtRequest: crypto.Price,
		Status:         models.StatusPending,
		Timestamp:      time.Now().UTC(),
	}

	next := append(slices.Clone(e.st.transactions), tx)
	if err := e.persist(ctx, map[string]any{repository.KeyTransactions: next}); err != nil {
		return models.Transaction{}, err
	}
	e.st.transactions = next

	e.log.Info("Trade submitted",
		logger.StringField("tx_id", tx.ID),
		logger.StringField("user_id", userID),
		logger.StringField("kind", string(kind)),
		logger.StringField("crypto_id", cryptoID),
		logger.StringField("amount", cryptoAmount.String()),
		logger.StringField("price", tx.PriceAtRequest.String()))
	return tx, nil
}

// ApproveTrade settles a pending trade exactly once: buy debits fiat and
// credits the asset at the recorded price, sell does the reverse.
// Approving a settled trade is a no-op reported via AlreadySettled.
func (e *Exchange) ApproveTrade(ctx context.Context, txID string) (SettleResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	idx := slices.IndexFunc(e.st.transactions, func(tx models.Transaction) bool { return tx.ID == txID })
	if idx < 0 {
		return SettleResult{}, fmt.Errorf("%w: transaction %q", ErrNotFound, txID)
	}
	tx := e.st.transactions[idx]
	if tx.Status != models.StatusPending {
		return SettleResult{AlreadySettled: true}, nil
	}

	w := e.walletForUpdate(tx.UserID)
	switch tx.Kind {
	case models.TradeBuy:
		if err := debitWallet(w, models.AssetIRT, tx.IRTValue()); err != nil {
			return SettleResult{}, err
		}
		creditWallet(w, tx.CryptoID, tx.CryptoAmount)
	case models.TradeSell:
		if err := debitWallet(w, tx.CryptoID, tx.CryptoAmount); err != nil {
			return SettleResult{}, err
		}
		creditWallet(w, models.AssetIRT, tx.IRTValue())
	default:
		return SettleResult{}, fmt.Errorf("%w: %q", ErrInvalidOperationType, tx.Kind)
	}

	next := slices.Clone(e.st.transactions)
	next[idx].Status = models.StatusApproved
	wallets := e.stagedWallets(w)

	if err := e.persist(ctx, map[string]any{
		repository.KeyTransactions: next,
		repository.KeyWallets:      wallets,
	}); err != nil {
		return SettleResult{}, err
	}
	e.st.transactions = next
	e.st.wallets = wallets

	e.log.Info("Trade approved",
		logger.StringField("tx_id", tx.ID),
		logger.StringField("user_id", tx.UserID))
	e.notify(tx.UserID, "Trade approved",
		fmt.Sprintf("Your %s request for %s %s was approved.", tx.Kind, tx.CryptoAmount, tx.CryptoID),
		SeveritySuccess)
	return SettleResult{}, nil
}

// RejectTrade marks a pending trade rejected. No funds were reserved at
// submission, so balances are untouched.
func (e *Exchange) RejectTrade(ctx context.Context, txID string) (SettleResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	idx := slices.IndexFunc(e.st.transactions, func(tx models.Transaction) bool { return tx.ID == txID })
	if idx < 0 {
		return SettleResult{}, fmt.Errorf("%w: transaction %q", ErrNotFound, txID)
	}
	tx := e.st.transactions[idx]
	if tx.Status != models.StatusPending {
		return SettleResult{AlreadySettled: true}, nil
	}

	next := slices.Clone(e.st.transactions)
	next[idx].Status = models.StatusRejected
	if err := e.persist(ctx, map[string]any{repository.KeyTransactions: next}); err != nil {
		return SettleResult{}, err
	}
	e.st.transactions = next

	e.log.Info("Trade rejected",
		logger.StringField("tx_id", tx.ID),
		logger.StringField("user_id", tx.UserID))
	e.notify(tx.UserID, "Trade rejected",
		fmt.Sprintf("Your %s request for %s %s was rejected.", tx.Kind, tx.CryptoAmount, tx.CryptoID),
		SeverityError)
	return SettleResult{}, nil
}

// Transactions returns all trades, newest first.
func (e *Exchange) Transactions() []models.Transaction {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return sortedByTimeDesc(e.st.transactions, func(tx models.Transaction) time.Time { return tx.Timestamp })
}

// TransactionsFor returns one user's trades, newest first.
func (e *Exchange) TransactionsFor(userID string) []models.Transaction {
	e.mu.RLock()
	defer e.mu.RUnlock()

	var out []models.Transaction
	for _, tx := range e.st.transactions {
		if tx.UserID == userID {
			out = append(out, tx)
		}
	}
	return sortedByTimeDesc(out, func(tx models.Transaction) time.Time { return tx.Timestamp })
}

func sortedByTimeDesc[T any](items []T, at func(T) time.Time) []T {
	out := slices.Clone(items)
	slices.SortStableFunc(out, func(a, b T) int {
		return at(b).Compare(at(a))
	})
	return out
}
