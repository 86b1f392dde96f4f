package usecase

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/arzdex/arzdex/internal/core/models"
)

// creditWallet and debitWallet are the only balance mutations in the
// engine. assetID models.AssetIRT addresses the fiat balance.
func creditWallet(w *models.Wallet, assetID string, amount decimal.Decimal) {
	if assetID == models.AssetIRT {
		w.IRTBalance = w.IRTBalance.Add(amount)
		return
	}
	w.Assets[assetID] = w.Asset(assetID).Add(amount)
}

func debitWallet(w *models.Wallet, assetID string, amount decimal.Decimal) error {
	if assetID == models.AssetIRT {
		next := w.IRTBalance.Sub(amount)
		if next.IsNegative() {
			return fmt.Errorf("%w: irt balance %s, requested %s",
				ErrInsufficientFunds, w.IRTBalance, amount)
		}
		w.IRTBalance = next
		return nil
	}
	next := w.Asset(assetID).Sub(amount)
	if next.IsNegative() {
		return fmt.Errorf("%w: %s balance %s, requested %s",
			ErrInsufficientFunds, assetID, w.Asset(assetID), amount)
	}
	w.Assets[assetID] = next
	return nil
}

// walletForUpdate returns a staged copy of the user's wallet, creating a
// zeroed one for first-time users. The copy is committed only after the
// mutation has been persisted.
func (e *Exchange) walletForUpdate(userID string) *models.Wallet {
	if w, ok := e.st.wallets[userID]; ok {
		return w.Clone()
	}
	return models.NewWallet(userID)
}

func normalizeWallets(wallets map[string]*models.Wallet) {
	for id, w := range wallets {
		if w.Assets == nil {
			w.Assets = map[string]decimal.Decimal{}
		}
		if w.OwnerID == "" {
			w.OwnerID = id
		}
	}
}

// Wallet returns a copy of the user's wallet. Users with no balance
// history get a zeroed wallet; nothing is persisted by a read.
func (e *Exchange) Wallet(userID string) models.Wallet {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if w, ok := e.st.wallets[userID]; ok {
		return *w.Clone()
	}
	return *models.NewWallet(userID)
}

// PortfolioValue values the wallet at current catalog prices. Every
// listed crypto appears in the result, held or not.
func (e *Exchange) PortfolioValue(userID string) models.PortfolioValuation {
	e.mu.RLock()
	defer e.mu.RUnlock()

	w, ok := e.st.wallets[userID]
	if !ok {
		w = models.NewWallet(userID)
	}

	valuation := models.PortfolioValuation{
		OwnerID:             userID,
		IRTBalance:          w.IRTBalance,
		TotalPortfolioValue: decimal.Zero,
	}
	for _, crypto := range e.st.cryptos {
		amount := w.Asset(crypto.ID)
		value := amount.Mul(crypto.Price)
		valuation.Assets = append(valuation.Assets, models.AssetValuation{
			CryptoID: crypto.ID,
			Symbol:   crypto.Symbol,
			Amount:   amount,
			ValueIRT: value,
		})
		valuation.TotalPortfolioValue = valuation.TotalPortfolioValue.Add(value)
	}
	valuation.TotalValue = valuation.IRTBalance.Add(valuation.TotalPortfolioValue)
	return valuation
}
