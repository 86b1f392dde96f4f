package models

import "github.com/shopspring/decimal"

// AssetIRT is the asset id of the fiat (toman) balance. Credit and debit
// accept it wherever a crypto id is accepted.
const AssetIRT = "IRT"

// Wallet holds one user's balances. Created lazily with zero balances on
// the first balance-affecting event. Only the engine mutates it.
type Wallet struct {
	OwnerID    string                     `json:"ownerId"`
	IRTBalance decimal.Decimal            `json:"irtBalance"`
	Assets     map[string]decimal.Decimal `json:"assets"`
}

func NewWallet(ownerID string) *Wallet {
	return &Wallet{
		OwnerID:    ownerID,
		IRTBalance: decimal.Zero,
		Assets:     map[string]decimal.Decimal{},
	}
}

// Asset returns the held amount of a crypto, zero if none.
func (w Wallet) Asset(cryptoID string) decimal.Decimal {
	if amount, ok := w.Assets[cryptoID]; ok {
		return amount
	}
	return decimal.Zero
}

// Clone returns a deep copy, used for staged mutation before persistence.
func (w *Wallet) Clone() *Wallet {
	assets := make(map[string]decimal.Decimal, len(w.Assets))
	for id, amount := range w.Assets {
		assets[id] = amount
	}
	return &Wallet{OwnerID: w.OwnerID, IRTBalance: w.IRTBalance, Assets: assets}
}

// AssetValuation is one line of a portfolio valuation.
type AssetValuation struct {
	CryptoID string          `json:"cryptoId"`
	Symbol   string          `json:"symbol"`
	Amount   decimal.Decimal `json:"amount"`
	ValueIRT decimal.Decimal `json:"valueIrt"`
}

// PortfolioValuation is a derived view of a wallet against current prices.
// It is never persisted.
type PortfolioValuation struct {
	OwnerID             string           `json:"ownerId"`
	IRTBalance          decimal.Decimal  `json:"irtBalance"`
	Assets              []AssetValuation `json:"assets"`
	TotalPortfolioValue decimal.Decimal  `json:"totalPortfolioValue"`
	TotalValue          decimal.Decimal  `json:"totalValue"`
}
