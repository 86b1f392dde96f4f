package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// RequestStatus is the lifecycle of every user-submitted request.
// Pending is the only initial value; a request that has left pending
// never changes again.
type RequestStatus string

const (
	StatusPending  RequestStatus = "pending"
	StatusApproved RequestStatus = "approved"
	StatusRejected RequestStatus = "rejected"
)

type TradeKind string

const (
	TradeBuy  TradeKind = "buy"
	TradeSell TradeKind = "sell"
)

// Transaction is a buy/sell trade request. PriceAtRequest is captured at
// submission and used for settlement regardless of later price moves.
type Transaction struct {
	ID             string          `json:"id"`
	UserID         string          `json:"userId"`
	CryptoID       string          `json:"cryptoId"`
	Kind           TradeKind       `json:"kind"`
	CryptoAmount   decimal.Decimal `json:"cryptoAmount"`
	PriceAtRequest decimal.Decimal `json:"priceAtRequest"`
	Status         RequestStatus   `json:"status"`
	Timestamp      time.Time       `json:"timestamp"`
}

// IRTValue is the fiat leg of the trade at the recorded price.
func (t Transaction) IRTValue() decimal.Decimal {
	return t.CryptoAmount.Mul(t.PriceAtRequest)
}
