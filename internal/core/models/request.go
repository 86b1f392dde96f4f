package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type AssetRequestKind string

const (
	AssetRequestDeposit  AssetRequestKind = "deposit"
	AssetRequestWithdraw AssetRequestKind = "withdraw"
)

// DepositRequest is a crypto movement claim awaiting admin review.
// Deposits carry a receipt image reference and an optional tx hash and
// reserve nothing; withdrawals carry a destination address and reserve
// the asset amount at submission time.
type DepositRequest struct {
	ID              string           `json:"id"`
	UserID          string           `json:"userId"`
	CryptoID        string           `json:"cryptoId"`
	Kind            AssetRequestKind `json:"kind"`
	CryptoAmount    decimal.Decimal  `json:"cryptoAmount"`
	TxHash          string           `json:"txHash,omitempty"`
	ReceiptImageRef string           `json:"receiptImageUrl,omitempty"`
	Address         string           `json:"address,omitempty"`
	Status          RequestStatus    `json:"status"`
	Timestamp       time.Time        `json:"timestamp"`
}

type TomanRequestKind string

const (
	TomanDeposit  TomanRequestKind = "deposit"
	TomanWithdraw TomanRequestKind = "withdraw"
)

// TomanRequest is a fiat deposit or withdrawal request. Withdrawals
// reserve the amount at submission by debiting the wallet immediately;
// the reservation is released on rejection.
type TomanRequest struct {
	ID              string           `json:"id"`
	UserID          string           `json:"userId"`
	Kind            TomanRequestKind `json:"kind"`
	Amount          decimal.Decimal  `json:"amount"`
	ReceiptImageRef string           `json:"receiptImageUrl,omitempty"`
	ShabaNumber     string           `json:"shabaNumber,omitempty"`
	Status          RequestStatus    `json:"status"`
	Timestamp       time.Time        `json:"timestamp"`
}

// DepositInfo is the admin-maintained receiving address for one crypto.
type DepositInfo struct {
	Address string `json:"address"`
	Network string `json:"network,omitempty"`
	Memo    string `json:"memo,omitempty"`
}

// TomanDepositInfo is the admin-maintained bank detail shown for fiat
// deposits.
type TomanDepositInfo struct {
	CardNumber        string `json:"cardNumber"`
	ShabaNumber       string `json:"shabaNumber"`
	UsdtWalletAddress string `json:"usdtWalletAddress"`
}
