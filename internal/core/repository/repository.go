package repository

import "context"

// State keys, one durable record per key.
const (
	KeyWallets          = "wallets"
	KeyCryptos          = "cryptos"
	KeyTransactions     = "transactions"
	KeyDepositRequests  = "depositRequests"
	KeyTomanRequests    = "tomanRequests"
	KeyDepositInfo      = "depositInfo"
	KeyTomanDepositInfo = "tomanDepositInfo"
	KeyExchangeConfig   = "exchangeConfig"
)

// StateRepository is a durable key-value store holding one JSON record per
// state key. SaveAll writes every entry atomically.
type StateRepository interface {
	Save(ctx context.Context, key string, value any) error
	SaveAll(ctx context.Context, records map[string]any) error
	// Load unmarshals the record into dest. Returns (false, nil) when the
	// key has never been written.
	Load(ctx context.Context, key string, dest any) (bool, error)
}
