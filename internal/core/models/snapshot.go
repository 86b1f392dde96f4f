package models

import "time"

// SnapshotVersion tags the backup format. Import rejects anything else.
const SnapshotVersion = 1

// Snapshot is a consistent point-in-time export of every store. The JSON
// layout doubles as the backup file format.
type Snapshot struct {
	Version          int                    `json:"version"`
	ExportedAt       time.Time              `json:"exportedAt"`
	Wallets          map[string]*Wallet     `json:"wallets"`
	Cryptos          []Cryptocurrency       `json:"cryptos"`
	Transactions     []Transaction          `json:"transactions"`
	DepositRequests  []DepositRequest       `json:"depositRequests"`
	TomanRequests    []TomanRequest         `json:"tomanRequests"`
	DepositInfo      map[string]DepositInfo `json:"depositInfo"`
	TomanDepositInfo TomanDepositInfo       `json:"tomanDepositInfo"`
	ExchangeConfig   ExchangeConfig         `json:"exchangeConfig"`
}
