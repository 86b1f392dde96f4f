package models

import "github.com/shopspring/decimal"

// Cryptocurrency is a listed asset. Price and Change24h are derived values
// owned by the price catalog; USDRate is the fixed reference rate against
// USDT used when prices are recomputed in manual mode.
type Cryptocurrency struct {
	ID         string          `json:"id"`
	Symbol     string          `json:"symbol"`
	Name       string          `json:"name"`
	Price      decimal.Decimal `json:"price"`
	Change24h  decimal.Decimal `json:"change24h"`
	USDRate    decimal.Decimal `json:"usdRate"`
	LogoMarkup string          `json:"logo,omitempty"`
}

// PriceMode selects how catalog prices are produced.
type PriceMode string

const (
	PriceModeManual PriceMode = "manual"
	PriceModeAuto   PriceMode = "auto"
)

// ExchangeConfig is the admin-owned pricing configuration. It is replaced
// wholesale on every save.
type ExchangeConfig struct {
	PriceMode       PriceMode       `json:"priceMode"`
	ManualUsdtPrice decimal.Decimal `json:"manualUsdtPrice"`
	AdminPin        string          `json:"adminPin,omitempty"`
}
