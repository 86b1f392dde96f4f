package usecase

import (
	"context"

	"github.com/shopspring/decimal"
)

// Quote is one feed observation for a crypto.
type Quote struct {
	Price     decimal.Decimal
	Change24h decimal.Decimal
}

// PriceFeed supplies catalog prices when the exchange runs in automatic
// price mode. Refresh cadence is owned by the caller.
type PriceFeed interface {
	FetchPrices(ctx context.Context) (map[string]Quote, error)
}

// StaticPriceFeed serves a fixed quote table. Stands in for a real feed.
type StaticPriceFeed struct {
	Quotes map[string]Quote
}

func (f *StaticPriceFeed) FetchPrices(_ context.Context) (map[string]Quote, error) {
	quotes := make(map[string]Quote, len(f.Quotes))
	for id, quote := range f.Quotes {
		quotes[id] = quote
	}
	return quotes, nil
}
