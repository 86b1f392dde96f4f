package usecase

import (
	"context"
	"fmt"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/arzdex/arzdex/internal/core/logger"
	"github.com/arzdex/arzdex/internal/core/models"
	"github.com/arzdex/arzdex/internal/core/repository"
)

func defaultExchangeConfig() models.ExchangeConfig {
	return models.ExchangeConfig{
		PriceMode:       models.PriceModeManual,
		ManualUsdtPrice: decimal.NewFromInt(60_000),
	}
}

func defaultCryptos() []models.Cryptocurrency {
	rate := func(s string) decimal.Decimal { return decimal.RequireFromString(s) }
	return []models.Cryptocurrency{
		{ID: "bitcoin", Symbol: "BTC", Name: "Bitcoin", USDRate: rate("65000"), Change24h: rate("1.2")},
		{ID: "ethereum", Symbol: "ETH", Name: "Ethereum", USDRate: rate("3500"), Change24h: rate("-0.8")},
		{ID: "tether", Symbol: "USDT", Name: "Tether", USDRate: rate("1"), Change24h: rate("0.01")},
		{ID: "toncoin", Symbol: "TON", Name: "Toncoin", USDRate: rate("7.2"), Change24h: rate("3.4")},
		{ID: "dogecoin", Symbol: "DOGE", Name: "Dogecoin", USDRate: rate("0.12"), Change24h: rate("-2.1")},
	}
}

// recomputedCryptos derives every price from the config. Manual mode
// scales each USD reference rate by the manual USDT price; auto mode
// applies feed quotes where present and leaves the rest untouched.
func recomputedCryptos(cfg models.ExchangeConfig, cryptos []models.Cryptocurrency, quotes map[string]Quote) []models.Cryptocurrency {
	next := slices.Clone(cryptos)
	for i := range next {
		switch cfg.PriceMode {
		case models.PriceModeManual:
			next[i].Price = next[i].USDRate.Mul(cfg.ManualUsdtPrice)
		case models.PriceModeAuto:
			if quote, ok := quotes[next[i].ID]; ok {
				next[i].Price = quote.Price
				next[i].Change24h = quote.Change24h
			}
		}
	}
	return next
}

func (e *Exchange) cryptoByID(cryptoID string) (models.Cryptocurrency, bool) {
	for _, crypto := range e.st.cryptos {
		if crypto.ID == cryptoID {
			return crypto, true
		}
	}
	return models.Cryptocurrency{}, false
}

func (e *Exchange) publishPrices(ctx context.Context, cryptos []models.Cryptocurrency) {
	if e.cache == nil {
		return
	}
	for _, crypto := range cryptos {
		if err := e.cache.SetLatestPrice(ctx, crypto); err != nil {
			e.log.Warn("Price cache update failed",
				logger.StringField("crypto_id", crypto.ID),
				logger.ErrorField("error", err))
		}
	}
}

// SaveExchangeConfig replaces the config wholesale and recomputes every
// catalog price immediately.
func (e *Exchange) SaveExchangeConfig(ctx context.Context, cfg models.ExchangeConfig) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if cfg.PriceMode != models.PriceModeManual && cfg.PriceMode != models.PriceModeAuto {
		return fmt.Errorf("%w: price mode %q", ErrInvalidOperationType, cfg.PriceMode)
	}
	if cfg.PriceMode == models.PriceModeManual && !cfg.ManualUsdtPrice.IsPositive() {
		return ErrInvalidAmount
	}

	quotes, err := e.fetchQuotes(ctx, cfg)
	if err != nil {
		return err
	}

	cryptos := recomputedCryptos(cfg, e.st.cryptos, quotes)
	if err := e.persist(ctx, map[string]any{
		repository.KeyExchangeConfig: cfg,
		repository.KeyCryptos:        cryptos,
	}); err != nil {
		return err
	}
	e.st.config = cfg
	e.st.cryptos = cryptos
	e.publishPrices(ctx, cryptos)

	e.log.Info("Exchange config saved",
		logger.StringField("price_mode", string(cfg.PriceMode)),
		logger.StringField("manual_usdt_price", cfg.ManualUsdtPrice.String()),
		logger.BoolField("pin_set", cfg.AdminPin != ""))
	return nil
}

// RefreshPrices re-derives catalog prices, pulling from the feed in auto
// mode. In manual mode it is equivalent to a recompute from the stored
// USDT reference.
func (e *Exchange) RefreshPrices(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	quotes, err := e.fetchQuotes(ctx, e.st.config)
	if err != nil {
		return err
	}
	cryptos := recomputedCryptos(e.st.config, e.st.cryptos, quotes)
	if err := e.persist(ctx, map[string]any{repository.KeyCryptos: cryptos}); err != nil {
		return err
	}
	e.st.cryptos = cryptos
	e.publishPrices(ctx, cryptos)
	return nil
}

func (e *Exchange) fetchQuotes(ctx context.Context, cfg models.ExchangeConfig) (map[string]Quote, error) {
	if cfg.PriceMode != models.PriceModeAuto {
		return nil, nil
	}
	if e.feed == nil {
		return nil, fmt.Errorf("%w: no price feed configured", ErrInvalidOperationType)
	}
	quotes, err := e.feed.FetchPrices(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch prices: %w", err)
	}
	return quotes, nil
}

// ExchangeConfig returns the current config.
func (e *Exchange) ExchangeConfig() models.ExchangeConfig {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.st.config
}

// VerifyPin reports whether the pin unlocks the admin panel. An exchange
// with no pin configured is always unlocked.
func (e *Exchange) VerifyPin(pin string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.st.config.AdminPin == "" || e.st.config.AdminPin == pin
}

// SortOrder orders a crypto listing.
type SortOrder string

const (
	SortDefault SortOrder = "default"
	SortGainers SortOrder = "gainers"
	SortLosers  SortOrder = "losers"
)

// Cryptos returns the catalog in the requested order.
func (e *Exchange) Cryptos(order SortOrder) []models.Cryptocurrency {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := slices.Clone(e.st.cryptos)
	switch order {
	case SortGainers:
		slices.SortStableFunc(out, func(a, b models.Cryptocurrency) int {
			return b.Change24h.Cmp(a.Change24h)
		})
	case SortLosers:
		slices.SortStableFunc(out, func(a, b models.Cryptocurrency) int {
			return a.Change24h.Cmp(b.Change24h)
		})
	}
	return out
}

// Broadcast sends an announcement to every user through the notification
// sink. Nothing is persisted.
func (e *Exchange) Broadcast(title, message string) error {
	if title == "" || message == "" {
		return fmt.Errorf("%w: broadcast title and message", ErrInvalidReceipt)
	}
	e.notify(AudienceAll, title, message, SeverityInfo)
	return nil
}
