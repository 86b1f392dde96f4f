// Package usecase implements the ledger and request-approval engine of the
// exchange: wallet balances, the trade/deposit/toman request queues, price
// configuration, deposit-info reference data and whole-state backup.
//
// All state lives in one Exchange object constructed at process start.
// Every mutation is staged on copies, written to the state repository and
// only then committed in memory, so a storage failure never leaves memory
// ahead of the durable store.
package usecase

import (
	"context"
	"fmt"
	"sync"

	"github.com/arzdex/arzdex/internal/core/cache"
	"github.com/arzdex/arzdex/internal/core/logger"
	"github.com/arzdex/arzdex/internal/core/models"
	"github.com/arzdex/arzdex/internal/core/repository"
)

// SettleResult reports the outcome of an approve/reject call.
// AlreadySettled is set when the request had left pending before the call;
// the operation is then a no-op, not an error.
type SettleResult struct {
	AlreadySettled bool
}

type state struct {
	wallets          map[string]*models.Wallet
	cryptos          []models.Cryptocurrency
	transactions     []models.Transaction
	depositRequests  []models.DepositRequest
	tomanRequests    []models.TomanRequest
	depositInfo      map[string]models.DepositInfo
	tomanDepositInfo models.TomanDepositInfo
	config           models.ExchangeConfig
}

// Exchange is the engine. One instance per process; the mutex serializes
// writers, readers take the read lock and copy out.
type Exchange struct {
	mu       sync.RWMutex
	st       state
	repo     repository.StateRepository
	notifier NotificationSink
	feed     PriceFeed
	cache    cache.PriceCache
	log      logger.Logger
}

func NewExchange(repo repository.StateRepository, notifier NotificationSink, feed PriceFeed, priceCache cache.PriceCache, log logger.Logger) *Exchange {
	return &Exchange{
		repo:     repo,
		notifier: notifier,
		feed:     feed,
		cache:    priceCache,
		log:      log,
	}
}

// Init loads every store from the repository, seeding defaults for stores
// that have never been written. Must be called before any other method.
func (e *Exchange) Init(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.st = state{
		wallets:     map[string]*models.Wallet{},
		depositInfo: map[string]models.DepositInfo{},
	}

	seeded := map[string]any{}

	found, err := e.repo.Load(ctx, repository.KeyExchangeConfig, &e.st.config)
	if err != nil {
		return storageErr(err)
	}
	if !found {
		e.st.config = defaultExchangeConfig()
		seeded[repository.KeyExchangeConfig] = e.st.config
	}

	found, err = e.repo.Load(ctx, repository.KeyCryptos, &e.st.cryptos)
	if err != nil {
		return storageErr(err)
	}
	if !found {
		e.st.cryptos = recomputedCryptos(e.st.config, defaultCryptos(), nil)
		seeded[repository.KeyCryptos] = e.st.cryptos
	}

	if _, err := e.repo.Load(ctx, repository.KeyWallets, &e.st.wallets); err != nil {
		return storageErr(err)
	}
	if e.st.wallets == nil {
		e.st.wallets = map[string]*models.Wallet{}
	}
	normalizeWallets(e.st.wallets)

	if _, err := e.repo.Load(ctx, repository.KeyTransactions, &e.st.transactions); err != nil {
		return storageErr(err)
	}
	if _, err := e.repo.Load(ctx, repository.KeyDepositRequests, &e.st.depositRequests); err != nil {
		return storageErr(err)
	}
	if _, err := e.repo.Load(ctx, repository.KeyTomanRequests, &e.st.tomanRequests); err != nil {
		return storageErr(err)
	}
	if _, err := e.repo.Load(ctx, repository.KeyDepositInfo, &e.st.depositInfo); err != nil {
		return storageErr(err)
	}
	if e.st.depositInfo == nil {
		e.st.depositInfo = map[string]models.DepositInfo{}
	}
	if _, err := e.repo.Load(ctx, repository.KeyTomanDepositInfo, &e.st.tomanDepositInfo); err != nil {
		return storageErr(err)
	}

	if len(seeded) > 0 {
		if err := e.repo.SaveAll(ctx, seeded); err != nil {
			return storageErr(err)
		}
	}

	e.publishPrices(ctx, e.st.cryptos)

	e.log.Info("Exchange state loaded",
		logger.IntField("wallets", len(e.st.wallets)),
		logger.IntField("cryptos", len(e.st.cryptos)),
		logger.IntField("transactions", len(e.st.transactions)),
		logger.IntField("deposit_requests", len(e.st.depositRequests)),
		logger.IntField("toman_requests", len(e.st.tomanRequests)))
	return nil
}

func storageErr(err error) error {
	return fmt.Errorf("%w: %v", ErrStorage, err)
}

func (e *Exchange) persist(ctx context.Context, records map[string]any) error {
	if err := e.repo.SaveAll(ctx, records); err != nil {
		e.log.Error("State persistence failed", logger.ErrorField("error", err))
		return storageErr(err)
	}
	return nil
}

// stagedWallets builds the wallets map that would result from committing
// the staged wallet, without touching current state.
func (e *Exchange) stagedWallets(staged ...*models.Wallet) map[string]*models.Wallet {
	next := make(map[string]*models.Wallet, len(e.st.wallets)+len(staged))
	for id, w := range e.st.wallets {
		next[id] = w
	}
	for _, w := range staged {
		next[w.OwnerID] = w
	}
	return next
}
