package usecase

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/arzdex/arzdex/internal/core/logger"
	"github.com/arzdex/arzdex/internal/core/models"
	"github.com/arzdex/arzdex/internal/core/repository"
)

// SubmitDeposit records a crypto deposit claim: the user asserts funds
// were sent and attaches a receipt. No balance effect until approval.
func (e *Exchange) SubmitDeposit(ctx context.Context, userID, cryptoID string, cryptoAmount decimal.Decimal, receiptImageRef, txHash string) (models.DepositRequest, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !cryptoAmount.IsPositive() {
		return models.DepositRequest{}, ErrInvalidAmount
	}
	if receiptImageRef == "" {
		return models.DepositRequest{}, fmt.Errorf("%w: receipt image", ErrInvalidReceipt)
	}
	if _, ok := e.cryptoByID(cryptoID); !ok {
		return models.DepositRequest{}, fmt.Errorf("%w: crypto %q", ErrNotFound, cryptoID)
	}

	req := models.DepositRequest{
		ID:              uuid.New().String(),
		UserID:          userID,
		CryptoID:        cryptoID,
		Kind:            models.AssetRequestDeposit,
		CryptoAmount:    cryptoAmount,
		TxHash:          txHash,
		ReceiptImageRef: receiptImageRef,
		Status:          models.StatusPending,
		Timestamp:       time.Now().UTC(),
	}

	next := append(slices.Clone(e.st.depositRequests), req)
	if err := e.persist(ctx, map[string]any{repository.KeyDepositRequests: next}); err != nil {
		return models.DepositRequest{}, err
	}
	e.st.depositRequests = next

	e.log.Info("Deposit request submitted",
		logger.StringField("request_id", req.ID),
		logger.StringField("user_id", userID),
		logger.StringField("crypto_id", cryptoID),
		logger.StringField("amount", cryptoAmount.String()))
	return req, nil
}

// SubmitAssetWithdraw records a crypto withdrawal to an external address.
// The amount is reserved by debiting the asset immediately; rejection
// releases it.
func (e *Exchange) SubmitAssetWithdraw(ctx context.Context, userID, cryptoID string, cryptoAmount decimal.Decimal, address string) (models.DepositRequest, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !cryptoAmount.IsPositive() {
		return models.DepositRequest{}, ErrInvalidAmount
	}
	if address == "" {
		return models.DepositRequest{}, fmt.Errorf("%w: destination address", ErrInvalidReceipt)
	}
	if _, ok := e.cryptoByID(cryptoID); !ok {
		return models.DepositRequest{}, fmt.Errorf("%w: crypto %q", ErrNotFound, cryptoID)
	}

	w := e.walletForUpdate(userID)
	if err := debitWallet(w, cryptoID, cryptoAmount); err != nil {
		return models.DepositRequest{}, err
	}

	req := models.DepositRequest{
		ID:           uuid.New().String(),
		UserID:       userID,
		CryptoID:     cryptoID,
		Kind:         models.AssetRequestWithdraw,
		CryptoAmount: cryptoAmount,
		Address:      address,
		Status:       models.StatusPending,
		Timestamp:    time.Now().UTC(),
	}

	next := append(slices.Clone(e.st.depositRequests), req)
	wallets := e.stagedWallets(w)
	if err := e.persist(ctx, map[string]any{
		repository.KeyDepositRequests: next,
		repository.KeyWallets:         wallets,
	}); err != nil {
		return models.DepositRequest{}, err
	}
	e.st.depositRequests = next
	e.st.wallets = wallets

	e.log.Info("Asset withdrawal submitted",
		logger.StringField("request_id", req.ID),
		logger.StringField("user_id", userID),
		logger.StringField("crypto_id", cryptoID),
		logger.StringField("amount", cryptoAmount.String()))
	return req, nil
}

// ApproveDepositRequest settles a pending crypto request exactly once.
// Deposits credit the asset; withdrawals were already debited at
// submission, so only the status changes.
func (e *Exchange) ApproveDepositRequest(ctx context.Context, reqID string) (SettleResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	idx := slices.IndexFunc(e.st.depositRequests, func(r models.DepositRequest) bool { return r.ID == reqID })
	if idx < 0 {
		return SettleResult{}, fmt.Errorf("%w: deposit request %q", ErrNotFound, reqID)
	}
	req := e.st.depositRequests[idx]
	if req.Status != models.StatusPending {
		return SettleResult{AlreadySettled: true}, nil
	}

	next := slices.Clone(e.st.depositRequests)
	next[idx].Status = models.StatusApproved
	records := map[string]any{repository.KeyDepositRequests: next}

	var wallets map[string]*models.Wallet
	switch req.Kind {
	case models.AssetRequestDeposit:
		w := e.walletForUpdate(req.UserID)
		creditWallet(w, req.CryptoID, req.CryptoAmount)
		wallets = e.stagedWallets(w)
		records[repository.KeyWallets] = wallets
	case models.AssetRequestWithdraw:
		// reserved at submission
	default:
		return SettleResult{}, fmt.Errorf("%w: %q", ErrInvalidOperationType, req.Kind)
	}

	if err := e.persist(ctx, records); err != nil {
		return SettleResult{}, err
	}
	e.st.depositRequests = next
	if wallets != nil {
		e.st.wallets = wallets
	}

	title, message := "Deposit approved",
		fmt.Sprintf("Your deposit of %s %s was credited to your wallet.", req.CryptoAmount, req.CryptoID)
	if req.Kind == models.AssetRequestWithdraw {
		title = "Withdrawal approved"
		message = fmt.Sprintf("Your withdrawal of %s %s was sent to %s.", req.CryptoAmount, req.CryptoID, req.Address)
	}
	e.log.Info("Deposit request approved",
		logger.StringField("request_id", req.ID),
		logger.StringField("kind", string(req.Kind)))
	e.notify(req.UserID, title, message, SeveritySuccess)
	return SettleResult{}, nil
}

// RejectDepositRequest rejects a pending crypto request. Withdrawal
// reservations are released back to the wallet; deposits never held funds.
func (e *Exchange) RejectDepositRequest(ctx context.Context, reqID string) (SettleResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	idx := slices.IndexFunc(e.st.depositRequests, func(r models.DepositRequest) bool { return r.ID == reqID })
	if idx < 0 {
		return SettleResult{}, fmt.Errorf("%w: deposit request %q", ErrNotFound, reqID)
	}
	req := e.st.depositRequests[idx]
	if req.Status != models.StatusPending {
		return SettleResult{AlreadySettled: true}, nil
	}

	next := slices.Clone(e.st.depositRequests)
	next[idx].Status = models.StatusRejected
	records := map[string]any{repository.KeyDepositRequests: next}

	var wallets map[string]*models.Wallet
	switch req.Kind {
	case models.AssetRequestDeposit:
		// nothing to release
	case models.AssetRequestWithdraw:
		w := e.walletForUpdate(req.UserID)
		creditWallet(w, req.CryptoID, req.CryptoAmount)
		wallets = e.stagedWallets(w)
		records[repository.KeyWallets] = wallets
	default:
		return SettleResult{}, fmt.Errorf("%w: %q", ErrInvalidOperationType, req.Kind)
	}

	if err := e.persist(ctx, records); err != nil {
		return SettleResult{}, err
	}
	e.st.depositRequests = next
	if wallets != nil {
		e.st.wallets = wallets
	}

	e.log.Info("Deposit request rejected",
		logger.StringField("request_id", req.ID),
		logger.StringField("kind", string(req.Kind)))
	e.notify(req.UserID, "Request rejected",
		fmt.Sprintf("Your %s request for %s %s was rejected.", req.Kind, req.CryptoAmount, req.CryptoID),
		SeverityError)
	return SettleResult{}, nil
}

// DepositRequests returns all crypto requests, newest first.
func (e *Exchange) DepositRequests() []models.DepositRequest {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return sortedByTimeDesc(e.st.depositRequests, func(r models.DepositRequest) time.Time { return r.Timestamp })
}

// DepositRequestsFor returns one user's crypto requests, newest first.
func (e *Exchange) DepositRequestsFor(userID string) []models.DepositRequest {
	e.mu.RLock()
	defer e.mu.RUnlock()

	var out []models.DepositRequest
	for _, req := range e.st.depositRequests {
		if req.UserID == userID {
			out = append(out, req)
		}
	}
	return sortedByTimeDesc(out, func(r models.DepositRequest) time.Time { return r.Timestamp })
}
