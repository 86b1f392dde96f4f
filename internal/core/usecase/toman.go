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

// SubmitTomanDeposit records a fiat deposit claim. No balance effect
// until approval.
func (e *Exchange) SubmitTomanDeposit(ctx context.Context, userID string, amount decimal.Decimal, receiptImageRef string) (models.TomanRequest, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !amount.IsPositive() {
		return models.TomanRequest{}, ErrInvalidAmount
	}
	if receiptImageRef == "" {
		return models.TomanRequest{}, fmt.Errorf("%w: receipt image", ErrInvalidReceipt)
	}

	req := models.TomanRequest{
		ID:              uuid.New().String(),
		UserID:          userID,
		Kind:            models.TomanDeposit,
		Amount:          amount,
		ReceiptImageRef: receiptImageRef,
		Status:          models.StatusPending,
		Timestamp:       time.Now().UTC(),
	}

	next := append(slices.Clone(e.st.tomanRequests), req)
	if err := e.persist(ctx, map[string]any{repository.KeyTomanRequests: next}); err != nil {
		return models.TomanRequest{}, err
	}
	e.st.tomanRequests = next

	e.log.Info("Toman deposit submitted",
		logger.StringField("request_id", req.ID),
		logger.StringField("user_id", userID),
		logger.StringField("amount", amount.String()))
	return req, nil
}

// SubmitTomanWithdraw reserves the amount by debiting the fiat balance
// immediately. A user whose available balance (net of pending
// reservations) is too small gets ErrInsufficientFunds and nothing is
// stored.
func (e *Exchange) SubmitTomanWithdraw(ctx context.Context, userID string, amount decimal.Decimal, shabaNumber string) (models.TomanRequest, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !amount.IsPositive() {
		return models.TomanRequest{}, ErrInvalidAmount
	}
	if shabaNumber == "" {
		return models.TomanRequest{}, fmt.Errorf("%w: shaba number", ErrInvalidReceipt)
	}

	w := e.walletForUpdate(userID)
	if err := debitWallet(w, models.AssetIRT, amount); err != nil {
		return models.TomanRequest{}, err
	}

	req := models.TomanRequest{
		ID:          uuid.New().String(),
		UserID:      userID,
		Kind:        models.TomanWithdraw,
		Amount:      amount,
		ShabaNumber: shabaNumber,
		Status:      models.StatusPending,
		Timestamp:   time.Now().UTC(),
	}

	next := append(slices.Clone(e.st.tomanRequests), req)
	wallets := e.stagedWallets(w)
	if err := e.persist(ctx, map[string]any{
		repository.KeyTomanRequests: next,
		repository.KeyWallets:       wallets,
	}); err != nil {
		return models.TomanRequest{}, err
	}
	e.st.tomanRequests = next
	e.st.wallets = wallets

	e.log.Info("Toman withdrawal submitted",
		logger.StringField("request_id", req.ID),
		logger.StringField("user_id", userID),
		logger.StringField("amount", amount.String()))
	return req, nil
}

// ApproveTomanRequest settles a pending fiat request exactly once.
// Deposits credit the balance; withdrawal funds were reserved at
// submission, so only the status changes.
func (e *Exchange) ApproveTomanRequest(ctx context.Context, reqID string) (SettleResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	idx := slices.IndexFunc(e.st.tomanRequests, func(r models.TomanRequest) bool { return r.ID == reqID })
	if idx < 0 {
		return SettleResult{}, fmt.Errorf("%w: toman request %q", ErrNotFound, reqID)
	}
	req := e.st.tomanRequests[idx]
	if req.Status != models.StatusPending {
		return SettleResult{AlreadySettled: true}, nil
	}

	next := slices.Clone(e.st.tomanRequests)
	next[idx].Status = models.StatusApproved
	records := map[string]any{repository.KeyTomanRequests: next}

	var wallets map[string]*models.Wallet
	switch req.Kind {
	case models.TomanDeposit:
		w := e.walletForUpdate(req.UserID)
		creditWallet(w, models.AssetIRT, req.Amount)
		wallets = e.stagedWallets(w)
		records[repository.KeyWallets] = wallets
	case models.TomanWithdraw:
		// reserved at submission
	default:
		return SettleResult{}, fmt.Errorf("%w: %q", ErrInvalidOperationType, req.Kind)
	}

	if err := e.persist(ctx, records); err != nil {
		return SettleResult{}, err
	}
	e.st.tomanRequests = next
	if wallets != nil {
		e.st.wallets = wallets
	}

	title, message := "Deposit approved",
		fmt.Sprintf("Your toman deposit of %s was credited to your wallet.", req.Amount)
	if req.Kind == models.TomanWithdraw {
		title = "Withdrawal approved"
		message = fmt.Sprintf("Your toman withdrawal of %s was sent to %s.", req.Amount, req.ShabaNumber)
	}
	e.log.Info("Toman request approved",
		logger.StringField("request_id", req.ID),
		logger.StringField("kind", string(req.Kind)))
	e.notify(req.UserID, title, message, SeveritySuccess)
	return SettleResult{}, nil
}

// RejectTomanRequest rejects a pending fiat request. Withdrawal
// reservations are credited back; deposits never held funds.
func (e *Exchange) RejectTomanRequest(ctx context.Context, reqID string) (SettleResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	idx := slices.IndexFunc(e.st.tomanRequests, func(r models.TomanRequest) bool { return r.ID == reqID })
	if idx < 0 {
		return SettleResult{}, fmt.Errorf("%w: toman request %q", ErrNotFound, reqID)
	}
	req := e.st.tomanRequests[idx]
	if req.Status != models.StatusPending {
		return SettleResult{AlreadySettled: true}, nil
	}

	next := slices.Clone(e.st.tomanRequests)
	next[idx].Status = models.StatusRejected
	records := map[string]any{repository.KeyTomanRequests: next}

	var wallets map[string]*models.Wallet
	switch req.Kind {
	case models.TomanDeposit:
		// nothing to release
	case models.TomanWithdraw:
		w := e.walletForUpdate(req.UserID)
		creditWallet(w, models.AssetIRT, req.Amount)
		wallets = e.stagedWallets(w)
		records[repository.KeyWallets] = wallets
	default:
		return SettleResult{}, fmt.Errorf("%w: %q", ErrInvalidOperationType, req.Kind)
	}

	if err := e.persist(ctx, records); err != nil {
		return SettleResult{}, err
	}
	e.st.tomanRequests = next
	if wallets != nil {
		e.st.wallets = wallets
	}

	e.log.Info("Toman request rejected",
		logger.StringField("request_id", req.ID),
		logger.StringField("kind", string(req.Kind)))
	e.notify(req.UserID, "Request rejected",
		fmt.Sprintf("Your toman %s request of %s was rejected.", req.Kind, req.Amount),
		SeverityError)
	return SettleResult{}, nil
}

// TomanRequests returns all fiat requests, newest first.
func (e *Exchange) TomanRequests() []models.TomanRequest {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return sortedByTimeDesc(e.st.tomanRequests, func(r models.TomanRequest) time.Time { return r.Timestamp })
}

// TomanRequestsFor returns one user's fiat requests, newest first.
func (e *Exchange) TomanRequestsFor(userID string) []models.TomanRequest {
	e.mu.RLock()
	defer e.mu.RUnlock()

	var out []models.TomanRequest
	for _, req := range e.st.tomanRequests {
		if req.UserID == userID {
			out = append(out, req)
		}
	}
	return sortedByTimeDesc(out, func(r models.TomanRequest) time.Time { return r.Timestamp })
}
