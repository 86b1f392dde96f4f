package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/arzdex/arzdex/internal/core/logger"
	"github.com/arzdex/arzdex/internal/core/models"
	"github.com/arzdex/arzdex/internal/core/usecase"
)

// ExchangeHandler exposes the user-facing engine operations. User identity
// arrives from the excluded auth layer as a user_id field; this surface
// trusts it.
type ExchangeHandler struct {
	exchange *usecase.Exchange
	log      logger.Logger
}

func NewExchangeHandler(exchange *usecase.Exchange, log logger.Logger) *ExchangeHandler {
	return &ExchangeHandler{exchange: exchange, log: log}
}

func (h *ExchangeHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/v1/cryptos", h.ListCryptos).Methods("GET")
	router.HandleFunc("/api/v1/wallet/{user_id}", h.GetWallet).Methods("GET")
	router.HandleFunc("/api/v1/wallet/{user_id}/portfolio", h.GetPortfolio).Methods("GET")
	router.HandleFunc("/api/v1/trades", h.SubmitTrade).Methods("POST")
	router.HandleFunc("/api/v1/trades/{user_id}", h.ListTrades).Methods("GET")
	router.HandleFunc("/api/v1/deposits", h.SubmitDeposit).Methods("POST")
	router.HandleFunc("/api/v1/withdrawals", h.SubmitAssetWithdraw).Methods("POST")
	router.HandleFunc("/api/v1/deposits/{user_id}", h.ListDepositRequests).Methods("GET")
	router.HandleFunc("/api/v1/toman/deposits", h.SubmitTomanDeposit).Methods("POST")
	router.HandleFunc("/api/v1/toman/withdrawals", h.SubmitTomanWithdraw).Methods("POST")
	router.HandleFunc("/api/v1/toman/requests/{user_id}", h.ListTomanRequests).Methods("GET")
	router.HandleFunc("/api/v1/deposit-info", h.GetDepositInfo).Methods("GET")
}

func (h *ExchangeHandler) ListCryptos(w http.ResponseWriter, r *http.Request) {
	order := usecase.SortOrder(r.URL.Query().Get("sort"))
	if order == "" {
		order = usecase.SortDefault
	}
	respondWithJSON(w, http.StatusOK, h.exchange.Cryptos(order))
}

func (h *ExchangeHandler) GetWallet(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["user_id"]
	respondWithJSON(w, http.StatusOK, h.exchange.Wallet(userID))
}

func (h *ExchangeHandler) GetPortfolio(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["user_id"]
	respondWithJSON(w, http.StatusOK, h.exchange.PortfolioValue(userID))
}

type tradeRequest struct {
	UserID   string `json:"user_id"`
	CryptoID string `json:"crypto_id"`
	Kind     string `json:"kind"`
	Amount   string `json:"amount"`
}

func (h *ExchangeHandler) SubmitTrade(w http.ResponseWriter, r *http.Request) {
	var payload tradeRequest
	if err := decodeBody(w, r, &payload); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	amount, err := parseAmount(payload.Amount)
	if err != nil {
		h.log.Warn("Invalid amount", logger.StringField("amount", payload.Amount), logger.ErrorField("error", err))
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	tx, err := h.exchange.SubmitTrade(r.Context(), payload.UserID, payload.CryptoID, models.TradeKind(payload.Kind), amount)
	if err != nil {
		respondEngineError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, tx)
}

func (h *ExchangeHandler) ListTrades(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["user_id"]
	respondWithJSON(w, http.StatusOK, h.exchange.TransactionsFor(userID))
}

type depositRequest struct {
	UserID          string `json:"user_id"`
	CryptoID        string `json:"crypto_id"`
	Amount          string `json:"amount"`
	ReceiptImageRef string `json:"receipt_image_ref"`
	TxHash          string `json:"tx_hash"`
}

func (h *ExchangeHandler) SubmitDeposit(w http.ResponseWriter, r *http.Request) {
	var payload depositRequest
	if err := decodeBody(w, r, &payload); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	amount, err := parseAmount(payload.Amount)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	req, err := h.exchange.SubmitDeposit(r.Context(), payload.UserID, payload.CryptoID, amount, payload.ReceiptImageRef, payload.TxHash)
	if err != nil {
		respondEngineError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, req)
}

type assetWithdrawRequest struct {
	UserID   string `json:"user_id"`
	CryptoID string `json:"crypto_id"`
	Amount   string `json:"amount"`
	Address  string `json:"address"`
}

func (h *ExchangeHandler) SubmitAssetWithdraw(w http.ResponseWriter, r *http.Request) {
	var payload assetWithdrawRequest
	if err := decodeBody(w, r, &payload); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	amount, err := parseAmount(payload.Amount)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	req, err := h.exchange.SubmitAssetWithdraw(r.Context(), payload.UserID, payload.CryptoID, amount, payload.Address)
	if err != nil {
		respondEngineError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, req)
}

func (h *ExchangeHandler) ListDepositRequests(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["user_id"]
	respondWithJSON(w, http.StatusOK, h.exchange.DepositRequestsFor(userID))
}

type tomanRequest struct {
	UserID          string `json:"user_id"`
	Amount          string `json:"amount"`
	ReceiptImageRef string `json:"receipt_image_ref"`
	ShabaNumber     string `json:"shaba_number"`
}

func (h *ExchangeHandler) SubmitTomanDeposit(w http.ResponseWriter, r *http.Request) {
	var payload tomanRequest
	if err := decodeBody(w, r, &payload); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	amount, err := parseAmount(payload.Amount)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	req, err := h.exchange.SubmitTomanDeposit(r.Context(), payload.UserID, amount, payload.ReceiptImageRef)
	if err != nil {
		respondEngineError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, req)
}

func (h *ExchangeHandler) SubmitTomanWithdraw(w http.ResponseWriter, r *http.Request) {
	var payload tomanRequest
	if err := decodeBody(w, r, &payload); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	amount, err := parseAmount(payload.Amount)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	req, err := h.exchange.SubmitTomanWithdraw(r.Context(), payload.UserID, amount, payload.ShabaNumber)
	if err != nil {
		respondEngineError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, req)
}

func (h *ExchangeHandler) ListTomanRequests(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["user_id"]
	respondWithJSON(w, http.StatusOK, h.exchange.TomanRequestsFor(userID))
}

type depositInfoResponse struct {
	Cryptos map[string]models.DepositInfo `json:"cryptos"`
	Toman   models.TomanDepositInfo       `json:"toman"`
}

func (h *ExchangeHandler) GetDepositInfo(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, depositInfoResponse{
		Cryptos: h.exchange.DepositInfoDirectory(),
		Toman:   h.exchange.TomanDepositInfo(),
	})
}
