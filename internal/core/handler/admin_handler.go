package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/arzdex/arzdex/internal/core/logger"
	"github.com/arzdex/arzdex/internal/core/models"
	"github.com/arzdex/arzdex/internal/core/usecase"
)

// AdminHandler exposes the admin operations: queue approvals, reference
// data, pricing config and backup. Admin authentication is owned by the
// excluded auth layer.
type AdminHandler struct {
	exchange *usecase.Exchange
	log      logger.Logger
}

func NewAdminHandler(exchange *usecase.Exchange, log logger.Logger) *AdminHandler {
	return &AdminHandler{exchange: exchange, log: log}
}

func (h *AdminHandler) RegisterRoutes(router *mux.Router) {
	admin := router.PathPrefix("/api/v1/admin").Subrouter()
	admin.HandleFunc("/trades", h.ListTrades).Methods("GET")
	admin.HandleFunc("/trades/{id}/approve", h.settle(h.exchange.ApproveTrade)).Methods("POST")
	admin.HandleFunc("/trades/{id}/reject", h.settle(h.exchange.RejectTrade)).Methods("POST")
	admin.HandleFunc("/deposits", h.ListDepositRequests).Methods("GET")
	admin.HandleFunc("/deposits/{id}/approve", h.settle(h.exchange.ApproveDepositRequest)).Methods("POST")
	admin.HandleFunc("/deposits/{id}/reject", h.settle(h.exchange.RejectDepositRequest)).Methods("POST")
	admin.HandleFunc("/toman-requests", h.ListTomanRequests).Methods("GET")
	admin.HandleFunc("/toman-requests/{id}/approve", h.settle(h.exchange.ApproveTomanRequest)).Methods("POST")
	admin.HandleFunc("/toman-requests/{id}/reject", h.settle(h.exchange.RejectTomanRequest)).Methods("POST")
	admin.HandleFunc("/deposit-info/{crypto_id}", h.SetDepositInfo).Methods("PUT")
	admin.HandleFunc("/toman-deposit-info", h.SetTomanDepositInfo).Methods("PUT")
	admin.HandleFunc("/config", h.GetConfig).Methods("GET")
	admin.HandleFunc("/config", h.SaveConfig).Methods("PUT")
	admin.HandleFunc("/config/verify-pin", h.VerifyPin).Methods("POST")
	admin.HandleFunc("/prices/refresh", h.RefreshPrices).Methods("POST")
	admin.HandleFunc("/backup", h.ExportBackup).Methods("GET")
	admin.HandleFunc("/backup", h.ImportBackup).Methods("POST")
	admin.HandleFunc("/broadcast", h.Broadcast).Methods("POST")
}

type settleResponse struct {
	AlreadySettled bool `json:"already_settled"`
}

func (h *AdminHandler) settle(op func(ctx context.Context, id string) (usecase.SettleResult, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]
		result, err := op(r.Context(), id)
		if err != nil {
			respondEngineError(w, err)
			return
		}
		respondWithJSON(w, http.StatusOK, settleResponse{AlreadySettled: result.AlreadySettled})
	}
}

// statusFilter narrows a queue listing to one status when the request
// carries ?status=. An empty param keeps everything.
func statusFilter[T any](r *http.Request, items []T, statusOf func(T) models.RequestStatus) []T {
	want := models.RequestStatus(r.URL.Query().Get("status"))
	if want == "" {
		return items
	}
	out := make([]T, 0, len(items))
	for _, item := range items {
		if statusOf(item) == want {
			out = append(out, item)
		}
	}
	return out
}

func (h *AdminHandler) ListTrades(w http.ResponseWriter, r *http.Request) {
	trades := statusFilter(r, h.exchange.Transactions(),
		func(tx models.Transaction) models.RequestStatus { return tx.Status })
	respondWithJSON(w, http.StatusOK, trades)
}

func (h *AdminHandler) ListDepositRequests(w http.ResponseWriter, r *http.Request) {
	requests := statusFilter(r, h.exchange.DepositRequests(),
		func(req models.DepositRequest) models.RequestStatus { return req.Status })
	respondWithJSON(w, http.StatusOK, requests)
}

func (h *AdminHandler) ListTomanRequests(w http.ResponseWriter, r *http.Request) {
	requests := statusFilter(r, h.exchange.TomanRequests(),
		func(req models.TomanRequest) models.RequestStatus { return req.Status })
	respondWithJSON(w, http.StatusOK, requests)
}

func (h *AdminHandler) SetDepositInfo(w http.ResponseWriter, r *http.Request) {
	cryptoID := mux.Vars(r)["crypto_id"]
	var info models.DepositInfo
	if err := decodeBody(w, r, &info); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.exchange.SetDepositInfo(r.Context(), cryptoID, info); err != nil {
		respondEngineError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, info)
}

func (h *AdminHandler) SetTomanDepositInfo(w http.ResponseWriter, r *http.Request) {
	var info models.TomanDepositInfo
	if err := decodeBody(w, r, &info); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.exchange.SetTomanDepositInfo(r.Context(), info); err != nil {
		respondEngineError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, info)
}

func (h *AdminHandler) GetConfig(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, h.exchange.ExchangeConfig())
}

func (h *AdminHandler) SaveConfig(w http.ResponseWriter, r *http.Request) {
	var cfg models.ExchangeConfig
	if err := decodeBody(w, r, &cfg); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.exchange.SaveExchangeConfig(r.Context(), cfg); err != nil {
		respondEngineError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, cfg)
}

type verifyPinRequest struct {
	Pin string `json:"pin"`
}

type verifyPinResponse struct {
	Unlocked bool `json:"unlocked"`
}

func (h *AdminHandler) VerifyPin(w http.ResponseWriter, r *http.Request) {
	var payload verifyPinRequest
	if err := decodeBody(w, r, &payload); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondWithJSON(w, http.StatusOK, verifyPinResponse{Unlocked: h.exchange.VerifyPin(payload.Pin)})
}

func (h *AdminHandler) RefreshPrices(w http.ResponseWriter, r *http.Request) {
	if err := h.exchange.RefreshPrices(r.Context()); err != nil {
		respondEngineError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, h.exchange.Cryptos(usecase.SortDefault))
}

func (h *AdminHandler) ExportBackup(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, h.exchange.ExportAll())
}

func (h *AdminHandler) ImportBackup(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 8<<20)
	defer r.Body.Close()
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "failed to read backup payload")
		return
	}
	if err := h.exchange.ImportAll(r.Context(), raw); err != nil {
		respondEngineError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "imported"})
}

type broadcastRequest struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

func (h *AdminHandler) Broadcast(w http.ResponseWriter, r *http.Request) {
	var payload broadcastRequest
	if err := decodeBody(w, r, &payload); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.exchange.Broadcast(payload.Title, payload.Message); err != nil {
		respondEngineError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "sent"})
}
