package pcc

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/halcyonpay/cardswitch/internal/ledger"
	"github.com/halcyonpay/cardswitch/pkg/types"
)

type Handler struct {
	Service *Service
}

func NewRouter(h *Handler) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/pcc/process-payment", h.ProcessPayment)
	mux.HandleFunc("/api/pcc/transaction/", h.TransactionStatus)

	return mux
}

func (h *Handler) ProcessPayment(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req types.PCCPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed request body"})
		return
	}

	resp, err := h.Service.ProcessPayment(r.Context(), req)
	if err != nil {
		if errors.Is(err, ErrValidation) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": MsgInternalError})
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// transactionView is the read model for the status endpoint.
type transactionView struct {
	ID                string                  `json:"id"`
	AcquirerOrderID   string                  `json:"acquirerOrderId"`
	AcquirerTimestamp time.Time               `json:"acquirerTimestamp"`
	IssuerOrderID     string                  `json:"issuerOrderId,omitempty"`
	IssuerTimestamp   *time.Time              `json:"issuerTimestamp,omitempty"`
	MaskedPAN         string                  `json:"maskedPan"`
	Amount            decimal.Decimal         `json:"amount"`
	Currency          string                  `json:"currency"`
	MerchantID        string                  `json:"merchantId"`
	Status            types.TransactionStatus `json:"status"`
	StatusMessage     string                  `json:"statusMessage,omitempty"`
	CreatedAt         time.Time               `json:"createdAt"`
	UpdatedAt         *time.Time              `json:"updatedAt,omitempty"`
}

// TransactionStatus serves GET /api/pcc/transaction/{acquirerOrderId}/status.
func (h *Handler) TransactionStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/api/pcc/transaction/")
	parts := strings.Split(rest, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] != "status" {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}

	tx, err := h.Service.GetTransaction(r.Context(), parts[0])
	if err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "transaction not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": MsgInternalError})
		return
	}
	writeJSON(w, http.StatusOK, viewFrom(tx))
}

func viewFrom(tx ledger.Transaction) transactionView {
	return transactionView{
		ID:                tx.ID,
		AcquirerOrderID:   tx.AcquirerOrderID,
		AcquirerTimestamp: tx.AcquirerTimestamp,
		IssuerOrderID:     tx.IssuerOrderID,
		IssuerTimestamp:   tx.IssuerTimestamp,
		MaskedPAN:         tx.MaskedPAN,
		Amount:            tx.Amount,
		Currency:          tx.Currency,
		MerchantID:        tx.MerchantID,
		Status:            tx.Status,
		StatusMessage:     tx.StatusMessage,
		CreatedAt:         tx.CreatedAt,
		UpdatedAt:         tx.UpdatedAt,
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(payload)
}
