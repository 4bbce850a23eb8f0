package psp

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/halcyonpay/cardswitch/internal/auth"
	"github.com/halcyonpay/cardswitch/pkg/types"
)

type Handler struct {
	Auth    auth.Authenticator
	Service *Service
}

func NewRouter(h *Handler) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/psp/payments", h.Payments)
	mux.HandleFunc("/api/psp/transaction/", h.Transaction)

	return mux
}

func (h *Handler) Payments(w http.ResponseWriter, r *http.Request) {
	merchant, ok := h.ensureAuth(w, r)
	if !ok {
		return
	}
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed request body"})
		return
	}
	// The authenticated merchant is authoritative, whatever the body says.
	req.WebShopClientID = merchant.ID

	resp, err := h.Service.Initiate(r.Context(), req)
	if err != nil {
		if errors.Is(err, ErrValidation) || errors.Is(err, ErrUnknownPaymentType) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "payment could not be initiated"})
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

type pspTransactionView struct {
	PSPTransactionID      string                  `json:"pspTransactionId"`
	WebShopClientID       string                  `json:"webShopClientId"`
	PaymentType           string                  `json:"paymentType"`
	MerchantOrderID       string                  `json:"merchantOrderId"`
	Amount                decimal.Decimal         `json:"amount"`
	Currency              string                  `json:"currency"`
	ExternalTransactionID string                  `json:"externalTransactionId,omitempty"`
	Status                types.TransactionStatus `json:"status"`
	StatusMessage         string                  `json:"statusMessage,omitempty"`
	CreatedAt             time.Time               `json:"createdAt"`
	CompletedAt           *time.Time              `json:"completedAt,omitempty"`
}

func (h *Handler) Transaction(w http.ResponseWriter, r *http.Request) {
	merchant, ok := h.ensureAuth(w, r)
	if !ok {
		return
	}
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/api/psp/transaction/")
	if id == "" || strings.Contains(id, "/") {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}

	tx, err := h.Service.GetTransaction(id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "transaction not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "lookup failed"})
		return
	}
	if tx.WebShopClientID != merchant.ID {
		// Do not reveal other merchants' transaction ids.
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "transaction not found"})
		return
	}
	writeJSON(w, http.StatusOK, pspTransactionView{
		PSPTransactionID:      tx.PSPTransactionID,
		WebShopClientID:       tx.WebShopClientID,
		PaymentType:           tx.PaymentType,
		MerchantOrderID:       tx.MerchantOrderID,
		Amount:                tx.Amount,
		Currency:              tx.Currency,
		ExternalTransactionID: tx.ExternalTransactionID,
		Status:                tx.Status,
		StatusMessage:         tx.StatusMessage,
		CreatedAt:             tx.CreatedAt,
		CompletedAt:           tx.CompletedAt,
	})
}

func (h *Handler) ensureAuth(w http.ResponseWriter, r *http.Request) (auth.Merchant, bool) {
	merchant, err := h.Auth.Authenticate(r)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": err.Error()})
		return auth.Merchant{}, false
	}
	return merchant, true
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(payload)
}
