package acquirer

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/halcyonpay/cardswitch/internal/card"
	"github.com/halcyonpay/cardswitch/pkg/types"
)

type Handler struct {
	Service *Service
}

func NewRouter(h *Handler) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/bank/payment/process", h.ProcessPayment)
	mux.HandleFunc("/api/bank/order/", h.Order)

	return mux
}

// processRequest is the PSP-facing contract: a pre-created payment id
// plus the card data collected from the payer.
type processRequest struct {
	PaymentID  string          `json:"paymentId"`
	MerchantID string          `json:"merchantId"`
	Amount     decimal.Decimal `json:"amount"`
	Currency   string          `json:"currency"`
	CardData   types.CardData  `json:"cardData"`
}

func (h *Handler) ProcessPayment(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req processRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed request body"})
		return
	}
	if strings.TrimSpace(req.PaymentID) == "" || strings.TrimSpace(req.MerchantID) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing paymentId or merchantId"})
		return
	}
	if !req.Amount.IsPositive() || strings.TrimSpace(req.Currency) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing or invalid amount/currency"})
		return
	}
	if err := card.Validate(req.CardData); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	result := h.Service.SubmitCardPayment(r.Context(), req.PaymentID, req.MerchantID, req.Amount, req.Currency, req.CardData)
	writeJSON(w, http.StatusOK, result)
}

// orderView is the read model for GET /api/bank/order/{acquirerOrderId}.
type orderView struct {
	AcquirerOrderID   string                  `json:"acquirerOrderId"`
	AcquirerTimestamp time.Time               `json:"acquirerTimestamp"`
	MerchantID        string                  `json:"merchantId"`
	PaymentID         string                  `json:"paymentId"`
	Amount            decimal.Decimal         `json:"amount"`
	Currency          string                  `json:"currency"`
	MaskedPAN         string                  `json:"maskedPan"`
	Status            types.TransactionStatus `json:"status"`
	StatusMessage     string                  `json:"statusMessage,omitempty"`
	IssuerOrderID     string                  `json:"issuerOrderId,omitempty"`
	IssuerTimestamp   *time.Time              `json:"issuerTimestamp,omitempty"`
}

func (h *Handler) Order(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/api/bank/order/")
	if id == "" || strings.Contains(id, "/") {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}

	order, ok := h.Service.GetOrder(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
		return
	}
	writeJSON(w, http.StatusOK, orderView{
		AcquirerOrderID:   order.AcquirerOrderID,
		AcquirerTimestamp: order.AcquirerTimestamp,
		MerchantID:        order.MerchantID,
		PaymentID:         order.PaymentID,
		Amount:            order.Amount,
		Currency:          order.Currency,
		MaskedPAN:         order.MaskedPAN,
		Status:            order.Status,
		StatusMessage:     order.StatusMessage,
		IssuerOrderID:     order.IssuerOrderID,
		IssuerTimestamp:   order.IssuerTimestamp,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(payload)
}
