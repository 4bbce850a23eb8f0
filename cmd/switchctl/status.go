package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/halcyonpay/cardswitch/pkg/types"
)

type transactionStatus struct {
	PSPTransactionID      string                  `json:"pspTransactionId"`
	PaymentType           string                  `json:"paymentType"`
	MerchantOrderID       string                  `json:"merchantOrderId"`
	Amount                decimal.Decimal         `json:"amount"`
	Currency              string                  `json:"currency"`
	ExternalTransactionID string                  `json:"externalTransactionId"`
	Status                types.TransactionStatus `json:"status"`
	StatusMessage         string                  `json:"statusMessage"`
	CreatedAt             time.Time               `json:"createdAt"`
	CompletedAt           *time.Time              `json:"completedAt"`
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <psp-transaction-id>",
		Short: "Show the state of a PSP transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tx, err := fetchStatus(args[0])
			if err != nil {
				return err
			}

			fmt.Printf("PSP transaction: %s\n", tx.PSPTransactionID)
			fmt.Printf("Type:            %s\n", tx.PaymentType)
			fmt.Printf("Merchant order:  %s\n", tx.MerchantOrderID)
			fmt.Printf("Amount:          %s %s\n", tx.Amount, tx.Currency)
			fmt.Printf("Status:          %s\n", tx.Status)
			if tx.StatusMessage != "" {
				fmt.Printf("Message:         %s\n", tx.StatusMessage)
			}
			if tx.ExternalTransactionID != "" {
				fmt.Printf("External id:     %s\n", tx.ExternalTransactionID)
			}
			fmt.Printf("Created:         %s\n", tx.CreatedAt.Format(time.RFC3339))
			if tx.CompletedAt != nil {
				fmt.Printf("Completed:       %s\n", tx.CompletedAt.Format(time.RFC3339))
			}
			return nil
		},
	}
}

func fetchStatus(pspTransactionID string) (transactionStatus, error) {
	req, err := http.NewRequest(http.MethodGet, pspURL+"/api/psp/transaction/"+pspTransactionID, nil)
	if err != nil {
		return transactionStatus{}, err
	}
	if apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		return transactionStatus{}, fmt.Errorf("psp request: %w", err)
	}
	defer res.Body.Close()

	switch res.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return transactionStatus{}, fmt.Errorf("transaction %s not found", pspTransactionID)
	default:
		return transactionStatus{}, fmt.Errorf("psp returned %d", res.StatusCode)
	}

	var tx transactionStatus
	if err := json.NewDecoder(res.Body).Decode(&tx); err != nil {
		return transactionStatus{}, fmt.Errorf("decode psp response: %w", err)
	}
	return tx, nil
}
