package main

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/pkg/browser"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/halcyonpay/cardswitch/internal/card"
	"github.com/halcyonpay/cardswitch/internal/psp"
	"github.com/halcyonpay/cardswitch/pkg/types"
)

func newPayCmd() *cobra.Command {
	var (
		paymentType     string
		merchantOrderID string
		amountFlag      string
		currency        string
		qrOut           string
	)

	cmd := &cobra.Command{
		Use:   "pay",
		Short: "Initiate a payment through the PSP gateway",
		Long: `Initiate a payment through the PSP gateway.

Card payments prompt interactively for card data; provider payments
(paypal, bitcoin) open the approval URL in a browser; qr payments can
write the QR image to a file with --qr-out.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := decimal.NewFromString(amountFlag)
			if err != nil {
				return fmt.Errorf("bad --amount %q: %w", amountFlag, err)
			}

			req := psp.Request{
				PaymentType:     paymentType,
				MerchantOrderID: merchantOrderID,
				Amount:          amount,
				Currency:        currency,
			}
			if paymentType == psp.PaymentTypeCard {
				cardData, err := promptCard()
				if err != nil {
					return err
				}
				req.CardData = &cardData
			}

			resp, err := initiatePayment(req)
			if err != nil {
				return err
			}

			fmt.Printf("PSP transaction: %s\n", resp.PSPTransactionID)
			fmt.Printf("Status: %s\n", resp.Status)
			if resp.StatusMessage != "" {
				fmt.Printf("Message: %s\n", resp.StatusMessage)
			}

			if resp.RedirectURL != "" {
				fmt.Printf("Approval URL: %s\n", resp.RedirectURL)
				if err := browser.OpenURL(resp.RedirectURL); err != nil {
					fmt.Printf("Could not open browser: %v\n", err)
				}
			}
			if resp.QRCode != "" && qrOut != "" {
				png, err := base64.StdEncoding.DecodeString(resp.QRCode)
				if err != nil {
					return fmt.Errorf("decode qr image: %w", err)
				}
				if err := os.WriteFile(qrOut, png, 0o644); err != nil {
					return fmt.Errorf("write qr image: %w", err)
				}
				fmt.Printf("QR code written to %s\n", qrOut)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&paymentType, "type", "t", psp.PaymentTypeCard, "payment type (card, paypal, bitcoin, qr)")
	cmd.Flags().StringVarP(&merchantOrderID, "order", "o", "", "merchant order id")
	cmd.Flags().StringVarP(&amountFlag, "amount", "a", "", "payment amount, e.g. 1000.00")
	cmd.Flags().StringVarP(&currency, "currency", "c", "RSD", "payment currency")
	cmd.Flags().StringVar(&qrOut, "qr-out", "", "file to write the QR code PNG to")
	_ = cmd.MarkFlagRequired("order")
	_ = cmd.MarkFlagRequired("amount")

	return cmd
}

func promptCard() (types.CardData, error) {
	pan, err := (&promptui.Prompt{
		Label: "Card number",
		Validate: func(input string) error {
			if !card.ValidPAN(strings.TrimSpace(input)) {
				return fmt.Errorf("card number must be 13-19 digits")
			}
			return nil
		},
	}).Run()
	if err != nil {
		return types.CardData{}, fmt.Errorf("prompt failed: %w", err)
	}

	securityCode, err := (&promptui.Prompt{Label: "Security code", Mask: '*'}).Run()
	if err != nil {
		return types.CardData{}, fmt.Errorf("prompt failed: %w", err)
	}

	holder, err := (&promptui.Prompt{Label: "Card holder name"}).Run()
	if err != nil {
		return types.CardData{}, fmt.Errorf("prompt failed: %w", err)
	}

	expiry, err := (&promptui.Prompt{Label: "Expiry (MM/YY)"}).Run()
	if err != nil {
		return types.CardData{}, fmt.Errorf("prompt failed: %w", err)
	}

	return types.CardData{
		PAN:            strings.TrimSpace(pan),
		SecurityCode:   strings.TrimSpace(securityCode),
		CardHolderName: strings.TrimSpace(holder),
		ExpiryDate:     strings.TrimSpace(expiry),
	}, nil
}

func initiatePayment(req psp.Request) (psp.InitiateResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return psp.InitiateResponse{}, err
	}

	httpReq, err := http.NewRequest(http.MethodPost, pspURL+"/api/psp/payments", bytes.NewReader(body))
	if err != nil {
		return psp.InitiateResponse{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+apiKey)
	}

	res, err := http.DefaultClient.Do(httpReq)
	if err != nil {
		return psp.InitiateResponse{}, fmt.Errorf("psp request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		var apiErr struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(res.Body).Decode(&apiErr)
		if apiErr.Error != "" {
			return psp.InitiateResponse{}, fmt.Errorf("psp returned %d: %s", res.StatusCode, apiErr.Error)
		}
		return psp.InitiateResponse{}, fmt.Errorf("psp returned %d", res.StatusCode)
	}

	var resp psp.InitiateResponse
	if err := json.NewDecoder(res.Body).Decode(&resp); err != nil {
		return psp.InitiateResponse{}, fmt.Errorf("decode psp response: %w", err)
	}
	return resp, nil
}
