package psp

import (
	"context"

	"github.com/halcyonpay/cardswitch/internal/provider"
	"github.com/halcyonpay/cardswitch/internal/qr"
	"github.com/halcyonpay/cardswitch/pkg/types"
)

const (
	PaymentTypePayPal  = "paypal"
	PaymentTypeBitcoin = "bitcoin"
	PaymentTypeQR      = "qr"
)

// ProviderPlugin delegates to an external processor and leaves the
// transaction Processing until the payer approves it there.
type ProviderPlugin struct {
	Name    string
	Gateway provider.Gateway
}

func (p *ProviderPlugin) Type() string { return p.Name }

func (p *ProviderPlugin) Execute(ctx context.Context, pspTransactionID string, req Request) (PluginResult, error) {
	payment, err := p.Gateway.CreatePayment(ctx, req.Amount, req.Currency, map[string]string{
		"pspTransactionId": pspTransactionID,
		"merchantOrderId":  req.MerchantOrderID,
	})
	if err != nil {
		return PluginResult{}, err
	}
	return PluginResult{
		ExternalTransactionID: payment.ProviderRef,
		Status:                types.StatusProcessing,
		RedirectURL:           payment.ApprovalURL,
	}, nil
}

// QRPlugin renders an IPS payment QR code for the merchant's account.
// The payment stays Pending until the payer's bank settles it out of
// band.
type QRPlugin struct {
	Renderer        qr.Renderer
	MerchantName    string
	MerchantAccount string
}

func (p *QRPlugin) Type() string { return PaymentTypeQR }

func (p *QRPlugin) Execute(ctx context.Context, pspTransactionID string, req Request) (PluginResult, error) {
	tag := qr.TagString(p.MerchantName, p.MerchantAccount, req.Amount, req.Currency)
	png, err := p.Renderer.Render(tag)
	if err != nil {
		return PluginResult{}, err
	}
	return PluginResult{
		Status:    types.StatusPending,
		QRCodePNG: png,
	}, nil
}
