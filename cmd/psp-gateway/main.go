package main

import (
	"log"
	"net/http"
	"os"
	"time"

	"github.com/halcyonpay/cardswitch/internal/auth"
	"github.com/halcyonpay/cardswitch/internal/config"
	"github.com/halcyonpay/cardswitch/internal/provider"
	"github.com/halcyonpay/cardswitch/internal/psp"
	"github.com/halcyonpay/cardswitch/internal/qr"
)

func main() {
	cfg, err := config.Load(os.Getenv("CARDSWITCH_CONFIG"))
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	addr := os.Getenv("PSP_LISTEN_ADDR")
	if addr == "" {
		addr = cfg.PSP.ListenAddr
	}

	acquirerURL := os.Getenv("PSP_ACQUIRER_URL")
	if acquirerURL == "" {
		acquirerURL = cfg.PSP.AcquirerURL
	}

	server := newServer(addr, acquirerURL, cfg)

	log.Printf("psp-gateway listening on %s (acquirer %s)", addr, acquirerURL)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}
}

func newServer(addr, acquirerURL string, cfg config.Config) *http.Server {
	plugins := []psp.Plugin{
		&psp.CardPlugin{
			Acquirer: psp.NewHTTPAcquirerClient(acquirerURL, cfg.PSP.AcquirerTimeout()),
		},
		&psp.ProviderPlugin{
			Name:    psp.PaymentTypePayPal,
			Gateway: newGateway(psp.PaymentTypePayPal, cfg.PSP.Providers),
		},
		&psp.ProviderPlugin{
			Name:    psp.PaymentTypeBitcoin,
			Gateway: newGateway(psp.PaymentTypeBitcoin, cfg.PSP.Providers),
		},
		&psp.QRPlugin{
			Renderer:        qr.SimRenderer{},
			MerchantName:    cfg.PSP.QR.MerchantName,
			MerchantAccount: cfg.PSP.QR.MerchantAccount,
		},
	}

	h := &psp.Handler{
		Auth:    auth.NewKeyAuthenticator(cfg.MerchantKeys()),
		Service: psp.NewService(psp.NewMemoryStore(), plugins...),
	}
	return &http.Server{
		Addr:              addr,
		Handler:           psp.NewRouter(h),
		ReadHeaderTimeout: 5 * time.Second,
	}
}

func newGateway(name string, providers map[string]config.ProviderConfig) provider.Gateway {
	p := providers[name]
	if p.BaseURL == "" {
		return provider.SimGateway{Name: name}
	}
	return provider.NewHTTPGateway(p.BaseURL, p.APIKey, p.Timeout())
}
