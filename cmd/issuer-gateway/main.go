package main

import (
	"log"
	"net/http"
	"os"
	"time"

	"github.com/halcyonpay/cardswitch/internal/config"
	"github.com/halcyonpay/cardswitch/internal/issuer"
)

func main() {
	cfg, err := config.Load(os.Getenv("CARDSWITCH_CONFIG"))
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	addr := os.Getenv("ISSUER_LISTEN_ADDR")
	if addr == "" {
		addr = cfg.Issuer.ListenAddr
	}

	server := newServer(addr, cfg)

	log.Printf("issuer-gateway listening on %s", addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}
}

func newServer(addr string, cfg config.Config) *http.Server {
	accounts, err := cfg.IssuerAccounts()
	if err != nil {
		log.Fatalf("account fixtures error: %v", err)
	}

	h := &issuer.Handler{
		Service: issuer.NewService(
			issuer.NewMemoryVault(cfg.VaultCards()),
			issuer.NewBalanceAuthorizer(accounts),
		),
	}
	return &http.Server{
		Addr:              addr,
		Handler:           issuer.NewRouter(h),
		ReadHeaderTimeout: 5 * time.Second,
	}
}
