package main

import (
	"log"
	"net/http"
	"os"
	"time"

	"github.com/halcyonpay/cardswitch/internal/acquirer"
	"github.com/halcyonpay/cardswitch/internal/config"
)

func main() {
	cfg, err := config.Load(os.Getenv("CARDSWITCH_CONFIG"))
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	addr := os.Getenv("ACQUIRER_LISTEN_ADDR")
	if addr == "" {
		addr = cfg.Acquirer.ListenAddr
	}

	pccURL := os.Getenv("ACQUIRER_PCC_URL")
	if pccURL == "" {
		pccURL = cfg.Acquirer.PCCURL
	}

	server := newServer(addr, pccURL, cfg)

	log.Printf("acquirer-gateway listening on %s (pcc %s)", addr, pccURL)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}
}

func newServer(addr, pccURL string, cfg config.Config) *http.Server {
	h := &acquirer.Handler{
		Service: acquirer.NewService(
			acquirer.NewHTTPPCCClient(pccURL, cfg.Acquirer.PCCTimeout()),
		),
	}
	return &http.Server{
		Addr:              addr,
		Handler:           acquirer.NewRouter(h),
		ReadHeaderTimeout: 5 * time.Second,
	}
}
