package main

import (
	"log"
	"net/http"
	"os"
	"time"

	"github.com/halcyonpay/cardswitch/internal/config"
	"github.com/halcyonpay/cardswitch/internal/ledger"
	"github.com/halcyonpay/cardswitch/internal/pcc"
	"github.com/halcyonpay/cardswitch/internal/routing"
)

func main() {
	cfg, err := config.Load(os.Getenv("CARDSWITCH_CONFIG"))
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	addr := os.Getenv("PCC_LISTEN_ADDR")
	if addr == "" {
		addr = cfg.PCC.ListenAddr
	}

	server := newServer(addr, cfg)

	log.Printf("pcc-gateway listening on %s (routing mode %s)", addr, cfg.Routing.Mode)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}
}

func newServer(addr string, cfg config.Config) *http.Server {
	router, err := routing.New(routing.Mode(cfg.Routing.Mode), cfg.RouterBanks())
	if err != nil {
		log.Fatalf("routing table error: %v", err)
	}

	h := &pcc.Handler{
		Service: pcc.NewService(
			newStore(cfg.PCC),
			router,
			pcc.NewHTTPIssuerClient(cfg.PCC.IssuerTimeout()),
		),
	}
	return &http.Server{
		Addr:              addr,
		Handler:           pcc.NewRouter(h),
		ReadHeaderTimeout: 5 * time.Second,
	}
}

func newStore(cfg config.PCCConfig) ledger.TransactionStore {
	if cfg.Store != "dynamo" {
		return ledger.NewMemoryStore()
	}

	store, err := ledger.NewDynamoStore(cfg.Dynamo.Region, cfg.Dynamo.Endpoint)
	if err != nil {
		log.Fatalf("dynamo store error: %v", err)
	}
	if err := store.EnsureTable(); err != nil {
		log.Fatalf("dynamo table error: %v", err)
	}
	return store
}
