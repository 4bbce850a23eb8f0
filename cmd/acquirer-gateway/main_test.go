package main

import (
	"testing"

	"github.com/halcyonpay/cardswitch/internal/config"
)

func TestNewServer(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	srv := newServer(":9999", "http://localhost:7400", cfg)
	if srv.Addr != ":9999" {
		t.Fatalf("expected addr %s, got %s", ":9999", srv.Addr)
	}
	if srv.Handler == nil {
		t.Fatalf("expected handler to be set")
	}
}
