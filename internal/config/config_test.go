package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEmbeddedDefault(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "reject", cfg.Routing.Mode)
	require.NotEmpty(t, cfg.Routing.Banks)
	assert.Equal(t, "4111", cfg.Routing.Banks[0].BIN)

	keys := cfg.MerchantKeys()
	require.Contains(t, keys, "dev-merchant-key")
	assert.Equal(t, "merchant-1", keys["dev-merchant-key"].ID)

	accounts, err := cfg.IssuerAccounts()
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.True(t, accounts[0].Balance.Equal(decimal.NewFromInt(100000)))
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cardswitch.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
routing:
  mode: fallback
  banks:
    - bin: "5555"
      name: other-bank
      url: http://localhost:9999
pcc:
  issuerTimeoutSeconds: 3
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "fallback", cfg.Routing.Mode)
	assert.Equal(t, "3s", cfg.PCC.IssuerTimeout().String())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestTimeoutDefaults(t *testing.T) {
	var cfg Config
	assert.Equal(t, "30s", cfg.Acquirer.PCCTimeout().String())
	assert.Equal(t, "10s", cfg.PCC.IssuerTimeout().String())
	assert.Equal(t, "35s", cfg.PSP.AcquirerTimeout().String())
}

func TestBadBalanceRejected(t *testing.T) {
	cfg := Config{Issuer: IssuerConfig{Accounts: []AccountFixture{{ID: "a", Balance: "not-a-number"}}}}
	_, err := cfg.IssuerAccounts()
	assert.Error(t, err)
}
