package config

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/halcyonpay/cardswitch/internal/auth"
	"github.com/halcyonpay/cardswitch/internal/issuer"
	"github.com/halcyonpay/cardswitch/internal/routing"
)

//go:embed default.yaml
var defaultYAML []byte

type Config struct {
	Routing  RoutingConfig  `yaml:"routing"`
	PSP      PSPConfig      `yaml:"psp"`
	Acquirer AcquirerConfig `yaml:"acquirer"`
	PCC      PCCConfig      `yaml:"pcc"`
	Issuer   IssuerConfig   `yaml:"issuer"`
}

type RoutingConfig struct {
	Mode  string       `yaml:"mode"`
	Banks []BankConfig `yaml:"banks"`
}

type BankConfig struct {
	BIN  string `yaml:"bin"`
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

type PSPConfig struct {
	ListenAddr             string                    `yaml:"listenAddr"`
	AcquirerURL            string                    `yaml:"acquirerUrl"`
	AcquirerTimeoutSeconds int                       `yaml:"acquirerTimeoutSeconds"`
	Merchants              []MerchantConfig          `yaml:"merchants"`
	QR                     QRConfig                  `yaml:"qr"`
	Providers              map[string]ProviderConfig `yaml:"providers"`
}

type MerchantConfig struct {
	ID     string `yaml:"id"`
	Name   string `yaml:"name"`
	APIKey string `yaml:"apiKey"`
}

type QRConfig struct {
	MerchantName    string `yaml:"merchantName"`
	MerchantAccount string `yaml:"merchantAccount"`
}

// ProviderConfig configures one external processor. An empty BaseURL
// selects the simulated gateway.
type ProviderConfig struct {
	BaseURL        string `yaml:"baseUrl"`
	APIKey         string `yaml:"apiKey"`
	TimeoutSeconds int    `yaml:"timeoutSeconds"`
}

type AcquirerConfig struct {
	ListenAddr        string `yaml:"listenAddr"`
	PCCURL            string `yaml:"pccUrl"`
	PCCTimeoutSeconds int    `yaml:"pccTimeoutSeconds"`
}

type PCCConfig struct {
	ListenAddr           string       `yaml:"listenAddr"`
	IssuerTimeoutSeconds int          `yaml:"issuerTimeoutSeconds"`
	Store                string       `yaml:"store"` // memory | dynamo
	Dynamo               DynamoConfig `yaml:"dynamo"`
}

type DynamoConfig struct {
	Region   string `yaml:"region"`
	Endpoint string `yaml:"endpoint"`
}

type IssuerConfig struct {
	ListenAddr string           `yaml:"listenAddr"`
	Cards      []CardFixture    `yaml:"cards"`
	Accounts   []AccountFixture `yaml:"accounts"`
}

type CardFixture struct {
	PAN            string `yaml:"pan"`
	SecurityCode   string `yaml:"securityCode"`
	CardHolderName string `yaml:"cardHolderName"`
	ExpiryDate     string `yaml:"expiryDate"`
	AccountID      string `yaml:"accountId"`
}

type AccountFixture struct {
	ID      string `yaml:"id"`
	Balance string `yaml:"balance"`
}

// Load reads the config file at path, or the embedded default when
// path is empty.
func Load(path string) (Config, error) {
	data := defaultYAML
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if cfg.Routing.Mode == "" {
		cfg.Routing.Mode = string(routing.ModeReject)
	}
	return cfg, nil
}

// RouterBanks converts the routing table into router entries.
func (c Config) RouterBanks() []routing.Bank {
	banks := make([]routing.Bank, 0, len(c.Routing.Banks))
	for _, b := range c.Routing.Banks {
		banks = append(banks, routing.Bank{BIN: b.BIN, Name: b.Name, URL: b.URL})
	}
	return banks
}

// MerchantKeys builds the PSP's API-key table.
func (c Config) MerchantKeys() map[string]auth.Merchant {
	keys := make(map[string]auth.Merchant, len(c.PSP.Merchants))
	for _, m := range c.PSP.Merchants {
		keys[m.APIKey] = auth.Merchant{ID: m.ID, Name: m.Name}
	}
	return keys
}

// VaultCards converts the issuer card fixtures.
func (c Config) VaultCards() []issuer.StoredCard {
	cards := make([]issuer.StoredCard, 0, len(c.Issuer.Cards))
	for _, f := range c.Issuer.Cards {
		cards = append(cards, issuer.StoredCard{
			PAN:            f.PAN,
			SecurityCode:   f.SecurityCode,
			CardHolderName: f.CardHolderName,
			ExpiryDate:     f.ExpiryDate,
			AccountID:      f.AccountID,
		})
	}
	return cards
}

// IssuerAccounts converts the account fixtures, failing on a balance
// that does not parse as a decimal.
func (c Config) IssuerAccounts() ([]issuer.Account, error) {
	accounts := make([]issuer.Account, 0, len(c.Issuer.Accounts))
	for _, f := range c.Issuer.Accounts {
		balance, err := decimal.NewFromString(f.Balance)
		if err != nil {
			return nil, fmt.Errorf("account %s: bad balance %q: %w", f.ID, f.Balance, err)
		}
		accounts = append(accounts, issuer.Account{ID: f.ID, Balance: balance})
	}
	return accounts, nil
}

// Timeout helpers; zero config falls back to the given default.

func (c AcquirerConfig) PCCTimeout() time.Duration {
	return secondsOr(c.PCCTimeoutSeconds, 30*time.Second)
}

func (c PCCConfig) IssuerTimeout() time.Duration {
	return secondsOr(c.IssuerTimeoutSeconds, 10*time.Second)
}

func (c PSPConfig) AcquirerTimeout() time.Duration {
	return secondsOr(c.AcquirerTimeoutSeconds, 35*time.Second)
}

func (c ProviderConfig) Timeout() time.Duration {
	return secondsOr(c.TimeoutSeconds, 15*time.Second)
}

func secondsOr(seconds int, fallback time.Duration) time.Duration {
	if seconds <= 0 {
		return fallback
	}
	return time.Duration(seconds) * time.Second
}
