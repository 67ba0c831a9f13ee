// Package config loads paperdesk configuration from a YAML file or CLI
// flags.
package config

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultListenAddr     = ":8087"
	DefaultProvider       = "coingecko"
	DefaultMirror         = "coinpaprika"
	DefaultPageSize       = 20
	DefaultFetchLimit     = 220
	DefaultRequestTimeout = 15 * time.Second
	DefaultStateDir       = "./data"
	DefaultJournalDir     = "./wal/trades"
)

// knownProviders are the market listing sources paperdesk can query.
var knownProviders = map[string]bool{
	"coingecko":   true,
	"coinpaprika": true,
	"binance":     true,
}

// Config is the full application configuration.
type Config struct {
	// ListenAddr is the HTTP API listen address.
	ListenAddr string
	// Provider is the primary market listing source.
	Provider string
	// Mirror is the fallback listing source tried once after the primary
	// fails; empty disables the fallback.
	Mirror string
	// PageSize is the pagination window step.
	PageSize int
	// FetchLimit bounds how many records a refresh pulls upstream.
	FetchLimit int
	// RequestTimeout applies to every outbound provider request.
	RequestTimeout time.Duration
	// StateDir holds the portfolio snapshot.
	StateDir string
	// JournalDir holds the trade WAL.
	JournalDir string
	// Valuation selects the live pricer used to value the portfolio:
	// "bybit", "hyperliquid", or empty to disable valuation.
	Valuation string
	// SeedSymbols pre-seeds a zero balance for every listed market symbol.
	SeedSymbols bool
	// TLSDomains enables automatic HTTPS via ACME when non-empty.
	TLSDomains []string
	// TLSCacheDir stores issued certificates.
	TLSCacheDir string
	// CoinGeckoURL and CoinPaprikaURL override the public API endpoints,
	// mainly for tests.
	CoinGeckoURL   string
	CoinPaprikaURL string
}

type ConfigTmp struct {
	ListenAddr     string        `yaml:"listen_addr,omitempty"`
	Provider       string        `yaml:"provider,omitempty"`
	Mirror         string        `yaml:"mirror,omitempty"`
	PageSize       int           `yaml:"page_size,omitempty"`
	FetchLimit     int           `yaml:"fetch_limit,omitempty"`
	RequestTimeout time.Duration `yaml:"request_timeout,omitempty"`
	StateDir       string        `yaml:"state_dir,omitempty"`
	JournalDir     string        `yaml:"journal_dir,omitempty"`
	Valuation      string        `yaml:"valuation,omitempty"`
	SeedSymbols    bool          `yaml:"seed_symbols,omitempty"`
	TLSDomains     []string      `yaml:"tls_domains,omitempty"`
	TLSCacheDir    string        `yaml:"tls_cache_dir,omitempty"`
	CoinGeckoURL   string        `yaml:"coingecko_url,omitempty"`
	CoinPaprikaURL string        `yaml:"coinpaprika_url,omitempty"`
}

// Get parses configuration. With -config the YAML file wins; otherwise CLI
// flags apply.
func Get() (Config, error) {
	configPath := flag.String("config", "", "path to yaml config")
	listen := flag.String("listen", DefaultListenAddr, "HTTP API listen address")
	provider := flag.String("provider", DefaultProvider, "primary market provider: coingecko, coinpaprika or binance")
	mirror := flag.String("mirror", DefaultMirror, "fallback market provider, empty to disable")
	pageSize := flag.Int("pagesize", DefaultPageSize, "pagination window size")
	fetchLimit := flag.Int("fetchlimit", DefaultFetchLimit, "max records fetched per refresh")
	timeout := flag.Duration("timeout", DefaultRequestTimeout, "outbound request timeout")
	stateDir := flag.String("statedir", DefaultStateDir, "portfolio snapshot directory")
	journalDir := flag.String("journaldir", DefaultJournalDir, "trade journal directory")
	valuation := flag.String("valuation", "", "portfolio valuation pricer: bybit, hyperliquid or empty")
	seed := flag.Bool("seedsymbols", false, "pre-seed zero balances for listed symbols")
	flag.Parse()

	if *configPath != "" {
		return getYaml(*configPath)
	}

	cfg := Config{
		ListenAddr:     *listen,
		Provider:       *provider,
		Mirror:         *mirror,
		PageSize:       *pageSize,
		FetchLimit:     *fetchLimit,
		RequestTimeout: *timeout,
		StateDir:       *stateDir,
		JournalDir:     *journalDir,
		Valuation:      *valuation,
		SeedSymbols:    *seed,
	}
	return cfg, cfg.validate()
}

func getYaml(path string) (Config, error) {
	f, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	var tmp ConfigTmp
	if err := yaml.Unmarshal(f, &tmp); err != nil {
		return Config{}, err
	}

	cfg := Config{
		ListenAddr:     tmp.ListenAddr,
		Provider:       tmp.Provider,
		Mirror:         tmp.Mirror,
		PageSize:       tmp.PageSize,
		FetchLimit:     tmp.FetchLimit,
		RequestTimeout: tmp.RequestTimeout,
		StateDir:       tmp.StateDir,
		JournalDir:     tmp.JournalDir,
		Valuation:      tmp.Valuation,
		SeedSymbols:    tmp.SeedSymbols,
		TLSDomains:     tmp.TLSDomains,
		TLSCacheDir:    tmp.TLSCacheDir,
		CoinGeckoURL:   tmp.CoinGeckoURL,
		CoinPaprikaURL: tmp.CoinPaprikaURL,
	}
	cfg.applyDefaults()
	return cfg, cfg.validate()
}

func (c *Config) applyDefaults() {
	if c.ListenAddr == "" {
		c.ListenAddr = DefaultListenAddr
	}
	if c.Provider == "" {
		c.Provider = DefaultProvider
	}
	if c.PageSize <= 0 {
		c.PageSize = DefaultPageSize
	}
	if c.FetchLimit <= 0 {
		c.FetchLimit = DefaultFetchLimit
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = DefaultRequestTimeout
	}
	if c.StateDir == "" {
		c.StateDir = DefaultStateDir
	}
	if c.JournalDir == "" {
		c.JournalDir = DefaultJournalDir
	}
}

func (c *Config) validate() error {
	c.Provider = strings.ToLower(strings.TrimSpace(c.Provider))
	c.Mirror = strings.ToLower(strings.TrimSpace(c.Mirror))
	c.Valuation = strings.ToLower(strings.TrimSpace(c.Valuation))

	if !knownProviders[c.Provider] {
		return fmt.Errorf("unknown provider %q", c.Provider)
	}
	if c.Mirror != "" && !knownProviders[c.Mirror] {
		return fmt.Errorf("unknown mirror provider %q", c.Mirror)
	}
	if c.Mirror == c.Provider {
		c.Mirror = ""
	}
	switch c.Valuation {
	case "", "bybit", "hyperliquid":
	default:
		return fmt.Errorf("unknown valuation pricer %q", c.Valuation)
	}
	return nil
}
