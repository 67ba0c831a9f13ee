package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestGetYaml(t *testing.T) {
	path := writeConfig(t, `
listen_addr: ":9090"
provider: coinpaprika
mirror: coingecko
page_size: 10
fetch_limit: 100
request_timeout: 5000000000
state_dir: /tmp/state
valuation: bybit
seed_symbols: true
tls_domains:
  - dash.example.com
`)

	cfg, err := getYaml(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.ListenAddr)
	assert.Equal(t, "coinpaprika", cfg.Provider)
	assert.Equal(t, "coingecko", cfg.Mirror)
	assert.Equal(t, 10, cfg.PageSize)
	assert.Equal(t, 100, cfg.FetchLimit)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "/tmp/state", cfg.StateDir)
	assert.Equal(t, "bybit", cfg.Valuation)
	assert.True(t, cfg.SeedSymbols)
	assert.Equal(t, []string{"dash.example.com"}, cfg.TLSDomains)

	// unset fields pick up defaults
	assert.Equal(t, DefaultJournalDir, cfg.JournalDir)
}

func TestGetYaml_Defaults(t *testing.T) {
	path := writeConfig(t, "{}\n")

	cfg, err := getYaml(path)
	require.NoError(t, err)

	assert.Equal(t, DefaultListenAddr, cfg.ListenAddr)
	assert.Equal(t, DefaultProvider, cfg.Provider)
	assert.Equal(t, DefaultPageSize, cfg.PageSize)
	assert.Equal(t, DefaultFetchLimit, cfg.FetchLimit)
	assert.Equal(t, DefaultRequestTimeout, cfg.RequestTimeout)
	assert.Equal(t, DefaultStateDir, cfg.StateDir)
}

func TestGetYaml_Missing(t *testing.T) {
	_, err := getYaml(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name: "valid",
			cfg:  Config{Provider: "coingecko", Mirror: "coinpaprika"},
		},
		{
			name:    "unknown provider",
			cfg:     Config{Provider: "kraken"},
			wantErr: true,
		},
		{
			name:    "unknown mirror",
			cfg:     Config{Provider: "coingecko", Mirror: "kraken"},
			wantErr: true,
		},
		{
			name:    "unknown valuation",
			cfg:     Config{Provider: "coingecko", Valuation: "okx"},
			wantErr: true,
		},
		{
			name: "valuation hyperliquid",
			cfg:  Config{Provider: "coingecko", Valuation: "hyperliquid"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.validate()
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidate_Normalizes(t *testing.T) {
	cfg := Config{Provider: " CoinGecko ", Mirror: "COINPAPRIKA", Valuation: "Bybit"}
	require.NoError(t, cfg.validate())

	assert.Equal(t, "coingecko", cfg.Provider)
	assert.Equal(t, "coinpaprika", cfg.Mirror)
	assert.Equal(t, "bybit", cfg.Valuation)
}

func TestValidate_MirrorSameAsProvider(t *testing.T) {
	cfg := Config{Provider: "coingecko", Mirror: "coingecko"}
	require.NoError(t, cfg.validate())

	// a mirror equal to the primary is pointless, so it is dropped
	assert.Empty(t, cfg.Mirror)
}
