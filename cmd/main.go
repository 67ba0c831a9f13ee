// Command paperdesk serves a cryptocurrency market dashboard with a
// paper-trading portfolio. Market listings come from a configurable
// provider with an optional fallback mirror, charts and coin details come
// from CoinGecko, and simulated trades are kept in a JSON snapshot plus a
// write-ahead trade journal.
//
// Usage:
//
//	paperdesk --config config.yaml
//	paperdesk (uses CLI arguments)
//	paperdesk setup (interactive configuration wizard)
//
// Optional environment variables:
//
//	For Binance listings: BINANCE_API_KEY, BINANCE_API_SECRET
//	For Bybit valuation: BYBIT_API_KEY, BYBIT_API_SECRET
//	For Hyperliquid valuation: HYPERLIQUID_PRIVATE_KEY
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/antonkh/paperdesk/config"
	"github.com/antonkh/paperdesk/internal/clients"
	"github.com/antonkh/paperdesk/internal/services/chart"
	"github.com/antonkh/paperdesk/internal/services/coininfo"
	"github.com/antonkh/paperdesk/internal/services/ledger"
	"github.com/antonkh/paperdesk/internal/services/markets"
	"github.com/antonkh/paperdesk/internal/services/pricer"
	"github.com/antonkh/paperdesk/internal/setup"
	"github.com/antonkh/paperdesk/internal/storage/portfolio"
	"github.com/antonkh/paperdesk/internal/storage/tradelog"
	"github.com/antonkh/paperdesk/internal/web"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "setup" {
		if err := setup.RunTUI(); err != nil {
			log.Fatal(err)
		}
		os.Args = []string{os.Args[0], "-config", "config.gen.yaml"}
	}

	cfg, err := config.Get()
	if err != nil {
		log.Fatal(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	gecko := clients.NewCoinGecko(cfg.CoinGeckoURL, cfg.RequestTimeout)

	primary, err := marketProvider(cfg.Provider, cfg, gecko)
	if err != nil {
		logger.Fatal("failed to build primary provider", zap.Error(err))
	}
	var mirror markets.Provider
	if cfg.Mirror != "" {
		mirror, err = marketProvider(cfg.Mirror, cfg, gecko)
		if err != nil {
			logger.Fatal("failed to build mirror provider", zap.Error(err))
		}
	}

	marketSvc := markets.NewService(primary, mirror, cfg.PageSize, cfg.FetchLimit, logger)
	chartSvc := chart.NewService(gecko, logger)
	infoSvc := coininfo.NewService(gecko, logger)

	store, err := portfolio.NewStore(cfg.StateDir)
	if err != nil {
		logger.Fatal("failed to open portfolio store", zap.Error(err))
	}
	journal, err := tradelog.NewWALStore(cfg.JournalDir)
	if err != nil {
		logger.Fatal("failed to open trade journal", zap.Error(err))
	}
	defer journal.Close()

	led := ledger.New(store, journal, logger)

	valuer, err := valuationPricer(cfg.Valuation)
	if err != nil {
		logger.Fatal("failed to build valuation pricer", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if _, err := marketSvc.Refresh(ctx); err != nil {
		logger.Warn("initial market refresh failed", zap.Error(err))
	}
	if cfg.SeedSymbols {
		led.SeedSymbols(marketSvc.Symbols())
	}

	server := web.NewServer(cfg.ListenAddr, marketSvc, chartSvc, infoSvc, led, journal, valuer, logger)

	if len(cfg.TLSDomains) > 0 {
		err = server.StartWithAutoTLS(ctx, cfg.TLSDomains, cfg.TLSCacheDir)
	} else {
		err = server.Start(ctx)
	}
	if err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func marketProvider(name string, cfg config.Config, gecko *clients.CoinGecko) (markets.Provider, error) {
	switch name {
	case "coingecko":
		return gecko, nil
	case "coinpaprika":
		return clients.NewCoinPaprika(cfg.CoinPaprikaURL, cfg.RequestTimeout), nil
	case "binance":
		apiKey := os.Getenv("BINANCE_API_KEY")
		apiSecret := os.Getenv("BINANCE_API_SECRET")
		return clients.NewBinanceMarkets(clients.NewBinanceClient(apiKey, apiSecret)), nil
	default:
		return nil, errors.Errorf("unsupported provider %q", name)
	}
}

func valuationPricer(name string) (ledger.Pricer, error) {
	switch name {
	case "":
		return nil, nil
	case "bybit":
		apiKey := os.Getenv("BYBIT_API_KEY")
		apiSecret := os.Getenv("BYBIT_API_SECRET")
		return pricer.NewBybitPricer(clients.NewBybitClient(apiKey, apiSecret)), nil
	case "hyperliquid":
		key := os.Getenv("HYPERLIQUID_PRIVATE_KEY")
		if key == "" {
			return nil, errors.New("HYPERLIQUID_PRIVATE_KEY environment variable must be set")
		}
		hl, err := clients.NewHyperliquidClient(key, "")
		if err != nil {
			return nil, err
		}
		return pricer.NewHyperliquidPricer(hl.Info()), nil
	default:
		return nil, errors.Errorf("unsupported valuation pricer %q", name)
	}
}
