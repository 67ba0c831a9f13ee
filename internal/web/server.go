// Package web exposes the paperdesk JSON API over HTTP.
package web

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/antonkh/paperdesk/internal/domain"
	"github.com/antonkh/paperdesk/internal/services/chart"
	"github.com/antonkh/paperdesk/internal/services/coininfo"
	"github.com/antonkh/paperdesk/internal/services/ledger"
	"github.com/antonkh/paperdesk/internal/services/markets"
	"github.com/antonkh/paperdesk/internal/storage/tradelog"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/crypto/acme/autocert"
)

// Server serves market data and the paper-trading ledger as a JSON API.
type Server struct {
	Addr    string
	markets *markets.Service
	charts  *chart.Service
	info    *coininfo.Service
	ledger  *ledger.Ledger
	journal *tradelog.WALStore
	valuer  ledger.Pricer
	logger  *zap.Logger
}

// NewServer creates a web server instance. journal and valuer may be nil;
// the corresponding endpoints degrade gracefully.
func NewServer(addr string, mkts *markets.Service, charts *chart.Service, info *coininfo.Service,
	led *ledger.Ledger, journal *tradelog.WALStore, valuer ledger.Pricer, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		Addr:    addr,
		markets: mkts,
		charts:  charts,
		info:    info,
		ledger:  led,
		journal: journal,
		valuer:  valuer,
		logger:  logger,
	}
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/markets", s.handleMarkets)
	mux.HandleFunc("/api/markets/more", s.handleLoadMore)
	mux.HandleFunc("/api/chart", s.handleChart)
	mux.HandleFunc("/api/info", s.handleInfo)
	mux.HandleFunc("/api/portfolio", s.handlePortfolio)
	mux.HandleFunc("/api/orders", s.handleOrders)
	mux.HandleFunc("/api/trades", s.handleTrades)
	return mux
}

// Start runs the HTTP server (blocking) and shuts it down when ctx is
// cancelled.
func (s *Server) Start(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	server := &http.Server{
		Addr:              s.Addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// StartWithAutoTLS runs an HTTPS server with automatic TLS certificates via
// ACME, plus a plain HTTP listener on port 80 for challenges.
func (s *Server) StartWithAutoTLS(ctx context.Context, domains []string, cacheDir string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if len(domains) == 0 {
		return fmt.Errorf("no domains provided for automatic TLS")
	}
	if cacheDir == "" {
		cacheDir = "cert-cache"
	}

	manager := &autocert.Manager{
		Prompt:     autocert.AcceptTOS,
		HostPolicy: autocert.HostWhitelist(domains...),
		Cache:      autocert.DirCache(cacheDir),
	}

	httpSrv := &http.Server{
		Addr:              ":80",
		Handler:           manager.HTTPHandler(nil),
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	tlsConfig := manager.TLSConfig()
	tlsConfig.MinVersion = tls.VersionTLS12

	httpsSrv := &http.Server{
		Addr:              s.Addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       120 * time.Second,
		TLSConfig:         tlsConfig,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Warn("acme server shutdown error", zap.Error(err))
		}
		if err := httpsSrv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Warn("https server shutdown error", zap.Error(err))
		}
	}()

	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Warn("acme server error", zap.Error(err))
		}
	}()

	if err := httpsSrv.ListenAndServeTLS("", ""); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

type marketsResponse struct {
	Markets []domain.MarketRecord `json:"markets"`
	Page    int                   `json:"page"`
	HasMore bool                  `json:"hasMore"`
	Error   string                `json:"error,omitempty"`
}

// handleMarkets refreshes the market snapshot and returns the current
// pagination window. Fetch failures never become HTTP errors: the client
// gets an empty list plus a user-visible message.
func (s *Server) handleMarkets(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	records, err := s.markets.Refresh(r.Context())
	if err != nil {
		s.logger.Error("failed to load markets", zap.Error(err))
		writeJSON(w, http.StatusOK, marketsResponse{
			Markets: []domain.MarketRecord{},
			Page:    1,
			Error:   fetchMessage(err),
		})
		return
	}

	writeJSON(w, http.StatusOK, marketsResponse{
		Markets: records,
		Page:    s.markets.Page(),
		HasMore: s.markets.HasMore(),
	})
}

func (s *Server) handleLoadMore(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, http.StatusOK, marketsResponse{
		Markets: s.markets.LoadMore(),
		Page:    s.markets.Page(),
		HasMore: s.markets.HasMore(),
	})
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	series, err := s.charts.LoadChart(r.Context(), r.URL.Query().Get("symbol"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, series)
}

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	info, err := s.info.LoadInfo(r.Context(), r.URL.Query().Get("symbol"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

type portfolioResponse struct {
	Balances   map[string]decimal.Decimal `json:"balances"`
	Trades     []domain.Trade             `json:"trades"`
	TotalValue *decimal.Decimal           `json:"totalValue,omitempty"`
}

func (s *Server) handlePortfolio(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	resp := portfolioResponse{
		Balances: s.ledger.Balances(),
		Trades:   s.ledger.Trades(),
	}
	if s.valuer != nil {
		total, err := s.ledger.TotalValue(r.Context(), s.valuer)
		if err != nil {
			s.logger.Warn("portfolio valuation failed", zap.Error(err))
		} else {
			resp.TotalValue = &total
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

type orderRequest struct {
	Symbol string      `json:"symbol"`
	Type   string      `json:"type"`
	Price  json.Number `json:"price"`
	Amount json.Number `json:"amount"`
}

// handleOrders places a paper trade. Rejections surface as 422 with an
// inline message the UI can display next to the form.
func (s *Server) handleOrders(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req orderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid order payload"})
		return
	}

	price, err := decimal.NewFromString(req.Price.String())
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: "Price and amount must be greater than zero."})
		return
	}
	amount, err := decimal.NewFromString(req.Amount.String())
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: "Price and amount must be greater than zero."})
		return
	}

	trade, err := s.ledger.PlaceOrder(req.Symbol, domain.TradeSide(req.Type), price, amount)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, struct {
		Trade domain.Trade `json:"trade"`
	}{Trade: trade})
}

func (s *Server) handleTrades(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.journal == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "trade journal not available"})
		return
	}

	var after uint64
	if raw := r.URL.Query().Get("after"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid after index"})
			return
		}
		after = parsed
	}

	records, err := s.journal.TradesAfter(after)
	if err != nil {
		s.logger.Error("failed to read trade journal", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to read trade journal"})
		return
	}
	if records == nil {
		records = []domain.TradeRecord{}
	}
	writeJSON(w, http.StatusOK, struct {
		Trades []domain.TradeRecord `json:"trades"`
	}{Trades: records})
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	var (
		validationErr   *domain.ValidationError
		notFoundErr     *domain.NotFoundError
		fetchErr        *domain.FetchError
		noDataErr       *domain.NoDataError
		insufficientErr *domain.InsufficientFundsError
	)

	status := http.StatusInternalServerError
	switch {
	case errors.As(err, &validationErr):
		status = http.StatusBadRequest
	case errors.As(err, &insufficientErr):
		status = http.StatusUnprocessableEntity
	case errors.As(err, &notFoundErr), errors.As(err, &noDataErr):
		status = http.StatusNotFound
	case errors.As(err, &fetchErr):
		status = http.StatusBadGateway
		if fetchErr.RateLimited {
			status = http.StatusTooManyRequests
		}
	}

	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", zap.Error(err))
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

// fetchMessage renders a market fetch failure the way the UI shows it.
func fetchMessage(err error) string {
	var fe *domain.FetchError
	if errors.As(err, &fe) {
		if fe.Message != "" {
			return fe.Message
		}
		return fmt.Sprintf("Failed to fetch markets: %d", fe.Status)
	}
	return err.Error()
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
