// Package dashboard exposes a read-only HTTP view of the paper-trading
// session: account snapshot, guard state and an SSE stream of executed
// trades.
package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/acme/autocert"

	"github.com/7272yusuke-design/openclaw/internal/storage/tradelog"
	"github.com/7272yusuke-design/openclaw/internal/wallet"
)

const tradePollInterval = 3 * time.Second

// GuardStatus is the guard view rendered to clients.
type GuardStatus struct {
	Halted     bool   `json:"halted"`
	DailySpend string `json:"daily_spend"`
}

// StatusProvider supplies the guard view.
type StatusProvider interface {
	Status() GuardStatus
}

// Server serves the dashboard endpoints.
type Server struct {
	Addr string
	// Domain enables Let's Encrypt TLS via autocert when non-empty.
	Domain string

	Wallet   *wallet.Wallet
	Guard    StatusProvider
	TradeLog *tradelog.WALStore
	Logger   *zap.Logger
}

// Start runs the HTTP server until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	if s.Logger == nil {
		s.Logger = zap.NewNop()
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/status", s.handleStatus)
	mux.HandleFunc("/trades/stream", s.handleTradeStream)

	server := &http.Server{
		Addr:              s.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	s.Logger.Info("dashboard listening", zap.String("addr", s.Addr), zap.String("domain", s.Domain))

	var err error
	if s.Domain != "" {
		manager := &autocert.Manager{
			Prompt:     autocert.AcceptTOS,
			HostPolicy: autocert.HostWhitelist(s.Domain),
			Cache:      autocert.DirCache("certs"),
		}
		server.TLSConfig = manager.TLSConfig()
		err = server.ListenAndServeTLS("", "")
	} else {
		err = server.ListenAndServe()
	}
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// handleStatus renders one full account + guard snapshot.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	type statusPayload struct {
		Account wallet.State `json:"account"`
		Guard   GuardStatus  `json:"guard"`
	}

	payload := statusPayload{Account: s.Wallet.Snapshot()}
	if s.Guard != nil {
		payload.Guard = s.Guard.Status()
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.Logger.Warn("failed to encode status", zap.Error(err))
	}
}

// handleTradeStream streams newly audited trades as SSE events.
func (s *Server) handleTradeStream(w http.ResponseWriter, r *http.Request) {
	if s.TradeLog == nil {
		http.Error(w, "trade log disabled", http.StatusNotFound)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	cursor := s.TradeLog.CurrentIndex()
	ticker := time.NewTicker(tradePollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			records, err := s.TradeLog.RecordsAfter(cursor)
			if err != nil {
				s.Logger.Warn("failed to read trade log", zap.Error(err))
				continue
			}
			for _, record := range records {
				payload, err := json.Marshal(record.Transaction)
				if err != nil {
					continue
				}
				fmt.Fprintf(w, "data: %s\n\n", payload)
				cursor = record.Index
			}
			flusher.Flush()
		}
	}
}
