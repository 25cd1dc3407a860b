// Package tradelog persists executed transactions in an append-only
// write-ahead log, giving the ledger an audit trail that survives
// wallet resets.
package tradelog

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/vadiminshakov/gowal"

	"github.com/7272yusuke-design/openclaw/internal/domain"
)

const (
	DefaultDir   = "./wal/trades"
	segmentLimit = 1000
	maxSegments  = 20

	tradeKeyPrefix = "trade_"
)

// Record is one audit entry with its WAL position.
type Record struct {
	Index       uint64
	Transaction domain.TransactionRecord
}

// WALStore is the gowal-backed audit sink for executed trades.
type WALStore struct {
	wal *gowal.Wal
	mu  sync.RWMutex
}

// NewWALStore opens (or creates) the trade audit WAL in dir.
func NewWALStore(dir string) (*WALStore, error) {
	if dir == "" {
		dir = DefaultDir
	}

	cfg := gowal.Config{
		Dir:              dir,
		Prefix:           "trade_",
		SegmentThreshold: segmentLimit,
		MaxSegments:      maxSegments,
		IsInSyncDiskMode: true,
	}

	wal, err := gowal.NewWAL(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "init trade WAL")
	}

	return &WALStore{wal: wal}, nil
}

// Append writes one executed transaction to the log.
func (s *WALStore) Append(tx domain.TransactionRecord) error {
	if s == nil || s.wal == nil {
		return errors.New("trade log is not initialized")
	}
	if tx.Symbol == "" {
		return errors.New("transaction symbol is required")
	}

	payload, err := json.Marshal(tx)
	if err != nil {
		return errors.Wrap(err, "marshal transaction record")
	}

	key := fmt.Sprintf("%s%s", tradeKeyPrefix, tx.Symbol)

	s.mu.Lock()
	defer s.mu.Unlock()

	nextIndex := s.wal.CurrentIndex() + 1
	return s.wal.Write(nextIndex, key, payload)
}

// RecordsAfter returns all trades written after the given WAL index.
func (s *WALStore) RecordsAfter(index uint64) ([]Record, error) {
	if s == nil || s.wal == nil {
		return nil, errors.New("trade log is not initialized")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	current := s.wal.CurrentIndex()
	if current <= index {
		return nil, nil
	}

	records := make([]Record, 0, current-index)
	for idx := index + 1; idx <= current; idx++ {
		key, payload, err := s.wal.Get(idx)
		if err != nil {
			continue
		}
		if !strings.HasPrefix(key, tradeKeyPrefix) {
			continue
		}

		var tx domain.TransactionRecord
		if err := json.Unmarshal(payload, &tx); err != nil {
			return nil, errors.Wrap(err, "decode transaction record")
		}
		records = append(records, Record{Index: idx, Transaction: tx})
	}

	return records, nil
}

// CurrentIndex returns the latest WAL index stored.
func (s *WALStore) CurrentIndex() uint64 {
	if s == nil || s.wal == nil {
		return 0
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.wal.CurrentIndex()
}

// Close closes the underlying WAL.
func (s *WALStore) Close() error {
	if s == nil || s.wal == nil {
		return errors.New("trade log is not initialized")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.wal.Close()
}
