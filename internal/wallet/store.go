package wallet

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/7272yusuke-design/openclaw/internal/domain"
)

// ErrCorrupt marks a state file that exists but cannot be decoded.
// The wallet backs the file up and reinitializes, but surfaces the
// outcome so operators can alert instead of silently losing history.
var ErrCorrupt = errors.New("wallet state is corrupt")

// State is the full persisted account snapshot. Decimals serialize as
// strings, timestamps as RFC 3339.
type State struct {
	CashBalance   decimal.Decimal            `json:"cash_balance"`
	Holdings      map[string]domain.Position `json:"holdings"`
	History       []domain.TransactionRecord `json:"history"`
	CreatedAt     time.Time                  `json:"created_at"`
	LastUpdatedAt time.Time                  `json:"last_updated"`
}

// Store persists wallet state as a single atomic JSON document.
type Store struct {
	path string
}

// NewStore creates a store writing to dir/name.json.
func NewStore(dir, name string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "create wallet state dir")
	}
	if name == "" {
		name = "wallet"
	}
	return &Store{path: filepath.Join(dir, name+".json")}, nil
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Load reads persisted state. A missing or empty file returns (nil, nil).
// A file that exists but fails to decode returns ErrCorrupt.
func (s *Store) Load() (*State, error) {
	if s == nil || s.path == "" {
		return nil, nil
	}

	payload, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "read wallet state")
	}

	if len(payload) == 0 {
		return nil, nil
	}

	var state State
	if err := json.Unmarshal(payload, &state); err != nil {
		return nil, errors.Wrapf(ErrCorrupt, "decode wallet state: %v", err)
	}

	return &state, nil
}

// Save writes the snapshot atomically via temp file and rename, so a
// concurrent reader never observes a partially written document.
func (s *Store) Save(state State) error {
	if s == nil || s.path == "" {
		return nil
	}

	payload, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode wallet state")
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, payload, 0o644); err != nil {
		return errors.Wrap(err, "write wallet state temp file")
	}

	if err := os.Rename(tmp, s.path); err != nil {
		return errors.Wrap(err, "persist wallet state")
	}

	return nil
}

// Quarantine moves a corrupt state file aside so a fresh account can be
// initialized without destroying the evidence. Returns the backup path.
func (s *Store) Quarantine(now time.Time) (string, error) {
	backup := fmt.Sprintf("%s.corrupt.%s", s.path, now.UTC().Format("20060102T150405Z"))
	if err := os.Rename(s.path, backup); err != nil {
		return "", errors.Wrap(err, "quarantine corrupt wallet state")
	}
	return backup, nil
}
