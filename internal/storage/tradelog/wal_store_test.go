package tradelog

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/7272yusuke-design/openclaw/internal/domain"
)

func testTx(symbol string, action domain.Action) domain.TransactionRecord {
	return domain.TransactionRecord{
		ID:          uuid.New().String(),
		Timestamp:   time.Now().UTC().Truncate(time.Second),
		Symbol:      symbol,
		Action:      action,
		Price:       decimal.NewFromInt(2),
		TokenAmount: decimal.NewFromInt(50),
		UsdAmount:   decimal.NewFromInt(100),
		Reason:      "test trade",
	}
}

func TestAppendAndReadBack(t *testing.T) {
	store, err := NewWALStore(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	first := testTx("VIRTUAL", domain.ActionBuy)
	second := testTx("SOL", domain.ActionSell)

	require.NoError(t, store.Append(first))
	require.NoError(t, store.Append(second))

	records, err := store.RecordsAfter(0)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, first.ID, records[0].Transaction.ID)
	assert.Equal(t, "VIRTUAL", records[0].Transaction.Symbol)
	assert.Equal(t, domain.ActionBuy, records[0].Transaction.Action)
	assert.True(t, records[0].Transaction.UsdAmount.Equal(decimal.NewFromInt(100)))

	assert.Equal(t, second.ID, records[1].Transaction.ID)
	assert.Greater(t, records[1].Index, records[0].Index)
}

func TestRecordsAfterCursor(t *testing.T) {
	store, err := NewWALStore(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Append(testTx("VIRTUAL", domain.ActionBuy)))
	cursor := store.CurrentIndex()
	require.NoError(t, store.Append(testTx("VIRTUAL", domain.ActionSell)))

	records, err := store.RecordsAfter(cursor)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, domain.ActionSell, records[0].Transaction.Action)

	// Nothing new after the tip.
	records, err = store.RecordsAfter(store.CurrentIndex())
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestAppendRejectsMissingSymbol(t *testing.T) {
	store, err := NewWALStore(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	err = store.Append(domain.TransactionRecord{})
	assert.Error(t, err)
	assert.Equal(t, uint64(0), store.CurrentIndex())
}

func TestReopenKeepsHistory(t *testing.T) {
	dir := t.TempDir()

	store, err := NewWALStore(dir)
	require.NoError(t, err)
	tx := testTx("VIRTUAL", domain.ActionBuy)
	require.NoError(t, store.Append(tx))
	require.NoError(t, store.Close())

	reopened, err := NewWALStore(dir)
	require.NoError(t, err)
	defer reopened.Close()

	records, err := reopened.RecordsAfter(0)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, tx.ID, records[0].Transaction.ID)
}
