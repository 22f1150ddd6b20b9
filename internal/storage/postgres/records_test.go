package postgres

import (
	"math/big"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"satoruIndexer/internal/model"
	"satoruIndexer/internal/storage"
)

var _ storage.BatchSink = (*Store)(nil)

var placeholderRe = regexp.MustCompile(`\$\d+`)

func TestInsertStatementArgsMatchPlaceholders(t *testing.T) {
	records := []model.Record{
		&model.Order{},
		&model.OrderUpdate{},
		&model.OrderStatusChange{Status: model.OrderFrozen},
		&model.OrderExecution{},
		&model.Deposit{},
		&model.Withdrawal{},
	}
	for _, rec := range records {
		stmt, err := insertStatement(rec)
		require.NoError(t, err, rec.EventName())
		assert.Len(t, stmt.args, len(placeholderRe.FindAllString(stmt.sql, -1)), rec.EventName())
		assert.Contains(t, stmt.sql, "ON CONFLICT DO NOTHING")
	}
}

func TestInsertStatementOrderArgs(t *testing.T) {
	ts := "2024-01-01T00:00:00Z"
	key := "0x01"
	orderType := model.StopLossDecrease
	isLong := true
	size := new(big.Int).Lsh(big.NewInt(1), 100)

	stmt, err := insertStatement(&model.Order{
		EventMeta:    model.EventMeta{BlockNumber: 12, Timestamp: &ts, TransactionHash: "0xaa"},
		Key:          &key,
		OrderType:    &orderType,
		SwapPath:     []string{"0x1", "0x2"},
		SizeDeltaUSD: size,
		IsLong:       &isLong,
	})
	require.NoError(t, err)
	assert.True(t, strings.Contains(stmt.sql, "INSERT INTO orders"))

	assert.Equal(t, int64(12), stmt.args[0])
	require.NotNil(t, stmt.args[1].(*time.Time))
	assert.True(t, stmt.args[1].(*time.Time).Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "0xaa", stmt.args[2])
	assert.Nil(t, stmt.args[3].(*string), "empty from address is NULL")
	assert.Equal(t, "StopLossDecrease", *stmt.args[5].(*string))
	assert.Nil(t, stmt.args[6].(*string), "absent enum is NULL")
	assert.Equal(t, "0x1,0x2", *stmt.args[13].(*string))

	num := stmt.args[14].(pgtype.Numeric)
	assert.True(t, num.Valid)
	assert.Equal(t, 0, num.Int.Cmp(size))
	assert.False(t, stmt.args[15].(pgtype.Numeric).Valid)
	assert.True(t, *stmt.args[22].(*bool))
}

func TestInsertStatementEmptyPathIsEmptyString(t *testing.T) {
	stmt, err := insertStatement(&model.Deposit{LongTokenSwapPath: []string{}})
	require.NoError(t, err)
	assert.Equal(t, "", *stmt.args[12].(*string))
	assert.Nil(t, stmt.args[13].(*string))
}

func TestInsertStatementStatusName(t *testing.T) {
	stmt, err := insertStatement(&model.OrderStatusChange{Status: model.OrderCancelled})
	require.NoError(t, err)
	assert.Equal(t, "Cancelled", stmt.args[5])
}

type fakeRecord struct{ model.EventMeta }

func (fakeRecord) EventName() string { return "Fake" }

func TestInsertStatementRejectsUnknownRecord(t *testing.T) {
	_, err := insertStatement(fakeRecord{})
	require.Error(t, err)
}

func TestTimestampParsing(t *testing.T) {
	bad := "yesterday"
	assert.Nil(t, timestamp(&bad))
	assert.Nil(t, timestamp(nil))
}

func TestSchemaDeclaresTables(t *testing.T) {
	for _, table := range []string{"orders", "order_updates", "order_status_changes", "order_executions", "deposits", "withdrawals", "indexer_state"} {
		assert.Contains(t, schemaSQL, "CREATE TABLE IF NOT EXISTS "+table+" (")
	}
}

func TestSchemaAllowsAbsentKey(t *testing.T) {
	assert.NotContains(t, schemaSQL, "key TEXT NOT NULL")
	assert.NotContains(t, schemaSQL, "PRIMARY KEY (transaction_hash")
	assert.Equal(t, 5, strings.Count(schemaSQL, "UNIQUE NULLS NOT DISTINCT (transaction_hash, key)\n"))
	assert.Equal(t, 1, strings.Count(schemaSQL, "UNIQUE NULLS NOT DISTINCT (transaction_hash, key, status)"))
}

func TestInsertStatementAbsentKeyIsNull(t *testing.T) {
	records := []model.Record{
		&model.Order{},
		&model.OrderUpdate{},
		&model.OrderStatusChange{Status: model.OrderCancelled},
		&model.OrderExecution{},
		&model.Deposit{},
		&model.Withdrawal{},
	}
	for _, rec := range records {
		stmt, err := insertStatement(rec)
		require.NoError(t, err, rec.EventName())
		assert.Contains(t, stmt.sql, "from_address, key,", rec.EventName())
		key, ok := stmt.args[4].(*string)
		require.True(t, ok, rec.EventName())
		assert.Nil(t, key, rec.EventName())
	}
}
