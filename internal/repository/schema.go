package repository

import "fmt"

const (
	CandlesTable  = "candles"
	ContextsTable = "contexts"
)

// Schema returns the idempotent DDL for the candle and context tables.
func Schema(database string) []string {
	return []string{
		fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", database),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.%s (
    symbol LowCardinality(String),
    tf     LowCardinality(String),
    ts     DateTime64(3, 'UTC'),
    open   Float64,
    high   Float64,
    low    Float64,
    close  Float64,
    volume Float64
) ENGINE = ReplacingMergeTree
ORDER BY (symbol, tf, ts)`, database, CandlesTable),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.%s (
    id           UUID,
    symbol       LowCardinality(String),
    tf           LowCardinality(String),
    evaluated_at DateTime64(3, 'UTC'),
    bar_time     DateTime64(3, 'UTC'),
    reason       LowCardinality(String),
    state        LowCardinality(String),
    entry_signal UInt8,
    payload      String
) ENGINE = MergeTree
ORDER BY (symbol, tf, evaluated_at)
TTL toDateTime(evaluated_at) + INTERVAL 30 DAY`, database, ContextsTable),
	}
}

// Table qualifies a table name with its database.
func Table(database, table string) string {
	return fmt.Sprintf("%s.%s", database, table)
}
