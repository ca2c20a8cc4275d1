package storage

const (
	KEY_MARKET_SNAPSHOT = "storage::market_snapshot"
)
