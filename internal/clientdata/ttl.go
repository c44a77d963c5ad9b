package clientdata

import "time"

// TTL constants for different data types.
// These are added to the repository clock when storing to calculate expires_at.
// Vault and pool TTLs are defaults; the config can override them.
const (
	TTLVaultCatalog    = 5 * time.Minute  // aggregator catalogs refresh a few times an hour
	TTLPoolMarkets     = time.Minute      // pool APYs move with every swap
	TTLLendingAccount  = 30 * time.Second // user positions change on every tx
	TTLLendingReserves = 5 * time.Minute  // supply rates
)

// DefaultStaleRetention is how long an expired entry is kept around as a
// stale fallback before cleanup removes it.
const DefaultStaleRetention = 7 * 24 * time.Hour
