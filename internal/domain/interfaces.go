package domain

import "context"

// OpportunitySource supplies a fresh catalog of yield opportunities.
// Implemented by the vault-aggregator client, the pool market service and the
// copy-trading strategy repository.
type OpportunitySource interface {
	// Name identifies the source in logs and API metadata.
	Name() string

	// Opportunities returns the current catalog. Implementations may serve
	// cached data; callers treat the result as an immutable snapshot.
	Opportunities(ctx context.Context) ([]YieldOpportunity, error)
}

// LendingPositionProvider returns a normalized lending account snapshot.
type LendingPositionProvider interface {
	Position(ctx context.Context, account string) (LendingPosition, error)
}

// PoolPositionProvider returns a user's pool holdings, priced in USD.
type PoolPositionProvider interface {
	Holdings(ctx context.Context, account string) (PoolPosition, error)
}

// PoolAPYProvider returns the current APY per pool symbol.
type PoolAPYProvider interface {
	APYBySymbol(ctx context.Context) (map[string]float64, error)
}
