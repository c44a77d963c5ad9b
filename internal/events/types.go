// Package events provides event management functionality.
package events

import (
	"time"
)

// EventType represents different event types
type EventType string

const (
	ErrorOccurred EventType = "ERROR_OCCURRED"

	// Catalog events
	CatalogRefreshed    EventType = "CATALOG_REFRESHED"
	PoolMarketsDegraded EventType = "POOL_MARKETS_DEGRADED"

	// Router events
	AllocationComputed EventType = "ALLOCATION_COMPUTED"

	// Copy-trading events
	StrategyPublished EventType = "STRATEGY_PUBLISHED"
	StrategyFollowed  EventType = "STRATEGY_FOLLOWED"

	// Job lifecycle events
	JobStarted   EventType = "JOB_STARTED"
	JobCompleted EventType = "JOB_COMPLETED"
	JobFailed    EventType = "JOB_FAILED"
)

// AllEventTypes lists every event type a stream client can subscribe to.
var AllEventTypes = []EventType{
	ErrorOccurred,
	CatalogRefreshed,
	PoolMarketsDegraded,
	AllocationComputed,
	StrategyPublished,
	StrategyFollowed,
	JobStarted,
	JobCompleted,
	JobFailed,
}

// Event represents a system event
type Event struct {
	Type      EventType              `json:"type" msgpack:"type"`
	Timestamp time.Time              `json:"timestamp" msgpack:"timestamp"`
	Data      map[string]interface{} `json:"data" msgpack:"data"`
	Module    string                 `json:"module" msgpack:"module"`
}
