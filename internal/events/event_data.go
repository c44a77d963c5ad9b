package events

import (
	"encoding/json"
	"time"
)

// EventData is the interface that all event data types must implement
// This allows for type-safe event data while maintaining flexibility
type EventData interface {
	// EventType returns the event type this data is associated with
	EventType() EventType
}

// CatalogRefreshedData contains data for CatalogRefreshed events
type CatalogRefreshedData struct {
	Source string `json:"source"`
	Count  int    `json:"count"`
	Stale  bool   `json:"stale"`
}

// EventType returns the event type for CatalogRefreshedData
func (d *CatalogRefreshedData) EventType() EventType {
	return CatalogRefreshed
}

// PoolMarketsDegradedData contains data for PoolMarketsDegraded events.
// It is emitted when the primary pool market source failed and a fallback
// answered instead.
type PoolMarketsDegradedData struct {
	FailedSource string `json:"failed_source"`
	ServedBy     string `json:"served_by"`
	Error        string `json:"error"`
}

// EventType returns the event type for PoolMarketsDegradedData
func (d *PoolMarketsDegradedData) EventType() EventType {
	return PoolMarketsDegraded
}

// AllocationComputedData contains data for AllocationComputed events
type AllocationComputedData struct {
	Positions       int     `json:"positions"`
	TotalAmount     float64 `json:"total_amount"`
	AllocatedAmount float64 `json:"allocated_amount"`
	WeightedAPY     float64 `json:"weighted_apy"`
	RiskScore       float64 `json:"risk_score"`
}

// EventType returns the event type for AllocationComputedData
func (d *AllocationComputedData) EventType() EventType {
	return AllocationComputed
}

// StrategyPublishedData contains data for StrategyPublished events
type StrategyPublishedData struct {
	StrategyID string `json:"strategy_id"`
	Creator    string `json:"creator"`
	Name       string `json:"name"`
}

// EventType returns the event type for StrategyPublishedData
func (d *StrategyPublishedData) EventType() EventType {
	return StrategyPublished
}

// StrategyFollowedData contains data for StrategyFollowed events
type StrategyFollowedData struct {
	StrategyID string  `json:"strategy_id"`
	Follower   string  `json:"follower"`
	AmountUSD  float64 `json:"amount_usd"`
}

// EventType returns the event type for StrategyFollowedData
func (d *StrategyFollowedData) EventType() EventType {
	return StrategyFollowed
}

// ErrorEventData contains data for ErrorOccurred events
type ErrorEventData struct {
	Error   string                 `json:"error"`
	Context map[string]interface{} `json:"context,omitempty"`
}

// EventType returns the event type for ErrorEventData
func (d *ErrorEventData) EventType() EventType {
	return ErrorOccurred
}

// JobStatusData contains data for job lifecycle events
type JobStatusData struct {
	JobName   string           `json:"job_name"`
	Status    string           `json:"status"` // "started", "completed", "failed"
	Error     string           `json:"error,omitempty"`
	Duration  float64          `json:"duration,omitempty"`
	Details   map[string]int64 `json:"details,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
}

// EventType returns the event type for JobStatusData
// Note: The actual event type is determined by the Status field
func (d *JobStatusData) EventType() EventType {
	switch d.Status {
	case "completed":
		return JobCompleted
	case "failed":
		return JobFailed
	default:
		return JobStarted
	}
}

// EventWithData represents an event with typed data
type EventWithData struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Module    string    `json:"module"`
	Data      EventData `json:"data"`
}

// MarshalJSON customizes JSON serialization for EventWithData
func (e *EventWithData) MarshalJSON() ([]byte, error) {
	type Alias EventWithData
	aux := &struct {
		Data json.RawMessage `json:"data"`
		*Alias
	}{
		Alias: (*Alias)(e),
	}

	if e.Data != nil {
		dataBytes, err := json.Marshal(e.Data)
		if err != nil {
			return nil, err
		}
		aux.Data = dataBytes
	}

	return json.Marshal(aux)
}

// UnmarshalJSON customizes JSON deserialization for EventWithData
func (e *EventWithData) UnmarshalJSON(data []byte) error {
	type Alias EventWithData
	aux := &struct {
		Data json.RawMessage `json:"data"`
		*Alias
	}{
		Alias: (*Alias)(e),
	}

	if err := json.Unmarshal(data, aux); err != nil {
		return err
	}

	if len(aux.Data) == 0 {
		return nil
	}

	var eventData EventData
	switch aux.Type {
	case CatalogRefreshed:
		eventData = &CatalogRefreshedData{}
	case PoolMarketsDegraded:
		eventData = &PoolMarketsDegradedData{}
	case AllocationComputed:
		eventData = &AllocationComputedData{}
	case StrategyPublished:
		eventData = &StrategyPublishedData{}
	case StrategyFollowed:
		eventData = &StrategyFollowedData{}
	case ErrorOccurred:
		eventData = &ErrorEventData{}
	case JobStarted, JobCompleted, JobFailed:
		eventData = &JobStatusData{}
	default:
		// For unknown types, use raw map
		generic := &GenericEventData{Type: aux.Type}
		if err := json.Unmarshal(aux.Data, &generic.Data); err != nil {
			return err
		}
		e.Data = generic
		return nil
	}

	if err := json.Unmarshal(aux.Data, eventData); err != nil {
		return err
	}
	e.Data = eventData
	return nil
}

// GenericEventData is a fallback for events that don't have a specific type
type GenericEventData struct {
	Type EventType              `json:"-"`
	Data map[string]interface{} `json:"-"`
}

// EventType returns the event type for GenericEventData
func (d *GenericEventData) EventType() EventType {
	return d.Type
}

// MarshalJSON customizes JSON serialization for GenericEventData
func (d *GenericEventData) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Data)
}

// toMap flattens typed event data into the generic map carried by Event.
func toMap(data EventData) (map[string]interface{}, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	m := make(map[string]interface{})
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return m, nil
}
