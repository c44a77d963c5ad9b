package pools

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aristath/yieldrouter/internal/events"
	"github.com/rs/zerolog"
)

// DefaultSourceTimeout bounds a single source attempt.
const DefaultSourceTimeout = 5 * time.Second

// EventEmitter publishes typed events.
type EventEmitter interface {
	EmitTyped(module string, data events.EventData)
}

// Chain tries its sources in order and returns the first success. Each attempt
// runs under its own timeout.
type Chain struct {
	sources []Source
	timeout time.Duration
	emitter EventEmitter
	log     zerolog.Logger
}

// NewChain creates a source chain. emitter may be nil.
func NewChain(sources []Source, timeout time.Duration, emitter EventEmitter, log zerolog.Logger) *Chain {
	if timeout <= 0 {
		timeout = DefaultSourceTimeout
	}
	return &Chain{
		sources: sources,
		timeout: timeout,
		emitter: emitter,
		log:     log.With().Str("client", "pool-markets").Logger(),
	}
}

// Fetch returns the first successful snapshot. When every source fails the
// error joins each source's *FetchError.
func (c *Chain) Fetch(ctx context.Context) (Markets, error) {
	if len(c.sources) == 0 {
		return Markets{}, errors.New("no pool market sources configured")
	}

	var failures []error
	for _, src := range c.sources {
		if err := ctx.Err(); err != nil {
			failures = append(failures, &FetchError{Source: src.Name(), Err: err})
			break
		}

		markets, err := c.attempt(ctx, src)
		if err != nil {
			c.log.Warn().Err(err).Str("source", src.Name()).Msg("Pool market source failed")
			failures = append(failures, &FetchError{Source: src.Name(), Err: err})
			continue
		}

		if markets.Source == "" {
			markets.Source = src.Name()
		}
		if len(failures) > 0 {
			c.degraded(failures, src.Name())
		}
		return markets, nil
	}

	return Markets{}, fmt.Errorf("all pool market sources failed: %w", errors.Join(failures...))
}

func (c *Chain) attempt(ctx context.Context, src Source) (Markets, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	return src.Fetch(ctx)
}

func (c *Chain) degraded(failures []error, servedBy string) {
	names := make([]string, 0, len(failures))
	msgs := make([]string, 0, len(failures))
	for _, err := range failures {
		var fe *FetchError
		if errors.As(err, &fe) {
			names = append(names, fe.Source)
			msgs = append(msgs, fe.Err.Error())
		}
	}

	c.log.Warn().
		Strs("failed", names).
		Str("served_by", servedBy).
		Msg("Pool markets served by fallback source")

	if c.emitter != nil {
		c.emitter.EmitTyped("pools", &events.PoolMarketsDegradedData{
			FailedSource: strings.Join(names, ","),
			ServedBy:     servedBy,
			Error:        strings.Join(msgs, "; "),
		})
	}
}
