package indexing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go-do-list/backend/internal/logging"
)

var ErrTimeout = errors.New("indexer call timed out")

// Guarded bounds every call to the wrapped Indexer with a timeout and a
// circuit breaker.
type Guarded struct {
	next    Indexer
	breaker *Breaker
	timeout time.Duration
	log     logging.Logger
}

func NewGuarded(next Indexer, breaker *Breaker, timeout time.Duration, log logging.Logger) *Guarded {
	if breaker == nil {
		breaker = NewBreaker(nil)
	}
	if log == nil {
		log = logging.Discard()
	}
	return &Guarded{next: next, breaker: breaker, timeout: timeout, log: log}
}

func (g *Guarded) Breaker() *Breaker {
	return g.breaker
}

func (g *Guarded) Ingest(ctx context.Context, doc Document) (string, error) {
	var id string
	err := g.call(ctx, "ingest", func(ctx context.Context) error {
		var err error
		id, err = g.next.Ingest(ctx, doc)
		return err
	})
	return id, err
}

func (g *Guarded) Query(ctx context.Context, q Query) (string, error) {
	var answer string
	err := g.call(ctx, "query", func(ctx context.Context) error {
		var err error
		answer, err = g.next.Query(ctx, q)
		return err
	})
	return answer, err
}

func (g *Guarded) call(ctx context.Context, op string, fn func(context.Context) error) error {
	callCtx := ctx
	if g.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	before := g.breaker.State()
	err := g.breaker.Execute(func() error {
		return fn(callCtx)
	}, func(err error) bool {
		// The caller giving up says nothing about the indexer's health.
		return ctx.Err() == nil
	})
	if after := g.breaker.State(); after != before {
		g.log.Warn(ctx, "indexer circuit breaker changed state", "op", op, "from", before.String(), "to", after.String())
	}

	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrBreakerOpen):
		return err
	case ctx.Err() == nil && errors.Is(callCtx.Err(), context.DeadlineExceeded):
		return fmt.Errorf("%w after %s", ErrTimeout, g.timeout)
	default:
		return err
	}
}
