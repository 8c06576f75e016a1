package indexing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockIndexer struct {
	mock.Mock
}

func (m *MockIndexer) Ingest(ctx context.Context, doc Document) (string, error) {
	args := m.Called(ctx, doc)
	return args.String(0), args.Error(1)
}

func (m *MockIndexer) Query(ctx context.Context, q Query) (string, error) {
	args := m.Called(ctx, q)
	return args.String(0), args.Error(1)
}

type slowIndexer struct{}

func (slowIndexer) Ingest(ctx context.Context, _ Document) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

func (slowIndexer) Query(ctx context.Context, _ Query) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

func TestGuarded_PassesThrough(t *testing.T) {
	next := new(MockIndexer)
	q := Query{Question: "q"}
	next.On("Query", mock.Anything, q).Return("answer", nil)
	next.On("Ingest", mock.Anything, mock.AnythingOfType("indexing.Document")).Return("emb-1", nil)

	g := NewGuarded(next, nil, time.Second, nil)

	answer, err := g.Query(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, "answer", answer)

	id, err := g.Ingest(context.Background(), Document{Filename: "a.pdf"})
	require.NoError(t, err)
	assert.Equal(t, "emb-1", id)

	next.AssertExpectations(t)
}

func TestGuarded_CallsCarryDeadline(t *testing.T) {
	next := new(MockIndexer)
	next.On("Query", mock.MatchedBy(func(ctx context.Context) bool {
		_, ok := ctx.Deadline()
		return ok
	}), mock.Anything).Return("ok", nil)

	g := NewGuarded(next, nil, time.Minute, nil)
	_, err := g.Query(context.Background(), Query{})
	require.NoError(t, err)
	next.AssertExpectations(t)
}

func TestGuarded_Timeout(t *testing.T) {
	g := NewGuarded(slowIndexer{}, nil, 20*time.Millisecond, nil)

	_, err := g.Query(context.Background(), Query{Question: "q"})
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestGuarded_BreakerOpensAfterFailures(t *testing.T) {
	next := new(MockIndexer)
	next.On("Query", mock.Anything, mock.Anything).Return("", errors.New("connection refused")).Times(2)

	breaker := NewBreaker(&BreakerConfig{MaxFailures: 2, Timeout: time.Hour})
	g := NewGuarded(next, breaker, time.Second, nil)

	for i := 0; i < 2; i++ {
		_, err := g.Query(context.Background(), Query{})
		assert.EqualError(t, err, "connection refused")
	}

	_, err := g.Query(context.Background(), Query{})
	assert.ErrorIs(t, err, ErrBreakerOpen)
	assert.Equal(t, BreakerOpen, g.Breaker().State())
	next.AssertExpectations(t)
}

func TestGuarded_CallerCancellationDoesNotTripBreaker(t *testing.T) {
	breaker := NewBreaker(&BreakerConfig{MaxFailures: 1, Timeout: time.Hour})
	g := NewGuarded(slowIndexer{}, breaker, time.Minute, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := g.Query(ctx, Query{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrTimeout)
	assert.Equal(t, BreakerClosed, breaker.State())
}
