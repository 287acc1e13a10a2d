package client

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hanpama/gqlclient/query"
	"github.com/hanpama/gqlclient/schema"
	"github.com/stretchr/testify/require"
)

// asyncBackend counts calls that went through the async methods.
type asyncBackend struct {
	*fakeBackend
	async atomic.Int32
}

func (b *asyncBackend) ExecuteQueryAsync(ctx context.Context, req *Request) *Future[Payload] {
	b.async.Add(1)
	return Go(func() (Payload, error) { return b.ExecuteQuery(ctx, req) })
}

func (b *asyncBackend) ExecuteMutationAsync(ctx context.Context, req *Request) *Future[Payload] {
	b.async.Add(1)
	return Go(func() (Payload, error) { return b.ExecuteMutation(ctx, req) })
}

func (b *asyncBackend) ExecuteSubscriptionAsync(ctx context.Context, req *Request) *Future[Stream] {
	b.async.Add(1)
	return Go(func() (Stream, error) { return b.ExecuteSubscription(ctx, req) })
}

func TestAsyncClientQuery(t *testing.T) {
	ctx := context.Background()
	backend := &fakeBackend{payload: Payload{"data": map[string]any{"version": "1.0"}}}
	c := NewAsync(backend)

	q, err := c.Query(ctx).Await(ctx)
	require.NoError(t, err)
	q2, err := c.Query(ctx).Await(ctx)
	require.NoError(t, err)
	require.Same(t, q, q2)

	resp, err := q.MustOperation("version").Call(ctx).Await(ctx)
	require.NoError(t, err)
	require.Equal(t, "1.0", resp.Data["version"])
	require.Equal(t, 1, backend.introspected)
	require.Equal(t, "AsyncQueryProxy(`version`)", q.MustOperation("version").String())
}

func TestAsyncProxyPrefersAsyncBackend(t *testing.T) {
	ctx := context.Background()
	backend := &asyncBackend{fakeBackend: &fakeBackend{messages: []Payload{{"data": map[string]any{}}}}}
	c := NewAsync(backend, WithSchema(starWars(t)))

	m, err := c.Mutation(ctx).Await(ctx)
	require.NoError(t, err)
	_, err = m.MustOperation("createReview").Call(ctx, Select("stars"), Input("review", map[string]any{"stars": 4})).Await(ctx)
	require.NoError(t, err)

	sub, err := c.Subscription(ctx).Await(ctx)
	require.NoError(t, err)
	resp, err := sub.MustOperation("reviewAdded").Call(ctx).Await(ctx)
	require.NoError(t, err)
	require.True(t, resp.IsStream())
	require.NoError(t, resp.Close())

	require.EqualValues(t, 2, backend.async.Load())
	require.Len(t, backend.sent(), 2)
}

func TestAsyncCallBuildErrorResolvesImmediately(t *testing.T) {
	sp := NewAsyncServiceProxy(schema.OperationQuery, &fakeBackend{}, starWars(t), query.DefaultSettings(), nil, nil)
	f := sp.MustOperation("allFilms").Call(context.Background(), Select("wings"))

	select {
	case <-f.Done():
	default:
		t.Fatal("future not resolved")
	}
	_, err := f.Await(context.Background())
	require.Error(t, err)
}

func TestAsyncPluginsRunInOrder(t *testing.T) {
	var calls []string
	plugin := func(name string) Plugin {
		return PluginFuncs{
			PreFunc: func(_ context.Context, req *Request) (*Request, error) {
				calls = append(calls, "pre "+name)
				return req, nil
			},
			PostFunc: func(_ context.Context, resp *Response) (*Response, error) {
				calls = append(calls, "post "+name)
				return resp, nil
			},
		}
	}
	sp := NewAsyncServiceProxy(schema.OperationQuery, &fakeBackend{}, starWars(t), query.DefaultSettings(), []Plugin{plugin("a"), plugin("b")}, nil)

	_, err := sp.MustOperation("version").Call(context.Background()).Await(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"pre a", "pre b", "post a", "post b"}, calls)
}

func TestFutureThenAndAwait(t *testing.T) {
	f := Then(Resolved(2, nil), func(n int) (int, error) { return n * 21, nil })
	v, err := f.Await(context.Background())
	require.NoError(t, err)
	require.Equal(t, 42, v)

	var called atomic.Bool
	failed := Then(Resolved(0, errUnavailable), func(int) (string, error) {
		called.Store(true)
		return "", nil
	})
	_, err = failed.Await(context.Background())
	require.ErrorIs(t, err, errUnavailable)
	require.False(t, called.Load())

	block := make(chan struct{})
	defer close(block)
	slow := Go(func() (int, error) { <-block; return 0, nil })
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = slow.Await(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

// slowStream records whether it was closed.
type slowStream struct {
	closed atomic.Bool
}

func (s *slowStream) Next(context.Context) (Payload, error) { return nil, Done }
func (s *slowStream) Close() error                          { s.closed.Store(true); return nil }

// lateBackend opens subscriptions only after delay.
type lateBackend struct {
	*fakeBackend
	delay  time.Duration
	stream *slowStream
}

func (b *lateBackend) ExecuteSubscription(context.Context, *Request) (Stream, error) {
	time.Sleep(b.delay)
	return b.stream, nil
}

func TestAsyncCancelClosesLateStream(t *testing.T) {
	backend := &lateBackend{fakeBackend: &fakeBackend{}, delay: 50 * time.Millisecond, stream: &slowStream{}}
	sp := NewAsyncServiceProxy(schema.OperationSubscription, backend, starWars(t), query.DefaultSettings(), nil, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := sp.MustOperation("reviewAdded").Call(ctx, Select("stars")).Await(context.Background())
	require.ErrorIs(t, err, context.DeadlineExceeded)

	require.Eventually(t, backend.stream.closed.Load, time.Second, 5*time.Millisecond)
}
