package schema

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hanpama/gqlclient/internal/schematest"
	"github.com/stretchr/testify/require"
)

type countingProvider struct {
	key   string
	raw   []byte
	err   error
	calls atomic.Int32
	gate  chan struct{}
}

func (p *countingProvider) LoadSchema(ctx context.Context) ([]byte, error) {
	p.calls.Add(1)
	if p.gate != nil {
		<-p.gate
	}
	return p.raw, p.err
}

func (p *countingProvider) SchemaKey() string { return p.key }

func TestLoaderCachesByKey(t *testing.T) {
	l := NewLoader(NewLRUCache(4, 0), nil)
	p := &countingProvider{key: "starwars", raw: schematest.StarWars}

	first, err := l.Load(context.Background(), p)
	require.NoError(t, err)
	second, err := l.Load(context.Background(), p)
	require.NoError(t, err)

	require.Same(t, first, second)
	require.EqualValues(t, 1, p.calls.Load())
}

func TestLoaderWithoutCache(t *testing.T) {
	l := NewLoader(nil, nil)
	p := &countingProvider{key: "starwars", raw: schematest.StarWars}
	for i := 0; i < 3; i++ {
		_, err := l.Load(context.Background(), p)
		require.NoError(t, err)
	}
	require.EqualValues(t, 3, p.calls.Load())
}

func TestLoaderDoesNotCacheFailures(t *testing.T) {
	l := NewLoader(NewLRUCache(4, time.Minute), nil)
	boom := errors.New("boom")
	p := &countingProvider{key: "k", err: boom}

	_, err := l.Load(context.Background(), p)
	require.ErrorIs(t, err, boom)

	p.err, p.raw = nil, schematest.StarWars
	s, err := l.Load(context.Background(), p)
	require.NoError(t, err)
	require.NotNil(t, s.GetQueryType())
	require.EqualValues(t, 2, p.calls.Load())
}

func TestLoaderCollapsesConcurrentLoads(t *testing.T) {
	l := NewLoader(NewLRUCache(4, 0), nil)
	p := &countingProvider{key: "k", raw: schematest.StarWars, gate: make(chan struct{})}

	var wg sync.WaitGroup
	results := make([]*Schema, 4)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s, err := l.Load(context.Background(), p)
			require.NoError(t, err)
			results[i] = s
		}(i)
	}
	require.Eventually(t, func() bool { return p.calls.Load() == 1 }, time.Second, time.Millisecond)
	// let stragglers join the in-flight call
	time.Sleep(20 * time.Millisecond)
	close(p.gate)
	wg.Wait()

	for _, s := range results[1:] {
		require.Same(t, results[0], s)
	}
	require.EqualValues(t, 1, p.calls.Load())
}

func TestFileProvider(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "schema.json")
	require.NoError(t, os.WriteFile(path, schematest.StarWars, 0o644))

	p := NewFileProvider(path)
	require.Equal(t, path, p.SchemaKey())

	s, err := NewLoader(nil, nil).Load(context.Background(), p)
	require.NoError(t, err)
	require.NotNil(t, s.GetSubscriptionType())

	_, err = NewFileProvider(filepath.Join(dir, "missing.json")).LoadSchema(context.Background())
	require.ErrorIs(t, err, os.ErrNotExist)
}
