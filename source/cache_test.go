package source

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/qsql"
	"github.com/hupe1980/qsql/resource"
	"github.com/hupe1980/qsql/scoring"
	"github.com/hupe1980/qsql/table"
)

type countingStore struct {
	Store
	opens atomic.Int64
}

func (c *countingStore) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	c.opens.Add(1)
	return c.Store.Open(ctx, name)
}

func readAll(t *testing.T, s Store, name string) string {
	t.Helper()
	rc, err := s.Open(context.Background(), name)
	require.NoError(t, err)
	defer rc.Close()
	b, err := io.ReadAll(rc)
	require.NoError(t, err)
	return string(b)
}

func TestCachingStore(t *testing.T) {
	ctx := context.Background()
	inner := &countingStore{Store: NewMemoryStore()}
	require.NoError(t, inner.Put(ctx, "a", []byte("aaaa")))
	require.NoError(t, inner.Put(ctx, "b", []byte("bbbb")))
	require.NoError(t, inner.Put(ctx, "c", []byte("cccc")))

	s := NewCachingStore(inner, 8, nil)

	t.Run("hit after miss", func(t *testing.T) {
		assert.Equal(t, "aaaa", readAll(t, s, "a"))
		assert.Equal(t, "aaaa", readAll(t, s, "a"))
		assert.Equal(t, int64(1), inner.opens.Load())

		hits, misses := s.Stats()
		assert.Equal(t, int64(1), hits)
		assert.Equal(t, int64(1), misses)
	})

	t.Run("evicts least recently used", func(t *testing.T) {
		readAll(t, s, "b")
		readAll(t, s, "a")
		readAll(t, s, "c")
		assert.Equal(t, int64(8), s.Size())

		before := inner.opens.Load()
		readAll(t, s, "a")
		assert.Equal(t, before, inner.opens.Load())
		readAll(t, s, "b")
		assert.Equal(t, before+1, inner.opens.Load())
	})

	t.Run("put invalidates", func(t *testing.T) {
		require.NoError(t, s.Put(ctx, "a", []byte("AAAA")))
		assert.Equal(t, "AAAA", readAll(t, s, "a"))
	})

	t.Run("missing", func(t *testing.T) {
		_, err := s.Open(ctx, "nope")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestCachingStoreOversized(t *testing.T) {
	ctx := context.Background()
	inner := &countingStore{Store: NewMemoryStore()}
	require.NoError(t, inner.Put(ctx, "big", make([]byte, 32)))

	s := NewCachingStore(inner, 16, nil)
	readAll(t, s, "big")
	readAll(t, s, "big")

	assert.Equal(t, int64(2), inner.opens.Load())
	assert.Zero(t, s.Size())
}

func TestCachingStoreCacheBudget(t *testing.T) {
	ctx := context.Background()
	inner := NewMemoryStore()
	require.NoError(t, inner.Put(ctx, "a", []byte("aaaa")))
	require.NoError(t, inner.Put(ctx, "b", []byte("bbbbbb")))

	rc := resource.NewController(resource.Config{MemoryLimitBytes: 8, CacheLimitBytes: 8})
	s := NewCachingStore(inner, 64, rc)

	readAll(t, s, "a")
	assert.Equal(t, int64(4), rc.CacheUsage())
	assert.Zero(t, rc.MemoryUsage())

	// Does not fit next to "a" under the cache budget.
	readAll(t, s, "b")
	assert.Equal(t, int64(4), s.Size())

	require.NoError(t, s.Put(ctx, "a", []byte("x")))
	assert.Zero(t, rc.CacheUsage())
}

func TestCachingStoreLeavesCircuitMemory(t *testing.T) {
	ctx := context.Background()
	inner := NewMemoryStore()
	require.NoError(t, inner.Put(ctx, "big", make([]byte, 1_500_000)))

	rc := resource.NewController(resource.Config{
		MemoryLimitBytes: 2 << 20,
		CacheLimitBytes:  4 << 20,
	})
	s := NewCachingStore(inner, 4<<20, rc)
	readAll(t, s, "big")
	require.Equal(t, int64(1_500_000), s.Size())

	eng, err := qsql.New([]string{"v"},
		qsql.WithMode(scoring.ModeStatevector),
		qsql.WithWorkers(1),
		qsql.WithResourceController(rc),
		qsql.WithLogger(qsql.NoopLogger()),
	)
	require.NoError(t, err)
	defer func() { _ = eng.Close() }()

	// Sixteen leaves need 1 MiB of amplitudes per batch.
	leaves := make([]string, 16)
	for i := range leaves {
		leaves[i] = fmt.Sprintf("v > %d", i)
	}

	qctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	res, err := eng.RunQuery(qctx, []table.Row{{"3"}, {"20"}}, strings.Join(leaves, " and "))
	require.NoError(t, err)
	assert.Equal(t, 2, res.Len())
	assert.Zero(t, rc.MemoryUsage())
}

type blockingStore struct {
	Store
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func (b *blockingStore) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	b.once.Do(func() { close(b.started) })
	<-b.release
	return b.Store.Open(ctx, name)
}

func TestCachingStoreCancelledCallerDoesNotFailOthers(t *testing.T) {
	inner := NewMemoryStore()
	require.NoError(t, inner.Put(context.Background(), "a", []byte("aaaa")))

	bs := &blockingStore{Store: inner, started: make(chan struct{}), release: make(chan struct{})}
	s := NewCachingStore(bs, 64, nil)

	ctx, cancel := context.WithCancel(context.Background())
	first := make(chan error, 1)
	go func() {
		_, err := s.Open(ctx, "a")
		first <- err
	}()
	<-bs.started

	second := make(chan string, 1)
	go func() {
		second <- readAll(t, s, "a")
	}()

	cancel()
	assert.ErrorIs(t, <-first, context.Canceled)

	close(bs.release)
	assert.Equal(t, "aaaa", <-second)
}

func TestCachingStoreConcurrent(t *testing.T) {
	ctx := context.Background()
	inner := &countingStore{Store: NewMemoryStore()}
	require.NoError(t, inner.Put(ctx, "a", []byte(patientsCSV)))

	s := NewCachingStore(inner, 1<<20, nil)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tbl, err := LoadTable(ctx, s, "a", "patients")
			assert.NoError(t, err)
			assert.Equal(t, 3, tbl.Len())
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, inner.opens.Load(), int64(16))
	assert.Equal(t, int64(len(patientsCSV)), s.Size())
}
