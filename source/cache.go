package source

import (
	"bytes"
	"container/list"
	"context"
	"io"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/hupe1980/qsql/resource"
)

var _ Store = (*CachingStore)(nil)

// CachingStore keeps recently opened objects in memory, evicting the least
// recently used once capacity bytes are held. Concurrent opens of the same
// missing object share one read from the inner store.
type CachingStore struct {
	inner    Store
	capacity int64
	rc       *resource.Controller

	mu    sync.Mutex
	size  int64
	items map[string]*list.Element
	order *list.List

	group singleflight.Group

	hits   atomic.Int64
	misses atomic.Int64
}

type cacheEntry struct {
	name string
	data []byte
}

// NewCachingStore wraps inner. Cached bytes are also reserved on the cache
// budget of rc when it is non-nil; an object is left uncached if the
// reservation fails. Circuit memory on rc is never touched.
func NewCachingStore(inner Store, capacity int64, rc *resource.Controller) *CachingStore {
	return &CachingStore{
		inner:    inner,
		capacity: capacity,
		rc:       rc,
		items:    make(map[string]*list.Element),
		order:    list.New(),
	}
}

// Open returns a reader over the cached object, fetching it on a miss.
func (s *CachingStore) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	if data, ok := s.get(name); ok {
		s.hits.Add(1)
		return io.NopCloser(bytes.NewReader(data)), nil
	}
	s.misses.Add(1)

	// The fetch outlives a cancelled caller so other waiters on the same
	// name still get the object; each caller stops waiting on its own ctx.
	fetchCtx := context.WithoutCancel(ctx)
	ch := s.group.DoChan(name, func() (any, error) {
		rc, err := s.inner.Open(fetchCtx, name)
		if err != nil {
			return nil, err
		}
		defer func() { _ = rc.Close() }()

		data, err := io.ReadAll(rc)
		if err != nil {
			return nil, err
		}
		s.set(name, data)
		return data, nil
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if res.Err != nil {
		return nil, res.Err
	}

	return io.NopCloser(bytes.NewReader(res.Val.([]byte))), nil
}

// Put writes through to the inner store and drops the cached copy.
func (s *CachingStore) Put(ctx context.Context, name string, data []byte) error {
	s.mu.Lock()
	if el, ok := s.items[name]; ok {
		s.remove(el)
	}
	s.mu.Unlock()

	return s.inner.Put(ctx, name, data)
}

// Stats returns the hit and miss counts.
func (s *CachingStore) Stats() (hits, misses int64) {
	return s.hits.Load(), s.misses.Load()
}

// Size returns the number of cached bytes.
func (s *CachingStore) Size() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.size
}

func (s *CachingStore) get(name string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	el, ok := s.items[name]
	if !ok {
		return nil, false
	}
	s.order.MoveToFront(el)
	return el.Value.(*cacheEntry).data, true
}

func (s *CachingStore) set(name string, data []byte) {
	n := int64(len(data))
	if n > s.capacity {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if el, ok := s.items[name]; ok {
		s.remove(el)
	}
	for s.size+n > s.capacity {
		back := s.order.Back()
		if back == nil {
			break
		}
		s.remove(back)
	}

	if !s.rc.TryAcquireCache(n) {
		return
	}

	s.items[name] = s.order.PushFront(&cacheEntry{name: name, data: data})
	s.size += n
}

// remove drops el. The caller holds s.mu.
func (s *CachingStore) remove(el *list.Element) {
	ent := el.Value.(*cacheEntry)
	s.order.Remove(el)
	delete(s.items, ent.name)

	n := int64(len(ent.data))
	s.size -= n
	s.rc.ReleaseCache(n)
}
