// Package tiles fetches, decodes and keeps the bitmaps behind grid cells.
//
// Every key is in at most one of three places: the bitmap cache, the loading
// set (a fetch holds one unit of the concurrency budget) or the queue. The
// queue is most-recent-first so that whatever just scrolled into view is
// admitted before the backlog.
package tiles

import (
	"context"
	"errors"
	"image"
	"log/slog"
	"sync"

	"github.com/gogpu/gg"
	"golang.org/x/sync/semaphore"

	"github.com/glabrego/photowall-cli/internal/grid"
	"github.com/glabrego/photowall-cli/internal/logging"
	"github.com/glabrego/photowall-cli/internal/notify"
)

type Fetcher interface {
	FetchImage(ctx context.Context, pathname string) (image.Image, error)
}

type PostSource interface {
	Post(x, y int) (grid.GridPost, bool)
}

type Publisher interface {
	Publish(notify.Event)
}

type Options struct {
	MaxConcurrent int
	Publisher     Publisher
	Logger        *slog.Logger
}

type Stats struct {
	Cached  int
	Loading int
	Queued  int
	Failed  int
	Bytes   int

	Started uint64
	Loaded  uint64
	Errors  uint64
	Aborted uint64
}

type fetch struct {
	cancel context.CancelFunc
}

type Cache struct {
	fetcher Fetcher
	posts   PostSource
	pub     Publisher
	logger  *slog.Logger
	sem     *semaphore.Weighted

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	images  map[grid.Key]*gg.ImageBuf
	loading map[grid.Key]*fetch
	queue   []grid.Key
	queued  map[grid.Key]struct{}
	failed  map[grid.Key]struct{}
	stats   Stats
	closed  bool
}

func New(fetcher Fetcher, posts PostSource, opts Options) *Cache {
	if opts.MaxConcurrent < 1 {
		opts.MaxConcurrent = grid.MaxConcurrent
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Cache{
		fetcher: fetcher,
		posts:   posts,
		pub:     opts.Publisher,
		logger:  logging.OrDiscard(opts.Logger),
		sem:     semaphore.NewWeighted(int64(opts.MaxConcurrent)),
		ctx:     ctx,
		cancel:  cancel,
		images:  make(map[grid.Key]*gg.ImageBuf),
		loading: make(map[grid.Key]*fetch),
		queued:  make(map[grid.Key]struct{}),
		failed:  make(map[grid.Key]struct{}),
	}
}

func (c *Cache) Image(x, y int) *gg.ImageBuf {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.images[grid.Key{X: x, Y: y}]
}

func (c *Cache) IsLoading(x, y int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.loading[grid.Key{X: x, Y: y}]
	return ok
}

func (c *Cache) IsQueued(x, y int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.queued[grid.Key{X: x, Y: y}]
	return ok
}

// RequestTile queues the cell's image at the front of the queue. Cells without
// a post, cached cells and cells already loading are ignored. A previous
// failure for the cell is forgotten, so this is also the retry path.
func (c *Cache) RequestTile(x, y int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := grid.Key{X: x, Y: y}
	delete(c.failed, key)
	c.requestLocked(key)
	c.drainLocked()
}

// AbortTile drops a queued request or cancels an in-flight fetch. The
// concurrency slot of an in-flight fetch is released right away. Unknown keys
// are ignored.
func (c *Cache) AbortTile(x, y int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.abortLocked(grid.Key{X: x, Y: y})
	c.drainLocked()
}

// UpdateViewport makes visible the set of keys worth spending bandwidth on:
// work for keys outside it is cancelled and every visible key that is neither
// cached nor loading is queued. A key that failed stays failed while it
// remains visible; it is retried after leaving and re-entering the viewport.
func (c *Cache) UpdateViewport(visible grid.KeySet) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}

	for key := range c.loading {
		if !visible.Has(key) {
			c.abortLocked(key)
		}
	}
	for key := range c.queued {
		if !visible.Has(key) {
			c.abortLocked(key)
		}
	}
	for key := range c.failed {
		if !visible.Has(key) {
			delete(c.failed, key)
		}
	}

	// Walk backwards so the top-left cell ends up at the queue front.
	keys := visible.Keys()
	for i := len(keys) - 1; i >= 0; i-- {
		if _, failed := c.failed[keys[i]]; failed {
			continue
		}
		c.requestLocked(keys[i])
	}
	c.drainLocked()
}

// ViewportProgress counts the visible cells holding a post and how many of
// them have a bitmap.
func (c *Cache) ViewportProgress(visible grid.KeySet) (loaded, total int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key := range visible {
		if _, ok := c.posts.Post(key.X, key.Y); !ok {
			continue
		}
		total++
		if _, ok := c.images[key]; ok {
			loaded++
		}
	}
	return loaded, total
}

func (c *Cache) CachedKeys() []grid.Key {
	c.mu.Lock()
	set := make(grid.KeySet, len(c.images))
	for key := range c.images {
		set.Add(key)
	}
	c.mu.Unlock()
	return set.Keys()
}

func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.stats
	s.Cached = len(c.images)
	s.Loading = len(c.loading)
	s.Queued = len(c.queue)
	s.Failed = len(c.failed)
	for _, buf := range c.images {
		s.Bytes += buf.ByteSize()
	}
	return s
}

// Close cancels every fetch, waits for the workers to return and releases the
// cached bitmaps. The cache accepts no work afterwards.
func (c *Cache) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	for key := range c.loading {
		c.abortLocked(key)
	}
	c.queue = nil
	clear(c.queued)
	c.cancel()
	c.mu.Unlock()

	c.wg.Wait()

	c.mu.Lock()
	for key, buf := range c.images {
		buf.Clear()
		delete(c.images, key)
	}
	c.mu.Unlock()
}

func (c *Cache) requestLocked(key grid.Key) {
	if c.closed {
		return
	}
	if _, ok := c.images[key]; ok {
		return
	}
	if _, ok := c.loading[key]; ok {
		return
	}
	if _, ok := c.posts.Post(key.X, key.Y); !ok {
		return
	}
	if _, ok := c.queued[key]; ok {
		c.removeQueuedLocked(key)
	}
	c.queue = append([]grid.Key{key}, c.queue...)
	c.queued[key] = struct{}{}
}

func (c *Cache) abortLocked(key grid.Key) {
	if f, ok := c.loading[key]; ok {
		delete(c.loading, key)
		f.cancel()
		c.sem.Release(1)
		c.stats.Aborted++
		return
	}
	if _, ok := c.queued[key]; ok {
		c.removeQueuedLocked(key)
	}
}

func (c *Cache) removeQueuedLocked(key grid.Key) {
	delete(c.queued, key)
	for i, k := range c.queue {
		if k == key {
			c.queue = append(c.queue[:i], c.queue[i+1:]...)
			return
		}
	}
}

// drainLocked admits queued keys while the budget has room.
func (c *Cache) drainLocked() {
	for !c.closed && len(c.queue) > 0 {
		if !c.sem.TryAcquire(1) {
			return
		}
		key := c.queue[0]
		c.queue = c.queue[1:]
		delete(c.queued, key)

		post, ok := c.posts.Post(key.X, key.Y)
		if !ok {
			c.sem.Release(1)
			continue
		}

		ctx, cancel := context.WithCancel(c.ctx)
		f := &fetch{cancel: cancel}
		c.loading[key] = f
		c.stats.Started++
		c.wg.Add(1)
		go c.load(ctx, f, key, post.Pathname)
	}
}

func (c *Cache) load(ctx context.Context, f *fetch, key grid.Key, pathname string) {
	defer c.wg.Done()

	img, err := c.fetcher.FetchImage(ctx, pathname)
	var buf *gg.ImageBuf
	if err == nil {
		buf = gg.ImageBufFromImage(img)
	}

	c.mu.Lock()
	if current, ok := c.loading[key]; !ok || current != f {
		// Aborted while in flight; the slot is already back in the budget.
		c.mu.Unlock()
		return
	}
	aborted := ctx.Err() != nil || errors.Is(err, context.Canceled)
	delete(c.loading, key)
	c.sem.Release(1)
	f.cancel()

	ev := notify.Event{Kind: notify.TileLoaded, Key: key}
	switch {
	case err == nil:
		c.images[key] = buf
		c.stats.Loaded++
	case aborted:
		c.stats.Aborted++
		ev.Kind = 0
	default:
		c.failed[key] = struct{}{}
		c.stats.Errors++
		ev.Kind = notify.TileFailed
		c.logger.Warn("tile fetch failed", "key", key.String(), "pathname", pathname, "err", err)
	}
	c.drainLocked()
	c.mu.Unlock()

	if ev.Kind != 0 && c.pub != nil {
		c.pub.Publish(ev)
	}
}
