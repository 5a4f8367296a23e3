package directory

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/glabrego/photowall-cli/internal/grid"
	"github.com/glabrego/photowall-cli/internal/logging"
	"github.com/glabrego/photowall-cli/internal/notify"
	"github.com/glabrego/photowall-cli/internal/postapi"
)

type Lister interface {
	ListPosts(ctx context.Context, cursor string, limit int) (postapi.Page, error)
}

type Publisher interface {
	Publish(notify.Event)
}

// Directory holds every post fetched this session, each pinned to the cell
// given by its arrival order.
type Directory struct {
	lister Lister
	layout grid.Layout
	pub    Publisher
	logger *slog.Logger

	fetching atomic.Bool

	mu       sync.RWMutex
	posts    []grid.GridPost
	byKey    map[grid.Key]int
	seen     map[string]struct{}
	cursor   string
	done     bool
	overflow int
}

func New(lister Lister, layout grid.Layout, pub Publisher, logger *slog.Logger) *Directory {
	return &Directory{
		lister: lister,
		layout: layout,
		pub:    pub,
		logger: logging.OrDiscard(logger),
		byKey:  make(map[grid.Key]int),
		seen:   make(map[string]struct{}),
	}
}

// FetchAll pages through the listing until the server reports no more pages.
// A call made while another is running returns immediately. A failed page
// ends the run quietly; the next call resumes from the last good cursor.
func (d *Directory) FetchAll(ctx context.Context) {
	if d.Done() || !d.fetching.CompareAndSwap(false, true) {
		return
	}
	defer d.fetching.Store(false)

	for {
		d.mu.RLock()
		cursor := d.cursor
		d.mu.RUnlock()

		page, err := d.lister.ListPosts(ctx, cursor, grid.PageSize)
		if err != nil {
			if ctx.Err() == nil {
				d.logger.Warn("post listing stopped", "cursor", cursor, "err", err)
			}
			return
		}
		if !page.Success || page.Data == nil {
			d.logger.Warn("post listing stopped", "cursor", cursor, "success", page.Success)
			return
		}

		placed := d.ingest(page.Data)
		d.logger.Debug("posts page ingested", "placed", placed, "total", d.Count())
		d.publish(notify.Event{Kind: notify.PostsUpdated})

		next := page.Cursor()
		if !page.HasMore || next == "" {
			d.mu.Lock()
			d.done = true
			d.mu.Unlock()
			d.logger.Info("post listing complete", "total", d.Count())
			d.publish(notify.Event{Kind: notify.PostsDone})
			return
		}

		d.mu.Lock()
		d.cursor = next
		d.mu.Unlock()
	}
}

// ingest appends a batch in order and returns how many posts got a cell.
func (d *Directory) ingest(batch []postapi.Post) int {
	d.mu.Lock()
	defer d.mu.Unlock()

	placed := 0
	for _, p := range batch {
		if p.ID != "" {
			if _, dup := d.seen[p.ID]; dup {
				continue
			}
		}
		key, ok := d.layout.KeyForIndex(len(d.posts))
		if !ok {
			if d.overflow == 0 {
				d.logger.Warn("grid full, dropping further posts", "capacity", d.layout.Capacity())
			}
			d.overflow++
			continue
		}
		if p.ID != "" {
			d.seen[p.ID] = struct{}{}
		}
		d.byKey[key] = len(d.posts)
		d.posts = append(d.posts, grid.GridPost{Post: p, GridX: key.X, GridY: key.Y})
		placed++
	}
	return placed
}

func (d *Directory) publish(ev notify.Event) {
	if d.pub != nil {
		d.pub.Publish(ev)
	}
}

func (d *Directory) Post(x, y int) (grid.GridPost, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	i, ok := d.byKey[grid.Key{X: x, Y: y}]
	if !ok {
		return grid.GridPost{}, false
	}
	return d.posts[i], true
}

func (d *Directory) Count() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.posts)
}

func (d *Directory) Done() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.done
}

func (d *Directory) Fetching() bool {
	return d.fetching.Load()
}

// Overflow reports how many posts arrived after the grid was full.
func (d *Directory) Overflow() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.overflow
}
