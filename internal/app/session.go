package app

import (
	"context"
	"fmt"
	"image"
	"io"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/gogpu/gg"
	"github.com/google/uuid"

	"github.com/glabrego/photowall-cli/internal/directory"
	"github.com/glabrego/photowall-cli/internal/grid"
	"github.com/glabrego/photowall-cli/internal/logging"
	"github.com/glabrego/photowall-cli/internal/notify"
	"github.com/glabrego/photowall-cli/internal/render/minimap"
	"github.com/glabrego/photowall-cli/internal/render/wall"
	"github.com/glabrego/photowall-cli/internal/tiles"
)

const eventBuffer = 64

type Client interface {
	directory.Lister
	tiles.Fetcher
	ImageURL(pathname string) string
}

type Options struct {
	Layout        grid.Layout
	Width         int
	Height        int
	MaxConcurrent int
	Logger        *slog.Logger
}

// State is what the shell around the wall displays.
type State struct {
	ZoomPercent int
	TotalPosts  int
	Loaded      int
	Visible     int
	Fetching    bool
	Done        bool
	View        wall.View
}

// Progress is the share of visible tiles already loaded, 100 when nothing is
// visible.
func (s State) Progress() int {
	if s.Visible == 0 {
		return 100
	}
	return int(math.Round(float64(s.Loaded) / float64(s.Visible) * 100))
}

// Session is one mounted wall: it owns the post directory, the tile cache,
// the renderer and the minimap, and tears them down together.
type Session struct {
	id     string
	logger *slog.Logger
	client Client

	bus      *notify.Bus
	events   <-chan notify.Event
	dir      *directory.Directory
	cache    *tiles.Cache
	renderer *wall.Renderer
	gestures *wall.Gestures
	minimap  *minimap.Minimap

	visible grid.KeySet

	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	closeOnce sync.Once
}

func NewSession(client Client, opts Options) (*Session, error) {
	if opts.Layout.Cols == 0 {
		opts.Layout = grid.DefaultLayout()
	}
	id := uuid.NewString()
	logger := logging.OrDiscard(opts.Logger).With("session", id)

	bus := notify.NewBus()
	events, err := bus.Subscribe("session", eventBuffer)
	if err != nil {
		return nil, fmt.Errorf("subscribe to wall events: %w", err)
	}

	dir := directory.New(client, opts.Layout, bus, logger)
	cache := tiles.New(client, dir, tiles.Options{
		MaxConcurrent: opts.MaxConcurrent,
		Publisher:     bus,
		Logger:        logger,
	})
	renderer := wall.New(dir, cache, opts.Layout, opts.Width, opts.Height)

	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		id:       id,
		logger:   logger,
		client:   client,
		bus:      bus,
		events:   events,
		dir:      dir,
		cache:    cache,
		renderer: renderer,
		gestures: wall.NewGestures(renderer),
		minimap:  minimap.New(dir, cache, opts.Layout),
		visible:  grid.NewKeySet(),
		ctx:      ctx,
		cancel:   cancel,
	}
	renderer.Observe(s)
	return s, nil
}

func (s *Session) ID() string {
	return s.id
}

// Start begins paging through the post listing in the background. Calling it
// again after a failed page resumes from the last good cursor.
func (s *Session) Start() {
	if s.ctx.Err() != nil || s.dir.Done() || s.dir.Fetching() {
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		start := time.Now()
		s.dir.FetchAll(s.ctx)
		s.logger.Debug("post listing run finished", "posts", s.dir.Count(), "elapsed", time.Since(start))
	}()
}

// Frame consumes pending change hints, redraws the wall if needed and always
// redraws the minimap. It reports whether the wall was redrawn.
func (s *Session) Frame() bool {
	events, _ := notify.Drain(s.events)
	for _, ev := range events {
		switch ev.Kind {
		case notify.PostsUpdated, notify.PostsDone, notify.TileLoaded, notify.TileFailed:
			s.renderer.MarkDirty()
		}
	}

	drew := s.renderer.Frame()
	w, h := s.renderer.Size()
	s.minimap.Draw(s.renderer.View(), w, h)
	return drew
}

// VisibleKeysChanged hands the freshly drawn viewport to the tile cache.
func (s *Session) VisibleKeysChanged(keys grid.KeySet) {
	s.visible = keys
	s.cache.UpdateViewport(keys)
}

func (s *Session) ViewChanged(wall.View) {}

func (s *Session) State() State {
	view := s.renderer.View()
	loaded, total := s.cache.ViewportProgress(s.visible)
	return State{
		ZoomPercent: int(math.Round(view.Zoom * 100)),
		TotalPosts:  s.dir.Count(),
		Loaded:      loaded,
		Visible:     total,
		Fetching:    s.dir.Fetching(),
		Done:        s.dir.Done(),
		View:        view,
	}
}

// JumpToCell centres the wall on an "x,y" cell address. Addresses outside
// the grid are allowed and land on empty background. Malformed input is
// ignored and reported as false.
func (s *Session) JumpToCell(input string) bool {
	key, ok := grid.ParseKey(input)
	if !ok {
		return false
	}
	s.renderer.JumpToCell(key.X, key.Y)
	return true
}

// Run drives frames on a ticker until until reports true or ctx ends.
func (s *Session) Run(ctx context.Context, interval time.Duration, until func(State) bool) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		s.Frame()
		if until != nil && until(s.State()) {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Snapshot writes the current wall as PNG.
func (s *Session) Snapshot(w io.Writer) error {
	if err := s.renderer.EncodePNG(w); err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return nil
}

// CenterPost returns the post under the middle of the canvas.
func (s *Session) CenterPost() (grid.GridPost, bool) {
	w, h := s.renderer.Size()
	key := s.renderer.CanvasToCell(float64(w)/2, float64(h)/2)
	return s.dir.Post(key.X, key.Y)
}

func (s *Session) ImageURL(post grid.GridPost) string {
	return s.client.ImageURL(post.Pathname)
}

func (s *Session) Renderer() *wall.Renderer {
	return s.renderer
}

func (s *Session) Gestures() *wall.Gestures {
	return s.gestures
}

func (s *Session) WallImage() image.Image {
	return s.renderer.Image()
}

func (s *Session) MinimapImage() image.Image {
	return s.minimap.Image()
}

func (s *Session) TileStats() tiles.Stats {
	return s.cache.Stats()
}

// Close stops paging and fetching, waits for background work and frees the
// cached bitmaps.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.cancel()
		s.wg.Wait()
		s.cache.Close()
		s.bus.Close()
		s.logger.Info("session closed")
	})
}

// InstallLogger routes the canvas library's own diagnostics to logger.
func InstallLogger(logger *slog.Logger) {
	gg.SetLogger(logging.OrDiscard(logger))
}
