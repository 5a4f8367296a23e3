// Package fixture is a development stand-in for the post listing API and the
// image host. Images are drawn on the fly, one colour scheme per post.
package fixture

import (
	"bytes"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gogpu/gg"

	"github.com/glabrego/photowall-cli/internal/grid"
	"github.com/glabrego/photowall-cli/internal/logging"
	"github.com/glabrego/photowall-cli/internal/postapi"
	"github.com/glabrego/photowall-cli/internal/render/wall"
)

const defaultImageSize = 64

type Options struct {
	Posts     int
	ImageSize int
	// Delay is added before every image response.
	Delay time.Duration
	// FailEvery makes every n-th post's image answer 500. Zero disables it.
	FailEvery int
	Logger    *slog.Logger
}

type Server struct {
	posts  []postapi.Post
	opts   Options
	logger *slog.Logger
}

func New(opts Options) *Server {
	if opts.ImageSize < 1 {
		opts.ImageSize = defaultImageSize
	}
	posts := make([]postapi.Post, opts.Posts)
	for i := range posts {
		posts[i] = postapi.Post{
			ID:          fmt.Sprintf("post-%d", i),
			Description: fmt.Sprintf("<p>Good dog <b>#%d</b></p>", i),
			Pathname:    fmt.Sprintf("/posts/%d.png", i),
			UserID:      fmt.Sprintf("user-%d", i%17),
		}
	}
	return &Server{posts: posts, opts: opts, logger: logging.OrDiscard(opts.Logger)}
}

func (s *Server) App() *fiber.App {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.SendString("OK")
	})
	app.Get("/posts", s.listPosts)
	app.Get("/posts/:name", s.image)
	return app
}

// listPosts pages through the posts with plain offsets as cursors.
func (s *Server) listPosts(c *fiber.Ctx) error {
	start := 0
	if raw := c.Query("cursor"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 || n > len(s.posts) {
			return c.Status(fiber.StatusBadRequest).JSON(postapi.Page{Success: false})
		}
		start = n
	}
	limit := c.QueryInt("limit", grid.PageSize)
	if limit < 1 || limit > grid.PageSize {
		limit = grid.PageSize
	}

	end := min(start+limit, len(s.posts))
	page := postapi.Page{Success: true, Data: s.posts[start:end], HasMore: end < len(s.posts)}
	if page.HasMore {
		next := strconv.Itoa(end)
		page.NextCursor = &next
	}
	s.logger.Debug("posts listed", "cursor", start, "count", end-start)
	return c.JSON(page)
}

func (s *Server) image(c *fiber.Ctx) error {
	name := c.Params("name")
	i, err := strconv.Atoi(strings.TrimSuffix(name, ".png"))
	if err != nil || !strings.HasSuffix(name, ".png") || i < 0 || i >= len(s.posts) {
		return c.SendStatus(fiber.StatusNotFound)
	}
	if s.opts.Delay > 0 {
		time.Sleep(s.opts.Delay)
	}
	if s.opts.FailEvery > 0 && (i+1)%s.opts.FailEvery == 0 {
		s.logger.Debug("failing image on purpose", "post", i)
		return c.Status(fiber.StatusInternalServerError).SendString("fixture failure")
	}

	png, err := DrawPost(i, s.opts.ImageSize)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).SendString(err.Error())
	}
	c.Set(fiber.HeaderContentType, "image/png")
	c.Set(fiber.HeaderCacheControl, "public, max-age=3600")
	return c.Send(png)
}

// DrawPost renders post i as a size×size PNG: the placeholder colour of its
// cell with a lighter disc whose radius depends on the index.
func DrawPost(i, size int) ([]byte, error) {
	dc := gg.NewContext(size, size)
	defer dc.Close()

	x, y := i%grid.Cols, i/grid.Cols
	dc.ClearWithColor(gg.Hex(wall.PlaceholderHex(x, y)))

	s := float64(size)
	r := s * (0.2 + 0.15*math.Abs(math.Sin(float64(i))))
	dc.SetRGBA(1, 1, 1, 0.75)
	dc.DrawCircle(s/2, s/2, r)
	if err := dc.Fill(); err != nil {
		return nil, fmt.Errorf("draw post %d: %w", i, err)
	}
	dc.SetRGBA(0, 0, 0, 0.6)
	dc.DrawCircle(s/2-r/3, s/2-r/4, r/8)
	dc.DrawCircle(s/2+r/3, s/2-r/4, r/8)
	if err := dc.Fill(); err != nil {
		return nil, fmt.Errorf("draw post %d: %w", i, err)
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode post %d: %w", i, err)
	}
	return buf.Bytes(), nil
}
