package postapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	_ "golang.org/x/image/webp"
)

const maxImageBytes = 10 * 1024 * 1024

// Post is the subset of post fields the wall needs.
type Post struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Pathname    string `json:"pathname"`
	UserID      string `json:"userID"`
}

// Page is one response of the cursor-paginated listing endpoint.
type Page struct {
	Success    bool    `json:"success"`
	Data       []Post  `json:"data"`
	NextCursor *string `json:"next_cursor"`
	HasMore    bool    `json:"has_more"`
}

func (p Page) Cursor() string {
	if p.NextCursor == nil {
		return ""
	}
	return *p.NextCursor
}

type Client struct {
	baseURL      string
	imageBaseURL string
	http         *http.Client
}

func NewClient(baseURL, imageBaseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		imageBaseURL: strings.TrimRight(imageBaseURL, "/"),
		http:         httpClient,
	}
}

func (c *Client) ListPosts(ctx context.Context, cursor string, limit int) (Page, error) {
	if limit < 1 {
		limit = 100
	}

	q := make(url.Values)
	q.Set("limit", strconv.Itoa(limit))
	if cursor != "" {
		q.Set("cursor", cursor)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/posts?"+q.Encode(), nil)
	if err != nil {
		return Page{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return Page{}, fmt.Errorf("list posts request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return Page{}, fmt.Errorf("list posts failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var page Page
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return Page{}, fmt.Errorf("decode posts response: %w", err)
	}
	return page, nil
}

func (c *Client) ImageURL(pathname string) string {
	return ImageURL(c.imageBaseURL, pathname)
}

// ImageURL resolves a post pathname against the image host. Uploaded post
// images are served as-is; legacy paths are served as WebP.
func ImageURL(base, pathname string) string {
	if !strings.HasPrefix(pathname, "/posts/") {
		pathname = strings.Replace(pathname, ".jpg", ".webp", 1)
	}
	return base + pathname
}

// FetchImage downloads and decodes the image behind pathname. Cancelling ctx
// aborts the transfer; the returned error then wraps context.Canceled.
func (c *Client) FetchImage(ctx context.Context, pathname string) (image.Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.ImageURL(pathname), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download image: %w", cancelCause(ctx, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("download image: status %d", resp.StatusCode)
	}

	img, _, err := image.Decode(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", cancelCause(ctx, err))
	}
	return img, nil
}

// cancelCause prefers the context error when the request died because the
// caller gave up, so the error chain always carries context.Canceled.
func cancelCause(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(err, ctxErr) {
		return fmt.Errorf("%w: %v", ctxErr, err)
	}
	return err
}
