package reddit

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/am-small-projects/reddit-newsletter/internal/domain"
	"github.com/am-small-projects/reddit-newsletter/internal/infra/metrics"
)

// Client получает топ постов subreddit через публичный JSON API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
}

var _ domain.ContentProvider = (*Client)(nil)

// NewClient создаёт клиент reddit.
func NewClient(baseURL, userAgent string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    strings.TrimRight(baseURL, "/"),
		userAgent:  userAgent,
	}
}

// listing повторяет структуру ответа /top.json.
type listing struct {
	Data struct {
		Children []struct {
			Data struct {
				Title     string  `json:"title"`
				URL       string  `json:"url"`
				Permalink string  `json:"permalink"`
				Thumbnail string  `json:"thumbnail"`
				Author    string  `json:"author"`
				Score     float64 `json:"score"`
			} `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

// FetchTop возвращает топ постов канала за сутки. sourceURL принимает путь вида
// "r/technology"; полные ссылки на reddit тоже принимаются.
func (c *Client) FetchTop(ctx context.Context, sourceURL string, limit int) ([]domain.ContentItem, error) {
	endpoint := c.baseURL + "/" + normalizeSource(sourceURL) + "/top.json?limit=" + strconv.Itoa(limit) + "&t=day"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrProviderUnavailable, err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	metrics.ObserveNetworkRequest("reddit", "fetch_top", sourceURL, start, err)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: reddit ответил %d", domain.ErrProviderUnavailable, resp.StatusCode)
	}

	var parsed listing
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("%w: разбор ответа: %v", domain.ErrProviderUnavailable, err)
	}

	items := make([]domain.ContentItem, 0, len(parsed.Data.Children))
	for _, child := range parsed.Data.Children {
		post := child.Data
		link := post.URL
		if post.Permalink != "" {
			link = "https://reddit.com" + post.Permalink
		}
		items = append(items, domain.ContentItem{
			Title:     post.Title,
			URL:       link,
			Thumbnail: sanitizeThumbnail(post.Thumbnail),
			Author:    post.Author,
			Score:     post.Score,
		})
	}
	return items, nil
}

// normalizeSource приводит ввод к пути "r/<subreddit>".
func normalizeSource(source string) string {
	trimmed := strings.TrimSpace(source)
	if u, err := url.Parse(trimmed); err == nil && u.Host != "" {
		trimmed = strings.Trim(u.Path, "/")
	}
	trimmed = strings.Trim(trimmed, "/")
	if trimmed == "" {
		return trimmed
	}
	if !strings.HasPrefix(trimmed, "r/") {
		trimmed = "r/" + trimmed
	}
	return trimmed
}

// sanitizeThumbnail отбрасывает reddit-плейсхолдеры ("self", "default").
func sanitizeThumbnail(raw string) string {
	if !strings.HasPrefix(raw, "http") {
		return ""
	}
	return raw
}
