package extract

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrNoContent is returned when a page yields no readable text.
var ErrNoContent = errors.New("no readable text on page")

const (
	defaultTimeout = 30 * time.Second
	maxBodyBytes   = 5 * 1024 * 1024
	userAgent      = "Mozilla/5.0 (compatible; vaultbot/1.0; +article-reader)"
)

// Article is the readable content of a web page.
type Article struct {
	URL       string
	Title     string
	Text      string
	Language  string
	WordCount int
}

// Extractor turns a URL into an Article.
type Extractor interface {
	Extract(ctx context.Context, rawURL string) (Article, error)
}

// HTMLExtractor 抓取网页并抽取正文
// HTMLExtractor fetches a page over HTTP and extracts its text with
// golang.org/x/net/html.
type HTMLExtractor struct {
	client *http.Client
	logger *slog.Logger
}

// NewHTMLExtractor returns an extractor whose requests are bounded by
// timeout (30s when zero).
func NewHTMLExtractor(timeout time.Duration, logger *slog.Logger) *HTMLExtractor {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &HTMLExtractor{
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

func (e *HTMLExtractor) Extract(ctx context.Context, rawURL string) (Article, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return Article{}, fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return Article{}, fmt.Errorf("unsupported scheme: %q", u.Scheme)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return Article{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,text/plain;q=0.8")

	resp, err := e.client.Do(req)
	if err != nil {
		e.logger.Warn("article fetch failed", "url", u.String(), "err", err)
		return Article{}, fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		e.logger.Warn("article fetch failed", "url", u.String(), "status", resp.StatusCode)
		return Article{}, fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return Article{}, fmt.Errorf("read body: %w", err)
	}

	var title, text string
	mediaType, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if mediaType == "text/plain" {
		text = normalizeText(string(body))
	} else {
		title, text = parseHTML(string(body))
	}
	if text == "" {
		e.logger.Warn("article has no text", "url", u.String())
		return Article{}, ErrNoContent
	}
	if title == "" {
		title = "untitled"
	}
	return Article{
		URL:       u.String(),
		Title:     title,
		Text:      text,
		Language:  DetectLanguage(text),
		WordCount: len(strings.Fields(text)),
	}, nil
}
