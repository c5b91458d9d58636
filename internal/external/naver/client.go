package naver

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"golang.org/x/net/html/charset"

	"github.com/kyungsooNa/Investment-sub000/internal/contracts"
	"github.com/kyungsooNa/Investment-sub000/pkg/httputil"
	"github.com/kyungsooNa/Investment-sub000/pkg/logger"
)

const defaultBaseURL = "https://finance.naver.com"

// Client handles communication with Naver Finance
// ⭐ SSOT: Naver Finance 호출은 이 클라이언트에서만
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
	now        func() time.Time

	// 상장 종목표는 하루 단위로 캐시
	mu       sync.Mutex
	day      string
	listed   []contracts.ListedSymbol
	byCode   map[string]contracts.Market
	maxPages int
}

var _ contracts.SymbolDirectory = (*Client)(nil)

// NewClient creates a new Naver Finance client
func NewClient(baseURL string, httpClient *httputil.Client, log *logger.Logger) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		httpClient: httpClient,
		logger:     log.WithField("component", "naver"),
		baseURL:    baseURL,
		now:        time.Now,
		maxPages:   60,
	}
}

// fetchHTML fetches a page and decodes it to UTF-8 (Naver 는 EUC-KR)
func (c *Client) fetchHTML(ctx context.Context, path string, params url.Values) (io.ReadCloser, error) {
	fullURL := c.baseURL + path
	if len(params) > 0 {
		fullURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request failed: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36")
	req.Header.Set("Referer", "https://finance.naver.com/")

	resp, err := c.httpClient.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %v: %w", err, contracts.ErrUpstreamUnavailable)
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status code %d: %w", resp.StatusCode, contracts.ErrUpstreamUnavailable)
	}

	body, err := charset.NewReader(resp.Body, resp.Header.Get("Content-Type"))
	if err != nil {
		resp.Body.Close()
		return nil, fmt.Errorf("charset detection failed: %v: %w", err, contracts.ErrMalformedPayload)
	}
	return readCloser{Reader: body, Closer: resp.Body}, nil
}

type readCloser struct {
	io.Reader
	io.Closer
}
