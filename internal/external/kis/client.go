package kis

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/tidwall/gjson"

	"github.com/kyungsooNa/Investment-sub000/internal/contracts"
	"github.com/kyungsooNa/Investment-sub000/pkg/config"
	"github.com/kyungsooNa/Investment-sub000/pkg/httputil"
	"github.com/kyungsooNa/Investment-sub000/pkg/logger"
)

// Client handles communication with KIS (한국투자증권) API
// ⭐ SSOT: KIS API 호출은 이 클라이언트에서만
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	cfg        config.KISConfig
	now        func() time.Time

	// Token management
	accessToken string
	tokenExpiry time.Time
	tokenMu     sync.RWMutex
}

var (
	_ contracts.MarketDataPort   = (*Client)(nil)
	_ contracts.HoldingsProvider = (*Client)(nil)
)

// NewClient creates a new KIS API client
func NewClient(cfg config.KISConfig, httpClient *httputil.Client, log *logger.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     log.WithField("component", "kis"),
		cfg:        cfg,
		now:        time.Now,
	}
}

// getToken gets a valid access token, refreshing if necessary
func (c *Client) getToken(ctx context.Context) (string, error) {
	c.tokenMu.RLock()
	if c.accessToken != "" && c.now().Before(c.tokenExpiry) {
		token := c.accessToken
		c.tokenMu.RUnlock()
		return token, nil
	}
	c.tokenMu.RUnlock()

	c.tokenMu.Lock()
	defer c.tokenMu.Unlock()

	// Double-check after acquiring write lock
	if c.accessToken != "" && c.now().Before(c.tokenExpiry) {
		return c.accessToken, nil
	}

	resp, err := c.httpClient.PostJSON(ctx, c.cfg.BaseURL+"/oauth2/tokenP", map[string]string{
		"grant_type": "client_credentials",
		"appkey":     c.cfg.AppKey,
		"appsecret":  c.cfg.AppSecret,
	})
	if err != nil {
		return "", fmt.Errorf("token request: %v: %w", err, contracts.ErrUpstreamUnavailable)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read token response: %v: %w", err, contracts.ErrUpstreamUnavailable)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token request status %d: %s: %w", resp.StatusCode, string(body), contracts.ErrUpstreamUnavailable)
	}

	parsed := gjson.ParseBytes(body)
	token := parsed.Get("access_token").String()
	if token == "" {
		return "", fmt.Errorf("token response without access_token: %w", contracts.ErrMalformedPayload)
	}
	expiresIn := parsed.Get("expires_in").Int()

	c.accessToken = token
	c.tokenExpiry = c.now().Add(time.Duration(expiresIn-60) * time.Second) // 1분 여유

	c.logger.WithField("expires_in", expiresIn).Info("KIS access token refreshed")
	return c.accessToken, nil
}

// get makes an authenticated GET and returns the parsed payload.
// rt_cd != "0" 은 업스트림 오류로 분류
func (c *Client) get(ctx context.Context, path, trID string, params url.Values) (gjson.Result, error) {
	token, err := c.getToken(ctx)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("get token: %w", err)
	}

	endpoint := c.cfg.BaseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("authorization", "Bearer "+token)
	req.Header.Set("appkey", c.cfg.AppKey)
	req.Header.Set("appsecret", c.cfg.AppSecret)
	req.Header.Set("tr_id", trID)
	req.Header.Set("custtype", "P")

	resp, err := c.httpClient.Do(ctx, req)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("%s: %v: %w", trID, err, contracts.ErrUpstreamUnavailable)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("%s read body: %v: %w", trID, err, contracts.ErrUpstreamUnavailable)
	}
	if resp.StatusCode != http.StatusOK {
		return gjson.Result{}, fmt.Errorf("%s status %d: %s: %w", trID, resp.StatusCode, truncate(body), contracts.ErrUpstreamUnavailable)
	}
	if !gjson.ValidBytes(body) {
		return gjson.Result{}, fmt.Errorf("%s invalid JSON: %w", trID, contracts.ErrMalformedPayload)
	}

	result := gjson.ParseBytes(body)
	if rt := result.Get("rt_cd"); rt.Exists() && rt.String() != "0" {
		return gjson.Result{}, fmt.Errorf("%s API error: %s - %s: %w",
			trID, result.Get("msg_cd").String(), result.Get("msg1").String(), contracts.ErrUpstreamUnavailable)
	}
	return result, nil
}

func truncate(body []byte) string {
	const max = 200
	if len(body) > max {
		return string(body[:max])
	}
	return string(body)
}
