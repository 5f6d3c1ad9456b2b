package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"wbbot/parser/internal/config"
	"wbbot/parser/internal/proxy"

	log "github.com/sirupsen/logrus"
	"go.uber.org/ratelimit"
	"resty.dev/v3"
)

var (
	// ErrNetwork covers connection failures, timeouts and non-2xx answers
	ErrNetwork = errors.New("network error")
	// ErrDecode is returned when a 2xx body is not the expected JSON
	ErrDecode = errors.New("decode error")
)

// WBClient performs JSON GETs against the marketplace endpoints.
// It is shared by the category, filter and catalog components.
type WBClient struct {
	rl            ratelimit.Limiter
	httpClient    *resty.Client
	proxySupplier proxy.ProxySupplier
	timeout       time.Duration

	// Circuit breaker for HTTP 429
	circuitBreakerMutex sync.RWMutex
	blockedUntil        time.Time
	cooldown            time.Duration
}

func NewWBClient(cfg config.CatalogConfig, proxySupplier proxy.ProxySupplier) *WBClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	httpClient := resty.New().
		SetTimeout(timeout).
		SetRetryCount(max(cfg.MaxRetries, 0)).
		SetRetryWaitTime(500*time.Millisecond).
		SetRetryMaxWaitTime(5*time.Second).
		SetHeader("User-Agent", cfg.UserAgent).
		SetHeader("Accept", "application/json")

	if proxySupplier != nil {
		if proxyURL := proxySupplier.Get(); proxyURL != "" {
			httpClient.SetProxy(proxyURL)
			log.Infof("🔗 Using initial proxy: %s", proxyURL)
		}
	}

	rl := ratelimit.NewUnlimited()
	if cfg.MaxRequestsPerSecond > 0 {
		rl = ratelimit.New(cfg.MaxRequestsPerSecond)
	}

	return &WBClient{
		rl:            rl,
		httpClient:    httpClient,
		proxySupplier: proxySupplier,
		timeout:       timeout,
		cooldown:      cfg.Cooldown,
	}
}

type request struct {
	url        string
	pathParams map[string]string
	query      map[string]string
	noRetry    bool
}

// target is the url with path params filled in, used in errors and logs
func (r request) target() string {
	target := r.url
	for k, v := range r.pathParams {
		target = strings.ReplaceAll(target, "{"+k+"}", v)
	}
	return target
}

// getJSON decodes the response body of a GET into out
func (c *WBClient) getJSON(ctx context.Context, req request, out any) error {
	if c.isCircuitBreakerOpen() {
		remaining := c.remainingCooldown()
		return fmt.Errorf("%w: circuit breaker is open for %v more", ErrNetwork, remaining.Round(time.Second))
	}

	c.rl.Take()

	resp, err := c.do(ctx, req)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("%w: request cancelled: %w", ErrNetwork, ctx.Err())
		}
		return fmt.Errorf("%w: failed to fetch %s: %w", ErrNetwork, req.target(), err)
	}

	if resp.StatusCode() == http.StatusTooManyRequests {
		log.Warnf("🚫 Rate limited on %s", req.target())
		resp, err = c.retryWithNextProxy(ctx, req)
		if err != nil {
			c.triggerCircuitBreaker()
			return fmt.Errorf("%w: rate limited on %s: %w", ErrNetwork, req.target(), err)
		}
	}

	if resp.IsError() {
		return fmt.Errorf("%w: HTTP %d from %s", ErrNetwork, resp.StatusCode(), req.target())
	}

	if err := json.Unmarshal([]byte(resp.String()), out); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrDecode, req.target(), err)
	}
	return nil
}

func (c *WBClient) do(ctx context.Context, req request) (*resty.Response, error) {
	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	r := c.httpClient.R().SetContext(reqCtx)
	if len(req.pathParams) > 0 {
		r.SetPathParams(req.pathParams)
	}
	if len(req.query) > 0 {
		r.SetQueryParams(req.query)
	}
	if req.noRetry {
		r.SetRetryCount(0)
	}
	return r.Get(req.url)
}

func (c *WBClient) retryWithNextProxy(ctx context.Context, req request) (*resty.Response, error) {
	if c.proxySupplier == nil || c.proxySupplier.Len() < 2 {
		return nil, errors.New("no spare proxy")
	}

	next := c.proxySupplier.Get()
	log.Infof("🔄 Switching to proxy %s", next)
	c.httpClient.SetProxy(next)

	resp, err := c.do(ctx, req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() == http.StatusTooManyRequests {
		return nil, errors.New("still rate limited after proxy switch")
	}
	log.Infof("✅ Retry successful with new proxy")
	return resp, nil
}

func (c *WBClient) isCircuitBreakerOpen() bool {
	c.circuitBreakerMutex.RLock()
	now := time.Now()
	open := now.Before(c.blockedUntil)
	triggered := !c.blockedUntil.IsZero()
	c.circuitBreakerMutex.RUnlock()

	if !open && triggered {
		c.circuitBreakerMutex.Lock()
		if !c.blockedUntil.IsZero() && now.After(c.blockedUntil) {
			c.blockedUntil = time.Time{}
			log.Infof("✅ Circuit breaker closed, requests allowed again")
		}
		c.circuitBreakerMutex.Unlock()
	}

	return open
}

func (c *WBClient) triggerCircuitBreaker() {
	if c.cooldown <= 0 {
		return
	}

	c.circuitBreakerMutex.Lock()
	defer c.circuitBreakerMutex.Unlock()

	c.blockedUntil = time.Now().Add(c.cooldown)
	log.Warnf("🚫 Circuit breaker open until %v", c.blockedUntil.Format("15:04:05"))
}

func (c *WBClient) remainingCooldown() time.Duration {
	c.circuitBreakerMutex.RLock()
	defer c.circuitBreakerMutex.RUnlock()

	remaining := time.Until(c.blockedUntil)
	if remaining < 0 {
		return 0
	}
	return remaining
}
