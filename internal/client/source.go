package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"woocommerce/migrator/internal/config"
	"woocommerce/migrator/internal/domain"
	"woocommerce/migrator/internal/proxy"

	log "github.com/sirupsen/logrus"
	"go.uber.org/ratelimit"
	"resty.dev/v3"
)

const (
	APIPrefix        = "/wp-json/wc/v3/"
	TotalPagesHeader = "X-WP-TotalPages"
)

type SourceClient interface {
	// FetchAll walks every page of a collection and returns the records in page
	// order. Any failing page aborts the whole fetch.
	FetchAll(ctx context.Context, path string, params url.Values) ([]domain.Record, error)
}

type sourceClient struct {
	rl         ratelimit.Limiter
	config     config.SourceConfig
	baseURL    string
	httpClient *resty.Client
}

func NewSourceClient(cfg config.SourceConfig, proxySupplier proxy.ProxySupplier) SourceClient {
	client := resty.New().
		SetTimeout(time.Duration(cfg.Timeout)*time.Second).
		SetRetryCount(0).
		SetBasicAuth(cfg.Key, cfg.Secret).
		SetHeader("Accept", "application/json").
		SetLogger(log.StandardLogger())

	rl := ratelimit.NewUnlimited()
	if cfg.MaxRequestsPerSecond > 0 {
		rl = ratelimit.New(cfg.MaxRequestsPerSecond)
	}

	if proxySupplier != nil {
		useProxies(client, proxySupplier)
	}

	return &sourceClient{
		rl:         rl,
		config:     cfg,
		baseURL:    cfg.URL,
		httpClient: client,
	}
}

// useProxies routes every request through the next supplied proxy. The choice is
// made by the transport per request, so the shared client is never mutated while
// runs are in flight.
func useProxies(client *resty.Client, proxySupplier proxy.ProxySupplier) {
	transport, err := client.HTTPTransport()
	if err != nil {
		log.Warnf("⚠️ Proxies disabled for source store: %v", err)
		return
	}

	transport.Proxy = func(req *http.Request) (*url.URL, error) {
		proxyURL := proxySupplier.Get()
		if proxyURL == "" {
			return http.ProxyFromEnvironment(req)
		}
		log.Debugf("🔗 Using proxy %s for %s", proxyURL, req.URL.Path)
		return url.Parse(proxyURL)
	}
}

func (c *sourceClient) FetchAll(ctx context.Context, path string, params url.Values) ([]domain.Record, error) {
	endpoint := c.baseURL + APIPrefix + path

	all := make([]domain.Record, 0)
	page := 1
	totalPages := 1

	for page <= totalPages {
		records, pages, err := c.fetchPage(ctx, endpoint, params, page)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch page %d of %s: %w", page, path, err)
		}

		all = append(all, records...)
		totalPages = pages

		log.Debugf("Fetched page %d/%d of %s with %d records", page, totalPages, path, len(records))
		page++
	}

	return all, nil
}

func (c *sourceClient) fetchPage(ctx context.Context, endpoint string, params url.Values, page int) ([]domain.Record, int, error) {
	query := url.Values{}
	if c.config.PerPage > 0 {
		query.Set("per_page", strconv.Itoa(c.config.PerPage))
	}
	for k, v := range params {
		query[k] = append([]string(nil), v...)
	}
	query.Set("page", strconv.Itoa(page))

	c.rl.Take()

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParamsFromValues(query).
		Get(endpoint)
	if err != nil {
		if ctx.Err() != nil {
			return nil, 0, fmt.Errorf("request cancelled: %w", ctx.Err())
		}
		return nil, 0, fmt.Errorf("failed to fetch URL: %w", err)
	}

	if resp.IsError() {
		return nil, 0, newAPIError("GET", endpoint, resp)
	}

	var records []domain.Record
	if err := json.Unmarshal(resp.Bytes(), &records); err != nil {
		if summary, ok := summarizeHTML(resp.Bytes()); ok {
			return nil, 0, fmt.Errorf("expected JSON array, got HTML page %q", summary)
		}
		return nil, 0, fmt.Errorf("failed to decode page body: %w", err)
	}

	return records, totalPages(resp), nil
}

// totalPages reads the page count reported by the store. A missing or garbled
// header yields 0, which ends the walk after the current page.
func totalPages(resp *resty.Response) int {
	n, err := strconv.Atoi(resp.Header().Get(TotalPagesHeader))
	if err != nil {
		return 0
	}
	return n
}
