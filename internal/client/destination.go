package client

import (
	"context"
	"fmt"
	"time"

	"woocommerce/migrator/internal/config"
	"woocommerce/migrator/internal/domain"

	log "github.com/sirupsen/logrus"
	"resty.dev/v3"
)

// RequestSigner produces the Authorization header for a single request.
type RequestSigner interface {
	Sign(rawURL, method string) string
}

type DestinationClient interface {
	// URL returns the absolute collection URL for a REST path.
	URL(path string) string
	// Create POSTs one record as JSON to an absolute collection URL.
	Create(ctx context.Context, collectionURL string, payload domain.Record) error
}

type destinationClient struct {
	baseURL    string
	httpClient *resty.Client
	signer     RequestSigner
}

func NewDestinationClient(cfg config.DestinationConfig, signer RequestSigner) DestinationClient {
	client := resty.New().
		SetTimeout(time.Duration(cfg.Timeout)*time.Second).
		SetRetryCount(0).
		SetHeader("Accept", "application/json").
		SetLogger(log.StandardLogger())

	return &destinationClient{
		baseURL:    cfg.StoreURL(),
		httpClient: client,
		signer:     signer,
	}
}

func (c *destinationClient) URL(path string) string {
	return c.baseURL + APIPrefix + path
}

func (c *destinationClient) Create(ctx context.Context, collectionURL string, payload domain.Record) error {
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetHeader("Authorization", c.signer.Sign(collectionURL, "POST")).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]any(payload)).
		Post(collectionURL)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("request cancelled: %w", ctx.Err())
		}
		return fmt.Errorf("failed to post: %w", err)
	}

	if resp.IsError() {
		return newAPIError("POST", collectionURL, resp)
	}

	return nil
}
