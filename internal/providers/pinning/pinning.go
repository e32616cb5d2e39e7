// Package pinning publishes item metadata to a content-addressed store
// before the first mint attempt, so the on-chain reference always points
// at immutable content.
package pinning

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gowebpki/jcs"
	"go.uber.org/zap"

	"github.com/quizmint/qm-engine/internal/adapter"
	"github.com/quizmint/qm-engine/internal/logger"
)

// Pinner pins canonical metadata and returns its content id.
//
//go:generate mockgen -source=pinning.go -destination=../../mocks/pinner.go -package=mocks -mock_names=Pinner=MockPinner
type Pinner interface {
	// Pin canonicalizes and pins the metadata document, returning the
	// content-addressed id. Idempotent: pinning the same document again
	// yields the same id.
	Pin(ctx context.Context, metadata []byte) (string, error)
}

// Config holds the pinning service configuration
type Config struct {
	Endpoint   string
	APIKey     string
	MaxRetries uint64
	Timeout    time.Duration
}

type httpPinner struct {
	cfg    Config
	client *http.Client
	json   adapter.JSON
}

// NewHTTPPinner creates a pinner over an HTTP pinning service
func NewHTTPPinner(cfg Config, jsonAdapter adapter.JSON) Pinner {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &httpPinner{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
		json:   jsonAdapter,
	}
}

type pinResponse struct {
	CID string `json:"cid"`
}

// Pin canonicalizes the document with JCS before upload so semantically
// identical metadata always maps to one content id.
func (p *httpPinner) Pin(ctx context.Context, metadata []byte) (string, error) {
	canonical, err := jcs.Transform(metadata)
	if err != nil {
		return "", fmt.Errorf("failed to canonicalize metadata: %w", err)
	}

	maxRetries := p.cfg.MaxRetries
	if maxRetries == 0 {
		maxRetries = 5
	}

	var cid string
	operation := func() error {
		var opErr error
		cid, opErr = p.pinOnce(ctx, canonical)
		return opErr
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), maxRetries), ctx)

	if err := backoff.RetryNotify(operation, policy, func(err error, next time.Duration) {
		logger.WarnCtx(ctx, "pin attempt failed, retrying",
			zap.Error(err),
			zap.Duration("next_in", next))
	}); err != nil {
		return "", fmt.Errorf("failed to pin metadata: %w", err)
	}

	return cid, nil
}

func (p *httpPinner) pinOnce(ctx context.Context, canonical []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.Endpoint, bytes.NewReader(canonical))
	if err != nil {
		return "", backoff.Permanent(fmt.Errorf("failed to build pin request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	if p.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.cfg.APIKey)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("pin request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("failed to read pin response: %w", err)
	}

	if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
		return "", fmt.Errorf("pin service returned %d", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", backoff.Permanent(fmt.Errorf("pin service rejected request: %d %s", resp.StatusCode, body))
	}

	var out pinResponse
	if err := p.json.Unmarshal(body, &out); err != nil {
		return "", backoff.Permanent(fmt.Errorf("failed to decode pin response: %w", err))
	}
	if out.CID == "" {
		return "", backoff.Permanent(fmt.Errorf("pin response missing cid"))
	}
	return out.CID, nil
}
