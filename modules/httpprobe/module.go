// Package httpprobe provides a runner that repeatedly probes an HTTP
// endpoint and reports unexpected statuses as recoverable errors.
package httpprobe

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/vk/flockgo/internal/catalog"
	"github.com/vk/flockgo/internal/ctxlog"
	"github.com/vk/flockgo/internal/runnerspec"
)

// Module implements the catalog.Module interface for this package.
type Module struct{}

// NewRunner builds the httpprobe runner from declarative args.
func NewRunner(args runnerspec.Args) (runnerspec.Runner, error) {
	url, err := args.String("url", "")
	if err != nil {
		return nil, err
	}
	if url == "" {
		return nil, fmt.Errorf("httpprobe requires a 'url' argument")
	}
	interval, err := args.Duration("interval", 10*time.Second)
	if err != nil {
		return nil, err
	}
	timeout, err := args.Duration("timeout", 5*time.Second)
	if err != nil {
		return nil, err
	}
	expectStatus, err := args.Int("expect_status", http.StatusOK)
	if err != nil {
		return nil, err
	}

	client := &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}

	return func(ctx context.Context, id string) (bool, error) {
		select {
		case <-ctx.Done():
			return true, nil
		case <-time.After(interval):
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return false, err
		}
		resp, err := client.Do(req)
		if err != nil {
			return false, fmt.Errorf("probe %s: %w", url, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != expectStatus {
			return false, fmt.Errorf("probe %s: got status %d, want %d", url, resp.StatusCode, expectStatus)
		}
		ctxlog.FromContext(ctx).Debug("Probe succeeded.", "id", id, "url", url, "status", resp.StatusCode)
		return false, nil
	}, nil
}

// Register registers the runner factory with the catalog.
func (m *Module) Register(c *catalog.Catalog) {
	c.RegisterRunner("httpprobe", NewRunner)
}
