// Package socketio provides a runner that periodically opens a socket.io
// connection, optionally emits an event, and waits for a response event.
// Each probe cycle is one full connect/emit/await round-trip.
package socketio

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"

	"github.com/vk/flockgo/internal/catalog"
	"github.com/vk/flockgo/internal/ctxlog"
	"github.com/vk/flockgo/internal/runnerspec"
)

// Module implements the catalog.Module interface for this package.
type Module struct{}

// probeConfig holds the parsed declarative arguments.
type probeConfig struct {
	url                string
	namespace          string
	onEvent            string
	emitEvent          string
	emitData           map[string]any
	timeout            time.Duration
	interval           time.Duration
	insecureSkipVerify bool
}

// opResult is a private struct to safely pass results through the done channel.
type opResult struct {
	value any
	err   error
}

// NewRunner builds the socketio probe runner from declarative args.
func NewRunner(args runnerspec.Args) (runnerspec.Runner, error) {
	cfg, err := parseArgs(args)
	if err != nil {
		return nil, err
	}

	return func(ctx context.Context, id string) (bool, error) {
		select {
		case <-ctx.Done():
			return true, nil
		case <-time.After(cfg.interval):
		}

		if err := probe(ctx, id, cfg); err != nil {
			return false, err
		}
		return false, nil
	}, nil
}

func parseArgs(args runnerspec.Args) (*probeConfig, error) {
	cfg := &probeConfig{}
	var err error

	if cfg.url, err = args.String("url", ""); err != nil {
		return nil, err
	}
	if cfg.url == "" {
		return nil, fmt.Errorf("socketio requires a 'url' argument")
	}
	if cfg.namespace, err = args.String("namespace", "/"); err != nil {
		return nil, err
	}
	if cfg.onEvent, err = args.String("on_event", ""); err != nil {
		return nil, err
	}
	if cfg.onEvent == "" {
		return nil, fmt.Errorf("socketio requires an 'on_event' argument")
	}
	if cfg.emitEvent, err = args.String("emit_event", ""); err != nil {
		return nil, err
	}
	if raw, ok := args["emit_data"]; ok && raw != nil {
		data, ok := raw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("argument %q: expected object, got %T", "emit_data", raw)
		}
		cfg.emitData = data
	}
	if cfg.timeout, err = args.Duration("timeout", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.interval, err = args.Duration("interval", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.insecureSkipVerify, err = args.Bool("insecure_skip_verify", false); err != nil {
		return nil, err
	}
	return cfg, nil
}

// probe performs one connect/emit/await cycle.
func probe(ctx context.Context, id string, cfg *probeConfig) error {
	logger := ctxlog.FromContext(ctx).With("runner", "socketio", "id", id, "url", cfg.url, "onEvent", cfg.onEvent)
	logger.Debug("Probe started")
	defer logger.Debug("Probe finished")

	var isConnected atomic.Bool

	done := make(chan opResult, 1)
	opCtx, cancel := context.WithTimeout(ctx, cfg.timeout)
	defer cancel()

	parsedURL, err := url.Parse(cfg.url)
	if err != nil {
		return fmt.Errorf("failed to parse URL: %w", err)
	}

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	opts := socket.DefaultOptions()
	opts.SetPath(parsedURL.Path)

	if cfg.insecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification")
		opts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))

	manager := socket.NewManager(baseURL, opts)
	io := manager.Socket(cfg.namespace, opts)
	defer func() {
		logger.Debug("Disconnecting socket client")
		io.Disconnect()
	}()

	// --- Event Listeners ---
	io.On(types.EventName("connect"), func(...any) {
		isConnected.Store(true)
		logger.Debug("Successfully connected", "namespace", cfg.namespace, "sid", io.Id())
		if cfg.emitEvent != "" {
			jsonData, _ := json.Marshal(cfg.emitData)
			logger.Debug("Emitting event", "event", cfg.emitEvent, "data", string(jsonData))
			io.Emit(cfg.emitEvent, cfg.emitData)
		}
	})

	io.On(types.EventName("connect_error"), func(errs ...any) {
		done <- opResult{err: errs[0].(error)}
	})

	io.On(types.EventName(cfg.onEvent), func(data ...any) {
		var responseData any
		if len(data) > 0 {
			responseData = data[0]
		}
		done <- opResult{value: responseData}
	})

	// --- Execution Block ---
	io.Connect()

	select {
	case <-opCtx.Done():
		if isConnected.Load() {
			return fmt.Errorf("timed out after connecting while waiting for event '%s'", cfg.onEvent)
		}
		return fmt.Errorf("timed out while waiting for initial connection")
	case res := <-done:
		if res.err != nil {
			return res.err
		}
		logger.Info("Probe round-trip completed.", "response", res.value)
		return nil
	}
}

// Register registers the runner factory with the catalog.
func (m *Module) Register(c *catalog.Catalog) {
	c.RegisterRunner("socketio", NewRunner)
}
