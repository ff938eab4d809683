package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/suresoft/ams-client/internal/amsapi"
	"github.com/suresoft/ams-client/internal/client"
	"github.com/suresoft/ams-client/internal/gateway"
	"github.com/suresoft/ams-client/internal/notify"
	"github.com/suresoft/ams-client/internal/tokenstore"
)

// App wires the token store, client and gateway from configuration.
type App struct {
	cfg     *Config
	store   *tokenstore.Store
	client  *client.Client
	api     *amsapi.API
	gateway *gateway.Gateway
}

// New creates a new App instance. User-facing notices are written to out.
func New(cfg *Config, out io.Writer, opts ...client.Option) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	backend, err := cfg.Auth.NewBackend()
	if err != nil {
		return nil, fmt.Errorf("failed to create token backend: %w", err)
	}
	store, err := tokenstore.NewStore(backend)
	if err != nil {
		return nil, fmt.Errorf("failed to create token store: %w", err)
	}

	opts = append([]client.Option{
		client.WithTimeout(cfg.API.Timeout),
		client.WithNotifier(notify.NewLogNotifier(out)),
	}, opts...)
	c, err := client.New(cfg.API.BaseURL, store, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return &App{
		cfg:     cfg,
		store:   store,
		client:  c,
		api:     amsapi.New(c),
		gateway: gateway.New(c),
	}, nil
}

func (a *App) Client() *client.Client { return a.client }

func (a *App) API() *amsapi.API { return a.api }

func (a *App) Store() *tokenstore.Store { return a.store }

// Address returns the configured gateway listen address.
func (a *App) Address() string {
	return a.cfg.Server.Host + ":" + strconv.FormatUint(uint64(a.cfg.Server.Port), 10)
}

// Start starts the gateway and blocks until ctx is cancelled or it fails.
// Uses errgroup for runtime error monitoring and shutdown function collection for coordinated cleanup.
func (a *App) Start(ctx context.Context) error {
	g, gCtx := errgroup.WithContext(ctx)

	address := a.Address()
	var shutdownFuncs []func(context.Context) error

	// Startup phase: Start services
	slog.InfoContext(gCtx, "starting gateway", "address", address, "upstream", a.cfg.API.BaseURL)
	gatewayErrCh, err := a.gateway.Start(gCtx, address)
	if err != nil {
		return fmt.Errorf("gateway startup failed: %w", err)
	}
	shutdownFuncs = append(shutdownFuncs, a.gateway.Shutdown)

	if !a.client.IsAuthenticated(gCtx) {
		slog.WarnContext(gCtx, "not logged in, requests will be forwarded without credentials")
	}

	// Monitor runtime errors - errgroup cancels context on first error
	g.Go(func() error {
		select {
		case err := <-gatewayErrCh:
			if err != nil {
				slog.ErrorContext(gCtx, "gateway runtime error", "error", err)
				return fmt.Errorf("gateway: %w", err)
			}
			return nil
		case <-gCtx.Done():
			return nil
		}
	})

	slog.InfoContext(gCtx, "application ready", "address", address)

	runtimeErr := g.Wait()

	slog.InfoContext(gCtx, "shutting down services")

	// Shutdown phase: Stop all services
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Shutdown.Timeout)
	defer cancel()

	var errs []error
	if runtimeErr != nil {
		errs = append(errs, fmt.Errorf("runtime: %w", runtimeErr))
	}

	for i := len(shutdownFuncs) - 1; i >= 0; i-- {
		if err := shutdownFuncs[i](shutdownCtx); err != nil {
			slog.ErrorContext(shutdownCtx, "service shutdown failed", "error", err)
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	slog.Info("application stopped")
	return nil
}
