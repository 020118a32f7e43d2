package service

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/billat883/ArtSync/api"
)

// DefaultShutdownTimeout bounds the time Stop waits for in-flight requests.
const DefaultShutdownTimeout = 10 * time.Second

// APIService represents a service that manages the HTTP API server.
type APIService struct {
	conf   api.APIConfig
	api    *api.API
	mu     sync.Mutex
	cancel context.CancelFunc
}

// NewAPI creates a new APIService instance. The configuration is copied, so
// the service can be restarted with the same settings.
func NewAPI(conf *api.APIConfig) *APIService {
	return &APIService{conf: *conf}
}

// Start begins the API server. It returns an error if the service
// is already running or if it fails to start. The server is stopped when
// ctx is cancelled.
func (as *APIService) Start(ctx context.Context) error {
	as.mu.Lock()
	defer as.mu.Unlock()

	if as.cancel != nil {
		return fmt.Errorf("service already running")
	}

	var err error
	as.api, err = api.New(&as.conf)
	if err != nil {
		return fmt.Errorf("failed to start API server: %w", err)
	}
	ctx, as.cancel = context.WithCancel(ctx)
	srv := as.api
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), DefaultShutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	return nil
}

// Stop halts the API server and waits for it to release its listener.
func (as *APIService) Stop() {
	as.mu.Lock()
	defer as.mu.Unlock()

	if as.cancel == nil {
		return
	}
	as.cancel()
	as.cancel = nil
	ctx, cancel := context.WithTimeout(context.Background(), DefaultShutdownTimeout)
	defer cancel()
	_ = as.api.Shutdown(ctx)
}

// Addr returns the address the server listens on, or nil if it is stopped.
func (as *APIService) Addr() net.Addr {
	as.mu.Lock()
	defer as.mu.Unlock()
	if as.cancel == nil {
		return nil
	}
	return as.api.Addr()
}

// HostPort returns the configured host and port of the API server.
func (as *APIService) HostPort() (string, int) {
	return as.conf.Host, as.conf.Port
}
