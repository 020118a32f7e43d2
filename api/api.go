package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/billat883/ArtSync/crypto/ecc"
	"github.com/billat883/ArtSync/event"
	"github.com/billat883/ArtSync/expo"
	"github.com/billat883/ArtSync/fhe"
	"github.com/billat883/ArtSync/log"
	"github.com/billat883/ArtSync/pass"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// APIConfig type represents the configuration for the API HTTP server.
type APIConfig struct {
	Host string
	Port int
	// Expo is the attendance ledger served by the API.
	Expo *expo.Expo
	// Token is the pass credential issuer.
	Token *pass.Token
	// Decryption serves POST /decrypt.
	Decryption fhe.DecryptionService
	// EncryptionKey is the public key inputs are encrypted to.
	EncryptionKey ecc.Point
	// Domain is the EIP-712 domain of decryption authorizations.
	Domain fhe.DecryptionDomain
	// Events feeds the server-sent events stream. Optional.
	Events *event.Bus
	// Registry collects the HTTP metrics and is exposed on /metrics. A new
	// registry is used if nil.
	Registry *prometheus.Registry
}

// API type represents the API HTTP server.
type API struct {
	router        *chi.Mux
	server        *http.Server
	listener      net.Listener
	expo          *expo.Expo
	token         *pass.Token
	decryption    fhe.DecryptionService
	encryptionKey ecc.Point
	domain        fhe.DecryptionDomain
	events        *event.Bus
	registry      *prometheus.Registry
	metrics       *httpMetrics
}

// New creates a new API instance with the given configuration and starts
// serving it on the configured host and port.
func New(conf *APIConfig) (*API, error) {
	if conf == nil {
		return nil, fmt.Errorf("missing API configuration")
	}
	if conf.Expo == nil || conf.Token == nil {
		return nil, fmt.Errorf("missing ledger or token instance")
	}
	if conf.Decryption == nil || conf.EncryptionKey == nil {
		return nil, fmt.Errorf("missing decryption service or encryption key")
	}
	a := &API{
		expo:          conf.Expo,
		token:         conf.Token,
		decryption:    conf.Decryption,
		encryptionKey: conf.EncryptionKey,
		domain:        conf.Domain,
		events:        conf.Events,
		registry:      conf.Registry,
	}
	if a.registry == nil {
		a.registry = prometheus.NewRegistry()
	}
	var err error
	if a.metrics, err = newHTTPMetrics(a.registry); err != nil {
		return nil, err
	}

	// Initialize router
	a.initRouter()
	a.listener, err = net.Listen("tcp", fmt.Sprintf("%s:%d", conf.Host, conf.Port))
	if err != nil {
		return nil, fmt.Errorf("failed to listen: %w", err)
	}
	a.server = &http.Server{Handler: a.router, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		log.Infow("starting API server", "address", a.listener.Addr().String())
		if err := a.server.Serve(a.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorw(err, "API server stopped")
		}
	}()
	return a, nil
}

// Router returns the chi router for testing purposes
func (a *API) Router() *chi.Mux {
	return a.router
}

// Addr returns the address the server listens on.
func (a *API) Addr() net.Addr {
	return a.listener.Addr()
}

// Shutdown stops accepting connections and waits for the active requests
// until ctx ends.
func (a *API) Shutdown(ctx context.Context) error {
	return a.server.Shutdown(ctx)
}

// registerHandlers registers all the API handlers on r.
func (a *API) registerHandlers(r chi.Router) {
	log.Infow("register handler", "endpoint", PingEndpoint, "method", "GET")
	r.Get(PingEndpoint, func(w http.ResponseWriter, _ *http.Request) {
		httpWriteOK(w)
	})
	log.Infow("register handler", "endpoint", InfoEndpoint, "method", "GET")
	r.Get(InfoEndpoint, a.info)

	log.Infow("register handler", "endpoint", ScheduleNonceEndpoint, "method", "GET")
	r.Get(ScheduleNonceEndpoint, a.scheduleNonce)
	log.Infow("register handler", "endpoint", ExhibitsEndpoint, "method", "POST")
	r.Post(ExhibitsEndpoint, a.schedule)
	log.Infow("register handler", "endpoint", ExhibitsEndpoint, "method", "GET")
	r.Get(ExhibitsEndpoint, a.exhibits)
	log.Infow("register handler", "endpoint", ExhibitEndpoint, "method", "GET")
	r.Get(ExhibitEndpoint, a.exhibit)
	log.Infow("register handler", "endpoint", ExhibitHeaderEndpoint, "method", "GET")
	r.Get(ExhibitHeaderEndpoint, a.exhibitHeader)
	log.Infow("register handler", "endpoint", AttendanceEndpoint, "method", "GET")
	r.Get(AttendanceEndpoint, a.attendance)

	log.Infow("register handler", "endpoint", CheckInsEndpoint, "method", "POST")
	r.Post(CheckInsEndpoint, a.checkIn)
	log.Infow("register handler", "endpoint", CheckInEndpoint, "method", "GET")
	r.Get(CheckInEndpoint, a.checkInStatus)

	log.Infow("register handler", "endpoint", PassesEndpoint, "method", "POST")
	r.Post(PassesEndpoint, a.mintPass)
	log.Infow("register handler", "endpoint", PassEndpoint, "method", "GET")
	r.Get(PassEndpoint, a.passStatus)

	log.Infow("register handler", "endpoint", DecryptEndpoint, "method", "POST")
	r.Post(DecryptEndpoint, a.userDecrypt)
}

// initRouter creates the router with all the routes and middleware.
func (a *API) initRouter() {
	// Create the router with a basic middleware stack
	a.router = chi.NewRouter()
	a.router.Use(cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		AllowCredentials: true,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}).Handler)
	a.router.Use(middleware.Logger)
	a.router.Use(middleware.Recoverer)
	a.router.Use(a.metrics.instrument)

	// the event stream is long lived, so it stays out of the timeout group
	log.Infow("register handler", "endpoint", EventsEndpoint, "method", "GET")
	a.router.Get(EventsEndpoint, a.stream)
	log.Infow("register handler", "endpoint", MetricsEndpoint, "method", "GET")
	a.router.Method(http.MethodGet, MetricsEndpoint, promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}))

	a.router.Group(func(r chi.Router) {
		r.Use(middleware.Throttle(100))
		r.Use(middleware.ThrottleBacklog(5000, 40000, 60*time.Second))
		r.Use(middleware.Timeout(45 * time.Second))
		a.registerHandlers(r)
	})
}
