// Package client assembles the session, request pipeline, stores and router
// into one object for a front end to drive.
package client

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	adapthttp "fieldsync/internal/adapter/http"
	"fieldsync/internal/adapter/memory"
	"fieldsync/internal/adapter/postgres"
	"fieldsync/internal/adapter/redis"
	"fieldsync/internal/adapter/sqlite"
	"fieldsync/internal/app"
	"fieldsync/internal/config"
	"fieldsync/internal/domain"
)

// Options configures New.
type Options struct {
	BaseURL     string
	Timeout     time.Duration
	Credentials domain.CredentialStore
	// Registerer receives the gateway metrics. Nil disables them.
	Registerer prometheus.Registerer
	// Transport overrides the HTTP transport, mainly for tests.
	Transport http.RoundTripper
}

// Client is the wired client-side core.
type Client struct {
	Session   *app.SessionManager
	Router    *app.Router
	Gateway   *adapthttp.Gateway
	Incidents *app.IncidentStore
	Users     *app.UserStore
	Boundary  *app.BoundaryStore
	Analytics *app.AnalyticsStore
	UI        *app.UIState
	Metrics   *adapthttp.Metrics
}

// New wires a Client. The session manager and the gateway depend on each
// other, so the authenticator is attached after the gateway exists.
func New(opts Options) (*Client, error) {
	if opts.Credentials == nil {
		return nil, fmt.Errorf("client: credential store is required")
	}
	session := app.NewSessionManager(opts.Credentials, nil)
	router := app.NewRouter(app.NewRouteTable(app.DefaultRoutes()), session)

	var metrics *adapthttp.Metrics
	if opts.Registerer != nil {
		metrics = adapthttp.NewMetrics(opts.Registerer)
	}
	gw, err := adapthttp.NewGateway(adapthttp.Options{
		BaseURL:   opts.BaseURL,
		Timeout:   opts.Timeout,
		Transport: opts.Transport,
		Session:   session,
		Navigator: router,
		Metrics:   metrics,
	})
	if err != nil {
		return nil, err
	}
	session.SetAuthenticator(adapthttp.NewAuthClient(gw))

	return &Client{
		Session:   session,
		Router:    router,
		Gateway:   gw,
		Incidents: app.NewIncidentStore(adapthttp.NewIncidentClient(gw)),
		Users:     app.NewUserStore(adapthttp.NewUserClient(gw)),
		Boundary:  app.NewBoundaryStore(adapthttp.NewGeoClient(gw)),
		Analytics: app.NewAnalyticsStore(adapthttp.NewAnalyticsClient(gw)),
		UI:        app.NewUIState(),
		Metrics:   metrics,
	}, nil
}

// Start restores any saved session and lands on the dashboard, or on the
// login page when there is no session.
func (c *Client) Start(ctx context.Context) (string, error) {
	if err := c.Session.Initialize(ctx); err != nil {
		return "", err
	}
	return c.Router.Navigate(domain.DashboardPath)
}

// Login signs in and moves to the dashboard.
func (c *Client) Login(ctx context.Context, username, password string) (domain.SessionUser, error) {
	u, err := c.Session.Login(ctx, username, password)
	if err != nil {
		return domain.SessionUser{}, err
	}
	c.Router.Redirect(domain.DashboardPath)
	return u, nil
}

// Logout signs out and moves to the login page.
func (c *Client) Logout(ctx context.Context) error {
	err := c.Session.Logout(ctx)
	c.Router.Redirect(domain.LoginPath)
	return err
}

// OpenStore opens the credential store selected by cfg. The returned closer
// releases its resources and is never nil.
func OpenStore(ctx context.Context, cfg config.Config) (domain.CredentialStore, io.Closer, error) {
	switch cfg.CredentialStore {
	case config.StoreMemory:
		return memory.New(), io.NopCloser(nil), nil
	case config.StoreSQLite:
		s, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	case config.StorePostgres:
		d, err := postgres.Open(cfg.DatabaseURL, cfg.StoreOwner)
		if err != nil {
			return nil, nil, fmt.Errorf("postgres: %w", err)
		}
		return d, d, nil
	case config.StoreRedis:
		s, err := redis.Dial(ctx, cfg.RedisAddr, cfg.RedisPrefix)
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	default:
		return nil, nil, fmt.Errorf("unknown credential store %q", cfg.CredentialStore)
	}
}

// FromConfig opens the configured store and builds a Client around it.
func FromConfig(ctx context.Context, cfg config.Config, reg prometheus.Registerer) (*Client, io.Closer, error) {
	creds, closer, err := OpenStore(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	c, err := New(Options{
		BaseURL:     cfg.APIURL,
		Timeout:     cfg.Timeout,
		Credentials: creds,
		Registerer:  reg,
	})
	if err != nil {
		_ = closer.Close()
		return nil, nil, err
	}
	log.Printf("client: using %s credential store, api %s", cfg.CredentialStore, cfg.APIURL)
	return c, closer, nil
}
