package mongodb

import (
	"context"
	"errors"
	"sync"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"golang.org/x/sync/singleflight"
)

// DialFunc establishes the underlying database connection. It exists as a
// seam so tests can observe and control connection attempts.
type DialFunc func(ctx context.Context, cfg Config) (*mongo.Client, error)

// Connector lazily establishes and memoizes one shared database client.
//
// The first Connect call dials; concurrent callers during that dial await the
// same in-flight attempt instead of opening duplicate connections. A
// successful client is cached for the process lifetime. A failed attempt is
// not cached: every waiter of that attempt receives the failure and a later
// call dials again.
type Connector struct {
	cfg  Config
	dial DialFunc

	group  singleflight.Group
	mu     sync.RWMutex
	client *mongo.Client
}

// ConnectorOption configures a Connector during construction.
type ConnectorOption func(*Connector)

// WithDialFunc replaces the default dialer. Used in tests.
func WithDialFunc(dial DialFunc) ConnectorOption {
	return func(c *Connector) {
		if dial != nil {
			c.dial = dial
		}
	}
}

// NewConnector creates a Connector. No connection is made until Connect.
func NewConnector(cfg Config, opts ...ConnectorOption) *Connector {
	c := &Connector{
		cfg:  cfg,
		dial: defaultDial,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Connect returns the shared client, dialing on first use.
func (c *Connector) Connect(ctx context.Context) (*mongo.Client, error) {
	c.mu.RLock()
	if c.client != nil {
		client := c.client
		c.mu.RUnlock()
		return client, nil
	}
	c.mu.RUnlock()

	v, err, _ := c.group.Do("connect", func() (any, error) {
		// Another caller may have finished connecting while this one was
		// queued behind a completed flight.
		c.mu.RLock()
		if c.client != nil {
			client := c.client
			c.mu.RUnlock()
			return client, nil
		}
		c.mu.RUnlock()

		client, err := c.dial(ctx, c.cfg)
		if err != nil {
			return nil, errors.Join(ErrConnectionFailed, err)
		}

		c.mu.Lock()
		c.client = client
		c.mu.Unlock()
		return client, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*mongo.Client), nil
}

// Database returns a handle to the configured database, connecting if needed.
func (c *Connector) Database(ctx context.Context) (*mongo.Database, error) {
	client, err := c.Connect(ctx)
	if err != nil {
		return nil, err
	}
	return client.Database(c.cfg.Database), nil
}

// Close disconnects the cached client if one was established. The connector
// never tears the connection down on its own; this is for process shutdown.
func (c *Connector) Close(ctx context.Context) error {
	c.mu.Lock()
	client := c.client
	c.client = nil
	c.mu.Unlock()

	if client == nil {
		return nil
	}
	return client.Disconnect(ctx)
}

func defaultDial(ctx context.Context, cfg Config) (*mongo.Client, error) {
	client, err := mongo.Connect(
		options.Client().
			ApplyURI(cfg.ConnectionURL).
			SetConnectTimeout(cfg.ConnectTimeout).
			SetMaxPoolSize(cfg.MaxPoolSize).
			SetMinPoolSize(cfg.MinPoolSize).
			SetMaxConnIdleTime(cfg.MaxConnIdleTime).
			SetRetryWrites(cfg.RetryWrites).
			SetRetryReads(cfg.RetryReads),
	)
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.WithoutCancel(ctx))
		return nil, err
	}
	return client, nil
}
