package mongodb_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/dmitrymomot/authkit/pkg/mongodb"
)

// fakeClient returns a driver client without performing any network I/O;
// the v2 driver defers dialing until the first operation.
func fakeClient(t *testing.T) *mongo.Client {
	t.Helper()
	client, err := mongo.Connect(options.Client().ApplyURI("mongodb://127.0.0.1:27017"))
	require.NoError(t, err)
	return client
}

func TestConnector_Connect(t *testing.T) {
	t.Parallel()

	cfg := mongodb.Config{ConnectionURL: "mongodb://127.0.0.1:27017", Database: "authkit"}

	t.Run("dials once and caches the client", func(t *testing.T) {
		t.Parallel()

		var dials atomic.Int32
		client := fakeClient(t)

		connector := mongodb.NewConnector(cfg, mongodb.WithDialFunc(
			func(ctx context.Context, cfg mongodb.Config) (*mongo.Client, error) {
				dials.Add(1)
				return client, nil
			},
		))

		first, err := connector.Connect(context.Background())
		require.NoError(t, err)
		second, err := connector.Connect(context.Background())
		require.NoError(t, err)

		assert.Same(t, first, second)
		assert.Equal(t, int32(1), dials.Load())
	})

	t.Run("concurrent callers share one in-flight attempt", func(t *testing.T) {
		t.Parallel()

		var dials atomic.Int32
		client := fakeClient(t)
		release := make(chan struct{})

		connector := mongodb.NewConnector(cfg, mongodb.WithDialFunc(
			func(ctx context.Context, cfg mongodb.Config) (*mongo.Client, error) {
				dials.Add(1)
				<-release // hold the attempt open so all callers pile up on it
				return client, nil
			},
		))

		const callers = 50
		var wg sync.WaitGroup
		errs := make([]error, callers)

		for i := range callers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, errs[i] = connector.Connect(context.Background())
			}()
		}

		// Give the goroutines a moment to join the flight, then let it finish.
		time.Sleep(50 * time.Millisecond)
		close(release)
		wg.Wait()

		for _, err := range errs {
			require.NoError(t, err)
		}
		assert.Equal(t, int32(1), dials.Load())
	})

	t.Run("failure is surfaced to every waiter and not cached", func(t *testing.T) {
		t.Parallel()

		var dials atomic.Int32
		dialErr := errors.New("connection refused")
		release := make(chan struct{})
		client := fakeClient(t)

		connector := mongodb.NewConnector(cfg, mongodb.WithDialFunc(
			func(ctx context.Context, cfg mongodb.Config) (*mongo.Client, error) {
				if dials.Add(1) == 1 {
					<-release
					return nil, dialErr
				}
				return client, nil
			},
		))

		const callers = 10
		var wg sync.WaitGroup
		errs := make([]error, callers)

		for i := range callers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, errs[i] = connector.Connect(context.Background())
			}()
		}

		time.Sleep(50 * time.Millisecond)
		close(release)
		wg.Wait()

		for _, err := range errs {
			require.Error(t, err)
			assert.ErrorIs(t, err, mongodb.ErrConnectionFailed)
			assert.ErrorIs(t, err, dialErr)
		}

		// The failed attempt must not be memoized: a later call retries.
		got, err := connector.Connect(context.Background())
		require.NoError(t, err)
		assert.Same(t, client, got)
		assert.Equal(t, int32(2), dials.Load())
	})
}

func TestConnector_Database(t *testing.T) {
	t.Parallel()

	cfg := mongodb.Config{ConnectionURL: "mongodb://127.0.0.1:27017", Database: "authkit"}
	client := fakeClient(t)

	connector := mongodb.NewConnector(cfg, mongodb.WithDialFunc(
		func(ctx context.Context, cfg mongodb.Config) (*mongo.Client, error) {
			return client, nil
		},
	))

	db, err := connector.Database(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "authkit", db.Name())
}

func TestConnector_Healthcheck(t *testing.T) {
	t.Parallel()

	cfg := mongodb.Config{ConnectionURL: "mongodb://127.0.0.1:27017", Database: "authkit"}
	connector := mongodb.NewConnector(cfg)

	// Before any Connect the probe must report not connected.
	err := connector.Healthcheck()(context.Background())
	assert.ErrorIs(t, err, mongodb.ErrNotConnected)
}
