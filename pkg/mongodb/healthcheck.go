package mongodb

import (
	"context"
	"errors"
)

// Healthcheck returns a probe function suitable for readiness/liveness
// endpoints. It fails if no connection has been established yet or if the
// server stops responding to pings.
func (c *Connector) Healthcheck() func(context.Context) error {
	return func(ctx context.Context) error {
		c.mu.RLock()
		client := c.client
		c.mu.RUnlock()

		if client == nil {
			return ErrNotConnected
		}
		if err := client.Ping(ctx, nil); err != nil {
			return errors.Join(ErrHealthcheckFailed, err)
		}
		return nil
	}
}
