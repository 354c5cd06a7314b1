package mongodb

import "time"

// Config represents the configuration for the database connection.
type Config struct {
	ConnectionURL   string        `env:"DATABASE_URL,required"`                        // ConnectionURL is the mongodb:// connection string.
	Database        string        `env:"DATABASE_NAME" envDefault:"app"`               // Database is the database name used by the subsystem.
	ConnectTimeout  time.Duration `env:"DATABASE_CONNECT_TIMEOUT" envDefault:"10s"`    // ConnectTimeout is the timeout for establishing a connection.
	MaxPoolSize     uint64        `env:"DATABASE_MAX_POOL_SIZE" envDefault:"100"`      // MaxPoolSize is the maximum number of pooled connections.
	MinPoolSize     uint64        `env:"DATABASE_MIN_POOL_SIZE" envDefault:"1"`        // MinPoolSize is the minimum number of pooled connections.
	MaxConnIdleTime time.Duration `env:"DATABASE_MAX_CONN_IDLE_TIME" envDefault:"300s"` // MaxConnIdleTime is how long an idle connection stays pooled.
	RetryWrites     bool          `env:"DATABASE_RETRY_WRITES" envDefault:"true"`      // RetryWrites enables driver-level write retries.
	RetryReads      bool          `env:"DATABASE_RETRY_READS" envDefault:"true"`       // RetryReads enables driver-level read retries.
}
