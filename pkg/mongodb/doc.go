// Package mongodb provides the shared MongoDB connection for the auth
// subsystem.
//
// A Connector is constructed once at startup and injected into the stores;
// it dials lazily on first use and memoizes the client for the process
// lifetime. Concurrent first callers share a single in-flight connection
// attempt, so a burst of requests at boot produces exactly one dial. Failed
// attempts are not cached: the failure is surfaced to every waiter and the
// next call retries.
//
// Startup code must treat a Connect failure as fatal — the subsystem cannot
// serve requests without a database handle.
//
//	connector := mongodb.NewConnector(cfg)
//	db, err := connector.Database(ctx)
//	if err != nil {
//		log.Error("database unavailable", logger.Error(err))
//		os.Exit(1)
//	}
package mongodb
