// Package mongostore provides MongoDB-backed implementations of the auth
// storage interfaces: users, provider accounts, sessions, and OAuth state.
//
// Each store wraps a single collection and maps driver errors to the sentinel
// errors of the interface it implements, so callers never see a raw driver
// error. Uniqueness (user email, provider subject, session token) is enforced
// by unique indexes, making the database the single authority; call
// EnsureIndexes once at startup:
//
//	db, err := connector.Database(ctx)
//	if err != nil {
//		return err
//	}
//	if err := mongostore.EnsureIndexes(ctx, db); err != nil {
//		return err
//	}
//	users := mongostore.NewUserStore(db)
//
// Sessions and OAuth states carry TTL indexes for storage hygiene. The TTL
// sweep runs on the server's schedule, so both stores also check expiry at
// read time; correctness never depends on the sweep.
package mongostore
