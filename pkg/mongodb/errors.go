package mongodb

import "errors"

var (
	ErrConnectionFailed  = errors.New("failed to connect to database")
	ErrNotConnected      = errors.New("database not connected")
	ErrHealthcheckFailed = errors.New("database healthcheck failed")
)
