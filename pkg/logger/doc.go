// Package logger provides a slog-based logger factory with environment-driven
// configuration and attribute helpers shared across the module.
//
// Production deployments use JSON output for log aggregation; local
// development switches to text via LOG_FORMAT=text. Services receive a
// *slog.Logger through a functional option and default to a discard logger,
// so logging never becomes a required dependency.
//
//	log := logger.New(logger.WithLevel(slog.LevelDebug), logger.WithFormat(logger.FormatText))
//	log.Info("signed in", logger.UserID(user.ID), logger.Component("auth"))
package logger
