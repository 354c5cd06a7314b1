// Package config loads typed configuration structs from environment
// variables.
//
// Structs declare their environment bindings with `env` tags (parsed by
// github.com/caarlos0/env); a .env file in the working directory is picked up
// automatically for local development. Parsed configurations are cached per
// type, so every component that loads the same config type observes the same
// values without re-reading the environment.
//
//	type MongoConfig struct {
//		URL string `env:"DATABASE_URL,required"`
//	}
//
//	var cfg MongoConfig
//	config.MustLoad(&cfg)
package config
