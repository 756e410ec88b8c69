// Package config loads application configuration from environment variables.
//
// Configuration structs declare their sources with `env` struct tags. A .env
// file in the working directory is loaded once, if present, before the first
// parse so local development does not require exporting variables manually.
//
//	type ServerConfig struct {
//		Addr string `env:"HTTP_ADDR" envDefault:":8080"`
//	}
//
//	var cfg ServerConfig
//	config.MustLoad(&cfg)
package config
