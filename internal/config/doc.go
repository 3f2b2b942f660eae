// Package config loads, normalizes, and validates cinerate configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, loads a .env file when present, and honours
// environment fallbacks such as OMDB_API_KEY. The Config type centralizes the
// lookup/detail endpoints, cache backend, and logging knobs the server and CLI
// need.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical backend names, and clear validation errors.
package config
