// Package config loads and validates the discern configuration file.
//
// Configuration is TOML with repository defaults applied first, then values
// from the resolved config file, then normalization (tilde expansion, trimmed
// strings) and validation. Path fields on a loaded Config are always absolute.
package config
