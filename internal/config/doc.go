// Package config loads and validates unveil's TOML configuration.
//
// Configuration is resolved from an explicit --config path, then
// ~/.config/unveil/config.toml, then ./unveil.toml. Missing files fall back
// to defaults so the CLI works out of the box; the recognition API key may
// come from the environment instead of the file.
package config
