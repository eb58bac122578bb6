// Package config provides YAML-based configuration for Vantage Saturn.
//
// Configuration is loaded from a file, filled with defaults, optionally
// overridden by SATURN_* environment variables, and validated. Validation
// errors are collected into a ValidationError listing every offending field.
// The resulting Config is immutable by convention: it is constructed once at
// startup and passed by reference into the components that need it.
package config
