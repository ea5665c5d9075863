// Package config loads, normalizes, and validates lecturedl configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// LECTUREDL_USERNAME. The Config type centralizes every knob the CLI and the
// download pipeline need so browser, credential, and download settings are
// discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// expanded paths, canonical log formats, and clear validation errors.
package config
