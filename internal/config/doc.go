// Package config loads coinanalysis settings from YAML with environment variable substitution.
//
// Files may reference ${VAR}; values are expanded before parsing, so secrets and
// per-host overrides can live in the environment (or a .env file loaded by the CLI).
package config
