// Package config loads vsplit settings.
//
// Values are resolved from built-in defaults, then an optional TOML file,
// then VSPLIT_* environment variables. Command-line flags are applied on top
// by the cli package.
package config
