// Package file loads sync configuration from a TOML file.
//
// The file lives at ~/.marksync/config.toml by default. Every field is
// optional; absent values fall back to the built-in defaults, so a missing
// file yields a fully usable configuration.
package file
