// Package file provides the TOML configuration store.
//
// The file lives at ~/.innersync/config.toml unless another directory is
// given, and is written with 0600 permissions because it may carry login
// credentials.
package file
