// Package env reads settings that are needed before config.Load runs, such
// as the log format of the bootstrap logger.
package env

import (
	"os"
	"strings"
)

// Prefix namespaces every variable the services read.
const Prefix = "MOSAIC_"

// Get returns MOSAIC_<key>, then the bare key, then fallback. Keys that
// already carry the prefix are looked up once.
func Get(key, fallback string) string {
	candidates := []string{key}
	if !strings.HasPrefix(key, Prefix) {
		candidates = []string{Prefix + key, key}
	}
	for _, name := range candidates {
		if val := strings.TrimSpace(os.Getenv(name)); val != "" {
			return val
		}
	}
	return fallback
}
