// Package instance names the running process so cross-instance messages and
// locks can tell their own writes apart.
package instance

import (
	"fmt"
	"os"
	"sync"

	"github.com/google/uuid"
)

// EnvInstanceID overrides the generated identifier.
const EnvInstanceID = "MOSAIC_INSTANCE_ID"

var (
	once sync.Once
	id   string
)

// GetID returns the instance identifier. Without an override it is the
// hostname plus a random suffix, fixed for the life of the process.
func GetID() string {
	once.Do(func() {
		if v := os.Getenv(EnvInstanceID); v != "" {
			id = v
			return
		}
		host, err := os.Hostname()
		if err != nil || host == "" {
			host = "mosaic"
		}
		id = fmt.Sprintf("%s-%s", host, uuid.NewString()[:8])
	})
	return id
}
