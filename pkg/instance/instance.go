// Package instance names the running process in logs.
package instance

import "os"

// ID returns CANDYLAB_INSTANCE_ID, then the platform dyno name, then the
// hostname, falling back to "local".
func ID() string {
	for _, key := range []string{"CANDYLAB_INSTANCE_ID", "DYNO"} {
		if id := os.Getenv(key); id != "" {
			return id
		}
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "local"
}
