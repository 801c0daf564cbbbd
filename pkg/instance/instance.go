package instance

import (
	"os"
	"strings"
)

const (
	envInstanceID = "MYCREW_INSTANCE_ID"
	fallbackID    = "mycrew-0"
)

// ID names this API or cron-worker process. It tags log lines and prefixes
// the owner token of the integrity sweep lock, so two replicas never hold
// the lock under the same name. MYCREW_INSTANCE_ID wins over the hostname.
func ID() string {
	if id := strings.TrimSpace(os.Getenv(envInstanceID)); id != "" {
		return id
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return fallbackID
}
