package config

import (
	"fmt"
	"os"
)

const sampleConfig = `# kanshi configuration
# Add targets you want to monitor below

settings:
  # How often to check targets (in seconds)
  check_interval: 60

  # Where to store snapshots and change history
  data_dir: "./data"

  # Log level: debug, info, warn, error
  log_level: "info"

  # Optional: webhook URL for notifications (Discord, Slack, etc.)
  # webhook_url: "https://discord.com/api/webhooks/..."

  # Optional: bind address for the read-only status API
  # listen_addr: "127.0.0.1:8080"

# Targets to monitor
targets:
  - name: "Example Site"
    url: "https://example.com"
    mode: "text"
`

// WriteSample writes an annotated sample configuration to path.
func WriteSample(path string) error {
	if err := os.WriteFile(path, []byte(sampleConfig), 0644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
