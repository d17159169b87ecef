package submit

import (
	"strings"
	"time"
)

// Config holds the configuration for one submission run.
type Config struct {
	SQLFile       string
	JobName       string
	FlinkURL      string
	SQLGatewayURL string // Explicit SQL Gateway base URL (overrides FlinkURL port substitution when set)
	DryRun        bool
	Strict        bool          // Fail instead of warn when the file ends with an unterminated statement
	ReadyTimeout  time.Duration // How long to wait for the gateway before opening the session
	// SessionAttempts and SessionBackoff drive session creation retries.
	SessionAttempts int
	SessionBackoff  time.Duration
	PollInterval    time.Duration // Delay between operation status polls
	// Properties override or extend DefaultProperties for the session.
	Properties map[string]string
}

// DefaultProperties are the session options every run starts from.
func DefaultProperties() map[string]string {
	return map[string]string{
		"table.dynamic-table-options.enabled":                    "true",
		"execution.checkpointing.interval":                       "2 min",
		"execution.checkpointing.min-pause":                      "10 s",
		"restart-strategy.type":                                  "failure-rate",
		"restart-strategy.failure-rate.delay":                    "10 s",
		"restart-strategy.failure-rate.failure-rate-interval":    "5 min",
		"restart-strategy.failure-rate.max-failures-per-interval": "3",
	}
}

// JobNameProperty is the session option carrying the job name.
const JobNameProperty = "pipeline.name"

// Normalize fills defaults and canonicalizes URLs. Should be called early (e.g. NewRunner)
func (c *Config) Normalize() {
	if strings.TrimSpace(c.FlinkURL) == "" {
		c.FlinkURL = "http://localhost:8081"
	}
	c.FlinkURL = strings.TrimRight(c.FlinkURL, "/")
	if c.SQLGatewayURL != "" {
		c.SQLGatewayURL = strings.TrimRight(c.SQLGatewayURL, "/")
	}
	if c.SQLGatewayURL == "" {
		c.SQLGatewayURL = DeriveGatewayURL(c.FlinkURL)
	}
	if c.ReadyTimeout <= 0 {
		c.ReadyTimeout = 8 * time.Second
	}
	if c.SessionAttempts < 1 {
		c.SessionAttempts = 7
	}
	if c.SessionBackoff <= 0 {
		c.SessionBackoff = 2 * time.Second
	}
	if c.PollInterval <= 0 {
		c.PollInterval = time.Second
	}
}

// SessionProperties merges the defaults, configured overrides and the job
// name into the property map sent when the session is opened.
func (c *Config) SessionProperties() map[string]string {
	props := DefaultProperties()
	for k, v := range c.Properties {
		props[k] = v
	}
	if c.JobName != "" {
		props[JobNameProperty] = c.JobName
	}
	return props
}

// DeriveGatewayURL computes SQL Gateway base URL from a Flink REST URL.
// Rules:
// 1. If input contains :8081 replace with :8083
// 2. If input already has another explicit port keep it as-is
// 3. If no port, append :8083
func DeriveGatewayURL(flinkURL string) string {
	if strings.Contains(flinkURL, ":8081") {
		return strings.Replace(flinkURL, ":8081", ":8083", 1)
	}
	trimmed := strings.TrimRight(flinkURL, "/")
	lastColon := strings.LastIndex(trimmed, ":")
	if lastColon != -1 && lastColon > len("http://")-1 { // after scheme
		portPart := trimmed[lastColon+1:]
		allDigits := portPart != ""
		for _, r := range portPart {
			if r < '0' || r > '9' {
				allDigits = false
				break
			}
		}
		if allDigits {
			return trimmed
		}
	}
	return trimmed + ":8083"
}
