package version

// Engine compatibility. Statement kinds and session options follow the
// Flink SQL dialect of this release line.
const (
	// FlinkVersion is the Flink release the default session options target.
	FlinkVersion = "2.1.0"

	// GatewayAPIVersion is the SQL Gateway REST API path prefix.
	GatewayAPIVersion = "v1"
)

// Build information, overridden at link time.
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// Set records build-time variables. Empty values keep the defaults.
func Set(v, c, bt string) {
	if v != "" {
		Version = v
	}
	if c != "" {
		Commit = c
	}
	if bt != "" {
		BuildTime = bt
	}
}
