// internal/app/system/limits/limits.go
package limits

// Request body size limits.
// These limits help prevent memory exhaustion from oversized requests.
const (
	// MaxJSONBody caps every decoded JSON request body.
	MaxJSONBody = 1 << 20 // 1 MB

	// MaxSeedFile caps the YAML file read by the seed command.
	MaxSeedFile = 8 << 20 // 8 MB
)
