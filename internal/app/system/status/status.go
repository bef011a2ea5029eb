// Package status holds the lifecycle values shared by churches and ministries.
package status

const (
	Active   = "active"
	Disabled = "disabled"
)

// Valid reports whether s is a known status.
func Valid(s string) bool {
	return s == Active || s == Disabled
}
