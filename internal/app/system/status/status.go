// Package status centralizes the lifecycle status strings stored on
// workspaces, organizations, memberships, and identities.
package status

const (
	Active    = "active"
	Archived  = "archived"
	Suspended = "suspended"
	Disabled  = "disabled"
)

// Valid reports whether s is a known status value.
func Valid(s string) bool {
	switch s {
	case Active, Archived, Suspended, Disabled:
		return true
	}
	return false
}
