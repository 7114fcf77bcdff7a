package startupradar

import "fmt"

// AuthError means credentials are missing or were rejected by Startup Radar.
// It is fatal to a sync run.
type AuthError struct {
	Reason string
}

func (e *AuthError) Error() string {
	return "startup radar auth: " + e.Reason
}

// RemoteError is a non-2xx, non-404 response from the Startup Radar API. It
// carries the remote status and body for diagnostics.
type RemoteError struct {
	Path   string
	Status int
	Body   string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("startup radar GET %s: %d - %s", e.Path, e.Status, e.Body)
}
