package domain

import "errors"

// ErrAuth is returned when no session token is stored or the server rejects
// the credential. The expected remediation is forcing re-authentication,
// not silent continuation.
var ErrAuth = errors.New("authentication required")

// ErrValidation is returned when input fails a local field invariant
// (e.g. empty title, start date after end date). Operations that return it
// have not touched the network.
var ErrValidation = errors.New("validation error")

// ErrNetwork is returned on a transport failure or an HTTP status the caller
// has no more specific mapping for.
var ErrNetwork = errors.New("network error")

// ErrNotFound is returned when the server reports that the requested
// resource does not exist.
var ErrNotFound = errors.New("not found")

// ErrUpload is returned when a specific image fails to upload. Earlier
// images in the same batch may already be persisted on the server.
var ErrUpload = errors.New("upload failed")

// ErrPermission is returned when the user denies camera or media library
// access. The triggering workflow performs no further action.
var ErrPermission = errors.New("permission denied")
