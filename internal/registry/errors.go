package registry

import "errors"

// Operation failures are returned as sentinel values so callers can branch on
// them with errors.Is. Infrastructure failures (database, verifier) are
// wrapped separately and never masquerade as one of these.
var (
	// ErrNotAuthorized is returned when the authority binding is missing for
	// issuance, or when a bind attempt is rejected (already bound, sentinel
	// or empty identity).
	ErrNotAuthorized = errors.New("not authorized")

	// ErrInvalidFarmID is returned when a farm reference is not a positive integer.
	ErrInvalidFarmID = errors.New("invalid farm id")

	// ErrInvalidProductID is returned when a product reference is not a positive integer.
	ErrInvalidProductID = errors.New("invalid product id")

	// ErrInvalidTestID is returned when a test reference is not a positive integer.
	ErrInvalidTestID = errors.New("invalid test id")

	// ErrInvalidMetadata is returned when metadata exceeds MaxMetadataLen code points.
	ErrInvalidMetadata = errors.New("metadata too long")

	// ErrInvalidNotes is returned when audit notes exceed MaxNotesLen code points.
	ErrInvalidNotes = errors.New("notes too long")

	// ErrCertAlreadyExists is returned when the candidate ID is already
	// occupied. Unreachable under correct counter discipline, kept as an
	// invariant guard.
	ErrCertAlreadyExists = errors.New("certification already exists")

	// ErrCertNotFound is returned by mutating operations on an unknown ID.
	// Read accessors report absence as a nil result instead.
	ErrCertNotFound = errors.New("certification not found")

	// ErrInvalidStatus is returned when the requested transition is not
	// allowed from the certification's current status.
	ErrInvalidStatus = errors.New("invalid certification status")

	// ErrAuditorNotVerified is returned when the caller fails auditor
	// verification on approve or revoke.
	ErrAuditorNotVerified = errors.New("auditor not verified")
)
