package registry

// Status is the lifecycle state of a certification. Transitions move forward
// only: pending -> active -> revoked, with revoked terminal.
type Status string

const (
	// StatusPending is the initial status of every issued certification.
	StatusPending Status = "pending"
	// StatusActive means a verified auditor approved the certification.
	StatusActive Status = "active"
	// StatusRevoked means a verified auditor revoked the certification. Terminal.
	StatusRevoked Status = "revoked"
)

// Statuses lists all valid statuses in lifecycle order.
func Statuses() []Status {
	return []Status{StatusPending, StatusActive, StatusRevoked}
}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusActive, StatusRevoked:
		return true
	}
	return false
}

// CanTransitionTo reports whether the lifecycle allows moving from s to next.
func (s Status) CanTransitionTo(next Status) bool {
	switch s {
	case StatusPending:
		return next == StatusActive
	case StatusActive:
		return next == StatusRevoked
	}
	return false
}

// String implements fmt.Stringer.
func (s Status) String() string {
	return string(s)
}
