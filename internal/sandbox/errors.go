package sandbox

// ValidationError is a rejected request: unknown network name. Reported
// before any side effect.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// ConflictError means an existing container or data directory is incompatible
// with the requested fresh parameters. Nothing is mutated; the operator must
// remove the conflicting resource or use the existing sandbox.
type ConflictError struct {
	Reason string
}

func (e *ConflictError) Error() string { return e.Reason }

// UnsupportedError means a snapshot was requested for a network that does not
// publish one.
type UnsupportedError struct {
	Reason string
}

func (e *UnsupportedError) Error() string { return e.Reason }
