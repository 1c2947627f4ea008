package allocator

// ValidationError reports malformed or out-of-policy input. It covers both
// request-level failures and names or emails that violate the length and
// character rules after derivation.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// CollisionError reports a derived or overridden name or email that is
// already allocated in the directory.
type CollisionError struct {
	Message string
}

func (e *CollisionError) Error() string {
	return e.Message
}
