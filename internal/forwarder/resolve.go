package forwarder

// Resolver applies the forwarding recipient policy.
type Resolver struct {
	// FromAddress is the trusted address the forwarding system sends as.
	// Mail addressed to it goes to the admin, which keeps system-generated
	// bounces and replies from looping.
	FromAddress string
	// AdminAddress receives looped and, unless catch-all is disabled,
	// unmatched mail.
	AdminAddress string
	// DisableCatchAll drops unmatched mail instead of forwarding it to the
	// admin.
	DisableCatchAll bool
}

// Resolve returns the address a message should be forwarded to, given the
// address it was sent to and the registered account owner (empty when the
// directory has no record). ok is false when the message should be dropped.
func (r Resolver) Resolve(mailTo, accountOwner string) (string, bool) {
	if mailTo == r.FromAddress {
		return r.AdminAddress, true
	}
	if accountOwner != "" {
		return accountOwner, true
	}
	if r.DisableCatchAll {
		return "", false
	}
	return r.AdminAddress, true
}
