package allocator

import (
	"fmt"
	"regexp"
	"strings"
)

// Limits from the AWS Organizations account API:
// https://docs.aws.amazon.com/organizations/latest/APIReference/API_Account.html
const (
	MaxAccountNameLength = 50
	MinEmailLength       = 6
	MaxEmailLength       = 64
)

var (
	emailAddressPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	accountNamePattern  = regexp.MustCompile(`^[a-z0-9-]+$`)
)

// RequestTags carries the account metadata used for name derivation.
// Unrecognized tag keys in the incoming JSON are ignored.
type RequestTags struct {
	BusinessUnit    string `json:"BusinessUnit,omitempty"`
	ApplicationName string `json:"ApplicationName,omitempty"`
	Environment     string `json:"Environment,omitempty"`
}

// Map returns the tags that are set, in the shape stored on the record.
func (t RequestTags) Map() map[string]string {
	tags := make(map[string]string)
	if t.BusinessUnit != "" {
		tags["BusinessUnit"] = t.BusinessUnit
	}
	if t.ApplicationName != "" {
		tags["ApplicationName"] = t.ApplicationName
	}
	if t.Environment != "" {
		tags["Environment"] = t.Environment
	}
	return tags
}

// Request is one account provisioning request. AccountName and AccountEmail
// are optional overrides that bypass derivation but still must satisfy the
// length and character rules.
type Request struct {
	OwnerAddress string      `json:"OwnerAddress"`
	AccountType  string      `json:"AccountType"`
	Tags         RequestTags `json:"Tags"`
	AccountName  string      `json:"AccountName,omitempty"`
	AccountEmail string      `json:"AccountEmail,omitempty"`
}

// fieldRule is a single named validation predicate against the request.
type fieldRule struct {
	name  string
	check func(a *Allocator, req *Request) error
}

// requestRules is the static validator chain. Validation stops at the first
// failing rule and its error is surfaced verbatim to the caller.
var requestRules = []fieldRule{
	{
		name: "OwnerAddress",
		check: func(_ *Allocator, req *Request) error {
			if !emailAddressPattern.MatchString(req.OwnerAddress) {
				return fmt.Errorf("OwnerAddress %q is not a valid email address", req.OwnerAddress)
			}
			return nil
		},
	},
	{
		name: "AccountType",
		check: func(a *Allocator, req *Request) error {
			for _, t := range a.accountTypes {
				if req.AccountType == t {
					return nil
				}
			}
			return fmt.Errorf("AccountType %q is not one of %s", req.AccountType, strings.Join(a.accountTypes, ", "))
		},
	},
	{
		name: "Environment",
		check: func(_ *Allocator, req *Request) error {
			if req.Tags.Environment == "" {
				return nil
			}
			if _, ok := envTranslate[req.Tags.Environment]; !ok {
				return fmt.Errorf("Environment %q is not a recognized environment", req.Tags.Environment)
			}
			return nil
		},
	},
	{
		name: "AccountName",
		check: func(_ *Allocator, req *Request) error {
			if req.AccountName == "" {
				return nil
			}
			return checkAccountName(req.AccountName)
		},
	},
	{
		name: "AccountEmail",
		check: func(_ *Allocator, req *Request) error {
			if req.AccountEmail == "" {
				return nil
			}
			return checkAccountEmail(req.AccountEmail)
		},
	},
	{
		name: "Tags",
		check: func(_ *Allocator, req *Request) error {
			// Derivation needs both fields when no name override is given.
			if req.AccountName != "" {
				return nil
			}
			if req.Tags.BusinessUnit == "" || req.Tags.ApplicationName == "" {
				return fmt.Errorf("Tags must carry BusinessUnit and ApplicationName when no AccountName override is given")
			}
			return nil
		},
	},
}

// validate runs the request through the validator chain, reporting the first
// failing rule.
func (a *Allocator) validate(req *Request) error {
	for _, rule := range requestRules {
		if err := rule.check(a, req); err != nil {
			return &ValidationError{Message: err.Error()}
		}
	}
	return nil
}

// checkAccountName enforces the character set and length rules on a full
// account name, derived or overridden.
func checkAccountName(name string) error {
	if !accountNamePattern.MatchString(name) {
		return fmt.Errorf("the account name %q may only contain lower-case letters, digits and hyphens", name)
	}
	if len(name) > MaxAccountNameLength {
		return fmt.Errorf("the account name %q is longer than %d characters", name, MaxAccountNameLength)
	}
	return nil
}

// checkAccountEmail enforces the syntax and length bounds on an account email,
// derived or overridden.
func checkAccountEmail(address string) error {
	if !emailAddressPattern.MatchString(address) {
		return fmt.Errorf("the account email %q is not a valid email address", address)
	}
	if len(address) < MinEmailLength || len(address) > MaxEmailLength {
		return fmt.Errorf("the account email %q must be between %d and %d characters", address, MinEmailLength, MaxEmailLength)
	}
	return nil
}
