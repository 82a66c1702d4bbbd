package registration

import (
	"fmt"
	"strings"

	"github.com/dmitrijs2005/campusmatch/internal/client/apperr"
)

// MinPasswordLength is the shortest password accepted in phase 1.
const MinPasswordLength = 8

const (
	msgPasswordTooShort = "Password must be at least %d characters long"
	msgPasswordMismatch = "Passwords do not match"
	msgDomainRejected   = "Only university email addresses (.%s domain) are allowed"
)

// Validator runs the phase 1 checks that never need the network.
type Validator struct {
	// Domain is the accepted institutional domain without the leading dot,
	// e.g. "edu" for any *.edu host or "usc.edu" for usc.edu and its subdomains.
	Domain string
}

// Validate returns a KindValidation *apperr.Error for the first failed check.
func (v Validator) Validate(email, password, confirm string) error {
	if !v.institutional(email) {
		return apperr.Validation(fmt.Sprintf(msgDomainRejected, v.Domain))
	}
	if len(password) < MinPasswordLength {
		return apperr.Validation(fmt.Sprintf(msgPasswordTooShort, MinPasswordLength))
	}
	if password != confirm {
		return apperr.Validation(msgPasswordMismatch)
	}
	return nil
}

func (v Validator) institutional(email string) bool {
	local, host, ok := strings.Cut(strings.TrimSpace(email), "@")
	if !ok || local == "" || host == "" {
		return false
	}
	host, domain := strings.ToLower(host), strings.ToLower(v.Domain)
	return host == domain || strings.HasSuffix(host, "."+domain)
}

var knownSchools = map[string]string{
	"usc.edu": "University of Southern California",
}

// SchoolFor returns the school name pre-filled for email's domain, or "".
func SchoolFor(email string) string {
	_, host, ok := strings.Cut(email, "@")
	if !ok {
		return ""
	}
	return knownSchools[strings.ToLower(strings.TrimSpace(host))]
}
