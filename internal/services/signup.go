package services

import (
	"errors"
	"fmt"
	"strings"
)

var ErrEmailDomainNotAllowed = errors.New("email domain not allowed")

// DomainError is returned for an email outside the allowed domain. Its
// message is shown to the user as is.
type DomainError struct {
	Domain string
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("Please use your %s email to sign up.", e.Domain)
}

func (e *DomainError) Is(target error) bool {
	return target == ErrEmailDomainNotAllowed
}

// SignUpPolicy decides whether an email may create a profile.
type SignUpPolicy interface {
	Allow(email string) error
}

type domainPolicy struct {
	domain string
}

// NewSignUpPolicy restricts sign-up to addresses ending in "@"+domain. An
// empty domain allows everyone.
func NewSignUpPolicy(domain string) SignUpPolicy {
	return &domainPolicy{domain: strings.ToLower(strings.TrimPrefix(strings.TrimSpace(domain), "@"))}
}

func (p *domainPolicy) Allow(email string) error {
	if p.domain == "" {
		return nil
	}

	email = strings.ToLower(strings.TrimSpace(email))
	if !strings.HasSuffix(email, "@"+p.domain) {
		return &DomainError{Domain: p.domain}
	}
	return nil
}
