package validators

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
)

var (
	ErrEmailMalformed        = errors.New("email has no usable domain")
	ErrEmailDomainUnresolved = errors.New("email domain has no MX or address records")
)

// Resolver is the part of *net.Resolver the domain check needs.
type Resolver interface {
	LookupMX(ctx context.Context, name string) ([]*net.MX, error)
	LookupHost(ctx context.Context, host string) ([]string, error)
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CheckEmailDomain accepts a domain with MX records, or failing that any
// address record. A nil resolver uses net.DefaultResolver.
func CheckEmailDomain(ctx context.Context, r Resolver, email string) error {
	at := strings.LastIndex(email, "@")
	if at <= 0 || at == len(email)-1 {
		return ErrEmailMalformed
	}

	domain := strings.TrimSuffix(email[at+1:], ".")
	if !strings.Contains(domain, ".") {
		return ErrEmailMalformed
	}

	if r == nil {
		r = net.DefaultResolver
	}

	if mx, err := r.LookupMX(ctx, domain); err == nil && len(mx) > 0 {
		return nil
	}
	if hosts, err := r.LookupHost(ctx, domain); err == nil && len(hosts) > 0 {
		return nil
	}

	return fmt.Errorf("%w: %s", ErrEmailDomainUnresolved, domain)
}
