package geoip

import (
	"context"
	"errors"
	"fmt"

	"github.com/gokaycavdar/go-ipreputation/pkg/models"
)

// ErrLookup is matched by every error a Provider returns for an IP it could
// not resolve.
var ErrLookup = errors.New("geolocation lookup failed")

// LookupError carries the IP that failed to resolve and the cause.
type LookupError struct {
	IP  string
	Err error
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("lookup %s: %v", e.IP, e.Err)
}

// Unwrap exposes both ErrLookup and the underlying cause to errors.Is.
func (e *LookupError) Unwrap() []error {
	return []error{ErrLookup, e.Err}
}

func newLookupError(ip string, err error) error {
	return &LookupError{IP: ip, Err: err}
}

// Provider resolves an IP address into its geolocation attributes.
type Provider interface {
	Resolve(ctx context.Context, ip string) (*models.AttributeBag, error)
}

// ProviderFunc adapts a plain function to the Provider interface.
type ProviderFunc func(ctx context.Context, ip string) (*models.AttributeBag, error)

func (f ProviderFunc) Resolve(ctx context.Context, ip string) (*models.AttributeBag, error) {
	return f(ctx, ip)
}

// StaticProvider serves fixed bags keyed by IP. Unknown IPs fail with
// ErrLookup. It backs the demo driver and tests.
type StaticProvider map[string]*models.AttributeBag

func (p StaticProvider) Resolve(_ context.Context, ip string) (*models.AttributeBag, error) {
	bag, ok := p[ip]
	if !ok {
		return nil, newLookupError(ip, errors.New("no record"))
	}
	return bag, nil
}
