package storage

import (
	"context"
	"net"
	"strings"
)

// BlacklistStore keeps IP addresses grouped by the reason they were listed.
// An IP may be listed under several reasons; it is blacklisted as long as
// any reason lists it.
//
// Implementations can use any backend: in-memory, Redis, PostgreSQL, etc.
type BlacklistStore interface {
	// Add lists ip under reason, creating the reason on first use. Adding an
	// existing pair is a no-op.
	Add(ctx context.Context, reason, ip string) error

	// Contains reports whether ip is listed under any reason.
	Contains(ctx context.Context, ip string) (bool, error)

	// Reasons returns the sorted reasons ip is listed under.
	Reasons(ctx context.Context, ip string) ([]string, error)

	// Entries returns every reason with its sorted IP list.
	Entries(ctx context.Context) (map[string][]string, error)
}

// NormalizeIP returns the canonical text form of ip so that "::0001" and
// "::1" hit the same entry. Strings that do not parse are only trimmed.
func NormalizeIP(ip string) string {
	ip = strings.TrimSpace(ip)
	if parsed := net.ParseIP(ip); parsed != nil {
		return parsed.String()
	}
	return ip
}
