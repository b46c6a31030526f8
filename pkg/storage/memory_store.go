package storage

import (
	"context"
	"errors"
	"sort"
	"sync"
)

// MemoryStore is a thread-safe in-process BlacklistStore.
type MemoryStore struct {
	byReason map[string]map[string]struct{}
	byIP     map[string]map[string]struct{}
	mu       sync.RWMutex
}

// NewMemoryStore creates an empty store. Every store owns its own maps.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byReason: make(map[string]map[string]struct{}),
		byIP:     make(map[string]map[string]struct{}),
	}
}

// Add lists ip under reason.
func (m *MemoryStore) Add(_ context.Context, reason, ip string) error {
	ip = NormalizeIP(ip)
	if ip == "" {
		return errors.New("ip must not be empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.byReason[reason] == nil {
		m.byReason[reason] = make(map[string]struct{})
	}
	m.byReason[reason][ip] = struct{}{}

	if m.byIP[ip] == nil {
		m.byIP[ip] = make(map[string]struct{})
	}
	m.byIP[ip][reason] = struct{}{}
	return nil
}

// Contains reports whether ip is listed under any reason.
func (m *MemoryStore) Contains(_ context.Context, ip string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, exists := m.byIP[NormalizeIP(ip)]
	return exists, nil
}

func (m *MemoryStore) Reasons(_ context.Context, ip string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return sortedSet(m.byIP[NormalizeIP(ip)]), nil
}

func (m *MemoryStore) Entries(_ context.Context) (map[string][]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string][]string, len(m.byReason))
	for reason, ips := range m.byReason {
		out[reason] = sortedSet(ips)
	}
	return out, nil
}

func sortedSet(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
