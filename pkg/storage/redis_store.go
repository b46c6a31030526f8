package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisPrefix namespaces every key the Redis store writes.
const DefaultRedisPrefix = "ipreputation:blacklist:"

// RedisStore keeps the blacklist in Redis sets so several scorer instances
// can share it.
//
// Key layout (prefix omitted):
//
//	reasons          set of every reason
//	reason:<reason>  set of IPs listed under reason
//	ip:<ip>          set of reasons listing ip
type RedisStore struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisStore wraps an existing client. An empty prefix selects
// DefaultRedisPrefix.
func NewRedisStore(client redis.UniversalClient, prefix string) *RedisStore {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisStore{client: client, prefix: prefix}
}

func (r *RedisStore) reasonsKey() string { return r.prefix + "reasons" }
func (r *RedisStore) reasonKey(reason string) string { return r.prefix + "reason:" + reason }
func (r *RedisStore) ipKey(ip string) string { return r.prefix + "ip:" + ip }

// Add lists ip under reason in a single MULTI/EXEC.
func (r *RedisStore) Add(ctx context.Context, reason, ip string) error {
	ip = NormalizeIP(ip)
	if ip == "" {
		return errors.New("ip must not be empty")
	}

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SAdd(ctx, r.reasonsKey(), reason)
		pipe.SAdd(ctx, r.reasonKey(reason), ip)
		pipe.SAdd(ctx, r.ipKey(ip), reason)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis blacklist add: %w", err)
	}
	return nil
}

// Contains reports whether ip is listed under any reason.
func (r *RedisStore) Contains(ctx context.Context, ip string) (bool, error) {
	n, err := r.client.Exists(ctx, r.ipKey(NormalizeIP(ip))).Result()
	if err != nil {
		return false, fmt.Errorf("redis blacklist contains: %w", err)
	}
	return n > 0, nil
}

func (r *RedisStore) Reasons(ctx context.Context, ip string) ([]string, error) {
	reasons, err := r.client.SMembers(ctx, r.ipKey(NormalizeIP(ip))).Result()
	if err != nil {
		return nil, fmt.Errorf("redis blacklist reasons: %w", err)
	}
	sort.Strings(reasons)
	return reasons, nil
}

func (r *RedisStore) Entries(ctx context.Context) (map[string][]string, error) {
	reasons, err := r.client.SMembers(ctx, r.reasonsKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("redis blacklist entries: %w", err)
	}

	out := make(map[string][]string, len(reasons))
	for _, reason := range reasons {
		ips, err := r.client.SMembers(ctx, r.reasonKey(reason)).Result()
		if err != nil {
			return nil, fmt.Errorf("redis blacklist entries: %w", err)
		}
		sort.Strings(ips)
		out[reason] = ips
	}
	return out, nil
}
