// Package kvstore dials the backing store and translates its driver errors
// into the package's own error taxonomy.
package kvstore

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/relcore/relcore/internal/relerr"
)

// Settings configures the connection to the backing store.
type Settings struct {
	Host        string
	Port        int
	PoolSize    int
	DialTimeout time.Duration
}

// DefaultSettings mirrors go-redis's own client defaults, overridden by
// whatever Settings the caller supplies.
func DefaultSettings() Settings {
	return Settings{
		Host:        "localhost",
		Port:        6379,
		PoolSize:    10,
		DialTimeout: 5 * time.Second,
	}
}

// Dial opens a client and verifies connectivity with a PING, translating
// any failure into relerr.ErrBackendConnection.
func Dial(ctx context.Context, s Settings) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        addr(s),
		PoolSize:    s.PoolSize,
		DialTimeout: s.DialTimeout,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, relerr.WrapBackend("dial", err)
	}
	return rdb, nil
}

func addr(s Settings) string {
	host, port := s.Host, s.Port
	if host == "" {
		host = "localhost"
	}
	if port == 0 {
		port = 6379
	}
	return host + ":" + strconv.Itoa(port)
}
