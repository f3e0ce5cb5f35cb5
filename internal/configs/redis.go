package config

import (
	"fmt"

	"github.com/redis/rueidis"
)

// NewRedisClient returns nil when addr is empty; callers fall back to
// in-process locking.
func NewRedisClient(addr string) (rueidis.Client, error) {
	if addr == "" {
		return nil, nil
	}

	redisClient, err := rueidis.NewClient(
		rueidis.ClientOption{
			InitAddress: []string{addr},
		},
	)
	if err != nil {
		return nil, fmt.Errorf("create redis client: %w", err)
	}

	return redisClient, nil
}
