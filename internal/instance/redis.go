package instance

import (
	"fmt"
	"os"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisPort is the port assumed when no --redis-url is given.
const DefaultRedisPort = 6379

// dockerEnvFile exists inside every Docker container.
var dockerEnvFile = "/.dockerenv"

// RedisHost returns "host.docker.internal" when running inside a container, so the
// host's published Redis port is reachable, and "localhost" otherwise.
func RedisHost() string {
	if _, err := os.Stat(dockerEnvFile); err == nil {
		return "host.docker.internal"
	}
	return "localhost"
}

// DefaultRedisURL returns the Redis URL used when none is configured.
func DefaultRedisURL() string {
	return fmt.Sprintf("redis://%s:%d", RedisHost(), DefaultRedisPort)
}

// RedisOptions parses a redis:// or rediss:// URL.
func RedisOptions(url string) (*redis.Options, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid Redis URL '%s': %w", url, err)
	}
	return opts, nil
}
