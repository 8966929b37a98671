package policy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/dyluth/shoal/pkg/pooling"
	"github.com/redis/go-redis/v9"
)

// Client hands resolved policies to the execution engine through Redis.
// All keys and channels are namespaced with the instance name.
// The client is thread-safe.
type Client struct {
	rdb          *redis.Client
	instanceName string
}

// NewClient creates a policy client for the specified instance.
// Returns an error if instanceName is empty.
func NewClient(redisOpts *redis.Options, instanceName string) (*Client, error) {
	if instanceName == "" {
		return nil, fmt.Errorf("instance name cannot be empty")
	}

	return &Client{
		rdb:          redis.NewClient(redisOpts),
		instanceName: instanceName,
	}, nil
}

// Close closes the Redis connection.
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Ping verifies Redis connectivity.
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Redis exposes the underlying connection, e.g. for reading raw configuration.
func (c *Client) Redis() *redis.Client {
	return c.rdb
}

// PublishPolicy stores the policy, marks it as the latest one and announces it
// on the policy events channel.
func (c *Client) PublishPolicy(ctx context.Context, p *Policy) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("invalid policy: %w", err)
	}

	hash, err := PolicyToHash(p)
	if err != nil {
		return fmt.Errorf("failed to serialize policy: %w", err)
	}

	key := PolicyKey(c.instanceName, p.ID)
	if err := c.rdb.HSet(ctx, key, hash).Err(); err != nil {
		return fmt.Errorf("failed to write policy to Redis: %w", err)
	}

	if err := c.rdb.Set(ctx, LatestPolicyKey(c.instanceName), p.ID, 0).Err(); err != nil {
		return fmt.Errorf("failed to update latest policy: %w", err)
	}

	policyJSON, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal policy for event: %w", err)
	}

	if err := c.rdb.Publish(ctx, PolicyEventsChannel(c.instanceName), policyJSON).Err(); err != nil {
		return fmt.Errorf("failed to publish policy event: %w", err)
	}

	return nil
}

// GetPolicy retrieves a policy by ID, resolving its strategy in reg.
// Returns (nil, redis.Nil) if the policy doesn't exist. Use IsNotFound to check.
func (c *Client) GetPolicy(ctx context.Context, policyID string, reg *pooling.Registry) (*Policy, error) {
	hashData, err := c.rdb.HGetAll(ctx, PolicyKey(c.instanceName, policyID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read policy from Redis: %w", err)
	}

	// HGetAll returns an empty map for non-existent keys
	if len(hashData) == 0 {
		return nil, redis.Nil
	}

	p, err := HashToPolicy(hashData, reg)
	if err != nil {
		return nil, fmt.Errorf("failed to deserialize policy: %w", err)
	}
	return p, nil
}

// LatestPolicy retrieves the most recently published policy.
// Returns (nil, redis.Nil) if nothing was published yet.
func (c *Client) LatestPolicy(ctx context.Context, reg *pooling.Registry) (*Policy, error) {
	policyID, err := c.rdb.Get(ctx, LatestPolicyKey(c.instanceName)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, redis.Nil
		}
		return nil, fmt.Errorf("failed to read latest policy ID: %w", err)
	}
	return c.GetPolicy(ctx, policyID, reg)
}

// Subscription delivers policies announced on the policy events channel.
// Caller must call Close() when done.
type Subscription struct {
	events <-chan *Policy
	errors <-chan error
	cancel func()
	once   sync.Once
}

// Events returns the channel of announced policies.
// The channel is closed when the subscription is closed or the context is cancelled.
func (s *Subscription) Events() <-chan *Policy {
	return s.events
}

// Errors returns decoding failures. The subscription skips the offending message and continues.
func (s *Subscription) Errors() <-chan error {
	return s.errors
}

// Close stops the subscription. Safe to call multiple times.
func (s *Subscription) Close() error {
	s.once.Do(s.cancel)
	return nil
}

// SubscribePolicies subscribes to policy announcements for this instance,
// decoding each one with reg. The subscription is confirmed before returning,
// so policies published afterwards are never missed.
func (c *Client) SubscribePolicies(ctx context.Context, reg *pooling.Registry) (*Subscription, error) {
	pubsub := c.rdb.Subscribe(ctx, PolicyEventsChannel(c.instanceName))
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to policy events: %w", err)
	}

	eventsChan := make(chan *Policy, 10)
	errorsChan := make(chan error, 10)
	subCtx, cancelFunc := context.WithCancel(ctx)

	go func() {
		defer close(eventsChan)
		defer close(errorsChan)
		defer pubsub.Close()

		ch := pubsub.Channel()
		for {
			select {
			case <-subCtx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}

				p, err := Decode([]byte(msg.Payload), reg)
				if err != nil {
					select {
					case errorsChan <- fmt.Errorf("failed to decode policy event: %w", err):
					case <-subCtx.Done():
						return
					}
					continue
				}

				select {
				case eventsChan <- p:
				case <-subCtx.Done():
					return
				}
			}
		}
	}()

	return &Subscription{
		events: eventsChan,
		errors: errorsChan,
		cancel: cancelFunc,
	}, nil
}

// IsNotFound reports whether err means a policy does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, redis.Nil)
}
