package policy

import "fmt"

// Redis key pattern helpers
//
// All Redis keys and Pub/Sub channels are namespaced by instance name so several
// shoal instances can share one Redis server.
//
// Key pattern: shoal:{instance_name}:{entity}[:{id}]
// Channel pattern: shoal:{instance_name}:{event_type}_events

// ConfigKey returns the Redis key for the raw configuration hash.
// Pattern: shoal:{instance_name}:config
func ConfigKey(instanceName string) string {
	return fmt.Sprintf("shoal:%s:config", instanceName)
}

// PolicyKey returns the Redis key for a resolved policy hash.
// Pattern: shoal:{instance_name}:policy:{policy_id}
func PolicyKey(instanceName, policyID string) string {
	return fmt.Sprintf("shoal:%s:policy:%s", instanceName, policyID)
}

// LatestPolicyKey returns the Redis key holding the ID of the latest policy.
// Pattern: shoal:{instance_name}:policy_latest
func LatestPolicyKey(instanceName string) string {
	return fmt.Sprintf("shoal:%s:policy_latest", instanceName)
}

// PolicyEventsChannel returns the Pub/Sub channel announcing new policies.
// Pattern: shoal:{instance_name}:policy_events
func PolicyEventsChannel(instanceName string) string {
	return fmt.Sprintf("shoal:%s:policy_events", instanceName)
}
