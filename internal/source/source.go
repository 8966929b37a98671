// Package source materialises raw configuration from everywhere shoal reads it
// and merges the results into one property set.
package source

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/dyluth/shoal/internal/config"
	"github.com/dyluth/shoal/internal/docker"
	"github.com/dyluth/shoal/pkg/policy"
	"github.com/redis/go-redis/v9"
)

// Options selects the sources Load reads. Zero values skip a source.
type Options struct {
	// ConfigFile is the YAML file to read. A missing file is only an error
	// when RequireFile is set.
	ConfigFile  string
	RequireFile bool

	// ContainerID names the container whose labels are read through Inspector.
	ContainerID string
	Inspector   docker.Inspector

	// Redis is read when set, from the hash of the resolved instance.
	Redis    redis.Cmdable
	Instance string
	// DefaultInstance applies when neither Instance nor a container label names one
	DefaultInstance string

	// Defines are "key=value" overrides applied last.
	Defines []string
}

// Result is the merged configuration plus the instance it was resolved for.
type Result struct {
	Properties *config.Properties
	// Instance is Options.Instance, else the container's instance label, else Options.DefaultInstance
	Instance string
}

// Load reads every configured source in increasing precedence: file, container
// labels, Redis hash, defines. Later sources override earlier values.
func Load(ctx context.Context, opts Options) (*Result, error) {
	props := config.NewProperties()
	instanceName := opts.Instance

	if opts.ConfigFile != "" {
		fileProps, err := config.Load(opts.ConfigFile)
		switch {
		case err == nil:
			props.Merge(fileProps)
		case errors.Is(err, fs.ErrNotExist) && !opts.RequireFile:
		default:
			return nil, err
		}
	}

	if opts.ContainerID != "" {
		if opts.Inspector == nil {
			return nil, fmt.Errorf("a Docker client is required to read labels of container %s", opts.ContainerID)
		}
		labelProps, labelInstance, err := FromContainer(ctx, opts.Inspector, opts.ContainerID)
		if err != nil {
			return nil, err
		}
		props.Merge(labelProps)
		if instanceName == "" {
			instanceName = labelInstance
		}
	}

	if instanceName == "" {
		instanceName = opts.DefaultInstance
	}

	if opts.Redis != nil {
		if instanceName == "" {
			return nil, fmt.Errorf("an instance name is required to read configuration from Redis")
		}
		redisProps, err := FromRedis(ctx, opts.Redis, instanceName)
		if err != nil {
			return nil, err
		}
		props.Merge(redisProps)
	}

	defineProps, err := config.FromDefines(opts.Defines)
	if err != nil {
		return nil, err
	}
	props.Merge(defineProps)

	return &Result{Properties: props, Instance: instanceName}, nil
}

// FromRedis reads the instance's configuration hash. A missing hash yields empty properties.
func FromRedis(ctx context.Context, rdb redis.Cmdable, instanceName string) (*config.Properties, error) {
	key := policy.ConfigKey(instanceName)
	values, err := rdb.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration from Redis %s: %w", key, err)
	}
	return config.FromMap(values), nil
}

// FromContainer reads shoal labels from a container, returning them as properties
// together with the instance name the container is labelled with, if any.
func FromContainer(ctx context.Context, cli docker.Inspector, containerID string) (*config.Properties, string, error) {
	labels, err := docker.ContainerLabels(ctx, cli, containerID)
	if err != nil {
		return nil, "", err
	}
	return config.FromMap(docker.ConfigLabels(labels)), docker.InstanceName(labels), nil
}
