package docker

import (
	"context"
	"fmt"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/client"
)

// Inspector is the part of the Docker API shoal needs to read container labels.
// *client.Client satisfies it.
type Inspector interface {
	ContainerInspect(ctx context.Context, containerID string) (types.ContainerJSON, error)
}

// NewClient creates a Docker client and validates daemon is accessible.
// Returns an error if the Docker daemon is not running or not accessible.
func NewClient(ctx context.Context) (*client.Client, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("failed to create Docker client: %w", err)
	}

	if _, err := cli.Ping(ctx); err != nil {
		cli.Close()
		return nil, fmt.Errorf(`Docker daemon not accessible: %w

Reading configuration from container labels needs a running daemon:
  • macOS: Docker Desktop
  • Linux: sudo systemctl start docker
  • or drop --container and pass the values with -D`, err)
	}

	return cli, nil
}

// ContainerLabels returns every label set on the container.
// A container without labels yields an empty map.
func ContainerLabels(ctx context.Context, cli Inspector, containerID string) (map[string]string, error) {
	info, err := cli.ContainerInspect(ctx, containerID)
	if err != nil {
		return nil, fmt.Errorf("failed to inspect container %s: %w", containerID, err)
	}

	if info.Config == nil || info.Config.Labels == nil {
		return map[string]string{}, nil
	}
	return info.Config.Labels, nil
}
