package commands

import (
	"context"
	"fmt"

	"github.com/dyluth/shoal/internal/config"
	"github.com/dyluth/shoal/internal/docker"
	"github.com/dyluth/shoal/internal/instance"
	"github.com/dyluth/shoal/internal/printer"
	"github.com/dyluth/shoal/internal/resolver"
	"github.com/dyluth/shoal/internal/source"
	"github.com/dyluth/shoal/pkg/policy"
	"github.com/dyluth/shoal/pkg/pooling"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// newInspector connects to the Docker daemon. Tests replace it with a fake.
var newInspector = func(ctx context.Context) (docker.Inspector, func(), error) {
	cli, err := docker.NewClient(ctx)
	if err != nil {
		return nil, nil, err
	}
	return cli, func() { cli.Close() }, nil
}

// session is the merged configuration of one command invocation.
type session struct {
	props       *config.Properties
	instance    string
	redisOpts   *redis.Options // nil when Redis is not used
	registry    *pooling.Registry
	closeSource func()
}

func (s *session) Close() {
	if s.closeSource != nil {
		s.closeSource()
	}
}

// redirectPrinter sends every printer line to the command's stderr so that
// machine-readable results on stdout stay clean.
func redirectPrinter(cmd *cobra.Command) func() {
	restoreOut := printer.SetOutput(cmd.ErrOrStderr())
	restoreErr := printer.SetErrorOutput(cmd.ErrOrStderr())
	return func() {
		restoreErr()
		restoreOut()
	}
}

// load materialises every configured source. Redis is read when --redis-url is
// given or the command needs it.
func (o *globalOptions) load(ctx context.Context, cmd *cobra.Command, needRedis bool) (*session, error) {
	s := &session{registry: pooling.DefaultRegistry()}

	srcOpts := source.Options{
		ConfigFile:      o.configFile,
		RequireFile:     cmd.Flags().Changed("config"),
		ContainerID:     o.container,
		Instance:        o.instance,
		DefaultInstance: instance.DefaultName,
		Defines:         o.defines,
	}

	if needRedis || cmd.Flags().Changed("redis-url") {
		url := o.redisURL
		if url == "" {
			url = instance.DefaultRedisURL()
		}
		redisOpts, err := instance.RedisOptions(url)
		if err != nil {
			return nil, printer.Error(
				"invalid Redis URL",
				err.Error(),
				[]string{"Use a redis:// URL, e.g.:\n  shoal publish --redis-url redis://localhost:6379"},
			)
		}
		s.redisOpts = redisOpts
	}

	if o.container != "" {
		inspector, closeFn, err := newInspector(ctx)
		if err != nil {
			return nil, printer.ErrorWithContext(
				"cannot read container labels",
				err.Error(),
				map[string]string{"container": o.container},
				[]string{"Drop --container and pass the values with -D key=value"},
			)
		}
		srcOpts.Inspector = inspector
		s.closeSource = closeFn
	}

	var rdb *redis.Client
	if s.redisOpts != nil {
		rdb = redis.NewClient(s.redisOpts)
		defer rdb.Close()
		srcOpts.Redis = rdb
	}

	result, err := source.Load(ctx, srcOpts)
	if err != nil {
		s.Close()
		return nil, printer.Error("failed to load configuration", err.Error(), nil)
	}

	if err := instance.ValidateName(result.Instance); err != nil {
		s.Close()
		return nil, printer.Error(
			"invalid instance name",
			err.Error(),
			[]string{"Choose a name such as:\n  shoal --instance device-lab ..."},
		)
	}

	s.props = result.Properties
	s.instance = result.Instance
	return s, nil
}

// resolve runs the resolver over the session's configuration.
func (s *session) resolve() (*policy.Policy, error) {
	p, err := resolver.New(s.props).Resolve(s.registry)
	if err != nil {
		return nil, renderResolveError(err)
	}
	return p, nil
}

// policyClient opens the Redis hand-off client for the session's instance.
func (s *session) policyClient(ctx context.Context) (*policy.Client, error) {
	if s.redisOpts == nil {
		return nil, fmt.Errorf("redis is not configured")
	}

	client, err := policy.NewClient(s.redisOpts, s.instance)
	if err != nil {
		return nil, err
	}

	if err := client.Ping(ctx); err != nil {
		client.Close()
		return nil, printer.ErrorWithContext(
			"Redis not reachable",
			err.Error(),
			map[string]string{"address": s.redisOpts.Addr},
			[]string{"Check --redis-url points at a running Redis server"},
		)
	}
	return client, nil
}
