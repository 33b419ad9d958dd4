// Package gatherings parses gatherings service flags and launches the service.
package gatherings

import (
	"context"
	"flag"

	entrypoint "github.com/louisbranch/gather.space/internal/platform/cmd"
	server "github.com/louisbranch/gather.space/internal/services/gatherings/app"
)

// Config holds gatherings command configuration.
type Config struct {
	Port int `env:"GATHER_SPACE_GATHERINGS_PORT" envDefault:"8091"`
}

// ParseConfig parses environment and flags into Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.IntVar(&cfg.Port, "port", cfg.Port, "The gatherings gRPC server port")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the gatherings gRPC service.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceGatherings, func(context.Context) error {
		return server.Run(ctx, cfg.Port)
	})
}
