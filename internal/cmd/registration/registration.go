// Package registration parses registration service flags and launches the
// service.
package registration

import (
	"context"
	"flag"

	entrypoint "github.com/quizrally/registration/internal/platform/cmd"
	server "github.com/quizrally/registration/internal/services/registration/app"
)

// Config holds registration command configuration.
type Config struct {
	HTTPPort int `env:"QUIZRALLY_REGISTRATION_HTTP_PORT" envDefault:"8080"`
	GRPCPort int `env:"QUIZRALLY_REGISTRATION_GRPC_PORT" envDefault:"8091"`
}

// ParseConfig parses environment and flags into Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.IntVar(&cfg.HTTPPort, "http-port", cfg.HTTPPort, "The registration HTTP API port")
	fs.IntVar(&cfg.GRPCPort, "grpc-port", cfg.GRPCPort, "The registration gRPC health port")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the registration service.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceRegistration, func(context.Context) error {
		return server.Run(ctx, cfg.HTTPPort, cfg.GRPCPort)
	})
}
