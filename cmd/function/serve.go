package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"
	"golang.org/x/time/rate"

	"github.com/3s-rg-codes/hyperfaas-function-template/pkg/functionRuntimeInterface"
	"github.com/3s-rg-codes/hyperfaas-function-template/pkg/handler"
	"github.com/3s-rg-codes/hyperfaas-function-template/pkg/handler/builtin"
	"github.com/3s-rg-codes/hyperfaas-function-template/pkg/registry"
	"github.com/3s-rg-codes/hyperfaas-function-template/pkg/utils"
)

func setupLogger(cmd *cli.Command) (*slog.Logger, error) {
	return utils.SetupLogger(cmd.String("log-level"), cmd.String("log-format"), cmd.String("log-file"))
}

// settingsFromCommand layers explicitly set flags over the environment.
func settingsFromCommand(cmd *cli.Command, logger *slog.Logger) functionRuntimeInterface.Settings {
	s := functionRuntimeInterface.LoadSettings(logger)

	if cmd.IsSet("address") {
		s.Address = cmd.String("address")
	}
	if cmd.IsSet("handler") {
		s.Handler = cmd.String("handler")
	}
	if cmd.IsSet("function-id") {
		s.FunctionID = cmd.String("function-id")
	}
	if cmd.IsSet("timeout") {
		s.Timeout = cmd.Duration("timeout")
	}
	if cmd.IsSet("metrics-address") {
		s.MetricsAddress = cmd.String("metrics-address")
	}
	if cmd.IsSet("etcd-endpoint") {
		s.EtcdEndpoints = cmd.StringSlice("etcd-endpoint")
	}
	return s
}

func serve(ctx context.Context, cmd *cli.Command) error {
	logger, err := setupLogger(cmd)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	settings := settingsFromCommand(cmd, logger)
	if settings.Handler == "" {
		return fmt.Errorf("no handler specified, pick one of %v", builtin.Names())
	}
	logger.Info("Current configuration", "settings", settings)

	invoker, err := builtin.New(settings.Handler,
		handler.WithDelay(cmd.Duration("delay")),
		handler.WithLogger(logger.With("handler", settings.Handler)),
	)
	if err != nil {
		return err
	}

	opts := []functionRuntimeInterface.Option{
		functionRuntimeInterface.WithLogger(logger),
		functionRuntimeInterface.WithMetrics(functionRuntimeInterface.NewMetrics(settings.Handler)),
	}
	if limit := cmd.Float("rate-limit"); limit > 0 {
		opts = append(opts, functionRuntimeInterface.WithRateLimit(rate.Limit(limit), cmd.Int("burst")))
	}
	if len(settings.EtcdEndpoints) > 0 {
		announcer, err := registry.NewEtcdAnnouncer(settings.EtcdEndpoints, registry.Options{Prefix: cmd.String("etcd-prefix")}, logger)
		if err != nil {
			return fmt.Errorf("failed to connect to etcd: %w", err)
		}
		defer announcer.Close()
		opts = append(opts, functionRuntimeInterface.WithAnnouncer(announcer))
	}

	fn, err := functionRuntimeInterface.New(settings, invoker, opts...)
	if err != nil {
		return err
	}

	lis, err := net.Listen("tcp", settings.Address)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return fn.Serve(ctx, lis)
}
