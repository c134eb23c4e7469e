package functionRuntimeInterface

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/3s-rg-codes/hyperfaas-function-template/pkg/handler"
	"github.com/3s-rg-codes/hyperfaas-function-template/pkg/registry"
	"github.com/3s-rg-codes/hyperfaas-function-template/pkg/utils"
)

// Ready is called from a function binary's main. It reads its settings from the environment,
// serves invoker under name and exits the process when serving fails.
func Ready(name string, invoker handler.Invoker, opts ...Option) {
	logger := utils.NewLogger(os.Stdout, os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))

	settings := LoadSettings(logger)
	if settings.Handler == "" {
		settings.Handler = name
	}

	opts = append([]Option{
		WithLogger(logger),
		WithMetrics(NewMetrics(settings.Handler)),
	}, opts...)
	if len(settings.EtcdEndpoints) > 0 {
		announcer, err := registry.NewEtcdAnnouncer(settings.EtcdEndpoints, registry.Options{}, logger)
		if err != nil {
			logger.Error("Failed to connect to etcd", "error", err)
			os.Exit(1)
		}
		defer announcer.Close()
		opts = append(opts, WithAnnouncer(announcer))
	}

	fn, err := New(settings, invoker, opts...)
	if err != nil {
		logger.Error("Failed to create function", "error", err)
		os.Exit(1)
	}

	lis, err := net.Listen("tcp", settings.Address)
	if err != nil {
		logger.Error("Failed to listen", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := fn.Serve(ctx, lis); err != nil {
		logger.Error("Failed to serve", "error", err)
		os.Exit(1)
	}
	logger.Info("Closing function.")
}
