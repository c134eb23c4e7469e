package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/3s-rg-codes/hyperfaas-function-template/pkg/functionRuntimeInterface"
	"github.com/3s-rg-codes/hyperfaas-function-template/pkg/handler"
	"github.com/3s-rg-codes/hyperfaas-function-template/pkg/handler/builtin"
)

func addressFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "address",
		Usage:   "address the function instance listens on or is reached at",
		Value:   functionRuntimeInterface.DefaultAddress,
		Sources: cli.EnvVars("FUNCTION_ADDRESS"),
		Aliases: []string{"a"},
	}
}

func main() {
	if err := newCommand().Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:  "function",
		Usage: "run or call a HyperFaaS placeholder function",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
			&cli.StringFlag{
				Name:    "log-format",
				Usage:   "log format (text, json or dev)",
				Value:   "text",
				Sources: cli.EnvVars("LOG_FORMAT"),
			},
			&cli.StringFlag{
				Name:    "log-file",
				Usage:   "log file path (defaults to stdout)",
				Sources: cli.EnvVars("LOG_FILE"),
			},
		},
		Commands: []*cli.Command{
			serveCommand(),
			invokeCommand(),
			{
				Name:  "list",
				Usage: "list the available handlers",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					for _, name := range builtin.Names() {
						fmt.Fprintln(cmd.Root().Writer, name)
					}
					return nil
				},
			},
		},
	}
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "host a handler until the instance is idle for --timeout",
		Flags: []cli.Flag{
			addressFlag(),
			&cli.StringFlag{
				Name:    "handler",
				Usage:   "handler to serve (see the list command)",
				Sources: cli.EnvVars("FUNCTION_HANDLER"),
			},
			&cli.StringFlag{
				Name:    "function-id",
				Usage:   "function id announced to the registry",
				Sources: cli.EnvVars("FUNCTION_ID"),
			},
			&cli.DurationFlag{
				Name:    "timeout",
				Usage:   "idle time before the instance shuts down, 0 disables it",
				Value:   functionRuntimeInterface.DefaultTimeout,
				Aliases: []string{"t"},
			},
			&cli.DurationFlag{
				Name:  "delay",
				Usage: "how long handlers wait before resolving",
				Value: handler.DefaultDelay,
			},
			&cli.StringFlag{
				Name:    "metrics-address",
				Usage:   "serve /metrics and /healthz on this address",
				Sources: cli.EnvVars("METRICS_ADDRESS"),
			},
			&cli.StringSliceFlag{
				Name:    "etcd-endpoint",
				Usage:   "etcd endpoint to announce the instance to, repeatable",
				Sources: cli.EnvVars("ETCD_ENDPOINTS"),
			},
			&cli.StringFlag{
				Name:  "etcd-prefix",
				Usage: "key prefix for instance announcements",
			},
			&cli.FloatFlag{
				Name:  "rate-limit",
				Usage: "admitted invocations per second, 0 means unlimited",
			},
			&cli.IntFlag{
				Name:  "burst",
				Usage: "burst size for --rate-limit",
				Value: 1,
			},
		},
		Action: serve,
	}
}

func invokeCommand() *cli.Command {
	return &cli.Command{
		Name:    "invoke",
		Aliases: []string{"call"},
		Usage:   "invoke a running function instance",
		Flags: []cli.Flag{
			addressFlag(),
			&cli.StringFlag{
				Name:    "data",
				Usage:   "argument as JSON; anything that is not JSON is sent as a string",
				Aliases: []string{"d"},
			},
			&cli.DurationFlag{
				Name:    "timeout",
				Usage:   "example: 30s, 1m, 1h",
				Value:   30 * time.Second,
				Aliases: []string{"t"},
			},
			&cli.IntFlag{
				Name:  "concurrency",
				Usage: "number of parallel invocations",
				Value: 1,
			},
			&cli.BoolFlag{
				Name:  "dump",
				Usage: "pretty print results instead of JSON",
			},
		},
		Action: invoke,
	}
}
