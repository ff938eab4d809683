package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/suresoft/ams-client/internal/app"
	"github.com/suresoft/ams-client/internal/observability"
)

// Execute runs the root command with the given context and arguments.
func Execute(ctx context.Context, args []string) error {
	return newRootCommand().Run(ctx, args)
}

func newRootCommand() *cli.Command {
	return &cli.Command{
		Name:  "ams",
		Usage: "SureSoft asset management client",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to config file",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "log level (debug|info|warn|error)",
				Value: slog.LevelWarn.String(),
			},
			&cli.StringFlag{
				Name:  "log-format",
				Usage: "log format (text|json)",
				Value: string(app.DefaultConfigLogFormat),
			},
			&cli.StringFlag{
				Name:  "log-exporter",
				Usage: "log exporter (none|stdout|otlp-grpc|otlp-http)",
				Value: observability.ExporterNone,
			},
			&cli.StringFlag{
				Name:  "api--base-url",
				Usage: "AMS API base URL",
				Value: app.DefaultConfigAPIBaseURL,
			},
			&cli.DurationFlag{
				Name:  "api--timeout",
				Usage: "timeout for each API request",
				Value: app.DefaultConfigAPITimeout,
			},
			&cli.StringFlag{
				Name:  "auth--storage",
				Usage: "token storage (file|keyring|env|memory)",
				Value: string(app.DefaultConfigAuthStorage),
			},
		},
		Commands: []*cli.Command{
			loginCommand(),
			logoutCommand(),
			statusCommand(),
			tokenCommand(),
			requestCommand("get"),
			requestCommand("post"),
			requestCommand("patch"),
			requestCommand("put"),
			requestCommand("delete"),
			assetsCommand(),
			workflowsCommand(),
			serveCommand(),
		},
	}
}

// oneShotDefaults keep logging quiet for interactive commands; notices reach
// the user through the notifier instead.
var oneShotDefaults = map[string]any{"log_level": "warn"}

// withApp loads configuration, sets up logging and runs fn with a ready App.
func withApp(ctx context.Context, cmd *cli.Command, base map[string]any, fn func(context.Context, *app.App) error) error {
	cfg, err := newConfigSource(cmd, base).load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Set up observability before creating app
	shutdown, err := observability.Instrument(ctx, observability.Options{
		Level:    cfg.LogLevel,
		Format:   string(cfg.LogFormat),
		Exporter: cfg.LogExporter,
		Output:   errWriter(cmd),
	})
	if err != nil {
		return fmt.Errorf("failed to set up observability layer: %w", err)
	}
	defer func() {
		if err := shutdown(context.WithoutCancel(ctx)); err != nil {
			fmt.Fprintln(errWriter(cmd), "failed to flush logs:", err)
		}
	}()

	a, err := app.New(cfg, errWriter(cmd))
	if err != nil {
		return fmt.Errorf("failed to create app: %w", err)
	}

	return fn(ctx, a)
}

func outWriter(cmd *cli.Command) io.Writer {
	if w := cmd.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}

func errWriter(cmd *cli.Command) io.Writer {
	if w := cmd.Root().ErrWriter; w != nil {
		return w
	}
	return os.Stderr
}

func inReader(cmd *cli.Command) io.Reader {
	if r := cmd.Root().Reader; r != nil {
		return r
	}
	return os.Stdin
}
