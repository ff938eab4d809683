package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/suresoft/ams-client/internal/app"
)

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run a local gateway that forwards requests with the stored session",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "server--host",
				Usage: "server host",
				Value: app.DefaultConfigServerHost,
			},
			&cli.IntFlag{
				Name:  "server--port",
				Usage: "server port",
				Value: int(app.DefaultConfigServerPort),
			},
			&cli.DurationFlag{
				Name:  "shutdown--timeout",
				Usage: "graceful shutdown timeout",
				Value: app.DefaultConfigShutdownTimeout,
			},
		},
		Action: serveAction,
	}
}

func serveAction(ctx context.Context, cmd *cli.Command) error {
	return withApp(ctx, cmd, nil, func(ctx context.Context, a *app.App) error {
		slog.InfoContext(ctx, "starting")

		if err := a.Start(ctx); err != nil {
			return fmt.Errorf("app failed to start: %w", err)
		}

		slog.InfoContext(ctx, "stopped gracefully")
		return nil
	})
}
