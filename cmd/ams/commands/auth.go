package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/suresoft/ams-client/internal/app"
	"github.com/suresoft/ams-client/internal/claims"
)

func loginCommand() *cli.Command {
	return &cli.Command{
		Name:  "login",
		Usage: "log in with email and password",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "email",
				Aliases: []string{"e"},
				Usage:   "account email (prompted if omitted)",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return withApp(ctx, cmd, oneShotDefaults, func(ctx context.Context, a *app.App) error {
				out := outWriter(cmd)
				in := bufio.NewReader(inReader(cmd))

				email := cmd.String("email")
				if email == "" {
					var err error
					if email, err = promptLine(in, out, "Email: "); err != nil {
						return fmt.Errorf("reading email: %w", err)
					}
				}
				password, err := promptPassword(in, out)
				if err != nil {
					return fmt.Errorf("reading password: %w", err)
				}

				resp, err := a.Client().Login(ctx, email, password)
				if err != nil {
					return err
				}

				if resp.User != nil {
					fmt.Fprintf(out, "Logged in as %s (%s)\n", resp.User.Name, resp.User.Role)
				} else {
					fmt.Fprintf(out, "Logged in as %s\n", email)
				}
				return nil
			})
		},
	}
}

func logoutCommand() *cli.Command {
	return &cli.Command{
		Name:  "logout",
		Usage: "end the session and remove stored tokens",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return withApp(ctx, cmd, oneShotDefaults, func(ctx context.Context, a *app.App) error {
				if err := a.Client().Logout(ctx); err != nil {
					return err
				}
				fmt.Fprintln(outWriter(cmd), "Logged out")
				return nil
			})
		},
	}
}

func statusCommand() *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "show the current session",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "offline",
				Usage: "only inspect stored tokens, don't contact the server",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return withApp(ctx, cmd, oneShotDefaults, func(ctx context.Context, a *app.App) error {
				out := outWriter(cmd)

				access, err := a.Store().AccessToken(ctx)
				if err != nil {
					return fmt.Errorf("reading access token: %w", err)
				}
				if access == "" {
					fmt.Fprintln(out, "Not logged in")
					return nil
				}

				if c, err := claims.Inspect(access); err == nil {
					fmt.Fprintf(out, "Subject:  %s\n", c.Subject)
					if c.Email != "" {
						fmt.Fprintf(out, "Email:    %s\n", c.Email)
					}
					if c.Role != "" {
						fmt.Fprintf(out, "Role:     %s\n", c.Role)
					}
					if left, ok := c.ExpiresIn(time.Now()); ok {
						if left > 0 {
							fmt.Fprintf(out, "Expires:  in %s\n", left.Truncate(time.Second))
						} else {
							fmt.Fprintln(out, "Expires:  expired (will refresh on next request)")
						}
					}
				}

				refresh, err := a.Store().RefreshToken(ctx)
				if err != nil {
					return fmt.Errorf("reading refresh token: %w", err)
				}
				fmt.Fprintf(out, "Refresh:  %s\n", yesNo(refresh != ""))

				if cmd.Bool("offline") {
					return nil
				}

				user, err := a.Client().Me(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Server:   %s\n", a.Client().BaseURL())
				fmt.Fprintf(out, "User:     %s <%s>, %s\n", user.Name, user.Email, user.Role)
				return nil
			})
		},
	}
}

func tokenCommand() *cli.Command {
	return &cli.Command{
		Name:  "token",
		Usage: "print a valid access token, refreshing it if expired",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return withApp(ctx, cmd, oneShotDefaults, func(ctx context.Context, a *app.App) error {
				tok, err := a.FreshToken(ctx)
				if errors.Is(err, app.ErrNotLoggedIn) {
					return fmt.Errorf("%w, run `ams login`", err)
				}
				if err != nil {
					return err
				}
				fmt.Fprintln(outWriter(cmd), tok.AccessToken)
				return nil
			})
		},
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
