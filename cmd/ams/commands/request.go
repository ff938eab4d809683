package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/suresoft/ams-client/internal/app"
	"github.com/suresoft/ams-client/internal/client"
)

// requestCommand builds a raw API command for one HTTP method.
func requestCommand(method string) *cli.Command {
	flags := []cli.Flag{
		&cli.StringSliceFlag{
			Name:    "query",
			Aliases: []string{"q"},
			Usage:   "query parameter as key=value (repeatable)",
		},
	}
	if method != "get" && method != "delete" {
		flags = append(flags, &cli.StringFlag{
			Name:    "data",
			Aliases: []string{"d"},
			Usage:   "JSON body, @file to read a file, or - for stdin",
		})
	}

	return &cli.Command{
		Name:      method,
		Usage:     "send an authenticated " + strings.ToUpper(method) + " request",
		ArgsUsage: "<path>",
		Flags:     flags,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.NArg() != 1 {
				return fmt.Errorf("expected exactly one path argument, e.g. /assets")
			}

			query, err := parseQuery(cmd.StringSlice("query"))
			if err != nil {
				return err
			}

			req := client.Request{
				Method: strings.ToUpper(method),
				Path:   cmd.Args().First(),
				Query:  query,
			}
			if cmd.String("data") != "" {
				body, err := readBody(cmd.String("data"), inReader(cmd))
				if err != nil {
					return err
				}
				req.Body = json.RawMessage(body)
			}

			return withApp(ctx, cmd, oneShotDefaults, func(ctx context.Context, a *app.App) error {
				resp, err := a.Client().Do(ctx, req)
				if err != nil {
					return err
				}
				return printBody(outWriter(cmd), resp)
			})
		},
	}
}

func parseQuery(pairs []string) (url.Values, error) {
	q := url.Values{}
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid query parameter %q, want key=value", pair)
		}
		q.Add(key, value)
	}
	return q, nil
}

// readBody resolves the --data argument and checks that it is valid JSON.
func readBody(data string, stdin io.Reader) ([]byte, error) {
	var body []byte
	var err error
	switch {
	case data == "-":
		body, err = io.ReadAll(stdin)
	case strings.HasPrefix(data, "@"):
		body, err = os.ReadFile(strings.TrimPrefix(data, "@"))
	default:
		body = []byte(data)
	}
	if err != nil {
		return nil, fmt.Errorf("reading request body: %w", err)
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("request body is not valid JSON")
	}
	return body, nil
}

// printBody writes the response body, indenting JSON.
func printBody(w io.Writer, resp *client.Response) error {
	if resp.StatusCode == http.StatusNoContent || len(resp.Body) == 0 {
		return nil
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, resp.Body, "", "  "); err != nil {
		_, err := w.Write(resp.Body)
		return err
	}
	buf.WriteByte('\n')
	_, err := buf.WriteTo(w)
	return err
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
