package commands

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/urfave/cli/v3"

	"github.com/suresoft/ams-client/internal/amsapi"
	"github.com/suresoft/ams-client/internal/app"
	"github.com/suresoft/ams-client/internal/models"
)

func jsonFlag() cli.Flag {
	return &cli.BoolFlag{Name: "json", Usage: "print raw JSON"}
}

func paginationFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{Name: "skip", Usage: "number of items to skip"},
		&cli.IntFlag{Name: "limit", Usage: "maximum number of items"},
	}
}

func pagination(cmd *cli.Command) amsapi.Pagination {
	return amsapi.Pagination{Skip: cmd.Int("skip"), Limit: cmd.Int("limit")}
}

// idArg parses the single UUID argument of cmd.
func idArg(cmd *cli.Command) (uuid.UUID, error) {
	if cmd.NArg() != 1 {
		return uuid.Nil, fmt.Errorf("expected exactly one id argument")
	}
	id, err := uuid.Parse(cmd.Args().First())
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid id %q: %w", cmd.Args().First(), err)
	}
	return id, nil
}

// optionalID parses a UUID flag, returning uuid.Nil when unset.
func optionalID(cmd *cli.Command, name string) (uuid.UUID, error) {
	v := cmd.String(name)
	if v == "" {
		return uuid.Nil, nil
	}
	id, err := uuid.Parse(v)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid --%s %q: %w", name, v, err)
	}
	return id, nil
}

func deref(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}

func assetsCommand() *cli.Command {
	return &cli.Command{
		Name:  "assets",
		Usage: "browse assets",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "list assets",
				Flags: append(paginationFlags(),
					&cli.StringFlag{Name: "status", Usage: "filter by status"},
					&cli.StringFlag{Name: "category", Usage: "filter by category id"},
					&cli.StringFlag{Name: "location", Usage: "filter by location id"},
					jsonFlag(),
				),
				Action: func(ctx context.Context, cmd *cli.Command) error {
					filter := amsapi.AssetFilter{
						Pagination: pagination(cmd),
						Status:     models.AssetStatus(cmd.String("status")),
					}
					var err error
					if filter.CategoryID, err = optionalID(cmd, "category"); err != nil {
						return err
					}
					if filter.LocationID, err = optionalID(cmd, "location"); err != nil {
						return err
					}

					return withApp(ctx, cmd, oneShotDefaults, func(ctx context.Context, a *app.App) error {
						assets, err := a.API().ListAssets(ctx, filter)
						if err != nil {
							return err
						}
						if cmd.Bool("json") {
							return printJSON(outWriter(cmd), assets)
						}
						return printAssets(outWriter(cmd), assets)
					})
				},
			},
			{
				Name:      "get",
				Usage:     "show one asset",
				ArgsUsage: "<id>",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					id, err := idArg(cmd)
					if err != nil {
						return err
					}
					return withApp(ctx, cmd, oneShotDefaults, func(ctx context.Context, a *app.App) error {
						asset, err := a.API().GetAsset(ctx, id)
						if err != nil {
							return err
						}
						return printJSON(outWriter(cmd), asset)
					})
				},
			},
		},
	}
}

func printAssets(w io.Writer, assets []models.Asset) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TAG\tSTATUS\tMODEL\tCATEGORY\tLOCATION\tASSIGNED\tID")
	for _, a := range assets {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			a.AssetTag, a.Status, deref(a.Model), deref(a.CategoryName), deref(a.LocationName), deref(a.AssignedUserName), a.ID)
	}
	return tw.Flush()
}

func workflowsCommand() *cli.Command {
	return &cli.Command{
		Name:  "workflows",
		Usage: "manage approval workflows",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "list workflows",
				Flags: append(paginationFlags(),
					&cli.StringFlag{Name: "type", Usage: "filter by workflow type"},
					&cli.StringFlag{Name: "status", Usage: "filter by status"},
					&cli.StringFlag{Name: "asset", Usage: "filter by asset id"},
					&cli.BoolFlag{Name: "mine", Usage: "only requests made by me"},
					jsonFlag(),
				),
				Action: func(ctx context.Context, cmd *cli.Command) error {
					filter := amsapi.WorkflowFilter{
						Pagination: pagination(cmd),
						Type:       models.WorkflowType(cmd.String("type")),
						Status:     models.WorkflowStatus(cmd.String("status")),
					}
					var err error
					if filter.AssetID, err = optionalID(cmd, "asset"); err != nil {
						return err
					}

					return withApp(ctx, cmd, oneShotDefaults, func(ctx context.Context, a *app.App) error {
						list := a.API().ListWorkflows
						if cmd.Bool("mine") {
							list = a.API().MyRequests
						}
						page, err := list(ctx, filter)
						if err != nil {
							return err
						}
						if cmd.Bool("json") {
							return printJSON(outWriter(cmd), page)
						}
						return printWorkflows(outWriter(cmd), page)
					})
				},
			},
			workflowActionCommand("approve", "approve a pending workflow", &cli.StringFlag{Name: "comment", Usage: "optional comment"},
				func(ctx context.Context, api *amsapi.API, id uuid.UUID, cmd *cli.Command) (*models.Workflow, error) {
					return api.ApproveWorkflow(ctx, id, cmd.String("comment"))
				}),
			workflowActionCommand("reject", "reject a pending workflow", &cli.StringFlag{Name: "reason", Usage: "rejection reason", Required: true},
				func(ctx context.Context, api *amsapi.API, id uuid.UUID, cmd *cli.Command) (*models.Workflow, error) {
					return api.RejectWorkflow(ctx, id, cmd.String("reason"))
				}),
			workflowActionCommand("cancel", "cancel your own pending request", nil,
				func(ctx context.Context, api *amsapi.API, id uuid.UUID, _ *cli.Command) (*models.Workflow, error) {
					return api.CancelWorkflow(ctx, id)
				}),
		},
	}
}

type workflowAction func(ctx context.Context, api *amsapi.API, id uuid.UUID, cmd *cli.Command) (*models.Workflow, error)

func workflowActionCommand(name, usage string, flag cli.Flag, action workflowAction) *cli.Command {
	var flags []cli.Flag
	if flag != nil {
		flags = append(flags, flag)
	}
	return &cli.Command{
		Name:      name,
		Usage:     usage,
		ArgsUsage: "<id>",
		Flags:     flags,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			id, err := idArg(cmd)
			if err != nil {
				return err
			}
			return withApp(ctx, cmd, oneShotDefaults, func(ctx context.Context, a *app.App) error {
				wf, err := action(ctx, a.API(), id, cmd)
				if err != nil {
					return err
				}
				fmt.Fprintf(outWriter(cmd), "Workflow %s is now %s\n", wf.ID, wf.Status)
				return nil
			})
		},
	}
}

func printWorkflows(w io.Writer, page models.Page[models.Workflow]) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTYPE\tSTATUS\tASSET\tCREATED")
	for _, wf := range page.Items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", wf.ID, wf.Type, wf.Status, wf.AssetID, wf.CreatedAt.Format("2006-01-02 15:04"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "page %d of %d (%d total)\n", page.Number(), page.Pages(), page.Total)
	return err
}
