package commands

import (
	"context"
	"fmt"

	"HealthMate/internal/cli/bootstrap"
	"HealthMate/internal/cli/route"
	"HealthMate/internal/config"
)

type navigateCmd struct{}

func (navigateCmd) Name() string        { return "navigate" }
func (navigateCmd) Description() string { return "Show whether a page may be opened in the current session" }
func (navigateCmd) Usage() string       { return "navigate <path>" }

func (navigateCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 1 {
		return ErrUsage
	}
	return withApp(ctx, cfg, "", func(app *bootstrap.App) error {
		d := app.Guard.Navigate(args[0])
		if d.Action == route.Redirect {
			fmt.Fprintf(Out, "redirect: %s\n", d.Location)
			return nil
		}
		fmt.Fprintln(Out, d.Action.String())
		return nil
	})
}

func init() { RegisterCmd(navigateCmd{}) }
