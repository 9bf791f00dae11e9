package commands

import (
	"context"
	"errors"
	"fmt"

	"HealthMate/internal/cli/bootstrap"
	"HealthMate/internal/cli/route"
	"HealthMate/internal/config"
)

// ErrRedirected is returned when the current session may not open the command's page.
var ErrRedirected = errors.New("access denied")

// newApp собирает клиент; в тестах может подменяться.
var newApp = bootstrap.NewApp

// withApp builds the client, authorizes page through the route guard and runs fn.
// An empty page skips authorization.
func withApp(ctx context.Context, cfg *config.Config, page string, fn func(app *bootstrap.App) error) error {
	app, done, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = done() }()

	if page != "" {
		d := app.Guard.Navigate(page)
		switch d.Action {
		case route.Redirect:
			fmt.Fprintf(Out, "redirect: %s\n", d.Location)
			return fmt.Errorf("%w: %s requires redirect to %s", ErrRedirected, page, d.Location)
		case route.Wait:
			return errors.New("session is still loading")
		}
	}
	return fn(app)
}
