package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net/url"

	"HealthMate/internal/cli/bootstrap"
	"HealthMate/internal/cli/model/view"
	"HealthMate/internal/config"
)

func reportPage(id string) string { return "/reports/" + url.PathEscape(id) }

type reportCmd struct{}

func (reportCmd) Name() string        { return "report" }
func (reportCmd) Description() string { return "Show a report with its AI summary" }
func (reportCmd) Usage() string       { return "report <id> [lang]" }

func (reportCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return ErrUsage
	}
	lang := "en"
	if len(args) == 2 {
		lang = args[1]
	}
	return withApp(ctx, cfg, reportPage(args[0]), func(app *bootstrap.App) error {
		d, err := app.Reports.Get(ctx, args[0])
		if err != nil {
			return err
		}
		card := view.NewReportCard(*d, lang)
		fmt.Fprintf(Out, "id:       %s\n", card.ID)
		fmt.Fprintf(Out, "title:    %s\n", card.Title)
		fmt.Fprintf(Out, "type:     %s\n", card.Kind)
		fmt.Fprintf(Out, "date:     %s\n", card.DateTaken)
		fmt.Fprintf(Out, "tags:     %s\n", card.Tags)
		fmt.Fprintf(Out, "file:     %s\n", card.FileURL)
		if card.Summary == "" {
			fmt.Fprintln(Out, "summary:  <not analyzed yet>")
		} else {
			fmt.Fprintf(Out, "summary:  %s\n", card.Summary)
		}
		return nil
	})
}

type reportsCmd struct{}

func (reportsCmd) Name() string        { return "reports" }
func (reportsCmd) Description() string { return "List reports (--local lists reports uploaded from this machine)" }
func (reportsCmd) Usage() string       { return "reports [--local] [--limit N] [--page N]" }

func (reportsCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("reports", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	local := fs.Bool("local", false, "list the local cache")
	limit := fs.Int("limit", 20, "page size")
	page := fs.Int("page", 1, "page number")
	if err := fs.Parse(args); err != nil || fs.NArg() != 0 {
		return ErrUsage
	}
	return withApp(ctx, cfg, "/dashboard", func(app *bootstrap.App) error {
		if *local {
			rows, err := app.Reports.Recent(ctx, *limit)
			if err != nil {
				return err
			}
			if len(rows) == 0 {
				fmt.Fprintln(Out, "No reports")
				return nil
			}
			for _, r := range rows {
				fmt.Fprintf(Out, "%s  %-10s  %-5s  %s\n", r.ReportID, r.DateTaken, r.FileType, r.Title)
			}
			return nil
		}
		list, err := app.Reports.List(ctx, *limit, *page)
		if err != nil {
			return err
		}
		if len(list) == 0 {
			fmt.Fprintln(Out, "No reports")
			return nil
		}
		for _, r := range list {
			fmt.Fprintf(Out, "%s  %-10s  %-5s  %s\n", r.ID, r.DateTaken, r.FileType, r.Title)
		}
		return nil
	})
}

// reportAction — команда вида "<name> <id>" над одним отчётом.
type reportAction struct {
	name, desc, usage string
	nargs             int
	run               func(ctx context.Context, app *bootstrap.App, args []string) error
}

func (c reportAction) Name() string        { return c.name }
func (c reportAction) Description() string { return c.desc }
func (c reportAction) Usage() string       { return c.usage }

func (c reportAction) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != c.nargs {
		return ErrUsage
	}
	return withApp(ctx, cfg, reportPage(args[0]), func(app *bootstrap.App) error {
		return c.run(ctx, app, args)
	})
}

func analyzeReport(ctx context.Context, app *bootstrap.App, args []string) error {
	if err := app.Reports.Analyze(ctx, args[0]); err != nil {
		return err
	}
	fmt.Fprintln(Out, "Analysis complete")
	return nil
}

func deleteReport(ctx context.Context, app *bootstrap.App, args []string) error {
	if err := app.Reports.Delete(ctx, args[0]); err != nil {
		return err
	}
	fmt.Fprintln(Out, "Deleted")
	return nil
}

func feedbackReport(ctx context.Context, app *bootstrap.App, args []string) error {
	var liked bool
	switch args[1] {
	case "like":
		liked = true
	case "dislike":
		liked = false
	default:
		return ErrUsage
	}
	if err := app.Reports.Feedback(ctx, args[0], liked); err != nil {
		return err
	}
	fmt.Fprintln(Out, "Thanks for the feedback")
	return nil
}

func listPages(ctx context.Context, app *bootstrap.App, args []string) error {
	pages, err := app.Reports.Pages(ctx, args[0])
	if err != nil {
		return err
	}
	if len(pages) == 0 {
		fmt.Fprintln(Out, "No pages")
		return nil
	}
	for i, p := range pages {
		n := p.Page
		if n == 0 {
			n = i + 1
		}
		fmt.Fprintf(Out, "%3d  %s\n", n, p.URL)
	}
	return nil
}

func composePDF(ctx context.Context, app *bootstrap.App, args []string) error {
	u, err := app.Reports.ComposePDF(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Fprintln(Out, u)
	return nil
}

func init() {
	RegisterCmd(reportCmd{})
	RegisterCmd(reportsCmd{})
	RegisterCmd(reportAction{name: "analyze", desc: "Run the AI analysis again", usage: "analyze <id>", nargs: 1, run: analyzeReport})
	RegisterCmd(reportAction{name: "delete", desc: "Delete a report", usage: "delete <id>", nargs: 1, run: deleteReport})
	RegisterCmd(reportAction{name: "feedback", desc: "Rate the analysis", usage: "feedback <id> like|dislike", nargs: 2, run: feedbackReport})
	RegisterCmd(reportAction{name: "pages", desc: "List extracted pages of a document", usage: "pages <id>", nargs: 1, run: listPages})
	RegisterCmd(reportAction{name: "compose", desc: "Join extracted pages into one PDF", usage: "compose <id>", nargs: 1, run: composePDF})
}
