package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"HealthMate/internal/cli/bootstrap"
	"HealthMate/internal/cli/upload"
	"HealthMate/internal/config"
)

type uploadCmd struct{}

func (uploadCmd) Name() string        { return "upload" }
func (uploadCmd) Description() string { return "Upload a report file and analyze it" }
func (uploadCmd) Usage() string {
	return "upload --title <t> --date <YYYY-MM-DD> [--category lab|imaging|prescription] [--notes <n>] [--type <mime>] <file>"
}

func (uploadCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("upload", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	title := fs.String("title", "", "report title")
	date := fs.String("date", "", "date taken, YYYY-MM-DD")
	category := fs.String("category", "", "lab|imaging|prescription")
	notes := fs.String("notes", "", "free text notes")
	ctype := fs.String("type", "", "declared MIME type of the file")
	if err := fs.Parse(args); err != nil || fs.NArg() != 1 {
		return ErrUsage
	}

	return withApp(ctx, cfg, "/upload", func(app *bootstrap.App) error {
		c := upload.Candidate{Title: *title, DateTaken: *date, Category: *category, Notes: *notes}
		f, err := upload.FromPath(fs.Arg(0), *ctype)
		if err != nil {
			return err
		}
		c.File = f

		fmt.Fprintln(Out, "Uploading and analyzing...")
		res, err := app.Reports.Upload(ctx, c)
		if err != nil {
			return err
		}
		for _, w := range res.Warnings {
			app.Log.Debugw("upload warning", "warning", w.String())
		}
		fmt.Fprintln(Out, "Report created:")
		fmt.Fprintf(Out, "  id:   %s\n", res.Report.ID)
		fmt.Fprintf(Out, "  kind: %s\n", strings.ToUpper(string(res.Kind)))
		fmt.Fprintf(Out, "  open: hmcli report %s\n", res.Report.ID)
		return nil
	})
}

func init() { RegisterCmd(uploadCmd{}) }
