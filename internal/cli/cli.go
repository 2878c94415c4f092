// Package cli implements the checklist command line client.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"checklistapi/internal/client"
	"checklistapi/internal/config"
	"checklistapi/internal/model"
	"checklistapi/internal/report"
	"checklistapi/internal/service"
	"checklistapi/internal/wizard"
)

// Store is the record store the commands operate on.
type Store interface {
	List(ctx context.Context, query string) ([]model.Checklist, error)
	Get(ctx context.Context, id string) (*model.Checklist, error)
	Save(ctx context.Context, c *model.Checklist) (*model.Checklist, error)
	Delete(ctx context.Context, id string) error
	Health(ctx context.Context) service.Health
}

// App holds the dependencies shared by every command. Zero fields are filled in from
// the client configuration when the root command runs.
type App struct {
	Config    *config.ClientConfig
	Store     Store
	Generator *report.Generator
	Log       *zap.Logger
	In        io.Reader
	Out       io.Writer
	Now       func() time.Time
	Camera    *wizard.FileCamera

	apiURL string
}

// NewRootCommand builds the "checklist" command tree.
func NewRootCommand(app *App) *cobra.Command {
	if app.Config == nil {
		app.Config = config.LoadClient()
	}
	if app.Log == nil {
		app.Log = zap.NewNop()
	}
	if app.Now == nil {
		app.Now = time.Now
	}

	root := &cobra.Command{
		Use:           "checklist",
		Short:         "Vehicle inspection checklists",
		Long:          "Fill in, browse, export and delete vehicle inspection checklists stored by the checklist API.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return app.init(cmd)
		},
	}
	root.PersistentFlags().StringVar(&app.apiURL, "api-url", app.Config.APIURL, "checklist API base URL")

	root.AddCommand(
		newListCmd(app),
		newShowCmd(app),
		newDeleteCmd(app),
		newNewCmd(app),
		newReportCmd(app),
		newHealthCmd(app),
	)
	return root
}

func (a *App) init(cmd *cobra.Command) error {
	if a.In == nil {
		a.In = cmd.InOrStdin()
	}
	if a.Out == nil {
		a.Out = cmd.OutOrStdout()
	}
	if a.Store == nil {
		s, err := client.New(a.apiURL, client.WithTimeout(time.Duration(a.Config.TimeoutSec)*time.Second))
		if err != nil {
			return err
		}
		a.Store = s
	}
	if a.Generator == nil {
		rc := a.Config.Report
		loader := report.NewImageLoader(nil,
			report.WithFetchTimeout(time.Duration(rc.FetchTimeoutSec)*time.Second),
			report.WithConcurrency(rc.FetchConcurrency),
			report.WithMaxBytes(int64(rc.MaxImageBytes)),
			report.WithMaxPixels(rc.MaxImagePixels),
			report.WithLoaderLogger(a.Log),
		)
		a.Generator = report.NewGenerator(loader, report.WithMaxPages(rc.MaxPages), report.WithLogger(a.Log))
	}
	if a.Camera == nil {
		a.Camera = wizard.NewFileCamera()
	}
	return nil
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.Out, format, args...)
}

// Execute runs the command tree with os.Args and returns the process exit code.
func Execute(ctx context.Context, app *App) int {
	root := NewRootCommand(app)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "erro:", err)
		return 1
	}
	return 0
}
