package cli

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"checklistapi/internal/report"
)

var errNotConfirmed = errors.New("exclusão não confirmada")

func newListCmd(app *App) *cobra.Command {
	var query string
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved checklists, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			records, err := app.Store.List(cmd.Context(), query)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(app, records)
			}
			if len(records) == 0 {
				app.printf("Nenhum checklist encontrado.\n")
				return nil
			}
			tw := tabwriter.NewWriter(app.Out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tTÍTULO\tPLACA\tMOTORISTA\tCRIADO EM\tCOMPLETO")
			for _, r := range records {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
					r.ID, r.Title, r.InitialData.Plate, r.InitialData.Driver, r.CreatedAt, yesNo(r.Complete))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVarP(&query, "query", "q", "", "filter by title, driver, inspector or plate")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the raw records")
	return cmd
}

func newShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print one checklist as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := app.Store.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return writeJSON(app, rec)
		},
	}
}

func newDeleteCmd(app *App) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a checklist and its photos",
		Long:  `Delete a checklist and every photo stored for it. Without --yes the word "delete" must be typed to confirm.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			if !yes {
				app.printf("Esta ação remove o checklist %s e suas fotos.\nDigite \"delete\" para confirmar: ", id)
				line, err := bufio.NewReader(app.In).ReadString('\n')
				if err != nil && line == "" {
					return errNotConfirmed
				}
				if strings.TrimSpace(line) != "delete" {
					return errNotConfirmed
				}
			}
			if err := app.Store.Delete(cmd.Context(), id); err != nil {
				return err
			}
			app.printf("Checklist %s removido.\n", id)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func newReportCmd(app *App) *cobra.Command {
	var modeFlag, out string
	cmd := &cobra.Command{
		Use:   "report <id>",
		Short: "Export a checklist as PDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := report.ParseMode(modeFlag)
			if err != nil {
				return err
			}
			rec, err := app.Store.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			path := out
			if path == "" {
				path = report.Filename(rec, mode)
			}
			f, err := os.Create(path)
			if err != nil {
				return err
			}
			sum, err := app.Generator.Render(cmd.Context(), rec, mode, f)
			if cerr := f.Close(); err == nil {
				err = cerr
			}
			if err != nil {
				_ = os.Remove(path)
				return err
			}
			app.printf("%s: %d página(s), %d imagem(ns)", path, sum.Pages, sum.Images)
			if n := sum.FailedImages + sum.SkippedImages; n > 0 {
				app.printf(", %d imagem(ns) ignorada(s)", n)
			}
			if sum.OmittedItems > 0 {
				app.printf(", %d item(ns) omitido(s)", sum.OmittedItems)
			}
			app.printf("\n")
			return nil
		},
	}
	cmd.Flags().StringVar(&modeFlag, "mode", string(report.ModeText), "text or images")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default checklist-<id>[-imagens].pdf)")
	return cmd
}

func newHealthCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check the API database and bucket",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			h := app.Store.Health(cmd.Context())
			app.printf("%s\n", h.Message)
			if h.TableName != "" {
				app.printf("tabela %s: %s\n", h.TableName, yesNo(h.TableExists))
			}
			if h.BucketName != "" {
				app.printf("bucket %s: %s\n", h.BucketName, yesNo(h.BucketExists))
			}
			if !h.OK {
				return errors.New("api indisponível")
			}
			return nil
		},
	}
}

func writeJSON(app *App, v any) error {
	enc := json.NewEncoder(app.Out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func yesNo(b bool) string {
	if b {
		return "sim"
	}
	return "não"
}
