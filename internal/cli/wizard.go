package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"checklistapi/internal/config"
	"checklistapi/internal/model"
	"checklistapi/internal/wizard"
)

type prompter struct {
	sc  *bufio.Scanner
	out io.Writer
}

// ask prints label and returns the trimmed answer. Closed input ends the session.
func (p *prompter) ask(label string) (string, error) {
	fmt.Fprint(p.out, label)
	if !p.sc.Scan() {
		if err := p.sc.Err(); err != nil {
			return "", err
		}
		return "", io.ErrUnexpectedEOF
	}
	return strings.TrimSpace(p.sc.Text()), nil
}

// askDefault keeps cur when the answer is empty.
func (p *prompter) askDefault(label, cur string) (string, error) {
	if cur != "" {
		label = fmt.Sprintf("%s [%s]", label, cur)
	}
	v, err := p.ask(label + ": ")
	if err != nil || v == "" {
		return cur, err
	}
	return v, nil
}

func (p *prompter) askStatus(cur model.Status) (model.Status, error) {
	for {
		label := "Status (c = conforme, n = não conforme, a = N/A)"
		if cur != model.StatusUnset {
			label += " [" + cur.Label() + "]"
		}
		v, err := p.ask(label + ": ")
		if err != nil {
			return cur, err
		}
		if v == "" && cur != model.StatusUnset {
			return cur, nil
		}
		if s, ok := parseStatus(v); ok {
			return s, nil
		}
		fmt.Fprintln(p.out, "Opção inválida.")
	}
}

func parseStatus(v string) (model.Status, bool) {
	switch strings.ToLower(v) {
	case "c", "conforme":
		return model.StatusConforme, true
	case "n", "nc", "nao_conforme", "não conforme":
		return model.StatusNaoConforme, true
	case "a", "na", "n/a":
		return model.StatusNotApplicable, true
	}
	return model.StatusUnset, false
}

func newNewCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "new",
		Short: "Fill in a new checklist interactively",
		Long: `Walk through the four checklist steps: vehicle data, verifications,
photographed inspections and review. Photos are read from image files.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := wizard.New(
				wizard.WithClock(app.Now),
				wizard.WithLocation(config.Location(app.Config.Timezone)),
				wizard.WithCamera(app.Camera),
			)
			defer w.Close()
			p := &prompter{sc: bufio.NewScanner(app.In), out: app.Out}
			return runWizard(cmd.Context(), app, w, p)
		},
	}
}

func runWizard(ctx context.Context, app *App, w *wizard.Wizard, p *prompter) error {
	app.printf("%s (%s)\n", w.Title(), w.CreatedAt())
	for w.Step() != wizard.StepReview {
		pr := w.Progress()
		app.printf("\n== Etapa %d: %s == %d/%d (%d%%)\n", int(w.Step()), w.Step(), pr.Answered, pr.Total, pr.Percent)

		var err error
		switch w.Step() {
		case wizard.StepData:
			err = askData(w, p)
		case wizard.StepVerifications:
			err = askVerifications(w, p)
		case wizard.StepInspections:
			err = askInspections(ctx, app, w, p)
		}
		if err != nil {
			return err
		}

		if err := w.Next(); err != nil {
			var ve *wizard.ValidationError
			if !errors.As(err, &ve) {
				return err
			}
			app.printf("%s %s\n", ve.Title, ve.Detail)
		}
	}
	return review(ctx, app, w, p)
}

func askData(w *wizard.Wizard, p *prompter) error {
	d := w.InitialData()
	fields := []struct {
		label string
		dst   *string
	}{
		{"Placa (ABC-1234)", &d.Plate},
		{"Motorista", &d.Driver},
		{"Inspetor", &d.Inspector},
		{"Marca", &d.Brand},
		{"Modelo", &d.Model},
		{"Quilometragem", &d.Odometer},
	}
	for _, f := range fields {
		v, err := p.askDefault(f.label, *f.dst)
		if err != nil {
			return err
		}
		*f.dst = v
	}
	w.SetInitialData(d)
	return nil
}

func askVerifications(w *wizard.Wizard, p *prompter) error {
	for i := 0; i < w.VerificationCount(); i++ {
		v, err := w.Verification(i)
		if err != nil {
			return err
		}
		fmt.Fprintf(p.out, "\n%d. %s\n   %s\n", i+1, v.Title, v.Detail)
		status, err := p.askStatus(v.Status)
		if err != nil {
			return err
		}
		notes, err := p.askDefault("Observações", model.NotesText(v.Notes))
		if err != nil {
			return err
		}
		if err := w.SetVerification(i, status, notes); err != nil {
			return err
		}
	}
	return nil
}

func askInspections(ctx context.Context, app *App, w *wizard.Wizard, p *prompter) error {
	for i := 0; i < w.InspectionCount(); i++ {
		it, err := w.Inspection(i)
		if err != nil {
			return err
		}
		fmt.Fprintf(p.out, "\n%d. %s\n   %s\n", i+1, it.Title, it.Detail)
		status, err := p.askStatus(it.Status)
		if err != nil {
			return err
		}
		notes, err := p.askDefault("Observações", model.NotesText(it.Notes))
		if err != nil {
			return err
		}
		if err := w.SetInspection(i, status, notes); err != nil {
			return err
		}
		if status == model.StatusNotApplicable {
			continue
		}

		fmt.Fprintf(p.out, "   %d foto(s) anexada(s)\n", len(w.PhotoIDs(i)))
		for {
			path, err := p.ask("Foto (caminho do arquivo, Enter para continuar): ")
			if err != nil {
				return err
			}
			if path == "" {
				break
			}
			app.Camera.Point(path)
			if _, err := w.CapturePhoto(ctx, i); err != nil {
				fmt.Fprintf(p.out, "   foto ignorada: %v\n", err)
				continue
			}
			fmt.Fprintf(p.out, "   %d foto(s) anexada(s)\n", len(w.PhotoIDs(i)))
		}
	}
	return nil
}

func review(ctx context.Context, app *App, w *wizard.Wizard, p *prompter) error {
	c := w.Checklist()
	d := c.InitialData
	app.printf("Placa: %s  Motorista: %s  Inspetor: %s\n", d.Plate, d.Driver, d.Inspector)
	for _, v := range c.Verifications {
		app.printf("  %s: %s\n", v.Title, v.Status.Label())
	}
	for _, it := range c.Inspections {
		app.printf("  %s: %s (%d foto(s))\n", it.Title, it.Status.Label(), len(it.Media))
	}

	for {
		answer, err := p.ask("Salvar checklist? [s/N]: ")
		if err != nil {
			return err
		}
		if !strings.EqualFold(answer, "s") {
			app.printf("Checklist descartado.\n")
			return nil
		}
		saved, err := w.Submit(ctx, app.Store)
		if err == nil {
			app.printf("Checklist salvo: %s\n", saved.ID)
			return nil
		}
		app.printf("Erro ao salvar: %v\n", err)
	}
}
