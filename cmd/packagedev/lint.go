package main

import (
	"fmt"
	"io"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/forkeith/PackageDev/pkg/diagnostic"
	"github.com/forkeith/PackageDev/pkg/position"
)

// lintFinding is one finding with its span resolved to a line and a
// display column.
type lintFinding struct {
	Line     int    `json:"line"`
	Column   int    `json:"column"`
	Start    int    `json:"start"`
	End      int    `json:"end"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

type lintReport struct {
	File     string        `json:"file"`
	Findings []lintFinding `json:"findings"`
}

func newLintCommand(flags *rootFlags) *cobra.Command {
	var dialectName string

	cmd := &cobra.Command{
		Use:   "lint <file>...",
		Short: "validate package files and print the findings",
		Args:  cobra.MinimumNArgs(1),
	}
	cmd.Flags().StringVar(&dialectName, "dialect", "", "force a dialect instead of inferring it from file names")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := flags.loadConfig()
		if err != nil {
			return err
		}
		ctx := flags.logger(cfg).WithContext(cmd.Context())

		eng, err := buildEngine(ctx, cfg)
		if err != nil {
			return err
		}

		var merr error
		var total int
		reports := make([]lintReport, 0, len(args))
		for _, path := range args {
			text, d, err := readDocument(path, dialectName)
			if err != nil {
				merr = multierror.Append(merr, err)
				continue
			}
			findings, err := eng.GetDiagnostics(ctx, text, d)
			if err != nil {
				merr = multierror.Append(merr, errors.Errorf("linting %s: %w", path, err))
				continue
			}
			total += len(findings)
			reports = append(reports, lintReport{File: path, Findings: toLintFindings(text, findings)})
		}

		if flags.jsonOut {
			if err := writeJSON(cmd.OutOrStdout(), reports); err != nil {
				return err
			}
		} else {
			for _, r := range reports {
				renderLintReport(cmd.OutOrStdout(), r)
			}
		}

		if merr != nil {
			return merr
		}
		if total > 0 {
			return errors.Errorf("%d problems in %d files", total, len(args))
		}
		return nil
	}

	return cmd
}

func toLintFindings(text string, findings []diagnostic.Finding) []lintFinding {
	out := make([]lintFinding, len(findings))
	for i, f := range findings {
		span := position.RawPosition{Offset: f.Start, Text: text[f.Start:f.End]}
		line, _ := span.GetLineAndColumn(text)
		out[i] = lintFinding{
			Line:     line + 1,
			Column:   span.DisplayColumn(text),
			Start:    f.Start,
			End:      f.End,
			Severity: string(f.Severity),
			Message:  f.Message,
		}
	}
	return out
}

func renderLintReport(w io.Writer, r lintReport) {
	if len(r.Findings) == 0 {
		fmt.Fprintf(w, "%s %s\n", okStyle.Render("ok"), r.File)
		return
	}
	fmt.Fprintln(w, headerStyle.Render(r.File))
	for _, f := range r.Findings {
		style := warnStyle
		if f.Severity == string(diagnostic.Info) {
			style = infoStyle
		}
		fmt.Fprintf(w, "  %s %s %s\n",
			labelStyle.Render(fmt.Sprintf("%d:%d", f.Line, f.Column)),
			style.Render(f.Severity),
			f.Message)
	}
}
