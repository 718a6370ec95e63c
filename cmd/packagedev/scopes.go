package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"
)

type scopeRow struct {
	Name     string `json:"name"`
	Source   string `json:"source"`
	Package  string `json:"package"`
	Internal bool   `json:"internal,omitempty"`
}

func newScopesCommand(flags *rootFlags) *cobra.Command {
	var includeInternal bool

	cmd := &cobra.Command{
		Use:   "scopes [prefix]",
		Short: "list the scopes indexed from the package roots",
		Args:  cobra.MaximumNArgs(1),
	}
	cmd.Flags().BoolVar(&includeInternal, "internal", false, "include scopes from hidden syntaxes")

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
		reg := eng.Registry()
		if reg == nil {
			return errors.Errorf("none of the configured package roots exist: %s",
				strings.Join(cfg.PackagesRoots, ", "))
		}

		prefix := ""
		if len(args) == 1 {
			prefix = args[0]
		}

		var rows []scopeRow
		for _, e := range reg.Entries() {
			if prefix != "" && !strings.HasPrefix(e.Name, prefix) {
				continue
			}
			if e.Internal && !includeInternal {
				continue
			}
			rows = append(rows, scopeRow{
				Name:     e.Name,
				Source:   e.Source,
				Package:  e.Package,
				Internal: e.Internal,
			})
		}

		if flags.jsonOut {
			return writeJSON(cmd.OutOrStdout(), rows)
		}
		renderScopes(cmd.OutOrStdout(), rows, reg.Len(), len(reg.Packages()))
		return nil
	}

	return cmd
}

func renderScopes(w io.Writer, rows []scopeRow, indexed, packages int) {
	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("%d scopes indexed from %d packages", indexed, packages)))
	for _, row := range rows {
		line := fmt.Sprintf("%s %s", row.Name, detailStyle.Render(row.Source))
		if row.Internal {
			line += " " + warnStyle.Render("(hidden)")
		}
		fmt.Fprintln(w, line)
	}
}
