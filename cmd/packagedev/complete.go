package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/forkeith/PackageDev/pkg/completion"
)

func newCompleteCommand(flags *rootFlags) *cobra.Command {
	var offset int
	var dialectName string

	cmd := &cobra.Command{
		Use:   "complete <file>",
		Short: "list the completions offered at a byte offset",
		Args:  cobra.ExactArgs(1),
	}
	cmd.Flags().IntVar(&offset, "offset", -1, "byte offset of the cursor (default: end of file)")
	cmd.Flags().StringVar(&dialectName, "dialect", "", "force a dialect instead of inferring it from the file name")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := flags.loadConfig()
		if err != nil {
			return err
		}
		ctx := flags.logger(cfg).WithContext(cmd.Context())

		text, d, err := readDocument(args[0], dialectName)
		if err != nil {
			return err
		}
		if offset < 0 {
			offset = len(text)
		}

		eng, err := buildEngine(ctx, cfg)
		if err != nil {
			return err
		}
		items, err := eng.GetCompletions(ctx, text, offset, d)
		if err != nil {
			return err
		}

		if flags.jsonOut {
			return writeJSON(cmd.OutOrStdout(), items)
		}
		renderCompletions(cmd.OutOrStdout(), items)
		return nil
	}

	return cmd
}

func renderCompletions(w io.Writer, items []completion.Item) {
	if len(items) == 0 {
		fmt.Fprintln(w, detailStyle.Render("no completions"))
		return
	}
	for _, it := range items {
		line := fmt.Sprintf("%s %s", labelStyle.Render(fmt.Sprintf("%-8s", it.Kind)), it.Label)
		if it.Detail != "" {
			line += " " + detailStyle.Render(it.Detail)
		}
		fmt.Fprintln(w, line)
	}
}
