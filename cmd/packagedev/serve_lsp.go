package main

import (
	"github.com/spf13/cobra"

	"github.com/forkeith/PackageDev/pkg/lsp"
)

func newServeLSPCommand(flags *rootFlags, version string) *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "serve-lsp",
		Short: "serve completions, hover and diagnostics over LSP on stdin/stdout",
		Args:  cobra.NoArgs,
	}
	cmd.Flags().BoolVar(&watch, "watch", true, "rescan packages when their files change on disk")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := flags.loadConfig()
		if err != nil {
			return err
		}
		log := flags.logger(cfg)
		ctx := log.WithContext(cmd.Context())

		eng, err := buildEngine(ctx, cfg)
		if err != nil {
			return err
		}
		if watch {
			if reg := eng.Registry(); reg != nil {
				w, err := reg.Watch(ctx)
				if err != nil {
					log.Warn().Err(err).Msg("package watching unavailable, serving a static index")
				} else {
					defer w.Close()
				}
			}
		}

		return lsp.NewServer(eng, version, log).RunStdio()
	}

	return cmd
}
